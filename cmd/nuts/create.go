package main

import (
	"fmt"

	"github.com/drobin/nuts/archive"
	"github.com/drobin/nuts/container"
	"github.com/drobin/nuts/internal/cryptocore"
	"github.com/drobin/nuts/internal/kdf"
	"github.com/spf13/cobra"
)

func newCreateCmd() *cobra.Command {
	var cipherName string
	var iterations uint32
	var noPassword bool
	var harden bool

	cmd := &cobra.Command{
		Use:   "create PATH",
		Short: "Create a new container and bootstrap an empty archive in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			be, err := openBackend(args[0])
			if err != nil {
				return err
			}

			cipher, err := parseCipher(cipherName)
			if err != nil {
				return err
			}

			opts := container.CreateOptions{Cipher: cipher, Harden: harden}
			if noPassword {
				opts.Kdf = kdf.None
			} else {
				opts.Kdf = kdf.Pbkdf2Kind
				opts.Digest = kdf.Sha1
				opts.Iterations = iterations
				opts.PasswordCb = func() ([]byte, error) {
					pw, err := readPassword("new password: ")
					if err != nil {
						return nil, err
					}
					confirm, err := readPassword("confirm password: ")
					if err != nil {
						return nil, err
					}
					if string(pw) != string(confirm) {
						return nil, fmt.Errorf("passwords don't match")
					}
					return pw, nil
				}
			}

			c, err := container.Create(be, opts)
			if err != nil {
				return err
			}
			defer c.Close()

			if _, err := archive.Create(c, nowTimestamp()); err != nil {
				return err
			}

			fmt.Printf("created archive at %s (cipher=%s)\n", args[0], cipher)
			return nil
		},
	}

	cmd.Flags().StringVar(&cipherName, "cipher", "aes128-gcm", "cipher: none, aes128-ctr, aes128-gcm")
	cmd.Flags().Uint32Var(&iterations, "pbkdf2-iterations", 100_000, "PBKDF2 iteration count")
	cmd.Flags().BoolVar(&noPassword, "no-password", false, "create without password protection (kdf=none)")
	cmd.Flags().BoolVar(&harden, "harden", false, "apply OS-level process hardening")
	return cmd
}

func parseCipher(name string) (cryptocore.Cipher, error) {
	switch name {
	case "none":
		return cryptocore.None, nil
	case "aes128-ctr":
		return cryptocore.Aes128Ctr, nil
	case "aes128-gcm":
		return cryptocore.Aes128Gcm, nil
	default:
		return 0, fmt.Errorf("unknown cipher %q", name)
	}
}
