package main

import (
	"fmt"
	"os"

	"github.com/drobin/nuts/archive"
	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	var noPassword bool
	var asDir bool
	var symlinkTarget string
	var perm uint32

	cmd := &cobra.Command{
		Use:   "add PATH NAME [SOURCE]",
		Short: "Append a file, directory or symlink entry to an archive",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := openContainer(args[0], noPassword)
			if err != nil {
				return err
			}
			defer c.Close()

			a, err := archive.Open(c, defaultSID)
			if err != nil {
				return fmt.Errorf("opening archive: %w", err)
			}

			name := args[1]
			var b *archive.Builder
			var payload []byte

			switch {
			case symlinkTarget != "":
				b = archive.NewSymlinkBuilder(name, symlinkTarget)
			case asDir:
				b = archive.NewDirectoryBuilder(name)
			default:
				if len(args) < 3 {
					return fmt.Errorf("add: a file entry requires a SOURCE path")
				}
				payload, err = os.ReadFile(args[2])
				if err != nil {
					return fmt.Errorf("reading %s: %w", args[2], err)
				}
				b = archive.NewFileBuilder(name, payload)
			}

			if cmd.Flags().Changed("perm") {
				b = b.Perm(perm)
			}

			entry, data, err := b.Entry()
			if err != nil {
				return fmt.Errorf("building entry: %w", err)
			}

			id, err := a.Append(entry, data, nowTimestamp())
			if err != nil {
				return fmt.Errorf("appending entry: %w", err)
			}

			fmt.Printf("added %s as %s\n", name, id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&noPassword, "no-password", false, "open without prompting for a password")
	cmd.Flags().BoolVar(&asDir, "dir", false, "add a directory entry instead of a file")
	cmd.Flags().StringVar(&symlinkTarget, "symlink", "", "add a symlink entry pointing at this target")
	cmd.Flags().Uint32Var(&perm, "perm", 0, "override the entry's permission bits")
	return cmd
}
