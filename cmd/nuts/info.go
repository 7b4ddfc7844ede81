package main

import (
	"fmt"
	"time"

	"github.com/drobin/nuts/archive"
	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	var noPassword bool

	cmd := &cobra.Command{
		Use:   "info PATH",
		Short: "Print container and archive metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := openContainer(args[0], noPassword)
			if err != nil {
				return err
			}
			defer c.Close()

			info := c.Info()
			fmt.Printf("cipher:     %s\n", info.Cipher)
			fmt.Printf("kdf:        kind=%d\n", info.Kdf.Kind)
			fmt.Printf("block-size: %d\n", info.Block.BlockSize)

			a, err := archive.Open(c, defaultSID)
			if err != nil {
				return fmt.Errorf("opening archive: %w", err)
			}
			fmt.Printf("nfiles:     %d\n", a.NFiles())
			fmt.Printf("created:    %s\n", toTime(a.Created()))
			fmt.Printf("modified:   %s\n", toTime(a.Modified()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&noPassword, "no-password", false, "open without prompting for a password")
	return cmd
}

func toTime(ts archive.Timestamp) time.Time {
	return time.Unix(ts.Seconds, int64(ts.Nanos))
}
