package main

import (
	"fmt"

	"github.com/drobin/nuts/archive"
	"github.com/spf13/cobra"
)

func newLsCmd() *cobra.Command {
	var noPassword bool

	cmd := &cobra.Command{
		Use:   "ls PATH",
		Short: "List archived entries",
		Args:  cobra.ExactArgs(1),
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

			return a.Iter(func(e archive.IterEntry) error {
				fmt.Printf("%s %6d  %s\n", e.Entry.Mode, e.Entry.Size, e.Entry.Name)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&noPassword, "no-password", false, "open without prompting for a password")
	return cmd
}
