package main

import (
	"fmt"
	"os"

	"github.com/drobin/nuts/archive"
	"github.com/spf13/cobra"
)

func newCatCmd() *cobra.Command {
	var noPassword bool

	cmd := &cobra.Command{
		Use:   "cat PATH NAME",
		Short: "Print a file entry's content to stdout",
		Args:  cobra.ExactArgs(2),
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
			var found *archive.EntryInner
			err = a.Iter(func(e archive.IterEntry) error {
				if e.Entry.Name == name {
					entry := e.Entry
					found = &entry
				}
				return nil
			})
			if err != nil {
				return err
			}
			if found == nil {
				return fmt.Errorf("cat: no such entry %q", name)
			}
			if !found.Mode.IsFile() {
				return fmt.Errorf("cat: %q is not a regular file", name)
			}

			data, err := a.ReadFile(*found)
			if err != nil {
				return fmt.Errorf("reading %q: %w", name, err)
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}
	cmd.Flags().BoolVar(&noPassword, "no-password", false, "open without prompting for a password")
	return cmd
}
