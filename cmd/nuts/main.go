// Command nuts is a CLI front-end over the container and archive
// packages: create an encrypted block container, bootstrap an archive
// inside it, append files/directories/symlinks, and list or extract
// them back out.
package main

import (
	"fmt"
	"os"

	"github.com/drobin/nuts/internal/tlog"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "nuts",
		Short:         "Encrypted block-storage archive tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				tlog.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newCreateCmd(),
		newInfoCmd(),
		newAddCmd(),
		newLsCmd(),
		newCatCmd(),
	)
	return root
}
