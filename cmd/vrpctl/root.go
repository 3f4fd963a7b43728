package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vrpctl",
		Short:         "Capacitated vehicle routing from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSolveCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the vrpctl version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vrpctl %s\n", version)
		},
	}
}
