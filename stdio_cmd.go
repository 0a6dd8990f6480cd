package main

import (
	"os"

	"github.com/spf13/cobra"

	"walletbridge/stdio"
)

func newStdioCmd(e *env) *cobra.Command {
	var local bool
	cmd := &cobra.Command{
		Use:   "stdio",
		Short: "Serve JSON-RPC on stdin and stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, done, err := e.caller(local)
			if err != nil {
				return err
			}
			defer done()
			return stdio.NewServer(caller, version, e.log.Named("stdio")).Serve(cmd.Context(), os.Stdin, os.Stdout)
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "dispatch in-process instead of through the socket")
	return cmd
}
