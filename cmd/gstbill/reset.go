package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCmd(env *cliEnv) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the company profile, every invoice and the invoice counter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.services.Reset.Reset(cmd.Context(), yes); err != nil {
				return fmt.Errorf("%w (pass --yes to confirm)", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All billing data cleared.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}
