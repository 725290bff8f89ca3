package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show pricingctl version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "pricingctl version %s (%s)\n", version, runtime.Version())
			if o.serverURL != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "API server: %s\n", o.serverURL)
			}
			return nil
		},
	}
}
