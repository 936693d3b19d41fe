package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Load and validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := o.load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ configuration is valid\n")
			fmt.Fprintf(out, "  market:   %s\n", cfg.Market.Source)
			fmt.Fprintf(out, "  interval: %s\n", cfg.Loop.Interval)
			fmt.Fprintf(out, "  digest:   %s\n", cfg.Loop.DigestCron)
			fmt.Fprintf(out, "  telegram: %t\n", cfg.TelegramEnabled())
			return nil
		},
	})
	return cmd
}
