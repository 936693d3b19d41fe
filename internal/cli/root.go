// Package cli wires the trader commands.
package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"TickTrader/internal/config"
	"TickTrader/internal/logging"
)

type options struct {
	configPath string
}

// NewRootCommand builds the trader command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "trader",
		Short: "Long/short portfolio engine for a simulated equity market",
		Long: `Trader keeps a long/short portfolio on a tick-driven equity market.

Each tick it snapshots every instrument, closes positions whose forecast
turned against them and opens new ones with the free capital left.

  trader run      trade until interrupted
  trader sell     stop a running trader and close every position
  trader market   serve the paper market over HTTP`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"path to config file (default $CONFIG_PATH or "+config.DefaultPath+")")

	cmd.AddCommand(
		newRunCmd(opts),
		newSellCmd(opts),
		newMarketCmd(opts),
		newConfigCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// load reads and validates the config, then builds the process logger.
func (o *options) load() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(config.Path(o.configPath))
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("config validation: %w", err)
	}
	return cfg, logging.New(cfg.Log), nil
}
