package cli

import (
	"fmt"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"TickTrader/internal/config"
	"TickTrader/internal/lifecycle"
)

func newSellCmd(o *options) *cobra.Command {
	var wait time.Duration
	cmd := &cobra.Command{
		Use:   "sell",
		Short: "Close every position, stopping a running trader first",
		Long: `Run one sell-only tick that sells every long and covers every short
regardless of forecast.

With market.source=paper the positions exist only inside the running trader,
so it is sent SIGUSR1 and liquidates its own account before exiting.
With market.source=gateway the running trader is terminated and this process
liquidates the remote account itself.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := o.load()
			if err != nil {
				return err
			}
			pid := lifecycle.New(cfg.Loop.PIDFile)
			if cfg.Market.Source == config.SourcePaper {
				return liquidateInProcess(pid, wait, log)
			}

			p, err := pid.TerminateRunning(wait)
			if err != nil {
				return err
			}
			if p != 0 {
				log.Warn().Int("pid", p).Msg("stopped running trader")
			}
			return liquidateRemote(cmd, cfg, log)
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", 30*time.Second, "how long to wait for a running trader to exit")
	return cmd
}

// liquidateInProcess asks the trader holding the paper account to close it out.
func liquidateInProcess(pid *lifecycle.PIDFile, wait time.Duration, log zerolog.Logger) error {
	p, err := pid.Signal(syscall.SIGUSR1, wait)
	if err != nil {
		return fmt.Errorf("liquidate running trader: %w", err)
	}
	if p == 0 {
		log.Warn().Str("pid_file", pid.Path).
			Msg("no running trader, paper positions exist only inside trader run so there is nothing to close")
		return nil
	}
	log.Info().Int("pid", p).Msg("running trader liquidated its paper account and exited")
	return nil
}

func liquidateRemote(cmd *cobra.Command, cfg *config.Config, log zerolog.Logger) error {
	ctx := cmd.Context()
	eng, err := newEngine(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("start liquidation: %w", err)
	}
	defer eng.close()

	eng.sched.Announce(ctx, eng.market.Name(), true)
	res, err := eng.sched.Liquidate(ctx)
	if err != nil {
		return err
	}
	log.Info().Int("orders", len(res.Sell.Orders)).Int("failed", len(res.Sell.Failed())).
		Str("net_worth", res.Summary.NetWorth.StringFixed(2)).Msg("liquidation complete")
	if res.Sell.Err != nil {
		return fmt.Errorf("liquidation incomplete: %w", res.Sell.Err)
	}
	return nil
}
