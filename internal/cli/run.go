package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"TickTrader/internal/lifecycle"
)

func newRunCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Trade until interrupted",
		Long: `Run the control loop: snapshot, sell, buy, report, sleep.

The process records its pid so that "trader sell" can find it. SIGINT or
SIGTERM ends the loop after the current tick. SIGUSR1 makes the next pass a
sell-only tick that closes every position, after which the process exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := o.load()
			if err != nil {
				return err
			}

			pid := lifecycle.New(cfg.Loop.PIDFile)
			if err := pid.Acquire(); err != nil {
				return err
			}
			defer func() {
				if err := pid.Release(); err != nil {
					log.Warn().Err(err).Msg("release pid file")
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			eng, err := newEngine(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("start trader: %w", err)
			}
			defer eng.close()

			eng.sched.Announce(ctx, eng.market.Name(), false)
			if err := eng.sched.RegisterDigest(ctx, cfg.Loop.DigestCron); err != nil {
				return err
			}
			eng.sched.Start()
			defer eng.sched.Stop()

			usr1 := make(chan os.Signal, 1)
			signal.Notify(usr1, syscall.SIGUSR1)
			defer signal.Stop(usr1)
			go func() {
				select {
				case <-usr1:
					log.Warn().Msg("liquidation requested by signal")
					eng.sched.RequestLiquidation()
				case <-ctx.Done():
				}
			}()

			if eng.telegram != nil {
				go eng.telegram.StartPolling(ctx, eng.sched.HandleCommand)
				log.Info().Msg("telegram polling started")
			}

			err = eng.sched.Run(ctx)
			if p, ok := eng.market.(interface{ Realized() float64 }); ok {
				log.Info().Float64("realized", p.Realized()).Msg("paper account profit")
			}
			return err
		},
	}
}
