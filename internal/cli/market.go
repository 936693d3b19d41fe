package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"TickTrader/internal/gateway"
	"TickTrader/internal/paper"
)

func newMarketCmd(o *options) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "market",
		Short: "Serve the paper market over the gateway API",
		Long: `Open a paper market from the "paper" config section and expose it
under /api/v1 so that a trader with market.source=gateway can trade it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := o.load()
			if err != nil {
				return err
			}
			ex, err := paper.NewExchange(paperConfig(cfg.Paper), log)
			if err != nil {
				return err
			}
			srv := gateway.NewServer(ex, cfg.Market.APIKey, log)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe(addr) }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}
			log.Info().Int64("steps", ex.Steps()).Msg("shutting down market gateway")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}
