package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/kagabo-labs/parkgate/internal/config"
	"github.com/kagabo-labs/parkgate/internal/parkgate/service"
)

// newPaymentCmd runs only the payment handshake loop, for deployments
// where the terminal sits on a different host than the operator API.
func newPaymentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "payment",
		Short: "Run the payment terminal handshake loop",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger("payment")

			ctx, stop := signalContext()
			defer stop()

			st, err := openStores(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			ch, closeCh, err := openChannel(cfg.PaymentPort, cfg.BaudRate, logger)
			if err != nil {
				return err
			}
			defer closeCh()

			if ch == nil {
				return errors.New("payment terminal not available; nothing to do")
			}

			handshake := service.NewPaymentHandshake(ch, st.vehicles, service.PaymentConfig{
				RatePerMinute: cfg.RatePerMinute,
				ReadyTimeout:  cfg.ReadyTimeout,
				DoneTimeout:   cfg.DoneTimeout,
			}, logger)

			logger.Printf("[SYSTEM] payment loop ready (rate=%d/min)", cfg.RatePerMinute)
			return handshake.Run(ctx)
		},
	}
}
