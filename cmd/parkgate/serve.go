package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/kagabo-labs/parkgate/internal/config"
	"github.com/kagabo-labs/parkgate/internal/httpapi"
	"github.com/kagabo-labs/parkgate/internal/parkgate/service"
)

// newServeCmd runs the operator API and, when a payment terminal is
// configured, the payment handshake loop.  The lane controllers run as
// their own processes (`parkgate entry`, `parkgate exit`) against the
// shared ledger, mirroring the facility's one-process-per-device
// deployment.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the operator API and payment loop",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger("serve")

			ctx, stop := signalContext()
			defer stop()

			st, err := openStores(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			alerts := service.NewAlertManager(st.alerts, logger)

			srv := httpapi.NewServer(httpapi.Dependencies{
				Logger:   logger,
				Addr:     cfg.HTTPAddr,
				Vehicles: st.vehicles,
				Alerts:   alerts,
			})

			go func() {
				logger.Printf("listening on %s", cfg.HTTPAddr)
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Printf("server error: %v", err)
					stop()
				}
			}()

			// Payment loop on its own serial channel, independent of
			// the lanes.
			if cfg.PaymentPort != "none" {
				ch, closeCh, err := openChannel(cfg.PaymentPort, cfg.BaudRate, logger)
				if err != nil {
					return err
				}
				defer closeCh()

				if ch != nil {
					handshake := service.NewPaymentHandshake(ch, st.vehicles, service.PaymentConfig{
						RatePerMinute: cfg.RatePerMinute,
						ReadyTimeout:  cfg.ReadyTimeout,
						DoneTimeout:   cfg.DoneTimeout,
					}, logger)
					go func() {
						if err := handshake.Run(ctx); err != nil {
							logger.Printf("payment loop error: %v", err)
							stop()
						}
					}()
				}
			}

			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
