package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/kagabo-labs/parkgate/internal/config"
	"github.com/kagabo-labs/parkgate/internal/httpapi"
	"github.com/kagabo-labs/parkgate/internal/parkgate/service"
	"github.com/kagabo-labs/parkgate/internal/recognize"
)

// newLaneCmd builds the entry or exit lane command.  The lane reads
// recognizer output from stdin (one frame per line, region texts
// comma-separated), so it is piped from the external recognition
// pipeline:
//
//	recognizer --camera 0 | parkgate entry
func newLaneCmd(direction string) *cobra.Command {
	var httpAddr string

	cmd := &cobra.Command{
		Use:   direction,
		Short: fmt.Sprintf("Run the %s lane controller", direction),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(direction)

			ctx, stop := signalContext()
			defer stop()

			st, err := openStores(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			portPath := cfg.EntryPort
			if direction == "exit" {
				portPath = cfg.ExitPort
			}
			gate, closeGate, err := openGate(portPath, cfg.BaudRate, logger)
			if err != nil {
				return err
			}
			defer closeGate()

			alerts := service.NewAlertManager(st.alerts, logger)
			controller := service.NewAccessController(laneConfig(cfg, direction), gate, st.vehicles, alerts, logger)
			lane := service.NewLane(controller, recognize.NewLineReader(os.Stdin), logger)

			if httpAddr != "" {
				srv := httpapi.NewServer(httpapi.Dependencies{
					Logger:   logger,
					Addr:     httpAddr,
					Vehicles: st.vehicles,
					Alerts:   alerts,
					Lanes:    []httpapi.SnapshotSource{lane},
				})
				go func() {
					logger.Printf("status API on %s", httpAddr)
					if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Printf("status API error: %v", err)
					}
				}()
				defer func() { _ = srv.Shutdown(cmd.Context()) }()
			}

			return lane.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&httpAddr, "http", "", "serve lane status and metrics on this address (disabled when empty)")
	return cmd
}
