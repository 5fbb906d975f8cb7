package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kagabo-labs/parkgate/internal/config"
	"github.com/kagabo-labs/parkgate/internal/db"
	"github.com/kagabo-labs/parkgate/internal/parkgate/service"
	"github.com/kagabo-labs/parkgate/internal/parkgate/store/sqlite"
	"github.com/kagabo-labs/parkgate/internal/serialio"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "parkgate",
		Short:         "Parking facility admission and billing core",
		Long:          "parkgate runs the entry/exit lane controllers, the payment terminal handshake, and the operator API for a single parking facility.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		newServeCmd(),
		newLaneCmd("entry"),
		newLaneCmd("exit"),
		newPaymentCmd(),
		newAlertsCmd(),
		newSeedCmd(),
		newVersionCmd(),
	)

	return root
}

func newLogger(tag string) *log.Logger {
	return log.New(os.Stdout, "parkgate-"+tag+" ", log.LstdFlags|log.LUTC)
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.  Loops
// finish their in-flight actuation before exiting.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// stores bundles the ledger handle and its stores for one process.
type stores struct {
	conn     *sql.DB
	writer   *db.Worker
	vehicles *sqlite.VehicleStore
	alerts   *sqlite.AlertStore
}

func openStores(ctx context.Context, cfg config.Config) (*stores, error) {
	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath})
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	writer := db.NewWorker(conn)
	return &stores{
		conn:     conn,
		writer:   writer,
		vehicles: sqlite.NewVehicleStore(conn, writer),
		alerts:   sqlite.NewAlertStore(conn, writer),
	}, nil
}

func (s *stores) Close() {
	s.writer.Close()
	_ = s.conn.Close()
}

// openGate resolves a lane's serial device.  path "none" forces
// no-hardware mode; empty means autodetect, degrading to no-hardware
// with a warning when nothing is attached.
func openGate(path string, baud int, logger *log.Logger) (*serialio.SensorGate, func(), error) {
	ch, closeFn, err := openChannel(path, baud, logger)
	if err != nil {
		return nil, nil, err
	}
	return serialio.NewSensorGate(ch), closeFn, nil
}

func openChannel(path string, baud int, logger *log.Logger) (*serialio.Channel, func(), error) {
	if path == "none" {
		logger.Printf("[WARN] serial device disabled by configuration")
		return nil, func() {}, nil
	}
	if path == "" {
		detected, err := serialio.DetectPort()
		if err != nil {
			logger.Printf("[WARN] no serial device detected; running without hardware")
			return nil, func() {}, nil
		}
		path = detected
	}

	port, err := serialio.OpenPort(path, baud)
	if err != nil {
		return nil, nil, err
	}
	logger.Printf("[CONNECTED] serial device on %s", path)

	ch := serialio.NewChannel(port)
	return ch, func() { _ = ch.Close() }, nil
}

func laneConfig(cfg config.Config, direction string) service.LaneConfig {
	lc := service.LaneConfig{
		Marker:        cfg.PlateMarker,
		Threshold:     cfg.ConsensusThreshold,
		MinDistance:   cfg.MinDistance,
		MaxDistance:   cfg.MaxDistance,
		AlertCooldown: cfg.AlertCooldown,
		GateOpenTime:  cfg.GateOpenTime,
		AlarmDuration: cfg.AlarmDuration,
	}
	if direction == "exit" {
		lc.Direction = "exit"
		lc.Cooldown = cfg.ExitCooldown
	} else {
		lc.Direction = "entry"
		lc.Cooldown = cfg.EntryCooldown
	}
	return lc
}
