package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/kagabo-labs/parkgate/internal/metrics"
	"github.com/kagabo-labs/parkgate/internal/parkgate/store"
	"github.com/kagabo-labs/parkgate/internal/parkgate/types"
)

// AlertManager records unauthorized-exit events and lets an operator
// resolve them.  It is the only writer of alert rows in the system.
type AlertManager struct {
	alerts store.AlertStore
	logger *log.Logger
	now    func() time.Time
}

func NewAlertManager(alerts store.AlertStore, logger *log.Logger) *AlertManager {
	return &AlertManager{
		alerts: alerts,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Raise records a new unresolved alert and returns it with its ledger
// id and operator reference filled in.
func (m *AlertManager) Raise(ctx context.Context, plate string, duePayment int64, alertType types.AlertType) (types.AlertRecord, error) {
	rec := types.AlertRecord{
		Reference:  uuid.NewString(),
		Plate:      plate,
		AlertTime:  m.now(),
		DuePayment: duePayment,
		AlertType:  alertType,
	}

	id, err := m.alerts.Insert(ctx, rec)
	if err != nil {
		return types.AlertRecord{}, fmt.Errorf("raise alert for %s: %w", plate, err)
	}
	rec.ID = id

	metrics.AlertsRaised.WithLabelValues(string(alertType)).Inc()
	m.logger.Printf("[ALERT] %s plate=%s due=%d ref=%s", alertType, plate, duePayment, rec.Reference)
	return rec, nil
}

// Resolve marks the alert with the given id resolved.  Returns
// store.ErrNotFound when the id does not exist.
func (m *AlertManager) Resolve(ctx context.Context, id int64) error {
	if err := m.alerts.Resolve(ctx, id); err != nil {
		return fmt.Errorf("resolve alert %d: %w", id, err)
	}
	m.logger.Printf("[ALERT] resolved id=%d", id)
	return nil
}

// ListActive returns all unresolved alerts, newest first.
func (m *AlertManager) ListActive(ctx context.Context) ([]types.AlertRecord, error) {
	return m.alerts.ListActive(ctx)
}
