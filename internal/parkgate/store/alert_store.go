package store

import (
	"context"

	"github.com/kagabo-labs/parkgate/internal/parkgate/types"
)

// AlertStore persists unauthorized-exit alerts.  Rows are created by the
// exit lane and only ever mutated by an operator resolving them.
type AlertStore interface {
	// Insert records a new alert and returns its id.
	Insert(ctx context.Context, rec types.AlertRecord) (int64, error)

	// Resolve marks the alert with the given id resolved.  Returns
	// ErrNotFound if the id does not exist.
	Resolve(ctx context.Context, id int64) error

	// ListActive returns all unresolved alerts, newest first.
	ListActive(ctx context.Context) ([]types.AlertRecord, error)
}
