package store

import (
	"context"
	"time"

	"github.com/kagabo-labs/parkgate/internal/parkgate/types"
)

// VehicleStore is the ledger of parking sessions.  The core re-reads
// current state on every decision cycle rather than caching records —
// the entry lane, exit lane and payment loop all mutate concurrently.
//
// Multiple UNPAID rows for one plate are tolerated: FindUnpaid always
// resolves to the most recent by entry time.
type VehicleStore interface {
	// InsertEntry opens a new UNPAID session and returns its ledger id.
	InsertEntry(ctx context.Context, plate string, entryTime time.Time) (int64, error)

	// FindUnpaid returns the most recent UNPAID session for plate, or
	// ErrNotFound if none exists.
	FindUnpaid(ctx context.Context, plate string) (types.VehicleRecord, error)

	// MarkExited closes a zero-fee session: sets exit time and PAID.
	MarkExited(ctx context.Context, id int64, exitTime time.Time) error

	// MarkPaid settles a session after a confirmed terminal write: sets
	// exit time, the billed amount, and PAID.
	MarkPaid(ctx context.Context, id int64, exitTime time.Time, duePayment int64) error

	// CountUnpaid reports how many UNPAID sessions exist for plate.
	CountUnpaid(ctx context.Context, plate string) (int, error)

	// ListVehicles returns all sessions, most recent entry first, for
	// the operator read surface.
	ListVehicles(ctx context.Context) ([]types.VehicleRecord, error)
}
