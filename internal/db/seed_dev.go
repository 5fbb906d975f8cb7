package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SeedDev inserts a handful of parking sessions so the operator API and
// CLI have something to show on a fresh dev database.  Idempotent-ish:
// it skips seeding when the ledger already has rows.
func SeedDev(ctx context.Context, conn *sql.DB) error {
	var n int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM vehicle_log;`).Scan(&n); err != nil {
		return fmt.Errorf("seed count: %w", err)
	}
	if n > 0 {
		return nil
	}

	now := time.Now().UTC()

	// One open unpaid session and one settled session from earlier today.
	if _, err := conn.ExecContext(ctx, `
INSERT INTO vehicle_log(car_plate, entry_time_ms, exit_time_ms, due_payment, payment_status)
VALUES (?, ?, NULL, 0, 0);`,
		"RAB123A", now.Add(-40*time.Minute).UnixMilli(),
	); err != nil {
		return fmt.Errorf("seed unpaid session: %w", err)
	}

	if _, err := conn.ExecContext(ctx, `
INSERT INTO vehicle_log(car_plate, entry_time_ms, exit_time_ms, due_payment, payment_status)
VALUES (?, ?, ?, ?, 1);`,
		"RAC456B",
		now.Add(-3*time.Hour).UnixMilli(),
		now.Add(-2*time.Hour).UnixMilli(),
		300,
	); err != nil {
		return fmt.Errorf("seed paid session: %w", err)
	}

	return nil
}
