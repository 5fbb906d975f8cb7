package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/kagabo-labs/parkgate/internal/db"
	"github.com/kagabo-labs/parkgate/internal/parkgate/store"
	"github.com/kagabo-labs/parkgate/internal/parkgate/types"
)

type AlertStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewAlertStore(db *sql.DB, writer *dbpkg.Worker) *AlertStore {
	return &AlertStore{db: db, writer: writer}
}

func (s *AlertStore) Insert(ctx context.Context, rec types.AlertRecord) (int64, error) {
	if rec.AlertTime.IsZero() {
		rec.AlertTime = time.Now().UTC()
	}

	var id int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO alerts(reference, car_plate, alert_time_ms, due_payment, alert_type, resolved, notes)
VALUES (?, ?, ?, ?, ?, 0, ?);
`, rec.Reference, rec.Plate, rec.AlertTime.UTC().UnixMilli(), rec.DuePayment, string(rec.AlertType), rec.Notes)
		if err != nil {
			return fmt.Errorf("Insert alert: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("Insert alert id: %w", err)
		}
		return nil
	})
	return id, err
}

func (s *AlertStore) Resolve(ctx context.Context, id int64) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE alerts SET resolved = 1 WHERE id = ?;`, id)
		if err != nil {
			return fmt.Errorf("Resolve alert %d: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("Resolve alert %d: %w", id, err)
		}
		if n == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

func (s *AlertStore) ListActive(ctx context.Context) ([]types.AlertRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, reference, car_plate, alert_time_ms, due_payment, alert_type, resolved, notes
FROM alerts
WHERE resolved = 0
ORDER BY alert_time_ms DESC;
`)
	if err != nil {
		return nil, fmt.Errorf("ListActive: %w", err)
	}
	defer rows.Close()

	var out []types.AlertRecord
	for rows.Next() {
		var (
			rec      types.AlertRecord
			alertMs  int64
			resolved int
			typ      string
		)
		if err := rows.Scan(&rec.ID, &rec.Reference, &rec.Plate, &alertMs, &rec.DuePayment, &typ, &resolved, &rec.Notes); err != nil {
			return nil, fmt.Errorf("ListActive scan: %w", err)
		}
		rec.AlertTime = time.UnixMilli(alertMs).UTC()
		rec.AlertType = types.AlertType(typ)
		rec.Resolved = resolved == 1
		out = append(out, rec)
	}
	return out, rows.Err()
}
