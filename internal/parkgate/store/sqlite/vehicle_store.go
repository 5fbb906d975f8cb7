package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	dbpkg "github.com/kagabo-labs/parkgate/internal/db"
	"github.com/kagabo-labs/parkgate/internal/parkgate/store"
	"github.com/kagabo-labs/parkgate/internal/parkgate/types"
)

type VehicleStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewVehicleStore(db *sql.DB, writer *dbpkg.Worker) *VehicleStore {
	return &VehicleStore{db: db, writer: writer}
}

func (s *VehicleStore) InsertEntry(ctx context.Context, plate string, entryTime time.Time) (int64, error) {
	plate = strings.TrimSpace(plate)
	if entryTime.IsZero() {
		entryTime = time.Now().UTC()
	}

	var id int64
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO vehicle_log(car_plate, entry_time_ms, exit_time_ms, due_payment, payment_status)
VALUES (?, ?, NULL, 0, 0);
`, plate, entryTime.UTC().UnixMilli())
		if err != nil {
			return fmt.Errorf("InsertEntry: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("InsertEntry id: %w", err)
		}
		return nil
	})
	return id, err
}

// FindUnpaid resolves the most recent UNPAID session for plate.  A plate
// with several unpaid rows is not treated as corruption; newest entry
// wins.
func (s *VehicleStore) FindUnpaid(ctx context.Context, plate string) (types.VehicleRecord, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT no, car_plate, entry_time_ms, exit_time_ms, due_payment, payment_status
FROM vehicle_log
WHERE car_plate = ? AND payment_status = 0
ORDER BY entry_time_ms DESC
LIMIT 1;
`, strings.TrimSpace(plate))

	rec, err := scanVehicle(row)
	if err == sql.ErrNoRows {
		return types.VehicleRecord{}, store.ErrNotFound
	}
	if err != nil {
		return types.VehicleRecord{}, fmt.Errorf("FindUnpaid: %w", err)
	}
	return rec, nil
}

func (s *VehicleStore) MarkExited(ctx context.Context, id int64, exitTime time.Time) error {
	return s.setPaid(ctx, id, exitTime, nil)
}

func (s *VehicleStore) MarkPaid(ctx context.Context, id int64, exitTime time.Time, duePayment int64) error {
	return s.setPaid(ctx, id, exitTime, &duePayment)
}

func (s *VehicleStore) setPaid(ctx context.Context, id int64, exitTime time.Time, due *int64) error {
	if exitTime.IsZero() {
		exitTime = time.Now().UTC()
	}
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var res sql.Result
		var err error
		if due != nil {
			res, err = tx.ExecContext(ctx, `
UPDATE vehicle_log SET exit_time_ms = ?, due_payment = ?, payment_status = 1 WHERE no = ?;
`, exitTime.UTC().UnixMilli(), *due, id)
		} else {
			res, err = tx.ExecContext(ctx, `
UPDATE vehicle_log SET exit_time_ms = ?, payment_status = 1 WHERE no = ?;
`, exitTime.UTC().UnixMilli(), id)
		}
		if err != nil {
			return fmt.Errorf("update session %d: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update session %d: %w", id, err)
		}
		if n == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

func (s *VehicleStore) CountUnpaid(ctx context.Context, plate string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM vehicle_log WHERE car_plate = ? AND payment_status = 0;
`, strings.TrimSpace(plate)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("CountUnpaid: %w", err)
	}
	return n, nil
}

func (s *VehicleStore) ListVehicles(ctx context.Context) ([]types.VehicleRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT no, car_plate, entry_time_ms, exit_time_ms, due_payment, payment_status
FROM vehicle_log
ORDER BY entry_time_ms DESC;
`)
	if err != nil {
		return nil, fmt.Errorf("ListVehicles: %w", err)
	}
	defer rows.Close()

	var out []types.VehicleRecord
	for rows.Next() {
		rec, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("ListVehicles scan: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVehicle(r rowScanner) (types.VehicleRecord, error) {
	var (
		rec     types.VehicleRecord
		entryMs int64
		exitMs  sql.NullInt64
		status  int
	)
	if err := r.Scan(&rec.ID, &rec.Plate, &entryMs, &exitMs, &rec.DuePayment, &status); err != nil {
		return types.VehicleRecord{}, err
	}
	rec.EntryTime = time.UnixMilli(entryMs).UTC()
	if exitMs.Valid {
		t := time.UnixMilli(exitMs.Int64).UTC()
		rec.ExitTime = &t
	}
	rec.PaymentStatus = types.PaymentStatus(status)
	return rec, nil
}
