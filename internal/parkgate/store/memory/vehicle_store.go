package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kagabo-labs/parkgate/internal/parkgate/store"
	"github.com/kagabo-labs/parkgate/internal/parkgate/types"
)

// VehicleStore is an in-memory ledger for tests and hardware-less dev
// runs.  Semantics match the sqlite implementation, including
// most-recent-wins for duplicate unpaid rows.
type VehicleStore struct {
	mu     sync.Mutex
	nextID int64
	recs   []types.VehicleRecord
}

func NewVehicleStore() *VehicleStore {
	return &VehicleStore{nextID: 1}
}

func (s *VehicleStore) InsertEntry(_ context.Context, plate string, entryTime time.Time) (int64, error) {
	if entryTime.IsZero() {
		entryTime = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.recs = append(s.recs, types.VehicleRecord{
		ID:            id,
		Plate:         strings.TrimSpace(plate),
		EntryTime:     entryTime.UTC(),
		PaymentStatus: types.StatusUnpaid,
	})
	return id, nil
}

func (s *VehicleStore) FindUnpaid(_ context.Context, plate string) (types.VehicleRecord, error) {
	plate = strings.TrimSpace(plate)
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		found bool
		best  types.VehicleRecord
	)
	for _, r := range s.recs {
		if r.Plate != plate || r.PaymentStatus != types.StatusUnpaid {
			continue
		}
		if !found || r.EntryTime.After(best.EntryTime) {
			best = r
			found = true
		}
	}
	if !found {
		return types.VehicleRecord{}, store.ErrNotFound
	}
	return best, nil
}

func (s *VehicleStore) MarkExited(_ context.Context, id int64, exitTime time.Time) error {
	return s.settle(id, exitTime, nil)
}

func (s *VehicleStore) MarkPaid(_ context.Context, id int64, exitTime time.Time, duePayment int64) error {
	return s.settle(id, exitTime, &duePayment)
}

func (s *VehicleStore) settle(id int64, exitTime time.Time, due *int64) error {
	if exitTime.IsZero() {
		exitTime = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.recs {
		if s.recs[i].ID != id {
			continue
		}
		t := exitTime.UTC()
		s.recs[i].ExitTime = &t
		s.recs[i].PaymentStatus = types.StatusPaid
		if due != nil {
			s.recs[i].DuePayment = *due
		}
		return nil
	}
	return store.ErrNotFound
}

func (s *VehicleStore) CountUnpaid(_ context.Context, plate string) (int, error) {
	plate = strings.TrimSpace(plate)
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, r := range s.recs {
		if r.Plate == plate && r.PaymentStatus == types.StatusUnpaid {
			n++
		}
	}
	return n, nil
}

func (s *VehicleStore) ListVehicles(_ context.Context) ([]types.VehicleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.VehicleRecord, len(s.recs))
	copy(out, s.recs)
	sort.Slice(out, func(i, j int) bool { return out[i].EntryTime.After(out[j].EntryTime) })
	return out, nil
}

// SetDue writes an owed amount onto an open session without settling
// it.  Test-only helper for staging denial scenarios.
func (s *VehicleStore) SetDue(id int64, due int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.recs {
		if s.recs[i].ID == id {
			s.recs[i].DuePayment = due
			return nil
		}
	}
	return store.ErrNotFound
}

// Records returns a copy of every session.  Test-only helper.
func (s *VehicleStore) Records() []types.VehicleRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.VehicleRecord, len(s.recs))
	copy(out, s.recs)
	return out
}
