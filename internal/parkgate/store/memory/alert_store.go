package memory

import (
	"context"
	"sync"
	"time"

	"github.com/kagabo-labs/parkgate/internal/parkgate/store"
	"github.com/kagabo-labs/parkgate/internal/parkgate/types"
)

// AlertStore is an in-memory alert log for tests and dev environments.
type AlertStore struct {
	mu     sync.Mutex
	nextID int64
	recs   []types.AlertRecord
}

func NewAlertStore() *AlertStore {
	return &AlertStore{nextID: 1}
}

func (s *AlertStore) Insert(_ context.Context, rec types.AlertRecord) (int64, error) {
	if rec.AlertTime.IsZero() {
		rec.AlertTime = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = s.nextID
	s.nextID++
	s.recs = append(s.recs, rec)
	return rec.ID, nil
}

func (s *AlertStore) Resolve(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.recs {
		if s.recs[i].ID == id {
			s.recs[i].Resolved = true
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *AlertStore) ListActive(_ context.Context) ([]types.AlertRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []types.AlertRecord
	for i := len(s.recs) - 1; i >= 0; i-- {
		if !s.recs[i].Resolved {
			out = append(out, s.recs[i])
		}
	}
	return out, nil
}

// Alerts returns a copy of every alert.  Test-only helper.
func (s *AlertStore) Alerts() []types.AlertRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.AlertRecord, len(s.recs))
	copy(out, s.recs)
	return out
}
