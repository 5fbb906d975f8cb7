package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/kagabo-labs/parkgate/internal/parkgate/types"
	"github.com/kagabo-labs/parkgate/internal/recognize"
)

// Lane runs one physical direction end to end: it pulls frames from the
// recognizer and hands them to the controller, one at a time.  The loop
// is strictly sequential — frame, consensus, decision, actuation — so
// no two decisions for the same lane can ever interleave.  The latest
// Snapshot is kept for the presentation layer and the operator API.
type Lane struct {
	controller *AccessController
	recognizer recognize.Recognizer
	logger     *log.Logger

	mu     sync.RWMutex
	latest types.Snapshot
}

func NewLane(controller *AccessController, recognizer recognize.Recognizer, logger *log.Logger) *Lane {
	return &Lane{
		controller: controller,
		recognizer: recognizer,
		logger:     logger,
	}
}

// Run processes frames until ctx is cancelled or the recognition source
// ends.  Cancellation is honored between cycles: an in-flight gate or
// alarm sequence always completes, so the hardware is never left in an
// ambiguous state.
func (l *Lane) Run(ctx context.Context) error {
	dir := l.controller.cfg.Direction
	l.logger.Printf("[SYSTEM] %s lane ready", dir)

	for {
		texts, err := l.recognizer.ReadPlates(ctx)
		if errors.Is(err, recognize.ErrSourceClosed) || errors.Is(err, context.Canceled) {
			l.logger.Printf("[SYSTEM] %s lane stopping", dir)
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s lane: %w", dir, err)
		}

		snap := l.controller.ProcessFrame(ctx, texts)

		l.mu.Lock()
		l.latest = snap
		l.mu.Unlock()
	}
}

// Latest returns the most recent cycle's snapshot.
func (l *Lane) Latest() types.Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.latest
}
