package service_test

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kagabo-labs/parkgate/internal/parkgate/service"
	"github.com/kagabo-labs/parkgate/internal/parkgate/types"
)

// TestFullStay walks one vehicle through a complete stay against a
// shared ledger: admitted at the entry lane, denied at the exit lane
// over an assessed fee, refused at the terminal for lack of funds,
// denied again, and finally settled.
func TestFullStay(t *testing.T) {
	ctx := context.Background()
	logger := log.New(io.Discard, "", 0)

	entry := newFixture(t, types.Entry)

	// The exit lane shares the entry fixture's ledger and alert store.
	exitGate := &fakeGate{distances: []float64{25}}
	alerts := service.NewAlertManager(entry.alertStore, logger)
	exitCtl := service.NewAccessController(testLaneConfig(types.Exit), exitGate, entry.vehicles, alerts, logger)
	exitCtl.SetClock(func() time.Time { return entry.now }, func(time.Duration) {})

	// 09:00 - the vehicle enters.
	snap := entry.observe(t, "RAB123A")
	require.Equal(t, types.ActionAdmitted, snap.Action)

	recs := entry.vehicles.Records()
	require.Len(t, recs, 1)
	setDue(t, entry.vehicles, recs[0].ID, 300)

	// 09:30 - it tries to leave with the fee outstanding: alarm and
	// alert, gate stays closed.
	entry.now = entry.now.Add(30 * time.Minute)
	snap = exitCtl.ProcessFrame(ctx, []string{"RAB123A", "RAB123A", "RAB123A"})
	assert.Equal(t, types.ActionDenied, snap.Action)
	assert.Equal(t, []string{"alarm_on", "alarm_silence"}, exitGate.Commands())
	require.Len(t, entry.alertStore.Alerts(), 1)

	// The card is short: due is 30 min * 5 = 150 against a balance of
	// 100.  Only the insufficient token goes out, nothing is committed.
	term := &fakeTerminal{readyOK: true, doneOK: true}
	h := service.NewPaymentHandshake(term, entry.vehicles, service.PaymentConfig{RatePerMinute: 5}, logger)
	h.SetClock(func() time.Time { return entry.now })

	res, err := h.Process(ctx, "RAB123A", 100)
	require.NoError(t, err)
	assert.Equal(t, service.PaymentInsufficient, res.Outcome)
	assert.Equal(t, int64(150), res.Due)
	assert.Equal(t, []string{service.TokenInsufficient}, term.writes)

	// Still unpaid: a fresh exit attempt past the alert cooldown is
	// denied again over the same record.
	entry.now = entry.now.Add(time.Minute)
	snap = exitCtl.ProcessFrame(ctx, []string{"RAB123A", "RAB123A", "RAB123A"})
	assert.Equal(t, types.ActionDenied, snap.Action)
	require.Len(t, entry.alertStore.Alerts(), 2)

	// A topped-up card settles the session.
	term.writes = nil
	res, err = h.Process(ctx, "RAB123A", 500)
	require.NoError(t, err)
	require.Equal(t, service.PaymentSettled, res.Outcome)
	assert.Equal(t, int64(155), res.Due) // 31 min * 5
	assert.Equal(t, int64(345), res.NewBalance)

	// With the session settled there is nothing left to hold the
	// vehicle against; the exit lane has no unpaid record and raises no
	// further alarm.
	entry.now = entry.now.Add(time.Minute)
	snap = exitCtl.ProcessFrame(ctx, []string{"RAB123A", "RAB123A", "RAB123A"})
	assert.Equal(t, types.ActionNone, snap.Action)
	assert.Equal(t, service.ReasonNoUnpaid, snap.Reason)
	assert.Len(t, entry.alertStore.Alerts(), 2)

	recs = entry.vehicles.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, types.StatusPaid, recs[0].PaymentStatus)
	assert.Equal(t, int64(155), recs[0].DuePayment)
}
