package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/kagabo-labs/parkgate/internal/metrics"
	"github.com/kagabo-labs/parkgate/internal/parkgate/plate"
	"github.com/kagabo-labs/parkgate/internal/parkgate/store"
	"github.com/kagabo-labs/parkgate/internal/parkgate/types"
)

// Decision reasons carried on snapshots and in logs.
const (
	ReasonOutOfRange    = "out_of_range"
	ReasonNoConsensus   = "no_consensus"
	ReasonUnpaidExists  = "unpaid_exists"
	ReasonCooldown      = "cooldown"
	ReasonAlertCooldown = "alert_cooldown"
	ReasonNoUnpaid      = "no_unpaid_record"
	ReasonLedgerError   = "ledger_error"
	ReasonAdmitted      = "admitted"
	ReasonSettled       = "settled"
	ReasonPaymentDue    = "payment_pending"
)

// Gate is the sensor/actuator surface of one lane's barrier controller.
// *serialio.SensorGate implements it; tests substitute a fake.
type Gate interface {
	Available() bool
	ReadDistance() (float64, bool)
	Open() error
	Close() error
	AlarmOn() error
	AlarmSilence() error
}

// LaneConfig carries the per-lane tunables.  Every duration and
// distance is injected configuration, never derived.
type LaneConfig struct {
	Direction     types.Direction
	Marker        string
	Threshold     int
	MinDistance   float64 // cm
	MaxDistance   float64 // cm
	Cooldown      time.Duration
	AlertCooldown time.Duration
	GateOpenTime  time.Duration
	AlarmDuration time.Duration
}

// AccessController is the per-lane decision state machine.  One
// implementation serves both directions; LaneConfig.Direction selects
// the entry or exit policy.  Not safe for concurrent use: each lane's
// loop is strictly sequential, so the controller never sees two frames
// at once.
type AccessController struct {
	cfg       LaneConfig
	consensus *plate.Consensus
	gate      Gate
	vehicles  store.VehicleStore
	alerts    *AlertManager
	logger    *log.Logger

	now   func() time.Time
	sleep func(time.Duration)

	// Ephemeral session state, reset only by process restart.
	lastActedPlate string
	lastActionTime time.Time
	lastAlertTime  time.Time
	warnedNoDevice bool
}

func NewAccessController(cfg LaneConfig, gate Gate, vehicles store.VehicleStore, alerts *AlertManager, logger *log.Logger) *AccessController {
	return &AccessController{
		cfg:       cfg,
		consensus: plate.NewConsensus(cfg.Marker, cfg.Threshold),
		gate:      gate,
		vehicles:  vehicles,
		alerts:    alerts,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		sleep:     time.Sleep,
	}
}

// ProcessFrame runs one decision cycle: distance gating, consensus
// feed, and (on a trusted plate) the lane's admission or exit policy,
// including any blocking gate/alarm actuation.  The returned Snapshot
// is the cycle's complete externally visible result.
func (c *AccessController) ProcessFrame(ctx context.Context, texts []string) types.Snapshot {
	metrics.FramesProcessed.WithLabelValues(string(c.cfg.Direction)).Inc()

	snap := types.Snapshot{
		Lane:   c.cfg.Direction,
		Time:   c.now(),
		Action: types.ActionNone,
	}

	if c.gate.Available() {
		// A failed or missing distance reading is treated as out of
		// range: the fail-safe outcome is to do nothing.
		distance, ok := c.gate.ReadDistance()
		snap.Distance = distance
		snap.InRange = ok && distance >= c.cfg.MinDistance && distance <= c.cfg.MaxDistance
		if !snap.InRange {
			snap.Reason = ReasonOutOfRange
			return snap
		}
	} else {
		// No hardware, no capture-zone gating: decisions still run and
		// are recorded in the ledger; only actuation is skipped.
		snap.InRange = true
		c.warnNoDevice()
	}

	snap.Reason = ReasonNoConsensus
	for _, text := range texts {
		trusted, reached := c.consensus.Observe(text)
		if !reached {
			continue
		}
		snap.Plate = trusted
		c.decide(ctx, trusted, &snap)
		break
	}

	if snap.Action != types.ActionNone || snap.Plate != "" {
		metrics.Decisions.WithLabelValues(string(c.cfg.Direction), string(snap.Action)).Inc()
	}
	return snap
}

func (c *AccessController) decide(ctx context.Context, p string, snap *types.Snapshot) {
	switch c.cfg.Direction {
	case types.Exit:
		c.decideExit(ctx, p, snap)
	default:
		c.decideEntry(ctx, p, snap)
	}
}

// decideEntry admits a vehicle unless it still owes a previous session
// or the same plate acted too recently.
func (c *AccessController) decideEntry(ctx context.Context, p string, snap *types.Snapshot) {
	unpaid, err := c.vehicles.CountUnpaid(ctx, p)
	if err != nil {
		c.failLedger(snap, err)
		return
	}
	if unpaid > 0 {
		snap.Action = types.ActionSuppressed
		snap.Reason = ReasonUnpaidExists
		c.logger.Printf("[SKIPPED] unpaid record exists for %s", p)
		return
	}

	if c.inCooldown(p) {
		snap.Action = types.ActionSuppressed
		snap.Reason = ReasonCooldown
		c.logger.Printf("[SKIPPED] cooldown for %s", p)
		return
	}

	now := c.now()
	if _, err := c.vehicles.InsertEntry(ctx, p, now); err != nil {
		c.failLedger(snap, err)
		return
	}
	c.logger.Printf("[NEW] logged entry for %s", p)

	c.cycleGate()
	c.lastActedPlate = p
	c.lastActionTime = now

	snap.Action = types.ActionAdmitted
	snap.Reason = ReasonAdmitted
}

// decideExit settles a paid-up session or denies exit over an
// outstanding balance.  A vehicle with no unpaid session is let be: it
// may have settled and left already, and blocking it helps no one.
func (c *AccessController) decideExit(ctx context.Context, p string, snap *types.Snapshot) {
	if c.inCooldown(p) {
		snap.Action = types.ActionSuppressed
		snap.Reason = ReasonCooldown
		c.logger.Printf("[SKIPPED] cooldown for %s", p)
		return
	}

	rec, err := c.vehicles.FindUnpaid(ctx, p)
	if errors.Is(err, store.ErrNotFound) {
		snap.Reason = ReasonNoUnpaid
		c.logger.Printf("[EXIT] no unpaid record for %s; nothing to settle", p)
		return
	}
	if err != nil {
		c.failLedger(snap, err)
		return
	}

	now := c.now()

	if rec.DuePayment > 0 {
		// Outstanding balance: gate stays closed.
		if !c.lastAlertTime.IsZero() && now.Sub(c.lastAlertTime) <= c.cfg.AlertCooldown {
			snap.Action = types.ActionSuppressed
			snap.Reason = ReasonAlertCooldown
			return
		}
		if _, err := c.alerts.Raise(ctx, p, rec.DuePayment, types.AlertPaymentPending); err != nil {
			c.failLedger(snap, err)
			return
		}
		c.soundAlarm()
		c.lastAlertTime = now

		snap.Action = types.ActionDenied
		snap.Reason = ReasonPaymentDue
		c.logger.Printf("[DENIED] exit for %s, due=%d", p, rec.DuePayment)
		return
	}

	// Settled (or zero-fee) session: close it and open the gate.
	if err := c.vehicles.MarkExited(ctx, rec.ID, now); err != nil {
		c.failLedger(snap, err)
		return
	}
	c.logger.Printf("[EXIT] recorded exit for %s", p)

	c.cycleGate()
	c.lastActedPlate = p
	c.lastActionTime = now

	snap.Action = types.ActionExited
	snap.Reason = ReasonSettled
}

// inCooldown reports whether plate p acted on this lane too recently to
// act again.  Duplicate-suppression is best effort, not a lock.
func (c *AccessController) inCooldown(p string) bool {
	return p == c.lastActedPlate && c.now().Sub(c.lastActionTime) <= c.cfg.Cooldown
}

// failLedger aborts the current cycle's action on a storage error.  The
// loop itself keeps running; a persistence failure must never take down
// the lane.
func (c *AccessController) failLedger(snap *types.Snapshot, err error) {
	snap.Action = types.ActionNone
	snap.Reason = ReasonLedgerError
	c.logger.Printf("[ERROR] ledger: %v", err)
}

// cycleGate runs the open/hold/close sequence, blocking the lane loop
// for the hold so the gate cannot be re-triggered mid-cycle.
func (c *AccessController) cycleGate() {
	if !c.deviceReady() {
		return
	}
	if err := c.gate.Open(); err != nil {
		c.logger.Printf("[ERROR] gate open: %v", err)
		return
	}
	c.sleep(c.cfg.GateOpenTime)
	if err := c.gate.Close(); err != nil {
		c.logger.Printf("[ERROR] gate close: %v", err)
	}
	metrics.GateActuations.WithLabelValues(string(c.cfg.Direction)).Inc()
}

// soundAlarm runs the alarm-on/hold/silence sequence used on denied
// exits.  The explicit silence command means an interrupted process
// never leaves the alarm state ambiguous.
func (c *AccessController) soundAlarm() {
	if !c.deviceReady() {
		return
	}
	if err := c.gate.AlarmOn(); err != nil {
		c.logger.Printf("[ERROR] alarm on: %v", err)
		return
	}
	c.sleep(c.cfg.AlarmDuration)
	if err := c.gate.AlarmSilence(); err != nil {
		c.logger.Printf("[ERROR] alarm silence: %v", err)
	}
	metrics.AlarmsRaised.Inc()
}

// deviceReady reports whether actuation hardware is attached, warning
// once when it is not.
func (c *AccessController) deviceReady() bool {
	if c.gate.Available() {
		return true
	}
	c.warnNoDevice()
	return false
}

func (c *AccessController) warnNoDevice() {
	if c.warnedNoDevice {
		return
	}
	c.logger.Printf("[WARN] %s lane running without gate hardware; actuation skipped", c.cfg.Direction)
	c.warnedNoDevice = true
}
