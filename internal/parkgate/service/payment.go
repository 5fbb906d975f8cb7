package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/kagabo-labs/parkgate/internal/metrics"
	"github.com/kagabo-labs/parkgate/internal/parkgate/store"
	"github.com/kagabo-labs/parkgate/internal/serialio"
)

// Tokens exchanged with the payment terminal.  Inbound lines look like
// "PLATE:RAB123A|BALANCE:1400"; the terminal answers the write request
// with READY and confirms a stored-value write with DONE.
const (
	TokenInsufficient = "I"
	TokenWriteRequest = "W"
	TokenReady        = "READY"
	TokenDone         = "DONE"

	platePrefix   = "PLATE:"
	balancePrefix = "BALANCE:"
	fieldSep      = "|"
)

// PaymentOutcome classifies how one handshake ended.
type PaymentOutcome string

const (
	PaymentSettled      PaymentOutcome = "settled"
	PaymentNotFound     PaymentOutcome = "not_found"
	PaymentInsufficient PaymentOutcome = "insufficient_funds"
	PaymentReadyTimeout PaymentOutcome = "ready_timeout"
	PaymentDoneTimeout  PaymentOutcome = "done_timeout"
)

// PaymentResult is the outcome of one inbound payment message.
type PaymentResult struct {
	Outcome    PaymentOutcome
	Plate      string
	Due        int64
	NewBalance int64
}

// PaymentConfig carries the billing and protocol tunables.
type PaymentConfig struct {
	RatePerMinute int64
	ReadyTimeout  time.Duration
	DoneTimeout   time.Duration
}

// Terminal is the serial surface of the payment device.
// *serialio.Channel implements it; protocol tests script a fake.
type Terminal interface {
	WriteLine(s string) error
	ReadLine(ctx context.Context, timeout time.Duration) (string, error)
	AwaitToken(ctx context.Context, token string, timeout time.Duration) error
}

// PaymentHandshake debits a stored balance on the payment terminal and
// settles the matching ledger session.  The exchange is strictly
// two-phase: nothing is committed until the terminal confirms it
// physically wrote the new balance, so the ledger can never believe a
// payment succeeded that the card never saw.  The reverse window — the
// card was written but the DONE line was lost — is an accepted risk
// that is logged loudly for manual reconciliation.
type PaymentHandshake struct {
	term     Terminal
	vehicles store.VehicleStore
	cfg      PaymentConfig
	logger   *log.Logger
	now      func() time.Time
}

func NewPaymentHandshake(term Terminal, vehicles store.VehicleStore, cfg PaymentConfig, logger *log.Logger) *PaymentHandshake {
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = 5 * time.Second
	}
	if cfg.DoneTimeout <= 0 {
		cfg.DoneTimeout = 10 * time.Second
	}
	return &PaymentHandshake{
		term:     term,
		vehicles: vehicles,
		cfg:      cfg,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Run consumes inbound terminal messages until ctx is cancelled or the
// channel closes.  Malformed lines are discarded with no reply; a
// failed handshake is never retried by the core — the terminal must
// send a fresh message to start over.
func (h *PaymentHandshake) Run(ctx context.Context) error {
	for {
		line, err := h.term.ReadLine(ctx, time.Second)
		if errors.Is(err, serialio.ErrTimeout) {
			continue
		}
		if errors.Is(err, serialio.ErrClosed) || errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("payment read: %w", err)
		}

		plate, balance, ok := ParsePaymentMessage(line)
		if !ok {
			h.logger.Printf("[PAYMENT] discarding malformed message %q", line)
			continue
		}

		if _, err := h.Process(ctx, plate, balance); err != nil {
			// Ledger failure aborts this message only.
			h.logger.Printf("[ERROR] payment for %s: %v", plate, err)
		}
	}
}

// Process runs one handshake for a parsed plate+balance message.
func (h *PaymentHandshake) Process(ctx context.Context, plate string, balance int64) (PaymentResult, error) {
	rec, err := h.vehicles.FindUnpaid(ctx, plate)
	if errors.Is(err, store.ErrNotFound) {
		h.logger.Printf("[PAYMENT] %s not found or already paid", plate)
		return PaymentResult{Outcome: PaymentNotFound, Plate: plate}, nil
	}
	if err != nil {
		return PaymentResult{}, fmt.Errorf("find unpaid %s: %w", plate, err)
	}

	now := h.now()
	due := BillableMinutes(now.Sub(rec.EntryTime)) * h.cfg.RatePerMinute
	res := PaymentResult{Plate: plate, Due: due}

	if balance < due {
		h.logger.Printf("[PAYMENT] insufficient balance for %s: have %d, due %d", plate, balance, due)
		if err := h.term.WriteLine(TokenInsufficient); err != nil {
			return res, fmt.Errorf("send insufficient token: %w", err)
		}
		res.Outcome = PaymentInsufficient
		metrics.PaymentFailures.WithLabelValues(string(PaymentInsufficient)).Inc()
		return res, nil
	}

	res.NewBalance = balance - due

	// Phase one: probe, wait for the terminal to be ready to write.
	if err := h.term.WriteLine(TokenWriteRequest); err != nil {
		return res, fmt.Errorf("send write request: %w", err)
	}
	if err := h.term.AwaitToken(ctx, TokenReady, h.cfg.ReadyTimeout); err != nil {
		h.logger.Printf("[ERROR] timeout waiting for terminal READY (%s)", plate)
		res.Outcome = PaymentReadyTimeout
		metrics.PaymentFailures.WithLabelValues(string(PaymentReadyTimeout)).Inc()
		return res, nil
	}

	// Phase two: transmit the new balance, wait for the write
	// confirmation, and only then touch the ledger.
	if err := h.term.WriteLine(strconv.FormatInt(res.NewBalance, 10)); err != nil {
		return res, fmt.Errorf("send new balance: %w", err)
	}
	if err := h.term.AwaitToken(ctx, TokenDone, h.cfg.DoneTimeout); err != nil {
		// The terminal may or may not have written the balance; the
		// ledger stays untouched and the discrepancy is flagged for
		// manual reconciliation.
		h.logger.Printf("[ERROR] no DONE from terminal for %s; ledger NOT updated, balances may disagree", plate)
		res.Outcome = PaymentDoneTimeout
		metrics.PaymentFailures.WithLabelValues(string(PaymentDoneTimeout)).Inc()
		return res, nil
	}

	if err := h.vehicles.MarkPaid(ctx, rec.ID, now, due); err != nil {
		// The card was debited but the ledger write failed; this is the
		// one state that needs a human.
		return res, fmt.Errorf("terminal debited %s but ledger update failed: %w", plate, err)
	}

	h.logger.Printf("[PAYMENT] settled %s: due=%d new_balance=%d", plate, due, res.NewBalance)
	res.Outcome = PaymentSettled
	metrics.PaymentsSettled.Inc()
	return res, nil
}

// ParsePaymentMessage parses "PLATE:<plate>|BALANCE:<int>".  Returns
// ok=false for anything else.
func ParsePaymentMessage(line string) (plate string, balance int64, ok bool) {
	parts := strings.Split(strings.TrimSpace(line), fieldSep)
	if len(parts) != 2 {
		return "", 0, false
	}
	if !strings.HasPrefix(parts[0], platePrefix) || !strings.HasPrefix(parts[1], balancePrefix) {
		return "", 0, false
	}
	plate = strings.TrimSpace(strings.TrimPrefix(parts[0], platePrefix))
	balStr := strings.TrimSpace(strings.TrimPrefix(parts[1], balancePrefix))
	if plate == "" || balStr == "" {
		return "", 0, false
	}
	balance, err := strconv.ParseInt(balStr, 10, 64)
	if err != nil || balance < 0 {
		return "", 0, false
	}
	return plate, balance, true
}

// BillableMinutes rounds a stay up to whole minutes: any partial minute
// counts as a full one, and an exact multiple is not padded.
func BillableMinutes(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	mins := int64(d / time.Minute)
	if d%time.Minute != 0 {
		mins++
	}
	return mins
}
