package service

import "time"

// SetClock overrides the controller's time source and actuation sleep.
func (c *AccessController) SetClock(now func() time.Time, sleep func(time.Duration)) {
	c.now = now
	c.sleep = sleep
}

// SetClock overrides the handshake's time source.
func (h *PaymentHandshake) SetClock(now func() time.Time) {
	h.now = now
}

// SetClock overrides the manager's time source.
func (m *AlertManager) SetClock(now func() time.Time) {
	m.now = now
}
