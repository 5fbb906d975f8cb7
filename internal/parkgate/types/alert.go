package types

import "time"

// AlertType classifies why an alert was raised.
type AlertType string

const (
	// AlertPaymentPending is raised when a vehicle attempts to exit with
	// an outstanding balance.
	AlertPaymentPending AlertType = "PAYMENT_PENDING"

	// AlertTampering is reserved for a sustained sensor-fault condition.
	// No decision path raises it yet; the type exists so stored alerts
	// and the operator surface are ready when a triggering policy lands.
	AlertTampering AlertType = "TAMPERING"
)

// AlertRecord is one unauthorized-exit (or, later, tampering) event.
// Reference is a UUID handed to operators so an alert can be cited
// without exposing ledger row ids.
type AlertRecord struct {
	ID         int64     `json:"id"`
	Reference  string    `json:"reference"`
	Plate      string    `json:"plate"`
	AlertTime  time.Time `json:"alert_time"`
	DuePayment int64     `json:"due_payment"`
	AlertType  AlertType `json:"alert_type"`
	Resolved   bool      `json:"resolved"`
	Notes      string    `json:"notes,omitempty"`
}
