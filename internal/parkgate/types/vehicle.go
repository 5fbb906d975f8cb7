package types

import "time"

// PaymentStatus tracks whether a parking session's fee has been settled.
type PaymentStatus int

const (
	StatusUnpaid PaymentStatus = 0
	StatusPaid   PaymentStatus = 1
)

func (s PaymentStatus) String() string {
	if s == StatusPaid {
		return "PAID"
	}
	return "UNPAID"
}

// VehicleRecord is one parking session in the ledger.  Created when a
// vehicle is admitted at the entry lane; ExitTime and DuePayment are
// filled in on settlement or on a zero-fee exit.  Records are never
// deleted by the core.
type VehicleRecord struct {
	ID            int64         `json:"id"`
	Plate         string        `json:"plate"`
	EntryTime     time.Time     `json:"entry_time"`
	ExitTime      *time.Time    `json:"exit_time,omitempty"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	DuePayment    int64         `json:"due_payment"`
}
