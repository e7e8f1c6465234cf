package model

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is the settlement outcome reported for a capture.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusConfirmed PaymentStatus = "CONFIRMED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// Payment is one capture against an order. Refunds are negative-amount
// confirmed payments; prior payments are never mutated.
type Payment struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	Status      PaymentStatus
	Method      string
	Amount      int64
	ExternalRef string
	CapturedAt  time.Time
}

// Refund reports whether this payment reverses captured funds.
func (p *Payment) Refund() bool {
	return p.Amount < 0
}
