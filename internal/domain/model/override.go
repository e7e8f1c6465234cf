package model

import (
	"time"

	"github.com/google/uuid"
)

// OverrideKind distinguishes the two manual bypass variants.
type OverrideKind string

const (
	// OverrideAdmin permits clearance despite an unpaid balance.
	OverrideAdmin OverrideKind = "ADMIN"
	// OverrideCreditLimit covers a credit overage up to an approved amount.
	OverrideCreditLimit OverrideKind = "CREDIT_LIMIT"
)

// OverrideStatus is the arbitration state of an override request.
type OverrideStatus string

const (
	OverrideStatusPending  OverrideStatus = "PENDING"
	OverrideStatusApproved OverrideStatus = "APPROVED"
	OverrideStatusDenied   OverrideStatus = "DENIED"
	OverrideStatusRevoked  OverrideStatus = "REVOKED"
	OverrideStatusExpired  OverrideStatus = "EXPIRED"
)

// OverrideRequest is a time-boxed manual approval. At most one non-terminal
// request of each kind may exist per order.
type OverrideRequest struct {
	ID             uuid.UUID
	OrderID        uuid.UUID
	Kind           OverrideKind
	Status         OverrideStatus
	RequestedBy    string
	ApprovedBy     string
	Reason         string
	ApprovedAmount int64
	ExpiresAt      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Active reports whether the request still occupies its kind's slot.
func (r *OverrideRequest) Active(now time.Time) bool {
	switch r.Status {
	case OverrideStatusPending:
		return true
	case OverrideStatusApproved:
		return r.ExpiresAt == nil || r.ExpiresAt.After(now)
	}
	return false
}

// Valid reports whether the override currently authorizes a bypass. The
// wall clock is re-checked on every guard evaluation, not just at approval.
func (r *OverrideRequest) Valid(now time.Time) bool {
	if r.Status != OverrideStatusApproved {
		return false
	}
	return r.ExpiresAt == nil || r.ExpiresAt.After(now)
}
