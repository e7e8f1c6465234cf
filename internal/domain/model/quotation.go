package model

import (
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/ialim/orderflow/internal/domain/errors"
)

// QuotationState describes the negotiation lifecycle of a quotation.
type QuotationState string

const (
	QuotationStateDraft            QuotationState = "DRAFT"
	QuotationStateInReview         QuotationState = "IN_REVIEW"
	QuotationStateRevised          QuotationState = "REVISED"
	QuotationStateApprovedByBuyer  QuotationState = "APPROVED_BY_BUYER"
	QuotationStateApprovedBySeller QuotationState = "APPROVED_BY_SELLER"
	QuotationStateMutuallyApproved QuotationState = "MUTUALLY_APPROVED"
	QuotationStateRejected         QuotationState = "REJECTED"
	QuotationStateCancelled        QuotationState = "CANCELLED"
	QuotationStateExpired          QuotationState = "EXPIRED"
)

// Terminal reports whether the quotation accepts no further events.
func (s QuotationState) Terminal() bool {
	switch s {
	case QuotationStateMutuallyApproved, QuotationStateRejected, QuotationStateCancelled, QuotationStateExpired:
		return true
	}
	return false
}

// QuotationEvent names a negotiation action submitted by an actor.
type QuotationEvent string

const (
	QuotationEventShare          QuotationEvent = "SHARE"
	QuotationEventEdit           QuotationEvent = "EDIT"
	QuotationEventBuyerApprove   QuotationEvent = "BUYER_APPROVE"
	QuotationEventSellerApprove  QuotationEvent = "SELLER_APPROVE"
	QuotationEventDecline        QuotationEvent = "DECLINE"
	QuotationEventWithdraw       QuotationEvent = "WITHDRAW"
	QuotationEventExpire         QuotationEvent = "EXPIRE"
	QuotationEventExtendValidity QuotationEvent = "EXTEND_VALIDITY"
)

// QuotationItem is one negotiated line. All amounts are minor currency units.
type QuotationItem struct {
	SKU       string
	Quantity  int64
	UnitPrice int64
	Discount  int64
	Tax       int64
}

// Total is the line amount after discount and tax.
func (i QuotationItem) Total() int64 {
	return i.Quantity*i.UnitPrice - i.Discount + i.Tax
}

// Quotation is the negotiation aggregate. It becomes immutable once terminal.
type Quotation struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Items      []QuotationItem

	// Fulfilment terms negotiated alongside price; frozen onto the order.
	FulfilmentType  FulfilmentType
	DeliveryAddress string
	ReceiverName    string
	ReceiverPhone   string
	ConfirmationPIN string
	DeliveryFee     int64

	ValidUntil       time.Time
	BuyerApprovedAt  *time.Time
	SellerApprovedAt *time.Time

	State     QuotationState
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GrandTotal sums line totals plus the delivery fee.
func (q *Quotation) GrandTotal() int64 {
	var total int64
	for _, item := range q.Items {
		total += item.Total()
	}
	return total + q.DeliveryFee
}

// MutuallyApproved reports whether both parties have approved.
func (q *Quotation) MutuallyApproved() bool {
	return q.BuyerApprovedAt != nil && q.SellerApprovedAt != nil
}

// Apply advances the negotiation machine. It rejects events not defined for
// the current state with ErrIllegalTransition and leaves the quotation
// untouched on rejection.
func (q *Quotation) Apply(event QuotationEvent, now time.Time) error {
	if q.State.Terminal() {
		return domainErrors.ErrIllegalTransition
	}

	switch event {
	case QuotationEventShare:
		if q.State != QuotationStateDraft && q.State != QuotationStateRevised {
			return domainErrors.ErrIllegalTransition
		}
		q.State = QuotationStateInReview

	case QuotationEventEdit:
		// Editing invalidates prior approvals from either side.
		switch q.State {
		case QuotationStateDraft:
			// Draft edits accumulate before sharing.
		case QuotationStateInReview, QuotationStateRevised,
			QuotationStateApprovedByBuyer, QuotationStateApprovedBySeller:
			q.State = QuotationStateRevised
		default:
			return domainErrors.ErrIllegalTransition
		}
		q.BuyerApprovedAt = nil
		q.SellerApprovedAt = nil

	case QuotationEventBuyerApprove:
		if !q.approvable() {
			return domainErrors.ErrIllegalTransition
		}
		ts := now
		q.BuyerApprovedAt = &ts
		if q.MutuallyApproved() {
			q.State = QuotationStateMutuallyApproved
		} else {
			q.State = QuotationStateApprovedByBuyer
		}

	case QuotationEventSellerApprove:
		if !q.approvable() {
			return domainErrors.ErrIllegalTransition
		}
		ts := now
		q.SellerApprovedAt = &ts
		if q.MutuallyApproved() {
			q.State = QuotationStateMutuallyApproved
		} else {
			q.State = QuotationStateApprovedBySeller
		}

	case QuotationEventDecline:
		q.State = QuotationStateRejected

	case QuotationEventWithdraw:
		q.State = QuotationStateCancelled

	case QuotationEventExpire:
		// Expiry is driven by an external sweep; the deadline must have passed.
		if now.Before(q.ValidUntil) {
			return domainErrors.ErrIllegalTransition
		}
		q.State = QuotationStateExpired

	default:
		return domainErrors.ErrIllegalTransition
	}

	q.UpdatedAt = now
	return nil
}

// ExtendValidity pushes the validity deadline forward by whole days.
func (q *Quotation) ExtendValidity(days int, now time.Time) error {
	if q.State.Terminal() || days <= 0 {
		return domainErrors.ErrIllegalTransition
	}
	q.ValidUntil = q.ValidUntil.AddDate(0, 0, days)
	q.UpdatedAt = now
	return nil
}

func (q *Quotation) approvable() bool {
	switch q.State {
	case QuotationStateInReview, QuotationStateRevised,
		QuotationStateApprovedByBuyer, QuotationStateApprovedBySeller:
		return true
	}
	return false
}
