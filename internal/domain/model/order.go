package model

import (
	"time"

	"github.com/google/uuid"
)

// Phase is the coarse-grained lifecycle stage of an order.
type Phase string

const (
	PhaseSale       Phase = "SALE"
	PhaseFulfilment Phase = "FULFILMENT"
)

// MachineKind tags which state machine owns a state value so that state tags
// from different machines can never be confused.
type MachineKind string

const (
	MachineQuotation  MachineKind = "QUOTATION"
	MachineSale       MachineKind = "SALE"
	MachineFulfilment MachineKind = "FULFILMENT"
)

// StateRef pairs a machine kind with one of its state tags.
type StateRef struct {
	Machine MachineKind
	Tag     string
}

// SaleState describes the payment and credit clearance machine.
type SaleState string

const (
	SaleStateAwaitingPaymentMethod SaleState = "AWAITING_PAYMENT_METHOD"
	SaleStatePaymentInitiated      SaleState = "PAYMENT_INITIATED"
	SaleStatePaymentPending        SaleState = "PAYMENT_PENDING_CONFIRMATION"
	SaleStateOverrideReview        SaleState = "OVERRIDE_REVIEW"
	SaleStatePaymentFailed         SaleState = "PAYMENT_FAILED"
	SaleStateCleared               SaleState = "CLEARED_FOR_FULFILMENT"
	SaleStateCancelled             SaleState = "CANCELLED"
)

// Terminal reports whether the sale machine accepts no further events.
func (s SaleState) Terminal() bool {
	return s == SaleStateCleared || s == SaleStateCancelled
}

// saleMoves lists the legal sale machine transitions.
var saleMoves = map[SaleState][]SaleState{
	SaleStateAwaitingPaymentMethod: {SaleStatePaymentInitiated, SaleStateCancelled},
	SaleStatePaymentInitiated: {
		SaleStatePaymentPending, SaleStateOverrideReview,
		SaleStatePaymentFailed, SaleStateCleared, SaleStateCancelled,
	},
	SaleStatePaymentPending: {
		SaleStateOverrideReview, SaleStatePaymentFailed,
		SaleStateCleared, SaleStateCancelled,
	},
	SaleStateOverrideReview: {
		SaleStatePaymentInitiated, SaleStateCleared, SaleStateCancelled,
	},
	SaleStatePaymentFailed: {SaleStatePaymentInitiated, SaleStateCancelled},
}

// CanMove reports whether the sale machine defines the transition s → to.
func (s SaleState) CanMove(to SaleState) bool {
	for _, next := range saleMoves[s] {
		if next == to {
			return true
		}
	}
	return false
}

// QuotationTerms is the immutable snapshot of the approved quotation frozen
// onto the order at creation.
type QuotationTerms struct {
	Items            []QuotationItem
	FulfilmentType   FulfilmentType
	DeliveryAddress  string
	ReceiverName     string
	ReceiverPhone    string
	ConfirmationPIN  string
	DeliveryFee      int64
	QuotationVersion int64
}

// CreditSnapshot is a point-in-time result of a credit check, kept on the
// order for audit.
type CreditSnapshot struct {
	Tier           CreditTier
	EffectiveLimit int64
	Exposure       int64
	Overage        int64
	CheckedAt      time.Time
}

// Order is the sale/fulfilment aggregate. It is never deleted, only
// transitioned to terminal states.
type Order struct {
	ID          uuid.UUID
	CustomerID  uuid.UUID
	QuotationID uuid.UUID

	Phase           Phase
	SaleState       SaleState
	FulfilmentState FulfilmentState

	GrandTotal    int64
	CapturedTotal int64
	PaymentMethod string

	Terms  QuotationTerms
	Credit *CreditSnapshot

	// CreditReserved is the exposure amount reserved against the customer's
	// credit profile at clearance and released at finalization.
	CreditReserved  int64
	ClearToFulfilAt *time.Time
	FinalizedAt     *time.Time

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrderFromQuotation freezes a mutually approved quotation into a new
// order entering the sale phase.
func NewOrderFromQuotation(q *Quotation, now time.Time) *Order {
	items := make([]QuotationItem, len(q.Items))
	copy(items, q.Items)

	return &Order{
		ID:          uuid.New(),
		CustomerID:  q.CustomerID,
		QuotationID: q.ID,
		Phase:       PhaseSale,
		SaleState:   SaleStateAwaitingPaymentMethod,
		GrandTotal:  q.GrandTotal(),
		Terms: QuotationTerms{
			Items:            items,
			FulfilmentType:   q.FulfilmentType,
			DeliveryAddress:  q.DeliveryAddress,
			ReceiverName:     q.ReceiverName,
			ReceiverPhone:    q.ReceiverPhone,
			ConfirmationPIN:  q.ConfirmationPIN,
			DeliveryFee:      q.DeliveryFee,
			QuotationVersion: q.Version,
		},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// StateRef returns the (machine kind, state tag) pair for the active phase.
func (o *Order) StateRef() StateRef {
	if o.Phase == PhaseFulfilment {
		return StateRef{Machine: MachineFulfilment, Tag: string(o.FulfilmentState)}
	}
	return StateRef{Machine: MachineSale, Tag: string(o.SaleState)}
}

// Outstanding is the portion of the grand total not yet covered by
// confirmed captures.
func (o *Order) Outstanding() int64 {
	if o.CapturedTotal >= o.GrandTotal {
		return 0
	}
	return o.GrandTotal - o.CapturedTotal
}
