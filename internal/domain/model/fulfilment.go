package model

import (
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/ialim/orderflow/internal/domain/errors"
)

// FulfilmentType selects the delivery flow for an order.
type FulfilmentType string

const (
	FulfilmentPickup   FulfilmentType = "PICKUP"
	FulfilmentDelivery FulfilmentType = "DELIVERY"
	FulfilmentService  FulfilmentType = "SERVICE"
)

// FulfilmentState describes the delivery/pickup/return machine. Service-type
// fulfilments use the scheduling states instead of the stock states.
type FulfilmentState string

const (
	FulfilmentStateAllocatingStock  FulfilmentState = "ALLOCATING_STOCK"
	FulfilmentStateBackordered      FulfilmentState = "BACKORDERED"
	FulfilmentStatePickPack         FulfilmentState = "PICK_PACK"
	FulfilmentStateReadyForShipment FulfilmentState = "READY_FOR_SHIPMENT"
	FulfilmentStateShipped          FulfilmentState = "SHIPPED"
	FulfilmentStateDelivered        FulfilmentState = "DELIVERED"
	FulfilmentStateReturnRequested  FulfilmentState = "RETURN_REQUESTED"
	FulfilmentStateReturnReceived   FulfilmentState = "RETURN_RECEIVED"
	FulfilmentStateScheduling       FulfilmentState = "SCHEDULING"
	FulfilmentStateInProgress       FulfilmentState = "IN_PROGRESS"
	FulfilmentStateCompleted        FulfilmentState = "COMPLETED"
	FulfilmentStateRefunded         FulfilmentState = "REFUNDED"
	FulfilmentStateCancelled        FulfilmentState = "CANCELLED"
	FulfilmentStateFailed           FulfilmentState = "FAILED"
)

// Terminal reports whether the fulfilment accepts no further events.
func (s FulfilmentState) Terminal() bool {
	switch s {
	case FulfilmentStateCompleted, FulfilmentStateRefunded,
		FulfilmentStateCancelled, FulfilmentStateFailed:
		return true
	}
	return false
}

// FulfilmentEvent names an action submitted against a fulfilment.
type FulfilmentEvent string

const (
	FulfilmentEventReserveOk        FulfilmentEvent = "RESERVE_OK"
	FulfilmentEventReserveMiss      FulfilmentEvent = "RESERVE_MISS"
	FulfilmentEventStarted          FulfilmentEvent = "FULFILMENT_STARTED"
	FulfilmentEventPackageShipped   FulfilmentEvent = "PACKAGE_SHIPPED"
	FulfilmentEventPackageDelivered FulfilmentEvent = "PACKAGE_DELIVERED"
	FulfilmentEventComplete         FulfilmentEvent = "COMPLETE"
	FulfilmentEventReturnRequested  FulfilmentEvent = "RETURN_REQUESTED"
	FulfilmentEventReturnReceived   FulfilmentEvent = "RETURN_RECEIVED"
	FulfilmentEventRefund           FulfilmentEvent = "REFUND"
	FulfilmentEventServiceStarted   FulfilmentEvent = "SERVICE_STARTED"
	FulfilmentEventCancel           FulfilmentEvent = "CANCEL"
	FulfilmentEventFail             FulfilmentEvent = "FAIL"
)

// fulfilmentMoves maps state+event to the next state.
var fulfilmentMoves = map[FulfilmentState]map[FulfilmentEvent]FulfilmentState{
	FulfilmentStateAllocatingStock: {
		FulfilmentEventReserveOk:   FulfilmentStatePickPack,
		FulfilmentEventReserveMiss: FulfilmentStateBackordered,
		FulfilmentEventCancel:      FulfilmentStateCancelled,
		FulfilmentEventFail:        FulfilmentStateFailed,
	},
	// Backordered demand stays queued; ReserveOk resumes the normal path.
	FulfilmentStateBackordered: {
		FulfilmentEventReserveOk: FulfilmentStatePickPack,
		FulfilmentEventCancel:    FulfilmentStateCancelled,
		FulfilmentEventFail:      FulfilmentStateFailed,
	},
	FulfilmentStatePickPack: {
		FulfilmentEventStarted: FulfilmentStateReadyForShipment,
		FulfilmentEventCancel:  FulfilmentStateCancelled,
		FulfilmentEventFail:    FulfilmentStateFailed,
	},
	FulfilmentStateReadyForShipment: {
		FulfilmentEventPackageShipped: FulfilmentStateShipped,
		FulfilmentEventCancel:         FulfilmentStateCancelled,
		FulfilmentEventFail:           FulfilmentStateFailed,
	},
	FulfilmentStateShipped: {
		FulfilmentEventPackageDelivered: FulfilmentStateDelivered,
		FulfilmentEventFail:             FulfilmentStateFailed,
	},
	FulfilmentStateDelivered: {
		FulfilmentEventComplete:        FulfilmentStateCompleted,
		FulfilmentEventReturnRequested: FulfilmentStateReturnRequested,
	},
	FulfilmentStateReturnRequested: {
		FulfilmentEventReturnReceived: FulfilmentStateReturnReceived,
	},
	FulfilmentStateReturnReceived: {
		FulfilmentEventRefund: FulfilmentStateRefunded,
	},
	FulfilmentStateScheduling: {
		FulfilmentEventServiceStarted: FulfilmentStateInProgress,
		FulfilmentEventCancel:         FulfilmentStateCancelled,
		FulfilmentEventFail:           FulfilmentStateFailed,
	},
	FulfilmentStateInProgress: {
		FulfilmentEventComplete: FulfilmentStateCompleted,
		FulfilmentEventFail:     FulfilmentStateFailed,
	},
}

// Fulfilment is the delivery record, one-to-one with an order once the order
// enters the fulfilment phase.
type Fulfilment struct {
	ID      uuid.UUID
	OrderID uuid.UUID
	Type    FulfilmentType
	State   FulfilmentState

	RiderID         *uuid.UUID
	DeliveryAddress string
	ReceiverName    string
	ReceiverPhone   string
	ConfirmationPIN string
	Cost            int64

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewFulfilment creates the fulfilment record for an order entering the
// fulfilment phase, seeded from the frozen quotation terms.
func NewFulfilment(o *Order, now time.Time) *Fulfilment {
	initial := FulfilmentStateAllocatingStock
	if o.Terms.FulfilmentType == FulfilmentService {
		initial = FulfilmentStateScheduling
	}
	return &Fulfilment{
		ID:              uuid.New(),
		OrderID:         o.ID,
		Type:            o.Terms.FulfilmentType,
		State:           initial,
		DeliveryAddress: o.Terms.DeliveryAddress,
		ReceiverName:    o.Terms.ReceiverName,
		ReceiverPhone:   o.Terms.ReceiverPhone,
		ConfirmationPIN: o.Terms.ConfirmationPIN,
		Cost:            o.Terms.DeliveryFee,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Apply advances the fulfilment machine. Delivery confirmation must carry
// the receiver's PIN when one was set at creation; a mismatch is a failed
// confirmation attempt that leaves state unchanged.
func (f *Fulfilment) Apply(event FulfilmentEvent, pin string, now time.Time) error {
	next, ok := fulfilmentMoves[f.State][event]
	if !ok {
		return domainErrors.ErrIllegalTransition
	}
	if event == FulfilmentEventPackageDelivered && f.ConfirmationPIN != "" && pin != f.ConfirmationPIN {
		return domainErrors.ErrConfirmationMismatch
	}
	f.State = next
	f.UpdatedAt = now
	return nil
}

// AssignRider attaches delivery personnel to a non-terminal fulfilment.
func (f *Fulfilment) AssignRider(riderID uuid.UUID, now time.Time) error {
	if f.State.Terminal() {
		return domainErrors.ErrIllegalTransition
	}
	f.RiderID = &riderID
	f.UpdatedAt = now
	return nil
}
