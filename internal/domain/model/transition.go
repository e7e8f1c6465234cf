package model

import (
	"time"

	"github.com/google/uuid"
)

// EntityKind names the aggregate a transition log row belongs to.
type EntityKind string

const (
	EntityQuotation  EntityKind = "QUOTATION"
	EntityOrder      EntityKind = "ORDER"
	EntityFulfilment EntityKind = "FULFILMENT"
	EntityOverride   EntityKind = "OVERRIDE"
)

// Transition is one append-only audit row. Exactly one row is written per
// state transition, inside the same atomic unit as the mutation itself.
type Transition struct {
	ID        uuid.UUID
	Entity    EntityKind
	EntityID  uuid.UUID
	Machine   MachineKind
	FromState string
	ToState   string
	Event     string
	Actor     string
	Payload   map[string]any
	At        time.Time
}

// NewTransition builds an audit row for a committed transition.
func NewTransition(entity EntityKind, entityID uuid.UUID, machine MachineKind, from, to, event, actor string, payload map[string]any, at time.Time) *Transition {
	return &Transition{
		ID:        uuid.New(),
		Entity:    entity,
		EntityID:  entityID,
		Machine:   machine,
		FromState: from,
		ToState:   to,
		Event:     event,
		Actor:     actor,
		Payload:   payload,
		At:        at,
	}
}
