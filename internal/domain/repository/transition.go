package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ialim/orderflow/internal/domain/model"
)

// TransitionRepository is the append-only audit trail. One row per committed
// transition, written inside the transition's atomic unit.
type TransitionRepository interface {
	Append(ctx context.Context, t *model.Transition) error
	ListByEntity(ctx context.Context, entity model.EntityKind, entityID uuid.UUID) ([]model.Transition, error)
}
