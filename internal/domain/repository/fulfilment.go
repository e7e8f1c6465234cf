package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ialim/orderflow/internal/domain/model"
)

// FulfilmentRepository describes persistence operations for fulfilments.
type FulfilmentRepository interface {
	Create(ctx context.Context, f *model.Fulfilment) error
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*model.Fulfilment, error)
	// Update persists the fulfilment only if its stored version still equals
	// expectedVersion, otherwise ErrVersionConflict.
	Update(ctx context.Context, f *model.Fulfilment, expectedVersion int64) error
}
