package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ialim/orderflow/internal/domain/model"
)

// OrderRepository describes persistence operations for orders.
type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	Get(ctx context.Context, id uuid.UUID) (*model.Order, error)
	// GetByQuotation resolves the order created from a quotation, used for
	// idempotent phase handoff.
	GetByQuotation(ctx context.Context, quotationID uuid.UUID) (*model.Order, error)
	// Update persists the order only if its stored version still equals
	// expectedVersion, otherwise ErrVersionConflict.
	Update(ctx context.Context, o *model.Order, expectedVersion int64) error
}
