package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ialim/orderflow/internal/domain/model"
)

// QuotationRepository describes persistence operations for quotations.
type QuotationRepository interface {
	Create(ctx context.Context, q *model.Quotation) error
	Get(ctx context.Context, id uuid.UUID) (*model.Quotation, error)
	// Update persists the quotation only if its stored version still equals
	// expectedVersion, otherwise ErrVersionConflict.
	Update(ctx context.Context, q *model.Quotation, expectedVersion int64) error
	// ListExpiring returns non-terminal quotations whose validity deadline
	// has passed, up to limit rows.
	ListExpiring(ctx context.Context, now time.Time, limit int) ([]model.Quotation, error)
}
