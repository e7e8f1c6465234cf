package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ialim/orderflow/internal/domain/model"
)

// OverrideRepository stores manual override requests.
type OverrideRepository interface {
	Create(ctx context.Context, r *model.OverrideRequest) error
	Get(ctx context.Context, id uuid.UUID) (*model.OverrideRequest, error)
	Update(ctx context.Context, r *model.OverrideRequest) error
	// ListByOrder returns every override request for the order, newest first.
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.OverrideRequest, error)
	// ListExpired returns approved overrides whose expiry has passed, up to
	// limit rows, for the periodic sweep.
	ListExpired(ctx context.Context, now time.Time, limit int) ([]model.OverrideRequest, error)
}
