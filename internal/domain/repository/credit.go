package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ialim/orderflow/internal/domain/model"
)

// CreditProfileRepository manages customer credit standing. Exposure moves
// only through the atomic reserve/release counters, never read-modify-write.
type CreditProfileRepository interface {
	Get(ctx context.Context, customerID uuid.UUID) (*model.CreditProfile, error)
	Save(ctx context.Context, p *model.CreditProfile) error
	ReserveExposure(ctx context.Context, customerID uuid.UUID, amount int64) error
	ReleaseExposure(ctx context.Context, customerID uuid.UUID, amount int64) error
	UpdateTier(ctx context.Context, customerID uuid.UUID, tier model.CreditTier) error
}

// SalesAggregateRepository accumulates completed sales volume per customer.
type SalesAggregateRepository interface {
	Get(ctx context.Context, customerID uuid.UUID) (*model.SalesAggregate, error)
	// Add atomically increments the cumulative total and returns the new value.
	Add(ctx context.Context, customerID uuid.UUID, amount int64) (int64, error)
	// SetEarnedLimit stores the earned limit derived from the cumulative
	// total; it never decreases an already stored value.
	SetEarnedLimit(ctx context.Context, customerID uuid.UUID, earnedLimit int64) error
}
