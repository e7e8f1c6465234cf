package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ialim/orderflow/internal/domain/model"
)

// PaymentRepository is append-style: captures and refunds are inserted,
// never mutated.
type PaymentRepository interface {
	Append(ctx context.Context, p *model.Payment) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.Payment, error)
}
