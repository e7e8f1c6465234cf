package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/ialim/orderflow/internal/domain/errors"
	"github.com/ialim/orderflow/internal/domain/model"
)

type fulfilmentRepository struct {
	db querier
}

const fulfilmentColumns = `id, order_id, type, state, rider_id, delivery_address,
       receiver_name, receiver_phone, confirmation_pin, cost, version, created_at, updated_at`

func (r *fulfilmentRepository) Create(ctx context.Context, f *model.Fulfilment) error {
	const query = `INSERT INTO fulfilments (` + fulfilmentColumns + `)
                   VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`
	_, err := r.db.Exec(ctx, query,
		f.ID, f.OrderID, f.Type, f.State, f.RiderID, f.DeliveryAddress,
		f.ReceiverName, f.ReceiverPhone, f.ConfirmationPIN, f.Cost, f.Version,
		f.CreatedAt, f.UpdatedAt)
	return err
}

func (r *fulfilmentRepository) GetByOrder(ctx context.Context, orderID uuid.UUID) (*model.Fulfilment, error) {
	const query = `SELECT ` + fulfilmentColumns + ` FROM fulfilments WHERE order_id=$1`
	var f model.Fulfilment
	err := r.db.QueryRow(ctx, query, orderID).Scan(
		&f.ID, &f.OrderID, &f.Type, &f.State, &f.RiderID, &f.DeliveryAddress,
		&f.ReceiverName, &f.ReceiverPhone, &f.ConfirmationPIN, &f.Cost, &f.Version,
		&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrFulfilmentNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *fulfilmentRepository) Update(ctx context.Context, f *model.Fulfilment, expectedVersion int64) error {
	const query = `UPDATE fulfilments
                   SET state=$1, rider_id=$2, version=$3, updated_at=$4
                   WHERE id=$5 AND version=$6`
	tag, err := r.db.Exec(ctx, query,
		f.State, f.RiderID, f.Version, f.UpdatedAt, f.ID, expectedVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrVersionConflict
	}
	return nil
}
