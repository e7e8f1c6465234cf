package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/ialim/orderflow/internal/domain/errors"
	"github.com/ialim/orderflow/internal/domain/model"
)

type quotationRepository struct {
	db querier
}

const quotationColumns = `id, customer_id, items, fulfilment_type, delivery_address,
       receiver_name, receiver_phone, confirmation_pin, delivery_fee,
       valid_until, buyer_approved_at, seller_approved_at, state, version,
       created_at, updated_at`

func (r *quotationRepository) Create(ctx context.Context, q *model.Quotation) error {
	items, err := json.Marshal(q.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	const query = `INSERT INTO quotations (` + quotationColumns + `)
                   VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`
	_, err = r.db.Exec(ctx, query,
		q.ID, q.CustomerID, items, q.FulfilmentType, q.DeliveryAddress,
		q.ReceiverName, q.ReceiverPhone, q.ConfirmationPIN, q.DeliveryFee,
		q.ValidUntil, q.BuyerApprovedAt, q.SellerApprovedAt, q.State, q.Version,
		q.CreatedAt, q.UpdatedAt)
	return err
}

func (r *quotationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Quotation, error) {
	const query = `SELECT ` + quotationColumns + ` FROM quotations WHERE id=$1`
	q, err := scanQuotation(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrQuotationNotFound
		}
		return nil, err
	}
	return q, nil
}

func (r *quotationRepository) Update(ctx context.Context, q *model.Quotation, expectedVersion int64) error {
	items, err := json.Marshal(q.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	const query = `UPDATE quotations
                   SET items=$1, fulfilment_type=$2, delivery_address=$3,
                       receiver_name=$4, receiver_phone=$5, confirmation_pin=$6,
                       delivery_fee=$7, valid_until=$8, buyer_approved_at=$9,
                       seller_approved_at=$10, state=$11, version=$12, updated_at=$13
                   WHERE id=$14 AND version=$15`
	tag, err := r.db.Exec(ctx, query,
		items, q.FulfilmentType, q.DeliveryAddress,
		q.ReceiverName, q.ReceiverPhone, q.ConfirmationPIN,
		q.DeliveryFee, q.ValidUntil, q.BuyerApprovedAt,
		q.SellerApprovedAt, q.State, q.Version, q.UpdatedAt,
		q.ID, expectedVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrVersionConflict
	}
	return nil
}

func (r *quotationRepository) ListExpiring(ctx context.Context, now time.Time, limit int) ([]model.Quotation, error) {
	const query = `SELECT ` + quotationColumns + `
                   FROM quotations
                   WHERE valid_until <= $1
                     AND state NOT IN ('MUTUALLY_APPROVED','REJECTED','CANCELLED','EXPIRED')
                   ORDER BY valid_until
                   LIMIT $2`
	rows, err := r.db.Query(ctx, query, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanQuotation(row pgx.Row) (*model.Quotation, error) {
	var (
		q     model.Quotation
		items []byte
	)
	err := row.Scan(&q.ID, &q.CustomerID, &items, &q.FulfilmentType, &q.DeliveryAddress,
		&q.ReceiverName, &q.ReceiverPhone, &q.ConfirmationPIN, &q.DeliveryFee,
		&q.ValidUntil, &q.BuyerApprovedAt, &q.SellerApprovedAt, &q.State, &q.Version,
		&q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &q.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return &q, nil
}
