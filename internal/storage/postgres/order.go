package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/ialim/orderflow/internal/domain/errors"
	"github.com/ialim/orderflow/internal/domain/model"
)

type orderRepository struct {
	db querier
}

const orderColumns = `id, customer_id, quotation_id, phase, sale_state, fulfilment_state,
       grand_total, captured_total, payment_method, terms, credit, credit_reserved,
       clear_to_fulfil_at, finalized_at, version, created_at, updated_at`

func (r *orderRepository) Create(ctx context.Context, o *model.Order) error {
	terms, credit, err := encodeOrderJSON(o)
	if err != nil {
		return err
	}
	const query = `INSERT INTO orders (` + orderColumns + `)
                   VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`
	_, err = r.db.Exec(ctx, query,
		o.ID, o.CustomerID, o.QuotationID, o.Phase, o.SaleState, o.FulfilmentState,
		o.GrandTotal, o.CapturedTotal, o.PaymentMethod, terms, credit, o.CreditReserved,
		o.ClearToFulfilAt, o.FinalizedAt, o.Version, o.CreatedAt, o.UpdatedAt)
	return err
}

func (r *orderRepository) Get(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	return r.one(ctx, query, id)
}

func (r *orderRepository) GetByQuotation(ctx context.Context, quotationID uuid.UUID) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE quotation_id=$1`
	return r.one(ctx, query, quotationID)
}

func (r *orderRepository) one(ctx context.Context, query string, arg any) (*model.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *orderRepository) Update(ctx context.Context, o *model.Order, expectedVersion int64) error {
	terms, credit, err := encodeOrderJSON(o)
	if err != nil {
		return err
	}
	const query = `UPDATE orders
                   SET phase=$1, sale_state=$2, fulfilment_state=$3, captured_total=$4,
                       payment_method=$5, terms=$6, credit=$7, credit_reserved=$8,
                       clear_to_fulfil_at=$9, finalized_at=$10, version=$11, updated_at=$12
                   WHERE id=$13 AND version=$14`
	tag, err := r.db.Exec(ctx, query,
		o.Phase, o.SaleState, o.FulfilmentState, o.CapturedTotal,
		o.PaymentMethod, terms, credit, o.CreditReserved,
		o.ClearToFulfilAt, o.FinalizedAt, o.Version, o.UpdatedAt,
		o.ID, expectedVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrVersionConflict
	}
	return nil
}

func encodeOrderJSON(o *model.Order) (terms []byte, credit []byte, err error) {
	terms, err = json.Marshal(o.Terms)
	if err != nil {
		return nil, nil, fmt.Errorf("encode terms: %w", err)
	}
	if o.Credit != nil {
		credit, err = json.Marshal(o.Credit)
		if err != nil {
			return nil, nil, fmt.Errorf("encode credit: %w", err)
		}
	}
	return terms, credit, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o      model.Order
		terms  []byte
		credit []byte
	)
	err := row.Scan(&o.ID, &o.CustomerID, &o.QuotationID, &o.Phase, &o.SaleState, &o.FulfilmentState,
		&o.GrandTotal, &o.CapturedTotal, &o.PaymentMethod, &terms, &credit, &o.CreditReserved,
		&o.ClearToFulfilAt, &o.FinalizedAt, &o.Version, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(terms, &o.Terms); err != nil {
		return nil, fmt.Errorf("decode terms: %w", err)
	}
	if len(credit) > 0 {
		var snapshot model.CreditSnapshot
		if err := json.Unmarshal(credit, &snapshot); err != nil {
			return nil, fmt.Errorf("decode credit: %w", err)
		}
		o.Credit = &snapshot
	}
	return &o, nil
}
