package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/ialim/orderflow/internal/domain/model"
)

type paymentRepository struct {
	db querier
}

func (r *paymentRepository) Append(ctx context.Context, p *model.Payment) error {
	const query = `INSERT INTO payments (id, order_id, status, method, amount, external_ref, captured_at)
                   VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.OrderID, p.Status, p.Method, p.Amount, p.ExternalRef, p.CapturedAt)
	return err
}

func (r *paymentRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.Payment, error) {
	const query = `SELECT id, order_id, status, method, amount, external_ref, captured_at
                   FROM payments WHERE order_id=$1 ORDER BY captured_at`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Payment
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.OrderID, &p.Status, &p.Method, &p.Amount, &p.ExternalRef, &p.CapturedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
