package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/ialim/orderflow/internal/domain/errors"
	"github.com/ialim/orderflow/internal/domain/model"
)

type overrideRepository struct {
	db querier
}

const overrideColumns = `id, order_id, kind, status, requested_by, approved_by,
       reason, approved_amount, expires_at, created_at, updated_at`

func (r *overrideRepository) Create(ctx context.Context, o *model.OverrideRequest) error {
	const query = `INSERT INTO overrides (` + overrideColumns + `)
                   VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	_, err := r.db.Exec(ctx, query,
		o.ID, o.OrderID, o.Kind, o.Status, o.RequestedBy, o.ApprovedBy,
		o.Reason, o.ApprovedAmount, o.ExpiresAt, o.CreatedAt, o.UpdatedAt)
	return err
}

func (r *overrideRepository) Get(ctx context.Context, id uuid.UUID) (*model.OverrideRequest, error) {
	const query = `SELECT ` + overrideColumns + ` FROM overrides WHERE id=$1`
	o, err := scanOverride(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrOverrideNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *overrideRepository) Update(ctx context.Context, o *model.OverrideRequest) error {
	const query = `UPDATE overrides
                   SET status=$1, approved_by=$2, reason=$3, approved_amount=$4,
                       expires_at=$5, updated_at=$6
                   WHERE id=$7`
	tag, err := r.db.Exec(ctx, query,
		o.Status, o.ApprovedBy, o.Reason, o.ApprovedAmount,
		o.ExpiresAt, o.UpdatedAt, o.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrOverrideNotFound
	}
	return nil
}

func (r *overrideRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.OverrideRequest, error) {
	const query = `SELECT ` + overrideColumns + `
                   FROM overrides WHERE order_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, query, orderID)
}

func (r *overrideRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]model.OverrideRequest, error) {
	const query = `SELECT ` + overrideColumns + `
                   FROM overrides
                   WHERE status='APPROVED' AND expires_at IS NOT NULL AND expires_at <= $1
                   ORDER BY expires_at
                   LIMIT $2`
	return r.list(ctx, query, now, limit)
}

func (r *overrideRepository) list(ctx context.Context, query string, args ...any) ([]model.OverrideRequest, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.OverrideRequest
	for rows.Next() {
		o, err := scanOverride(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanOverride(row pgx.Row) (*model.OverrideRequest, error) {
	var o model.OverrideRequest
	err := row.Scan(&o.ID, &o.OrderID, &o.Kind, &o.Status, &o.RequestedBy, &o.ApprovedBy,
		&o.Reason, &o.ApprovedAmount, &o.ExpiresAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
