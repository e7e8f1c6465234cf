package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/ialim/orderflow/internal/domain/errors"
	"github.com/ialim/orderflow/internal/domain/model"
)

type creditProfileRepository struct {
	db querier
}

func (r *creditProfileRepository) Get(ctx context.Context, customerID uuid.UUID) (*model.CreditProfile, error) {
	const query = `SELECT customer_id, tier, custom_limit, exposure, updated_at
                   FROM credit_profiles WHERE customer_id=$1`
	var p model.CreditProfile
	err := r.db.QueryRow(ctx, query, customerID).Scan(&p.CustomerID, &p.Tier, &p.CustomLimit, &p.Exposure, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *creditProfileRepository) Save(ctx context.Context, p *model.CreditProfile) error {
	const query = `INSERT INTO credit_profiles (customer_id, tier, custom_limit, exposure, updated_at)
                   VALUES ($1, $2, $3, $4, NOW())
                   ON CONFLICT (customer_id) DO UPDATE
                   SET tier = EXCLUDED.tier,
                       custom_limit = EXCLUDED.custom_limit,
                       updated_at = NOW()`
	_, err := r.db.Exec(ctx, query, p.CustomerID, p.Tier, p.CustomLimit, p.Exposure)
	return err
}

// ReserveExposure moves the shared exposure counter in one atomic statement
// so concurrent orders of the same customer never lose an update.
func (r *creditProfileRepository) ReserveExposure(ctx context.Context, customerID uuid.UUID, amount int64) error {
	const query = `UPDATE credit_profiles
                   SET exposure = exposure + $2, updated_at = NOW()
                   WHERE customer_id=$1`
	tag, err := r.db.Exec(ctx, query, customerID, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrCreditProfileMissing
	}
	return nil
}

func (r *creditProfileRepository) ReleaseExposure(ctx context.Context, customerID uuid.UUID, amount int64) error {
	const query = `UPDATE credit_profiles
                   SET exposure = GREATEST(0, exposure - $2), updated_at = NOW()
                   WHERE customer_id=$1`
	tag, err := r.db.Exec(ctx, query, customerID, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrCreditProfileMissing
	}
	return nil
}

func (r *creditProfileRepository) UpdateTier(ctx context.Context, customerID uuid.UUID, tier model.CreditTier) error {
	const query = `UPDATE credit_profiles SET tier=$2, updated_at=NOW() WHERE customer_id=$1`
	tag, err := r.db.Exec(ctx, query, customerID, tier)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrCreditProfileMissing
	}
	return nil
}

type salesAggregateRepository struct {
	db querier
}

func (r *salesAggregateRepository) Get(ctx context.Context, customerID uuid.UUID) (*model.SalesAggregate, error) {
	const query = `SELECT customer_id, cumulative_sales, earned_limit, updated_at
                   FROM sales_aggregates WHERE customer_id=$1`
	var a model.SalesAggregate
	err := r.db.QueryRow(ctx, query, customerID).Scan(&a.CustomerID, &a.CumulativeSales, &a.EarnedLimit, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *salesAggregateRepository) Add(ctx context.Context, customerID uuid.UUID, amount int64) (int64, error) {
	const query = `INSERT INTO sales_aggregates (customer_id, cumulative_sales, earned_limit, updated_at)
                   VALUES ($1, $2, 0, NOW())
                   ON CONFLICT (customer_id) DO UPDATE
                   SET cumulative_sales = sales_aggregates.cumulative_sales + EXCLUDED.cumulative_sales,
                       updated_at = NOW()
                   RETURNING cumulative_sales`
	var cumulative int64
	if err := r.db.QueryRow(ctx, query, customerID, amount).Scan(&cumulative); err != nil {
		return 0, err
	}
	return cumulative, nil
}

// SetEarnedLimit is monotonic: a stored limit never goes down, even if a
// stale caller computes a smaller one.
func (r *salesAggregateRepository) SetEarnedLimit(ctx context.Context, customerID uuid.UUID, earnedLimit int64) error {
	const query = `UPDATE sales_aggregates
                   SET earned_limit = GREATEST(earned_limit, $2), updated_at = NOW()
                   WHERE customer_id=$1`
	_, err := r.db.Exec(ctx, query, customerID, earnedLimit)
	return err
}
