package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ialim/orderflow/internal/domain/repository"
)

// querier is the query surface shared by the pool and an open transaction,
// so every repository works in both contexts.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgxPool is the subset of *pgxpool.Pool the storage needs. Tests substitute
// a mock behind it.
type pgxPool interface {
	querier
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Storage is the repository facade backed by PostgreSQL. It is both a
// repository factory over the raw pool and the unit-of-work entry point.
type Storage struct {
	factory
	db     pgxPool
	logger *slog.Logger
}

// factory binds the repositories to one query surface, either the pool or a
// transaction.
type factory struct {
	db querier
}

func (f factory) Users() repository.UserRepository { return &userRepository{db: f.db} }

func (f factory) Quotations() repository.QuotationRepository { return &quotationRepository{db: f.db} }

func (f factory) Orders() repository.OrderRepository { return &orderRepository{db: f.db} }

func (f factory) CreditProfiles() repository.CreditProfileRepository {
	return &creditProfileRepository{db: f.db}
}

func (f factory) SalesAggregates() repository.SalesAggregateRepository {
	return &salesAggregateRepository{db: f.db}
}

func (f factory) Overrides() repository.OverrideRepository { return &overrideRepository{db: f.db} }

func (f factory) Payments() repository.PaymentRepository { return &paymentRepository{db: f.db} }

func (f factory) Fulfilments() repository.FulfilmentRepository {
	return &fulfilmentRepository{db: f.db}
}

func (f factory) Transitions() repository.TransitionRepository {
	return &transitionRepository{db: f.db}
}

// newPgxPool is indirected so tests can substitute a mock pool.
var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := newWithPool(pool, logger)
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

func newWithPool(pool pgxPool, logger *slog.Logger) *Storage {
	return &Storage{factory: factory{db: pool}, db: pool, logger: logger}
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// Do implements repository.UnitOfWork: fn runs against repositories bound to
// a single transaction that commits only if fn returns nil.
func (s *Storage) Do(ctx context.Context, fn func(repository.Factory) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(factory{db: tx})
	return err
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS quotations (
            id UUID PRIMARY KEY,
            customer_id UUID NOT NULL,
            items JSONB NOT NULL,
            fulfilment_type TEXT NOT NULL,
            delivery_address TEXT NOT NULL DEFAULT '',
            receiver_name TEXT NOT NULL DEFAULT '',
            receiver_phone TEXT NOT NULL DEFAULT '',
            confirmation_pin TEXT NOT NULL DEFAULT '',
            delivery_fee BIGINT NOT NULL DEFAULT 0,
            valid_until TIMESTAMPTZ NOT NULL,
            buyer_approved_at TIMESTAMPTZ,
            seller_approved_at TIMESTAMPTZ,
            state TEXT NOT NULL,
            version BIGINT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id UUID PRIMARY KEY,
            customer_id UUID NOT NULL,
            quotation_id UUID UNIQUE NOT NULL,
            phase TEXT NOT NULL,
            sale_state TEXT NOT NULL,
            fulfilment_state TEXT NOT NULL DEFAULT '',
            grand_total BIGINT NOT NULL,
            captured_total BIGINT NOT NULL DEFAULT 0,
            payment_method TEXT NOT NULL DEFAULT '',
            terms JSONB NOT NULL,
            credit JSONB,
            credit_reserved BIGINT NOT NULL DEFAULT 0,
            clear_to_fulfil_at TIMESTAMPTZ,
            finalized_at TIMESTAMPTZ,
            version BIGINT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS credit_profiles (
            customer_id UUID PRIMARY KEY,
            tier TEXT NOT NULL,
            custom_limit BIGINT NOT NULL DEFAULT 0,
            exposure BIGINT NOT NULL DEFAULT 0,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS sales_aggregates (
            customer_id UUID PRIMARY KEY,
            cumulative_sales BIGINT NOT NULL DEFAULT 0,
            earned_limit BIGINT NOT NULL DEFAULT 0,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS overrides (
            id UUID PRIMARY KEY,
            order_id UUID NOT NULL REFERENCES orders(id),
            kind TEXT NOT NULL,
            status TEXT NOT NULL,
            requested_by TEXT NOT NULL DEFAULT '',
            approved_by TEXT NOT NULL DEFAULT '',
            reason TEXT NOT NULL DEFAULT '',
            approved_amount BIGINT NOT NULL DEFAULT 0,
            expires_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS payments (
            id UUID PRIMARY KEY,
            order_id UUID NOT NULL REFERENCES orders(id),
            status TEXT NOT NULL,
            method TEXT NOT NULL DEFAULT '',
            amount BIGINT NOT NULL,
            external_ref TEXT NOT NULL DEFAULT '',
            captured_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS fulfilments (
            id UUID PRIMARY KEY,
            order_id UUID UNIQUE NOT NULL REFERENCES orders(id),
            type TEXT NOT NULL,
            state TEXT NOT NULL,
            rider_id UUID,
            delivery_address TEXT NOT NULL DEFAULT '',
            receiver_name TEXT NOT NULL DEFAULT '',
            receiver_phone TEXT NOT NULL DEFAULT '',
            confirmation_pin TEXT NOT NULL DEFAULT '',
            cost BIGINT NOT NULL DEFAULT 0,
            version BIGINT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS transitions (
            id UUID PRIMARY KEY,
            entity TEXT NOT NULL,
            entity_id UUID NOT NULL,
            machine TEXT NOT NULL,
            from_state TEXT NOT NULL,
            to_state TEXT NOT NULL,
            event TEXT NOT NULL,
            actor TEXT NOT NULL DEFAULT '',
            payload JSONB,
            at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_quotations_valid ON quotations(valid_until) WHERE state NOT IN ('MUTUALLY_APPROVED','REJECTED','CANCELLED','EXPIRED')`,
		`CREATE INDEX IF NOT EXISTS idx_overrides_order ON overrides(order_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_payments_order ON payments(order_id, captured_at)`,
		`CREATE INDEX IF NOT EXISTS idx_transitions_entity ON transitions(entity, entity_id, at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.db.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}
