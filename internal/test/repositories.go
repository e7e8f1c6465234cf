package test

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/ialim/orderflow/internal/domain/errors"
	"github.com/ialim/orderflow/internal/domain/model"
	"github.com/ialim/orderflow/internal/domain/repository"
)

// Repos is an in-memory repository set for use case tests. It enforces the
// same optimistic version semantics as the real storage.
type Repos struct {
	QuotationRows  map[uuid.UUID]*model.Quotation
	OrderRows      map[uuid.UUID]*model.Order
	ProfileRows    map[uuid.UUID]*model.CreditProfile
	AggregateRows  map[uuid.UUID]*model.SalesAggregate
	OverrideRows   map[uuid.UUID]*model.OverrideRequest
	PaymentRows    []model.Payment
	FulfilmentRows map[uuid.UUID]*model.Fulfilment
	TransitionRows []model.Transition
	UserRepo       *UserRepositoryStub
	Err            error
}

// NewRepos constructs the stub set with initialized maps.
func NewRepos() *Repos {
	return &Repos{
		QuotationRows:  make(map[uuid.UUID]*model.Quotation),
		OrderRows:      make(map[uuid.UUID]*model.Order),
		ProfileRows:    make(map[uuid.UUID]*model.CreditProfile),
		AggregateRows:  make(map[uuid.UUID]*model.SalesAggregate),
		OverrideRows:   make(map[uuid.UUID]*model.OverrideRequest),
		FulfilmentRows: make(map[uuid.UUID]*model.Fulfilment),
		UserRepo:       NewUserRepositoryStub(),
	}
}

func (r *Repos) Users() repository.UserRepository                     { return r.UserRepo }
func (r *Repos) Quotations() repository.QuotationRepository           { return quotationRepo{r} }
func (r *Repos) Orders() repository.OrderRepository                   { return orderRepo{r} }
func (r *Repos) CreditProfiles() repository.CreditProfileRepository   { return profileRepo{r} }
func (r *Repos) SalesAggregates() repository.SalesAggregateRepository { return aggregateRepo{r} }
func (r *Repos) Overrides() repository.OverrideRepository             { return overrideRepo{r} }
func (r *Repos) Payments() repository.PaymentRepository               { return paymentRepo{r} }
func (r *Repos) Fulfilments() repository.FulfilmentRepository         { return fulfilmentRepo{r} }
func (r *Repos) Transitions() repository.TransitionRepository         { return transitionRepo{r} }

// TransitionsFor filters recorded audit rows by entity.
func (r *Repos) TransitionsFor(entity model.EntityKind, entityID uuid.UUID) []model.Transition {
	var out []model.Transition
	for _, t := range r.TransitionRows {
		if t.Entity == entity && t.EntityID == entityID {
			out = append(out, t)
		}
	}
	return out
}

// UnitOfWorkStub funnels every Do call straight into the shared repo set.
type UnitOfWorkStub struct {
	Repos *Repos
	Err   error
}

func (s *UnitOfWorkStub) Do(ctx context.Context, fn func(repository.Factory) error) error {
	if s.Err != nil {
		return s.Err
	}
	return fn(s.Repos)
}

type quotationRepo struct{ r *Repos }

func (q quotationRepo) Create(ctx context.Context, m *model.Quotation) error {
	if q.r.Err != nil {
		return q.r.Err
	}
	clone := *m
	q.r.QuotationRows[m.ID] = &clone
	return nil
}

func (q quotationRepo) Get(ctx context.Context, id uuid.UUID) (*model.Quotation, error) {
	if q.r.Err != nil {
		return nil, q.r.Err
	}
	row, ok := q.r.QuotationRows[id]
	if !ok {
		return nil, domainErrors.ErrQuotationNotFound
	}
	clone := *row
	return &clone, nil
}

func (q quotationRepo) Update(ctx context.Context, m *model.Quotation, expectedVersion int64) error {
	if q.r.Err != nil {
		return q.r.Err
	}
	row, ok := q.r.QuotationRows[m.ID]
	if !ok || row.Version != expectedVersion {
		return domainErrors.ErrVersionConflict
	}
	clone := *m
	q.r.QuotationRows[m.ID] = &clone
	return nil
}

func (q quotationRepo) ListExpiring(ctx context.Context, now time.Time, limit int) ([]model.Quotation, error) {
	if q.r.Err != nil {
		return nil, q.r.Err
	}
	var out []model.Quotation
	for _, row := range q.r.QuotationRows {
		if !row.State.Terminal() && !row.ValidUntil.After(now) {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ValidUntil.Before(out[j].ValidUntil) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type orderRepo struct{ r *Repos }

func (o orderRepo) Create(ctx context.Context, m *model.Order) error {
	if o.r.Err != nil {
		return o.r.Err
	}
	clone := *m
	o.r.OrderRows[m.ID] = &clone
	return nil
}

func (o orderRepo) Get(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	if o.r.Err != nil {
		return nil, o.r.Err
	}
	row, ok := o.r.OrderRows[id]
	if !ok {
		return nil, domainErrors.ErrOrderNotFound
	}
	clone := *row
	return &clone, nil
}

func (o orderRepo) GetByQuotation(ctx context.Context, quotationID uuid.UUID) (*model.Order, error) {
	if o.r.Err != nil {
		return nil, o.r.Err
	}
	for _, row := range o.r.OrderRows {
		if row.QuotationID == quotationID {
			clone := *row
			return &clone, nil
		}
	}
	return nil, domainErrors.ErrOrderNotFound
}

func (o orderRepo) Update(ctx context.Context, m *model.Order, expectedVersion int64) error {
	if o.r.Err != nil {
		return o.r.Err
	}
	row, ok := o.r.OrderRows[m.ID]
	if !ok || row.Version != expectedVersion {
		return domainErrors.ErrVersionConflict
	}
	clone := *m
	o.r.OrderRows[m.ID] = &clone
	return nil
}

type profileRepo struct{ r *Repos }

func (p profileRepo) Get(ctx context.Context, customerID uuid.UUID) (*model.CreditProfile, error) {
	if p.r.Err != nil {
		return nil, p.r.Err
	}
	row, ok := p.r.ProfileRows[customerID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	clone := *row
	return &clone, nil
}

func (p profileRepo) Save(ctx context.Context, m *model.CreditProfile) error {
	clone := *m
	p.r.ProfileRows[m.CustomerID] = &clone
	return nil
}

func (p profileRepo) ReserveExposure(ctx context.Context, customerID uuid.UUID, amount int64) error {
	row, ok := p.r.ProfileRows[customerID]
	if !ok {
		return domainErrors.ErrCreditProfileMissing
	}
	row.Exposure += amount
	return nil
}

func (p profileRepo) ReleaseExposure(ctx context.Context, customerID uuid.UUID, amount int64) error {
	row, ok := p.r.ProfileRows[customerID]
	if !ok {
		return domainErrors.ErrCreditProfileMissing
	}
	row.Exposure -= amount
	if row.Exposure < 0 {
		row.Exposure = 0
	}
	return nil
}

func (p profileRepo) UpdateTier(ctx context.Context, customerID uuid.UUID, tier model.CreditTier) error {
	row, ok := p.r.ProfileRows[customerID]
	if !ok {
		return domainErrors.ErrCreditProfileMissing
	}
	row.Tier = tier
	return nil
}

type aggregateRepo struct{ r *Repos }

func (a aggregateRepo) Get(ctx context.Context, customerID uuid.UUID) (*model.SalesAggregate, error) {
	if a.r.Err != nil {
		return nil, a.r.Err
	}
	row, ok := a.r.AggregateRows[customerID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	clone := *row
	return &clone, nil
}

func (a aggregateRepo) Add(ctx context.Context, customerID uuid.UUID, amount int64) (int64, error) {
	row, ok := a.r.AggregateRows[customerID]
	if !ok {
		row = &model.SalesAggregate{CustomerID: customerID}
		a.r.AggregateRows[customerID] = row
	}
	row.CumulativeSales += amount
	return row.CumulativeSales, nil
}

func (a aggregateRepo) SetEarnedLimit(ctx context.Context, customerID uuid.UUID, earnedLimit int64) error {
	row, ok := a.r.AggregateRows[customerID]
	if !ok {
		return nil
	}
	if earnedLimit > row.EarnedLimit {
		row.EarnedLimit = earnedLimit
	}
	return nil
}

type overrideRepo struct{ r *Repos }

func (o overrideRepo) Create(ctx context.Context, m *model.OverrideRequest) error {
	if o.r.Err != nil {
		return o.r.Err
	}
	clone := *m
	o.r.OverrideRows[m.ID] = &clone
	return nil
}

func (o overrideRepo) Get(ctx context.Context, id uuid.UUID) (*model.OverrideRequest, error) {
	if o.r.Err != nil {
		return nil, o.r.Err
	}
	row, ok := o.r.OverrideRows[id]
	if !ok {
		return nil, domainErrors.ErrOverrideNotFound
	}
	clone := *row
	return &clone, nil
}

func (o overrideRepo) Update(ctx context.Context, m *model.OverrideRequest) error {
	if _, ok := o.r.OverrideRows[m.ID]; !ok {
		return domainErrors.ErrOverrideNotFound
	}
	clone := *m
	o.r.OverrideRows[m.ID] = &clone
	return nil
}

func (o overrideRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.OverrideRequest, error) {
	if o.r.Err != nil {
		return nil, o.r.Err
	}
	var out []model.OverrideRequest
	for _, row := range o.r.OverrideRows {
		if row.OrderID == orderID {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (o overrideRepo) ListExpired(ctx context.Context, now time.Time, limit int) ([]model.OverrideRequest, error) {
	var out []model.OverrideRequest
	for _, row := range o.r.OverrideRows {
		if row.Status == model.OverrideStatusApproved && row.ExpiresAt != nil && !row.ExpiresAt.After(now) {
			out = append(out, *row)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type paymentRepo struct{ r *Repos }

func (p paymentRepo) Append(ctx context.Context, m *model.Payment) error {
	if p.r.Err != nil {
		return p.r.Err
	}
	p.r.PaymentRows = append(p.r.PaymentRows, *m)
	return nil
}

func (p paymentRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.Payment, error) {
	var out []model.Payment
	for _, row := range p.r.PaymentRows {
		if row.OrderID == orderID {
			out = append(out, row)
		}
	}
	return out, nil
}

type fulfilmentRepo struct{ r *Repos }

func (f fulfilmentRepo) Create(ctx context.Context, m *model.Fulfilment) error {
	if f.r.Err != nil {
		return f.r.Err
	}
	clone := *m
	f.r.FulfilmentRows[m.OrderID] = &clone
	return nil
}

func (f fulfilmentRepo) GetByOrder(ctx context.Context, orderID uuid.UUID) (*model.Fulfilment, error) {
	if f.r.Err != nil {
		return nil, f.r.Err
	}
	row, ok := f.r.FulfilmentRows[orderID]
	if !ok {
		return nil, domainErrors.ErrFulfilmentNotFound
	}
	clone := *row
	return &clone, nil
}

func (f fulfilmentRepo) Update(ctx context.Context, m *model.Fulfilment, expectedVersion int64) error {
	row, ok := f.r.FulfilmentRows[m.OrderID]
	if !ok || row.Version != expectedVersion {
		return domainErrors.ErrVersionConflict
	}
	clone := *m
	f.r.FulfilmentRows[m.OrderID] = &clone
	return nil
}

type transitionRepo struct{ r *Repos }

func (t transitionRepo) Append(ctx context.Context, m *model.Transition) error {
	if t.r.Err != nil {
		return t.r.Err
	}
	t.r.TransitionRows = append(t.r.TransitionRows, *m)
	return nil
}

func (t transitionRepo) ListByEntity(ctx context.Context, entity model.EntityKind, entityID uuid.UUID) ([]model.Transition, error) {
	return t.r.TransitionsFor(entity, entityID), nil
}
