package test

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ialim/orderflow/internal/domain/model"
	"github.com/ialim/orderflow/internal/usecase"
)

// AuthFacadeStub simulates authentication facade interactions.
type AuthFacadeStub struct {
	RegisterFn     func(context.Context, string, string) (string, error)
	AuthenticateFn func(context.Context, string, string) (string, error)
	ParseFn        func(string) (int64, error)
}

// Register returns token for successful registration scenarios.
func (s AuthFacadeStub) Register(ctx context.Context, login, password string) (string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, login, password)
	}
	return "token", nil
}

// Authenticate returns token for successful authentication scenarios.
func (s AuthFacadeStub) Authenticate(ctx context.Context, login, password string) (string, error) {
	if s.AuthenticateFn != nil {
		return s.AuthenticateFn(ctx, login, password)
	}
	return "token", nil
}

// ParseToken returns stored identifier for authenticated user.
func (s AuthFacadeStub) ParseToken(token string) (int64, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return 1, nil
}

// QuotationFacadeStub provides controllable behaviour for negotiation endpoints.
type QuotationFacadeStub struct {
	CreateFn   func(context.Context, usecase.QuotationDraft, string) (*model.Quotation, error)
	GetFn      func(context.Context, uuid.UUID) (*model.Quotation, error)
	ShareFn    func(context.Context, uuid.UUID, string) (*model.Quotation, error)
	EditFn     func(context.Context, uuid.UUID, []model.QuotationItem, string) (*model.Quotation, error)
	ApproveFn  func(context.Context, uuid.UUID, bool, string) (*model.Quotation, error)
	DeclineFn  func(context.Context, uuid.UUID, string) (*model.Quotation, error)
	WithdrawFn func(context.Context, uuid.UUID, string) (*model.Quotation, error)
	ExtendFn   func(context.Context, uuid.UUID, int, string) (*model.Quotation, error)
	OrderFn    func(context.Context, uuid.UUID) (*model.Order, error)
}

func (s QuotationFacadeStub) CreateQuotation(ctx context.Context, draft usecase.QuotationDraft, actor string) (*model.Quotation, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, draft, actor)
	}
	return NewQuotation(draft.CustomerID, 1000), nil
}

func (s QuotationFacadeStub) Quotation(ctx context.Context, id uuid.UUID) (*model.Quotation, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, id)
	}
	q := NewQuotation(uuid.New(), 1000)
	q.ID = id
	return q, nil
}

func (s QuotationFacadeStub) ShareQuotation(ctx context.Context, id uuid.UUID, actor string) (*model.Quotation, error) {
	if s.ShareFn != nil {
		return s.ShareFn(ctx, id, actor)
	}
	q := NewQuotation(uuid.New(), 1000)
	q.ID = id
	q.State = model.QuotationStateInReview
	return q, nil
}

func (s QuotationFacadeStub) EditQuotation(ctx context.Context, id uuid.UUID, items []model.QuotationItem, actor string) (*model.Quotation, error) {
	if s.EditFn != nil {
		return s.EditFn(ctx, id, items, actor)
	}
	q := NewQuotation(uuid.New(), 1000)
	q.ID = id
	q.Items = items
	return q, nil
}

func (s QuotationFacadeStub) ApproveQuotation(ctx context.Context, id uuid.UUID, buyer bool, actor string) (*model.Quotation, error) {
	if s.ApproveFn != nil {
		return s.ApproveFn(ctx, id, buyer, actor)
	}
	q := NewQuotation(uuid.New(), 1000)
	q.ID = id
	return q, nil
}

func (s QuotationFacadeStub) DeclineQuotation(ctx context.Context, id uuid.UUID, actor string) (*model.Quotation, error) {
	if s.DeclineFn != nil {
		return s.DeclineFn(ctx, id, actor)
	}
	q := NewQuotation(uuid.New(), 1000)
	q.ID = id
	q.State = model.QuotationStateRejected
	return q, nil
}

func (s QuotationFacadeStub) WithdrawQuotation(ctx context.Context, id uuid.UUID, actor string) (*model.Quotation, error) {
	if s.WithdrawFn != nil {
		return s.WithdrawFn(ctx, id, actor)
	}
	q := NewQuotation(uuid.New(), 1000)
	q.ID = id
	q.State = model.QuotationStateCancelled
	return q, nil
}

func (s QuotationFacadeStub) ExtendQuotationValidity(ctx context.Context, id uuid.UUID, days int, actor string) (*model.Quotation, error) {
	if s.ExtendFn != nil {
		return s.ExtendFn(ctx, id, days, actor)
	}
	q := NewQuotation(uuid.New(), 1000)
	q.ID = id
	q.ValidUntil = q.ValidUntil.AddDate(0, 0, days)
	return q, nil
}

func (s QuotationFacadeStub) OrderByQuotation(ctx context.Context, quotationID uuid.UUID) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, quotationID)
	}
	o := NewOrder(uuid.New(), 1000, model.SaleStateAwaitingPaymentMethod)
	o.QuotationID = quotationID
	return o, nil
}

// SaleFacadeStub provides controllable behaviour for payment endpoints.
type SaleFacadeStub struct {
	GetFn    func(context.Context, uuid.UUID) (*model.Order, error)
	MethodFn func(context.Context, uuid.UUID, string, string) (*model.Order, error)
	RecordFn func(context.Context, uuid.UUID, usecase.Capture, string) (*model.Order, error)
	FailFn   func(context.Context, uuid.UUID, usecase.Capture, string) (*model.Order, error)
	RetryFn  func(context.Context, uuid.UUID, string) (*model.Order, error)
	CancelFn func(context.Context, uuid.UUID, string, string) (*model.Order, error)
}

func (s SaleFacadeStub) Order(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, id)
	}
	o := NewOrder(uuid.New(), 1000, model.SaleStateAwaitingPaymentMethod)
	o.ID = id
	return o, nil
}

func (s SaleFacadeStub) SetPaymentMethod(ctx context.Context, orderID uuid.UUID, method, actor string) (*model.Order, error) {
	if s.MethodFn != nil {
		return s.MethodFn(ctx, orderID, method, actor)
	}
	o := NewOrder(uuid.New(), 1000, model.SaleStatePaymentInitiated)
	o.ID = orderID
	o.PaymentMethod = method
	return o, nil
}

func (s SaleFacadeStub) RecordCapture(ctx context.Context, orderID uuid.UUID, capture usecase.Capture, actor string) (*model.Order, error) {
	if s.RecordFn != nil {
		return s.RecordFn(ctx, orderID, capture, actor)
	}
	o := NewOrder(uuid.New(), 1000, model.SaleStatePaymentPending)
	o.ID = orderID
	o.CapturedTotal = capture.Amount
	return o, nil
}

func (s SaleFacadeStub) FailPayment(ctx context.Context, orderID uuid.UUID, capture usecase.Capture, actor string) (*model.Order, error) {
	if s.FailFn != nil {
		return s.FailFn(ctx, orderID, capture, actor)
	}
	o := NewOrder(uuid.New(), 1000, model.SaleStatePaymentFailed)
	o.ID = orderID
	return o, nil
}

func (s SaleFacadeStub) RetryPayment(ctx context.Context, orderID uuid.UUID, actor string) (*model.Order, error) {
	if s.RetryFn != nil {
		return s.RetryFn(ctx, orderID, actor)
	}
	o := NewOrder(uuid.New(), 1000, model.SaleStatePaymentInitiated)
	o.ID = orderID
	return o, nil
}

func (s SaleFacadeStub) CancelOrder(ctx context.Context, orderID uuid.UUID, reason, actor string) (*model.Order, error) {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, orderID, reason, actor)
	}
	o := NewOrder(uuid.New(), 1000, model.SaleStateCancelled)
	o.ID = orderID
	return o, nil
}

// OverrideFacadeStub provides controllable behaviour for override endpoints.
type OverrideFacadeStub struct {
	RequestFn func(context.Context, uuid.UUID, model.OverrideKind, string, string) (*model.OverrideRequest, error)
	ApproveFn func(context.Context, uuid.UUID, string, *time.Time, int64) (*model.OverrideRequest, error)
	DenyFn    func(context.Context, uuid.UUID, string) (*model.OverrideRequest, error)
	RevokeFn  func(context.Context, uuid.UUID, string) (*model.OverrideRequest, error)
	ActiveFn  func(context.Context, uuid.UUID) ([]model.OverrideRequest, error)
}

func (s OverrideFacadeStub) RequestOverride(ctx context.Context, orderID uuid.UUID, kind model.OverrideKind, reason, actor string) (*model.OverrideRequest, error) {
	if s.RequestFn != nil {
		return s.RequestFn(ctx, orderID, kind, reason, actor)
	}
	return &model.OverrideRequest{
		ID:          uuid.New(),
		OrderID:     orderID,
		Kind:        kind,
		Status:      model.OverrideStatusPending,
		RequestedBy: actor,
		Reason:      reason,
	}, nil
}

func (s OverrideFacadeStub) ApproveOverride(ctx context.Context, requestID uuid.UUID, actor string, expiresAt *time.Time, approvedAmount int64) (*model.OverrideRequest, error) {
	if s.ApproveFn != nil {
		return s.ApproveFn(ctx, requestID, actor, expiresAt, approvedAmount)
	}
	return &model.OverrideRequest{
		ID:             requestID,
		OrderID:        uuid.New(),
		Kind:           model.OverrideAdmin,
		Status:         model.OverrideStatusApproved,
		ApprovedBy:     actor,
		ApprovedAmount: approvedAmount,
		ExpiresAt:      expiresAt,
	}, nil
}

func (s OverrideFacadeStub) DenyOverride(ctx context.Context, requestID uuid.UUID, actor string) (*model.OverrideRequest, error) {
	if s.DenyFn != nil {
		return s.DenyFn(ctx, requestID, actor)
	}
	return &model.OverrideRequest{ID: requestID, OrderID: uuid.New(), Kind: model.OverrideAdmin, Status: model.OverrideStatusDenied}, nil
}

func (s OverrideFacadeStub) RevokeOverride(ctx context.Context, requestID uuid.UUID, actor string) (*model.OverrideRequest, error) {
	if s.RevokeFn != nil {
		return s.RevokeFn(ctx, requestID, actor)
	}
	return &model.OverrideRequest{ID: requestID, OrderID: uuid.New(), Kind: model.OverrideAdmin, Status: model.OverrideStatusRevoked}, nil
}

func (s OverrideFacadeStub) ActiveOverrides(ctx context.Context, orderID uuid.UUID) ([]model.OverrideRequest, error) {
	if s.ActiveFn != nil {
		return s.ActiveFn(ctx, orderID)
	}
	return []model.OverrideRequest{{ID: uuid.New(), OrderID: orderID, Kind: model.OverrideAdmin, Status: model.OverrideStatusPending}}, nil
}

// FulfilmentFacadeStub provides controllable behaviour for fulfilment endpoints.
type FulfilmentFacadeStub struct {
	GetFn    func(context.Context, uuid.UUID) (*model.Fulfilment, error)
	FireFn   func(context.Context, uuid.UUID, model.FulfilmentEvent, usecase.FireOptions) (*model.Fulfilment, error)
	AssignFn func(context.Context, uuid.UUID, uuid.UUID, string) (*model.Fulfilment, error)
}

func (s FulfilmentFacadeStub) Fulfilment(ctx context.Context, orderID uuid.UUID) (*model.Fulfilment, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, orderID)
	}
	return &model.Fulfilment{ID: uuid.New(), OrderID: orderID, Type: model.FulfilmentDelivery, State: model.FulfilmentStateAllocatingStock, Version: 1}, nil
}

func (s FulfilmentFacadeStub) FireFulfilment(ctx context.Context, orderID uuid.UUID, event model.FulfilmentEvent, opts usecase.FireOptions) (*model.Fulfilment, error) {
	if s.FireFn != nil {
		return s.FireFn(ctx, orderID, event, opts)
	}
	return &model.Fulfilment{ID: uuid.New(), OrderID: orderID, Type: model.FulfilmentDelivery, State: model.FulfilmentStatePickPack, Version: 2}, nil
}

func (s FulfilmentFacadeStub) AssignRider(ctx context.Context, orderID, riderID uuid.UUID, actor string) (*model.Fulfilment, error) {
	if s.AssignFn != nil {
		return s.AssignFn(ctx, orderID, riderID, actor)
	}
	return &model.Fulfilment{ID: uuid.New(), OrderID: orderID, Type: model.FulfilmentDelivery, State: model.FulfilmentStateShipped, RiderID: &riderID, Version: 3}, nil
}

// AuditFacadeStub returns preconfigured transition history.
type AuditFacadeStub struct {
	HistoryFn func(context.Context, model.EntityKind, uuid.UUID) ([]model.Transition, error)
}

func (s AuditFacadeStub) History(ctx context.Context, entity model.EntityKind, entityID uuid.UUID) ([]model.Transition, error) {
	if s.HistoryFn != nil {
		return s.HistoryFn(ctx, entity, entityID)
	}
	return []model.Transition{{ID: uuid.New(), Entity: entity, EntityID: entityID, Machine: model.MachineSale, Event: "SET_PAYMENT_METHOD"}}, nil
}

// OrderflowFacadeStub aggregates facade dependencies for HTTP layer tests.
type OrderflowFacadeStub struct {
	AuthFacadeStub
	QuotationFacadeStub
	SaleFacadeStub
	OverrideFacadeStub
	FulfilmentFacadeStub
	AuditFacadeStub
}

// SweepFacadeStub counts expiry sweep invocations.
type SweepFacadeStub struct {
	QuotationSweeps atomic.Int32
	OverrideSweeps  atomic.Int32
	QuotationErr    error
}

// ExpireStaleQuotations records a quotation sweep.
func (s *SweepFacadeStub) ExpireStaleQuotations(ctx context.Context, limit int) (int, error) {
	s.QuotationSweeps.Add(1)
	if s.QuotationErr != nil {
		return 0, s.QuotationErr
	}
	return limit, nil
}

// ExpireStaleOverrides records an override sweep.
func (s *SweepFacadeStub) ExpireStaleOverrides(ctx context.Context, limit int) (int, error) {
	s.OverrideSweeps.Add(1)
	return 0, nil
}
