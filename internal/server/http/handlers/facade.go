package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ialim/orderflow/internal/domain/model"
	"github.com/ialim/orderflow/internal/usecase"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, login, password string) (string, error)
	Authenticate(ctx context.Context, login, password string) (string, error)
	ParseToken(token string) (int64, error)
}

// QuotationFacade encapsulates negotiation operations exposed via HTTP.
type QuotationFacade interface {
	CreateQuotation(ctx context.Context, draft usecase.QuotationDraft, actor string) (*model.Quotation, error)
	Quotation(ctx context.Context, id uuid.UUID) (*model.Quotation, error)
	ShareQuotation(ctx context.Context, id uuid.UUID, actor string) (*model.Quotation, error)
	EditQuotation(ctx context.Context, id uuid.UUID, items []model.QuotationItem, actor string) (*model.Quotation, error)
	ApproveQuotation(ctx context.Context, id uuid.UUID, buyer bool, actor string) (*model.Quotation, error)
	DeclineQuotation(ctx context.Context, id uuid.UUID, actor string) (*model.Quotation, error)
	WithdrawQuotation(ctx context.Context, id uuid.UUID, actor string) (*model.Quotation, error)
	ExtendQuotationValidity(ctx context.Context, id uuid.UUID, days int, actor string) (*model.Quotation, error)
	OrderByQuotation(ctx context.Context, quotationID uuid.UUID) (*model.Order, error)
}

// SaleFacade covers the payment side of an order.
type SaleFacade interface {
	Order(ctx context.Context, id uuid.UUID) (*model.Order, error)
	SetPaymentMethod(ctx context.Context, orderID uuid.UUID, method, actor string) (*model.Order, error)
	RecordCapture(ctx context.Context, orderID uuid.UUID, capture usecase.Capture, actor string) (*model.Order, error)
	FailPayment(ctx context.Context, orderID uuid.UUID, capture usecase.Capture, actor string) (*model.Order, error)
	RetryPayment(ctx context.Context, orderID uuid.UUID, actor string) (*model.Order, error)
	CancelOrder(ctx context.Context, orderID uuid.UUID, reason, actor string) (*model.Order, error)
}

// OverrideFacade covers manual clearance overrides.
type OverrideFacade interface {
	RequestOverride(ctx context.Context, orderID uuid.UUID, kind model.OverrideKind, reason, actor string) (*model.OverrideRequest, error)
	ApproveOverride(ctx context.Context, requestID uuid.UUID, actor string, expiresAt *time.Time, approvedAmount int64) (*model.OverrideRequest, error)
	DenyOverride(ctx context.Context, requestID uuid.UUID, actor string) (*model.OverrideRequest, error)
	RevokeOverride(ctx context.Context, requestID uuid.UUID, actor string) (*model.OverrideRequest, error)
	ActiveOverrides(ctx context.Context, orderID uuid.UUID) ([]model.OverrideRequest, error)
}

// FulfilmentFacade covers the physical side of an order.
type FulfilmentFacade interface {
	Fulfilment(ctx context.Context, orderID uuid.UUID) (*model.Fulfilment, error)
	FireFulfilment(ctx context.Context, orderID uuid.UUID, event model.FulfilmentEvent, opts usecase.FireOptions) (*model.Fulfilment, error)
	AssignRider(ctx context.Context, orderID, riderID uuid.UUID, actor string) (*model.Fulfilment, error)
}

// AuditFacade reads the transition log.
type AuditFacade interface {
	History(ctx context.Context, entity model.EntityKind, entityID uuid.UUID) ([]model.Transition, error)
}

// OrderflowFacade aggregates the full set of operations used across handlers.
type OrderflowFacade interface {
	AuthFacade
	QuotationFacade
	SaleFacade
	OverrideFacade
	FulfilmentFacade
	AuditFacade
}
