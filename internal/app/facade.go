package app

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/ialim/orderflow/internal/domain/errors"
	"github.com/ialim/orderflow/internal/domain/model"
	"github.com/ialim/orderflow/internal/usecase"
)

// OrderflowFacade aggregates the use cases behind one surface and performs
// the cross-machine handoffs after a transition commits: quotation approval
// opens the order, clearance opens the fulfilment, completion finalizes.
type OrderflowFacade struct {
	auth        *usecase.AuthUseCase
	quotations  *usecase.QuotationUseCase
	sales       *usecase.SaleUseCase
	overrides   *usecase.OverrideUseCase
	fulfilments *usecase.FulfilmentUseCase
	coordinator *usecase.PhaseCoordinator
	audit       *usecase.AuditUseCase
}

func NewOrderflowFacade(
	auth *usecase.AuthUseCase,
	quotations *usecase.QuotationUseCase,
	sales *usecase.SaleUseCase,
	overrides *usecase.OverrideUseCase,
	fulfilments *usecase.FulfilmentUseCase,
	coordinator *usecase.PhaseCoordinator,
	audit *usecase.AuditUseCase,
) *OrderflowFacade {
	return &OrderflowFacade{
		auth:        auth,
		quotations:  quotations,
		sales:       sales,
		overrides:   overrides,
		fulfilments: fulfilments,
		coordinator: coordinator,
		audit:       audit,
	}
}

// --- auth ---

func (f *OrderflowFacade) Register(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Register(ctx, login, password)
	return token, err
}

func (f *OrderflowFacade) Authenticate(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, login, password)
	return token, err
}

func (f *OrderflowFacade) ParseToken(token string) (int64, error) {
	return f.auth.ParseToken(token)
}

// --- quotations ---

func (f *OrderflowFacade) CreateQuotation(ctx context.Context, draft usecase.QuotationDraft, actor string) (*model.Quotation, error) {
	return f.quotations.CreateDraft(ctx, draft, actor)
}

func (f *OrderflowFacade) Quotation(ctx context.Context, id uuid.UUID) (*model.Quotation, error) {
	return f.quotations.Get(ctx, id)
}

func (f *OrderflowFacade) ShareQuotation(ctx context.Context, id uuid.UUID, actor string) (*model.Quotation, error) {
	return f.quotations.Share(ctx, id, actor)
}

func (f *OrderflowFacade) EditQuotation(ctx context.Context, id uuid.UUID, items []model.QuotationItem, actor string) (*model.Quotation, error) {
	return f.quotations.Edit(ctx, id, items, actor)
}

// ApproveQuotation records one party's approval. Once both parties have
// approved, the order is created immediately.
func (f *OrderflowFacade) ApproveQuotation(ctx context.Context, id uuid.UUID, buyer bool, actor string) (*model.Quotation, error) {
	var (
		q   *model.Quotation
		err error
	)
	if buyer {
		q, err = f.quotations.BuyerApprove(ctx, id, actor)
	} else {
		q, err = f.quotations.SellerApprove(ctx, id, actor)
	}
	if err != nil {
		return nil, err
	}
	if q.State == model.QuotationStateMutuallyApproved {
		if _, err := f.coordinator.OnQuotationApproved(ctx, q.ID); err != nil {
			return nil, err
		}
	}
	return q, nil
}

func (f *OrderflowFacade) DeclineQuotation(ctx context.Context, id uuid.UUID, actor string) (*model.Quotation, error) {
	return f.quotations.Decline(ctx, id, actor)
}

func (f *OrderflowFacade) WithdrawQuotation(ctx context.Context, id uuid.UUID, actor string) (*model.Quotation, error) {
	return f.quotations.Withdraw(ctx, id, actor)
}

func (f *OrderflowFacade) ExtendQuotationValidity(ctx context.Context, id uuid.UUID, days int, actor string) (*model.Quotation, error) {
	return f.quotations.ExtendValidity(ctx, id, days, actor)
}

// --- orders / sale ---

func (f *OrderflowFacade) Order(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return f.sales.Get(ctx, id)
}

func (f *OrderflowFacade) OrderByQuotation(ctx context.Context, quotationID uuid.UUID) (*model.Order, error) {
	return f.coordinator.OnQuotationApproved(ctx, quotationID)
}

func (f *OrderflowFacade) SetPaymentMethod(ctx context.Context, orderID uuid.UUID, method, actor string) (*model.Order, error) {
	o, err := f.sales.SetPaymentMethod(ctx, orderID, method, actor)
	if err != nil {
		return nil, err
	}
	return f.afterSale(ctx, o)
}

func (f *OrderflowFacade) RecordCapture(ctx context.Context, orderID uuid.UUID, capture usecase.Capture, actor string) (*model.Order, error) {
	o, err := f.sales.RecordCapture(ctx, orderID, capture, actor)
	if err != nil {
		return nil, err
	}
	return f.afterSale(ctx, o)
}

func (f *OrderflowFacade) FailPayment(ctx context.Context, orderID uuid.UUID, capture usecase.Capture, actor string) (*model.Order, error) {
	return f.sales.FailPayment(ctx, orderID, capture, actor)
}

func (f *OrderflowFacade) RetryPayment(ctx context.Context, orderID uuid.UUID, actor string) (*model.Order, error) {
	o, err := f.sales.RetryPayment(ctx, orderID, actor)
	if err != nil {
		return nil, err
	}
	return f.afterSale(ctx, o)
}

func (f *OrderflowFacade) CancelOrder(ctx context.Context, orderID uuid.UUID, reason, actor string) (*model.Order, error) {
	o, err := f.sales.Cancel(ctx, orderID, reason, actor)
	if err != nil {
		return nil, err
	}
	if err := f.coordinator.OnOrderCancelled(ctx, o.ID); err != nil {
		return nil, err
	}
	return f.sales.Get(ctx, o.ID)
}

// afterSale runs the clearance handoff when the sale machine just reached
// its cleared state.
func (f *OrderflowFacade) afterSale(ctx context.Context, o *model.Order) (*model.Order, error) {
	if o.SaleState != model.SaleStateCleared || o.Phase != model.PhaseSale {
		return o, nil
	}
	if _, err := f.coordinator.OnSaleCleared(ctx, o.ID); err != nil {
		return nil, err
	}
	return f.sales.Get(ctx, o.ID)
}

// --- overrides ---

func (f *OrderflowFacade) RequestOverride(ctx context.Context, orderID uuid.UUID, kind model.OverrideKind, reason, actor string) (*model.OverrideRequest, error) {
	return f.overrides.Request(ctx, orderID, kind, reason, actor)
}

func (f *OrderflowFacade) ApproveOverride(ctx context.Context, requestID uuid.UUID, actor string, expiresAt *time.Time, approvedAmount int64) (*model.OverrideRequest, error) {
	r, err := f.overrides.Approve(ctx, requestID, actor, expiresAt, approvedAmount)
	if err != nil {
		return nil, err
	}
	return r, f.applyOverrideDecision(ctx, r, true, actor)
}

func (f *OrderflowFacade) DenyOverride(ctx context.Context, requestID uuid.UUID, actor string) (*model.OverrideRequest, error) {
	r, err := f.overrides.Deny(ctx, requestID, actor)
	if err != nil {
		return nil, err
	}
	return r, f.applyOverrideDecision(ctx, r, false, actor)
}

func (f *OrderflowFacade) RevokeOverride(ctx context.Context, requestID uuid.UUID, actor string) (*model.OverrideRequest, error) {
	r, err := f.overrides.Revoke(ctx, requestID, actor)
	if err != nil {
		return nil, err
	}
	return r, f.applyOverrideDecision(ctx, r, false, actor)
}

func (f *OrderflowFacade) ActiveOverrides(ctx context.Context, orderID uuid.UUID) ([]model.OverrideRequest, error) {
	return f.overrides.ActiveForOrder(ctx, orderID)
}

// applyOverrideDecision re-evaluates the owning order. Orders already past
// the sale phase keep the decision on record without a state change.
func (f *OrderflowFacade) applyOverrideDecision(ctx context.Context, r *model.OverrideRequest, granted bool, actor string) error {
	o, err := f.sales.ApplyOverrideDecision(ctx, r.OrderID, r.Kind, granted, actor)
	if err != nil {
		if errors.Is(err, domainErrors.ErrIllegalTransition) {
			return nil
		}
		return err
	}
	_, err = f.afterSale(ctx, o)
	return err
}

// --- fulfilments ---

func (f *OrderflowFacade) Fulfilment(ctx context.Context, orderID uuid.UUID) (*model.Fulfilment, error) {
	return f.fulfilments.Get(ctx, orderID)
}

// FireFulfilment applies one fulfilment event and runs the finalization
// handoffs for terminal outcomes.
func (f *OrderflowFacade) FireFulfilment(ctx context.Context, orderID uuid.UUID, event model.FulfilmentEvent, opts usecase.FireOptions) (*model.Fulfilment, error) {
	ful, err := f.fulfilments.Fire(ctx, orderID, event, opts)
	if err != nil {
		return nil, err
	}

	switch ful.State {
	case model.FulfilmentStateCompleted:
		err = f.coordinator.OnFulfilmentCompleted(ctx, orderID)
	case model.FulfilmentStateRefunded:
		err = f.coordinator.FinalizeRefund(ctx, orderID, opts.Actor)
	case model.FulfilmentStateCancelled, model.FulfilmentStateFailed:
		err = f.coordinator.OnOrderCancelled(ctx, orderID)
	}
	if err != nil {
		return nil, err
	}
	return ful, nil
}

func (f *OrderflowFacade) AssignRider(ctx context.Context, orderID, riderID uuid.UUID, actor string) (*model.Fulfilment, error) {
	return f.fulfilments.AssignRider(ctx, orderID, riderID, actor)
}

// --- audit ---

func (f *OrderflowFacade) History(ctx context.Context, entity model.EntityKind, entityID uuid.UUID) ([]model.Transition, error) {
	return f.audit.History(ctx, entity, entityID)
}

// --- sweeps ---

func (f *OrderflowFacade) ExpireStaleQuotations(ctx context.Context, limit int) (int, error) {
	return f.quotations.ExpireStale(ctx, limit, "system")
}

func (f *OrderflowFacade) ExpireStaleOverrides(ctx context.Context, limit int) (int, error) {
	return f.overrides.ExpireStale(ctx, limit, "system")
}
