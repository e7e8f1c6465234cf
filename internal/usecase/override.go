package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/ialim/orderflow/internal/domain/errors"
	"github.com/ialim/orderflow/internal/domain/model"
	"github.com/ialim/orderflow/internal/domain/repository"
)

// OverrideUseCase arbitrates manual bypass of credit enforcement.
type OverrideUseCase struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// NewOverrideUseCase constructs OverrideUseCase.
func NewOverrideUseCase(uow repository.UnitOfWork, logger *slog.Logger) *OverrideUseCase {
	return &OverrideUseCase{uow: uow, logger: logger}
}

// Request opens a pending override for the order. At most one active request
// per kind per order.
func (u *OverrideUseCase) Request(ctx context.Context, orderID uuid.UUID, kind model.OverrideKind, reason, requestedBy string) (*model.OverrideRequest, error) {
	now := time.Now()
	req := &model.OverrideRequest{
		ID:          uuid.New(),
		OrderID:     orderID,
		Kind:        kind,
		Status:      model.OverrideStatusPending,
		RequestedBy: requestedBy,
		Reason:      reason,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := u.uow.Do(ctx, func(r repository.Factory) error {
		if _, err := r.Orders().Get(ctx, orderID); err != nil {
			return err
		}
		existing, err := r.Overrides().ListByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		for i := range existing {
			if existing[i].Kind == kind && existing[i].Active(now) {
				return domainErrors.ErrOverrideAlreadyActive
			}
		}
		if err := r.Overrides().Create(ctx, req); err != nil {
			return err
		}
		return r.Transitions().Append(ctx, model.NewTransition(
			model.EntityOverride, req.ID, model.MachineSale,
			"", string(req.Status), "OVERRIDE_REQUESTED", requestedBy,
			map[string]any{"order_id": orderID.String(), "kind": string(kind)}, now,
		))
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Approve grants a pending override. Credit-limit overrides require a
// positive approved amount.
func (u *OverrideUseCase) Approve(ctx context.Context, requestID uuid.UUID, approvedBy string, expiresAt *time.Time, approvedAmount int64) (*model.OverrideRequest, error) {
	return u.resolve(ctx, requestID, approvedBy, "OVERRIDE_APPROVED", func(req *model.OverrideRequest) error {
		if req.Status != model.OverrideStatusPending {
			return domainErrors.ErrIllegalTransition
		}
		if req.Kind == model.OverrideCreditLimit && approvedAmount <= 0 {
			return domainErrors.ErrInvalidAmount
		}
		req.Status = model.OverrideStatusApproved
		req.ApprovedBy = approvedBy
		req.ExpiresAt = expiresAt
		req.ApprovedAmount = approvedAmount
		return nil
	})
}

// Deny rejects a pending override.
func (u *OverrideUseCase) Deny(ctx context.Context, requestID uuid.UUID, actor string) (*model.OverrideRequest, error) {
	return u.resolve(ctx, requestID, actor, "OVERRIDE_DENIED", func(req *model.OverrideRequest) error {
		if req.Status != model.OverrideStatusPending {
			return domainErrors.ErrIllegalTransition
		}
		req.Status = model.OverrideStatusDenied
		return nil
	})
}

// Revoke withdraws an approved override. A revoked kind can be re-requested.
func (u *OverrideUseCase) Revoke(ctx context.Context, requestID uuid.UUID, actor string) (*model.OverrideRequest, error) {
	return u.resolve(ctx, requestID, actor, "OVERRIDE_REVOKED", func(req *model.OverrideRequest) error {
		if req.Status != model.OverrideStatusApproved {
			return domainErrors.ErrIllegalTransition
		}
		req.Status = model.OverrideStatusRevoked
		return nil
	})
}

// ExpireStale marks overdue approved overrides expired, up to limit rows.
// The guard already treats them as invalid; this is bookkeeping for audit.
func (u *OverrideUseCase) ExpireStale(ctx context.Context, limit int, actor string) (int, error) {
	now := time.Now()
	var stale []model.OverrideRequest
	err := u.uow.Do(ctx, func(r repository.Factory) error {
		var err error
		stale, err = r.Overrides().ListExpired(ctx, now, limit)
		return err
	})
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range stale {
		_, err := u.resolve(ctx, stale[i].ID, actor, "OVERRIDE_EXPIRED", func(req *model.OverrideRequest) error {
			if req.Status != model.OverrideStatusApproved {
				return domainErrors.ErrIllegalTransition
			}
			req.Status = model.OverrideStatusExpired
			return nil
		})
		if err != nil {
			continue
		}
		expired++
	}
	return expired, nil
}

// ActiveForOrder lists the order's override requests for guard evaluation.
func (u *OverrideUseCase) ActiveForOrder(ctx context.Context, orderID uuid.UUID) ([]model.OverrideRequest, error) {
	var overrides []model.OverrideRequest
	err := u.uow.Do(ctx, func(r repository.Factory) error {
		var err error
		overrides, err = r.Overrides().ListByOrder(ctx, orderID)
		return err
	})
	return overrides, err
}

func (u *OverrideUseCase) resolve(ctx context.Context, requestID uuid.UUID, actor, event string, decide func(*model.OverrideRequest) error) (*model.OverrideRequest, error) {
	var request *model.OverrideRequest
	err := u.uow.Do(ctx, func(r repository.Factory) error {
		req, err := r.Overrides().Get(ctx, requestID)
		if err != nil {
			return err
		}
		from := req.Status
		now := time.Now()
		if err := decide(req); err != nil {
			return err
		}
		req.UpdatedAt = now
		if err := r.Overrides().Update(ctx, req); err != nil {
			return err
		}
		request = req
		return r.Transitions().Append(ctx, model.NewTransition(
			model.EntityOverride, req.ID, model.MachineSale,
			string(from), string(req.Status), event, actor,
			map[string]any{"order_id": req.OrderID.String(), "kind": string(req.Kind)}, now,
		))
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}
