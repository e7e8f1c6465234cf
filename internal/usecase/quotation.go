package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/ialim/orderflow/internal/domain/errors"
	"github.com/ialim/orderflow/internal/domain/model"
	"github.com/ialim/orderflow/internal/domain/repository"
)

// QuotationUseCase drives the negotiation state machine.
type QuotationUseCase struct {
	uow       repository.UnitOfWork
	publisher Publisher
	logger    *slog.Logger
}

// NewQuotationUseCase constructs QuotationUseCase.
func NewQuotationUseCase(uow repository.UnitOfWork, publisher Publisher, logger *slog.Logger) *QuotationUseCase {
	return &QuotationUseCase{uow: uow, publisher: publisher, logger: logger}
}

// QuotationDraft carries the initial negotiation terms.
type QuotationDraft struct {
	CustomerID      uuid.UUID
	Items           []model.QuotationItem
	FulfilmentType  model.FulfilmentType
	DeliveryAddress string
	ReceiverName    string
	ReceiverPhone   string
	ConfirmationPIN string
	DeliveryFee     int64
	ValidDays       int
	ValidUntil      time.Time
}

// defaultValidDays bounds a draft whose caller names neither a deadline nor
// a window.
const defaultValidDays = 14

func (d QuotationDraft) deadline(now time.Time) time.Time {
	if !d.ValidUntil.IsZero() {
		return d.ValidUntil
	}
	days := d.ValidDays
	if days <= 0 {
		days = defaultValidDays
	}
	return now.AddDate(0, 0, days)
}

// CreateDraft opens a new quotation in draft state.
func (u *QuotationUseCase) CreateDraft(ctx context.Context, draft QuotationDraft, actor string) (*model.Quotation, error) {
	if len(draft.Items) == 0 {
		return nil, domainErrors.ErrInvalidAmount
	}
	for _, item := range draft.Items {
		if item.Quantity <= 0 || item.UnitPrice < 0 {
			return nil, domainErrors.ErrInvalidAmount
		}
	}
	if draft.FulfilmentType == "" {
		draft.FulfilmentType = model.FulfilmentDelivery
	}

	now := time.Now()
	q := &model.Quotation{
		ID:              uuid.New(),
		CustomerID:      draft.CustomerID,
		Items:           draft.Items,
		FulfilmentType:  draft.FulfilmentType,
		DeliveryAddress: draft.DeliveryAddress,
		ReceiverName:    draft.ReceiverName,
		ReceiverPhone:   draft.ReceiverPhone,
		ConfirmationPIN: draft.ConfirmationPIN,
		DeliveryFee:     draft.DeliveryFee,
		ValidUntil:      draft.deadline(now),
		State:           model.QuotationStateDraft,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err := u.uow.Do(ctx, func(r repository.Factory) error {
		if err := r.Quotations().Create(ctx, q); err != nil {
			return err
		}
		return r.Transitions().Append(ctx, model.NewTransition(
			model.EntityQuotation, q.ID, model.MachineQuotation,
			"", string(q.State), "CREATED", actor, nil, now,
		))
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Get returns the current quotation snapshot.
func (u *QuotationUseCase) Get(ctx context.Context, id uuid.UUID) (*model.Quotation, error) {
	var q *model.Quotation
	err := u.uow.Do(ctx, func(r repository.Factory) error {
		var err error
		q, err = r.Quotations().Get(ctx, id)
		return err
	})
	return q, err
}

// Share moves a draft or revised quotation into review.
func (u *QuotationUseCase) Share(ctx context.Context, id uuid.UUID, actor string) (*model.Quotation, error) {
	return u.fire(ctx, id, model.QuotationEventShare, actor, nil, nil)
}

// Edit replaces the negotiated line items. Editing after either party has
// approved resets the quotation to revised and clears both approvals.
func (u *QuotationUseCase) Edit(ctx context.Context, id uuid.UUID, items []model.QuotationItem, actor string) (*model.Quotation, error) {
	if len(items) == 0 {
		return nil, domainErrors.ErrInvalidAmount
	}
	return u.fire(ctx, id, model.QuotationEventEdit, actor, nil, func(q *model.Quotation) {
		q.Items = items
	})
}

// BuyerApprove records the buyer's approval of the current terms.
func (u *QuotationUseCase) BuyerApprove(ctx context.Context, id uuid.UUID, actor string) (*model.Quotation, error) {
	return u.fire(ctx, id, model.QuotationEventBuyerApprove, actor, nil, nil)
}

// SellerApprove records the seller's approval of the current terms.
func (u *QuotationUseCase) SellerApprove(ctx context.Context, id uuid.UUID, actor string) (*model.Quotation, error) {
	return u.fire(ctx, id, model.QuotationEventSellerApprove, actor, nil, nil)
}

// Decline rejects the quotation.
func (u *QuotationUseCase) Decline(ctx context.Context, id uuid.UUID, actor string) (*model.Quotation, error) {
	return u.fire(ctx, id, model.QuotationEventDecline, actor, nil, nil)
}

// Withdraw cancels the quotation.
func (u *QuotationUseCase) Withdraw(ctx context.Context, id uuid.UUID, actor string) (*model.Quotation, error) {
	return u.fire(ctx, id, model.QuotationEventWithdraw, actor, nil, nil)
}

// ExtendValidity pushes the validity deadline forward by whole days.
func (u *QuotationUseCase) ExtendValidity(ctx context.Context, id uuid.UUID, days int, actor string) (*model.Quotation, error) {
	var quotation *model.Quotation
	err := u.uow.Do(ctx, func(r repository.Factory) error {
		q, err := r.Quotations().Get(ctx, id)
		if err != nil {
			return err
		}
		now := time.Now()
		if err := q.ExtendValidity(days, now); err != nil {
			return err
		}
		expected := q.Version
		q.Version++
		if err := r.Quotations().Update(ctx, q, expected); err != nil {
			return err
		}
		quotation = q
		return r.Transitions().Append(ctx, model.NewTransition(
			model.EntityQuotation, q.ID, model.MachineQuotation,
			string(q.State), string(q.State), string(model.QuotationEventExtendValidity),
			actor, map[string]any{"days": days}, now,
		))
	})
	if err != nil {
		return nil, err
	}
	return quotation, nil
}

// ExpireStale marks overdue quotations expired, up to limit rows. Invoked by
// the periodic sweep through the same transition path as any other actor.
func (u *QuotationUseCase) ExpireStale(ctx context.Context, limit int, actor string) (int, error) {
	now := time.Now()
	var stale []model.Quotation
	err := u.uow.Do(ctx, func(r repository.Factory) error {
		var err error
		stale, err = r.Quotations().ListExpiring(ctx, now, limit)
		return err
	})
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range stale {
		if _, err := u.fire(ctx, stale[i].ID, model.QuotationEventExpire, actor, nil, nil); err != nil {
			// A racing transition is fine; the next sweep retries the rest.
			if errors.Is(err, domainErrors.ErrVersionConflict) || errors.Is(err, domainErrors.ErrIllegalTransition) {
				continue
			}
			return expired, err
		}
		expired++
	}
	return expired, nil
}

// fire runs one negotiation transition as an atomic unit: apply the event,
// bump the version under the optimistic lock, and append the audit row.
func (u *QuotationUseCase) fire(ctx context.Context, id uuid.UUID, event model.QuotationEvent, actor string, payload map[string]any, mutate func(*model.Quotation)) (*model.Quotation, error) {
	var quotation *model.Quotation
	err := u.uow.Do(ctx, func(r repository.Factory) error {
		q, err := r.Quotations().Get(ctx, id)
		if err != nil {
			return err
		}
		from := q.State
		now := time.Now()
		if err := q.Apply(event, now); err != nil {
			return err
		}
		if mutate != nil {
			mutate(q)
		}
		expected := q.Version
		q.Version++
		if err := r.Quotations().Update(ctx, q, expected); err != nil {
			return err
		}
		quotation = q
		return r.Transitions().Append(ctx, model.NewTransition(
			model.EntityQuotation, q.ID, model.MachineQuotation,
			string(from), string(q.State), string(event), actor, payload, now,
		))
	})
	if err != nil {
		return nil, err
	}

	if quotation.State == model.QuotationStateMutuallyApproved {
		u.publish(ctx, TopicQuotationApproved, map[string]any{
			"quotation_id": quotation.ID.String(),
			"customer_id":  quotation.CustomerID.String(),
			"grand_total":  quotation.GrandTotal(),
		})
	}
	return quotation, nil
}

func (u *QuotationUseCase) publish(ctx context.Context, topic string, payload map[string]any) {
	if err := u.publisher.Publish(ctx, topic, payload); err != nil {
		u.logger.Error("publish failed", slog.String("topic", topic), slog.String("error", err.Error()))
	}
}
