package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/ialim/orderflow/internal/domain/errors"
	"github.com/ialim/orderflow/internal/domain/model"
	"github.com/ialim/orderflow/internal/domain/repository"
)

// SaleUseCase drives the payment and credit clearance machine. The clearance
// guard is re-evaluated after every payment capture and every override
// decision; it is the only path into ClearedForFulfilment.
type SaleUseCase struct {
	uow       repository.UnitOfWork
	publisher Publisher
	notifier  Notifier
	logger    *slog.Logger
}

// NewSaleUseCase constructs SaleUseCase.
func NewSaleUseCase(uow repository.UnitOfWork, publisher Publisher, notifier Notifier, logger *slog.Logger) *SaleUseCase {
	return &SaleUseCase{uow: uow, publisher: publisher, notifier: notifier, logger: logger}
}

// Capture is a payment webhook notification. Negative amounts are refunds.
type Capture struct {
	Amount      int64
	Method      string
	ExternalRef string
}

// Get returns the current order snapshot.
func (u *SaleUseCase) Get(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o *model.Order
	err := u.uow.Do(ctx, func(r repository.Factory) error {
		var err error
		o, err = r.Orders().Get(ctx, id)
		return err
	})
	return o, err
}

// SetPaymentMethod moves the order into PaymentInitiated. Entering payment
// runs a credit check against the frozen order total; any overage detours
// the order into OverrideReview.
func (u *SaleUseCase) SetPaymentMethod(ctx context.Context, orderID uuid.UUID, method, actor string) (*model.Order, error) {
	order, err := u.transition(ctx, orderID, func(r repository.Factory, o *model.Order, now time.Time, log *transitionLog) error {
		if o.SaleState != model.SaleStateAwaitingPaymentMethod {
			return domainErrors.ErrIllegalTransition
		}
		o.PaymentMethod = method
		if err := log.move(o, model.SaleStatePaymentInitiated, "SET_PAYMENT_METHOD", actor, nil); err != nil {
			return err
		}
		return u.enterPayment(ctx, r, o, now, actor, log)
	})
	if err != nil {
		return nil, err
	}
	u.afterCommit(ctx, order)
	return order, nil
}

// RecordCapture accumulates a confirmed capture (or refund) onto the order
// and re-evaluates the clearance guard.
func (u *SaleUseCase) RecordCapture(ctx context.Context, orderID uuid.UUID, capture Capture, actor string) (*model.Order, error) {
	if capture.Amount == 0 {
		return nil, domainErrors.ErrInvalidAmount
	}

	order, err := u.transition(ctx, orderID, func(r repository.Factory, o *model.Order, now time.Time, log *transitionLog) error {
		switch o.SaleState {
		case model.SaleStatePaymentInitiated, model.SaleStatePaymentPending, model.SaleStateOverrideReview:
		default:
			return domainErrors.ErrIllegalTransition
		}
		// Refunds can never drive the captured total negative.
		if o.CapturedTotal+capture.Amount < 0 {
			return domainErrors.ErrInvalidAmount
		}

		if err := r.Payments().Append(ctx, &model.Payment{
			ID:          uuid.New(),
			OrderID:     o.ID,
			Status:      model.PaymentStatusConfirmed,
			Method:      capture.Method,
			Amount:      capture.Amount,
			ExternalRef: capture.ExternalRef,
			CapturedAt:  now,
		}); err != nil {
			return err
		}
		o.CapturedTotal += capture.Amount

		payload := map[string]any{"amount": capture.Amount, "captured_total": o.CapturedTotal}
		cleared, err := u.evaluateClearance(ctx, r, o, now)
		if err != nil {
			return err
		}
		switch {
		case cleared:
			if err := log.move(o, model.SaleStateCleared, "PAYMENT_CAPTURED", actor, payload); err != nil {
				return err
			}
			u.markCleared(o, now)
		case o.SaleState == model.SaleStatePaymentInitiated:
			if err := log.move(o, model.SaleStatePaymentPending, "PAYMENT_CAPTURED", actor, payload); err != nil {
				return err
			}
		default:
			log.stay(o, "PAYMENT_CAPTURED", actor, payload)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.afterCommit(ctx, order)
	return order, nil
}

// FailPayment records a failed capture attempt. The failure is recoverable
// via RetryPayment or terminal via Cancel.
func (u *SaleUseCase) FailPayment(ctx context.Context, orderID uuid.UUID, capture Capture, actor string) (*model.Order, error) {
	order, err := u.transition(ctx, orderID, func(r repository.Factory, o *model.Order, now time.Time, log *transitionLog) error {
		switch o.SaleState {
		case model.SaleStatePaymentInitiated, model.SaleStatePaymentPending:
		default:
			return domainErrors.ErrIllegalTransition
		}
		if capture.Amount != 0 {
			if err := r.Payments().Append(ctx, &model.Payment{
				ID:          uuid.New(),
				OrderID:     o.ID,
				Status:      model.PaymentStatusFailed,
				Method:      capture.Method,
				Amount:      capture.Amount,
				ExternalRef: capture.ExternalRef,
				CapturedAt:  now,
			}); err != nil {
				return err
			}
		}
		return log.move(o, model.SaleStatePaymentFailed, "PAYMENT_FAILED", actor, nil)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// RetryPayment re-enters PaymentInitiated after a failure, re-running the
// credit check.
func (u *SaleUseCase) RetryPayment(ctx context.Context, orderID uuid.UUID, actor string) (*model.Order, error) {
	order, err := u.transition(ctx, orderID, func(r repository.Factory, o *model.Order, now time.Time, log *transitionLog) error {
		if o.SaleState != model.SaleStatePaymentFailed {
			return domainErrors.ErrIllegalTransition
		}
		if err := log.move(o, model.SaleStatePaymentInitiated, "INITIATE_PAYMENT", actor, nil); err != nil {
			return err
		}
		return u.enterPayment(ctx, r, o, now, actor, log)
	})
	if err != nil {
		return nil, err
	}
	u.afterCommit(ctx, order)
	return order, nil
}

// ApplyOverrideDecision re-evaluates the order after an override was
// approved, denied, revoked or expired. Approvals may clear the order
// outright; a lost override sends the order back through a fresh credit
// check.
func (u *SaleUseCase) ApplyOverrideDecision(ctx context.Context, orderID uuid.UUID, kind model.OverrideKind, granted bool, actor string) (*model.Order, error) {
	event := "OVERRIDE_WITHDRAWN"
	if granted {
		if kind == model.OverrideAdmin {
			event = "ADMIN_OVERRIDE_GRANTED"
		} else {
			event = "CREDIT_OVERRIDE_GRANTED"
		}
	}

	order, err := u.transition(ctx, orderID, func(r repository.Factory, o *model.Order, now time.Time, log *transitionLog) error {
		switch o.SaleState {
		case model.SaleStatePaymentInitiated, model.SaleStatePaymentPending, model.SaleStateOverrideReview:
		default:
			return domainErrors.ErrIllegalTransition
		}

		if !granted {
			if o.SaleState != model.SaleStateOverrideReview {
				log.stay(o, event, actor, nil)
				return nil
			}
			if err := log.move(o, model.SaleStatePaymentInitiated, event, actor, nil); err != nil {
				return err
			}
			return u.enterPayment(ctx, r, o, now, actor, log)
		}

		cleared, err := u.evaluateClearance(ctx, r, o, now)
		if err != nil {
			return err
		}
		if cleared {
			if err := log.move(o, model.SaleStateCleared, event, actor, nil); err != nil {
				return err
			}
			u.markCleared(o, now)
			return nil
		}
		log.stay(o, event, actor, nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.afterCommit(ctx, order)
	return order, nil
}

// Cancel terminates the sale before clearance.
func (u *SaleUseCase) Cancel(ctx context.Context, orderID uuid.UUID, reason, actor string) (*model.Order, error) {
	order, err := u.transition(ctx, orderID, func(r repository.Factory, o *model.Order, now time.Time, log *transitionLog) error {
		if o.SaleState.Terminal() {
			return domainErrors.ErrIllegalTransition
		}
		return log.move(o, model.SaleStateCancelled, "CANCEL_REQUESTED", actor, map[string]any{"reason": reason})
	})
	if err != nil {
		return nil, err
	}
	u.publish(ctx, TopicOrderCancelled, map[string]any{"order_id": order.ID.String(), "reason": reason})
	return order, nil
}

// enterPayment is the PaymentInitiated entry action: snapshot the customer's
// credit position and detour into OverrideReview when an overage remains.
func (u *SaleUseCase) enterPayment(ctx context.Context, r repository.Factory, o *model.Order, now time.Time, actor string, log *transitionLog) error {
	snapshot, err := u.creditSnapshot(ctx, r, o, now)
	if err != nil {
		return err
	}
	o.Credit = &snapshot
	if snapshot.Overage > 0 {
		return log.move(o, model.SaleStateOverrideReview, "CREDIT_OVERRIDE_REQUIRED", actor, map[string]any{"overage": snapshot.Overage})
	}
	return nil
}

// evaluateClearance refreshes the credit snapshot and runs the clearance
// guard against the order's current overrides.
func (u *SaleUseCase) evaluateClearance(ctx context.Context, r repository.Factory, o *model.Order, now time.Time) (bool, error) {
	snapshot, err := u.creditSnapshot(ctx, r, o, now)
	if err != nil {
		return false, err
	}
	o.Credit = &snapshot

	overrides, err := r.Overrides().ListByOrder(ctx, o.ID)
	if err != nil {
		return false, err
	}
	return ClearanceGuard(o, overrides, now), nil
}

func (u *SaleUseCase) creditSnapshot(ctx context.Context, r repository.Factory, o *model.Order, now time.Time) (model.CreditSnapshot, error) {
	profile, err := r.CreditProfiles().Get(ctx, o.CustomerID)
	if errors.Is(err, domainErrors.ErrNotFound) {
		// First credit check for this customer: provision a bronze
		// profile with nothing earned. That yields a zero effective
		// limit, so the order detours into override review rather
		// than failing outright.
		profile = &model.CreditProfile{CustomerID: o.CustomerID, Tier: model.TierBronze, UpdatedAt: now}
		err = r.CreditProfiles().Save(ctx, profile)
	}
	if err != nil {
		return model.CreditSnapshot{}, err
	}

	var earned int64
	agg, err := r.SalesAggregates().Get(ctx, o.CustomerID)
	switch {
	case err == nil:
		earned = EarnedLimit(agg.CumulativeSales)
	case errors.Is(err, domainErrors.ErrNotFound):
		// No completed sales yet; nothing earned.
	default:
		return model.CreditSnapshot{}, err
	}

	return CheckCredit(profile, earned, o.GrandTotal, now), nil
}

func (u *SaleUseCase) markCleared(o *model.Order, now time.Time) {
	ts := now
	o.ClearToFulfilAt = &ts
}

// transition runs one sale mutation as an atomic unit: load, apply, bump the
// version once per recorded hop, persist under the optimistic lock, append
// the audit rows.
func (u *SaleUseCase) transition(ctx context.Context, orderID uuid.UUID, apply func(repository.Factory, *model.Order, time.Time, *transitionLog) error) (*model.Order, error) {
	var order *model.Order
	err := u.uow.Do(ctx, func(r repository.Factory) error {
		o, err := r.Orders().Get(ctx, orderID)
		if err != nil {
			return err
		}
		now := time.Now()
		log := &transitionLog{}
		expected := o.Version
		if err := apply(r, o, now, log); err != nil {
			return err
		}
		o.Version = expected + int64(len(log.rows))
		if o.Version == expected {
			o.Version = expected + 1
		}
		o.UpdatedAt = now
		if err := r.Orders().Update(ctx, o, expected); err != nil {
			return err
		}
		order = o
		return log.append(ctx, r, o, now)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// afterCommit emits the events a committed transition produced. Failures
// here are logged and retried by the at-least-once delivery layer; they
// never undo the transition.
func (u *SaleUseCase) afterCommit(ctx context.Context, o *model.Order) {
	if o.SaleState == model.SaleStateCleared {
		u.publish(ctx, TopicSaleCleared, map[string]any{
			"order_id":    o.ID.String(),
			"customer_id": o.CustomerID.String(),
		})
		u.notifier.Notify(ctx, o.CustomerID.String(), "sale_cleared",
			fmt.Sprintf("Order %s is cleared for fulfilment.", o.ID))
		return
	}
	if o.SaleState == model.SaleStateOverrideReview && o.Credit != nil {
		u.publish(ctx, TopicSaleOverrideRequired, map[string]any{
			"order_id": o.ID.String(),
			"overage":  o.Credit.Overage,
		})
	}
}

func (u *SaleUseCase) publish(ctx context.Context, topic string, payload map[string]any) {
	if err := u.publisher.Publish(ctx, topic, payload); err != nil {
		u.logger.Error("publish failed", slog.String("topic", topic), slog.String("error", err.Error()))
	}
}

// transitionLog collects the hops of one atomic sale mutation so the audit
// rows land in the same unit as the state change.
type transitionLog struct {
	rows []pendingRow
}

type pendingRow struct {
	from    model.SaleState
	to      model.SaleState
	event   string
	actor   string
	payload map[string]any
}

// move advances the machine one hop, rejecting anything the transition
// table does not define. Each hop becomes one audit row.
func (l *transitionLog) move(o *model.Order, to model.SaleState, event, actor string, payload map[string]any) error {
	if !o.SaleState.CanMove(to) {
		return domainErrors.ErrIllegalTransition
	}
	l.rows = append(l.rows, pendingRow{from: o.SaleState, to: to, event: event, actor: actor, payload: payload})
	o.SaleState = to
	return nil
}

// stay records an audited event that re-evaluated but did not move state.
func (l *transitionLog) stay(o *model.Order, event, actor string, payload map[string]any) {
	l.rows = append(l.rows, pendingRow{from: o.SaleState, to: o.SaleState, event: event, actor: actor, payload: payload})
}

func (l *transitionLog) append(ctx context.Context, r repository.Factory, o *model.Order, now time.Time) error {
	for _, row := range l.rows {
		if err := r.Transitions().Append(ctx, model.NewTransition(
			model.EntityOrder, o.ID, model.MachineSale,
			string(row.from), string(row.to), row.event, row.actor, row.payload, now,
		)); err != nil {
			return err
		}
	}
	return nil
}
