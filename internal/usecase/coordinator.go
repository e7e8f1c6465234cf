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

// PhaseCoordinator is the only component that crosses machine boundaries.
// It consumes commit-time events (delivered at least once) and performs the
// handoffs between quotation, sale and fulfilment, so each handler must be
// idempotent.
type PhaseCoordinator struct {
	uow       repository.UnitOfWork
	publisher Publisher
	logger    *slog.Logger
}

// NewPhaseCoordinator constructs PhaseCoordinator.
func NewPhaseCoordinator(uow repository.UnitOfWork, publisher Publisher, logger *slog.Logger) *PhaseCoordinator {
	return &PhaseCoordinator{uow: uow, publisher: publisher, logger: logger}
}

// OnQuotationApproved creates the order for a mutually approved quotation.
// Redelivery returns the already-created order.
func (c *PhaseCoordinator) OnQuotationApproved(ctx context.Context, quotationID uuid.UUID) (*model.Order, error) {
	var order *model.Order
	err := c.uow.Do(ctx, func(r repository.Factory) error {
		existing, err := r.Orders().GetByQuotation(ctx, quotationID)
		if err == nil {
			order = existing
			return nil
		}
		if !errors.Is(err, domainErrors.ErrOrderNotFound) {
			return err
		}

		q, err := r.Quotations().Get(ctx, quotationID)
		if err != nil {
			return err
		}
		if q.State != model.QuotationStateMutuallyApproved {
			return domainErrors.ErrIllegalTransition
		}

		now := time.Now()
		o := model.NewOrderFromQuotation(q, now)
		if err := r.Orders().Create(ctx, o); err != nil {
			return err
		}
		order = o
		return r.Transitions().Append(ctx, model.NewTransition(
			model.EntityOrder, o.ID, model.MachineSale,
			"", string(o.SaleState), "ORDER_CREATED", "system",
			map[string]any{"quotation_id": quotationID.String()}, now,
		))
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// OnSaleCleared flips the order into the fulfilment phase, opens the
// fulfilment record and reserves the customer's outstanding balance as
// credit exposure. Redelivery after the flip is a no-op.
func (c *PhaseCoordinator) OnSaleCleared(ctx context.Context, orderID uuid.UUID) (*model.Fulfilment, error) {
	var fulfilment *model.Fulfilment
	err := c.uow.Do(ctx, func(r repository.Factory) error {
		o, err := r.Orders().Get(ctx, orderID)
		if err != nil {
			return err
		}
		if o.Phase == model.PhaseFulfilment {
			fulfilment, err = r.Fulfilments().GetByOrder(ctx, orderID)
			return err
		}
		if o.SaleState != model.SaleStateCleared {
			return domainErrors.ErrIllegalTransition
		}

		now := time.Now()
		f := model.NewFulfilment(o, now)
		if err := r.Fulfilments().Create(ctx, f); err != nil {
			return err
		}

		outstanding := o.Outstanding()
		if outstanding > 0 {
			if err := r.CreditProfiles().ReserveExposure(ctx, o.CustomerID, outstanding); err != nil {
				return err
			}
		}

		expected := o.Version
		o.Phase = model.PhaseFulfilment
		o.FulfilmentState = f.State
		o.CreditReserved = outstanding
		o.Version++
		o.UpdatedAt = now
		if err := r.Orders().Update(ctx, o, expected); err != nil {
			return err
		}
		fulfilment = f
		return r.Transitions().Append(ctx, model.NewTransition(
			model.EntityOrder, o.ID, model.MachineSale,
			string(model.SaleStateCleared), string(model.SaleStateCleared),
			"SALE_CLEARED", "system",
			map[string]any{"reserved": outstanding}, now,
		))
	})
	if err != nil {
		return nil, err
	}
	return fulfilment, nil
}

// OnFulfilmentCompleted finalizes the order: release the reserved exposure,
// add the sale into the customer's cumulative total, refresh the earned
// limit and upgrade the tier when the new total warrants it. Redelivery
// after finalization is a no-op.
func (c *PhaseCoordinator) OnFulfilmentCompleted(ctx context.Context, orderID uuid.UUID) error {
	err := c.uow.Do(ctx, func(r repository.Factory) error {
		o, err := r.Orders().Get(ctx, orderID)
		if err != nil {
			return err
		}
		if o.FinalizedAt != nil {
			return nil
		}
		if o.FulfilmentState != model.FulfilmentStateCompleted {
			return domainErrors.ErrIllegalTransition
		}

		now := time.Now()
		if o.CreditReserved > 0 {
			if err := r.CreditProfiles().ReleaseExposure(ctx, o.CustomerID, o.CreditReserved); err != nil {
				return err
			}
		}

		cumulative, err := r.SalesAggregates().Add(ctx, o.CustomerID, o.GrandTotal)
		if err != nil {
			return err
		}
		earned := EarnedLimit(cumulative)
		if err := r.SalesAggregates().SetEarnedLimit(ctx, o.CustomerID, earned); err != nil {
			return err
		}
		if err := c.maybeUpgradeTier(ctx, r, o.CustomerID, earned, now); err != nil {
			return err
		}

		expected := o.Version
		o.CreditReserved = 0
		o.FinalizedAt = &now
		o.Version++
		o.UpdatedAt = now
		if err := r.Orders().Update(ctx, o, expected); err != nil {
			return err
		}
		return r.Transitions().Append(ctx, model.NewTransition(
			model.EntityOrder, o.ID, model.MachineSale,
			string(o.SaleState), string(o.SaleState), "ORDER_FINALIZED", "system",
			map[string]any{"cumulative_sales": cumulative, "earned_limit": earned}, now,
		))
	})
	if err != nil {
		return err
	}
	c.publish(ctx, TopicOrderCompleted, map[string]any{"order_id": orderID.String()})
	return nil
}

// OnOrderCancelled releases any exposure an abandoned order still holds.
func (c *PhaseCoordinator) OnOrderCancelled(ctx context.Context, orderID uuid.UUID) error {
	return c.uow.Do(ctx, func(r repository.Factory) error {
		o, err := r.Orders().Get(ctx, orderID)
		if err != nil {
			return err
		}
		if o.CreditReserved == 0 {
			return nil
		}
		if err := r.CreditProfiles().ReleaseExposure(ctx, o.CustomerID, o.CreditReserved); err != nil {
			return err
		}
		now := time.Now()
		expected := o.Version
		released := o.CreditReserved
		o.CreditReserved = 0
		o.Version++
		o.UpdatedAt = now
		if err := r.Orders().Update(ctx, o, expected); err != nil {
			return err
		}
		return r.Transitions().Append(ctx, model.NewTransition(
			model.EntityOrder, o.ID, model.MachineSale,
			string(o.SaleState), string(o.SaleState), "EXPOSURE_RELEASED", "system",
			map[string]any{"released": released}, now,
		))
	})
}

// FinalizeRefund settles a refunded return: the full captured total goes
// back as a negative payment and any remaining exposure is released.
func (c *PhaseCoordinator) FinalizeRefund(ctx context.Context, orderID uuid.UUID, actor string) error {
	err := c.uow.Do(ctx, func(r repository.Factory) error {
		o, err := r.Orders().Get(ctx, orderID)
		if err != nil {
			return err
		}
		if o.FulfilmentState != model.FulfilmentStateRefunded {
			return domainErrors.ErrIllegalTransition
		}
		if o.CapturedTotal == 0 && o.CreditReserved == 0 {
			return nil
		}

		now := time.Now()
		refunded := o.CapturedTotal
		if refunded > 0 {
			if err := r.Payments().Append(ctx, &model.Payment{
				ID:         uuid.New(),
				OrderID:    o.ID,
				Status:     model.PaymentStatusConfirmed,
				Method:     o.PaymentMethod,
				Amount:     -refunded,
				CapturedAt: now,
			}); err != nil {
				return err
			}
		}
		if o.CreditReserved > 0 {
			if err := r.CreditProfiles().ReleaseExposure(ctx, o.CustomerID, o.CreditReserved); err != nil {
				return err
			}
		}

		expected := o.Version
		o.CapturedTotal = 0
		o.CreditReserved = 0
		o.Version++
		o.UpdatedAt = now
		if err := r.Orders().Update(ctx, o, expected); err != nil {
			return err
		}
		return r.Transitions().Append(ctx, model.NewTransition(
			model.EntityOrder, o.ID, model.MachineSale,
			string(o.SaleState), string(o.SaleState), "REFUND_SETTLED", actor,
			map[string]any{"refunded": refunded}, now,
		))
	})
	if err != nil {
		return err
	}
	c.publish(ctx, TopicOrderRefunded, map[string]any{"order_id": orderID.String()})
	return nil
}

// maybeUpgradeTier moves the customer up when the earned limit crosses a
// tier threshold. Tiers never move down automatically.
func (c *PhaseCoordinator) maybeUpgradeTier(ctx context.Context, r repository.Factory, customerID uuid.UUID, earned int64, now time.Time) error {
	profile, err := r.CreditProfiles().Get(ctx, customerID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil
		}
		return err
	}
	next := TierFromEarned(earned)
	if tierRank(next) <= tierRank(profile.Tier) {
		return nil
	}
	c.logger.Info("tier upgraded",
		slog.String("customer_id", customerID.String()),
		slog.String("from", string(profile.Tier)),
		slog.String("to", string(next)))
	return r.CreditProfiles().UpdateTier(ctx, customerID, next)
}

func tierRank(t model.CreditTier) int {
	switch t {
	case model.TierPlatinum:
		return 3
	case model.TierGold:
		return 2
	case model.TierSilver:
		return 1
	default:
		return 0
	}
}

func (c *PhaseCoordinator) publish(ctx context.Context, topic string, payload map[string]any) {
	if err := c.publisher.Publish(ctx, topic, payload); err != nil {
		c.logger.Error("publish failed", slog.String("topic", topic), slog.String("error", err.Error()))
	}
}
