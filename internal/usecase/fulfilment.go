package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/ialim/orderflow/internal/domain/errors"
	"github.com/ialim/orderflow/internal/domain/model"
	"github.com/ialim/orderflow/internal/domain/repository"
)

// FulfilmentUseCase drives the physical side of an order after clearance.
// Every hop is mirrored onto the owning order so a single read shows where
// the order stands.
type FulfilmentUseCase struct {
	uow       repository.UnitOfWork
	publisher Publisher
	logger    *slog.Logger
}

// NewFulfilmentUseCase constructs FulfilmentUseCase.
func NewFulfilmentUseCase(uow repository.UnitOfWork, publisher Publisher, logger *slog.Logger) *FulfilmentUseCase {
	return &FulfilmentUseCase{uow: uow, publisher: publisher, logger: logger}
}

// FireOptions carries event-specific inputs. PIN is required for handover
// events on PIN-protected deliveries.
type FireOptions struct {
	PIN   string
	Actor string
}

// Get returns the fulfilment attached to an order.
func (u *FulfilmentUseCase) Get(ctx context.Context, orderID uuid.UUID) (*model.Fulfilment, error) {
	var f *model.Fulfilment
	err := u.uow.Do(ctx, func(r repository.Factory) error {
		var err error
		f, err = r.Fulfilments().GetByOrder(ctx, orderID)
		return err
	})
	return f, err
}

// Fire applies one fulfilment event. State is persisted on the fulfilment,
// mirrored onto the order, and logged, all in one unit.
func (u *FulfilmentUseCase) Fire(ctx context.Context, orderID uuid.UUID, event model.FulfilmentEvent, opts FireOptions) (*model.Fulfilment, error) {
	var fulfilment *model.Fulfilment
	err := u.uow.Do(ctx, func(r repository.Factory) error {
		f, err := r.Fulfilments().GetByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		now := time.Now()
		from := f.State
		if err := f.Apply(event, opts.PIN, now); err != nil {
			return err
		}
		expected := f.Version
		f.Version++
		f.UpdatedAt = now
		if err := r.Fulfilments().Update(ctx, f, expected); err != nil {
			return err
		}
		if err := u.mirror(ctx, r, f, now); err != nil {
			return err
		}
		fulfilment = f
		return r.Transitions().Append(ctx, model.NewTransition(
			model.EntityFulfilment, f.ID, model.MachineFulfilment,
			string(from), string(f.State), string(event), opts.Actor, nil, now,
		))
	})
	if err != nil {
		return nil, err
	}
	u.publish(ctx, topicFulfilmentPrefix+strings.ToLower(string(event)), map[string]any{
		"order_id": orderID.String(),
		"state":    string(fulfilment.State),
	})
	return fulfilment, nil
}

// AssignRider attaches a rider to a delivery fulfilment.
func (u *FulfilmentUseCase) AssignRider(ctx context.Context, orderID, riderID uuid.UUID, actor string) (*model.Fulfilment, error) {
	var fulfilment *model.Fulfilment
	err := u.uow.Do(ctx, func(r repository.Factory) error {
		f, err := r.Fulfilments().GetByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		now := time.Now()
		if err := f.AssignRider(riderID, now); err != nil {
			return err
		}
		expected := f.Version
		f.Version++
		f.UpdatedAt = now
		if err := r.Fulfilments().Update(ctx, f, expected); err != nil {
			return err
		}
		fulfilment = f
		return r.Transitions().Append(ctx, model.NewTransition(
			model.EntityFulfilment, f.ID, model.MachineFulfilment,
			string(f.State), string(f.State), "RIDER_ASSIGNED", actor,
			map[string]any{"rider_id": riderID.String()}, now,
		))
	})
	if err != nil {
		return nil, err
	}
	return fulfilment, nil
}

// mirror copies the fulfilment state onto the order so order reads do not
// need a join. The order version still moves under the optimistic lock.
func (u *FulfilmentUseCase) mirror(ctx context.Context, r repository.Factory, f *model.Fulfilment, now time.Time) error {
	o, err := r.Orders().Get(ctx, f.OrderID)
	if err != nil {
		return err
	}
	if o.Phase != model.PhaseFulfilment {
		return domainErrors.ErrIllegalTransition
	}
	expected := o.Version
	o.FulfilmentState = f.State
	o.Version++
	o.UpdatedAt = now
	return r.Orders().Update(ctx, o, expected)
}

func (u *FulfilmentUseCase) publish(ctx context.Context, topic string, payload map[string]any) {
	if err := u.publisher.Publish(ctx, topic, payload); err != nil {
		u.logger.Error("publish failed", slog.String("topic", topic), slog.String("error", err.Error()))
	}
}
