package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/ialim/orderflow/internal/domain/model"
	"github.com/ialim/orderflow/internal/domain/repository"
)

// AuditUseCase exposes the append-only transition log for reads.
type AuditUseCase struct {
	uow repository.UnitOfWork
}

// NewAuditUseCase constructs AuditUseCase.
func NewAuditUseCase(uow repository.UnitOfWork) *AuditUseCase {
	return &AuditUseCase{uow: uow}
}

// History returns the recorded transitions of one entity in the order they
// happened.
func (u *AuditUseCase) History(ctx context.Context, entity model.EntityKind, entityID uuid.UUID) ([]model.Transition, error) {
	var out []model.Transition
	err := u.uow.Do(ctx, func(r repository.Factory) error {
		var err error
		out, err = r.Transitions().ListByEntity(ctx, entity, entityID)
		return err
	})
	return out, err
}
