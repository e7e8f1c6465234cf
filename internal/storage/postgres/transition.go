package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/ialim/orderflow/internal/domain/model"
)

type transitionRepository struct {
	db querier
}

func (r *transitionRepository) Append(ctx context.Context, t *model.Transition) error {
	var payload []byte
	if t.Payload != nil {
		var err error
		payload, err = json.Marshal(t.Payload)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
	}
	const query = `INSERT INTO transitions (id, entity, entity_id, machine, from_state, to_state, event, actor, payload, at)
                   VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	_, err := r.db.Exec(ctx, query,
		t.ID, t.Entity, t.EntityID, t.Machine, t.FromState, t.ToState, t.Event, t.Actor, payload, t.At)
	return err
}

func (r *transitionRepository) ListByEntity(ctx context.Context, entity model.EntityKind, entityID uuid.UUID) ([]model.Transition, error) {
	const query = `SELECT id, entity, entity_id, machine, from_state, to_state, event, actor, payload, at
                   FROM transitions WHERE entity=$1 AND entity_id=$2 ORDER BY at`
	rows, err := r.db.Query(ctx, query, entity, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Transition
	for rows.Next() {
		var (
			t       model.Transition
			payload []byte
		)
		if err := rows.Scan(&t.ID, &t.Entity, &t.EntityID, &t.Machine, &t.FromState, &t.ToState, &t.Event, &t.Actor, &payload, &t.At); err != nil {
			return nil, err
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &t.Payload); err != nil {
				return nil, fmt.Errorf("decode payload: %w", err)
			}
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
