package dto

import "time"

// TransitionResponse is one audit trail row.
type TransitionResponse struct {
	ID        string         `json:"id"`
	Entity    string         `json:"entity"`
	EntityID  string         `json:"entity_id"`
	Machine   string         `json:"machine"`
	FromState string         `json:"from_state"`
	ToState   string         `json:"to_state"`
	Event     string         `json:"event"`
	Actor     string         `json:"actor,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	At        time.Time      `json:"at"`
}
