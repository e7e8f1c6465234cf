package dto

import "time"

// RequestOverrideRequest opens an override request against an order.
type RequestOverrideRequest struct {
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// ApproveOverrideRequest grants an override. ApprovedAmount is required for
// credit limit overrides; ExpiresAt bounds the grant in time.
type ApproveOverrideRequest struct {
	ApprovedAmount int64      `json:"approved_amount"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

// OverrideResponse is an override request as exposed over HTTP.
type OverrideResponse struct {
	ID             string     `json:"id"`
	OrderID        string     `json:"order_id"`
	Kind           string     `json:"kind"`
	Status         string     `json:"status"`
	RequestedBy    string     `json:"requested_by"`
	ApprovedBy     string     `json:"approved_by,omitempty"`
	Reason         string     `json:"reason,omitempty"`
	ApprovedAmount int64      `json:"approved_amount,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
