package dto

import "time"

// FulfilmentEventRequest applies one event to a fulfilment. PIN accompanies
// delivery confirmation on PIN-protected deliveries.
type FulfilmentEventRequest struct {
	Event string `json:"event"`
	PIN   string `json:"pin,omitempty"`
}

// AssignRiderRequest attaches delivery personnel.
type AssignRiderRequest struct {
	RiderID string `json:"rider_id"`
}

// FulfilmentResponse is the fulfilment as exposed over HTTP.
type FulfilmentResponse struct {
	ID              string    `json:"id"`
	OrderID         string    `json:"order_id"`
	Type            string    `json:"type"`
	State           string    `json:"state"`
	RiderID         string    `json:"rider_id,omitempty"`
	DeliveryAddress string    `json:"delivery_address,omitempty"`
	ReceiverName    string    `json:"receiver_name,omitempty"`
	ReceiverPhone   string    `json:"receiver_phone,omitempty"`
	Cost            int64     `json:"cost"`
	Version         int64     `json:"version"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
