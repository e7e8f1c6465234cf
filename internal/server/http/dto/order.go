package dto

import "time"

// SetPaymentMethodRequest selects the payment instrument for an order.
type SetPaymentMethodRequest struct {
	Method string `json:"method"`
}

// PaymentNotification is the webhook payload reported by the payment
// provider. Status is "confirmed" or "failed"; negative amounts are refunds.
type PaymentNotification struct {
	Status      string `json:"status"`
	Amount      int64  `json:"amount"`
	Method      string `json:"method"`
	ExternalRef string `json:"external_ref"`
}

// CancelOrderRequest terminates an order before clearance.
type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// CreditSnapshotResponse is the credit position recorded on the order.
type CreditSnapshotResponse struct {
	Tier           string    `json:"tier"`
	EffectiveLimit int64     `json:"effective_limit"`
	Exposure       int64     `json:"exposure"`
	Overage        int64     `json:"overage"`
	CheckedAt      time.Time `json:"checked_at"`
}

// OrderResponse is the order as exposed over HTTP.
type OrderResponse struct {
	ID              string                  `json:"id"`
	CustomerID      string                  `json:"customer_id"`
	QuotationID     string                  `json:"quotation_id"`
	Phase           string                  `json:"phase"`
	SaleState       string                  `json:"sale_state"`
	FulfilmentState string                  `json:"fulfilment_state,omitempty"`
	GrandTotal      int64                   `json:"grand_total"`
	CapturedTotal   int64                   `json:"captured_total"`
	PaymentMethod   string                  `json:"payment_method,omitempty"`
	Credit          *CreditSnapshotResponse `json:"credit,omitempty"`
	ClearToFulfilAt *time.Time              `json:"clear_to_fulfil_at,omitempty"`
	FinalizedAt     *time.Time              `json:"finalized_at,omitempty"`
	Version         int64                   `json:"version"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}
