package dto

import "time"

// QuotationItemPayload is one negotiated line in a create or edit request.
type QuotationItemPayload struct {
	SKU       string `json:"sku"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	Discount  int64  `json:"discount"`
	Tax       int64  `json:"tax"`
}

// CreateQuotationRequest opens a new draft quotation.
type CreateQuotationRequest struct {
	CustomerID      string                 `json:"customer_id"`
	Items           []QuotationItemPayload `json:"items"`
	FulfilmentType  string                 `json:"fulfilment_type"`
	DeliveryAddress string                 `json:"delivery_address"`
	ReceiverName    string                 `json:"receiver_name"`
	ReceiverPhone   string                 `json:"receiver_phone"`
	ConfirmationPIN string                 `json:"confirmation_pin"`
	DeliveryFee     int64                  `json:"delivery_fee"`
	ValidDays       int                    `json:"valid_days"`
}

// EditQuotationRequest replaces the negotiated lines.
type EditQuotationRequest struct {
	Items []QuotationItemPayload `json:"items"`
}

// ApproveQuotationRequest records one party's approval.
type ApproveQuotationRequest struct {
	Party string `json:"party"`
}

// ExtendValidityRequest pushes the validity deadline forward.
type ExtendValidityRequest struct {
	Days int `json:"days"`
}

// QuotationResponse is the quotation as exposed over HTTP.
type QuotationResponse struct {
	ID               string                 `json:"id"`
	CustomerID       string                 `json:"customer_id"`
	State            string                 `json:"state"`
	Items            []QuotationItemPayload `json:"items"`
	FulfilmentType   string                 `json:"fulfilment_type"`
	DeliveryFee      int64                  `json:"delivery_fee"`
	GrandTotal       int64                  `json:"grand_total"`
	ValidUntil       time.Time              `json:"valid_until"`
	BuyerApprovedAt  *time.Time             `json:"buyer_approved_at,omitempty"`
	SellerApprovedAt *time.Time             `json:"seller_approved_at,omitempty"`
	Version          int64                  `json:"version"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
}
