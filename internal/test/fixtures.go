package test

import (
	"time"

	"github.com/google/uuid"

	"github.com/ialim/orderflow/internal/domain/model"
)

// NewQuotation builds a draft quotation with one line worth total.
func NewQuotation(customerID uuid.UUID, total int64) *model.Quotation {
	now := time.Now()
	return &model.Quotation{
		ID:             uuid.New(),
		CustomerID:     customerID,
		Items:          []model.QuotationItem{{SKU: "SKU-1", Quantity: 1, UnitPrice: total}},
		FulfilmentType: model.FulfilmentDelivery,
		ValidUntil:     now.Add(14 * 24 * time.Hour),
		State:          model.QuotationStateDraft,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// NewOrder builds an order in the given sale state.
func NewOrder(customerID uuid.UUID, total int64, state model.SaleState) *model.Order {
	now := time.Now()
	return &model.Order{
		ID:          uuid.New(),
		CustomerID:  customerID,
		QuotationID: uuid.New(),
		Phase:       model.PhaseSale,
		SaleState:   state,
		GrandTotal:  total,
		Terms: model.QuotationTerms{
			Items:          []model.QuotationItem{{SKU: "SKU-1", Quantity: 1, UnitPrice: total}},
			FulfilmentType: model.FulfilmentDelivery,
		},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewProfile builds a credit profile for the customer.
func NewProfile(customerID uuid.UUID, tier model.CreditTier, exposure int64) *model.CreditProfile {
	return &model.CreditProfile{
		CustomerID: customerID,
		Tier:       tier,
		Exposure:   exposure,
		UpdatedAt:  time.Now(),
	}
}
