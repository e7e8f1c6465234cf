package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ialim/orderflow/internal/domain/model"
	"github.com/ialim/orderflow/internal/server/http/dto"
	"github.com/ialim/orderflow/internal/usecase"
)

// OrderHandler manages the payment side of an order.
type OrderHandler struct {
	facade SaleFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade SaleFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	o, err := h.facade.Order(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

// SetPaymentMethod handles POST /api/orders/:id/payment-method.
func (h *OrderHandler) SetPaymentMethod(c *gin.Context) {
	id, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	var req dto.SetPaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Method == "" {
		c.Status(http.StatusBadRequest)
		return
	}
	o, err := h.facade.SetPaymentMethod(c.Request.Context(), id, req.Method, CurrentActor(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

// RecordPayment handles POST /api/orders/:id/payments, the payment provider
// webhook. Confirmed captures accumulate; failures move the sale machine to
// its failed state.
func (h *OrderHandler) RecordPayment(c *gin.Context) {
	id, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	var req dto.PaymentNotification
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	capture := usecase.Capture{
		Amount:      req.Amount,
		Method:      req.Method,
		ExternalRef: req.ExternalRef,
	}

	var (
		o   *model.Order
		err error
	)
	switch strings.ToLower(req.Status) {
	case "confirmed":
		o, err = h.facade.RecordCapture(c.Request.Context(), id, capture, CurrentActor(c))
	case "failed":
		o, err = h.facade.FailPayment(c.Request.Context(), id, capture, CurrentActor(c))
	default:
		c.Status(http.StatusBadRequest)
		return
	}
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

// RetryPayment handles POST /api/orders/:id/payments/retry.
func (h *OrderHandler) RetryPayment(c *gin.Context) {
	id, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	o, err := h.facade.RetryPayment(c.Request.Context(), id, CurrentActor(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

// Cancel handles POST /api/orders/:id/cancel.
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	var req dto.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	o, err := h.facade.CancelOrder(c.Request.Context(), id, req.Reason, CurrentActor(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

func toOrderResponse(o *model.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:              o.ID.String(),
		CustomerID:      o.CustomerID.String(),
		QuotationID:     o.QuotationID.String(),
		Phase:           string(o.Phase),
		SaleState:       string(o.SaleState),
		FulfilmentState: string(o.FulfilmentState),
		GrandTotal:      o.GrandTotal,
		CapturedTotal:   o.CapturedTotal,
		PaymentMethod:   o.PaymentMethod,
		ClearToFulfilAt: o.ClearToFulfilAt,
		FinalizedAt:     o.FinalizedAt,
		Version:         o.Version,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	if o.Credit != nil {
		resp.Credit = &dto.CreditSnapshotResponse{
			Tier:           string(o.Credit.Tier),
			EffectiveLimit: o.Credit.EffectiveLimit,
			Exposure:       o.Credit.Exposure,
			Overage:        o.Credit.Overage,
			CheckedAt:      o.Credit.CheckedAt,
		}
	}
	return resp
}
