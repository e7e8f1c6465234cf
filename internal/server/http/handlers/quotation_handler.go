package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ialim/orderflow/internal/domain/model"
	"github.com/ialim/orderflow/internal/server/http/dto"
	"github.com/ialim/orderflow/internal/usecase"
)

// QuotationHandler manages negotiation endpoints.
type QuotationHandler struct {
	facade QuotationFacade
}

// NewQuotationHandler constructs QuotationHandler.
func NewQuotationHandler(facade QuotationFacade) *QuotationHandler {
	return &QuotationHandler{facade: facade}
}

// Create handles POST /api/quotations.
func (h *QuotationHandler) Create(c *gin.Context) {
	var req dto.CreateQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	draft := usecase.QuotationDraft{
		CustomerID:      customerID,
		Items:           toModelItems(req.Items),
		FulfilmentType:  model.FulfilmentType(strings.ToUpper(req.FulfilmentType)),
		DeliveryAddress: req.DeliveryAddress,
		ReceiverName:    req.ReceiverName,
		ReceiverPhone:   req.ReceiverPhone,
		ConfirmationPIN: req.ConfirmationPIN,
		DeliveryFee:     req.DeliveryFee,
		ValidDays:       req.ValidDays,
	}

	q, err := h.facade.CreateQuotation(c.Request.Context(), draft, CurrentActor(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toQuotationResponse(q))
}

// Get handles GET /api/quotations/:id.
func (h *QuotationHandler) Get(c *gin.Context) {
	id, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	q, err := h.facade.Quotation(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toQuotationResponse(q))
}

// Share handles POST /api/quotations/:id/share.
func (h *QuotationHandler) Share(c *gin.Context) {
	h.fire(c, h.facade.ShareQuotation)
}

// Edit handles PUT /api/quotations/:id/items.
func (h *QuotationHandler) Edit(c *gin.Context) {
	id, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	var req dto.EditQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	q, err := h.facade.EditQuotation(c.Request.Context(), id, toModelItems(req.Items), CurrentActor(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toQuotationResponse(q))
}

// Approve handles POST /api/quotations/:id/approve.
func (h *QuotationHandler) Approve(c *gin.Context) {
	id, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ApproveQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	var buyer bool
	switch strings.ToLower(req.Party) {
	case "buyer":
		buyer = true
	case "seller":
	default:
		c.Status(http.StatusBadRequest)
		return
	}

	q, err := h.facade.ApproveQuotation(c.Request.Context(), id, buyer, CurrentActor(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toQuotationResponse(q))
}

// Decline handles POST /api/quotations/:id/decline.
func (h *QuotationHandler) Decline(c *gin.Context) {
	h.fire(c, h.facade.DeclineQuotation)
}

// Withdraw handles POST /api/quotations/:id/withdraw.
func (h *QuotationHandler) Withdraw(c *gin.Context) {
	h.fire(c, h.facade.WithdrawQuotation)
}

// Extend handles POST /api/quotations/:id/extend.
func (h *QuotationHandler) Extend(c *gin.Context) {
	id, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ExtendValidityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Days <= 0 {
		c.Status(http.StatusBadRequest)
		return
	}
	q, err := h.facade.ExtendQuotationValidity(c.Request.Context(), id, req.Days, CurrentActor(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toQuotationResponse(q))
}

// Order handles GET /api/quotations/:id/order, resolving the order created
// from an approved quotation.
func (h *QuotationHandler) Order(c *gin.Context) {
	id, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	o, err := h.facade.OrderByQuotation(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

type quotationAction func(ctx context.Context, id uuid.UUID, actor string) (*model.Quotation, error)

func (h *QuotationHandler) fire(c *gin.Context, action quotationAction) {
	id, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	q, err := action(c.Request.Context(), id, CurrentActor(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toQuotationResponse(q))
}

func toModelItems(items []dto.QuotationItemPayload) []model.QuotationItem {
	out := make([]model.QuotationItem, 0, len(items))
	for _, it := range items {
		out = append(out, model.QuotationItem{
			SKU:       it.SKU,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Discount:  it.Discount,
			Tax:       it.Tax,
		})
	}
	return out
}

func toQuotationResponse(q *model.Quotation) dto.QuotationResponse {
	items := make([]dto.QuotationItemPayload, 0, len(q.Items))
	for _, it := range q.Items {
		items = append(items, dto.QuotationItemPayload{
			SKU:       it.SKU,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Discount:  it.Discount,
			Tax:       it.Tax,
		})
	}
	return dto.QuotationResponse{
		ID:               q.ID.String(),
		CustomerID:       q.CustomerID.String(),
		State:            string(q.State),
		Items:            items,
		FulfilmentType:   string(q.FulfilmentType),
		DeliveryFee:      q.DeliveryFee,
		GrandTotal:       q.GrandTotal(),
		ValidUntil:       q.ValidUntil,
		BuyerApprovedAt:  q.BuyerApprovedAt,
		SellerApprovedAt: q.SellerApprovedAt,
		Version:          q.Version,
		CreatedAt:        q.CreatedAt,
		UpdatedAt:        q.UpdatedAt,
	}
}
