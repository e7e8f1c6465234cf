package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ialim/orderflow/internal/domain/model"
	"github.com/ialim/orderflow/internal/server/http/dto"
	"github.com/ialim/orderflow/internal/usecase"
)

// FulfilmentHandler manages the physical side of an order.
type FulfilmentHandler struct {
	facade FulfilmentFacade
}

// NewFulfilmentHandler constructs FulfilmentHandler.
func NewFulfilmentHandler(facade FulfilmentFacade) *FulfilmentHandler {
	return &FulfilmentHandler{facade: facade}
}

// Get handles GET /api/orders/:id/fulfilment.
func (h *FulfilmentHandler) Get(c *gin.Context) {
	orderID, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	f, err := h.facade.Fulfilment(c.Request.Context(), orderID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFulfilmentResponse(f))
}

// Fire handles POST /api/orders/:id/fulfilment/events.
func (h *FulfilmentHandler) Fire(c *gin.Context) {
	orderID, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	var req dto.FulfilmentEventRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Event == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	event := model.FulfilmentEvent(strings.ToUpper(req.Event))
	f, err := h.facade.FireFulfilment(c.Request.Context(), orderID, event, usecase.FireOptions{
		PIN:   req.PIN,
		Actor: CurrentActor(c),
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFulfilmentResponse(f))
}

// AssignRider handles POST /api/orders/:id/fulfilment/rider.
func (h *FulfilmentHandler) AssignRider(c *gin.Context) {
	orderID, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AssignRiderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	riderID, err := uuid.Parse(req.RiderID)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	f, err := h.facade.AssignRider(c.Request.Context(), orderID, riderID, CurrentActor(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFulfilmentResponse(f))
}

func toFulfilmentResponse(f *model.Fulfilment) dto.FulfilmentResponse {
	resp := dto.FulfilmentResponse{
		ID:              f.ID.String(),
		OrderID:         f.OrderID.String(),
		Type:            string(f.Type),
		State:           string(f.State),
		DeliveryAddress: f.DeliveryAddress,
		ReceiverName:    f.ReceiverName,
		ReceiverPhone:   f.ReceiverPhone,
		Cost:            f.Cost,
		Version:         f.Version,
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
	if f.RiderID != nil {
		resp.RiderID = f.RiderID.String()
	}
	return resp
}
