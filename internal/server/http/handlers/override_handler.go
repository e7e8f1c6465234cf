package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ialim/orderflow/internal/domain/model"
	"github.com/ialim/orderflow/internal/server/http/dto"
)

// OverrideHandler manages manual clearance overrides.
type OverrideHandler struct {
	facade OverrideFacade
}

// NewOverrideHandler constructs OverrideHandler.
func NewOverrideHandler(facade OverrideFacade) *OverrideHandler {
	return &OverrideHandler{facade: facade}
}

// Request handles POST /api/orders/:id/overrides.
func (h *OverrideHandler) Request(c *gin.Context) {
	orderID, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	var req dto.RequestOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	var kind model.OverrideKind
	switch strings.ToUpper(req.Kind) {
	case string(model.OverrideAdmin):
		kind = model.OverrideAdmin
	case string(model.OverrideCreditLimit):
		kind = model.OverrideCreditLimit
	default:
		c.Status(http.StatusBadRequest)
		return
	}

	r, err := h.facade.RequestOverride(c.Request.Context(), orderID, kind, req.Reason, CurrentActor(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOverrideResponse(r))
}

// Active handles GET /api/orders/:id/overrides.
func (h *OverrideHandler) Active(c *gin.Context) {
	orderID, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	list, err := h.facade.ActiveOverrides(c.Request.Context(), orderID)
	if err != nil {
		RespondError(c, err)
		return
	}
	response := make([]dto.OverrideResponse, 0, len(list))
	for i := range list {
		response = append(response, toOverrideResponse(&list[i]))
	}
	c.JSON(http.StatusOK, response)
}

// Approve handles POST /api/overrides/:id/approve.
func (h *OverrideHandler) Approve(c *gin.Context) {
	id, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ApproveOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	r, err := h.facade.ApproveOverride(c.Request.Context(), id, CurrentActor(c), req.ExpiresAt, req.ApprovedAmount)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOverrideResponse(r))
}

// Deny handles POST /api/overrides/:id/deny.
func (h *OverrideHandler) Deny(c *gin.Context) {
	h.resolve(c, h.facade.DenyOverride)
}

// Revoke handles POST /api/overrides/:id/revoke.
func (h *OverrideHandler) Revoke(c *gin.Context) {
	h.resolve(c, h.facade.RevokeOverride)
}

type overrideAction func(ctx context.Context, id uuid.UUID, actor string) (*model.OverrideRequest, error)

func (h *OverrideHandler) resolve(c *gin.Context, action overrideAction) {
	id, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	r, err := action(c.Request.Context(), id, CurrentActor(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOverrideResponse(r))
}

func toOverrideResponse(r *model.OverrideRequest) dto.OverrideResponse {
	return dto.OverrideResponse{
		ID:             r.ID.String(),
		OrderID:        r.OrderID.String(),
		Kind:           string(r.Kind),
		Status:         string(r.Status),
		RequestedBy:    r.RequestedBy,
		ApprovedBy:     r.ApprovedBy,
		Reason:         r.Reason,
		ApprovedAmount: r.ApprovedAmount,
		ExpiresAt:      r.ExpiresAt,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}
