package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ialim/orderflow/internal/domain/model"
	"github.com/ialim/orderflow/internal/server/http/dto"
)

// AuditHandler exposes the transition log.
type AuditHandler struct {
	facade AuditFacade
}

// NewAuditHandler constructs AuditHandler.
func NewAuditHandler(facade AuditFacade) *AuditHandler {
	return &AuditHandler{facade: facade}
}

// History handles GET /api/audit/:entity/:id.
func (h *AuditHandler) History(c *gin.Context) {
	var entity model.EntityKind
	switch strings.ToUpper(c.Param("entity")) {
	case string(model.EntityQuotation):
		entity = model.EntityQuotation
	case string(model.EntityOrder):
		entity = model.EntityOrder
	case string(model.EntityFulfilment):
		entity = model.EntityFulfilment
	case string(model.EntityOverride):
		entity = model.EntityOverride
	default:
		c.Status(http.StatusBadRequest)
		return
	}
	id, ok := ParamUUID(c, "id")
	if !ok {
		return
	}

	rows, err := h.facade.History(c.Request.Context(), entity, id)
	if err != nil {
		RespondError(c, err)
		return
	}

	response := make([]dto.TransitionResponse, 0, len(rows))
	for _, t := range rows {
		response = append(response, dto.TransitionResponse{
			ID:        t.ID.String(),
			Entity:    string(t.Entity),
			EntityID:  t.EntityID.String(),
			Machine:   string(t.Machine),
			FromState: t.FromState,
			ToState:   t.ToState,
			Event:     t.Event,
			Actor:     t.Actor,
			Payload:   t.Payload,
			At:        t.At,
		})
	}
	c.JSON(http.StatusOK, response)
}
