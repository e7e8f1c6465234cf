package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainErrors "github.com/ialim/orderflow/internal/domain/errors"
	"github.com/ialim/orderflow/internal/server/http/middleware"
)

// CurrentActor returns the audit actor tag for the authenticated user.
func CurrentActor(c *gin.Context) string {
	val, ok := c.Get(middleware.UserIDContextKey)
	if !ok {
		return ""
	}
	id, _ := val.(int64)
	return fmt.Sprintf("user:%d", id)
}

// ParamUUID parses a UUID path parameter, responding 400 on failure.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.Status(http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// RespondError maps domain errors onto HTTP statuses.
func RespondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainErrors.ErrQuotationNotFound),
		errors.Is(err, domainErrors.ErrOrderNotFound),
		errors.Is(err, domainErrors.ErrOverrideNotFound),
		errors.Is(err, domainErrors.ErrFulfilmentNotFound),
		errors.Is(err, domainErrors.ErrNotFound):
		c.Status(http.StatusNotFound)
	case errors.Is(err, domainErrors.ErrIllegalTransition),
		errors.Is(err, domainErrors.ErrOverrideAlreadyActive):
		c.Status(http.StatusConflict)
	case errors.Is(err, domainErrors.ErrVersionConflict):
		c.Status(http.StatusConflict)
	case errors.Is(err, domainErrors.ErrConfirmationMismatch):
		c.Status(http.StatusForbidden)
	case errors.Is(err, domainErrors.ErrInvalidAmount),
		errors.Is(err, domainErrors.ErrCreditProfileMissing):
		c.Status(http.StatusUnprocessableEntity)
	default:
		c.Status(http.StatusInternalServerError)
	}
}
