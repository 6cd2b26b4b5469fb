package controllers

import (
	"context"
	"net/http"
	"time"

	"citystore-api-io/api/internal/middleware"
	"citystore-api-io/api/pkg/checkout"
	"citystore-api-io/api/pkg/models"
	"citystore-api-io/api/pkg/services"
	"citystore-api-io/api/pkg/store"
	"citystore-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

const (
	DefaultRequestTimeout = 10 * time.Second
	uploadTimeout         = 30 * time.Second

	MsgOrderFailed = "Failed to place order. Please try again."
)

// WithTimeout derives the store context for one request.
func WithTimeout(c *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultRequestTimeout
	}
	return context.WithTimeout(c.Request.Context(), d)
}

// respondError maps domain errors onto the response envelope. Anything
// unrecognised becomes a logged 500 with a generic message.
func respondError(c *gin.Context, err error) {
	if verr, ok := models.IsValidationError(err); ok {
		util.HandleValidation(c, verr.Fields)
		return
	}

	var submitErr *checkout.SubmitError
	switch {
	case errors.Is(err, store.ErrProductNotFound):
		util.HandleError(c, http.StatusNotFound, store.ErrProductNotFound)
	case errors.Is(err, store.ErrOrderNotFound):
		util.HandleError(c, http.StatusNotFound, store.ErrOrderNotFound)
	case errors.Is(err, store.ErrDuplicateId):
		util.HandleError(c, http.StatusConflict, store.ErrDuplicateId)
	case errors.Is(err, services.ErrMediaDisabled):
		c.JSON(http.StatusServiceUnavailable, util.ErrorResponse{Message: services.ErrMediaDisabled.Error()})
	case errors.As(err, &submitErr):
		util.LogError("order submission failed", submitErr.Err)
		c.JSON(http.StatusBadGateway, util.ErrorResponse{Message: MsgOrderFailed})
	default:
		util.HandleError(c, http.StatusInternalServerError, err)
	}
}

// bindJSON decodes the body and answers 400 on malformed input.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		util.HandleError(c, http.StatusBadRequest, errors.Wrap(err, "invalid request body"))
		return false
	}
	return true
}

// userID is the signed-in caller's id, or "" when no claims are attached.
func userID(c *gin.Context) string {
	claim, ok := middleware.Claims(c)
	if !ok {
		return ""
	}
	return claim.Id
}
