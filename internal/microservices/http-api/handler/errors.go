package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/shared"

	"github.com/gin-gonic/gin"
)

// respondError maps the shared error taxonomy onto HTTP. The error is also
// attached to the context for the metrics and logging middleware.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var ve *shared.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message, "code": "validation_error", "field": ve.Field})
	case errors.Is(err, shared.ErrPermissionDenied):
		if middleware.IdentityFrom(c).IsAnonymous() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication credentials were not provided", "code": "not_authenticated"})
			return
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "you do not have permission to perform this action", "code": "permission_denied"})
	case errors.Is(err, shared.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": "not_found"})
	case errors.Is(err, shared.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid confirmation code", "code": "invalid_credentials", "field": "confirmation_code"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "code": "internal"})
	}
}

// badRequest reports a body that could not be decoded at all.
func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_payload"})
}

type deferrer interface {
	Defer(field string, err error)
}

// bindJSON decodes the body into req. A value of the wrong type in an
// otherwise valid document is parked on req so the service can refuse the
// caller before it complains about the payload.
func bindJSON(c *gin.Context, req deferrer) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		req.Defer(typeErr.Field, shared.NewValidationError(typeErr.Field, "must be of type %s", typeErr.Type))
		return true
	}
	badRequest(c, err)
	return false
}

// pathID parses a numeric path parameter; anything else cannot name a row.
func pathID(c *gin.Context, name, entity string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		respondError(c, shared.NotFound(entity))
		return 0, false
	}
	return id, true
}
