package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carhive/api/internal/apperr"
)

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.Validation, apperr.QuotaExceeded:
		return http.StatusBadRequest
	case apperr.Unauthenticated:
		return http.StatusUnauthorized
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError translates a service failure into the client JSON shape.
// Infrastructure errors keep their detail in the server log only.
func (h HandlerSet) respondError(c *gin.Context, err error) {
	e := apperr.As(err)
	if e == nil || e.Kind == apperr.Infrastructure {
		h.log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")

		message := "internal server error"
		if e != nil && e.Message != "" {
			message = e.Message
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "internal_error",
			"message": message,
		})
		return
	}

	body := gin.H{
		"success": false,
		"error":   e.Code,
		"message": e.Message,
	}
	if e.Field != "" {
		body["field"] = e.Field
	}
	c.JSON(statusFor(e.Kind), body)
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}
