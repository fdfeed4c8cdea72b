package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"aid-relief-server/services"
)

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var notFoundErr *services.NotFoundError
	var conflictErr *services.ConflictError
	var transportErr *services.TransportError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"message": validationErr.Reason,
		})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not found",
			"message": notFoundErr.Error(),
		})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Conflict",
			"message": conflictErr.Reason,
		})
	case errors.As(err, &transportErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Upstream unavailable",
			"message": transportErr.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal error",
			"message": "Something went wrong",
		})
	}
}
