package middlewares

import (
	"errors"
	"net/http"

	domainErrors "pet-emergency-api/src/domain/errors"

	"github.com/gin-gonic/gin"
)

// ErrorHandler maps domain errors attached to the context onto HTTP responses
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		var appErr *domainErrors.AppError
		if errors.As(err, &appErr) {
			c.JSON(statusForType(appErr.Type), gin.H{"error": appErr.Error()})
			return
		}

		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
	}
}

func statusForType(errType string) int {
	switch errType {
	case domainErrors.NotFound:
		return http.StatusNotFound
	case domainErrors.ValidationError, domainErrors.InvalidTransition:
		return http.StatusBadRequest
	case domainErrors.ResourceAlreadyExists:
		return http.StatusConflict
	case domainErrors.NotAuthenticated:
		return http.StatusUnauthorized
	case domainErrors.NotAuthorized:
		return http.StatusForbidden
	case domainErrors.ChannelProviderFailure, domainErrors.StorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
