package httpapi

import (
	"errors"
	"net/http"

	"github.com/MrEthical07/sharedauth"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	msgEmailExists        = "Email already exists"
	msgInvalidCredentials = "Invalid credentials"
	msgNotAuthenticated   = "Not authenticated"
	msgRateLimited        = "Too many login attempts"
	msgFetchUsers         = "Failed to fetch users"
	msgInvalidBody        = "Invalid request body"
	msgInternal           = "Internal server error"
)

// writeError maps the service taxonomy onto a status and an {error} body.
// fallback replaces the generic 500 message when set. Internal causes are
// logged, never returned.
func writeError(c *gin.Context, logger zerolog.Logger, err error, fallback string) {
	var verr *sharedauth.ValidationError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
	case errors.Is(err, sharedauth.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": msgEmailExists})
	case errors.Is(err, sharedauth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgInvalidCredentials})
	case errors.Is(err, sharedauth.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgNotAuthenticated})
	case errors.Is(err, sharedauth.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": msgRateLimited})
	default:
		logger.Error().
			Err(err).
			Str("path", c.Request.URL.Path).
			Str("request_id", c.GetString(requestIDKey)).
			Msg("request failed")
		msg := msgInternal
		if fallback != "" {
			msg = fallback
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
