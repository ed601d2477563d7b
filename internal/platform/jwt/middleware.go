package jwtmw

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"task_backend/internal/api"
)

// TokenVerifier is the subset of TokenService the middleware needs.
type TokenVerifier interface {
	Verify(token string) (uint, error)
}

// AuthRequired returns a Gin middleware that rejects requests without a valid session token.
//
// The Authorization header carries the raw token (no "Bearer " scheme).
// The verified user id is not stored on the context: handlers behind this
// guard act on any resource once the caller is authenticated.
func AuthRequired(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: api.MsgUnauthorized})
			return
		}

		if _, err := verifier.Verify(token); err != nil {
			slog.Warn("token verification failed", "error", err, "path", c.FullPath(), "remote_addr", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: api.MsgUnauthorized})
			return
		}

		c.Next()
	}
}
