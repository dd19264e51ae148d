package auth

import (
	"context"
	"net/http"
	"strings"

	"lostwatch/internal/apperr"

	"github.com/gin-gonic/gin"
)

// TokenVerifier is the identity check the middleware depends on.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

const ClaimsKey = "auth_claims"

// RequireBearer rejects requests without a valid bearer token before they
// reach any handler. A nil verifier lets everything through.
func RequireBearer(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if v == nil {
			c.Next()
			return
		}

		token := extractToken(c.GetHeader("Authorization"))
		if token == "" {
			abort(c, apperr.Auth("missing or malformed bearer token", nil))
			return
		}

		claims, err := v.Verify(c.Request.Context(), token)
		if err != nil {
			e := apperr.As(err)
			if e.Kind != apperr.KindAuth {
				e = apperr.Auth("invalid token", err)
			}
			abort(c, e)
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

func abort(c *gin.Context, e *apperr.Error) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, apperr.ToWire(e))
}

// extractToken extracts the token from the Authorization header
func extractToken(authHeader string) string {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
