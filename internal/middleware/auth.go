package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"tunebox/internal/domain"
	"tunebox/internal/modules/accounts"
	"tunebox/internal/pkg/token"

	"github.com/gin-gonic/gin"
)

// UserResolver turns a bearer access token into a user. Implemented by
// the accounts service; consumed by every protected endpoint.
type UserResolver interface {
	CurrentUser(ctx context.Context, accessToken string) (*domain.User, error)
}

// Auth validates the Authorization header and stores the resolved user
// in the gin context under "user".
func Auth(resolver UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			abortAuth(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid Authorization header")
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		if tokenStr == "" {
			abortAuth(c, http.StatusUnauthorized, "UNAUTHORIZED", "Empty token")
			return
		}

		user, err := resolver.CurrentUser(c.Request.Context(), tokenStr)
		if err != nil {
			switch {
			case errors.Is(err, token.ErrInvalid):
				abortAuth(c, http.StatusUnauthorized, "TOKEN_INVALID", "Invalid token")
			case errors.Is(err, token.ErrExpired):
				abortAuth(c, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired")
			case errors.Is(err, accounts.ErrSessionRevoked):
				abortAuth(c, http.StatusForbidden, "SESSION_REVOKED", "Session has been revoked")
			case errors.Is(err, accounts.ErrUserNotFound):
				abortAuth(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unknown user")
			default:
				abortAuth(c, http.StatusInternalServerError, "INTERNAL", "Failed to resolve user")
			}
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)

		c.Next()
	}
}

func abortAuth(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   gin.H{"code": code, "message": message},
	})
}
