package middleware

import (
	"net/http"
	"strings"

	"finance_webapp/internal/logger"
	"finance_webapp/internal/service"

	"github.com/gin-gonic/gin"
)

// Gin context keys set by RequireUser.
const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
)

// UserResolver maps a session token to the caller.
type UserResolver interface {
	ResolveUser(token string) (service.Identity, error)
}

// TokenSources lists where the session token is looked up, in order: the
// header set by the authenticating proxy, a bearer token, then cookies.
type TokenSources struct {
	TrustedHeader string
	CookieNames   []string
}

// RequireUser resolves the caller once per request and aborts with 401 before
// any handler runs when no identity is present.
func RequireUser(resolver UserResolver, src TokenSources) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := src.token(c)
		id, err := resolver.ResolveUser(token)
		if err != nil {
			logger.Debug("request rejected", "path", c.Request.URL.Path, "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(ContextUserID, id.UserID)
		c.Set(ContextUsername, id.Username)
		c.Next()
	}
}

func (s TokenSources) token(c *gin.Context) string {
	if s.TrustedHeader != "" {
		if v := strings.TrimSpace(c.GetHeader(s.TrustedHeader)); v != "" {
			return v
		}
	}
	if auth := c.GetHeader("Authorization"); auth != "" {
		if scheme, token, ok := strings.Cut(auth, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	for _, name := range s.CookieNames {
		if v, err := c.Cookie(name); err == nil && v != "" {
			return v
		}
	}
	return ""
}
