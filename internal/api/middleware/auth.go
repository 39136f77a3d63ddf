package middleware

import (
	"net/http"
	"oversave/internal/auth"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextUserKey is the gin context key holding the authenticated user
const ContextUserKey = "user"

// SessionMiddleware resolves the authenticated user from the bearer
// session token. The token is accepted only from the Authorization
// header, never from a cookie or query string.
type SessionMiddleware struct {
	authService *auth.Service
}

// NewSessionMiddleware creates a new session middleware
func NewSessionMiddleware(authService *auth.Service) *SessionMiddleware {
	return &SessionMiddleware{authService: authService}
}

// BearerToken extracts the opaque token from the Authorization header,
// returning "" when the header is absent or malformed
func BearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// SessionRequired resolves the user from the presented token and stores
// it in the context. Resolution implicitly renews the session. Every
// invalidity reason (missing, expired, idle, tampered) collapses to the
// same 401 response; the reasons stay distinguishable only in the
// server-side audit trail.
func (m *SessionMiddleware) SessionRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "please log in again"})
			c.Abort()
			return
		}

		user, err := m.authService.CurrentUser(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "please log in again"})
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}
