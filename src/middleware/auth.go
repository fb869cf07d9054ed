package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aroyle/depthroute/src/auth"
)

type AuthMiddleware struct {
	store *auth.Store
}

func NewAuthMiddleware(store *auth.Store) *AuthMiddleware {
	return &AuthMiddleware{store: store}
}

// RequireAuth accepts the session cookie or a bearer token and loads the
// user into the request context, refreshing the session on activity.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := sessionIDFrom(c)
		if sessionID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		session, err := m.store.GetSession(c.Request.Context(), sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			c.Abort()
			return
		}

		user, err := m.store.GetUser(c.Request.Context(), session.UserID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("session", session)

		if err := m.store.RefreshSession(c.Request.Context(), sessionID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh session"})
			c.Abort()
			return
		}

		c.Next()
	}
}

func sessionIDFrom(c *gin.Context) string {
	if sessionID, err := c.Cookie("session_id"); err == nil && sessionID != "" {
		return sessionID
	}
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
