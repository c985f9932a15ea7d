// Package middleware provides HTTP middleware for session resolution and CORS.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/StudyDeckHQ/studydeck-go/internal/domain/session"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/logging"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/persistence/store"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/security"
	"github.com/StudyDeckHQ/studydeck-go/pkg/config"
)

const sessionContextKey = "sessionContext"

// SessionMiddleware resolves the request's session: a Bearer token maps
// to an authenticated (or guest) identity, a bare X-Guest-ID header maps
// to guest mode. The storage backend is selected here so downstream code
// never branches on mode. Requests without identity pass through with no
// session; handlers that need one use RequireSession.
func SessionMiddleware(local, remote store.Store, logger *logging.ChanneledLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sess := resolveSession(c, local, remote, logger); sess != nil {
			c.Set(sessionContextKey, sess)
		}
		c.Next()
	}
}

// RequireSession rejects requests that carry no resolvable identity.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := GetSessionContext(c); !exists {
			c.AbortWithStatusJSON(401, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects requests whose token was not minted by the
// operator login. The admin claim is the gate, not the user id: session
// tokens are issued for any verified id and must never grant operator
// access.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, exists := GetSessionContext(c)
		if !exists || !sess.Admin {
			c.AbortWithStatusJSON(403, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// GetSessionContext retrieves the resolved session from the gin context.
func GetSessionContext(c *gin.Context) (*session.Context, bool) {
	value, exists := c.Get(sessionContextKey)
	if !exists {
		return nil, false
	}
	sess, ok := value.(*session.Context)
	return sess, ok && sess != nil
}

func resolveSession(c *gin.Context, local, remote store.Store, logger *logging.ChanneledLogger) *session.Context {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		token := strings.TrimPrefix(auth, "Bearer ")
		claims, err := security.ValidateJWT(token, config.JWTSecret)
		if err != nil {
			logger.Auth().Debug("Rejected session token", "error", err.Error(), "path", c.Request.URL.Path)
			return nil
		}
		sc := security.SessionFromClaims(claims)
		if sc == nil || sc.UserID == "" {
			return nil
		}
		backend := remote
		if sc.Guest {
			backend = local
		}
		sess := session.NewContext(sc.UserID, sc.Email, sc.Guest, backend)
		sess.Admin = sc.Admin
		return sess
	}

	// Guest mode carries no token; the client replays the guest id it
	// was handed at guest creation.
	if guestID := c.GetHeader("X-Guest-ID"); strings.HasPrefix(guestID, "guest-") {
		return session.NewContext(guestID, "", true, local)
	}

	return nil
}
