package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/observability/logging"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/persistence/store"
	"github.com/StudyDeckHQ/studydeck-go/internal/infrastructure/security"
	"github.com/StudyDeckHQ/studydeck-go/pkg/config"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToFile:    false,
		OutputToConsole: false,
		DefaultLevel:    slog.LevelError,
		ChannelLevels:   map[logging.Channel]slog.Level{},
	})
	require.NoError(t, err)

	local, err := store.NewLocalStore(filepath.Join(t.TempDir(), "local.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { local.Close() })
	remote, err := store.NewLocalStore(filepath.Join(t.TempDir(), "remote.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { remote.Close() })

	r := gin.New()
	r.Use(SessionMiddleware(local, remote, logger))
	r.GET("/whoami", RequireSession(), func(c *gin.Context) {
		sess, _ := GetSessionContext(c)
		c.JSON(http.StatusOK, gin.H{
			"userId":  sess.UserID,
			"guest":   sess.Guest,
			"backend": sess.Store.Backend(),
		})
	})
	r.GET("/admin-only", RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func TestRequireSessionRejectsAnonymous(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGuestHeaderResolvesToLocalBackend(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Guest-ID", "guest-1756500000000-000001")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"guest":true`)
	assert.Contains(t, w.Body.String(), "guest-1756500000000-000001")
}

func TestNonGuestHeaderIsIgnored(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Guest-ID", "auth-1")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code, "only guest-prefixed ids resolve via header")
}

func TestBearerTokenResolvesAuthenticatedSession(t *testing.T) {
	r := newTestRouter(t)

	token, err := security.GenerateSessionToken("auth-1", "a@b.c", false, config.JWTSecret, time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"guest":false`)
	assert.Contains(t, w.Body.String(), "auth-1")
}

func TestAdminTokenGrantsOperatorAccess(t *testing.T) {
	r := newTestRouter(t)

	token, err := security.GenerateAdminToken(config.JWTSecret, time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionTokenClaimingAdminIDIsNotOperator(t *testing.T) {
	r := newTestRouter(t)

	// An ordinary session token for the id "admin" must not pass the
	// operator gate; only the admin-typed token does.
	token, err := security.GenerateSessionToken("admin", "x@y.z", false, config.JWTSecret, time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGuestSessionIsNotOperator(t *testing.T) {
	r := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	req.Header.Set("X-Guest-ID", "guest-1756500000000-000001")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestInvalidBearerTokenIsRejected(t *testing.T) {
	r := newTestRouter(t)

	token, err := security.GenerateSessionToken("auth-1", "", false, "some-other-secret", time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
