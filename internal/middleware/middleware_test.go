package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Logger())
	admin := r.Group("/manage", RequireAuth(secret), RequireAdmin("Administrator"))
	admin.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong %d", CurrentUserID(c)) })
	admin.POST("/ping", func(c *gin.Context) { c.String(http.StatusOK, "posted") })
	return r
}

func TestRequireAuthRedirectsAnonymousPages(t *testing.T) {
	r := newRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/manage/ping?x=1", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?redirect=%2Fmanage%2Fping%3Fx%3D1", w.Header().Get("Location"))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequireAuthRejectsAnonymousAPI(t *testing.T) {
	r := newRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/manage/ping", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdminRole(t *testing.T) {
	r := newRouter()

	token, err := IssueToken(Identity{UserID: 7, Email: "viewer@example.com", Role: "Viewer"}, secret, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/manage/ping", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	token, err = IssueToken(Identity{UserID: 1, Email: "admin@example.com", Role: "Administrator"}, secret, time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/manage/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(RequestIDHeader, "rid-1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong 1", w.Body.String())
	assert.Equal(t, "rid-1", w.Header().Get(RequestIDHeader))
}

func TestRejectsForeignSignature(t *testing.T) {
	r := newRouter()

	token, err := IssueToken(Identity{UserID: 1, Email: "admin@example.com", Role: "Administrator"}, "other-secret", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/manage/ping", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookie, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuthExposesIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(OptionalAuth(secret))
	r.GET("/whoami", func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		c.String(http.StatusOK, "%v|%s|%v|%v", ok, id.Email, HasRole(c, "Administrator"), HasRole(c, ""))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, "false||false|false", w.Body.String())

	token, err := IssueToken(Identity{UserID: 3, Email: "admin@example.com", Role: "Administrator"}, secret, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "true|admin@example.com|true|false", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "false||false|false", w.Body.String())
}
