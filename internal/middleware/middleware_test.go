package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/cache"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/config"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/response"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/jwt"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWTManager() *jwt.Manager {
	return jwt.NewManager(&jwt.Config{
		Secret:            "middleware-test-secret",
		AccessExpireTime:  time.Hour,
		RefreshExpireTime: 24 * time.Hour,
		Issuer:            "test",
	})
}

func doRequest(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestEmployeeAuth(t *testing.T) {
	manager := newJWTManager()
	pair, err := manager.GenerateTokenPair(12, "auth-12", models.RoleReceptionist)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", EmployeeAuth(manager), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetEmployeeID(c), "role": GetRole(c), "auth": GetClaims(c).AuthID})
	})

	t.Run("没有令牌", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/me", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("刷新令牌不能访问", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/me", pair.RefreshToken)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("有效访问令牌", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/me", pair.AccessToken)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":12,"role":"Recepcionista","auth":"auth-12"}`, w.Body.String())
	})

	t.Run("查询参数携带令牌", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/me?token="+pair.AccessToken, "")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequireRoles(t *testing.T) {
	manager := newJWTManager()
	admin, _ := manager.GenerateTokenPair(1, "a", models.RoleAdmin)
	cleaner, _ := manager.GenerateTokenPair(2, "b", models.RoleCleaning)

	r := gin.New()
	r.Use(EmployeeAuth(manager))
	r.PUT("/settings", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.POST("/rooms/1/actions", RequireAnyStaff(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.POST("/stays/1/cancel", RequireFrontDesk(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, doRequest(r, http.MethodPut, "/settings", admin.AccessToken).Code)
	assert.Equal(t, http.StatusForbidden, doRequest(r, http.MethodPut, "/settings", cleaner.AccessToken).Code)
	assert.Equal(t, http.StatusNoContent, doRequest(r, http.MethodPost, "/rooms/1/actions", cleaner.AccessToken).Code)
	assert.Equal(t, http.StatusForbidden, doRequest(r, http.MethodPost, "/stays/1/cancel", cleaner.AccessToken).Code)
}

func TestRequireRoles_WithoutAuth(t *testing.T) {
	r := gin.New()
	r.GET("/x", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })
	assert.Equal(t, http.StatusUnauthorized, doRequest(r, http.MethodGet, "/x", "").Code)
}

func TestLoginRateLimit(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	r := gin.New()
	r.POST("/login", LoginRateLimit(cache.New(client), 2), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodPost, "/login", "").Code)
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodPost, "/login", "").Code)
	w := doRequest(r, http.MethodPost, "/login", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	s.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodPost, "/login", "").Code)
}

func TestRateLimit_DisabledCachePassesThrough(t *testing.T) {
	r := gin.New()
	r.GET("/x", APIRateLimit(cache.New(nil), 1), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/x", "").Code)
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(&config.CORSConfig{AllowedOrigins: []string{"https://recepcion.example.co"}, AllowCredentials: true}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://recepcion.example.co")
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://recepcion.example.co", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := doRequest(r, http.MethodGet, "/x", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())
}

func TestTimeout_SetsDeadline(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(50 * time.Millisecond))
	r.GET("/x", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		c.Status(http.StatusOK)
	})
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/x", "").Code)
}

func TestRequestID_RejectsInvalidHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "recepcion-01")
	r.ServeHTTP(w, req)
	assert.Equal(t, "recepcion-01", w.Body.String())

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "con espacios")
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "con espacios", w.Body.String())
	assert.Len(t, w.Body.String(), 36)
}

func TestSecureHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecureHeaders())
	r.GET("/api/v1/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/swagger/*any", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := doRequest(r, http.MethodGet, "/api/v1/x", "")
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))

	w = doRequest(r, http.MethodGet, "/swagger/index.html", "")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, w.Header().Get("Content-Security-Policy"))
}

func TestAccessLog_BusinessCode(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(RequestID(), AccessLog(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { response.Success(c, gin.H{"id": 1}) })
	r.GET("/conflict", func(c *gin.Context) {
		response.Error(c, errors.ErrBookingConflict.Code, errors.ErrBookingConflict.Message)
	})
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	doRequest(r, http.MethodGet, "/ok", "")
	doRequest(r, http.MethodGet, "/conflict", "")
	doRequest(r, http.MethodGet, "/health", "")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.EqualValues(t, errors.ErrBookingConflict.Code, entries[1].ContextMap()["code"])
	assert.Equal(t, "/conflict", entries[1].ContextMap()["route"])
}
