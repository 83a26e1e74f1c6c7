package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ready(t *testing.T, db *gorm.DB) (int, map[string]interface{}) {
	t.Helper()
	r := gin.New()
	cache, _ := testutil.NewCache(t)
	r.GET("/ready", readyHandler(db, cache.Client()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestReady_MissingTables(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	status, body := ready(t, db)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.EqualValues(t, errors.ErrDatabaseNotReady.Code, body["code"])

	data := body["data"].(map[string]interface{})
	checks := data["checks"].(map[string]interface{})
	assert.Contains(t, checks["missing_tables"], "stays")
	assert.Equal(t, "ok", checks["redis"])
}

func TestReady_Migrated(t *testing.T) {
	status, body := ready(t, testutil.NewDB(t))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", body["status"])
}

func TestHealthAndPing(t *testing.T) {
	r := gin.New()
	r.GET("/health", healthHandler)
	r.GET("/ping", pingHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, "pong", w.Body.String())
}
