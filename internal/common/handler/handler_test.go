package handler

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/response"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// 辅助函数：创建测试上下文
func createTestContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, w
}

// 辅助函数：解析响应
func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandleError_NilError(t *testing.T) {
	c, _ := createTestContext("/")
	assert.False(t, HandleError(c, nil))
}

func TestHandleError_AppError(t *testing.T) {
	c, w := createTestContext("/")

	assert.True(t, HandleError(c, errors.ErrStayBalancePending))
	assert.Equal(t, http.StatusOK, w.Code)
	resp := parseResponse(t, w)
	assert.Equal(t, errors.ErrStayBalancePending.Code, resp.Code)
	assert.Equal(t, errors.ErrStayBalancePending.Message, resp.Message)
}

func TestHandleError_WrappedAppError(t *testing.T) {
	c, w := createTestContext("/")
	err := errors.ErrDatabaseError.WithError(stderrors.New("connection reset"))

	assert.True(t, HandleError(c, err))
	assert.Equal(t, errors.ErrDatabaseError.Code, parseResponse(t, w).Code)
}

func TestHandleError_DatabaseNotReady(t *testing.T) {
	c, w := createTestContext("/")

	assert.True(t, HandleError(c, errors.ErrDatabaseNotReady))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, errors.ErrDatabaseNotReady.Code, parseResponse(t, w).Code)
}

func TestHandleError_PlainError(t *testing.T) {
	c, w := createTestContext("/")

	assert.True(t, HandleError(c, stderrors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestMustSucceed(t *testing.T) {
	c, w := createTestContext("/")
	MustSucceed(c, nil, gin.H{"ok": true})
	assert.Equal(t, 0, parseResponse(t, w).Code)
}

func TestRequireEmployeeID(t *testing.T) {
	t.Run("未登录", func(t *testing.T) {
		c, w := createTestContext("/")
		_, ok := RequireEmployeeID(c)
		assert.False(t, ok)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("已登录", func(t *testing.T) {
		c, _ := createTestContext("/")
		c.Set(middleware.ContextKeyEmployeeID, int64(9))
		id, ok := RequireEmployeeID(c)
		assert.True(t, ok)
		assert.Equal(t, int64(9), id)
	})
}

func TestParseParamID(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		wantOK bool
		wantID int64
	}{
		{"valid", "42", true, 42},
		{"zero", "0", false, 0},
		{"negative", "-3", false, 0},
		{"text", "abc", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := createTestContext("/")
			c.Params = gin.Params{{Key: "id", Value: tt.value}}
			id, ok := ParseID(c, "estadía")
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
			if !ok {
				assert.Equal(t, http.StatusBadRequest, w.Code)
			}
		})
	}
}

func TestParseQueryID(t *testing.T) {
	c, _ := createTestContext("/")
	id, ok := ParseQueryID(c, "room_id", "habitación")
	assert.True(t, ok)
	assert.Nil(t, id)

	c, _ = createTestContext("/?room_id=5")
	id, ok = ParseQueryID(c, "room_id", "habitación")
	assert.True(t, ok)
	assert.Equal(t, int64(5), *id)

	c, w := createTestContext("/?room_id=x")
	_, ok = ParseQueryID(c, "room_id", "habitación")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseRequiredQueryDateRange(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		wantOK bool
	}{
		{"valid", "from=2026-10-01&to=2026-10-08", true},
		{"missing to", "from=2026-10-01", false},
		{"bad format", "from=01/10/2026&to=2026-10-08", false},
		{"reversed", "from=2026-10-08&to=2026-10-01", false},
		{"empty range", "from=2026-10-08&to=2026-10-08", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := createTestContext("/?" + tt.query)
			from, to, ok := ParseRequiredQueryDateRange(c, "from", "to")
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, 7, int(to.Sub(from).Hours()/24))
			} else {
				assert.Equal(t, http.StatusBadRequest, w.Code)
			}
		})
	}
}

func TestBindPagination(t *testing.T) {
	c, _ := createTestContext("/?page=3&page_size=500")
	p := BindPagination(c)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 100, p.PageSize)

	c, _ = createTestContext("/")
	p = BindPagination(c)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PageSize)
}

func TestBindJSON(t *testing.T) {
	type req struct {
		Amount int `json:"amount" binding:"required,gt=0"`
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":0}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var r req
	assert.False(t, BindJSON(c, &r))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
