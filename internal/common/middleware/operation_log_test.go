package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/repository"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/testutil"
)

func waitForOperationLog(t *testing.T, db *gorm.DB, where string, args ...interface{}) *models.OperationLog {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var log models.OperationLog
		err := db.Where(where, args...).Order("id DESC").First(&log).Error
		if err == nil {
			return &log
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("operation log not created: %s", where)
	return nil
}

func newAuditedRouter(db *gorm.DB, employeeID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	op := NewOperationLogger(repository.NewOperationLogRepository(db))

	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.Use(func(c *gin.Context) {
		if employeeID > 0 {
			c.Set("employee_id", employeeID)
		}
		c.Next()
	})
	v1.Use(op.Log())

	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"code": 0}) }
	v1.POST("/stays/:id/check-out", ok)
	v1.PUT("/auth/password", ok)
	v1.GET("/stays", ok)
	v1.PUT("/settings", ok)
	return r
}

func send(t *testing.T, r *gin.Engine, method, path string, body interface{}) {
	t.Helper()
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewBuffer(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestOperationLogger_LogsFrontDeskWrites(t *testing.T) {
	db := testutil.NewDB(t)
	employee := testutil.CreateEmployee(t, db, models.RoleReceptionist)
	r := newAuditedRouter(db, employee.ID)

	send(t, r, http.MethodPost, "/api/v1/stays/42/check-out", map[string]interface{}{"notes": "Sin novedad"})

	log := waitForOperationLog(t, db, "module = ? AND action = ?", "stay", "check_out")
	assert.Equal(t, employee.ID, log.EmployeeID)
	assert.Equal(t, http.StatusOK, log.StatusCode)
	require.NotNil(t, log.TargetType)
	assert.Equal(t, "stay", *log.TargetType)
	require.NotNil(t, log.TargetID)
	assert.Equal(t, int64(42), *log.TargetID)
	assert.Equal(t, "Sin novedad", log.AfterData["notes"])
}

func TestOperationLogger_MasksSensitiveFields(t *testing.T) {
	db := testutil.NewDB(t)
	employee := testutil.CreateEmployee(t, db, models.RoleAdmin)
	r := newAuditedRouter(db, employee.ID)

	send(t, r, http.MethodPut, "/api/v1/auth/password", map[string]string{
		"old_password": "anterior123",
		"new_password": "nueva12345",
	})

	log := waitForOperationLog(t, db, "module = ? AND action = ?", "auth", "change_password")
	assert.Equal(t, "***", log.AfterData["old_password"])
	assert.Equal(t, "***", log.AfterData["new_password"])
	assert.Nil(t, log.TargetType)
}

func TestOperationLogger_SkipsUnmappedAndAnonymous(t *testing.T) {
	db := testutil.NewDB(t)
	employee := testutil.CreateEmployee(t, db, models.RoleAdmin)

	r := newAuditedRouter(db, employee.ID)
	send(t, r, http.MethodGet, "/api/v1/stays", nil)
	send(t, r, http.MethodPut, "/api/v1/settings", map[string]string{"hotel_name": "Hotel"})

	anonymous := newAuditedRouter(db, 0)
	send(t, anonymous, http.MethodPost, "/api/v1/stays/7/check-out", nil)

	time.Sleep(100 * time.Millisecond)
	var count int64
	require.NoError(t, db.Model(&models.OperationLog{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestFilterSensitiveData(t *testing.T) {
	data := map[string]interface{}{
		"guest": map[string]interface{}{"doc_number": "123", "access_token": "x"},
		"items": []interface{}{map[string]interface{}{"secret_key": "y"}},
	}
	out := filterSensitiveData(data).(map[string]interface{})
	assert.Equal(t, "123", out["guest"].(map[string]interface{})["doc_number"])
	assert.Equal(t, "***", out["guest"].(map[string]interface{})["access_token"])
	assert.Equal(t, "***", out["items"].([]interface{})[0].(map[string]interface{})["secret_key"])
}
