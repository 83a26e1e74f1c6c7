package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/repository"
)

// 与 internal/middleware 中认证和请求 ID 中间件写入的键保持一致
const (
	ctxKeyEmployeeID = "employee_id"
	ctxKeyRole       = "role"
	ctxKeyRequestID  = "request_id"
)

// OperationLogger 前台操作审计中间件
type OperationLogger struct {
	repo *repository.OperationLogRepository
}

// NewOperationLogger 创建操作日志中间件
func NewOperationLogger(repo *repository.OperationLogRepository) *OperationLogger {
	return &OperationLogger{repo: repo}
}

// OperationConfig 操作配置
type OperationConfig struct {
	Module     string
	Action     string
	TargetType string
}

// 需要审计的写接口。员工、设置、收款更正与改价由服务层在事务内记录，这里不重复
var operationMap = map[string]OperationConfig{
	"POST /api/v1/stays/reservations":     {Module: "stay", Action: "reservation", TargetType: "stay"},
	"POST /api/v1/stays/check-in":         {Module: "stay", Action: "check_in_direct", TargetType: "stay"},
	"POST /api/v1/stays/:id/check-in":     {Module: "stay", Action: "check_in_reservation", TargetType: "stay"},
	"POST /api/v1/stays/:id/payments":     {Module: "stay", Action: "register_payment", TargetType: "stay"},
	"POST /api/v1/stays/:id/check-out":    {Module: "stay", Action: "check_out", TargetType: "stay"},
	"POST /api/v1/stays/:id/cancel":       {Module: "stay", Action: "cancel", TargetType: "stay"},
	"POST /api/v1/rooms":                  {Module: "room", Action: "create", TargetType: "room"},
	"PUT /api/v1/rooms/:id":               {Module: "room", Action: "update", TargetType: "room"},
	"PUT /api/v1/rooms/:id/rates":         {Module: "room", Action: "replace_rates", TargetType: "room"},
	"PUT /api/v1/rooms/:id/deactivate":    {Module: "room", Action: "deactivate", TargetType: "room"},
	"POST /api/v1/rooms/:id/actions":      {Module: "room", Action: "status_action", TargetType: "room"},
	"POST /api/v1/accommodation-types":    {Module: "accommodation", Action: "create", TargetType: "accommodation_type"},
	"PUT /api/v1/accommodation-types/:id": {Module: "accommodation", Action: "update", TargetType: "accommodation_type"},
	"POST /api/v1/guests":                 {Module: "guest", Action: "save", TargetType: "guest"},
	"PUT /api/v1/guests/:id":              {Module: "guest", Action: "update", TargetType: "guest"},
	"PUT /api/v1/auth/password":           {Module: "auth", Action: "change_password"},
}

var sensitiveFields = []string{
	"password", "old_password", "new_password",
	"token", "access_token", "refresh_token",
	"secret",
}

// Log 记录已登录员工的写操作，请求体脱敏后写入 after_data
func (l *OperationLogger) Log() gin.HandlerFunc {
	return func(c *gin.Context) {
		config, ok := lookupOperation(c.Request.Method, c.FullPath())
		if !ok || l.repo == nil {
			c.Next()
			return
		}

		var requestBody []byte
		if c.Request.Body != nil {
			requestBody, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
		}

		c.Next()

		employeeID, ok := c.Get(ctxKeyEmployeeID)
		id, _ := employeeID.(int64)
		if !ok || id == 0 {
			return
		}

		// gin.Context 在请求结束后会被复用，异步写入前先取出所需字段
		entry := &models.OperationLog{
			EmployeeID: id,
			Module:     config.Module,
			Action:     config.Action,
			StatusCode: c.Writer.Status(),
			IP:         c.ClientIP(),
		}
		if ua := c.Request.UserAgent(); ua != "" {
			if len(ua) > 255 {
				ua = ua[:255]
			}
			entry.UserAgent = &ua
		}
		if config.TargetType != "" {
			targetType := config.TargetType
			entry.TargetType = &targetType
			entry.TargetID = targetID(c)
		}
		entry.AfterData = requestData(requestBody)

		go l.save(entry)
	}
}

func (l *OperationLogger) save(entry *models.OperationLog) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.repo.Create(ctx, entry); err != nil {
		logger.Warn("operation log not saved",
			logger.Module(entry.Module),
			logger.Action(entry.Action),
			logger.EmployeeID(entry.EmployeeID),
			logger.Err(err),
		)
	}
}

func lookupOperation(method, path string) (OperationConfig, bool) {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return OperationConfig{}, false
	}
	config, ok := operationMap[method+" "+path]
	return config, ok
}

// targetID 从路径参数获取目标 ID
func targetID(c *gin.Context) *int64 {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}

func requestData(body []byte) models.JSON {
	if len(body) == 0 {
		return nil
	}
	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil
	}
	if m, ok := filterSensitiveData(data).(map[string]interface{}); ok {
		return models.JSON(m)
	}
	return nil
}

// filterSensitiveData 过滤敏感数据
func filterSensitiveData(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			if isSensitive(key) {
				result[key] = "***"
			} else {
				result[key] = filterSensitiveData(value)
			}
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = filterSensitiveData(item)
		}
		return result
	default:
		return data
	}
}

func isSensitive(key string) bool {
	lower := strings.ToLower(key)
	for _, sf := range sensitiveFields {
		if strings.Contains(lower, sf) {
			return true
		}
	}
	return false
}
