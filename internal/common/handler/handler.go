// Package handler 各业务 Handler 共用的错误输出和参数解析
package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/response"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/utils"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/middleware"
)

// HandleError 输出错误响应，err 为 nil 时返回 false
// 业务错误以 HTTP 200 加业务码返回，数据库未就绪返回 503，其余为 500
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	if !errors.IsAppError(err) {
		logger.Error("unhandled error", requestFields(c, zap.Error(err))...)
		response.InternalError(c, "")
		return true
	}

	appErr := errors.GetAppError(err)
	if appErr.Err != nil {
		logger.Warn("request failed", requestFields(c, zap.Int("code", appErr.Code), zap.Error(appErr.Err))...)
	}
	if appErr.Code == errors.ErrDatabaseNotReady.Code {
		response.ServiceUnavailable(c, appErr.Code, appErr.Message, nil)
		return true
	}
	response.Error(c, appErr.Code, appErr.Message)
	return true
}

func requestFields(c *gin.Context, extra ...zap.Field) []zap.Field {
	fields := []zap.Field{
		logger.Path(c.FullPath()),
		zap.String("request_id", middleware.GetRequestID(c)),
	}
	if id := middleware.GetEmployeeID(c); id > 0 {
		fields = append(fields, logger.EmployeeID(id))
	}
	return append(fields, extra...)
}

// MustSucceed 有错误时输出错误，否则输出 data，调用后直接 return
func MustSucceed(c *gin.Context, err error, data interface{}) {
	if HandleError(c, err) {
		return
	}
	response.Success(c, data)
}

// MustSucceedPage 分页版本
func MustSucceedPage(c *gin.Context, err error, list interface{}, total int64, p utils.Pagination) {
	if HandleError(c, err) {
		return
	}
	response.SuccessPage(c, list, total, p.Page, p.PageSize)
}

// BindJSON 绑定并校验请求体，失败时已输出 400
func BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, "Parámetros inválidos: "+err.Error())
		return false
	}
	return true
}

// RequireEmployeeID 当前员工 ID，缺失时输出 401
func RequireEmployeeID(c *gin.Context) (int64, bool) {
	id := middleware.GetEmployeeID(c)
	if id == 0 {
		response.Unauthorized(c, "Inicie sesión")
		return 0, false
	}
	return id, true
}

// RequireEmployeeAndParseID 当前员工加路径参数 id
func RequireEmployeeAndParseID(c *gin.Context, resourceName string) (employeeID, resourceID int64, ok bool) {
	if employeeID, ok = RequireEmployeeID(c); !ok {
		return 0, 0, false
	}
	if resourceID, ok = ParseID(c, resourceName); !ok {
		return 0, 0, false
	}
	return employeeID, resourceID, true
}

// ParseID 解析路径参数 id，必须为正整数
func ParseID(c *gin.Context, resourceName string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "ID de "+resourceName+" inválido")
		return 0, false
	}
	return id, true
}

// ParseQueryID 可选的查询参数 ID，为空时返回 nil
func ParseQueryID(c *gin.Context, paramName, resourceName string) (*int64, bool) {
	raw := c.Query(paramName)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "ID de "+resourceName+" inválido")
		return nil, false
	}
	return &id, true
}

// ParseQueryDate 可选的 YYYY-MM-DD 查询参数
func ParseQueryDate(c *gin.Context, paramName string) (*time.Time, bool) {
	raw := c.Query(paramName)
	if raw == "" {
		return nil, true
	}
	t, err := utils.ParseDate(raw)
	if err != nil {
		response.BadRequest(c, "Fecha inválida: "+paramName)
		return nil, false
	}
	return &t, true
}

// ParseRequiredQueryDateRange 必填的半开区间 [from, to)
func ParseRequiredQueryDateRange(c *gin.Context, fromParam, toParam string) (from, to time.Time, ok bool) {
	f, ok := ParseQueryDate(c, fromParam)
	if !ok {
		return from, to, false
	}
	t, ok := ParseQueryDate(c, toParam)
	if !ok {
		return from, to, false
	}
	if f == nil || t == nil {
		response.BadRequest(c, "Indique "+fromParam+" y "+toParam)
		return from, to, false
	}
	if !t.After(*f) {
		response.BadRequest(c, "La fecha final debe ser posterior a la inicial")
		return from, to, false
	}
	return *f, *t, true
}

// BindPagination 读取 page 和 page_size，非法值按默认处理
func BindPagination(c *gin.Context) utils.Pagination {
	var p utils.Pagination
	_ = c.ShouldBindQuery(&p)
	p.Normalize()
	return p
}
