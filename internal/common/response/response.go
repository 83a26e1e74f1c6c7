// Package response 提供统一的 API 响应格式
package response

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response API 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageData 分页数据结构
type PageData struct {
	List     interface{} `json:"list"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// 下载内容类型
const (
	ContentTypeCSV = "text/csv; charset=utf-8"
	ContentTypePDF = "application/pdf"
	ContentTypePNG = "image/png"
)

// write 写入统一结构
func write(c *gin.Context, status, code int, message string, data interface{}) {
	c.JSON(status, Response{Code: code, Message: message, Data: data})
}

// orDefault 空消息时使用默认提示
func orDefault(message, def string) string {
	if message == "" {
		return def
	}
	return message
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	write(c, http.StatusOK, 0, "success", data)
}

// SuccessWithMessage 成功响应（带消息）
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	write(c, http.StatusOK, 0, message, data)
}

// SuccessPage 分页成功响应
func SuccessPage(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	write(c, http.StatusOK, 0, "success", PageData{
		List:     list,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// Attachment 以附件形式返回文件内容，文件名按 RFC 2231 编码
func Attachment(c *gin.Context, filename, contentType string, body []byte) {
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	c.Data(http.StatusOK, contentType, body)
}

// Inline 直接返回二进制内容（二维码图片等）
func Inline(c *gin.Context, contentType string, body []byte) {
	c.Data(http.StatusOK, contentType, body)
}

// Error 业务错误，HTTP 状态仍为 200
func Error(c *gin.Context, code int, message string) {
	write(c, http.StatusOK, code, message, nil)
}

// ErrorWithData 业务错误（带数据）
func ErrorWithData(c *gin.Context, code int, message string, data interface{}) {
	write(c, http.StatusOK, code, message, data)
}

// BadRequest 请求参数错误
func BadRequest(c *gin.Context, message string) {
	write(c, http.StatusBadRequest, 400, orDefault(message, "Solicitud inválida"), nil)
}

// Unauthorized 未登录或令牌无效
func Unauthorized(c *gin.Context, message string) {
	write(c, http.StatusUnauthorized, 401, orDefault(message, "No autenticado"), nil)
}

// Forbidden 角色无权访问
func Forbidden(c *gin.Context, message string) {
	write(c, http.StatusForbidden, 403, orDefault(message, "Permisos insuficientes"), nil)
}

// NotFound 路由不存在
func NotFound(c *gin.Context, message string) {
	write(c, http.StatusNotFound, 404, orDefault(message, "No encontrado"), nil)
}

// InternalError 服务器内部错误
func InternalError(c *gin.Context, message string) {
	write(c, http.StatusInternalServerError, 500, orDefault(message, "Error interno"), nil)
}

// ServiceUnavailable 依赖未就绪
func ServiceUnavailable(c *gin.Context, code int, message string, data interface{}) {
	write(c, http.StatusServiceUnavailable, code, message, data)
}

// TooManyRequests 触发限流
func TooManyRequests(c *gin.Context, message string) {
	write(c, http.StatusTooManyRequests, 429, orDefault(message, "Demasiadas solicitudes"), nil)
}
