// Package middleware 提供 HTTP 中间件
package middleware

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LoggingConfig 访问日志配置
type LoggingConfig struct {
	Logger *zap.Logger
	// SkipPaths 不记录的路径，如健康检查和指标
	SkipPaths []string
	// SlowThreshold 超过该耗时的请求以 Warn 级别记录
	SlowThreshold time.Duration
}

// DefaultLoggingConfig 默认访问日志配置
func DefaultLoggingConfig(logger *zap.Logger) *LoggingConfig {
	return &LoggingConfig{
		Logger:        logger,
		SkipPaths:     []string{"/health", "/ping", "/ready", "/metrics"},
		SlowThreshold: 2 * time.Second,
	}
}

// codeWriter 记录 JSON 响应里的业务码，下载类响应不缓存
type codeWriter struct {
	gin.ResponseWriter
	head bytes.Buffer
}

// 只需读到 code 字段
const codeSniffSize = 64

func (w *codeWriter) Write(b []byte) (int, error) {
	if w.head.Len() < codeSniffSize && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		n := codeSniffSize - w.head.Len()
		if n > len(b) {
			n = len(b)
		}
		w.head.Write(b[:n])
	}
	return w.ResponseWriter.Write(b)
}

// businessCode 解析响应头部的 {"code":N,...}，失败返回 -1
func (w *codeWriter) businessCode() int {
	raw := w.head.Bytes()
	if !bytes.HasPrefix(raw, []byte(`{"code":`)) {
		return -1
	}
	dec := json.NewDecoder(bytes.NewReader(raw[len(`{"code":`):]))
	var code int
	if err := dec.Decode(&code); err != nil {
		return -1
	}
	return code
}

// Logging 访问日志中间件
// 接口的业务错误以 HTTP 200 返回，日志级别同时参考响应中的业务码
func Logging(config *LoggingConfig) gin.HandlerFunc {
	skipPaths := make(map[string]struct{}, len(config.SkipPaths))
	for _, path := range config.SkipPaths {
		skipPaths[path] = struct{}{}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if _, ok := skipPaths[path]; ok {
			c.Next()
			return
		}

		start := time.Now()
		w := &codeWriter{ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = path
		}

		fields := []zap.Field{
			zap.String("request_id", GetRequestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		}
		if q := c.Request.URL.RawQuery; q != "" && !strings.Contains(q, "token=") {
			fields = append(fields, zap.String("query", q))
		}
		if employeeID := GetEmployeeID(c); employeeID > 0 {
			fields = append(fields, zap.Int64("employee_id", employeeID), zap.String("role", GetRole(c)))
		}
		code := w.businessCode()
		if code > 0 {
			fields = append(fields, zap.Int("code", code))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			config.Logger.Error("HTTP Request", fields...)
		case status >= 400, code > 0, config.SlowThreshold > 0 && latency > config.SlowThreshold:
			config.Logger.Warn("HTTP Request", fields...)
		default:
			config.Logger.Info("HTTP Request", fields...)
		}
	}
}

// AccessLog 使用默认配置的访问日志
func AccessLog(logger *zap.Logger) gin.HandlerFunc {
	return Logging(DefaultLoggingConfig(logger))
}
