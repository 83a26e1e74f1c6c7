// Package middleware 提供 HTTP 中间件
package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/config"
)

// 默认跨域参数
var (
	defaultAllowMethods = []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodOptions,
	}
	defaultAllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		"Authorization",
		"X-Request-ID",
		"X-Requested-With",
	}
	defaultExposeHeaders = []string{
		"Content-Length",
		"Content-Type",
		"Content-Disposition",
		"X-Request-ID",
		"X-RateLimit-Limit",
		"X-RateLimit-Remaining",
	}
)

// CORS 跨域中间件，"*" 表示回显任意来源
func CORS(cfg *config.CORSConfig) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods:     defaultAllowMethods,
		AllowHeaders:     defaultAllowHeaders,
		ExposeHeaders:    defaultExposeHeaders,
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}

	if cfg != nil {
		if len(cfg.AllowedMethods) > 0 {
			c.AllowMethods = cfg.AllowedMethods
		}
		if len(cfg.AllowedHeaders) > 0 {
			c.AllowHeaders = cfg.AllowedHeaders
		}
		if len(cfg.ExposedHeaders) > 0 {
			c.ExposeHeaders = cfg.ExposedHeaders
		}
		c.AllowCredentials = cfg.AllowCredentials
		if cfg.MaxAge > 0 {
			c.MaxAge = time.Duration(cfg.MaxAge) * time.Second
		}
	}

	origins := []string{"*"}
	if cfg != nil && len(cfg.AllowedOrigins) > 0 {
		origins = cfg.AllowedOrigins
	}
	if len(origins) == 1 && origins[0] == "*" {
		c.AllowOriginFunc = func(string) bool { return true }
	} else {
		c.AllowOrigins = origins
	}

	return cors.New(c)
}
