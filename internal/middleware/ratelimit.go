// Package middleware 提供 HTTP 中间件
package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/cache"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/response"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Cache   *cache.Cache
	Prefix  string                    // 键前缀
	Limit   int                       // 窗口内允许次数
	Window  time.Duration             // 时间窗口
	KeyFunc func(*gin.Context) string // 自定义键生成函数
}

// RateLimit 固定窗口限流中间件，Redis 不可用时放行
func RateLimit(config *RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.Limit <= 0 || !config.Cache.Enabled() {
			c.Next()
			return
		}

		var key string
		if config.KeyFunc != nil {
			key = config.KeyFunc(c)
		} else {
			key = c.ClientIP()
		}
		key = cache.BuildKey(config.Prefix, key)

		count, err := config.Cache.IncrWindow(c.Request.Context(), key, config.Window)
		if err != nil {
			logger.Warn("rate limit counter failed", logger.Err(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		if int(count) > config.Limit {
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", fmt.Sprintf("%d", int(config.Window.Seconds())))
			response.TooManyRequests(c, "Demasiadas solicitudes, intente más tarde")
			c.Abort()
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(config.Limit-int(count)))

		c.Next()
	}
}

// APIRateLimit 接口限流：已登录按员工，否则按 IP
func APIRateLimit(c *cache.Cache, perMinute int) gin.HandlerFunc {
	return RateLimit(&RateLimitConfig{
		Cache:  c,
		Prefix: cache.KeyPrefixRateLimit,
		Limit:  perMinute,
		Window: time.Minute,
		KeyFunc: func(ctx *gin.Context) string {
			if id := GetEmployeeID(ctx); id > 0 {
				return "emp:" + strconv.FormatInt(id, 10)
			}
			return "ip:" + ctx.ClientIP()
		},
	})
}

// LoginRateLimit 登录接口按 IP 限流
func LoginRateLimit(c *cache.Cache, perMinute int) gin.HandlerFunc {
	return RateLimit(&RateLimitConfig{
		Cache:  c,
		Prefix: cache.KeyPrefixLogin,
		Limit:  perMinute,
		Window: time.Minute,
	})
}
