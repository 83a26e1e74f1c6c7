package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/database"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/response"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
)

// healthHandler 健康检查（简单版）
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().Unix(),
	})
}

// pingHandler Ping 检查
func pingHandler(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}

// readyHandler 就绪检查：数据库连通且所需表齐全，Redis 未配置时视为降级
func readyHandler(db *gorm.DB, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		checks := make(map[string]interface{})
		ready := true

		dbStatus := "ok"
		if sqlDB, err := db.DB(); err != nil {
			dbStatus = "error: " + err.Error()
			ready = false
		} else if err := sqlDB.PingContext(ctx); err != nil {
			dbStatus = "error: " + err.Error()
			ready = false
		}
		checks["database"] = dbStatus

		var missing []string
		if ready {
			missing = database.MissingTables(ctx, db, models.RequiredTables)
			if len(missing) > 0 {
				checks["missing_tables"] = missing
				ready = false
			}
		}

		switch {
		case redisClient == nil:
			checks["redis"] = "disabled"
		default:
			if err := redisClient.Ping(ctx).Err(); err != nil {
				// 缓存不可用不影响就绪状态
				checks["redis"] = "degraded: " + err.Error()
			} else {
				checks["redis"] = "ok"
			}
		}

		if !ready {
			code := errors.ErrDatabaseError.Code
			message := errors.ErrDatabaseError.Message
			if len(missing) > 0 {
				code = errors.ErrDatabaseNotReady.Code
				message = errors.ErrDatabaseNotReady.Message
			}
			response.ServiceUnavailable(c, code, message, HealthResponse{
				Status:    "not ready",
				Timestamp: time.Now().Unix(),
				Checks:    checks,
			})
			return
		}

		c.JSON(http.StatusOK, HealthResponse{
			Status:    "ready",
			Timestamp: time.Now().Unix(),
			Checks:    checks,
		})
	}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp int64                  `json:"timestamp"`
	Checks    map[string]interface{} `json:"checks,omitempty"`
}
