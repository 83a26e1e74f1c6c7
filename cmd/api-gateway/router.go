package main

import (
	"reflect"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/config"
	commonMiddleware "github.com/dumeirei/hotel-frontdesk-backend/internal/common/middleware"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/metrics"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/response"
	authHandler "github.com/dumeirei/hotel-frontdesk-backend/internal/handler/auth"
	employeeHandler "github.com/dumeirei/hotel-frontdesk-backend/internal/handler/employee"
	geoHandler "github.com/dumeirei/hotel-frontdesk-backend/internal/handler/geo"
	guestHandler "github.com/dumeirei/hotel-frontdesk-backend/internal/handler/guest"
	paymentHandler "github.com/dumeirei/hotel-frontdesk-backend/internal/handler/payment"
	reportHandler "github.com/dumeirei/hotel-frontdesk-backend/internal/handler/report"
	roomHandler "github.com/dumeirei/hotel-frontdesk-backend/internal/handler/room"
	settingsHandler "github.com/dumeirei/hotel-frontdesk-backend/internal/handler/settings"
	stayHandler "github.com/dumeirei/hotel-frontdesk-backend/internal/handler/stay"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/middleware"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/repository"
)

// setupRouter 设置路由
func setupRouter(
	r *gin.Engine,
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	redisClient *redis.Client,
	a *app,
) {
	registerValidators()

	// 初始化处理器
	authH := authHandler.NewHandler(a.auth)
	employeeH := employeeHandler.NewHandler(a.employees)
	roomH := roomHandler.NewHandler(a.rooms)
	stayH := stayHandler.NewHandler(a.stays, a.payments, a.availability, a.pricing, a.reports)
	paymentH := paymentHandler.NewHandler(a.payments)
	guestH := guestHandler.NewHandler(a.guests)
	reportH := reportHandler.NewHandler(a.reports)
	settingsH := settingsHandler.NewHandler(a.settings)
	geoH := geoHandler.NewHandler(a.geography)
	opLogger := commonMiddleware.NewOperationLogger(repository.NewOperationLogRepository(db))

	// 全局中间件
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.SecureHeaders())
	r.Use(middleware.CORS(&cfg.CORS))
	r.Use(middleware.AccessLog(logger))
	if cfg.Tracing.Enabled {
		r.Use(commonMiddleware.Tracing(&commonMiddleware.TracingConfig{
			ServiceName: cfg.Tracing.ServiceName,
			SkipPaths:   []string{"/health", "/ping", "/ready", cfg.Metrics.Path},
		}))
	}
	if cfg.Metrics.Enabled {
		r.Use(metrics.GetMetrics().Middleware())
		r.GET(cfg.Metrics.Path, metrics.Handler())
	}

	// 健康检查（不需要认证）
	r.GET("/health", healthHandler)
	r.GET("/ping", pingHandler)
	r.GET("/ready", readyHandler(db, redisClient))

	// Swagger 文档
	if !cfg.IsRelease() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	var loginLimit, apiLimit gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		loginLimit = middleware.LoginRateLimit(a.cache, cfg.RateLimit.LoginPerMin)
		apiLimit = middleware.APIRateLimit(a.cache, cfg.RateLimit.RequestsPerMin)
	}

	// API v1 路由组
	v1 := r.Group("/api/v1")
	v1.Use(middleware.NoCache())
	v1.Use(middleware.RequestSizeLimiter(10 << 20))
	v1.Use(middleware.Timeout(time.Duration(cfg.Server.RequestTimeout) * time.Second))
	{
		// 公开接口（无需认证）
		public := v1.Group("")
		{
			if loginLimit != nil {
				authH.RegisterRoutes(public, loginLimit)
			} else {
				authH.RegisterRoutes(public)
			}
		}

		// 员工接口（需要登录，角色在各模块内校验）
		staff := v1.Group("")
		staff.Use(middleware.EmployeeAuth(a.jwtManager))
		if apiLimit != nil {
			staff.Use(apiLimit)
		}
		staff.Use(opLogger.Log())
		{
			authH.RegisterProtectedRoutes(staff)
			employeeH.RegisterRoutes(staff)
			roomH.RegisterRoutes(staff)
			stayH.RegisterRoutes(staff)
			paymentH.RegisterRoutes(staff)
			guestH.RegisterRoutes(staff)
			reportH.RegisterRoutes(staff)
			settingsH.RegisterRoutes(staff)
			geoH.RegisterRoutes(staff)
		}
	}

	// 404 处理
	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Ruta no encontrada")
	})
}

// registerValidators 让 binding 标签可以校验 decimal 金额
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}
