// Package main 是应用程序入口
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/cache"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/config"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/database"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/metrics"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/tracing"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/repository"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/scheduler"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/service/settings"
)

// version 构建时通过 -ldflags 注入
var version = "dev"

// @title Hotel Front Desk API
// @version 1.0
// @description 酒店前台管理后端：房间、住宿、收款与报表
// @BasePath /
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	// .env 仅用于本地开发，不存在时忽略
	_ = godotenv.Load()

	// 加载配置
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid config:\n%v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	if err := logger.Init(&cfg.Logger); err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	log := logger.GetLogger()

	log.Info("Starting Hotel Front Desk Backend",
		zap.String("version", version),
		zap.String("env", cfg.Server.Mode),
		zap.String("hotel", cfg.Business.HotelName),
	)

	// 指标需在任何服务记录之前初始化
	metrics.Init(cfg.Metrics.Namespace)

	tracer, err := tracing.Init(tracing.FromConfig(&cfg.Tracing, version, cfg.Server.Mode))
	if err != nil {
		log.Fatal("Failed to init tracing", zap.Error(err))
	}

	// 初始化数据库连接
	db, err := database.Init(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	if cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		if err := database.Migrate(ctx, db, models.Schema()); err != nil {
			cancel()
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
		if err := repository.SeedCatalogs(ctx, db, settings.Defaults(&cfg.Business)); err != nil {
			cancel()
			log.Fatal("Failed to seed catalogs", zap.Error(err))
		}
		cancel()
		log.Info("Database schema up to date")
	}

	// Redis 不可用时降级为无缓存运行，限流随之关闭
	var redisClient *redis.Client
	if client, err := cache.Init(&cfg.Redis); err != nil {
		log.Warn("Redis unavailable, running without cache", zap.Error(err))
	} else {
		redisClient = client
		defer redisClient.Close()
		log.Info("Redis connected successfully")
	}

	app, err := newApp(cfg, log, db, cache.New(redisClient))
	if err != nil {
		log.Fatal("Failed to init services", zap.Error(err))
	}
	defer app.Close()

	// 设置 Gin 模式
	switch cfg.Server.Mode {
	case "release", "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	// 创建 Gin 引擎
	engine := gin.New()

	// 设置路由
	setupRouter(engine, cfg, log, db, redisClient, app)

	// 定时任务
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.NewScheduler(cfg.Business.Location(), log)
		taskHandler := scheduler.NewTaskHandler(
			db,
			app.dispatcher,
			app.reports,
			time.Duration(cfg.Business.StaleCleaningHours)*time.Hour,
			cfg.Business.Location(),
		)
		if err := scheduler.SetupTasks(sched, taskHandler, &cfg.Scheduler); err != nil {
			log.Fatal("Failed to setup scheduled tasks", zap.Error(err))
		}
		sched.Start()
	}

	// 创建 HTTP 服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// 在 goroutine 中启动服务器
	go func() {
		log.Info("HTTP server starting",
			zap.String("addr", srv.Addr),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// 关闭 HTTP 服务器
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if sched != nil {
		sched.Stop()
	}

	if err := tracer.Shutdown(ctx); err != nil {
		log.Warn("Tracer shutdown failed", zap.Error(err))
	}

	// 关闭数据库连接
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Info("Server exited")
}
