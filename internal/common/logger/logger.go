// Package logger 全局结构化日志，基于 zap，文件输出由 lumberjack 轮转
package logger

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/config"
)

var log *zap.Logger

// Init 按配置替换全局日志器
func Init(cfg *config.LoggerConfig) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	log = l
	return nil
}

// New 按配置构建日志器，不修改全局日志器
func New(cfg *config.LoggerConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("logger level: %w", err)
		}
		level = parsed
	}

	sink, err := newSink(cfg)
	if err != nil {
		return nil, err
	}

	opts := []zap.Option{zap.AddStacktrace(zapcore.ErrorLevel)}
	if cfg.Caller {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(zapcore.NewCore(newEncoder(cfg.Format), sink, level), opts...), nil
}

func newEncoder(format string) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	ec.EncodeDuration = zapcore.MillisDurationEncoder
	if format == "json" {
		return zapcore.NewJSONEncoder(ec)
	}
	ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(ec)
}

// newSink output 取 stdout、file 或 both
func newSink(cfg *config.LoggerConfig) (zapcore.WriteSyncer, error) {
	var writers []zapcore.WriteSyncer
	switch cfg.Output {
	case "", "stdout":
		writers = append(writers, zapcore.Lock(os.Stdout))
	case "file", "both":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("logger output %q requires file_path", cfg.Output)
		}
		writers = append(writers, zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
			LocalTime:  true,
		}))
		if cfg.Output == "both" {
			writers = append(writers, zapcore.Lock(os.Stdout))
		}
	default:
		return nil, fmt.Errorf("unknown logger output %q", cfg.Output)
	}
	return zapcore.NewMultiWriteSyncer(writers...), nil
}

// GetLogger 全局日志器，未初始化时使用开发配置
func GetLogger() *zap.Logger {
	if log == nil {
		log, _ = zap.NewDevelopment()
	}
	return log
}

// Named 子日志器
func Named(name string) *zap.Logger {
	return GetLogger().Named(name)
}

// Sync 刷新缓冲
func Sync() error {
	if log == nil {
		return nil
	}
	return log.Sync()
}

func Info(msg string, fields ...zap.Field)  { GetLogger().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { GetLogger().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { GetLogger().Error(msg, fields...) }

// 常用字段构造函数
var (
	String   = zap.String
	Int      = zap.Int
	Int64    = zap.Int64
	Err      = zap.Error
	Duration = zap.Duration
	Time     = zap.Time
)

// EmployeeID 操作员工
func EmployeeID(id int64) zap.Field { return zap.Int64("employee_id", id) }

// StayID 住宿
func StayID(id int64) zap.Field { return zap.Int64("stay_id", id) }

// RoomID 房间
func RoomID(id int64) zap.Field { return zap.Int64("room_id", id) }

// Module 业务模块
func Module(name string) zap.Field { return zap.String("module", name) }

// Action 状态迁移或房间动作名称
func Action(name string) zap.Field { return zap.String("action", name) }

func Path(path string) zap.Field { return zap.String("path", path) }

func IP(ip string) zap.Field { return zap.String("ip", ip) }

// Since 自 start 起的耗时
func Since(start time.Time) zap.Field {
	return zap.Duration("elapsed", time.Since(start))
}
