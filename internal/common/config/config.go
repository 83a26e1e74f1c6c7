// Package config 读取 YAML 配置，环境变量覆盖同名键（server.port 对应 SERVER_PORT）
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// 仅用于本地开发的默认签名密钥，release 模式下拒绝启动
const devJWTSecret = "change-this-secret-in-production"

// Config 应用配置结构
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Crypto    CryptoConfig    `mapstructure:"crypto"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Business  BusinessConfig  `mapstructure:"business"`
	Outbox    OutboxConfig    `mapstructure:"outbox"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	OSS       OSSConfig       `mapstructure:"oss"`
	SMS       SMSConfig       `mapstructure:"sms"`
	MQTT      MQTTConfig      `mapstructure:"mqtt"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Geography GeographyConfig `mapstructure:"geography"`
}

// Load 读取配置，path 为空时依次查找 ./configs/config.yaml 和 ./config.yaml
// 找不到配置文件时只使用默认值和环境变量
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Validate 检查启动前必须满足的组合，返回全部问题
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(slices.Contains([]string{"debug", "release", "test"}, c.Server.Mode), "server.mode %q must be debug, release or test", c.Server.Mode)
	check(slices.Contains([]string{"postgres", "sqlite"}, c.Database.Driver), "database.driver %q is not supported", c.Database.Driver)
	if c.IsRelease() {
		check(c.JWT.Secret != devJWTSecret && len(c.JWT.Secret) >= 32, "jwt.secret must be set to at least 32 characters in release mode")
		check(c.Database.Driver == "postgres", "release mode requires the postgres driver")
	}
	if _, err := time.LoadLocation(c.Business.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("business.timezone: %w", err))
	}
	check(c.Outbox.MaxAttempts >= 1, "outbox.max_attempts must be at least 1")
	check(c.Outbox.BatchSize >= 1, "outbox.batch_size must be at least 1")
	if c.SMS.Enabled {
		check(c.SMS.AccessKeyID != "" && c.SMS.AccessKeySecret != "" && c.SMS.SignName != "", "sms requires access_key_id, access_key_secret and sign_name")
	}
	if c.OSS.Enabled {
		check(c.OSS.Endpoint != "" && c.OSS.Bucket != "", "oss requires endpoint and bucket")
	}
	if c.SMTP.Enabled {
		check(c.SMTP.Host != "" && c.SMTP.From != "", "smtp requires host and from")
	}
	return errors.Join(errs...)
}

// IsDebug 是否为调试模式
func (c *Config) IsDebug() bool {
	return c.Server.Mode == "debug"
}

// IsRelease 是否为发布模式
func (c *Config) IsRelease() bool {
	return c.Server.Mode == "release"
}
