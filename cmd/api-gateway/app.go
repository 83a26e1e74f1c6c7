package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/cache"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/config"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/jwt"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/service/auth"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/service/availability"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/service/employee"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/service/geo"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/service/guest"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/service/notify"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/service/payment"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/service/pricing"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/service/report"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/service/room"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/service/settings"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/service/stay"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/crypto"
	"github.com/dumeirei/hotel-frontdesk-backend/pkg/mailer"
	"github.com/dumeirei/hotel-frontdesk-backend/pkg/mqtt"
	"github.com/dumeirei/hotel-frontdesk-backend/pkg/oss"
	"github.com/dumeirei/hotel-frontdesk-backend/pkg/sms"
)

// app 进程内共享的服务实例
type app struct {
	cache      *cache.Cache
	jwtManager *jwt.Manager

	auth         *auth.Service
	employees    *employee.Service
	settings     *settings.Service
	pricing      *pricing.Service
	stays        *stay.Service
	payments     *payment.Service
	availability *availability.Service
	guests       *guest.Service
	rooms        *room.Service
	reports      *report.Service
	geography    *geo.Service
	dispatcher   *notify.Dispatcher

	mqttClient *mqtt.Client
}

// newApp 按配置组装外部通道和业务服务，未启用的通道保持为 nil
func newApp(cfg *config.Config, log *zap.Logger, db *gorm.DB, c *cache.Cache) (*app, error) {
	a := &app{cache: c}
	loc := cfg.Business.Location()

	a.jwtManager = jwt.NewManager(&jwt.Config{
		Secret:            cfg.JWT.Secret,
		AccessExpireTime:  cfg.JWT.AccessTokenDuration(),
		RefreshExpireTime: cfg.JWT.RefreshTokenDuration(),
		Issuer:            cfg.JWT.Issuer,
	})
	hasher := crypto.NewHasher(cfg.Crypto.BcryptCost)

	var store oss.Store
	if cfg.OSS.Enabled {
		s, err := oss.NewAliyunStore(&oss.AliyunConfig{
			Endpoint:        cfg.OSS.Endpoint,
			AccessKeyID:     cfg.OSS.AccessKeyID,
			AccessKeySecret: cfg.OSS.AccessKeySecret,
			BucketName:      cfg.OSS.Bucket,
			Domain:          cfg.OSS.CustomDomain,
			BasePath:        cfg.OSS.ReportDir,
		})
		if err != nil {
			return nil, fmt.Errorf("init oss: %w", err)
		}
		store = s
		log.Info("OSS report archive enabled", zap.String("bucket", cfg.OSS.Bucket))
	}

	a.settings = settings.NewService(db, c, time.Duration(cfg.Business.SettingsCacheTTL)*time.Second)
	a.pricing = pricing.NewService(db, a.settings)
	a.stays = stay.NewService(db, a.pricing, a.settings, loc)
	a.payments = payment.NewService(db)
	a.availability = availability.NewService(db)
	a.guests = guest.NewService(db)
	a.rooms = room.NewService(db)
	a.reports = report.NewService(db, a.settings, store, loc)
	a.auth = auth.NewService(db, a.jwtManager, hasher, cfg.Business.AllowAdminSignup)
	a.employees = employee.NewService(db, hasher)
	a.geography = geo.NewService(&cfg.Geography, c)

	channels := notify.Channels{Receipts: a.reports}

	if cfg.MQTT.Enabled {
		a.mqttClient = mqtt.NewClient(&mqtt.Config{
			Broker:         cfg.MQTT.Broker,
			Port:           cfg.MQTT.Port,
			ClientID:       cfg.MQTT.ClientID,
			Username:       cfg.MQTT.Username,
			Password:       cfg.MQTT.Password,
			QoS:            cfg.MQTT.QoS,
			Retained:       cfg.MQTT.Retained,
			KeepAlive:      cfg.MQTT.KeepAlive,
			ConnectTimeout: cfg.MQTT.ConnectTimeout,
		}, log)
		// 连接失败时事件留在 outbox 中等待重试
		if err := a.mqttClient.Connect(); err != nil {
			log.Warn("MQTT connect failed", zap.Error(err))
		}
		channels.Publisher = a.mqttClient
	}

	if cfg.SMS.Enabled {
		sender, err := sms.NewAliyunSender(&sms.Config{
			AccessKeyID:     cfg.SMS.AccessKeyID,
			AccessKeySecret: cfg.SMS.AccessKeySecret,
			SignName:        cfg.SMS.SignName,
			Endpoint:        cfg.SMS.Endpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("init sms: %w", err)
		}
		channels.SMS = sender
	}

	if cfg.SMTP.Enabled {
		channels.Mailer = mailer.NewSMTPMailer(mailer.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}

	a.dispatcher = notify.NewDispatcher(db, notify.Config{
		BatchSize:           cfg.Outbox.BatchSize,
		MaxAttempts:         cfg.Outbox.MaxAttempts,
		RetryBackoff:        cfg.Outbox.RetryBackoffDuration(),
		TopicPrefix:         cfg.MQTT.TopicPrefix,
		ReservationTemplate: cfg.SMS.ReservationTemplate,
		HotelName:           cfg.Business.HotelName,
	}, channels)

	return a, nil
}

// Close 释放外部连接
func (a *app) Close() {
	if a.mqttClient != nil {
		a.mqttClient.Disconnect()
	}
}
