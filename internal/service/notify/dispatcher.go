// Package notify 投递出站事件：房态看板、预订短信和退房凭证邮件
package notify

import (
	"context"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/metrics"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/tracing"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/repository"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/service/report"
	"github.com/dumeirei/hotel-frontdesk-backend/pkg/mailer"
	"github.com/dumeirei/hotel-frontdesk-backend/pkg/mqtt"
	"github.com/dumeirei/hotel-frontdesk-backend/pkg/sms"
)

// 单次重试最长间隔
const maxBackoff = time.Hour

// ReceiptSource 生成住宿凭证
type ReceiptSource interface {
	Receipt(ctx context.Context, stayID int64) (*report.Receipt, error)
}

// Config 投递配置
type Config struct {
	BatchSize           int
	MaxAttempts         int
	RetryBackoff        time.Duration
	TopicPrefix         string
	ReservationTemplate string
	HotelName           string
}

// Channels 投递渠道，为空的渠道直接跳过
type Channels struct {
	Publisher mqtt.Publisher
	SMS       sms.Sender
	Mailer    mailer.Sender
	Receipts  ReceiptSource
}

// Dispatcher 出站事件投递器
type Dispatcher struct {
	repo     *repository.OutboxRepository
	cfg      Config
	channels Channels
	handlers map[string]handlerFunc
	now      func() time.Time
}

// handlerFunc 返回 skipped=true 表示渠道未启用或无收件人
type handlerFunc func(ctx context.Context, e *models.OutboxEvent) (skipped bool, err error)

// Result 一轮投递结果
type Result struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Retried int `json:"retried"`
	Failed  int `json:"failed"`
}

// NewDispatcher 创建投递器
func NewDispatcher(db *gorm.DB, cfg Config, channels Channels) *Dispatcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 30 * time.Second
	}
	d := &Dispatcher{
		repo:     repository.NewOutboxRepository(db),
		cfg:      cfg,
		channels: channels,
		now:      time.Now,
	}
	d.handlers = map[string]handlerFunc{
		models.TopicRoomStatusChanged: d.publishRoomStatus,
		models.TopicStayReserved:      d.sendReservationSMS,
		models.TopicStayCompleted:     d.mailReceipt,
	}
	return d
}

// DispatchPending 投递一批到期事件
func (d *Dispatcher) DispatchPending(ctx context.Context) (*Result, error) {
	ctx, span := tracing.GetTracer().StartSpan(ctx, "outbox.dispatch")
	defer span.End()

	now := d.now()
	events, err := d.repo.ListDue(ctx, now, d.cfg.BatchSize)
	if err != nil {
		tracing.SetError(ctx, err)
		return nil, err
	}

	result := &Result{}
	for _, e := range events {
		if ctx.Err() != nil {
			break
		}
		d.dispatch(ctx, e, result)
	}
	if len(events) > 0 {
		logger.Info("出站事件投递完成",
			logger.Module("notify"),
			logger.Int("sent", result.Sent),
			logger.Int("skipped", result.Skipped),
			logger.Int("retried", result.Retried),
			logger.Int("failed", result.Failed),
		)
	}
	return result, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, e *models.OutboxEvent, result *Result) {
	ctx, span := tracing.GetTracer().StartSpan(ctx, "outbox.event", tracing.WithOutboxKind(e.Topic))
	defer span.End()

	handler, ok := d.handlers[e.Topic]
	if !ok {
		d.markFailed(ctx, e, fmt.Sprintf("unknown topic %q", e.Topic), result)
		return
	}

	skipped, err := handler(ctx, e)
	tracing.SetError(ctx, err)
	if err == nil {
		if markErr := d.repo.MarkSent(ctx, e.ID, d.now()); markErr != nil {
			logger.Error("标记事件已投递失败", logger.Int64("event_id", e.ID), logger.Err(markErr))
			return
		}
		if skipped {
			result.Skipped++
			metrics.GetMetrics().RecordOutbox(e.Topic, "skipped")
		} else {
			result.Sent++
			metrics.GetMetrics().RecordOutbox(e.Topic, "sent")
		}
		return
	}

	// 重试次数用尽
	if e.Attempts+1 >= d.cfg.MaxAttempts {
		d.markFailed(ctx, e, err.Error(), result)
		return
	}
	next := d.now().Add(d.Backoff(e.Attempts))
	if markErr := d.repo.MarkRetry(ctx, e.ID, next, err.Error()); markErr != nil {
		logger.Error("记录事件重试失败", logger.Int64("event_id", e.ID), logger.Err(markErr))
		return
	}
	result.Retried++
	metrics.GetMetrics().RecordOutbox(e.Topic, "retry")
	logger.Warn("出站事件投递失败，稍后重试",
		logger.Module("notify"),
		logger.String("topic", e.Topic),
		logger.Int64("event_id", e.ID),
		logger.Int("attempt", e.Attempts+1),
		logger.Time("next_attempt_at", next),
		logger.Err(err),
	)
}

func (d *Dispatcher) markFailed(ctx context.Context, e *models.OutboxEvent, msg string, result *Result) {
	if err := d.repo.MarkFailed(ctx, e.ID, msg); err != nil {
		logger.Error("标记事件失败状态出错", logger.Int64("event_id", e.ID), logger.Err(err))
		return
	}
	result.Failed++
	metrics.GetMetrics().RecordOutbox(e.Topic, "failed")
	logger.Error("出站事件投递失败",
		logger.Module("notify"),
		logger.String("topic", e.Topic),
		logger.Int64("event_id", e.ID),
		logger.String("error", msg),
	)
}

// Backoff 第 attempts 次失败后的等待时间，指数增长并封顶
func (d *Dispatcher) Backoff(attempts int) time.Duration {
	wait := float64(d.cfg.RetryBackoff) * math.Pow(2, float64(attempts))
	if wait > float64(maxBackoff) {
		return maxBackoff
	}
	return time.Duration(wait)
}
