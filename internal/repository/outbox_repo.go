package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
)

// OutboxRepository 事件外发仓储
type OutboxRepository struct {
	db *gorm.DB
}

// NewOutboxRepository 创建事件外发仓储
func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

// Create 写入一条待投递事件
func (r *OutboxRepository) Create(ctx context.Context, e *models.OutboxEvent) error {
	if e.Status == "" {
		e.Status = models.OutboxStatusPending
	}
	if e.NextAttemptAt.IsZero() {
		e.NextAttemptAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(e).Error
}

// ListDue 获取到期的待投递事件，按写入顺序
func (r *OutboxRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.OutboxEvent, error) {
	var events []*models.OutboxEvent
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", models.OutboxStatusPending, now).
		Order("id ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

// MarkSent 标记已投递
func (r *OutboxRepository) MarkSent(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     models.OutboxStatusSent,
			"sent_at":    at,
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": nil,
		}).Error
}

// MarkRetry 记录失败并安排下次重试
func (r *OutboxRepository) MarkRetry(ctx context.Context, id int64, next time.Time, errMsg string) error {
	return r.db.WithContext(ctx).Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts":        gorm.Expr("attempts + 1"),
			"next_attempt_at": next,
			"last_error":      errMsg,
		}).Error
}

// MarkFailed 重试耗尽，标记失败
func (r *OutboxRepository) MarkFailed(ctx context.Context, id int64, errMsg string) error {
	return r.db.WithContext(ctx).Model(&models.OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     models.OutboxStatusFailed,
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": errMsg,
		}).Error
}

// CountByStatus 按状态统计事件数量
func (r *OutboxRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OutboxEvent{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
