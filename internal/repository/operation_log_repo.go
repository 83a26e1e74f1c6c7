package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
)

// OperationLogFilter 审计日志筛选条件，零值字段不参与筛选
type OperationLogFilter struct {
	EmployeeID int64
	Module     string
	Action     string
	TargetType string
	TargetID   int64
	From       *time.Time
	To         *time.Time
}

func (f *OperationLogFilter) apply(q *gorm.DB) *gorm.DB {
	if f.EmployeeID > 0 {
		q = q.Where("employee_id = ?", f.EmployeeID)
	}
	if f.Module != "" {
		q = q.Where("module = ?", f.Module)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.TargetType != "" {
		q = q.Where("target_type = ?", f.TargetType)
	}
	if f.TargetID > 0 {
		q = q.Where("target_id = ?", f.TargetID)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at < ?", *f.To)
	}
	return q
}

// OperationLogRepository 审计日志，只追加，按保留期清理
type OperationLogRepository struct {
	db *gorm.DB
}

func NewOperationLogRepository(db *gorm.DB) *OperationLogRepository {
	return &OperationLogRepository{db: db}
}

// Create 追加一条审计记录
func (r *OperationLogRepository) Create(ctx context.Context, log *models.OperationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// List 按筛选条件分页，最新在前
func (r *OperationLogRepository) List(ctx context.Context, filter OperationLogFilter, offset, limit int) ([]*models.OperationLog, int64, error) {
	q := filter.apply(r.db.WithContext(ctx).Model(&models.OperationLog{}))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var logs []*models.OperationLog
	err := q.Preload("Employee").Order("id DESC").Offset(offset).Limit(limit).Find(&logs).Error
	return logs, total, err
}

// ListByTarget 某个对象的全部变更记录，按时间先后
func (r *OperationLogRepository) ListByTarget(ctx context.Context, targetType string, targetID int64) ([]*models.OperationLog, error) {
	var logs []*models.OperationLog
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("id ASC").
		Find(&logs).Error
	return logs, err
}

// DeleteBefore 清理保留期之前的记录
func (r *OperationLogRepository) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", before).Delete(&models.OperationLog{})
	return res.RowsAffected, res.Error
}
