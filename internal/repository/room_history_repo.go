package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
)

// RoomHistoryRepository 房态日志仓储，只追加
type RoomHistoryRepository struct {
	db *gorm.DB
}

// NewRoomHistoryRepository 创建房态日志仓储
func NewRoomHistoryRepository(db *gorm.DB) *RoomHistoryRepository {
	return &RoomHistoryRepository{db: db}
}

// HistoryFilter 房态日志过滤条件
type HistoryFilter struct {
	RoomID              *int64
	AccommodationTypeID *int64
	StayID              *int64
	Action              string
	From                *time.Time
	To                  *time.Time
}

// Create 追加一条房态日志
func (r *RoomHistoryRepository) Create(ctx context.Context, h *models.RoomHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *RoomHistoryRepository) filtered(ctx context.Context, f HistoryFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.RoomHistory{})
	if f.RoomID != nil {
		query = query.Where("room_id = ?", *f.RoomID)
	}
	if f.AccommodationTypeID != nil {
		query = query.Where("accommodation_type_id = ?", *f.AccommodationTypeID)
	}
	if f.StayID != nil {
		query = query.Where("stay_id = ?", *f.StayID)
	}
	if f.Action != "" {
		query = query.Where("action = ?", f.Action)
	}
	if f.From != nil {
		query = query.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("created_at < ?", *f.To)
	}
	return query
}

// List 分页获取房态日志，最新在前
func (r *RoomHistoryRepository) List(ctx context.Context, f HistoryFilter, offset, limit int) ([]*models.RoomHistory, int64, error) {
	var rows []*models.RoomHistory
	var total int64

	query := r.filtered(ctx, f)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Room").
		Preload("AccommodationType").
		Preload("PreviousStatus").
		Preload("NewStatus").
		Preload("Employee").
		Order("id DESC").Offset(offset).Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// FindAll 按条件获取全部日志（导出使用），按时间正序
func (r *RoomHistoryRepository) FindAll(ctx context.Context, f HistoryFilter) ([]*models.RoomHistory, error) {
	var rows []*models.RoomHistory
	err := r.filtered(ctx, f).
		Preload("Room").
		Preload("AccommodationType").
		Preload("PreviousStatus").
		Preload("NewStatus").
		Preload("Employee").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// Count 按条件统计日志条数
func (r *RoomHistoryRepository) Count(ctx context.Context, f HistoryFilter) (int64, error) {
	var count int64
	err := r.filtered(ctx, f).Count(&count).Error
	return count, err
}
