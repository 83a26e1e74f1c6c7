package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
)

// RoomStatusRepository 房态目录仓储
type RoomStatusRepository struct {
	db *gorm.DB
}

// NewRoomStatusRepository 创建房态目录仓储
func NewRoomStatusRepository(db *gorm.DB) *RoomStatusRepository {
	return &RoomStatusRepository{db: db}
}

// GetByName 根据名称获取房态
func (r *RoomStatusRepository) GetByName(ctx context.Context, name string) (*models.RoomStatus, error) {
	var status models.RoomStatus
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&status).Error
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// GetByID 根据 ID 获取房态
func (r *RoomStatusRepository) GetByID(ctx context.Context, id int64) (*models.RoomStatus, error) {
	var status models.RoomStatus
	err := r.db.WithContext(ctx).First(&status, id).Error
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// List 获取全部房态
func (r *RoomStatusRepository) List(ctx context.Context) ([]*models.RoomStatus, error) {
	var statuses []*models.RoomStatus
	err := r.db.WithContext(ctx).Order("id ASC").Find(&statuses).Error
	return statuses, err
}
