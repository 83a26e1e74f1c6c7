package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
)

// AccommodationTypeRepository 住宿类型仓储
type AccommodationTypeRepository struct {
	db *gorm.DB
}

// NewAccommodationTypeRepository 创建住宿类型仓储
func NewAccommodationTypeRepository(db *gorm.DB) *AccommodationTypeRepository {
	return &AccommodationTypeRepository{db: db}
}

// Create 创建住宿类型
func (r *AccommodationTypeRepository) Create(ctx context.Context, t *models.AccommodationType) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// GetByID 根据 ID 获取住宿类型
func (r *AccommodationTypeRepository) GetByID(ctx context.Context, id int64) (*models.AccommodationType, error) {
	var t models.AccommodationType
	err := r.db.WithContext(ctx).Preload("Status").First(&t, id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ExistsByName 检查名称是否存在
func (r *AccommodationTypeRepository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.AccommodationType{}).Where("name = ?", name)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// UpdateFields 更新指定字段
func (r *AccommodationTypeRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.AccommodationType{}).Where("id = ?", id).Updates(fields).Error
}

// UpdateStatusVersioned 带版本号更新状态，返回是否命中
func (r *AccommodationTypeRepository) UpdateStatusVersioned(ctx context.Context, id, version, statusID int64, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.AccommodationType{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"status_id":   statusID,
			"status_date": at,
			"version":     gorm.Expr("version + 1"),
		})
	return result.RowsAffected == 1, result.Error
}

// List 获取住宿类型列表
func (r *AccommodationTypeRepository) List(ctx context.Context, onlyActive bool) ([]*models.AccommodationType, error) {
	var types []*models.AccommodationType
	query := r.db.WithContext(ctx).Preload("Status")
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("name ASC").Find(&types).Error
	return types, err
}
