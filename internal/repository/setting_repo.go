package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
)

// SettingRepository 酒店设置仓储（单行）
type SettingRepository struct {
	db *gorm.DB
}

// NewSettingRepository 创建设置仓储
func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Get 获取设置行
func (r *SettingRepository) Get(ctx context.Context) (*models.Setting, error) {
	var s models.Setting
	err := r.db.WithContext(ctx).First(&s, models.SettingsRowID).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Save 保存设置行
func (r *SettingRepository) Save(ctx context.Context, s *models.Setting) error {
	s.ID = models.SettingsRowID
	return r.db.WithContext(ctx).Save(s).Error
}
