package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
)

// GuestRepository 客人仓储
type GuestRepository struct {
	db *gorm.DB
}

// NewGuestRepository 创建客人仓储
func NewGuestRepository(db *gorm.DB) *GuestRepository {
	return &GuestRepository{db: db}
}

// Create 创建客人
func (r *GuestRepository) Create(ctx context.Context, guest *models.Guest) error {
	return r.db.WithContext(ctx).Create(guest).Error
}

// GetByID 根据 ID 获取客人
func (r *GuestRepository) GetByID(ctx context.Context, id int64) (*models.Guest, error) {
	var guest models.Guest
	err := r.db.WithContext(ctx).First(&guest, id).Error
	if err != nil {
		return nil, err
	}
	return &guest, nil
}

// GetByDocNumber 根据证件号获取客人
func (r *GuestRepository) GetByDocNumber(ctx context.Context, docNumber string) (*models.Guest, error) {
	var guest models.Guest
	err := r.db.WithContext(ctx).Where("doc_number = ?", docNumber).First(&guest).Error
	if err != nil {
		return nil, err
	}
	return &guest, nil
}

// Update 保存客人
func (r *GuestRepository) Update(ctx context.Context, guest *models.Guest) error {
	return r.db.WithContext(ctx).Save(guest).Error
}

// List 获取客人列表
func (r *GuestRepository) List(ctx context.Context, keyword string, offset, limit int) ([]*models.Guest, int64, error) {
	var guests []*models.Guest
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Guest{})
	if keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("doc_number LIKE ? OR first_name LIKE ? OR last_name LIKE ? OR phone LIKE ?", like, like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&guests).Error; err != nil {
		return nil, 0, err
	}
	return guests, total, nil
}

// Count 客人总数
func (r *GuestRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Guest{}).Count(&count).Error
	return count, err
}
