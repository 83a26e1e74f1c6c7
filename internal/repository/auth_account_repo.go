package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
)

// AuthAccountRepository 登录账号仓储
type AuthAccountRepository struct {
	db *gorm.DB
}

// NewAuthAccountRepository 创建登录账号仓储
func NewAuthAccountRepository(db *gorm.DB) *AuthAccountRepository {
	return &AuthAccountRepository{db: db}
}

// Create 创建账号
func (r *AuthAccountRepository) Create(ctx context.Context, a *models.AuthAccount) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// GetByEmail 根据邮箱获取账号
func (r *AuthAccountRepository) GetByEmail(ctx context.Context, email string) (*models.AuthAccount, error) {
	var a models.AuthAccount
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByAuthID 根据账号标识获取账号
func (r *AuthAccountRepository) GetByAuthID(ctx context.Context, authID string) (*models.AuthAccount, error) {
	var a models.AuthAccount
	err := r.db.WithContext(ctx).Where("auth_id = ?", authID).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ExistsByEmail 检查邮箱是否已注册
func (r *AuthAccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AuthAccount{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

// UpdateLastLogin 更新最后登录信息
func (r *AuthAccountRepository) UpdateLastLogin(ctx context.Context, id int64, ip string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&models.AuthAccount{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_login_at": now,
			"last_login_ip": ip,
		}).Error
}

// UpdatePassword 更新密码哈希
func (r *AuthAccountRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return r.db.WithContext(ctx).Model(&models.AuthAccount{}).
		Where("id = ?", id).
		Update("password_hash", hash).Error
}
