// Package repository 基于 GORM 的数据访问层，事务由服务层传入 tx 构造
package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
)

// RoleRepository 固定的四个员工角色，由迁移种子写入
type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// GetByName 按角色名查找，如 Admin、Recepcionista
func (r *RoleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	role := &models.Role{}
	if err := r.db.WithContext(ctx).Where("name = ?", name).Take(role).Error; err != nil {
		return nil, err
	}
	return role, nil
}

// ListAll 全部角色
func (r *RoleRepository) ListAll(ctx context.Context) ([]*models.Role, error) {
	var roles []*models.Role
	err := r.db.WithContext(ctx).Order("id").Find(&roles).Error
	return roles, err
}
