package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
)

// EmployeeRepository 员工仓储
type EmployeeRepository struct {
	db *gorm.DB
}

// NewEmployeeRepository 创建员工仓储
func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create 创建员工
func (r *EmployeeRepository) Create(ctx context.Context, e *models.Employee) error {
	return r.db.WithContext(ctx).Create(e).Error
}

// GetByID 根据 ID 获取员工（包含角色）
func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*models.Employee, error) {
	var e models.Employee
	err := r.db.WithContext(ctx).Preload("Role").First(&e, id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetByAuthID 根据登录账号获取员工（包含角色）
func (r *EmployeeRepository) GetByAuthID(ctx context.Context, authID string) (*models.Employee, error) {
	var e models.Employee
	err := r.db.WithContext(ctx).Preload("Role").Where("auth_id = ?", authID).First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetUnlinkedByEmail 根据邮箱获取尚未绑定账号的员工档案
func (r *EmployeeRepository) GetUnlinkedByEmail(ctx context.Context, email string) (*models.Employee, error) {
	var e models.Employee
	err := r.db.WithContext(ctx).Preload("Role").
		Where("email = ? AND auth_id IS NULL", email).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateFields 更新指定字段
func (r *EmployeeRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Employee{}).Where("id = ?", id).Updates(fields).Error
}

// List 获取员工列表
func (r *EmployeeRepository) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Employee, int64, error) {
	var employees []*models.Employee
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Employee{})

	// 应用过滤条件
	if roleID, ok := filters["role_id"].(int64); ok && roleID > 0 {
		query = query.Where("role_id = ?", roleID)
	}
	if isActive, ok := filters["is_active"].(bool); ok {
		query = query.Where("is_active = ?", isActive)
	}
	if keyword, ok := filters["keyword"].(string); ok && keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("first_name LIKE ? OR last_name LIKE ? OR email LIKE ?", like, like, like)
	}

	// 统计总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 查询列表
	if err := query.Preload("Role").Order("id ASC").Offset(offset).Limit(limit).Find(&employees).Error; err != nil {
		return nil, 0, err
	}

	return employees, total, nil
}

// CountByRole 统计某角色的启用员工数
func (r *EmployeeRepository) CountByRole(ctx context.Context, roleID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Employee{}).
		Where("role_id = ? AND is_active = ?", roleID, true).
		Count(&count).Error
	return count, err
}
