package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
)

// PaymentRepository 收款流水仓储
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建收款流水仓储
func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// PaymentFilter 收款过滤条件
type PaymentFilter struct {
	StayID          *int64
	PaymentMethodID *int64
	EmployeeID      *int64
	PaymentType     string
	From            *time.Time
	To              *time.Time
}

// AmountGroup 分组金额
type AmountGroup struct {
	Key    string          `gorm:"column:group_key"`
	Amount decimal.Decimal `gorm:"column:amount"`
	Count  int64           `gorm:"column:count"`
}

// Create 追加收款
func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// GetByID 根据 ID 获取收款
func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).Preload("PaymentMethod").First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateFields 更新指定字段（仅管理员更正使用）
func (r *PaymentRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Payment{}).Where("id = ?", id).Updates(fields).Error
}

// SumByStay 住宿的收款合计
func (r *PaymentRepository) SumByStay(ctx context.Context, stayID int64) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("stay_id = ?", stayID).
		Scan(&result).Error
	return result.Total, err
}

// ListByStay 住宿的全部收款，按时间正序
func (r *PaymentRepository) ListByStay(ctx context.Context, stayID int64) ([]*models.Payment, error) {
	var payments []*models.Payment
	err := r.db.WithContext(ctx).
		Where("stay_id = ?", stayID).
		Preload("PaymentMethod").
		Preload("Employee").
		Order("paid_at ASC, id ASC").
		Find(&payments).Error
	return payments, err
}

func (r *PaymentRepository) filtered(ctx context.Context, f PaymentFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Payment{})
	if f.StayID != nil {
		query = query.Where("payments.stay_id = ?", *f.StayID)
	}
	if f.PaymentMethodID != nil {
		query = query.Where("payments.payment_method_id = ?", *f.PaymentMethodID)
	}
	if f.EmployeeID != nil {
		query = query.Where("payments.employee_id = ?", *f.EmployeeID)
	}
	if f.PaymentType != "" {
		query = query.Where("payments.payment_type = ?", f.PaymentType)
	}
	if f.From != nil {
		query = query.Where("payments.paid_at >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("payments.paid_at < ?", *f.To)
	}
	return query
}

// List 分页获取收款
func (r *PaymentRepository) List(ctx context.Context, f PaymentFilter, offset, limit int) ([]*models.Payment, int64, error) {
	var payments []*models.Payment
	var total int64

	query := r.filtered(ctx, f)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("PaymentMethod").
		Preload("Employee").
		Preload("Stay").
		Preload("Stay.Guest").
		Order("payments.paid_at DESC, payments.id DESC").
		Offset(offset).Limit(limit).
		Find(&payments).Error
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// FindAll 按条件获取全部收款（导出使用）
func (r *PaymentRepository) FindAll(ctx context.Context, f PaymentFilter) ([]*models.Payment, error) {
	var payments []*models.Payment
	err := r.filtered(ctx, f).
		Preload("PaymentMethod").
		Preload("Employee").
		Preload("Stay").
		Preload("Stay.Guest").
		Preload("Stay.Room").
		Order("payments.paid_at ASC, payments.id ASC").
		Find(&payments).Error
	return payments, err
}

// SumAmount 区间收款合计
func (r *PaymentRepository) SumAmount(ctx context.Context, f PaymentFilter) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := r.filtered(ctx, f).
		Select("COALESCE(SUM(payments.amount), 0) AS total").
		Scan(&result).Error
	return result.Total, err
}

// SumByMethod 按收款方式汇总
func (r *PaymentRepository) SumByMethod(ctx context.Context, f PaymentFilter) ([]AmountGroup, error) {
	var results []AmountGroup
	err := r.filtered(ctx, f).
		Select("payment_methods.name AS group_key, COALESCE(SUM(payments.amount), 0) AS amount, count(*) AS count").
		Joins("JOIN payment_methods ON payment_methods.id = payments.payment_method_id").
		Group("payment_methods.name").
		Order("payment_methods.name ASC").
		Scan(&results).Error
	return results, err
}

// SumByType 按收款类型汇总
func (r *PaymentRepository) SumByType(ctx context.Context, f PaymentFilter) ([]AmountGroup, error) {
	var results []AmountGroup
	err := r.filtered(ctx, f).
		Select("payments.payment_type AS group_key, COALESCE(SUM(payments.amount), 0) AS amount, count(*) AS count").
		Group("payments.payment_type").
		Order("payments.payment_type ASC").
		Scan(&results).Error
	return results, err
}

// PaymentMethodRepository 收款方式目录仓储
type PaymentMethodRepository struct {
	db *gorm.DB
}

// NewPaymentMethodRepository 创建收款方式仓储
func NewPaymentMethodRepository(db *gorm.DB) *PaymentMethodRepository {
	return &PaymentMethodRepository{db: db}
}

// GetByID 根据 ID 获取收款方式
func (r *PaymentMethodRepository) GetByID(ctx context.Context, id int64) (*models.PaymentMethod, error) {
	var m models.PaymentMethod
	err := r.db.WithContext(ctx).First(&m, id).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByName 根据名称获取收款方式
func (r *PaymentMethodRepository) GetByName(ctx context.Context, name string) (*models.PaymentMethod, error) {
	var m models.PaymentMethod
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// List 获取收款方式
func (r *PaymentMethodRepository) List(ctx context.Context, onlyActive bool) ([]*models.PaymentMethod, error) {
	var methods []*models.PaymentMethod
	query := r.db.WithContext(ctx)
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("id ASC").Find(&methods).Error
	return methods, err
}
