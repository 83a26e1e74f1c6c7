package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/database"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
)

// orderNumberLockKey 订单号分配使用的事务级咨询锁
const orderNumberLockKey = 740_201

// StayRepository 住宿仓储
type StayRepository struct {
	db *gorm.DB
}

// NewStayRepository 创建住宿仓储
func NewStayRepository(db *gorm.DB) *StayRepository {
	return &StayRepository{db: db}
}

// StayFilter 住宿过滤条件
type StayFilter struct {
	Status              string
	GuestID             *int64
	RoomID              *int64
	AccommodationTypeID *int64
	OnlyActive          bool
	From                *time.Time // 与 [From, To) 有交集
	To                  *time.Time
	Keyword             string // 客人姓名或证件号
}

// OverlapQuery 冲突查询参数
type OverlapQuery struct {
	CheckIn             time.Time
	CheckOut            time.Time
	AccommodationTypeID *int64
	RoomIDs             []int64
	ExcludeStayID       int64
}

// Create 创建住宿
func (r *StayRepository) Create(ctx context.Context, stay *models.Stay) error {
	return r.db.WithContext(ctx).Create(stay).Error
}

// NextOrderNumber 下一个订单号，需在事务内调用
func (r *StayRepository) NextOrderNumber(ctx context.Context) (int64, error) {
	// PostgreSQL 下串行化取号，锁随事务释放
	if database.IsPostgres(r.db) {
		if err := r.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?)", orderNumberLockKey).Error; err != nil {
			return 0, err
		}
	}

	var result struct {
		Next int64
	}
	err := r.db.WithContext(ctx).Model(&models.Stay{}).
		Select("COALESCE(MAX(order_number), 0) + 1 AS next").
		Scan(&result).Error
	return result.Next, err
}

// GetByID 根据 ID 获取住宿
func (r *StayRepository) GetByID(ctx context.Context, id int64) (*models.Stay, error) {
	var stay models.Stay
	err := r.db.WithContext(ctx).First(&stay, id).Error
	if err != nil {
		return nil, err
	}
	return &stay, nil
}

// GetByIDWithDetails 根据 ID 获取住宿（包含客人、房间、类型和付款）
func (r *StayRepository) GetByIDWithDetails(ctx context.Context, id int64) (*models.Stay, error) {
	var stay models.Stay
	err := r.db.WithContext(ctx).
		Preload("Guest").
		Preload("Employee").
		Preload("Room").
		Preload("Room.AccommodationType").
		Preload("AccommodationType").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("paid_at ASC, id ASC")
		}).
		Preload("Payments.PaymentMethod").
		First(&stay, id).Error
	if err != nil {
		return nil, err
	}
	return &stay, nil
}

// GetByOrderNumber 根据订单号获取住宿
func (r *StayRepository) GetByOrderNumber(ctx context.Context, orderNumber int64) (*models.Stay, error) {
	var stay models.Stay
	err := r.db.WithContext(ctx).
		Where("order_number = ?", orderNumber).
		Preload("Guest").
		Preload("Room").
		Preload("AccommodationType").
		First(&stay).Error
	if err != nil {
		return nil, err
	}
	return &stay, nil
}

// UpdateFields 更新指定字段
func (r *StayRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Stay{}).Where("id = ?", id).Updates(fields).Error
}

// TransitionStatus 仅当住宿仍处于 from 状态时更新，返回是否更新成功
func (r *StayRepository) TransitionStatus(ctx context.Context, id int64, from string, fields map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Stay{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindOverlapping 查询与 [CheckIn, CheckOut) 相交的有效住宿
func (r *StayRepository) FindOverlapping(ctx context.Context, q OverlapQuery) ([]*models.Stay, error) {
	var stays []*models.Stay

	query := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("check_in_date < ? AND check_out_date > ?", q.CheckOut, q.CheckIn)

	switch {
	case q.AccommodationTypeID != nil && len(q.RoomIDs) > 0:
		query = query.Where("(accommodation_type_id = ? OR room_id IN ?)", *q.AccommodationTypeID, q.RoomIDs)
	case q.AccommodationTypeID != nil:
		query = query.Where("accommodation_type_id = ?", *q.AccommodationTypeID)
	case len(q.RoomIDs) > 0:
		query = query.Where("room_id IN ?", q.RoomIDs)
	default:
		return stays, nil
	}
	if q.ExcludeStayID > 0 {
		query = query.Where("id <> ?", q.ExcludeStayID)
	}

	err := query.
		Preload("Guest").
		Preload("Room").
		Preload("AccommodationType").
		Order("check_in_date ASC").
		Find(&stays).Error
	return stays, err
}

// HasActiveOnRoom 房间是否有进行中的入住
func (r *StayRepository) HasActiveOnRoom(ctx context.Context, roomID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Stay{}).
		Where("room_id = ? AND status = ?", roomID, models.StayStatusActive).
		Count(&count).Error
	return count > 0, err
}

// CountOtherHolders 统计除指定住宿外仍占用目标的预订或入住
func (r *StayRepository) CountOtherHolders(ctx context.Context, roomID, typeID *int64, excludeStayID int64) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Stay{}).
		Where("is_active = ?", true).
		Where("status IN ?", []string{models.StayStatusReserved, models.StayStatusActive}).
		Where("id <> ?", excludeStayID)
	if roomID != nil {
		query = query.Where("room_id = ?", *roomID)
	} else if typeID != nil {
		query = query.Where("accommodation_type_id = ?", *typeID)
	}
	err := query.Count(&count).Error
	return count, err
}

// CountBlockingHolders 统计阻止直接入住的住宿：在住的，或日期与 [checkIn, checkOut) 相交的预订
func (r *StayRepository) CountBlockingHolders(ctx context.Context, roomID, typeID *int64, checkIn, checkOut time.Time) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Stay{}).
		Where("is_active = ?", true).
		Where("status = ? OR (status = ? AND check_in_date < ? AND check_out_date > ?)",
			models.StayStatusActive, models.StayStatusReserved, checkOut, checkIn)
	if roomID != nil {
		query = query.Where("room_id = ?", *roomID)
	} else if typeID != nil {
		query = query.Where("accommodation_type_id = ?", *typeID)
	}
	err := query.Count(&count).Error
	return count, err
}

// ListInRange 获取与 [from, to) 相交的住宿（日历使用，不含取消）
func (r *StayRepository) ListInRange(ctx context.Context, from, to time.Time) ([]*models.Stay, error) {
	var stays []*models.Stay
	err := r.db.WithContext(ctx).
		Where("status IN ?", []string{models.StayStatusReserved, models.StayStatusActive, models.StayStatusCompleted}).
		Where("check_in_date < ? AND check_out_date > ?", to, from).
		Preload("Guest").
		Order("check_in_date ASC").
		Find(&stays).Error
	return stays, err
}

// List 获取住宿列表
func (r *StayRepository) List(ctx context.Context, f StayFilter, offset, limit int) ([]*models.Stay, int64, error) {
	var stays []*models.Stay
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Stay{})
	if f.Status != "" {
		query = query.Where("stays.status = ?", f.Status)
	}
	if f.GuestID != nil {
		query = query.Where("stays.guest_id = ?", *f.GuestID)
	}
	if f.RoomID != nil {
		query = query.Where("stays.room_id = ?", *f.RoomID)
	}
	if f.AccommodationTypeID != nil {
		query = query.Where("stays.accommodation_type_id = ?", *f.AccommodationTypeID)
	}
	if f.OnlyActive {
		query = query.Where("stays.is_active = ?", true)
	}
	if f.From != nil {
		query = query.Where("stays.check_out_date > ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("stays.check_in_date < ?", *f.To)
	}
	if f.Keyword != "" {
		like := "%" + f.Keyword + "%"
		query = query.Joins("JOIN guests ON guests.id = stays.guest_id").
			Where("guests.doc_number LIKE ? OR guests.first_name LIKE ? OR guests.last_name LIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Guest").
		Preload("Room").
		Preload("AccommodationType").
		Order("stays.check_in_date DESC, stays.id DESC").
		Offset(offset).Limit(limit).
		Find(&stays).Error
	if err != nil {
		return nil, 0, err
	}
	return stays, total, nil
}

// CountByStatus 统计区间内入住的住宿数量
func (r *StayRepository) CountByStatus(ctx context.Context, from, to time.Time) (map[string]int64, error) {
	var results []struct {
		Status string
		Count  int64
	}

	err := r.db.WithContext(ctx).Model(&models.Stay{}).
		Select("status, count(*) AS count").
		Where("check_in_date >= ? AND check_in_date < ?", from, to).
		Group("status").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	stats := make(map[string]int64)
	for _, r := range results {
		stats[r.Status] = r.Count
	}
	return stats, nil
}

// SumNights 统计区间内入住且未取消的间夜数
func (r *StayRepository) SumNights(ctx context.Context, from, to time.Time) (int64, error) {
	var result struct {
		Total int64
	}
	err := r.db.WithContext(ctx).Model(&models.Stay{}).
		Select("COALESCE(SUM(nights), 0) AS total").
		Where("check_in_date >= ? AND check_in_date < ?", from, to).
		Where("status <> ?", models.StayStatusCancelled).
		Scan(&result).Error
	return result.Total, err
}

// CreatePriceOverride 记录价格折扣
func (r *StayRepository) CreatePriceOverride(ctx context.Context, o *models.PriceOverride) error {
	return r.db.WithContext(ctx).Create(o).Error
}

// ListPriceOverrides 获取住宿的折扣记录
func (r *StayRepository) ListPriceOverrides(ctx context.Context, stayID int64) ([]*models.PriceOverride, error) {
	var rows []*models.PriceOverride
	err := r.db.WithContext(ctx).
		Where("stay_id = ?", stayID).
		Preload("Authorizer").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}
