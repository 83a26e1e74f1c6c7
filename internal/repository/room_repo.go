package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
)

// RoomRepository 房间仓储
type RoomRepository struct {
	db *gorm.DB
}

// NewRoomRepository 创建房间仓储
func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// Create 创建房间（连同分档价格）
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

// GetByID 根据 ID 获取房间
func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).First(&room, id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// GetByIDWithDetails 根据 ID 获取房间（包含类型、房态和分档价格）
func (r *RoomRepository) GetByIDWithDetails(ctx context.Context, id int64) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).
		Preload("AccommodationType").
		Preload("Status").
		Preload("Rates", func(db *gorm.DB) *gorm.DB {
			return db.Order("person_count ASC")
		}).
		First(&room, id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// ExistsByNumber 检查房间号是否存在
func (r *RoomRepository) ExistsByNumber(ctx context.Context, number string, excludeID int64) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Room{}).Where("number = ?", number)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// UpdateFields 更新指定字段
func (r *RoomRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Room{}).Where("id = ?", id).Updates(fields).Error
}

// UpdateStatusVersioned 带版本号更新房态，返回是否命中
func (r *RoomRepository) UpdateStatusVersioned(ctx context.Context, id, version, statusID int64, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Room{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"status_id":   statusID,
			"status_date": at,
			"version":     gorm.Expr("version + 1"),
		})
	return result.RowsAffected == 1, result.Error
}

// ReplaceRates 整体替换房间的分档价格
func (r *RoomRepository) ReplaceRates(ctx context.Context, roomID int64, rates []models.RoomRate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", roomID).Delete(&models.RoomRate{}).Error; err != nil {
			return err
		}
		if len(rates) == 0 {
			return nil
		}
		for i := range rates {
			rates[i].ID = 0
			rates[i].RoomID = roomID
		}
		return tx.Create(&rates).Error
	})
}

// List 获取房间列表
func (r *RoomRepository) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Room, int64, error) {
	var rooms []*models.Room
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Room{})

	// 应用过滤条件
	if typeID, ok := filters["accommodation_type_id"].(int64); ok && typeID > 0 {
		query = query.Where("accommodation_type_id = ?", typeID)
	}
	if statusID, ok := filters["status_id"].(int64); ok && statusID > 0 {
		query = query.Where("status_id = ?", statusID)
	}
	if isActive, ok := filters["is_active"].(bool); ok {
		query = query.Where("is_active = ?", isActive)
	}
	if keyword, ok := filters["keyword"].(string); ok && keyword != "" {
		query = query.Where("number LIKE ?", "%"+keyword+"%")
	}

	// 统计总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 查询列表
	if err := query.Preload("AccommodationType").Preload("Status").
		Order("number ASC").Offset(offset).Limit(limit).Find(&rooms).Error; err != nil {
		return nil, 0, err
	}

	return rooms, total, nil
}

// ListActive 获取所有启用的房间（日历使用）
func (r *RoomRepository) ListActive(ctx context.Context) ([]*models.Room, error) {
	var rooms []*models.Room
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Preload("Status").
		Order("number ASC").
		Find(&rooms).Error
	return rooms, err
}

// IDsByAccommodationType 获取住宿类型下的房间 ID
func (r *RoomRepository) IDsByAccommodationType(ctx context.Context, typeID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&models.Room{}).
		Where("accommodation_type_id = ?", typeID).
		Pluck("id", &ids).Error
	return ids, err
}

// CountByStatus 按房态统计启用的房间数量
func (r *RoomRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var results []struct {
		Name  string
		Count int64
	}

	err := r.db.WithContext(ctx).Model(&models.Room{}).
		Select("room_statuses.name AS name, count(*) AS count").
		Joins("JOIN room_statuses ON room_statuses.id = rooms.status_id").
		Where("rooms.is_active = ?", true).
		Group("room_statuses.name").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	stats := make(map[string]int64)
	for _, r := range results {
		stats[r.Name] = r.Count
	}
	return stats, nil
}

// ListInStatusSince 获取在某房态停留超过指定时间的房间
func (r *RoomRepository) ListInStatusSince(ctx context.Context, statusID int64, before time.Time) ([]*models.Room, error) {
	var rooms []*models.Room
	err := r.db.WithContext(ctx).
		Where("status_id = ? AND status_date < ? AND is_active = ?", statusID, before, true).
		Order("status_date ASC").
		Find(&rooms).Error
	return rooms, err
}
