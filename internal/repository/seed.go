package repository

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
)

// roomStatusColors 房态在看板上的颜色
var roomStatusColors = map[string]string{
	models.RoomStatusAvailable:   "#22c55e",
	models.RoomStatusOccupied:    "#ef4444",
	models.RoomStatusReserved:    "#f59e0b",
	models.RoomStatusCleaning:    "#3b82f6",
	models.RoomStatusMaintenance: "#6b7280",
}

// SeedCatalogs 写入目录数据和默认设置，可重复执行
func SeedCatalogs(ctx context.Context, db *gorm.DB, defaults models.Setting) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doNothing := clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}

		for _, name := range models.RoomStatusNames {
			status := models.RoomStatus{Name: name, Color: roomStatusColors[name]}
			if err := tx.Clauses(doNothing).Create(&status).Error; err != nil {
				return err
			}
		}

		for _, name := range models.RoleNames {
			if err := tx.Clauses(doNothing).Create(&models.Role{Name: name}).Error; err != nil {
				return err
			}
		}

		for _, name := range models.PaymentMethodNames {
			if err := tx.Clauses(doNothing).Create(&models.PaymentMethod{Name: name, IsActive: true}).Error; err != nil {
				return err
			}
		}

		// 设置行只在缺失时写入，不覆盖管理员修改
		var existing models.Setting
		err := tx.First(&existing, models.SettingsRowID).Error
		if err == nil {
			return nil
		}
		if !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		defaults.ID = models.SettingsRowID
		return tx.Create(&defaults).Error
	})
}
