// Package testutil 提供测试辅助工具
package testutil

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/cache"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/database"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/repository"
)

// DefaultSettings 测试用酒店设置
func DefaultSettings() models.Setting {
	return models.Setting{
		HotelName:          "Hotel Prueba",
		Currency:           "COP",
		IVAPercentage:      decimal.NewFromInt(19),
		MattressPrice:      decimal.NewFromInt(20000),
		FallbackRateHotel:  decimal.NewFromInt(80000),
		FallbackRateOther:  decimal.NewFromInt(150000),
		CheckoutRoomStatus: models.RoomStatusCleaning,
	}
}

// NewDB 创建内存数据库，完成迁移并写入目录数据
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	ctx := context.Background()
	require.NoError(t, database.Migrate(ctx, db, models.Schema()))
	require.NoError(t, repository.SeedCatalogs(ctx, db, DefaultSettings()))
	return db
}

// NewCache 基于 miniredis 的缓存
func NewCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.New(client), mr
}

// Day 解析 YYYY-MM-DD 为 UTC 零点
func Day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

// Status 按名称获取房态
func Status(t *testing.T, db *gorm.DB, name string) *models.RoomStatus {
	t.Helper()
	s, err := repository.NewRoomStatusRepository(db).GetByName(context.Background(), name)
	require.NoError(t, err)
	return s
}

// StatusName 房态 ID 对应的名称
func StatusName(t *testing.T, db *gorm.DB, id int64) string {
	t.Helper()
	s, err := repository.NewRoomStatusRepository(db).GetByID(context.Background(), id)
	require.NoError(t, err)
	return s.Name
}

// CreateType 创建住宿类型
func CreateType(t *testing.T, db *gorm.DB, name string, price int64, wholeUnit bool) *models.AccommodationType {
	t.Helper()
	at := &models.AccommodationType{
		Name:        name,
		Category:    models.CategoryHotel,
		Price:       decimal.NewFromInt(price),
		IsWholeUnit: wholeUnit,
		Capacity:    6,
		StatusID:    Status(t, db, models.RoomStatusAvailable).ID,
		StatusDate:  time.Now(),
		IsActive:    true,
	}
	require.NoError(t, db.Create(at).Error)
	return at
}

// CreateRoom 创建房间，默认 1 人 80000 一档
func CreateRoom(t *testing.T, db *gorm.DB, number string, typeID int64, rates ...models.RoomRate) *models.Room {
	t.Helper()
	if len(rates) == 0 {
		rates = []models.RoomRate{{PersonCount: 1, Price: decimal.NewFromInt(80000)}}
	}
	room := &models.Room{
		Number:              number,
		AccommodationTypeID: typeID,
		DoubleBeds:          1,
		SingleBeds:          1,
		StatusID:            Status(t, db, models.RoomStatusAvailable).ID,
		StatusDate:          time.Now(),
		IsActive:            true,
		Rates:               rates,
	}
	require.NoError(t, db.Create(room).Error)
	return room
}

// CreateEmployee 创建指定角色的员工
func CreateEmployee(t *testing.T, db *gorm.DB, roleName string) *models.Employee {
	t.Helper()
	role, err := repository.NewRoleRepository(db).GetByName(context.Background(), roleName)
	require.NoError(t, err)
	e := &models.Employee{
		Email:     fmt.Sprintf("%s@hotel.test", RandomString(8)),
		FirstName: "Laura",
		LastName:  roleName,
		RoleID:    role.ID,
		IsActive:  true,
	}
	require.NoError(t, db.Create(e).Error)
	e.Role = role
	return e
}

// PaymentMethodID 按名称获取收款方式 ID
func PaymentMethodID(t *testing.T, db *gorm.DB, name string) int64 {
	t.Helper()
	m, err := repository.NewPaymentMethodRepository(db).GetByName(context.Background(), name)
	require.NoError(t, err)
	return m.ID
}

// RandomString 生成随机字符串
func RandomString(n int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}

// RandomDocument 生成随机证件号
func RandomDocument() string {
	return fmt.Sprintf("10%08d", rand.Intn(100000000))
}
