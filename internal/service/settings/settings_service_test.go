package settings

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/cache"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/config"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/database"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/repository"
)

func setupSettingsService(t *testing.T) (*Service, *gorm.DB, *miniredis.Miniredis) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	ctx := context.Background()
	require.NoError(t, database.Migrate(ctx, db, models.Schema()))
	require.NoError(t, repository.SeedCatalogs(ctx, db, Defaults(&config.BusinessConfig{
		HotelName:          "Hotel Prueba",
		Currency:           "COP",
		IVAPercentage:      19,
		MattressPrice:      20000,
		FallbackRateHotel:  80000,
		FallbackRateOther:  150000,
		CheckoutRoomStatus: models.RoomStatusCleaning,
	})))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewService(db, cache.New(client), time.Minute), db, mr
}

func TestService_GetCachesRow(t *testing.T) {
	svc, db, mr := setupSettingsService(t)
	ctx := context.Background()

	s, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hotel Prueba", s.HotelName)
	assert.True(t, s.IVAPercentage.Equal(decimal.NewFromInt(19)))
	assert.True(t, mr.Exists(cacheKey()))

	// 直接改库后仍读到缓存值
	require.NoError(t, db.Model(&models.Setting{}).Where("id = ?", models.SettingsRowID).
		Update("hotel_name", "Cambiado").Error)
	s, err = svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hotel Prueba", s.HotelName)
}

func TestService_GetWithoutRedis(t *testing.T) {
	_, db, _ := setupSettingsService(t)
	svc := NewService(db, cache.New(nil), 0)

	s, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusCleaning, s.CheckoutRoomStatus)
}

func TestService_Update(t *testing.T) {
	svc, db, mr := setupSettingsService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx)
	require.NoError(t, err)

	status := models.RoomStatusAvailable
	iva := decimal.NewFromInt(5)
	updated, err := svc.Update(ctx, 1, &UpdateRequest{CheckoutRoomStatus: &status, IVAPercentage: &iva})
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusAvailable, updated.CheckoutRoomStatus)
	assert.False(t, mr.Exists(cacheKey()))

	s, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.True(t, s.IVAPercentage.Equal(iva))

	var logs int64
	db.Model(&models.OperationLog{}).Where("module = ?", "settings").Count(&logs)
	assert.Equal(t, int64(1), logs)

	history, err := svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.RoomStatusAvailable, history[0].AfterData["checkout_room_status"])
}

func TestService_UpdateValidation(t *testing.T) {
	svc, _, _ := setupSettingsService(t)
	ctx := context.Background()

	badStatus := models.RoomStatusOccupied
	_, err := svc.Update(ctx, 1, &UpdateRequest{CheckoutRoomStatus: &badStatus})
	assert.ErrorIs(t, err, errors.ErrSettingsInvalid)

	tooHigh := decimal.NewFromInt(101)
	_, err = svc.Update(ctx, 1, &UpdateRequest{IVAPercentage: &tooHigh})
	assert.ErrorIs(t, err, errors.ErrSettingsInvalid)

	negative := decimal.NewFromInt(-1)
	_, err = svc.Update(ctx, 1, &UpdateRequest{MattressPrice: &negative})
	assert.ErrorIs(t, err, errors.ErrSettingsInvalid)
}
