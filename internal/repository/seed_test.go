package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
)

func TestSeedCatalogs_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	settings := NewSettingRepository(db)
	current, err := settings.Get(ctx)
	require.NoError(t, err)
	current.HotelName = "Hotel Modificado"
	require.NoError(t, settings.Save(ctx, current))

	// 第二次执行不重复写目录，也不覆盖设置
	require.NoError(t, SeedCatalogs(ctx, db, models.Setting{
		HotelName:          "Otro",
		IVAPercentage:      decimal.NewFromInt(5),
		CheckoutRoomStatus: models.RoomStatusAvailable,
	}))

	var statuses, roles int64
	db.Model(&models.RoomStatus{}).Count(&statuses)
	db.Model(&models.Role{}).Count(&roles)
	assert.Equal(t, int64(len(models.RoomStatusNames)), statuses)
	assert.Equal(t, int64(len(models.RoleNames)), roles)

	current, err = settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hotel Modificado", current.HotelName)
	assert.True(t, current.IVAPercentage.Equal(decimal.NewFromInt(19)))
}
