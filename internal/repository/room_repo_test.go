package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
)

func TestRoomRepository_GetByIDWithDetails(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	at := createType(t, db, "Estándar", false)
	room := createRoom(t, db, "101", at.ID)

	found, err := repo.GetByIDWithDetails(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "101", found.Number)
	assert.Equal(t, 3, found.Capacity())
	require.NotNil(t, found.AccommodationType)
	assert.Equal(t, "Estándar", found.AccommodationType.Name)
	require.NotNil(t, found.Status)
	assert.Equal(t, models.RoomStatusAvailable, found.Status.Name)
	require.Len(t, found.Rates, 2)
	assert.Equal(t, 1, found.Rates[0].PersonCount)
}

func TestRoomRepository_ExistsByNumber(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	at := createType(t, db, "Estándar", false)
	room := createRoom(t, db, "101", at.ID)

	exists, err := repo.ExistsByNumber(ctx, "101", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByNumber(ctx, "101", room.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRoomRepository_UpdateStatusVersioned(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	at := createType(t, db, "Estándar", false)
	room := createRoom(t, db, "101", at.ID)
	cleaning := mustStatus(t, db, models.RoomStatusCleaning)

	ok, err := repo.UpdateStatusVersioned(ctx, room.ID, room.Version, cleaning.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	// 旧版本号再次写入应失败
	ok, err = repo.UpdateStatusVersioned(ctx, room.ID, room.Version, cleaning.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	found, err := repo.GetByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, cleaning.ID, found.StatusID)
	assert.Equal(t, room.Version+1, found.Version)
}

func TestRoomRepository_ReplaceRates(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	at := createType(t, db, "Estándar", false)
	room := createRoom(t, db, "101", at.ID)

	err := repo.ReplaceRates(ctx, room.ID, []models.RoomRate{
		{PersonCount: 1, Price: decimal.NewFromInt(90000)},
		{PersonCount: 3, Price: decimal.NewFromInt(150000)},
		{PersonCount: 4, Price: decimal.NewFromInt(180000)},
	})
	require.NoError(t, err)

	found, err := repo.GetByIDWithDetails(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, found.Rates, 3)
	assert.True(t, found.Rates[0].Price.Equal(decimal.NewFromInt(90000)))
	assert.Equal(t, 4, found.Rates[2].PersonCount)
}

func TestRoomRepository_ListAndIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	standard := createType(t, db, "Estándar", false)
	suite := createType(t, db, "Suite", false)
	createRoom(t, db, "101", standard.ID)
	createRoom(t, db, "102", standard.ID)
	createRoom(t, db, "201", suite.ID)

	rooms, total, err := repo.List(ctx, 0, 10, map[string]interface{}{"accommodation_type_id": standard.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "101", rooms[0].Number)

	ids, err := repo.IDsByAccommodationType(ctx, suite.ID)
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	stats, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats[models.RoomStatusAvailable])
}
