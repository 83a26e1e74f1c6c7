package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/database"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
)

// setupTestDB 创建内存数据库并写入目录数据
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(context.Background(), db, models.Schema()))
	require.NoError(t, SeedCatalogs(context.Background(), db, models.Setting{
		HotelName:          "Hotel Prueba",
		Currency:           "COP",
		IVAPercentage:      decimal.NewFromInt(19),
		MattressPrice:      decimal.NewFromInt(20000),
		FallbackRateHotel:  decimal.NewFromInt(80000),
		FallbackRateOther:  decimal.NewFromInt(150000),
		CheckoutRoomStatus: models.RoomStatusCleaning,
	}))
	return db
}

func mustStatus(t *testing.T, db *gorm.DB, name string) *models.RoomStatus {
	status, err := NewRoomStatusRepository(db).GetByName(context.Background(), name)
	require.NoError(t, err)
	return status
}

func createType(t *testing.T, db *gorm.DB, name string, wholeUnit bool) *models.AccommodationType {
	at := &models.AccommodationType{
		Name:        name,
		Category:    models.CategoryHotel,
		Price:       decimal.NewFromInt(300000),
		IsWholeUnit: wholeUnit,
		StatusID:    mustStatus(t, db, models.RoomStatusAvailable).ID,
		StatusDate:  time.Now(),
		IsActive:    true,
	}
	require.NoError(t, db.Create(at).Error)
	return at
}

func createRoom(t *testing.T, db *gorm.DB, number string, typeID int64) *models.Room {
	room := &models.Room{
		Number:              number,
		AccommodationTypeID: typeID,
		DoubleBeds:          1,
		SingleBeds:          1,
		StatusID:            mustStatus(t, db, models.RoomStatusAvailable).ID,
		StatusDate:          time.Now(),
		IsActive:            true,
		Rates: []models.RoomRate{
			{PersonCount: 1, Price: decimal.NewFromInt(80000)},
			{PersonCount: 2, Price: decimal.NewFromInt(120000)},
		},
	}
	require.NoError(t, db.Create(room).Error)
	return room
}

func createGuest(t *testing.T, db *gorm.DB, doc string) *models.Guest {
	g := &models.Guest{DocType: "CC", DocNumber: doc, FirstName: "Ana", LastName: "Gómez"}
	require.NoError(t, db.Create(g).Error)
	return g
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func createStay(t *testing.T, db *gorm.DB, order int64, guestID int64, roomID, typeID *int64, ci, co string, status string) *models.Stay {
	stay := &models.Stay{
		OrderNumber:         order,
		GuestID:             guestID,
		RoomID:              roomID,
		AccommodationTypeID: typeID,
		CheckInDate:         day(ci),
		CheckOutDate:        day(co),
		Status:              status,
		IsActive:            status == models.StayStatusReserved || status == models.StayStatusActive,
		TotalPrice:          decimal.NewFromInt(160000),
		Nights:              2,
		PersonCount:         1,
	}
	require.NoError(t, db.Create(stay).Error)
	// gorm 对 bool 零值使用数据库默认值，这里显式写回
	require.NoError(t, db.Model(stay).Update("is_active", stay.IsActive).Error)
	return stay
}
