package room

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/testutil"
)

func createStay(t *testing.T, db *gorm.DB, order int64, roomID, typeID *int64, ci, co, status string) *models.Stay {
	t.Helper()
	guest := &models.Guest{DocType: "CC", DocNumber: testutil.RandomDocument(), FirstName: "Ana", LastName: "Gómez"}
	require.NoError(t, db.Create(guest).Error)
	stay := &models.Stay{
		OrderNumber:         order,
		GuestID:             guest.ID,
		RoomID:              roomID,
		AccommodationTypeID: typeID,
		CheckInDate:         testutil.Day(ci),
		CheckOutDate:        testutil.Day(co),
		Status:              status,
		IsActive:            true,
		TotalPrice:          decimal.NewFromInt(160000),
		Nights:              2,
		PersonCount:         1,
	}
	require.NoError(t, db.Create(stay).Error)
	return stay
}

func TestChangeStatus_WritesHistoryAndOutbox(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	at := testutil.CreateType(t, db, "Estándar", 0, false)
	room := testutil.CreateRoom(t, db, "101", at.ID)

	var h *models.RoomHistory
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		var err error
		h, err = ChangeStatus(ctx, tx, Change{
			Target:      Target{RoomID: &room.ID},
			Status:      models.RoomStatusOccupied,
			Action:      models.ActionCheckIn,
			Observation: "Ingreso",
		})
		return err
	}))

	assert.Equal(t, testutil.Status(t, db, models.RoomStatusAvailable).ID, *h.PreviousStatusID)
	assert.Equal(t, testutil.Status(t, db, models.RoomStatusOccupied).ID, h.NewStatusID)

	var reloaded models.Room
	require.NoError(t, db.First(&reloaded, room.ID).Error)
	assert.Equal(t, h.NewStatusID, reloaded.StatusID)
	assert.Equal(t, room.Version+1, reloaded.Version)

	var events []models.OutboxEvent
	require.NoError(t, db.Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, models.TopicRoomStatusChanged, events[0].Topic)
	assert.Equal(t, "101", events[0].Payload["number"])
	assert.Equal(t, models.RoomStatusOccupied, events[0].Payload["status"])
}

func TestChangeStatus_OnlyFrom(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	at := testutil.CreateType(t, db, "Estándar", 0, false)
	room := testutil.CreateRoom(t, db, "101", at.ID)
	maintenance := testutil.Status(t, db, models.RoomStatusMaintenance)
	require.NoError(t, db.Model(room).Update("status_id", maintenance.ID).Error)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		_, err := ChangeStatus(ctx, tx, Change{
			Target:   Target{RoomID: &room.ID},
			Status:   models.RoomStatusReserved,
			Action:   models.ActionReservation,
			OnlyFrom: []string{models.RoomStatusAvailable},
		})
		return err
	}))

	var reloaded models.Room
	require.NoError(t, db.First(&reloaded, room.ID).Error)
	assert.Equal(t, maintenance.ID, reloaded.StatusID)

	// 日志照常写入，房态不变，不产生事件
	var histories, events int64
	db.Model(&models.RoomHistory{}).Count(&histories)
	db.Model(&models.OutboxEvent{}).Count(&events)
	assert.Equal(t, int64(1), histories)
	assert.Equal(t, int64(0), events)
}

func TestChangeStatus_AccommodationType(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	cabin := testutil.CreateType(t, db, "Cabaña", 400000, true)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		_, err := ChangeStatus(ctx, tx, Change{
			Target: Target{AccommodationTypeID: &cabin.ID},
			Status: models.RoomStatusReserved,
			Action: models.ActionReservation,
		})
		return err
	}))

	var reloaded models.AccommodationType
	require.NoError(t, db.First(&reloaded, cabin.ID).Error)
	assert.Equal(t, models.RoomStatusReserved, testutil.StatusName(t, db, reloaded.StatusID))

	_, err := ChangeStatus(ctx, db, Change{Status: models.RoomStatusReserved})
	assert.ErrorIs(t, err, errors.ErrStayTargetRequired)
}

func TestService_ApplyAction(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	at := testutil.CreateType(t, db, "Estándar", 0, false)
	room := testutil.CreateRoom(t, db, "101", at.ID)
	housekeeper := testutil.CreateEmployee(t, db, models.RoleCleaning)

	h, err := svc.ApplyAction(ctx, room.ID, &ActionRequest{
		Action:      models.ActionCleaning,
		EmployeeID:  housekeeper.ID,
		Observation: "Limpieza profunda",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ActionCleaning, h.Action)

	// 清洁中不能再次开始清洁
	_, err = svc.ApplyAction(ctx, room.ID, &ActionRequest{
		Action:      models.ActionCleaning,
		EmployeeID:  housekeeper.ID,
		Observation: "Otra vez",
	})
	assert.ErrorIs(t, err, errors.ErrInvalidRoomAction)

	_, err = svc.ApplyAction(ctx, room.ID, &ActionRequest{
		Action:      models.ActionCleaningDone,
		EmployeeID:  housekeeper.ID,
		Observation: "Lista",
	})
	require.NoError(t, err)

	got, err := svc.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusAvailable, got.Status.Name)
}

func TestService_ApplyActionRejections(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	at := testutil.CreateType(t, db, "Estándar", 0, false)
	room := testutil.CreateRoom(t, db, "101", at.ID)
	emp := testutil.CreateEmployee(t, db, models.RoleMaintenance)

	tests := []struct {
		name string
		req  ActionRequest
		want error
	}{
		{"sin observación", ActionRequest{Action: models.ActionMaintenance, EmployeeID: emp.ID, Observation: "  "}, errors.ErrInvalidParams},
		{"acción desconocida", ActionRequest{Action: "PINTAR", EmployeeID: emp.ID, Observation: "x"}, errors.ErrInvalidRoomAction},
		{"cambio manual a ocupado", ActionRequest{Action: models.ActionStatusChange, Status: models.RoomStatusOccupied, EmployeeID: emp.ID, Observation: "x"}, errors.ErrInvalidRoomAction},
		{"empleado inexistente", ActionRequest{Action: models.ActionMaintenance, EmployeeID: 999, Observation: "x"}, errors.ErrEmployeeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ApplyAction(ctx, room.ID, &tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// 有进行中的入住
	createStay(t, db, 1, &room.ID, nil, "2026-10-18", "2026-10-20", models.StayStatusActive)
	_, err := svc.ApplyAction(ctx, room.ID, &ActionRequest{Action: models.ActionMaintenance, EmployeeID: emp.ID, Observation: "Fuga"})
	assert.ErrorIs(t, err, errors.ErrRoomOccupied)
}

func TestService_RoomManagement(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()

	at, err := svc.CreateType(ctx, &CreateTypeRequest{Name: "Doble", Capacity: 3})
	require.NoError(t, err)
	assert.Equal(t, models.CategoryHotel, at.Category)

	_, err = svc.CreateType(ctx, &CreateTypeRequest{Name: "Doble"})
	assert.ErrorIs(t, err, errors.ErrAlreadyExists)

	room, err := svc.CreateRoom(ctx, &CreateRoomRequest{
		Number:              "201",
		AccommodationTypeID: at.ID,
		DoubleBeds:          1,
		Rates: []RateInput{
			{PersonCount: 2, Price: decimal.NewFromInt(120000)},
			{PersonCount: 1, Price: decimal.NewFromInt(90000)},
		},
	})
	require.NoError(t, err)
	require.Len(t, room.Rates, 2)
	assert.Equal(t, 1, room.Rates[0].PersonCount)
	assert.Equal(t, models.RoomStatusAvailable, room.Status.Name)

	_, err = svc.CreateRoom(ctx, &CreateRoomRequest{Number: "201", AccommodationTypeID: at.ID})
	assert.ErrorIs(t, err, errors.ErrRoomNumberExists)

	_, err = svc.ReplaceRates(ctx, room.ID, []RateInput{
		{PersonCount: 1, Price: decimal.NewFromInt(90000)},
		{PersonCount: 1, Price: decimal.NewFromInt(95000)},
	})
	assert.ErrorIs(t, err, errors.ErrInvalidRateTier)

	room, err = svc.ReplaceRates(ctx, room.ID, []RateInput{{PersonCount: 1, Price: decimal.NewFromInt(99000)}})
	require.NoError(t, err)
	require.Len(t, room.Rates, 1)

	number := "202"
	room, err = svc.UpdateRoom(ctx, room.ID, &UpdateRoomRequest{Number: &number})
	require.NoError(t, err)
	assert.Equal(t, "202", room.Number)

	// 有预订时不可停用
	stay := createStay(t, db, 1, &room.ID, nil, "2026-11-01", "2026-11-03", models.StayStatusReserved)
	_, err = svc.DeactivateRoom(ctx, room.ID)
	assert.ErrorIs(t, err, errors.ErrRoomOccupied)

	require.NoError(t, db.Model(stay).Updates(map[string]interface{}{"status": models.StayStatusCancelled, "is_active": false}).Error)
	room, err = svc.DeactivateRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.False(t, room.IsActive)
}

func TestService_Calendar(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()
	at := testutil.CreateType(t, db, "Estándar", 0, false)
	r1 := testutil.CreateRoom(t, db, "101", at.ID)
	testutil.CreateRoom(t, db, "102", at.ID)
	suite := testutil.CreateType(t, db, "Suite completa", 500000, true)
	testutil.CreateRoom(t, db, "301", suite.ID)
	testutil.CreateRoom(t, db, "302", suite.ID)

	createStay(t, db, 1, &r1.ID, nil, "2026-10-01", "2026-10-03", models.StayStatusActive)
	createStay(t, db, 2, nil, &suite.ID, "2026-10-02", "2026-10-04", models.StayStatusReserved)
	cancelled := createStay(t, db, 3, &r1.ID, nil, "2026-10-03", "2026-10-05", models.StayStatusCancelled)
	require.NoError(t, db.Model(cancelled).Update("is_active", false).Error)

	cal, err := svc.Calendar(ctx, testutil.Day("2026-10-01"), testutil.Day("2026-10-05"))
	require.NoError(t, err)
	require.Len(t, cal.Rows, 4)

	assert.Equal(t, "101", cal.Rows[0].Number)
	require.Len(t, cal.Rows[0].Cells, 2)
	assert.True(t, cal.Rows[0].Cells[0].IsCheckIn)
	assert.Equal(t, "#000001", cal.Rows[0].Cells[0].OrderNumber)
	assert.Empty(t, cal.Rows[1].Cells)
	assert.Len(t, cal.Rows[2].Cells, 2)
	assert.Len(t, cal.Rows[3].Cells, 2)

	assert.Equal(t, 3, cal.OccupancyOn("2026-10-02"))
	assert.Equal(t, 0, cal.OccupancyOn("2026-10-04"))

	_, err = svc.Calendar(ctx, testutil.Day("2026-10-05"), testutil.Day("2026-10-01"))
	assert.ErrorIs(t, err, errors.ErrInvalidDates)
	_, err = svc.Calendar(ctx, testutil.Day("2026-01-01"), testutil.Day("2026-06-01"))
	assert.ErrorIs(t, err, errors.ErrInvalidDates)
}
