package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
)

func TestStayRepository_NextOrderNumber(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStayRepository(db)
	ctx := context.Background()

	next, err := repo.NextOrderNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), next)

	at := createType(t, db, "Estándar", false)
	room := createRoom(t, db, "101", at.ID)
	guest := createGuest(t, db, "1001")
	createStay(t, db, 7, guest.ID, &room.ID, nil, "2026-10-01", "2026-10-03", models.StayStatusActive)

	next, err = repo.NextOrderNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(8), next)
}

func TestStayRepository_FindOverlapping(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStayRepository(db)
	ctx := context.Background()

	at := createType(t, db, "Estándar", false)
	house := createType(t, db, "Casa Campestre", true)
	r101 := createRoom(t, db, "101", at.ID)
	r102 := createRoom(t, db, "102", at.ID)
	guest := createGuest(t, db, "1001")

	createStay(t, db, 1, guest.ID, &r101.ID, nil, "2026-10-10", "2026-10-12", models.StayStatusReserved)
	createStay(t, db, 2, guest.ID, &r102.ID, nil, "2026-10-10", "2026-10-12", models.StayStatusCancelled)
	createStay(t, db, 3, guest.ID, nil, &house.ID, "2026-10-20", "2026-10-25", models.StayStatusActive)

	tests := []struct {
		name  string
		query OverlapQuery
		want  int
	}{
		{"same room overlapping", OverlapQuery{CheckIn: day("2026-10-11"), CheckOut: day("2026-10-13"), RoomIDs: []int64{r101.ID}}, 1},
		{"checkout day is free", OverlapQuery{CheckIn: day("2026-10-12"), CheckOut: day("2026-10-14"), RoomIDs: []int64{r101.ID}}, 0},
		{"ends on checkin day", OverlapQuery{CheckIn: day("2026-10-08"), CheckOut: day("2026-10-10"), RoomIDs: []int64{r101.ID}}, 0},
		{"cancelled stay ignored", OverlapQuery{CheckIn: day("2026-10-10"), CheckOut: day("2026-10-12"), RoomIDs: []int64{r102.ID}}, 0},
		{"type covers its rooms", OverlapQuery{CheckIn: day("2026-10-09"), CheckOut: day("2026-10-15"), AccommodationTypeID: &at.ID, RoomIDs: []int64{r101.ID, r102.ID}}, 1},
		{"whole unit by type", OverlapQuery{CheckIn: day("2026-10-24"), CheckOut: day("2026-10-26"), AccommodationTypeID: &house.ID}, 1},
		{"no target", OverlapQuery{CheckIn: day("2026-10-01"), CheckOut: day("2026-10-30")}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stays, err := repo.FindOverlapping(ctx, tt.query)
			require.NoError(t, err)
			assert.Len(t, stays, tt.want)
			for _, s := range stays {
				assert.NotNil(t, s.Guest)
			}
		})
	}
}

func TestStayRepository_FindOverlapping_Exclude(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStayRepository(db)
	ctx := context.Background()

	at := createType(t, db, "Estándar", false)
	room := createRoom(t, db, "101", at.ID)
	guest := createGuest(t, db, "1001")
	stay := createStay(t, db, 1, guest.ID, &room.ID, nil, "2026-10-10", "2026-10-12", models.StayStatusReserved)

	stays, err := repo.FindOverlapping(ctx, OverlapQuery{
		CheckIn: day("2026-10-10"), CheckOut: day("2026-10-12"),
		RoomIDs: []int64{room.ID}, ExcludeStayID: stay.ID,
	})
	require.NoError(t, err)
	assert.Empty(t, stays)
}

func TestStayRepository_HoldersAndActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStayRepository(db)
	ctx := context.Background()

	at := createType(t, db, "Estándar", false)
	room := createRoom(t, db, "101", at.ID)
	guest := createGuest(t, db, "1001")
	first := createStay(t, db, 1, guest.ID, &room.ID, nil, "2026-10-10", "2026-10-12", models.StayStatusReserved)
	createStay(t, db, 2, guest.ID, &room.ID, nil, "2026-10-20", "2026-10-22", models.StayStatusReserved)

	active, err := repo.HasActiveOnRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.False(t, active)

	count, err := repo.CountOtherHolders(ctx, &room.ID, nil, first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestStayRepository_CountBlockingHolders(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStayRepository(db)
	ctx := context.Background()

	at := createType(t, db, "Estándar", false)
	room := createRoom(t, db, "101", at.ID)
	house := createType(t, db, "Casa", true)
	guest := createGuest(t, db, "1001")
	createStay(t, db, 1, guest.ID, &room.ID, nil, "2026-11-10", "2026-11-12", models.StayStatusReserved)
	createStay(t, db, 2, guest.ID, nil, &house.ID, "2026-10-15", "2026-10-20", models.StayStatusActive)

	tests := []struct {
		name   string
		roomID *int64
		typeID *int64
		ci, co string
		want   int64
	}{
		{"reserva futura sin cruce", &room.ID, nil, "2026-10-19", "2026-10-20", 0},
		{"sale el día que llega la reserva", &room.ID, nil, "2026-11-08", "2026-11-10", 0},
		{"se cruza con la reserva", &room.ID, nil, "2026-11-11", "2026-11-13", 1},
		{"estadía activa bloquea siempre", nil, &house.ID, "2026-12-01", "2026-12-02", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, err := repo.CountBlockingHolders(ctx, tt.roomID, tt.typeID, day(tt.ci), day(tt.co))
			require.NoError(t, err)
			assert.Equal(t, tt.want, count)
		})
	}
}

func TestStayRepository_TransitionStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStayRepository(db)
	ctx := context.Background()

	at := createType(t, db, "Estándar", false)
	room := createRoom(t, db, "101", at.ID)
	guest := createGuest(t, db, "1001")
	stay := createStay(t, db, 1, guest.ID, &room.ID, nil, "2026-10-10", "2026-10-12", models.StayStatusReserved)

	ok, err := repo.TransitionStatus(ctx, stay.ID, models.StayStatusReserved, map[string]interface{}{
		"status": models.StayStatusActive,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	// 已被其他请求推进
	ok, err = repo.TransitionStatus(ctx, stay.ID, models.StayStatusReserved, map[string]interface{}{
		"status": models.StayStatusCancelled,
	})
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByID(ctx, stay.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StayStatusActive, got.Status)
}

func TestStayRepository_ListAndStats(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStayRepository(db)
	ctx := context.Background()

	at := createType(t, db, "Estándar", false)
	room := createRoom(t, db, "101", at.ID)
	ana := createGuest(t, db, "1001")
	luis := &models.Guest{DocType: "CC", DocNumber: "2002", FirstName: "Luis", LastName: "Pérez"}
	require.NoError(t, db.Create(luis).Error)

	createStay(t, db, 1, ana.ID, &room.ID, nil, "2026-10-01", "2026-10-03", models.StayStatusCompleted)
	createStay(t, db, 2, luis.ID, &room.ID, nil, "2026-10-05", "2026-10-07", models.StayStatusActive)
	createStay(t, db, 3, luis.ID, &room.ID, nil, "2026-11-05", "2026-11-07", models.StayStatusCancelled)

	stays, total, err := repo.List(ctx, StayFilter{Keyword: "Luis"}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, int64(3), stays[0].OrderNumber)

	from, to := day("2026-10-01"), day("2026-11-01")
	inRange, err := repo.ListInRange(ctx, from, to)
	require.NoError(t, err)
	assert.Len(t, inRange, 2)

	byStatus, err := repo.CountByStatus(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(1), byStatus[models.StayStatusCompleted])
	assert.Equal(t, int64(1), byStatus[models.StayStatusActive])

	nights, err := repo.SumNights(ctx, from, day("2026-12-01"))
	require.NoError(t, err)
	assert.Equal(t, int64(4), nights)
}
