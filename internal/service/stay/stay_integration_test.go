//go:build integration

package stay

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/service/guest"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/service/pricing"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/service/settings"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/testutil"
)

func setupPostgresStayService(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewPostgresDB(t)
	settingsSvc := settings.NewService(db, testutil.NewRedisCache(t), time.Minute)
	svc := NewService(db, pricing.NewService(db, settingsSvc), settingsSvc, time.UTC)
	svc.now = func() time.Time { return time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC) }

	recep := testutil.CreateEmployee(t, db, models.RoleReceptionist)
	return &fixture{
		svc:         svc,
		settingsSvc: settingsSvc,
		db:          db,
		reception:   Actor{EmployeeID: recep.ID, Role: models.RoleReceptionist},
		cash:        testutil.PaymentMethodID(t, db, "Efectivo"),
	}
}

func TestIntegration_ExclusionConstraint(t *testing.T) {
	f := setupPostgresStayService(t)
	ctx := context.Background()
	std := testutil.CreateType(t, f.db, "Estándar", 80000, false)
	room := testutil.CreateRoom(t, f.db, "101", std.ID)

	first, err := f.svc.CreateReservation(ctx, f.request(room.ID, "2026-10-25", "2026-10-27"), f.reception)
	require.NoError(t, err)

	// 绕过服务层检查直接写入，由数据库约束拒绝
	overlap := &models.Stay{
		OrderNumber:  first.OrderNumber + 100,
		GuestID:      first.GuestID,
		RoomID:       &room.ID,
		CheckInDate:  testutil.Day("2026-10-26"),
		CheckOutDate: testutil.Day("2026-10-28"),
		Status:       models.StayStatusReserved,
		IsActive:     true,
		TotalPrice:   first.TotalPrice,
		Nights:       2,
	}
	err = f.db.Create(overlap).Error
	require.Error(t, err)
	assert.ErrorIs(t, errors.FromDB(err), errors.ErrBookingConflict)

	// 相邻区间不冲突
	adjacent := *overlap
	adjacent.ID = 0
	adjacent.OrderNumber++
	adjacent.CheckInDate = testutil.Day("2026-10-27")
	require.NoError(t, f.db.Create(&adjacent).Error)

	// 取消后的住宿不再占用日期
	require.NoError(t, f.db.Model(&models.Stay{}).Where("id = ?", first.ID).Update("is_active", false).Error)
	again := *overlap
	again.ID = 0
	again.OrderNumber += 2
	again.CheckOutDate = testutil.Day("2026-10-27")
	require.NoError(t, f.db.Create(&again).Error)
}

func TestIntegration_ConcurrentReservations(t *testing.T) {
	f := setupPostgresStayService(t)
	ctx := context.Background()
	std := testutil.CreateType(t, f.db, "Estándar", 80000, false)
	room := testutil.CreateRoom(t, f.db, "101", std.ID)
	other := testutil.CreateRoom(t, f.db, "102", std.ID)

	const workers = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := f.request(room.ID, "2026-11-01", "2026-11-03")
			req.Guest = guest.Input{DocNumber: fmt.Sprintf("90000%d", i), FirstName: "Huésped", LastName: fmt.Sprint(i)}
			_, err := f.svc.CreateReservation(ctx, req, f.reception)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case stderrors.Is(err, errors.ErrBookingConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicts)

	// 不同房间并发取号不冲突
	wg = sync.WaitGroup{}
	errs := make([]error, 2)
	for i, roomID := range []int64{other.ID, room.ID} {
		wg.Add(1)
		go func(i int, roomID int64) {
			defer wg.Done()
			req := f.request(roomID, "2026-12-01", "2026-12-02")
			req.Guest = guest.Input{DocNumber: fmt.Sprintf("80000%d", i), FirstName: "Paralelo"}
			_, errs[i] = f.svc.CreateReservation(ctx, req, f.reception)
		}(i, roomID)
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	var numbers []int64
	require.NoError(t, f.db.Model(&models.Stay{}).Order("order_number").Pluck("order_number", &numbers).Error)
	assert.Equal(t, []int64{1, 2, 3}, numbers)
}
