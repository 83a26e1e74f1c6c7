// Package availability 提供预订冲突检查
package availability

import (
	"context"
	stderrors "errors"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/utils"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/repository"
)

// Target 检查对象，房间与整套住宿二选一
type Target struct {
	RoomID              *int64
	AccommodationTypeID *int64
}

// Conflict 冲突的住宿摘要
type Conflict struct {
	StayID        int64  `json:"stay_id"`
	OrderNumber   string `json:"order_number"`
	Status        string `json:"status"`
	GuestName     string `json:"guest_name"`
	RoomNumber    string `json:"room_number,omitempty"`
	Accommodation string `json:"accommodation,omitempty"`
	CheckInDate   string `json:"check_in_date"`
	CheckOutDate  string `json:"check_out_date"`
}

// Result 检查结果
type Result struct {
	Available bool       `json:"available"`
	Conflicts []Conflict `json:"conflicts"`
}

// Check 查询与 [checkIn, checkOut) 相交的有效住宿。
// 房间对象同时检查其所属类型的整套预订；类型对象同时检查其下所有房间
func Check(ctx context.Context, db *gorm.DB, target Target, checkIn, checkOut time.Time, excludeStayID int64) ([]*models.Stay, error) {
	checkIn, checkOut = utils.DateOnly(checkIn), utils.DateOnly(checkOut)
	if !checkOut.After(checkIn) {
		return nil, errors.ErrInvalidDates.WithMessage("La fecha de salida debe ser posterior al ingreso")
	}

	q := repository.OverlapQuery{CheckIn: checkIn, CheckOut: checkOut, ExcludeStayID: excludeStayID}
	roomRepo := repository.NewRoomRepository(db)
	switch {
	case target.RoomID != nil:
		room, err := roomRepo.GetByID(ctx, *target.RoomID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.ErrRoomNotFound
			}
			return nil, err
		}
		typeID := room.AccommodationTypeID
		q.AccommodationTypeID = &typeID
		q.RoomIDs = []int64{room.ID}
	case target.AccommodationTypeID != nil:
		ids, err := roomRepo.IDsByAccommodationType(ctx, *target.AccommodationTypeID)
		if err != nil {
			return nil, err
		}
		q.AccommodationTypeID = target.AccommodationTypeID
		q.RoomIDs = ids
	default:
		return nil, errors.ErrStayTargetRequired
	}

	return repository.NewStayRepository(db).FindOverlapping(ctx, q)
}

// Service 可用性查询服务
type Service struct {
	db *gorm.DB
}

// NewService 创建可用性服务
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Check 检查对象在日期区间内是否可订
func (s *Service) Check(ctx context.Context, target Target, checkIn, checkOut time.Time, excludeStayID int64) (*Result, error) {
	stays, err := Check(ctx, s.db, target, checkIn, checkOut, excludeStayID)
	if err != nil {
		return nil, errors.FromDB(err)
	}

	result := &Result{Available: len(stays) == 0, Conflicts: make([]Conflict, 0, len(stays))}
	for _, st := range stays {
		c := Conflict{
			StayID:       st.ID,
			OrderNumber:  utils.FormatOrderNumber(st.OrderNumber),
			Status:       st.Status,
			CheckInDate:  utils.FormatDate(st.CheckInDate),
			CheckOutDate: utils.FormatDate(st.CheckOutDate),
		}
		if st.Guest != nil {
			c.GuestName = st.Guest.FullName()
		}
		if st.Room != nil {
			c.RoomNumber = st.Room.Number
		}
		if st.AccommodationType != nil {
			c.Accommodation = st.AccommodationType.Name
		}
		result.Conflicts = append(result.Conflicts, c)
	}
	return result, nil
}
