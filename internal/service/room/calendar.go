package room

import (
	"context"
	"time"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/utils"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
)

// MaxCalendarDays 日历最大跨度
const MaxCalendarDays = 62

// CalendarCell 某房间某天的占用
type CalendarCell struct {
	Date        string `json:"date"`
	StayID      int64  `json:"stay_id"`
	OrderNumber string `json:"order_number"`
	GuestName   string `json:"guest_name"`
	StayStatus  string `json:"stay_status"`
	IsCheckIn   bool   `json:"is_check_in"`
}

// CalendarRow 房间一行
type CalendarRow struct {
	RoomID              int64          `json:"room_id"`
	Number              string         `json:"number"`
	AccommodationTypeID int64          `json:"accommodation_type_id"`
	Status              string         `json:"status"`
	StatusColor         string         `json:"status_color,omitempty"`
	Cells               []CalendarCell `json:"cells"`
}

// Calendar 占用日历
type Calendar struct {
	From string        `json:"from"`
	To   string        `json:"to"`
	Rows []CalendarRow `json:"rows"`
}

// Calendar 构建 [from, to) 的每房每日占用：
// 每一天与预订、入住及已完成住宿的 [入住, 退房) 区间求交
func (s *Service) Calendar(ctx context.Context, from, to time.Time) (*Calendar, error) {
	from, to = utils.DateOnly(from), utils.DateOnly(to)
	if !to.After(from) {
		return nil, errors.ErrInvalidDates
	}
	if utils.DaysBetween(from, to) > MaxCalendarDays {
		return nil, errors.ErrInvalidDates.WithMessage("El rango máximo del calendario es de 62 días")
	}

	rooms, err := s.roomRepo.ListActive(ctx)
	if err != nil {
		return nil, errors.FromDB(err)
	}
	stays, err := s.stayRepo.ListInRange(ctx, from, to)
	if err != nil {
		return nil, errors.FromDB(err)
	}

	cal := &Calendar{From: utils.FormatDate(from), To: utils.FormatDate(to), Rows: make([]CalendarRow, 0, len(rooms))}
	index := make(map[int64]int, len(rooms))
	byType := make(map[int64][]int)
	for i, r := range rooms {
		row := CalendarRow{
			RoomID:              r.ID,
			Number:              r.Number,
			AccommodationTypeID: r.AccommodationTypeID,
			Status:              statusOf(r),
			Cells:               []CalendarCell{},
		}
		if r.Status != nil {
			row.StatusColor = r.Status.Color
		}
		cal.Rows = append(cal.Rows, row)
		index[r.ID] = i
		byType[r.AccommodationTypeID] = append(byType[r.AccommodationTypeID], i)
	}

	for _, st := range stays {
		// 整套住宿占用其下所有房间
		var rows []int
		if st.RoomID != nil {
			if i, ok := index[*st.RoomID]; ok {
				rows = []int{i}
			}
		} else if st.AccommodationTypeID != nil {
			rows = byType[*st.AccommodationTypeID]
		}
		if len(rows) == 0 {
			continue
		}

		start, end := utils.DateOnly(st.CheckInDate), utils.DateOnly(st.CheckOutDate)
		if start.Before(from) {
			start = from
		}
		if end.After(to) {
			end = to
		}
		guestName := ""
		if st.Guest != nil {
			guestName = st.Guest.FullName()
		}
		utils.EachDay(start, end, func(day time.Time) {
			cell := CalendarCell{
				Date:        utils.FormatDate(day),
				StayID:      st.ID,
				OrderNumber: utils.FormatOrderNumber(st.OrderNumber),
				GuestName:   guestName,
				StayStatus:  st.Status,
				IsCheckIn:   day.Equal(utils.DateOnly(st.CheckInDate)),
			}
			for _, i := range rows {
				cal.Rows[i].Cells = append(cal.Rows[i].Cells, cell)
			}
		})
	}
	return cal, nil
}

// OccupancyOn 指定日期被占用的房间数
func (c *Calendar) OccupancyOn(day string) int {
	n := 0
	for _, row := range c.Rows {
		for _, cell := range row.Cells {
			if cell.Date == day {
				n++
				break
			}
		}
	}
	return n
}

// statusOf 房间当前房态名称
func statusOf(r *models.Room) string {
	if r.Status == nil {
		return ""
	}
	return r.Status.Name
}
