// Package report 提供营业汇总、CSV 导出、住宿凭证和报表归档
package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/qrcode"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/utils"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/repository"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/service/settings"
	"github.com/dumeirei/hotel-frontdesk-backend/pkg/oss"
)

// Service 报表服务
type Service struct {
	db          *gorm.DB
	paymentRepo *repository.PaymentRepository
	stayRepo    *repository.StayRepository
	historyRepo *repository.RoomHistoryRepository
	roomRepo    *repository.RoomRepository
	settingsSvc *settings.Service
	store       oss.Store
	qr          *qrcode.Generator
	loc         *time.Location
}

// NewService 创建报表服务，store 为空时不归档
func NewService(db *gorm.DB, settingsSvc *settings.Service, store oss.Store, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		db:          db,
		paymentRepo: repository.NewPaymentRepository(db),
		stayRepo:    repository.NewStayRepository(db),
		historyRepo: repository.NewRoomHistoryRepository(db),
		roomRepo:    repository.NewRoomRepository(db),
		settingsSvc: settingsSvc,
		store:       store,
		qr:          qrcode.NewGenerator(qrcode.WithHighRecovery()),
		loc:         loc,
	}
}

// Range 报表日期区间，两端都包含
type Range struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to" binding:"required"`
}

// parse 解析为日期 [from, to+1)
func (r *Range) parse() (from, to time.Time, err error) {
	from, err = utils.ParseDate(r.From)
	if err != nil {
		return from, to, errors.ErrInvalidDates.WithMessage("Fecha inicial inválida")
	}
	to, err = utils.ParseDate(r.To)
	if err != nil {
		return from, to, errors.ErrInvalidDates.WithMessage("Fecha final inválida")
	}
	if to.Before(from) {
		return from, to, errors.ErrInvalidDates
	}
	return from, to.AddDate(0, 0, 1), nil
}

// instants 日期区间换算为酒店时区的时间点
func (s *Service) instants(from, to time.Time) (time.Time, time.Time) {
	return s.startOf(from), s.startOf(to)
}

func (s *Service) startOf(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc).UTC()
}

// GroupTotal 分组金额
type GroupTotal struct {
	Key    string          `json:"key"`
	Amount decimal.Decimal `json:"amount"`
	Count  int64           `json:"count"`
}

// Summary 营业汇总
type Summary struct {
	From          string           `json:"from"`
	To            string           `json:"to"`
	TotalIncome   decimal.Decimal  `json:"total_income"`
	PaymentCount  int64            `json:"payment_count"`
	ByMethod      []GroupTotal     `json:"by_method"`
	ByType        []GroupTotal     `json:"by_type"`
	StaysByStatus map[string]int64 `json:"stays_by_status"`
	NightsSold    int64            `json:"nights_sold"`
	RoomsByStatus map[string]int64 `json:"rooms_by_status"`
}

// Summary 区间收入、住宿和间夜统计
func (s *Service) Summary(ctx context.Context, r *Range) (*Summary, error) {
	from, to, err := r.parse()
	if err != nil {
		return nil, err
	}
	paidFrom, paidTo := s.instants(from, to)
	filter := repository.PaymentFilter{From: &paidFrom, To: &paidTo}

	summary := &Summary{From: r.From, To: r.To}

	// 1. 收入
	if summary.TotalIncome, err = s.paymentRepo.SumAmount(ctx, filter); err != nil {
		return nil, errors.FromDB(err)
	}
	byMethod, err := s.paymentRepo.SumByMethod(ctx, filter)
	if err != nil {
		return nil, errors.FromDB(err)
	}
	byType, err := s.paymentRepo.SumByType(ctx, filter)
	if err != nil {
		return nil, errors.FromDB(err)
	}
	summary.ByMethod = groups(byMethod)
	summary.ByType = groups(byType)
	for _, g := range summary.ByType {
		summary.PaymentCount += g.Count
	}

	// 2. 住宿
	if summary.StaysByStatus, err = s.stayRepo.CountByStatus(ctx, from, to); err != nil {
		return nil, errors.FromDB(err)
	}
	if summary.NightsSold, err = s.stayRepo.SumNights(ctx, from, to); err != nil {
		return nil, errors.FromDB(err)
	}

	// 3. 当前房态
	if summary.RoomsByStatus, err = s.roomRepo.CountByStatus(ctx); err != nil {
		return nil, errors.FromDB(err)
	}
	return summary, nil
}

func groups(rows []repository.AmountGroup) []GroupTotal {
	out := make([]GroupTotal, 0, len(rows))
	for _, g := range rows {
		out = append(out, GroupTotal{Key: g.Key, Amount: g.Amount, Count: g.Count})
	}
	return out
}
