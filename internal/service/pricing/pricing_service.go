package pricing

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/utils"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/repository"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/service/settings"
)

// Service 计价服务
type Service struct {
	roomRepo    *repository.RoomRepository
	typeRepo    *repository.AccommodationTypeRepository
	settingsSvc *settings.Service
}

// NewService 创建计价服务
func NewService(db *gorm.DB, settingsSvc *settings.Service) *Service {
	return &Service{
		roomRepo:    repository.NewRoomRepository(db),
		typeRepo:    repository.NewAccommodationTypeRepository(db),
		settingsSvc: settingsSvc,
	}
}

// Target 计价对象，房间与整套住宿二选一
type Target struct {
	Room *models.Room
	Type *models.AccommodationType
}

// RoomID 房间 ID，整套住宿时为空
func (t *Target) RoomID() *int64 {
	if t.Room == nil {
		return nil
	}
	return &t.Room.ID
}

// AccommodationTypeID 整套住宿 ID，房间时为空
func (t *Target) AccommodationTypeID() *int64 {
	if t.Type == nil || t.Room != nil {
		return nil
	}
	return &t.Type.ID
}

// Capacity 可容纳人数，0 表示未限制
func (t *Target) Capacity() int {
	if t.Room != nil {
		return t.Room.Capacity()
	}
	return t.Type.Capacity
}

// Label 用于日志和通知的名称
func (t *Target) Label() string {
	if t.Room != nil {
		return "Habitación " + t.Room.Number
	}
	return t.Type.Name
}

// LoadTarget 加载计价对象及其价格档
func (s *Service) LoadTarget(ctx context.Context, roomID, typeID *int64) (*Target, error) {
	switch {
	case roomID != nil && typeID != nil:
		return nil, errors.ErrInvalidParams.WithMessage("Indique habitación o tipo de alojamiento, no ambos")
	case roomID != nil:
		room, err := s.roomRepo.GetByIDWithDetails(ctx, *roomID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.ErrRoomNotFound
			}
			return nil, errors.FromDB(err)
		}
		if !room.IsActive {
			return nil, errors.ErrRoomInactive
		}
		return &Target{Room: room, Type: room.AccommodationType}, nil
	case typeID != nil:
		t, err := s.typeRepo.GetByID(ctx, *typeID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.ErrAccommodationTypeNotFound
			}
			return nil, errors.FromDB(err)
		}
		if !t.IsActive {
			return nil, errors.ErrRoomInactive
		}
		// 只有整体出租的类型可直接预订，普通类型须指定房间
		if !t.IsWholeUnit {
			return nil, errors.ErrTypeNotWholeUnit
		}
		return &Target{Type: t}, nil
	default:
		return nil, errors.ErrStayTargetRequired
	}
}

// Params 计价参数
type Params struct {
	PersonCount      int
	MattressCount    int
	CheckIn          time.Time
	CheckOut         *time.Time
	InvoiceRequested bool
	Discount         *decimal.Decimal
}

// BuildInput 根据对象与设置组装计价输入
func BuildInput(target *Target, st *models.Setting, p Params) Input {
	in := Input{
		PersonCount:      p.PersonCount,
		MattressCount:    p.MattressCount,
		CheckIn:          p.CheckIn,
		CheckOut:         p.CheckOut,
		InvoiceRequested: p.InvoiceRequested,
		Discount:         p.Discount,
		Settings:         SettingsFrom(st),
	}
	if target.Type != nil {
		in.Category = target.Type.Category
	}
	if target.Room != nil {
		in.Tiers = TiersFromRoom(target.Room)
	} else if target.Type != nil && target.Type.Price.IsPositive() {
		price := target.Type.Price
		in.UnitPrice = &price
	}
	return in
}

// Estimate 计算对象的报价，使用兜底价时记录告警
func Estimate(target *Target, st *models.Setting, p Params) (*Quote, error) {
	q, err := Calculate(BuildInput(target, st, p))
	if err != nil {
		return nil, err
	}
	if q.UsedFallback {
		logger.Warn("no rate tier matched, fallback rate applied",
			logger.String("target", target.Label()),
			logger.Int("person_count", p.PersonCount),
			logger.String("rate", q.Rate.String()),
		)
	}
	return q, nil
}

// QuoteRequest 报价请求
type QuoteRequest struct {
	RoomID              *int64           `json:"room_id"`
	AccommodationTypeID *int64           `json:"accommodation_type_id"`
	CheckInDate         string           `json:"check_in_date" binding:"required"`
	CheckOutDate        string           `json:"check_out_date"`
	PersonCount         int              `json:"person_count" binding:"required,min=1"`
	MattressCount       int              `json:"mattress_count" binding:"min=0"`
	InvoiceRequested    bool             `json:"invoice_requested"`
	Discount            *decimal.Decimal `json:"discount"`
}

// Quote 报价
func (s *Service) Quote(ctx context.Context, req *QuoteRequest) (*Quote, error) {
	p, err := req.params()
	if err != nil {
		return nil, err
	}
	// 先校验再查库
	if err := (Input{PersonCount: p.PersonCount, MattressCount: p.MattressCount, CheckIn: p.CheckIn,
		CheckOut: p.CheckOut, Discount: p.Discount}).Validate(); err != nil {
		return nil, err
	}

	target, err := s.LoadTarget(ctx, req.RoomID, req.AccommodationTypeID)
	if err != nil {
		return nil, err
	}
	st, err := s.settingsSvc.Get(ctx)
	if err != nil {
		return nil, err
	}
	return Estimate(target, st, p)
}

func (req *QuoteRequest) params() (Params, error) {
	p := Params{
		PersonCount:      req.PersonCount,
		MattressCount:    req.MattressCount,
		InvoiceRequested: req.InvoiceRequested,
		Discount:         req.Discount,
	}
	ci, err := utils.ParseDate(req.CheckInDate)
	if err != nil {
		return p, errors.ErrInvalidDates.WithMessage("Fecha de ingreso inválida")
	}
	p.CheckIn = ci
	if req.CheckOutDate != "" {
		co, err := utils.ParseDate(req.CheckOutDate)
		if err != nil {
			return p, errors.ErrInvalidDates.WithMessage("Fecha de salida inválida")
		}
		p.CheckOut = &co
	}
	return p, nil
}
