package room

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/repository"
)

// Service 房间与住宿类型管理服务
type Service struct {
	db          *gorm.DB
	roomRepo    *repository.RoomRepository
	typeRepo    *repository.AccommodationTypeRepository
	statusRepo  *repository.RoomStatusRepository
	historyRepo *repository.RoomHistoryRepository
	stayRepo    *repository.StayRepository
	empRepo     *repository.EmployeeRepository
}

// NewService 创建房间服务
func NewService(db *gorm.DB) *Service {
	return &Service{
		db:          db,
		roomRepo:    repository.NewRoomRepository(db),
		typeRepo:    repository.NewAccommodationTypeRepository(db),
		statusRepo:  repository.NewRoomStatusRepository(db),
		historyRepo: repository.NewRoomHistoryRepository(db),
		stayRepo:    repository.NewStayRepository(db),
		empRepo:     repository.NewEmployeeRepository(db),
	}
}

// RateInput 分档价格
type RateInput struct {
	PersonCount int             `json:"person_count" binding:"required,min=1"`
	Price       decimal.Decimal `json:"price" binding:"required"`
}

// CreateRoomRequest 创建房间请求
type CreateRoomRequest struct {
	Number              string      `json:"number" binding:"required,max=20"`
	AccommodationTypeID int64       `json:"accommodation_type_id" binding:"required"`
	Floor               *int        `json:"floor"`
	DoubleBeds          int         `json:"double_beds" binding:"min=0"`
	SingleBeds          int         `json:"single_beds" binding:"min=0"`
	Description         *string     `json:"description"`
	Rates               []RateInput `json:"rates" binding:"dive"`
}

// UpdateRoomRequest 更新房间请求
type UpdateRoomRequest struct {
	Number              *string `json:"number" binding:"omitempty,max=20"`
	AccommodationTypeID *int64  `json:"accommodation_type_id"`
	Floor               *int    `json:"floor"`
	DoubleBeds          *int    `json:"double_beds" binding:"omitempty,min=0"`
	SingleBeds          *int    `json:"single_beds" binding:"omitempty,min=0"`
	Description         *string `json:"description"`
	IsActive            *bool   `json:"is_active"`
}

// validateRates 校验分档：人数不重复、价格为正
func validateRates(rates []RateInput) ([]models.RoomRate, error) {
	seen := make(map[int]bool, len(rates))
	out := make([]models.RoomRate, 0, len(rates))
	for _, r := range rates {
		if r.PersonCount < 1 || !r.Price.IsPositive() {
			return nil, errors.ErrInvalidRateTier
		}
		if seen[r.PersonCount] {
			return nil, errors.ErrInvalidRateTier.WithMessage("Tarifa duplicada para la misma cantidad de personas")
		}
		seen[r.PersonCount] = true
		out = append(out, models.RoomRate{PersonCount: r.PersonCount, Price: r.Price})
	}
	return out, nil
}

// ListRooms 分页获取房间列表
func (s *Service) ListRooms(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Room, int64, error) {
	list, total, err := s.roomRepo.List(ctx, offset, limit, filters)
	if err != nil {
		if errors.IsCanceled(err) {
			return []*models.Room{}, 0, nil
		}
		return nil, 0, errors.FromDB(err)
	}
	return list, total, nil
}

// GetRoom 获取房间详情
func (s *Service) GetRoom(ctx context.Context, id int64) (*models.Room, error) {
	room, err := s.roomRepo.GetByIDWithDetails(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrRoomNotFound
		}
		return nil, errors.FromDB(err)
	}
	return room, nil
}

// CreateRoom 创建房间，初始房态为 Disponible
func (s *Service) CreateRoom(ctx context.Context, req *CreateRoomRequest) (*models.Room, error) {
	rates, err := validateRates(req.Rates)
	if err != nil {
		return nil, err
	}

	exists, err := s.roomRepo.ExistsByNumber(ctx, req.Number, 0)
	if err != nil {
		return nil, errors.FromDB(err)
	}
	if exists {
		return nil, errors.ErrRoomNumberExists
	}
	if _, err := s.typeRepo.GetByID(ctx, req.AccommodationTypeID); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrAccommodationTypeNotFound
		}
		return nil, errors.FromDB(err)
	}
	available, err := s.statusRepo.GetByName(ctx, models.RoomStatusAvailable)
	if err != nil {
		return nil, errors.FromDB(err)
	}

	room := &models.Room{
		Number:              req.Number,
		AccommodationTypeID: req.AccommodationTypeID,
		Floor:               req.Floor,
		DoubleBeds:          req.DoubleBeds,
		SingleBeds:          req.SingleBeds,
		Description:         req.Description,
		StatusID:            available.ID,
		StatusDate:          time.Now(),
		IsActive:            true,
		Rates:               rates,
	}
	if err := s.roomRepo.Create(ctx, room); err != nil {
		return nil, errors.FromDB(err)
	}

	logger.Info("room created", logger.RoomID(room.ID), logger.String("number", room.Number))
	return s.GetRoom(ctx, room.ID)
}

// UpdateRoom 更新房间基本信息
func (s *Service) UpdateRoom(ctx context.Context, id int64, req *UpdateRoomRequest) (*models.Room, error) {
	if _, err := s.GetRoom(ctx, id); err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if req.Number != nil {
		exists, err := s.roomRepo.ExistsByNumber(ctx, *req.Number, id)
		if err != nil {
			return nil, errors.FromDB(err)
		}
		if exists {
			return nil, errors.ErrRoomNumberExists
		}
		fields["number"] = *req.Number
	}
	if req.AccommodationTypeID != nil {
		if _, err := s.typeRepo.GetByID(ctx, *req.AccommodationTypeID); err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.ErrAccommodationTypeNotFound
			}
			return nil, errors.FromDB(err)
		}
		fields["accommodation_type_id"] = *req.AccommodationTypeID
	}
	if req.Floor != nil {
		fields["floor"] = *req.Floor
	}
	if req.DoubleBeds != nil {
		fields["double_beds"] = *req.DoubleBeds
	}
	if req.SingleBeds != nil {
		fields["single_beds"] = *req.SingleBeds
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.IsActive != nil {
		if !*req.IsActive {
			return s.DeactivateRoom(ctx, id)
		}
		fields["is_active"] = true
	}

	if len(fields) > 0 {
		if err := s.roomRepo.UpdateFields(ctx, id, fields); err != nil {
			return nil, errors.FromDB(err)
		}
	}
	return s.GetRoom(ctx, id)
}

// ReplaceRates 整体替换房间分档价格
func (s *Service) ReplaceRates(ctx context.Context, id int64, req []RateInput) (*models.Room, error) {
	rates, err := validateRates(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetRoom(ctx, id); err != nil {
		return nil, err
	}
	if err := s.roomRepo.ReplaceRates(ctx, id, rates); err != nil {
		return nil, errors.FromDB(err)
	}
	return s.GetRoom(ctx, id)
}

// DeactivateRoom 停用房间，有未结束的预订或入住时拒绝
func (s *Service) DeactivateRoom(ctx context.Context, id int64) (*models.Room, error) {
	room, err := s.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	holders, err := s.stayRepo.CountOtherHolders(ctx, &room.ID, nil, 0)
	if err != nil {
		return nil, errors.FromDB(err)
	}
	if holders > 0 {
		return nil, errors.ErrRoomOccupied.WithMessage("La habitación tiene reservas o estadías abiertas")
	}
	if err := s.roomRepo.UpdateFields(ctx, id, map[string]interface{}{"is_active": false}); err != nil {
		return nil, errors.FromDB(err)
	}
	logger.Info("room deactivated", logger.RoomID(id))
	room.IsActive = false
	return room, nil
}

// ListStatuses 房态目录
func (s *Service) ListStatuses(ctx context.Context) ([]*models.RoomStatus, error) {
	list, err := s.statusRepo.List(ctx)
	if err != nil {
		return nil, errors.FromDB(err)
	}
	return list, nil
}

// CreateTypeRequest 创建住宿类型请求
type CreateTypeRequest struct {
	Name        string          `json:"name" binding:"required,max=100"`
	Category    string          `json:"category" binding:"omitempty,max=50"`
	Price       decimal.Decimal `json:"price"`
	IsWholeUnit bool            `json:"is_whole_unit"`
	Capacity    int             `json:"capacity" binding:"min=0"`
	Description *string         `json:"description"`
}

// UpdateTypeRequest 更新住宿类型请求
type UpdateTypeRequest struct {
	Name        *string          `json:"name" binding:"omitempty,max=100"`
	Category    *string          `json:"category" binding:"omitempty,max=50"`
	Price       *decimal.Decimal `json:"price"`
	IsWholeUnit *bool            `json:"is_whole_unit"`
	Capacity    *int             `json:"capacity" binding:"omitempty,min=0"`
	Description *string          `json:"description"`
	IsActive    *bool            `json:"is_active"`
}

// ListTypes 住宿类型列表
func (s *Service) ListTypes(ctx context.Context, onlyActive bool) ([]*models.AccommodationType, error) {
	list, err := s.typeRepo.List(ctx, onlyActive)
	if err != nil {
		return nil, errors.FromDB(err)
	}
	return list, nil
}

// CreateType 创建住宿类型
func (s *Service) CreateType(ctx context.Context, req *CreateTypeRequest) (*models.AccommodationType, error) {
	if req.Price.IsNegative() {
		return nil, errors.ErrInvalidAmount
	}
	exists, err := s.typeRepo.ExistsByName(ctx, req.Name, 0)
	if err != nil {
		return nil, errors.FromDB(err)
	}
	if exists {
		return nil, errors.ErrAlreadyExists.WithMessage("El tipo de alojamiento ya existe")
	}
	available, err := s.statusRepo.GetByName(ctx, models.RoomStatusAvailable)
	if err != nil {
		return nil, errors.FromDB(err)
	}

	category := req.Category
	if category == "" {
		category = models.CategoryHotel
	}
	t := &models.AccommodationType{
		Name:        req.Name,
		Category:    category,
		Price:       req.Price,
		IsWholeUnit: req.IsWholeUnit,
		Capacity:    req.Capacity,
		Description: req.Description,
		StatusID:    available.ID,
		StatusDate:  time.Now(),
		IsActive:    true,
	}
	if err := s.typeRepo.Create(ctx, t); err != nil {
		return nil, errors.FromDB(err)
	}
	return s.typeRepo.GetByID(ctx, t.ID)
}

// UpdateType 更新住宿类型
func (s *Service) UpdateType(ctx context.Context, id int64, req *UpdateTypeRequest) (*models.AccommodationType, error) {
	if _, err := s.typeRepo.GetByID(ctx, id); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrAccommodationTypeNotFound
		}
		return nil, errors.FromDB(err)
	}

	fields := make(map[string]interface{})
	if req.Name != nil {
		exists, err := s.typeRepo.ExistsByName(ctx, *req.Name, id)
		if err != nil {
			return nil, errors.FromDB(err)
		}
		if exists {
			return nil, errors.ErrAlreadyExists.WithMessage("El tipo de alojamiento ya existe")
		}
		fields["name"] = *req.Name
	}
	if req.Category != nil {
		fields["category"] = *req.Category
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, errors.ErrInvalidAmount
		}
		fields["price"] = *req.Price
	}
	if req.IsWholeUnit != nil {
		fields["is_whole_unit"] = *req.IsWholeUnit
	}
	if req.Capacity != nil {
		fields["capacity"] = *req.Capacity
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.IsActive != nil {
		if !*req.IsActive {
			holders, err := s.stayRepo.CountOtherHolders(ctx, nil, &id, 0)
			if err != nil {
				return nil, errors.FromDB(err)
			}
			if holders > 0 {
				return nil, errors.ErrRoomOccupied.WithMessage("El alojamiento tiene reservas o estadías abiertas")
			}
		}
		fields["is_active"] = *req.IsActive
	}

	if len(fields) > 0 {
		if err := s.typeRepo.UpdateFields(ctx, id, fields); err != nil {
			return nil, errors.FromDB(err)
		}
	}
	return s.typeRepo.GetByID(ctx, id)
}
