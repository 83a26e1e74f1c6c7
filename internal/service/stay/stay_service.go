// Package stay 提供住宿状态机：预订、入住、收款、退房、取消与改价
package stay

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/metrics"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/tracing"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/utils"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/repository"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/service/availability"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/service/guest"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/service/payment"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/service/pricing"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/service/room"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/service/settings"
)

// Service 住宿服务
type Service struct {
	db          *gorm.DB
	stayRepo    *repository.StayRepository
	pricingSvc  *pricing.Service
	settingsSvc *settings.Service
	loc         *time.Location
	now         func() time.Time
}

// NewService 创建住宿服务
func NewService(db *gorm.DB, pricingSvc *pricing.Service, settingsSvc *settings.Service, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		db:          db,
		stayRepo:    repository.NewStayRepository(db),
		pricingSvc:  pricingSvc,
		settingsSvc: settingsSvc,
		loc:         loc,
		now:         time.Now,
	}
}

// today 业务时区的今天
func (s *Service) today() time.Time {
	return utils.DateOnly(s.now().In(s.loc))
}

// Actor 操作员工
type Actor struct {
	EmployeeID int64
	Role       string
}

func (a Actor) employeeID() *int64 {
	if a.EmployeeID == 0 {
		return nil
	}
	id := a.EmployeeID
	return &id
}

// PaymentInput 随操作一起登记的收款
type PaymentInput struct {
	Amount          decimal.Decimal `json:"amount"`
	PaymentMethodID int64           `json:"payment_method_id" binding:"required"`
}

// CreateRequest 预订或直接入住请求
type CreateRequest struct {
	Guest               guest.Input   `json:"guest" binding:"required"`
	RoomID              *int64        `json:"room_id"`
	AccommodationTypeID *int64        `json:"accommodation_type_id"`
	CheckInDate         string        `json:"check_in_date" binding:"required"`
	CheckOutDate        string        `json:"check_out_date" binding:"required"`
	PersonCount         int           `json:"person_count" binding:"required,min=1"`
	MattressCount       int           `json:"mattress_count" binding:"min=0"`
	InvoiceRequested    bool          `json:"invoice_requested"`
	Notes               *string       `json:"notes" binding:"omitempty,max=1000"`
	Payment             *PaymentInput `json:"payment"`
}

// createMode 新建住宿的两种入口
type createMode struct {
	transition      string
	stayStatus      string
	action          string
	roomStatus      string
	onlyFrom        []string
	paymentContext  string
	fromReservation bool
}

var (
	reservationMode = createMode{
		transition:      "reservation",
		stayStatus:      models.StayStatusReserved,
		action:          models.ActionReservation,
		roomStatus:      models.RoomStatusReserved,
		onlyFrom:        []string{models.RoomStatusAvailable},
		paymentContext:  models.PaymentContextReservation,
		fromReservation: true,
	}
	directCheckInMode = createMode{
		transition:     "check_in_direct",
		stayStatus:     models.StayStatusActive,
		action:         models.ActionCheckIn,
		roomStatus:     models.RoomStatusOccupied,
		paymentContext: models.PaymentContextDirect,
	}
)

// CreateReservation 新建预订
func (s *Service) CreateReservation(ctx context.Context, req *CreateRequest, actor Actor) (*models.Stay, error) {
	return s.create(ctx, req, actor, reservationMode)
}

// CheckInDirect 无预订直接入住
func (s *Service) CheckInDirect(ctx context.Context, req *CreateRequest, actor Actor) (*models.Stay, error) {
	return s.create(ctx, req, actor, directCheckInMode)
}

func (s *Service) create(ctx context.Context, req *CreateRequest, actor Actor, mode createMode) (*models.Stay, error) {
	ctx, span := tracing.GetTracer().StartSpan(ctx, "stay."+mode.transition,
		tracing.WithOperation(mode.transition), tracing.WithEmployeeID(actor.EmployeeID))
	defer span.End()

	// 1. 日期
	checkIn, err := utils.ParseDate(req.CheckInDate)
	if err != nil {
		return nil, s.fail(ctx, errors.ErrInvalidDates.WithMessage("Fecha de ingreso inválida"))
	}
	checkOut, err := utils.ParseDate(req.CheckOutDate)
	if err != nil {
		return nil, s.fail(ctx, errors.ErrInvalidDates.WithMessage("Fecha de salida inválida"))
	}
	if !checkOut.After(checkIn) {
		return nil, s.fail(ctx, errors.ErrInvalidDates.WithMessage("La fecha de salida debe ser posterior al ingreso"))
	}
	today := s.today()
	if mode.stayStatus == models.StayStatusActive && checkIn.After(today) {
		return nil, s.fail(ctx, errors.ErrCheckInDateInFuture)
	}
	if mode.stayStatus == models.StayStatusReserved && checkIn.Before(today) {
		return nil, s.fail(ctx, errors.ErrInvalidDates.WithMessage("La fecha de ingreso no puede estar en el pasado"))
	}

	// 2. 对象、设置与报价（事务外读取）
	target, err := s.pricingSvc.LoadTarget(ctx, req.RoomID, req.AccommodationTypeID)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	if capacity := target.Capacity(); capacity > 0 && req.PersonCount > capacity+req.MattressCount {
		return nil, s.fail(ctx, errors.ErrCapacityExceeded.WithMessage(
			fmt.Sprintf("%s admite %d personas más colchonetas", target.Label(), capacity)))
	}
	st, err := s.settingsSvc.Get(ctx)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	quote, err := pricing.Estimate(target, st, pricing.Params{
		PersonCount:      req.PersonCount,
		MattressCount:    req.MattressCount,
		CheckIn:          checkIn,
		CheckOut:         &checkOut,
		InvoiceRequested: req.InvoiceRequested,
	})
	if err != nil {
		return nil, s.fail(ctx, err)
	}

	statusTarget := room.Target{RoomID: target.RoomID(), AccommodationTypeID: target.AccommodationTypeID()}
	checkTarget := availability.Target{RoomID: target.RoomID(), AccommodationTypeID: target.AccommodationTypeID()}

	var stayID int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 3. 冲突检查
		if err := ensureAvailable(ctx, tx, checkTarget, checkIn, checkOut, 0); err != nil {
			return err
		}
		if mode.stayStatus == models.StayStatusActive {
			if err := ensureReadyForCheckIn(ctx, tx, statusTarget, 0, checkIn, checkOut); err != nil {
				return err
			}
		}

		// 4. 客人与住宿
		g, err := guest.Upsert(ctx, tx, req.Guest)
		if err != nil {
			return err
		}
		stayRepo := repository.NewStayRepository(tx)
		orderNumber, err := stayRepo.NextOrderNumber(ctx)
		if err != nil {
			return err
		}
		now := s.now()
		stay := &models.Stay{
			OrderNumber:         orderNumber,
			GuestID:             g.ID,
			EmployeeID:          actor.employeeID(),
			RoomID:              statusTarget.RoomID,
			AccommodationTypeID: statusTarget.AccommodationTypeID,
			CheckInDate:         checkIn,
			CheckOutDate:        checkOut,
			Status:              mode.stayStatus,
			IsActive:            true,
			TotalPrice:          quote.FinalTotal,
			IVAPercentage:       quote.IVAPercentage,
			IVAAmount:           quote.IVA,
			PersonCount:         req.PersonCount,
			MattressCount:       req.MattressCount,
			MattressUnitPrice:   st.MattressPrice,
			Nights:              quote.Nights,
			InvoiceRequested:    req.InvoiceRequested,
			FromReservation:     mode.fromReservation,
			Notes:               req.Notes,
		}
		if mode.stayStatus == models.StayStatusActive {
			stay.CheckedInAt = &now
		}
		if err := stayRepo.Create(ctx, stay); err != nil {
			return err
		}
		stayID = stay.ID

		// 5. 首笔收款
		observation := fmt.Sprintf("%s %s de %s del %s al %s", actionLabel(mode.action),
			utils.FormatOrderNumber(orderNumber), g.FullName(), utils.FormatDate(checkIn), utils.FormatDate(checkOut))
		if req.Payment != nil {
			p, err := payment.Register(ctx, tx, stay, payment.RegisterInput{
				Amount:          req.Payment.Amount,
				PaymentMethodID: req.Payment.PaymentMethodID,
				EmployeeID:      actor.employeeID(),
				Context:         mode.paymentContext,
				Today:           today,
				PaidAt:          now,
			})
			if err != nil {
				return err
			}
			observation = joinObservation(observation, p.Observation)
		}

		// 6. 房态与日志
		if _, err := room.ChangeStatus(ctx, tx, room.Change{
			Target:      statusTarget,
			Status:      mode.roomStatus,
			Action:      mode.action,
			EmployeeID:  actor.employeeID(),
			StayID:      &stay.ID,
			Observation: observation,
			OnlyFrom:    mode.onlyFrom,
		}); err != nil {
			return err
		}

		// 7. 预订确认短信
		if mode.stayStatus == models.StayStatusReserved {
			return writeOutbox(ctx, tx, models.TopicStayReserved, stay, models.JSON{
				"order_number":  utils.FormatOrderNumber(orderNumber),
				"guest_name":    g.FullName(),
				"phone":         utils.SafeString(g.Phone),
				"accommodation": target.Label(),
				"check_in":      utils.FormatDate(checkIn),
				"check_out":     utils.FormatDate(checkOut),
				"total":         utils.FormatMoney(stay.TotalPrice),
			})
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, errors.FromDB(err))
	}

	s.succeed(mode.transition, stayID, actor)
	return s.Get(ctx, stayID)
}

// CheckInRequest 预订转入住请求
type CheckInRequest struct {
	Payment *PaymentInput `json:"payment"`
	Notes   string        `json:"notes" binding:"max=1000"`
}

// CheckInReservation 预订转入住，要求已付清
func (s *Service) CheckInReservation(ctx context.Context, stayID int64, req *CheckInRequest, actor Actor) (*models.Stay, error) {
	ctx, span := tracing.GetTracer().StartSpan(ctx, "stay.check_in_reservation",
		tracing.WithStayID(stayID), tracing.WithEmployeeID(actor.EmployeeID))
	defer span.End()

	today := s.today()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stay, err := loadStay(ctx, tx, stayID)
		if err != nil {
			return err
		}
		if stay.Status != models.StayStatusReserved {
			return errors.ErrStayInvalidTransition
		}
		if stay.CheckInDate.After(today) {
			return errors.ErrCheckInDateInFuture.WithMessage("La reserva aún no llega a su fecha de ingreso")
		}

		// 1. 可选的入住收款，失败时一并回滚
		observation := "Check-in de la reserva " + utils.FormatOrderNumber(stay.OrderNumber)
		if req.Payment != nil {
			p, err := payment.Register(ctx, tx, stay, payment.RegisterInput{
				Amount:          req.Payment.Amount,
				PaymentMethodID: req.Payment.PaymentMethodID,
				EmployeeID:      actor.employeeID(),
				Context:         models.PaymentContextCalendar,
				Today:           today,
			})
			if err != nil {
				return err
			}
			observation = joinObservation(observation, p.Observation)
		}

		// 2. 付清校验
		if !stay.CanCheckIn() {
			return errors.ErrStayNotFullyPaid.WithMessage(
				"Saldo pendiente de " + utils.FormatMoney(stay.PendingBalance()))
		}
		if err := ensureReadyForCheckIn(ctx, tx, targetOf(stay), stay.ID, stay.CheckInDate, stay.CheckOutDate); err != nil {
			return err
		}

		return s.activate(ctx, tx, stay, actor, joinObservation(observation, req.Notes))
	})
	if err != nil {
		return nil, s.fail(ctx, errors.FromDB(err))
	}

	s.succeed("check_in_reservation", stayID, actor)
	return s.Get(ctx, stayID)
}

// activate 预订转为入住并将房态置为 Ocupado
func (s *Service) activate(ctx context.Context, tx *gorm.DB, stay *models.Stay, actor Actor, observation string) error {
	now := s.now()
	ok, err := repository.NewStayRepository(tx).TransitionStatus(ctx, stay.ID, models.StayStatusReserved, map[string]interface{}{
		"status":        models.StayStatusActive,
		"checked_in_at": now,
	})
	if err != nil {
		return err
	}
	if !ok {
		return errors.ErrStayInvalidTransition
	}
	stay.Status = models.StayStatusActive
	stay.CheckedInAt = &now

	_, err = room.ChangeStatus(ctx, tx, room.Change{
		Target:      targetOf(stay),
		Status:      models.RoomStatusOccupied,
		Action:      models.ActionCheckInReservation,
		EmployeeID:  actor.employeeID(),
		StayID:      &stay.ID,
		Observation: observation,
	})
	return err
}

// PaymentResult 收款结果
type PaymentResult struct {
	Payment   *models.Payment `json:"payment"`
	Stay      *models.Stay    `json:"stay"`
	Activated bool            `json:"activated"`
}

// RegisterPayment 为预订或在住登记收款。预订付清且已到入住日时自动转为入住
func (s *Service) RegisterPayment(ctx context.Context, stayID int64, req *PaymentInput, actor Actor) (*PaymentResult, error) {
	ctx, span := tracing.GetTracer().StartSpan(ctx, "stay.register_payment",
		tracing.WithStayID(stayID), tracing.WithEmployeeID(actor.EmployeeID))
	defer span.End()

	today := s.today()
	result := &PaymentResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stay, err := loadStay(ctx, tx, stayID)
		if err != nil {
			return err
		}
		paymentContext := models.PaymentContextCalendar
		if !stay.FromReservation {
			paymentContext = models.PaymentContextDirect
		}
		p, err := payment.Register(ctx, tx, stay, payment.RegisterInput{
			Amount:          req.Amount,
			PaymentMethodID: req.PaymentMethodID,
			EmployeeID:      actor.employeeID(),
			Context:         paymentContext,
			Today:           today,
		})
		if err != nil {
			return err
		}
		result.Payment = p

		if stay.Status != models.StayStatusReserved {
			return nil
		}

		// 付清且已到入住日，且房间空闲时自动入住
		if stay.CanCheckIn() && !stay.CheckInDate.After(today) {
			ready := ensureReadyForCheckIn(ctx, tx, targetOf(stay), stay.ID, stay.CheckInDate, stay.CheckOutDate)
			if ready == nil {
				result.Activated = true
				observation := joinObservation("Check-in de la reserva "+utils.FormatOrderNumber(stay.OrderNumber), p.Observation)
				return s.activate(ctx, tx, stay, actor, observation)
			}
			if !errors.IsAppError(ready) {
				return ready
			}
			logger.Warn("reservation paid but target not ready, check-in postponed",
				logger.StayID(stay.ID), logger.Err(ready))
		}

		// 其余情况只记录预订收款日志
		_, err = room.ChangeStatus(ctx, tx, room.Change{
			Target:      targetOf(stay),
			Action:      models.ActionReservationPayment,
			EmployeeID:  actor.employeeID(),
			StayID:      &stay.ID,
			Observation: p.Observation,
		})
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, errors.FromDB(err))
	}

	if result.Activated {
		s.succeed("check_in_reservation", stayID, actor)
	}
	stay, err := s.Get(ctx, stayID)
	if err != nil {
		return nil, err
	}
	result.Stay = stay
	return result, nil
}

// CheckOutRequest 退房请求
type CheckOutRequest struct {
	Payment *PaymentInput `json:"payment"`
	Notes   string        `json:"notes" binding:"max=1000"`
}

// CheckOut 退房：可先登记尾款，要求余额为 0，房态按设置置为 Limpieza 或 Disponible
func (s *Service) CheckOut(ctx context.Context, stayID int64, req *CheckOutRequest, actor Actor) (*models.Stay, error) {
	ctx, span := tracing.GetTracer().StartSpan(ctx, "stay.check_out",
		tracing.WithStayID(stayID), tracing.WithEmployeeID(actor.EmployeeID))
	defer span.End()

	st, err := s.settingsSvc.Get(ctx)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	nextStatus := st.CheckoutRoomStatus
	if nextStatus == "" {
		nextStatus = models.RoomStatusCleaning
	}

	today := s.today()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stay, err := loadStay(ctx, tx, stayID)
		if err != nil {
			return err
		}
		if stay.Status != models.StayStatusActive {
			return errors.ErrStayInvalidTransition
		}

		// 1. 尾款
		observation := "Check-out de la estadía " + utils.FormatOrderNumber(stay.OrderNumber)
		if req.Payment != nil {
			paymentContext := models.PaymentContextCalendar
			if !stay.FromReservation {
				paymentContext = models.PaymentContextDirect
			}
			p, err := payment.Register(ctx, tx, stay, payment.RegisterInput{
				Amount:          req.Payment.Amount,
				PaymentMethodID: req.Payment.PaymentMethodID,
				EmployeeID:      actor.employeeID(),
				Context:         paymentContext,
				Today:           today,
			})
			if err != nil {
				return err
			}
			observation = joinObservation(observation, p.Observation)
		}
		if stay.PendingBalance().IsPositive() {
			return errors.ErrStayBalancePending.WithMessage(
				"Saldo pendiente de " + utils.FormatMoney(stay.PendingBalance()))
		}

		// 2. 状态
		now := s.now()
		ok, err := repository.NewStayRepository(tx).TransitionStatus(ctx, stay.ID, models.StayStatusActive, map[string]interface{}{
			"status":         models.StayStatusCompleted,
			"is_active":      false,
			"checked_out_at": now,
		})
		if err != nil {
			return err
		}
		if !ok {
			return errors.ErrStayInvalidTransition
		}

		// 3. 房态与日志，只写一条 CHECK-OUT
		if _, err := room.ChangeStatus(ctx, tx, room.Change{
			Target:      targetOf(stay),
			Status:      nextStatus,
			Action:      models.ActionCheckOut,
			EmployeeID:  actor.employeeID(),
			StayID:      &stay.ID,
			Observation: joinObservation(observation, req.Notes),
		}); err != nil {
			return err
		}

		// 4. 收据邮件
		payload := models.JSON{
			"order_number": utils.FormatOrderNumber(stay.OrderNumber),
			"total":        utils.FormatMoney(stay.TotalPrice),
			"checked_out":  now.Format(time.RFC3339),
		}
		if stay.Guest != nil {
			payload["guest_name"] = stay.Guest.FullName()
			payload["email"] = utils.SafeString(stay.Guest.Email)
		}
		return writeOutbox(ctx, tx, models.TopicStayCompleted, stay, payload)
	})
	if err != nil {
		return nil, s.fail(ctx, errors.FromDB(err))
	}

	s.succeed("check_out", stayID, actor)
	return s.Get(ctx, stayID)
}

// CancelRequest 取消请求
type CancelRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// Cancel 取消预订，仅管理员和前台可操作
func (s *Service) Cancel(ctx context.Context, stayID int64, req *CancelRequest, actor Actor) (*models.Stay, error) {
	ctx, span := tracing.GetTracer().StartSpan(ctx, "stay.cancel",
		tracing.WithStayID(stayID), tracing.WithEmployeeID(actor.EmployeeID))
	defer span.End()

	if actor.Role != models.RoleAdmin && actor.Role != models.RoleReceptionist {
		return nil, s.fail(ctx, errors.ErrPermissionDenied)
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, s.fail(ctx, errors.ErrInvalidParams.WithMessage("Indique el motivo de la cancelación"))
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stay, err := loadStay(ctx, tx, stayID)
		if err != nil {
			return err
		}
		if stay.Status != models.StayStatusReserved {
			return errors.ErrStayInvalidTransition
		}

		stayRepo := repository.NewStayRepository(tx)
		ok, err := stayRepo.TransitionStatus(ctx, stay.ID, models.StayStatusReserved, map[string]interface{}{
			"status":       models.StayStatusCancelled,
			"is_active":    false,
			"cancelled_at": s.now(),
		})
		if err != nil {
			return err
		}
		if !ok {
			return errors.ErrStayInvalidTransition
		}

		// 仍有其他预订或入住占用时只记录日志
		change := room.Change{
			Target:     targetOf(stay),
			Action:     models.ActionCancellation,
			EmployeeID: actor.employeeID(),
			StayID:     &stay.ID,
			Observation: fmt.Sprintf("Cancelación de la reserva %s: %s",
				utils.FormatOrderNumber(stay.OrderNumber), reason),
		}
		holders, err := stayRepo.CountOtherHolders(ctx, stay.RoomID, stay.AccommodationTypeID, stay.ID)
		if err != nil {
			return err
		}
		if holders == 0 {
			change.Status = models.RoomStatusAvailable
			change.OnlyFrom = []string{models.RoomStatusReserved}
		}
		_, err = room.ChangeStatus(ctx, tx, change)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, errors.FromDB(err))
	}

	s.succeed("cancel", stayID, actor)
	return s.Get(ctx, stayID)
}

// PriceOverrideRequest 改价请求
type PriceOverrideRequest struct {
	Discount decimal.Decimal `json:"discount"`
	Reason   string          `json:"reason" binding:"required,max=500"`
}

// ApplyPriceOverride 管理员授权折扣，写入改价记录并更新总价
func (s *Service) ApplyPriceOverride(ctx context.Context, stayID int64, req *PriceOverrideRequest, actor Actor, ip string) (*models.PriceOverride, error) {
	ctx, span := tracing.GetTracer().StartSpan(ctx, "stay.price_override",
		tracing.WithStayID(stayID), tracing.WithEmployeeID(actor.EmployeeID))
	defer span.End()

	if actor.Role != models.RoleAdmin {
		return nil, s.fail(ctx, errors.ErrPermissionDenied)
	}
	if !req.Discount.IsPositive() {
		return nil, s.fail(ctx, errors.ErrInvalidDiscount)
	}

	var override *models.PriceOverride
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stay, err := loadStay(ctx, tx, stayID)
		if err != nil {
			return err
		}
		if !stay.IsOpen() {
			return errors.ErrStayInvalidTransition
		}

		stayRepo := repository.NewStayRepository(tx)
		override = &models.PriceOverride{
			StayID:         stay.ID,
			OriginalPrice:  stay.TotalPrice,
			DiscountAmount: req.Discount,
			FinalPrice:     pricing.ApplyDiscount(stay.TotalPrice, req.Discount),
			AuthorizedBy:   actor.EmployeeID,
			Reason:         strings.TrimSpace(req.Reason),
		}
		if err := stayRepo.CreatePriceOverride(ctx, override); err != nil {
			return err
		}
		if err := stayRepo.UpdateFields(ctx, stay.ID, map[string]interface{}{
			"total_price": override.FinalPrice,
		}); err != nil {
			return err
		}

		targetType := "stay"
		return repository.NewOperationLogRepository(tx).Create(ctx, &models.OperationLog{
			EmployeeID: actor.EmployeeID,
			Module:     "stay",
			Action:     "price_override",
			TargetType: &targetType,
			TargetID:   &stay.ID,
			BeforeData: models.JSON{"total_price": override.OriginalPrice.String()},
			AfterData: models.JSON{
				"total_price": override.FinalPrice.String(),
				"discount":    req.Discount.String(),
				"reason":      override.Reason,
			},
			IP: ip,
		})
	})
	if err != nil {
		return nil, s.fail(ctx, errors.FromDB(err))
	}

	s.succeed("price_override", stayID, actor)
	return override, nil
}

// Get 获取住宿详情
func (s *Service) Get(ctx context.Context, id int64) (*models.Stay, error) {
	stay, err := s.stayRepo.GetByIDWithDetails(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrStayNotFound
		}
		return nil, errors.FromDB(err)
	}
	return stay, nil
}

// GetByOrderNumber 根据订单号获取住宿
func (s *Service) GetByOrderNumber(ctx context.Context, orderNumber int64) (*models.Stay, error) {
	stay, err := s.stayRepo.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrStayNotFound
		}
		return nil, errors.FromDB(err)
	}
	return stay, nil
}

// ListRequest 住宿列表查询
type ListRequest struct {
	Status              string `form:"status" binding:"omitempty,oneof=Reserved Active Completed Cancelled"`
	GuestID             *int64 `form:"guest_id"`
	RoomID              *int64 `form:"room_id"`
	AccommodationTypeID *int64 `form:"accommodation_type_id"`
	OnlyActive          bool   `form:"only_active"`
	From                string `form:"from"`
	To                  string `form:"to"`
	Keyword             string `form:"keyword"`
}

// Filter 转换为仓储过滤条件
func (req *ListRequest) Filter() (repository.StayFilter, error) {
	f := repository.StayFilter{
		Status:              req.Status,
		GuestID:             req.GuestID,
		RoomID:              req.RoomID,
		AccommodationTypeID: req.AccommodationTypeID,
		OnlyActive:          req.OnlyActive,
		Keyword:             strings.TrimSpace(req.Keyword),
	}
	if req.From != "" {
		from, err := utils.ParseDate(req.From)
		if err != nil {
			return f, errors.ErrInvalidDates
		}
		f.From = &from
	}
	if req.To != "" {
		to, err := utils.ParseDate(req.To)
		if err != nil {
			return f, errors.ErrInvalidDates
		}
		f.To = &to
	}
	return f, nil
}

// List 分页查询住宿
func (s *Service) List(ctx context.Context, req *ListRequest, offset, limit int) ([]*models.Stay, int64, error) {
	f, err := req.Filter()
	if err != nil {
		return nil, 0, err
	}
	list, total, err := s.stayRepo.List(ctx, f, offset, limit)
	if err != nil {
		if errors.IsCanceled(err) {
			return []*models.Stay{}, 0, nil
		}
		return nil, 0, errors.FromDB(err)
	}
	return list, total, nil
}

// PriceOverrides 住宿的改价记录
func (s *Service) PriceOverrides(ctx context.Context, stayID int64) ([]*models.PriceOverride, error) {
	if _, err := s.Get(ctx, stayID); err != nil {
		return nil, err
	}
	list, err := s.stayRepo.ListPriceOverrides(ctx, stayID)
	if err != nil {
		return nil, errors.FromDB(err)
	}
	return list, nil
}

// fail 记录追踪错误并返回原错误
func (s *Service) fail(ctx context.Context, err error) error {
	tracing.SetError(ctx, err)
	if stderrors.Is(err, errors.ErrBookingConflict) {
		metrics.GetMetrics().RecordBookingConflict()
	}
	return err
}

// succeed 记录状态迁移指标与日志
func (s *Service) succeed(transition string, stayID int64, actor Actor) {
	metrics.GetMetrics().RecordStayTransition(transition)
	logger.Info("stay transition",
		logger.Action(transition),
		logger.StayID(stayID),
		logger.EmployeeID(actor.EmployeeID),
	)
}

// loadStay 在事务内加载住宿及客人
func loadStay(ctx context.Context, tx *gorm.DB, id int64) (*models.Stay, error) {
	stay, err := repository.NewStayRepository(tx).GetByIDWithDetails(ctx, id)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrStayNotFound
		}
		return nil, err
	}
	return stay, nil
}

func targetOf(stay *models.Stay) room.Target {
	return room.Target{RoomID: stay.RoomID, AccommodationTypeID: stay.AccommodationTypeID}
}

// ensureAvailable 事务内复查日期冲突
func ensureAvailable(ctx context.Context, tx *gorm.DB, target availability.Target, checkIn, checkOut time.Time, excludeStayID int64) error {
	conflicts, err := availability.Check(ctx, tx, target, checkIn, checkOut, excludeStayID)
	if err != nil {
		return err
	}
	if len(conflicts) == 0 {
		return nil
	}
	orders := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		orders = append(orders, utils.FormatOrderNumber(c.OrderNumber))
	}
	return errors.ErrBookingConflict.WithMessage(
		"Las fechas se cruzan con la estadía " + strings.Join(orders, ", "))
}

// ensureReadyForCheckIn 入住前房态须为 Disponible 或 Reservado，且房间没有在住客人。
// ownStayID 为 0 表示直接入住，此时 Reservado 仅在其他预订与 [checkIn, checkOut) 不相交时允许
func ensureReadyForCheckIn(ctx context.Context, tx *gorm.DB, target room.Target, ownStayID int64, checkIn, checkOut time.Time) error {
	var statusID int64
	switch {
	case target.RoomID != nil:
		r, err := repository.NewRoomRepository(tx).GetByID(ctx, *target.RoomID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.ErrRoomNotFound
			}
			return err
		}
		active, err := repository.NewStayRepository(tx).HasActiveOnRoom(ctx, r.ID)
		if err != nil {
			return err
		}
		if active {
			return errors.ErrRoomOccupied
		}
		statusID = r.StatusID
	case target.AccommodationTypeID != nil:
		t, err := repository.NewAccommodationTypeRepository(tx).GetByID(ctx, *target.AccommodationTypeID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.ErrAccommodationTypeNotFound
			}
			return err
		}
		statusID = t.StatusID
	default:
		return errors.ErrStayTargetRequired
	}

	status, err := repository.NewRoomStatusRepository(tx).GetByID(ctx, statusID)
	if err != nil {
		return err
	}
	switch status.Name {
	case models.RoomStatusAvailable:
		return nil
	case models.RoomStatusReserved:
		if ownStayID != 0 {
			return nil
		}
		holders, err := repository.NewStayRepository(tx).CountBlockingHolders(ctx, target.RoomID, target.AccommodationTypeID, checkIn, checkOut)
		if err != nil {
			return err
		}
		if holders == 0 {
			return nil
		}
		return errors.ErrRoomNotAvailable.WithMessage("La habitación tiene una reserva pendiente")
	default:
		return errors.ErrRoomNotAvailable.WithMessage("Estado actual: " + status.Name)
	}
}

// writeOutbox 写入住宿事件
func writeOutbox(ctx context.Context, tx *gorm.DB, topic string, stay *models.Stay, payload models.JSON) error {
	payload["stay_id"] = stay.ID
	return repository.NewOutboxRepository(tx).Create(ctx, &models.OutboxEvent{
		Topic:       topic,
		Aggregate:   "stay",
		AggregateID: stay.ID,
		Payload:     payload,
	})
}

func actionLabel(action string) string {
	if action == models.ActionReservation {
		return "Reserva"
	}
	return "Check-in directo"
}

func joinObservation(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ". ")
}
