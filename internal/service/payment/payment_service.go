package payment

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

// Service 收款查询与更正服务
type Service struct {
	db          *gorm.DB
	paymentRepo *repository.PaymentRepository
	methodRepo  *repository.PaymentMethodRepository
	stayRepo    *repository.StayRepository
}

// NewService 创建收款服务
func NewService(db *gorm.DB) *Service {
	return &Service{
		db:          db,
		paymentRepo: repository.NewPaymentRepository(db),
		methodRepo:  repository.NewPaymentMethodRepository(db),
		stayRepo:    repository.NewStayRepository(db),
	}
}

// ListRequest 收款列表查询
type ListRequest struct {
	From            *time.Time
	To              *time.Time
	PaymentMethodID *int64
	EmployeeID      *int64
	PaymentType     string
}

// List 分页查询收款
func (s *Service) List(ctx context.Context, req *ListRequest, offset, limit int) ([]*models.Payment, int64, error) {
	list, total, err := s.paymentRepo.List(ctx, repository.PaymentFilter{
		From:            req.From,
		To:              req.To,
		PaymentMethodID: req.PaymentMethodID,
		EmployeeID:      req.EmployeeID,
		PaymentType:     req.PaymentType,
	}, offset, limit)
	if err != nil {
		if errors.IsCanceled(err) {
			return []*models.Payment{}, 0, nil
		}
		return nil, 0, errors.FromDB(err)
	}
	return list, total, nil
}

// ListByStay 住宿的收款流水
func (s *Service) ListByStay(ctx context.Context, stayID int64) ([]*models.Payment, error) {
	if _, err := s.stayRepo.GetByID(ctx, stayID); err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrStayNotFound
		}
		return nil, errors.FromDB(err)
	}
	list, err := s.paymentRepo.ListByStay(ctx, stayID)
	if err != nil {
		return nil, errors.FromDB(err)
	}
	return list, nil
}

// Balance 住宿的流水合计与待付余额
func (s *Service) Balance(ctx context.Context, stayID int64) (paid, pending decimal.Decimal, err error) {
	stay, err := s.stayRepo.GetByID(ctx, stayID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, decimal.Zero, errors.ErrStayNotFound
		}
		return decimal.Zero, decimal.Zero, errors.FromDB(err)
	}
	paid, err = s.paymentRepo.SumByStay(ctx, stayID)
	if err != nil {
		return decimal.Zero, decimal.Zero, errors.FromDB(err)
	}
	stay.PaidAmount = paid
	return paid, stay.PendingBalance(), nil
}

// Methods 可用收款方式
func (s *Service) Methods(ctx context.Context) ([]*models.PaymentMethod, error) {
	list, err := s.methodRepo.List(ctx, true)
	if err != nil {
		return nil, errors.FromDB(err)
	}
	return list, nil
}

// CorrectRequest 更正收款请求
type CorrectRequest struct {
	Amount          *decimal.Decimal `json:"amount"`
	PaymentMethodID *int64           `json:"payment_method_id"`
	Reason          string           `json:"reason" binding:"required,min=3,max=500"`
}

// Correct 管理员更正一笔收款，重算已付金额并记录操作日志
func (s *Service) Correct(ctx context.Context, adminID, paymentID int64, req *CorrectRequest, ip string) (*models.Payment, error) {
	if req.Amount == nil && req.PaymentMethodID == nil {
		return nil, errors.ErrInvalidParams.WithMessage("No hay cambios para aplicar")
	}
	if req.Amount != nil && !req.Amount.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}

	var updated *models.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		paymentRepo := repository.NewPaymentRepository(tx)

		// 1. 加载原记录
		p, err := paymentRepo.GetByID(ctx, paymentID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.ErrPaymentNotFound
			}
			return err
		}
		before := models.ToJSON(p)

		// 2. 更新金额或收款方式
		now := time.Now()
		fields := map[string]interface{}{
			"corrected_by": adminID,
			"corrected_at": now,
		}
		if req.Amount != nil {
			fields["amount"] = *req.Amount
			p.Amount = *req.Amount
		}
		if req.PaymentMethodID != nil {
			method, err := repository.NewPaymentMethodRepository(tx).GetByID(ctx, *req.PaymentMethodID)
			if err != nil {
				if stderrors.Is(err, gorm.ErrRecordNotFound) {
					return errors.ErrPaymentMethodNotFound
				}
				return err
			}
			fields["payment_method_id"] = method.ID
			p.PaymentMethodID = method.ID
			p.PaymentMethod = method
		}
		if err := paymentRepo.UpdateFields(ctx, p.ID, fields); err != nil {
			return err
		}
		p.CorrectedBy = &adminID
		p.CorrectedAt = &now

		// 3. 重算已付金额
		stay, err := repository.NewStayRepository(tx).GetByID(ctx, p.StayID)
		if err != nil {
			return err
		}
		if _, err := Recompute(ctx, tx, stay); err != nil {
			return err
		}

		// 4. 操作日志
		targetType := "payment"
		after := models.ToJSON(p)
		if after != nil {
			after["reason"] = req.Reason
		}
		if err := repository.NewOperationLogRepository(tx).Create(ctx, &models.OperationLog{
			EmployeeID: adminID,
			Module:     "payment",
			Action:     "correct",
			TargetType: &targetType,
			TargetID:   &p.ID,
			BeforeData: before,
			AfterData:  after,
			IP:         ip,
		}); err != nil {
			return err
		}

		updated = p
		return nil
	})
	if err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.FromDB(err)
	}

	logger.Info("payment corrected",
		logger.EmployeeID(adminID),
		logger.Int64("payment_id", paymentID),
		logger.StayID(updated.StayID),
	)
	return updated, nil
}
