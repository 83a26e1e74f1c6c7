package payment

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/metrics"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/repository"
)

// RegisterInput 登记收款参数
type RegisterInput struct {
	Amount          decimal.Decimal
	PaymentMethodID int64
	EmployeeID      *int64
	Context         string
	Today           time.Time
	PaidAt          time.Time
}

// Register 在事务内追加一笔收款并按流水合计刷新已付金额，
// 成功后 stay.PaidAmount 为最新合计。
// 分类传给 Classify 的是含本笔在内的累计已付，而非单笔金额，
// 分次付清的预订最后一笔因此记为全额付款
func Register(ctx context.Context, tx *gorm.DB, stay *models.Stay, in RegisterInput) (*models.Payment, error) {
	// 1. 校验
	if !in.Amount.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}
	if !stay.IsOpen() {
		return nil, errors.ErrPaymentNotAllowed
	}
	if !ValidContext(in.Context) {
		return nil, errors.ErrInvalidParams.WithMessage("Contexto de pago inválido")
	}
	method, err := repository.NewPaymentMethodRepository(tx).GetByID(ctx, in.PaymentMethodID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrPaymentMethodNotFound
		}
		return nil, err
	}
	if !method.IsActive {
		return nil, errors.ErrPaymentMethodNotFound
	}

	// 2. 按累计金额分类（含本笔）
	paymentRepo := repository.NewPaymentRepository(tx)
	paidBefore, err := paymentRepo.SumByStay(ctx, stay.ID)
	if err != nil {
		return nil, err
	}
	checkIn := stay.CheckInDate
	paymentType := Classify(paidBefore.Add(in.Amount), stay.TotalPrice, in.Context, &checkIn, in.Today)

	paidAt := in.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	p := &models.Payment{
		StayID:          stay.ID,
		Amount:          in.Amount,
		PaymentMethodID: method.ID,
		EmployeeID:      in.EmployeeID,
		PaymentType:     paymentType,
		Observation:     Observation(paymentType, in.Amount, stay.TotalPrice),
		PaidAt:          paidAt,
		PaymentMethod:   method,
	}
	if err := paymentRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	// 3. 刷新已付金额
	if _, err := Recompute(ctx, tx, stay); err != nil {
		return nil, err
	}

	metrics.GetMetrics().RecordPayment(paymentType, in.Amount.InexactFloat64())
	return p, nil
}

// Recompute 以流水合计覆盖住宿的已付金额
func Recompute(ctx context.Context, tx *gorm.DB, stay *models.Stay) (decimal.Decimal, error) {
	sum, err := repository.NewPaymentRepository(tx).SumByStay(ctx, stay.ID)
	if err != nil {
		return decimal.Zero, err
	}
	if err := repository.NewStayRepository(tx).UpdateFields(ctx, stay.ID, map[string]interface{}{
		"paid_amount": sum,
	}); err != nil {
		return decimal.Zero, err
	}
	stay.PaidAmount = sum
	return sum, nil
}
