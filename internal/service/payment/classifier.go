// Package payment 提供收款分类与收款流水服务
package payment

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/utils"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
)

// Classify 根据收款场景、已付金额与入住日期确定收款类型。
// amount 为本笔收款后的累计已付金额；checkIn 为空时视为今天或之前。
func Classify(amount, total decimal.Decimal, paymentContext string, checkIn *time.Time, today time.Time) string {
	if paymentContext == models.PaymentContextDirect {
		return models.PaymentTypeDirectCheckIn
	}
	if amount.LessThan(total) {
		return models.PaymentTypeDeposit
	}
	if checkIn != nil && utils.DateOnly(*checkIn).After(utils.DateOnly(today)) {
		return models.PaymentTypeAdvanceFull
	}
	return models.PaymentTypeReservationFull
}

// Observation 收款类型对应的说明文字，写入收款与房态日志
func Observation(paymentType string, amount, total decimal.Decimal) string {
	switch paymentType {
	case models.PaymentTypeDirectCheckIn:
		return fmt.Sprintf("Pago en check-in directo por %s", utils.FormatMoney(amount))
	case models.PaymentTypeAdvanceFull:
		return fmt.Sprintf("Pago anticipado completo de la reserva por %s", utils.FormatMoney(amount))
	case models.PaymentTypeReservationFull:
		return fmt.Sprintf("Pago completo de la reserva por %s", utils.FormatMoney(amount))
	case models.PaymentTypeDeposit:
		return fmt.Sprintf("Abono a la reserva por %s de un total de %s",
			utils.FormatMoney(amount), utils.FormatMoney(total))
	default:
		return fmt.Sprintf("Pago registrado por %s", utils.FormatMoney(amount))
	}
}

// ValidContext 是否为支持的收款场景
func ValidContext(paymentContext string) bool {
	switch paymentContext {
	case models.PaymentContextReservation, models.PaymentContextDirect, models.PaymentContextCalendar:
		return true
	}
	return false
}
