package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod 收款方式目录
type PaymentMethod struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`
}

// TableName 表名
func (PaymentMethod) TableName() string {
	return "payment_methods"
}

// 默认收款方式
var PaymentMethodNames = []string{"Efectivo", "Tarjeta", "Transferencia", "Nequi"}

// Payment 收款流水，只追加
type Payment struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	StayID          int64           `gorm:"index;not null" json:"stay_id"`
	Amount          decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	PaymentMethodID int64           `gorm:"index;not null" json:"payment_method_id"`
	EmployeeID      *int64          `gorm:"index" json:"employee_id,omitempty"`
	PaymentType     string          `gorm:"type:varchar(30);index;not null" json:"payment_type"`
	Observation     string          `gorm:"type:text" json:"observation"`
	PaidAt          time.Time       `gorm:"not null;index" json:"paid_at"`
	CorrectedBy     *int64          `json:"corrected_by,omitempty"`
	CorrectedAt     *time.Time      `json:"corrected_at,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`

	// 关联
	Stay          *Stay          `gorm:"foreignKey:StayID" json:"stay,omitempty"`
	PaymentMethod *PaymentMethod `gorm:"foreignKey:PaymentMethodID" json:"payment_method,omitempty"`
	Employee      *Employee      `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
}

// TableName 表名
func (Payment) TableName() string {
	return "payments"
}

// 收款类型
const (
	PaymentTypeDirectCheckIn   = "PAGO_CHECKIN_DIRECTO"
	PaymentTypeAdvanceFull     = "ANTICIPADO_COMPLETO"
	PaymentTypeReservationFull = "PAGO_COMPLETO_RESERVA"
	PaymentTypeDeposit         = "ABONO_RESERVA"
)

// 收款场景
const (
	PaymentContextReservation = "reservation"
	PaymentContextDirect      = "checkin_direct"
	PaymentContextCalendar    = "calendar_payment"
)
