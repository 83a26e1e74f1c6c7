package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Guest 客人，按证件号唯一
type Guest struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	DocType     string    `gorm:"type:varchar(10);not null;default:'CC'" json:"doc_type"`
	DocNumber   string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"doc_number"`
	FirstName   string    `gorm:"type:varchar(80);not null" json:"first_name"`
	LastName    string    `gorm:"type:varchar(80)" json:"last_name"`
	Phone       *string   `gorm:"type:varchar(30)" json:"phone,omitempty"`
	Email       *string   `gorm:"type:varchar(120)" json:"email,omitempty"`
	Address     *string   `gorm:"type:varchar(255)" json:"address,omitempty"`
	City        *string   `gorm:"type:varchar(80)" json:"city,omitempty"`
	Department  *string   `gorm:"type:varchar(80)" json:"department,omitempty"`
	Nationality *string   `gorm:"type:varchar(60)" json:"nationality,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (Guest) TableName() string {
	return "guests"
}

// FullName 客人全名
func (g *Guest) FullName() string {
	if g.LastName == "" {
		return g.FirstName
	}
	return g.FirstName + " " + g.LastName
}

// Stay 住宿记录（预订或入住）
type Stay struct {
	ID                  int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber         int64           `gorm:"uniqueIndex;not null" json:"order_number"`
	GuestID             int64           `gorm:"index;not null" json:"guest_id"`
	EmployeeID          *int64          `gorm:"index" json:"employee_id,omitempty"`
	RoomID              *int64          `gorm:"index" json:"room_id,omitempty"`
	AccommodationTypeID *int64          `gorm:"index" json:"accommodation_type_id,omitempty"`
	CheckInDate         time.Time       `gorm:"type:date;not null;index" json:"check_in_date"`
	CheckOutDate        time.Time       `gorm:"type:date;not null;index" json:"check_out_date"`
	Status              string          `gorm:"type:varchar(20);not null;index" json:"status"`
	IsActive            bool            `gorm:"not null;default:true;index" json:"is_active"`
	TotalPrice          decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_price"`
	PaidAmount          decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"paid_amount"`
	IVAPercentage       decimal.Decimal `gorm:"column:iva_percentage;type:numeric(5,2);not null;default:0" json:"iva_percentage"`
	IVAAmount           decimal.Decimal `gorm:"column:iva_amount;type:numeric(14,2);not null;default:0" json:"iva_amount"`
	PersonCount         int             `gorm:"not null;default:1" json:"person_count"`
	MattressCount       int             `gorm:"not null;default:0" json:"mattress_count"`
	MattressUnitPrice   decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"mattress_unit_price"`
	Nights              int             `gorm:"not null;default:1" json:"nights"`
	InvoiceRequested    bool            `gorm:"not null;default:false" json:"invoice_requested"`
	FromReservation     bool            `gorm:"not null;default:false" json:"from_reservation"`
	Notes               *string         `gorm:"type:text" json:"notes,omitempty"`
	CheckedInAt         *time.Time      `json:"checked_in_at,omitempty"`
	CheckedOutAt        *time.Time      `json:"checked_out_at,omitempty"`
	CancelledAt         *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt           time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	Guest             *Guest             `gorm:"foreignKey:GuestID" json:"guest,omitempty"`
	Employee          *Employee          `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
	Room              *Room              `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	AccommodationType *AccommodationType `gorm:"foreignKey:AccommodationTypeID" json:"accommodation_type,omitempty"`
	Payments          []Payment          `gorm:"foreignKey:StayID" json:"payments,omitempty"`
}

// TableName 表名
func (Stay) TableName() string {
	return "stays"
}

// 住宿状态
const (
	StayStatusReserved  = "Reserved"
	StayStatusActive    = "Active"
	StayStatusCompleted = "Completed"
	StayStatusCancelled = "Cancelled"
)

// PendingBalance 待付余额，不小于 0
func (s *Stay) PendingBalance() decimal.Decimal {
	pending := s.TotalPrice.Sub(s.PaidAmount)
	if pending.IsNegative() {
		return decimal.Zero
	}
	return pending
}

// CanCheckIn 已付金额是否覆盖总价
func (s *Stay) CanCheckIn() bool {
	return s.PaidAmount.GreaterThanOrEqual(s.TotalPrice)
}

// IsOpen 仍可收款的状态
func (s *Stay) IsOpen() bool {
	return s.Status == StayStatusReserved || s.Status == StayStatusActive
}

// PriceOverride 人工授权的价格折扣
type PriceOverride struct {
	ID             int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	StayID         int64           `gorm:"index;not null" json:"stay_id"`
	OriginalPrice  decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"original_price"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"discount_amount"`
	FinalPrice     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"final_price"`
	AuthorizedBy   int64           `gorm:"index;not null" json:"authorized_by"`
	Reason         string          `gorm:"type:text" json:"reason"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`

	// 关联
	Authorizer *Employee `gorm:"foreignKey:AuthorizedBy" json:"authorizer,omitempty"`
}

// TableName 表名
func (PriceOverride) TableName() string {
	return "price_overrides"
}
