package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RoomStatus 房态目录
type RoomStatus struct {
	ID    int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name  string `gorm:"type:varchar(30);uniqueIndex;not null" json:"name"`
	Color string `gorm:"type:varchar(20)" json:"color,omitempty"`
}

// TableName 表名
func (RoomStatus) TableName() string {
	return "room_statuses"
}

// 房态名称
const (
	RoomStatusAvailable   = "Disponible"
	RoomStatusOccupied    = "Ocupado"
	RoomStatusReserved    = "Reservado"
	RoomStatusCleaning    = "Limpieza"
	RoomStatusMaintenance = "Mantenimiento"
)

// RoomStatusNames 所有房态，按种子顺序
var RoomStatusNames = []string{
	RoomStatusAvailable,
	RoomStatusOccupied,
	RoomStatusReserved,
	RoomStatusCleaning,
	RoomStatusMaintenance,
}

// AccommodationType 住宿类型（可整套出租）
type AccommodationType struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Category    string          `gorm:"type:varchar(50);not null;default:'Hotel'" json:"category"`
	Price       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"price"`
	IsWholeUnit bool            `gorm:"not null;default:false" json:"is_whole_unit"`
	Capacity    int             `gorm:"not null;default:0" json:"capacity"`
	Description *string         `gorm:"type:text" json:"description,omitempty"`
	StatusID    int64           `gorm:"index;not null" json:"status_id"`
	StatusDate  time.Time       `gorm:"not null" json:"status_date"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`
	Version     int64           `gorm:"not null;default:1" json:"version"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	Status *RoomStatus `gorm:"foreignKey:StatusID" json:"status,omitempty"`
	Rooms  []Room      `gorm:"foreignKey:AccommodationTypeID" json:"rooms,omitempty"`
}

// TableName 表名
func (AccommodationType) TableName() string {
	return "accommodation_types"
}

// 住宿类别
const (
	CategoryHotel = "Hotel"
)

// Room 房间
type Room struct {
	ID                  int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Number              string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"number"`
	AccommodationTypeID int64     `gorm:"index;not null" json:"accommodation_type_id"`
	Floor               *int      `json:"floor,omitempty"`
	DoubleBeds          int       `gorm:"not null;default:0" json:"double_beds"`
	SingleBeds          int       `gorm:"not null;default:0" json:"single_beds"`
	Description         *string   `gorm:"type:text" json:"description,omitempty"`
	StatusID            int64     `gorm:"index;not null" json:"status_id"`
	StatusDate          time.Time `gorm:"not null" json:"status_date"`
	IsActive            bool      `gorm:"not null;default:true" json:"is_active"`
	Version             int64     `gorm:"not null;default:1" json:"version"`
	CreatedAt           time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	AccommodationType *AccommodationType `gorm:"foreignKey:AccommodationTypeID" json:"accommodation_type,omitempty"`
	Status            *RoomStatus        `gorm:"foreignKey:StatusID" json:"status,omitempty"`
	Rates             []RoomRate         `gorm:"foreignKey:RoomID" json:"rates,omitempty"`
}

// TableName 表名
func (Room) TableName() string {
	return "rooms"
}

// Capacity 房间容量：双人床算两人
func (r *Room) Capacity() int {
	return 2*r.DoubleBeds + r.SingleBeds
}

// RoomRate 房间按人数分档的价格
type RoomRate struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomID      int64           `gorm:"index;not null" json:"room_id"`
	PersonCount int             `gorm:"not null" json:"person_count"`
	Price       decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"price"`
}

// TableName 表名
func (RoomRate) TableName() string {
	return "room_rates"
}

// RoomHistory 房态审计日志，只追加
type RoomHistory struct {
	ID                  int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomID              *int64    `gorm:"index" json:"room_id,omitempty"`
	AccommodationTypeID *int64    `gorm:"index" json:"accommodation_type_id,omitempty"`
	PreviousStatusID    *int64    `json:"previous_status_id,omitempty"`
	NewStatusID         int64     `gorm:"not null" json:"new_status_id"`
	Action              string    `gorm:"type:varchar(30);index;not null" json:"action"`
	EmployeeID          *int64    `gorm:"index" json:"employee_id,omitempty"`
	StayID              *int64    `gorm:"index" json:"stay_id,omitempty"`
	Observation         string    `gorm:"type:text" json:"observation"`
	CreatedAt           time.Time `gorm:"autoCreateTime;index" json:"created_at"`

	// 关联
	Room              *Room              `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	AccommodationType *AccommodationType `gorm:"foreignKey:AccommodationTypeID" json:"accommodation_type,omitempty"`
	PreviousStatus    *RoomStatus        `gorm:"foreignKey:PreviousStatusID" json:"previous_status,omitempty"`
	NewStatus         *RoomStatus        `gorm:"foreignKey:NewStatusID" json:"new_status,omitempty"`
	Employee          *Employee          `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
}

// TableName 表名
func (RoomHistory) TableName() string {
	return "room_history"
}

// 房态日志动作
const (
	ActionReservation        = "RESERVA"
	ActionCheckIn            = "CHECK-IN"
	ActionCheckInReservation = "CHECK-IN-RESERVA"
	ActionReservationPayment = "ABONO-RESERVA"
	ActionCheckOut           = "CHECK-OUT"
	ActionCancellation       = "CANCELACION"
	ActionCleaning           = "LIMPIEZA"
	ActionMaintenance        = "MANTENIMIENTO"
	ActionCleaningDone       = "FIN-LIMPIEZA"
	ActionMaintenanceDone    = "FIN-MANTENIMIENTO"
	ActionStatusChange       = "CAMBIO-ESTADO"
)
