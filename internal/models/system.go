package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// JSON 自定义 JSON 类型
type JSON map[string]interface{}

// Scan 实现 sql.Scanner 接口
func (j *JSON) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = nil
		return nil
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return nil
	}
}

// Value 实现 driver.Valuer 接口
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Unmarshal 将 JSON 值反序列化到目标结构（便于业务层使用）
func (j JSON) Unmarshal(target interface{}) error {
	if j == nil {
		return nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, target)
}

// ToJSON 将任意结构转换为 JSON 字段值，失败时返回 nil
func ToJSON(v interface{}) JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out JSON
	if err := json.Unmarshal(b, &out); err != nil {
		return nil
	}
	return out
}

// Setting 酒店全局设置，单行
type Setting struct {
	ID                 int64           `gorm:"primaryKey" json:"id"`
	HotelName          string          `gorm:"type:varchar(120);not null" json:"hotel_name"`
	TaxID              *string         `gorm:"type:varchar(30)" json:"tax_id,omitempty"`
	Address            *string         `gorm:"type:varchar(255)" json:"address,omitempty"`
	Phone              *string         `gorm:"type:varchar(30)" json:"phone,omitempty"`
	Currency           string          `gorm:"type:varchar(3);not null;default:'COP'" json:"currency"`
	IVAPercentage      decimal.Decimal `gorm:"column:iva_percentage;type:numeric(5,2);not null" json:"iva_percentage"`
	MattressPrice      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"mattress_price"`
	FallbackRateHotel  decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"fallback_rate_hotel"`
	FallbackRateOther  decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"fallback_rate_other"`
	CheckoutRoomStatus string          `gorm:"type:varchar(30);not null" json:"checkout_room_status"`
	UpdatedBy          *int64          `json:"updated_by,omitempty"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (Setting) TableName() string {
	return "settings"
}

// SettingsRowID 设置表唯一行的主键
const SettingsRowID int64 = 1

// OutboxEvent 待投递的领域事件
type OutboxEvent struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Topic         string     `gorm:"type:varchar(50);index;not null" json:"topic"`
	Aggregate     string     `gorm:"type:varchar(30);not null" json:"aggregate"`
	AggregateID   int64      `gorm:"index;not null" json:"aggregate_id"`
	Payload       JSON       `gorm:"type:jsonb" json:"payload"`
	Status        string     `gorm:"type:varchar(20);index;not null;default:'pending'" json:"status"`
	Attempts      int        `gorm:"not null;default:0" json:"attempts"`
	NextAttemptAt time.Time  `gorm:"index;not null" json:"next_attempt_at"`
	LastError     *string    `gorm:"type:text" json:"last_error,omitempty"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 表名
func (OutboxEvent) TableName() string {
	return "outbox_events"
}

// 事件主题
const (
	TopicRoomStatusChanged = "room.status_changed"
	TopicStayReserved      = "stay.reserved"
	TopicStayCompleted     = "stay.completed"
)

// 事件状态
const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"
)
