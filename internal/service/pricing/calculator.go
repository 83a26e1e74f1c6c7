// Package pricing 提供住宿计价
package pricing

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
)

// Tier 按人数分档的房价
type Tier struct {
	PersonCount int             `json:"person_count"`
	Price       decimal.Decimal `json:"price"`
}

// Settings 计价所需的全局参数
type Settings struct {
	IVAPercentage     decimal.Decimal
	MattressPrice     decimal.Decimal
	FallbackRateHotel decimal.Decimal
	FallbackRateOther decimal.Decimal
}

// SettingsFrom 从设置行提取计价参数
func SettingsFrom(s *models.Setting) Settings {
	return Settings{
		IVAPercentage:     s.IVAPercentage,
		MattressPrice:     s.MattressPrice,
		FallbackRateHotel: s.FallbackRateHotel,
		FallbackRateOther: s.FallbackRateOther,
	}
}

// Input 计价输入
type Input struct {
	Tiers            []Tier
	UnitPrice        *decimal.Decimal // 整套出租的固定价
	Category         string
	PersonCount      int
	CheckIn          time.Time
	CheckOut         *time.Time
	MattressCount    int
	Settings         Settings
	InvoiceRequested bool
	Discount         *decimal.Decimal
}

// Quote 计价结果
type Quote struct {
	Nights          int             `json:"nights"`
	Rate            decimal.Decimal `json:"rate"`
	UsedFallback    bool            `json:"used_fallback"`
	SubtotalLodging decimal.Decimal `json:"subtotal_lodging"`
	MattressTotal   decimal.Decimal `json:"mattress_total"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	IVAPercentage   decimal.Decimal `json:"iva_percentage"`
	IVA             decimal.Decimal `json:"iva"`
	Total           decimal.Decimal `json:"total"`
	Discount        decimal.Decimal `json:"discount"`
	FinalTotal      decimal.Decimal `json:"final_total"`
}

// Nights 计算晚数：按天向上取整，至少 1 晚
func Nights(checkIn time.Time, checkOut *time.Time) int {
	if checkOut == nil || checkOut.IsZero() {
		return 1
	}
	hours := checkOut.Sub(checkIn).Hours()
	n := int(math.Ceil(hours / 24))
	if n < 1 {
		return 1
	}
	return n
}

// SelectRate 选择房价：人数不超过请求人数的最高档，
// 整套出租用固定价，都没有时按类别取兜底价
func SelectRate(in Input) (decimal.Decimal, bool) {
	if in.UnitPrice != nil && in.UnitPrice.IsPositive() {
		return *in.UnitPrice, false
	}

	tiers := make([]Tier, len(in.Tiers))
	copy(tiers, in.Tiers)
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].PersonCount > tiers[j].PersonCount })
	for _, t := range tiers {
		if t.PersonCount <= in.PersonCount {
			return t.Price, false
		}
	}

	if in.Category == models.CategoryHotel {
		return in.Settings.FallbackRateHotel, true
	}
	return in.Settings.FallbackRateOther, true
}

// Validate 校验计价输入
func (in Input) Validate() error {
	if in.PersonCount < 1 {
		return errors.ErrInvalidParams.WithMessage("Debe haber al menos una persona")
	}
	if in.MattressCount < 0 {
		return errors.ErrInvalidParams.WithMessage("La cantidad de colchones no puede ser negativa")
	}
	if in.CheckIn.IsZero() {
		return errors.ErrInvalidDates.WithMessage("La fecha de ingreso es obligatoria")
	}
	if in.CheckOut != nil && !in.CheckOut.IsZero() && in.CheckOut.Before(in.CheckIn) {
		return errors.ErrInvalidDates.WithMessage("La fecha de salida no puede ser anterior al ingreso")
	}
	if in.Discount != nil && !in.Discount.IsPositive() {
		return errors.ErrInvalidDiscount
	}
	return nil
}

// Calculate 计算住宿总价
func Calculate(in Input) (*Quote, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	q := &Quote{Nights: Nights(in.CheckIn, in.CheckOut)}
	nights := decimal.NewFromInt(int64(q.Nights))

	// 1. 住宿小计
	q.Rate, q.UsedFallback = SelectRate(in)
	q.SubtotalLodging = q.Rate.Mul(nights)

	// 2. 加床
	q.MattressTotal = in.Settings.MattressPrice.Mul(decimal.NewFromInt(int64(in.MattressCount))).Mul(nights)
	q.Subtotal = q.SubtotalLodging.Add(q.MattressTotal)

	// 3. 开票才计 IVA
	q.IVA = decimal.Zero
	q.IVAPercentage = decimal.Zero
	if in.InvoiceRequested {
		q.IVAPercentage = in.Settings.IVAPercentage
		q.IVA = q.Subtotal.Mul(in.Settings.IVAPercentage).Div(decimal.NewFromInt(100)).Round(0)
	}
	q.Total = q.Subtotal.Add(q.IVA)

	// 4. 折扣
	q.Discount = decimal.Zero
	q.FinalTotal = q.Total
	if in.Discount != nil {
		q.Discount = *in.Discount
		q.FinalTotal = ApplyDiscount(q.Total, *in.Discount)
	}
	return q, nil
}

// ApplyDiscount 折后价，不低于 0
func ApplyDiscount(total, discount decimal.Decimal) decimal.Decimal {
	final := total.Sub(discount)
	if final.IsNegative() {
		return decimal.Zero
	}
	return final
}

// TiersFromRoom 将房间价格档转为计价档
func TiersFromRoom(room *models.Room) []Tier {
	tiers := make([]Tier, 0, len(room.Rates))
	for _, r := range room.Rates {
		tiers = append(tiers, Tier{PersonCount: r.PersonCount, Price: r.Price})
	}
	return tiers
}
