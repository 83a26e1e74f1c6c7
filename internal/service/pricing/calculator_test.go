package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func datePtr(s string) *time.Time {
	t := date(s)
	return &t
}

func baseSettings() Settings {
	return Settings{
		IVAPercentage:     d(19),
		MattressPrice:     d(20000),
		FallbackRateHotel: d(70000),
		FallbackRateOther: d(150000),
	}
}

func TestNights(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut *time.Time
		want     int
	}{
		{"sin salida", date("2026-10-01"), nil, 1},
		{"mismo día", date("2026-10-01"), datePtr("2026-10-01"), 1},
		{"dos noches", date("2026-10-01"), datePtr("2026-10-03"), 2},
		{"fracción redondea arriba", date("2026-10-01"), func() *time.Time {
			v := date("2026-10-02").Add(3 * time.Hour)
			return &v
		}(), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Nights(tt.checkIn, tt.checkOut))
		})
	}
}

func TestSelectRate(t *testing.T) {
	tiers := []Tier{{PersonCount: 2, Price: d(120000)}, {PersonCount: 1, Price: d(80000)}, {PersonCount: 4, Price: d(200000)}}

	tests := []struct {
		name         string
		in           Input
		want         decimal.Decimal
		wantFallback bool
	}{
		{"una persona", Input{Tiers: tiers, PersonCount: 1}, d(80000), false},
		{"tres personas toma el tramo de dos", Input{Tiers: tiers, PersonCount: 3}, d(120000), false},
		{"cinco personas toma el tramo mayor", Input{Tiers: tiers, PersonCount: 5}, d(200000), false},
		{"unidad completa usa precio fijo", Input{Tiers: tiers, UnitPrice: func() *decimal.Decimal { v := d(500000); return &v }(), PersonCount: 1}, d(500000), false},
		{"sin tramos en hotel", Input{Category: models.CategoryHotel, PersonCount: 1, Settings: baseSettings()}, d(70000), true},
		{"sin tramos fuera de hotel", Input{Category: "Cabaña", PersonCount: 1, Settings: baseSettings()}, d(150000), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, fallback := SelectRate(tt.in)
			assert.True(t, tt.want.Equal(rate), rate.String())
			assert.Equal(t, tt.wantFallback, fallback)
		})
	}
}

func TestCalculate_DirectCheckInExample(t *testing.T) {
	q, err := Calculate(Input{
		Tiers:       []Tier{{PersonCount: 1, Price: d(80000)}},
		Category:    models.CategoryHotel,
		PersonCount: 1,
		CheckIn:     date("2026-10-01"),
		CheckOut:    datePtr("2026-10-03"),
		Settings:    baseSettings(),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, q.Nights)
	assert.True(t, q.Total.Equal(d(160000)), q.Total.String())
	assert.True(t, q.IVA.IsZero())
	assert.True(t, q.FinalTotal.Equal(q.Total))
}

func TestCalculate_InvoiceAndMattress(t *testing.T) {
	q, err := Calculate(Input{
		Tiers:            []Tier{{PersonCount: 1, Price: d(80000)}},
		PersonCount:      2,
		CheckIn:          date("2026-10-01"),
		CheckOut:         datePtr("2026-10-02"),
		MattressCount:    1,
		InvoiceRequested: true,
		Settings:         baseSettings(),
	})
	require.NoError(t, err)
	assert.True(t, q.Subtotal.Equal(d(100000)), q.Subtotal.String())
	assert.True(t, q.IVA.Equal(d(19000)), q.IVA.String())
	assert.True(t, q.Total.Equal(d(119000)))
	assert.True(t, q.Total.GreaterThanOrEqual(q.SubtotalLodging))
}

func TestCalculate_IVARounding(t *testing.T) {
	q, err := Calculate(Input{
		Tiers:            []Tier{{PersonCount: 1, Price: d(33333)}},
		PersonCount:      1,
		CheckIn:          date("2026-10-01"),
		InvoiceRequested: true,
		Settings:         baseSettings(),
	})
	require.NoError(t, err)
	// 33333 * 19% = 6333.27
	assert.True(t, q.IVA.Equal(d(6333)), q.IVA.String())
}

func TestCalculate_Discount(t *testing.T) {
	in := Input{
		Tiers:       []Tier{{PersonCount: 1, Price: d(80000)}},
		PersonCount: 1,
		CheckIn:     date("2026-10-01"),
		Settings:    baseSettings(),
	}

	discount := d(30000)
	in.Discount = &discount
	q, err := Calculate(in)
	require.NoError(t, err)
	assert.True(t, q.FinalTotal.Equal(d(50000)))

	big := d(100000)
	in.Discount = &big
	q, err = Calculate(in)
	require.NoError(t, err)
	assert.True(t, q.FinalTotal.IsZero())

	zero := decimal.Zero
	in.Discount = &zero
	_, err = Calculate(in)
	assert.ErrorIs(t, err, errors.ErrInvalidDiscount)
}

func TestCalculate_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want error
	}{
		{"sin personas", Input{PersonCount: 0, CheckIn: date("2026-10-01")}, errors.ErrInvalidParams},
		{"colchones negativos", Input{PersonCount: 1, MattressCount: -1, CheckIn: date("2026-10-01")}, errors.ErrInvalidParams},
		{"salida antes del ingreso", Input{PersonCount: 1, CheckIn: date("2026-10-05"), CheckOut: datePtr("2026-10-01")}, errors.ErrInvalidDates},
		{"sin ingreso", Input{PersonCount: 1}, errors.ErrInvalidDates},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Calculate(tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
