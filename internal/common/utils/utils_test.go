package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOnly_KeepsLocalDate(t *testing.T) {
	bogota, err := time.LoadLocation("America/Bogota")
	require.NoError(t, err)

	// 23:30 Bogotá 已是 UTC 次日
	in := time.Date(2026, 10, 19, 23, 30, 0, 0, bogota)
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), DateOnly(in))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-12-24")
	require.NoError(t, err)
	assert.Equal(t, "2026-12-24", FormatDate(d))
	assert.Equal(t, time.UTC, d.Location())

	_, err = ParseDate("24/12/2026")
	assert.Error(t, err)
}

func TestDaysBetween(t *testing.T) {
	ci := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysBetween(ci, ci))
	assert.Equal(t, 2, DaysBetween(ci, ci.AddDate(0, 0, 2)))
	assert.Equal(t, 2, DaysBetween(ci, ci.Add(25*time.Hour)))
	assert.Equal(t, -1, DaysBetween(ci, ci.AddDate(0, 0, -1)))
}

func TestEachDay_CrossesMonth(t *testing.T) {
	from := time.Date(2026, 10, 30, 0, 0, 0, 0, time.UTC)
	var days []string
	EachDay(from, from.AddDate(0, 0, 3), func(day time.Time) {
		days = append(days, FormatDate(day))
	})
	assert.Equal(t, []string{"2026-10-30", "2026-10-31", "2026-11-01"}, days)
}

func TestFormatOrderNumber(t *testing.T) {
	assert.Equal(t, "#000042", FormatOrderNumber(42))
	assert.Equal(t, "#1234567", FormatOrderNumber(1234567))
}

func TestFormatMoney(t *testing.T) {
	cases := map[string]decimal.Decimal{
		"$0":         decimal.Zero,
		"$950":       decimal.NewFromInt(950),
		"$160.000":   decimal.NewFromInt(160000),
		"$1.250.000": decimal.NewFromInt(1250000),
		"-$50.000":   decimal.NewFromInt(-50000),
		"$1.001":     decimal.RequireFromString("1000.6"),
	}
	for want, in := range cases {
		assert.Equal(t, want, FormatMoney(in))
	}
}

func TestPointers(t *testing.T) {
	assert.Equal(t, "", SafeString(nil))
	assert.Equal(t, "x", SafeString(StringPtr("x")))
	assert.Equal(t, int64(0), SafeInt64(nil))
	assert.Nil(t, NilIfEmpty(""))
	assert.Equal(t, "a", *NilIfEmpty("a"))
}

func TestPagination_Normalize(t *testing.T) {
	p := Pagination{Page: 0, PageSize: 500}
	p.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.PageSize)

	p = Pagination{Page: 3}
	p.Normalize()
	assert.Equal(t, 20, p.PageSize)
	assert.Equal(t, 40, p.GetOffset())
	assert.Equal(t, 20, p.GetLimit())
}
