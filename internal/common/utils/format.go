package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatOrderNumber 凭证和通知上展示的订单号
func FormatOrderNumber(n int64) string {
	return fmt.Sprintf("#%06d", n)
}

// FormatMoney 取整后以点号分隔千位，如 $160.000
func FormatMoney(d decimal.Decimal) string {
	rounded := d.Round(0)
	digits := rounded.Abs().String()

	var b strings.Builder
	if rounded.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteByte(digits[i])
	}
	return b.String()
}

func StringPtr(s string) *string { return &s }

// SafeString nil 视为空串
func SafeString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func SafeInt64(i *int64) int64 {
	if i == nil {
		return 0
	}
	return *i
}

// NilIfEmpty 空串存为 NULL
func NilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
