// Package utils 日期、金额展示和分页等通用工具
package utils

import "time"

// DateLayout 日历日期格式
const DateLayout = "2006-01-02"

// DateOnly 取本地日期部分，统一表示为 UTC 零点
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate 解析 YYYY-MM-DD
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return DateOnly(t), nil
}

// FormatDate 格式化为 YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DaysBetween 两个时刻相差的天数，不足一天按一天计
func DaysBetween(from, to time.Time) int {
	const day = 24 * time.Hour
	d := to.Sub(from)
	days := int(d / day)
	if d%day > 0 {
		days++
	}
	return days
}

// EachDay 依次回调 [from, to) 内的每个日期
func EachDay(from, to time.Time, fn func(day time.Time)) {
	for day := DateOnly(from); day.Before(to); day = day.AddDate(0, 0, 1) {
		fn(day)
	}
}
