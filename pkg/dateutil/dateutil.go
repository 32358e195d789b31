package dateutil

import "time"

// Layout ISO 日期格式
const Layout = "2006-01-02"

// Parse 解析 YYYY-MM-DD，结果为 UTC 零点
func Parse(s string) (time.Time, error) {
	return time.ParseInLocation(Layout, s, time.UTC)
}

// Day 截断为 UTC 自然日零点
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Format 格式化为 YYYY-MM-DD
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// FormatPtr nil 时返回空串
func FormatPtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return Format(*t)
}

// Range 闭区间 [from, to] 内的每一天
func Range(from, to time.Time) []time.Time {
	from, to = Day(from), Day(to)
	var days []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
