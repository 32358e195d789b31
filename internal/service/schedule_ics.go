package service

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
	_ "time/tzdata" // 容器镜像可能不带时区库

	ics "github.com/arran4/golang-ical"

	"github.com/viniuy/didasko-final-sub002/internal/model"
)

// ── 课表 ICS 解析 ──────────────────────────────────────────
//
// 将教师日历导出（RFC 5545）转为课程的每周上课时间：
//   - DTSTART 决定星期几与开始时间，DTEND（或 DURATION）决定结束时间
//   - 重复规则与单次事件一视同仁，只取其所在的星期与时段
//   - 同一 星期+时段 只保留一条
//   - match 非空时仅保留 SUMMARY 包含该关键字的事件（忽略大小写与空格）
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize   = 5 * 1024 * 1024 // 5MB
	scheduleTimezone = "Asia/Manila"
)

var (
	ErrScheduleICSBadFile = errors.New("无法解析 ICS 日历文件")
	ErrScheduleICSEmpty   = errors.New("日历中没有可导入的上课时间")
)

// ParseScheduleICS 解析日历并返回去重、排序后的每周上课时间（未填 CourseID）
func ParseScheduleICS(reader io.Reader, match string) ([]model.CourseSchedule, error) {
	cal, err := ics.ParseCalendar(io.LimitReader(reader, icsMaxFileSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScheduleICSBadFile, err)
	}

	loc, err := time.LoadLocation(scheduleTimezone)
	if err != nil {
		loc = time.UTC
	}
	needle := normalizeSummary(match)

	type slotKey struct {
		day        int
		start, end string
	}
	seen := make(map[slotKey]bool)
	var slots []model.CourseSchedule

	for _, evt := range cal.Events() {
		if needle != "" {
			summary := evt.GetProperty(ics.ComponentPropertySummary)
			if summary == nil || !strings.Contains(normalizeSummary(summary.Value), needle) {
				continue
			}
		}

		start, end, ok := eventWindow(evt, loc)
		if !ok {
			continue
		}
		// 跨天事件不是课堂
		if end.Format("2006-01-02") != start.Format("2006-01-02") {
			continue
		}

		k := slotKey{day: isoWeekday(start.Weekday()), start: start.Format("15:04"), end: end.Format("15:04")}
		if seen[k] {
			continue
		}
		seen[k] = true
		slots = append(slots, model.CourseSchedule{DayOfWeek: k.day, StartTime: k.start, EndTime: k.end})
	}

	if len(slots) == 0 {
		return nil, ErrScheduleICSEmpty
	}

	sort.Slice(slots, func(i, j int) bool {
		if slots[i].DayOfWeek != slots[j].DayOfWeek {
			return slots[i].DayOfWeek < slots[j].DayOfWeek
		}
		return slots[i].StartTime < slots[j].StartTime
	})
	return slots, nil
}

// eventWindow 事件的开始与结束时间；缺少 DTEND 时使用 DURATION
func eventWindow(evt *ics.VEvent, loc *time.Location) (time.Time, time.Time, bool) {
	start, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}

	end, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd, loc)
	if err != nil {
		prop := evt.GetProperty(ics.ComponentPropertyDuration)
		if prop == nil {
			return time.Time{}, time.Time{}, false
		}
		d, ok := parseICSDuration(prop.Value)
		if !ok {
			return time.Time{}, time.Time{}, false
		}
		end = start.Add(d)
	}

	if !end.After(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// parseICSDateTime 支持 UTC、带 TZID 的本地时间与纯日期三种写法
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, fmt.Errorf("缺少属性 %s", propName)
	}

	tzid := ""
	for k, v := range prop.ICalParameters {
		if strings.EqualFold(k, "TZID") && len(v) > 0 {
			tzid = v[0]
		}
	}

	for _, layout := range []string{"20060102T150405Z", "20060102T150405", "20060102"} {
		t, err := time.Parse(layout, prop.Value)
		if err != nil {
			continue
		}
		if strings.HasSuffix(layout, "Z") {
			return t.In(loc), nil
		}
		src := loc
		if tzid != "" {
			if tzLoc, err := time.LoadLocation(tzid); err == nil {
				src = tzLoc
			}
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, src).In(loc), nil
	}

	return time.Time{}, fmt.Errorf("无法解析日期: %s", prop.Value)
}

// parseICSDuration 解析 PT1H30M 形式的时长（课堂事件不会用到天或周）
func parseICSDuration(v string) (time.Duration, bool) {
	v = strings.ToUpper(strings.TrimSpace(v))
	if !strings.HasPrefix(v, "PT") {
		return 0, false
	}
	d, err := time.ParseDuration(strings.ToLower(strings.TrimPrefix(v, "PT")))
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

// isoWeekday 0=Sunday → 1=Monday … 7=Sunday
func isoWeekday(wd time.Weekday) int {
	if wd == time.Sunday {
		return 7
	}
	return int(wd)
}

func normalizeSummary(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}
