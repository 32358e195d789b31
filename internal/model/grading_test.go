package model

import (
	"strings"
	"testing"
	"time"
)

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestGradeConfiguration_Covers(t *testing.T) {
	start, end := day("2024-03-01"), day("2024-03-31")

	tests := []struct {
		name  string
		start *time.Time
		end   *time.Time
		on    string
		want  bool
	}{
		{"窗口内", &start, &end, "2024-03-15", true},
		{"起始日包含", &start, &end, "2024-03-01", true},
		{"结束日包含", &start, &end, "2024-03-31", true},
		{"窗口前", &start, &end, "2024-02-29", false},
		{"窗口后", &start, &end, "2024-04-01", false},
		{"仅起始", &start, nil, "2030-01-01", true},
		{"无窗口", nil, nil, "1999-01-01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &GradeConfiguration{StartDate: tt.start, EndDate: tt.end}
			if got := cfg.Covers(day(tt.on)); got != tt.want {
				t.Errorf("Covers(%s) = %v，期望 %v", tt.on, got, tt.want)
			}
		})
	}
}

func TestGradeScore_Components(t *testing.T) {
	var g GradeScore
	g.SetComponent(ComponentReporting, 80)
	g.SetComponent(ComponentQuiz, 90)
	g.SetComponent("attendance", 100)

	if g.Component(ComponentReporting) != 80 || g.Component(ComponentQuiz) != 90 {
		t.Errorf("分项读写不一致: %+v", g)
	}
	if g.Component(ComponentRecitation) != 0 {
		t.Error("未写入的分项应为 0")
	}
	if ComponentColumn(ComponentQuiz) != "quiz_score" {
		t.Errorf("列名错误: %s", ComponentColumn(ComponentQuiz))
	}
}

func TestNewConfigID(t *testing.T) {
	at := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	id := NewConfigID("course-1", at)
	if !strings.HasPrefix(id, "course-1-") {
		t.Errorf("方案 ID 应以课程 ID 开头: %s", id)
	}
	if id == NewConfigID("course-1", at.Add(time.Nanosecond)) {
		t.Error("不同创建时间应生成不同 ID")
	}
}

func TestAttendanceStatus(t *testing.T) {
	if AttendanceNotSet.Valid() {
		t.Error("NOT_SET 不可落库")
	}
	for _, s := range []AttendanceStatus{AttendancePresent, AttendanceLate, AttendanceAbsent, AttendanceExcused} {
		if !s.Valid() {
			t.Errorf("%s 应为合法状态", s)
		}
	}
	if !AttendanceLate.Attended() || AttendanceExcused.Attended() {
		t.Error("仅到课与迟到视为出勤")
	}
}
