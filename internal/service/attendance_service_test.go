package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/viniuy/didasko-final-sub002/internal/dto"
	"github.com/viniuy/didasko-final-sub002/internal/model"
)

func setupAttendanceService(n int) (AttendanceService, *mockRepos) {
	m, repo := newMockRepos()
	students := make([]*model.Student, 0, n)
	for i := 1; i <= n; i++ {
		students = append(students, newStudent(
			fmt.Sprintf("s%02d", i), fmt.Sprintf("2024-%04d", i), "Stu", fmt.Sprintf("Last%02d", i)))
	}
	m.seedCourse("c1", students...)
	return NewAttendanceService(repo, zap.NewNop()), m
}

// ── Record ──

func TestAttendanceService_Record_Idempotent(t *testing.T) {
	svc, m := setupAttendanceService(1)
	ctx := context.Background()
	req := &dto.RecordAttendanceRequest{StudentID: "s01", Date: "2024-03-01", Status: "PRESENT"}

	first, err := svc.Record(ctx, "c1", req, "u1")
	if err != nil {
		t.Fatalf("首次登记应成功: %v", err)
	}
	second, err := svc.Record(ctx, "c1", req, "u1")
	if err != nil {
		t.Fatalf("重复登记应成功: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("同一学生同一天应复用记录，期望 %s，实际 %s", first.ID, second.ID)
	}
	if len(m.attendance.records) != 1 {
		t.Errorf("期望 1 条记录，实际 %d", len(m.attendance.records))
	}
}

func TestAttendanceService_Record_Overwrite(t *testing.T) {
	svc, m := setupAttendanceService(1)
	ctx := context.Background()

	if _, err := svc.Record(ctx, "c1", &dto.RecordAttendanceRequest{StudentID: "s01", Date: "2024-03-01", Status: "ABSENT"}, ""); err != nil {
		t.Fatalf("登记应成功: %v", err)
	}
	if _, err := svc.Record(ctx, "c1", &dto.RecordAttendanceRequest{StudentID: "s01", Date: "2024-03-01", Status: "LATE"}, ""); err != nil {
		t.Fatalf("覆盖登记应成功: %v", err)
	}

	statuses, err := svc.StatusOnDate(ctx, "c1", "2024-03-01")
	if err != nil {
		t.Fatalf("StatusOnDate 应成功: %v", err)
	}
	if statuses["s01"] != model.AttendanceLate {
		t.Errorf("期望 LATE，实际 %s", statuses["s01"])
	}
	if len(m.attendance.records) != 1 {
		t.Errorf("覆盖后仍应只有 1 条记录，实际 %d", len(m.attendance.records))
	}
}

func TestAttendanceService_Record_InvalidStatus(t *testing.T) {
	svc, _ := setupAttendanceService(1)
	_, err := svc.Record(context.Background(), "c1",
		&dto.RecordAttendanceRequest{StudentID: "s01", Date: "2024-03-01", Status: "NOT_SET"}, "")
	if !errors.Is(err, ErrAttendanceStatusInvalid) {
		t.Errorf("NOT_SET 不可落库，期望 ErrAttendanceStatusInvalid，实际: %v", err)
	}
}

func TestAttendanceService_Record_NotEnrolled(t *testing.T) {
	svc, m := setupAttendanceService(1)
	m.student.students["outsider"] = newStudent("outsider", "2024-9999", "Out", "Sider")

	_, err := svc.Record(context.Background(), "c1",
		&dto.RecordAttendanceRequest{StudentID: "outsider", Date: "2024-03-01", Status: "PRESENT"}, "")
	if !errors.Is(err, ErrNotEnrolled) {
		t.Errorf("期望 ErrNotEnrolled，实际: %v", err)
	}
}

func TestAttendanceService_Record_CourseNotFound(t *testing.T) {
	svc, _ := setupAttendanceService(1)
	_, err := svc.Record(context.Background(), "missing",
		&dto.RecordAttendanceRequest{StudentID: "s01", Date: "2024-03-01", Status: "PRESENT"}, "")
	if !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}
}

// ── RecordBatch ──

func TestAttendanceService_RecordBatch_LastEntryWins(t *testing.T) {
	svc, _ := setupAttendanceService(2)
	ctx := context.Background()

	n, err := svc.RecordBatch(ctx, "c1", &dto.RecordAttendanceBatchRequest{
		Date: "2024-03-01",
		Records: []dto.AttendanceEntry{
			{StudentID: "s01", Status: "ABSENT"},
			{StudentID: "s02", Status: "PRESENT"},
			{StudentID: "s01", Status: "EXCUSED"},
		},
	}, "")
	if err != nil {
		t.Fatalf("批量登记应成功: %v", err)
	}
	if n != 2 {
		t.Errorf("期望写入 2 条，实际 %d", n)
	}

	statuses, _ := svc.StatusOnDate(ctx, "c1", "2024-03-01")
	if statuses["s01"] != model.AttendanceExcused {
		t.Errorf("同一学生以最后一条为准，期望 EXCUSED，实际 %s", statuses["s01"])
	}
}

func TestAttendanceService_RecordBatch_RejectsWholeBatch(t *testing.T) {
	svc, m := setupAttendanceService(2)

	_, err := svc.RecordBatch(context.Background(), "c1", &dto.RecordAttendanceBatchRequest{
		Date: "2024-03-01",
		Records: []dto.AttendanceEntry{
			{StudentID: "s01", Status: "PRESENT"},
			{StudentID: "ghost", Status: "PRESENT"},
		},
	}, "")
	if !errors.Is(err, ErrNotEnrolled) {
		t.Fatalf("期望 ErrNotEnrolled，实际: %v", err)
	}
	if len(m.attendance.records) != 0 {
		t.Errorf("校验失败时不应写入任何记录，实际 %d 条", len(m.attendance.records))
	}
}

// ── Stats / StudentStatuses ──

func TestAttendanceService_Stats_UnrecordedCountsAbsent(t *testing.T) {
	svc, _ := setupAttendanceService(10)
	ctx := context.Background()

	var entries []dto.AttendanceEntry
	for i := 1; i <= 5; i++ {
		entries = append(entries, dto.AttendanceEntry{StudentID: fmt.Sprintf("s%02d", i), Status: "PRESENT"})
	}
	entries = append(entries,
		dto.AttendanceEntry{StudentID: "s06", Status: "LATE"},
		dto.AttendanceEntry{StudentID: "s07", Status: "LATE"},
	)
	if _, err := svc.RecordBatch(ctx, "c1", &dto.RecordAttendanceBatchRequest{Date: "2024-03-01", Records: entries}, ""); err != nil {
		t.Fatalf("批量登记应成功: %v", err)
	}

	stats, err := svc.Stats(ctx, "c1", "2024-03-01")
	if err != nil {
		t.Fatalf("Stats 应成功: %v", err)
	}
	if stats.Total != 10 || stats.Present != 5 || stats.Late != 2 || stats.Absent != 3 {
		t.Errorf("统计不符: %+v", stats)
	}
	if stats.AttendanceRate != 70 {
		t.Errorf("期望出勤率 70，实际 %v", stats.AttendanceRate)
	}
}

func TestAttendanceService_Stats_DefaultsToMostRecentDate(t *testing.T) {
	svc, _ := setupAttendanceService(2)
	ctx := context.Background()

	svc.Record(ctx, "c1", &dto.RecordAttendanceRequest{StudentID: "s01", Date: "2024-03-01", Status: "PRESENT"}, "")
	svc.Record(ctx, "c1", &dto.RecordAttendanceRequest{StudentID: "s02", Date: "2024-03-08", Status: "LATE"}, "")

	stats, err := svc.Stats(ctx, "c1", "")
	if err != nil {
		t.Fatalf("Stats 应成功: %v", err)
	}
	if stats.Date != "2024-03-08" {
		t.Errorf("期望使用最近考勤日 2024-03-08，实际 %s", stats.Date)
	}
	if stats.Late != 1 || stats.Absent != 1 {
		t.Errorf("统计不符: %+v", stats)
	}
}

func TestAttendanceService_Stats_NoRecords(t *testing.T) {
	svc, _ := setupAttendanceService(3)

	stats, err := svc.Stats(context.Background(), "c1", "")
	if err != nil {
		t.Fatalf("Stats 应成功: %v", err)
	}
	if stats.Date != "" || stats.Absent != 3 || stats.AttendanceRate != 0 {
		t.Errorf("无考勤时应全部计为缺勤: %+v", stats)
	}
}

func TestAttendanceService_StudentStatuses_NotSet(t *testing.T) {
	svc, _ := setupAttendanceService(2)
	ctx := context.Background()
	svc.Record(ctx, "c1", &dto.RecordAttendanceRequest{StudentID: "s01", Date: "2024-03-01", Status: "PRESENT"}, "")

	list, err := svc.StudentStatuses(ctx, "c1", "2024-03-01")
	if err != nil {
		t.Fatalf("StudentStatuses 应成功: %v", err)
	}
	got := map[string]string{}
	for _, item := range list {
		got[item.StudentID] = item.Status
	}
	if got["s01"] != "PRESENT" {
		t.Errorf("s01 期望 PRESENT，实际 %s", got["s01"])
	}
	if got["s02"] != string(model.AttendanceNotSet) {
		t.Errorf("未登记学生应展示 NOT_SET，实际 %s", got["s02"])
	}
}

// ── Clear / MostRecentDate ──

func TestAttendanceService_Clear(t *testing.T) {
	svc, _ := setupAttendanceService(1)
	ctx := context.Background()

	rec, _ := svc.Record(ctx, "c1", &dto.RecordAttendanceRequest{StudentID: "s01", Date: "2024-03-01", Status: "PRESENT"}, "")
	n, err := svc.Clear(ctx, "c1", []string{rec.ID})
	if err != nil {
		t.Fatalf("Clear 应成功: %v", err)
	}
	if n != 1 {
		t.Errorf("期望删除 1 条，实际 %d", n)
	}

	d, err := svc.MostRecentDate(ctx, "c1")
	if err != nil {
		t.Fatalf("MostRecentDate 应成功: %v", err)
	}
	if d != nil {
		t.Errorf("清空后最近考勤日应为空，实际 %v", d)
	}
}

func TestAttendanceService_Clear_EmptyIDs(t *testing.T) {
	svc, _ := setupAttendanceService(1)
	if _, err := svc.Clear(context.Background(), "c1", nil); !errors.Is(err, ErrAttendanceIDsEmpty) {
		t.Errorf("期望 ErrAttendanceIDsEmpty，实际: %v", err)
	}
}

// ── RangeSummary ──

func TestAttendanceService_RangeSummary(t *testing.T) {
	svc, _ := setupAttendanceService(1)
	ctx := context.Background()
	for date, status := range map[string]string{
		"2024-03-01": "PRESENT",
		"2024-03-04": "LATE",
		"2024-03-05": "ABSENT",
		"2024-03-20": "PRESENT",
	} {
		svc.Record(ctx, "c1", &dto.RecordAttendanceRequest{StudentID: "s01", Date: date, Status: status}, "")
	}

	sum, err := svc.RangeSummary(ctx, "c1", "s01", "2024-03-01", "2024-03-10")
	if err != nil {
		t.Fatalf("RangeSummary 应成功: %v", err)
	}
	if sum.Present != 1 || sum.Late != 1 || sum.Absent != 1 || sum.Total != 3 {
		t.Errorf("区间汇总不符: %+v", sum)
	}
}

func TestAttendanceService_RangeSummary_Inverted(t *testing.T) {
	svc, _ := setupAttendanceService(1)
	_, err := svc.RangeSummary(context.Background(), "c1", "s01", "2024-03-10", "2024-03-01")
	if !errors.Is(err, ErrAttendanceRangeInvalid) {
		t.Errorf("期望 ErrAttendanceRangeInvalid，实际: %v", err)
	}
}
