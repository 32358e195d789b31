package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/viniuy/didasko-final-sub002/config"
	"github.com/viniuy/didasko-final-sub002/internal/dto"
	"github.com/viniuy/didasko-final-sub002/internal/model"
)

type gradingFixture struct {
	grading GradingService
	scores  GradeScoreService
	configs *gradeConfigService
	m       *mockRepos
}

func setupGradingService() *gradingFixture {
	m, repo := newMockRepos()
	m.seedCourse("c1",
		newStudent("s1", "2024-0001", "Ana", "Cruz"),
		newStudent("s2", "2024-0002", "Ben", "Reyes"),
	)
	cfgSvc := newTestGradeConfigService(repo, &fakeClock{t: time.Date(2024, 8, 1, 8, 0, 0, 0, time.UTC)})
	return &gradingFixture{
		grading: NewGradingService(repo, cfgSvc, testGrading, zap.NewNop()),
		scores:  NewGradeScoreService(repo, cfgSvc, zap.NewNop()),
		configs: cfgSvc,
		m:       m,
	}
}

func (f *gradingFixture) put(t *testing.T, studentID, field string, value float64) {
	t.Helper()
	_, err := f.scores.UpsertComponent(context.Background(), "c1",
		&dto.UpsertComponentRequest{StudentID: studentID, Field: field, Value: value})
	if err != nil {
		t.Fatalf("写入 %s=%v 失败: %v", field, value, err)
	}
}

// ── 加权策略 ──

func TestGradingService_ComputeStudent_Weighted(t *testing.T) {
	f := setupGradingService()
	ctx := context.Background()
	f.configs.Create(ctx, "c1", validConfigRequest(), "")
	f.put(t, "s1", "reporting", 90)
	f.put(t, "s1", "recitation", 80)
	f.put(t, "s1", "quiz", 75)

	got, err := f.grading.ComputeStudent(ctx, "c1", "s1", "")
	if err != nil {
		t.Fatalf("ComputeStudent 应成功: %v", err)
	}
	// 90×0.3 + 80×0.3 + 75×0.4 = 81
	if got.TotalGrade != 81 {
		t.Errorf("期望总评 81，实际 %v", got.TotalGrade)
	}
	if got.Remarks != model.RemarksPassed {
		t.Errorf("期望 PASSED，实际 %s", got.Remarks)
	}
	if !got.Configured || got.Name != "Cruz, Ana" {
		t.Errorf("结果字段不符: %+v", got)
	}
}

func TestGradingService_ComputeStudent_ThresholdInclusive(t *testing.T) {
	f := setupGradingService()
	ctx := context.Background()
	f.configs.Create(ctx, "c1", validConfigRequest(), "")
	f.put(t, "s1", "reporting", 75)
	f.put(t, "s1", "recitation", 75)
	f.put(t, "s1", "quiz", 75)

	got, _ := f.grading.ComputeStudent(ctx, "c1", "s1", "")
	if got.Remarks != model.RemarksPassed {
		t.Errorf("总评等于及格线应判定 PASSED，实际 %s (%v)", got.Remarks, got.TotalGrade)
	}
}

func TestGradingService_ComputeStudent_NoScoresIsZero(t *testing.T) {
	f := setupGradingService()
	ctx := context.Background()
	f.configs.Create(ctx, "c1", validConfigRequest(), "")

	got, err := f.grading.ComputeStudent(ctx, "c1", "s2", "")
	if err != nil {
		t.Fatalf("ComputeStudent 应成功: %v", err)
	}
	if got.TotalGrade != 0 || got.Remarks != model.RemarksFailed {
		t.Errorf("无成绩时应为 0 / FAILED: %+v", got)
	}
}

func TestGradingService_ComputeStudent_NoConfiguration(t *testing.T) {
	f := setupGradingService()

	got, err := f.grading.ComputeStudent(context.Background(), "c1", "s1", "")
	if err != nil {
		t.Fatalf("无方案时不应报错: %v", err)
	}
	if got.Configured || got.TotalGrade != 0 || got.Remarks != model.RemarksFailed {
		t.Errorf("无方案时应为未配置 / 0 / FAILED: %+v", got)
	}
}

func TestGradingService_ComputeStudent_HistoricalConfig(t *testing.T) {
	f := setupGradingService()
	ctx := context.Background()
	orig, _ := f.configs.Create(ctx, "c1", validConfigRequest(), "")
	f.put(t, "s1", "reporting", 100)

	// 新方案 reporting 权重为 0
	f.configs.Update(ctx, orig.ID, &dto.UpdateGradeConfigRequest{
		ReportingWeight:  ptr(0.0),
		RecitationWeight: ptr(60.0),
	}, "")

	cur, _ := f.grading.ComputeStudent(ctx, "c1", "s1", "")
	old, err := f.grading.ComputeStudent(ctx, "c1", "s1", orig.ID)
	if err != nil {
		t.Fatalf("按历史方案计算应成功: %v", err)
	}
	if old.TotalGrade != 30 {
		t.Errorf("历史方案下期望 30，实际 %v", old.TotalGrade)
	}
	if cur.TotalGrade != 0 {
		t.Errorf("当前方案下期望 0，实际 %v", cur.TotalGrade)
	}
}

func TestGradingService_ComputeStudent_NotEnrolled(t *testing.T) {
	f := setupGradingService()
	f.m.student.students["ghost"] = newStudent("ghost", "2024-0099", "Gho", "St")

	_, err := f.grading.ComputeStudent(context.Background(), "c1", "ghost", "")
	if !errors.Is(err, ErrNotEnrolled) {
		t.Errorf("期望 ErrNotEnrolled，实际: %v", err)
	}
}

func TestGradingService_ComputeCourse(t *testing.T) {
	f := setupGradingService()
	ctx := context.Background()
	f.configs.Create(ctx, "c1", validConfigRequest(), "")
	f.put(t, "s1", "quiz", 100)

	list, err := f.grading.ComputeCourse(ctx, "c1")
	if err != nil {
		t.Fatalf("ComputeCourse 应成功: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("期望 2 名学生，实际 %d", len(list))
	}
	totals := map[string]float64{}
	for _, g := range list {
		totals[g.StudentID] = g.TotalGrade
	}
	if totals["s1"] != 40 || totals["s2"] != 0 {
		t.Errorf("课程汇总不符: %v", totals)
	}
}

// ── 内容/清晰度策略 ──

func TestGradingService_Rubric_Failed(t *testing.T) {
	f := setupGradingService()
	ctx := context.Background()

	f.grading.RecordRubricGrade(ctx, "c1", &dto.RecordRubricGradeRequest{StudentID: "s1", Type: "CONTENT", Value: 7})
	got, err := f.grading.RecordRubricGrade(ctx, "c1", &dto.RecordRubricGradeRequest{StudentID: "s1", Type: "CLARITY", Value: 7})
	if err != nil {
		t.Fatalf("RecordRubricGrade 应成功: %v", err)
	}
	if got.TotalGrade != 70 || got.Remarks != model.RemarksFailed {
		t.Errorf("7 + 7 期望 70 / FAILED，实际 %v / %s", got.TotalGrade, got.Remarks)
	}
}

func TestGradingService_Rubric_PassedAtThreshold(t *testing.T) {
	f := setupGradingService()
	ctx := context.Background()

	f.grading.RecordRubricGrade(ctx, "c1", &dto.RecordRubricGradeRequest{StudentID: "s1", Type: "CONTENT", Value: 8})
	f.grading.RecordRubricGrade(ctx, "c1", &dto.RecordRubricGradeRequest{StudentID: "s1", Type: "CLARITY", Value: 7})

	got, err := f.grading.ComputeRubricStudent(ctx, "c1", "s1")
	if err != nil {
		t.Fatalf("ComputeRubricStudent 应成功: %v", err)
	}
	if got.TotalGrade != 75 || got.Remarks != model.RemarksPassed {
		t.Errorf("8 + 7 期望 75 / PASSED，实际 %v / %s", got.TotalGrade, got.Remarks)
	}
}

func TestGradingService_Rubric_Overwrite(t *testing.T) {
	f := setupGradingService()
	ctx := context.Background()

	f.grading.RecordRubricGrade(ctx, "c1", &dto.RecordRubricGradeRequest{StudentID: "s1", Type: "CONTENT", Value: 2})
	f.grading.RecordRubricGrade(ctx, "c1", &dto.RecordRubricGradeRequest{StudentID: "s1", Type: "CONTENT", Value: 10})

	got, _ := f.grading.ComputeRubricStudent(ctx, "c1", "s1")
	if got.Content != 10 {
		t.Errorf("重复打分应覆盖，期望 10，实际 %v", got.Content)
	}
	if len(f.m.rubric.items) != 1 {
		t.Errorf("同类型评分项应只建一次，实际 %d", len(f.m.rubric.items))
	}
}

func TestGradingService_Rubric_Validation(t *testing.T) {
	f := setupGradingService()
	ctx := context.Background()

	if _, err := f.grading.RecordRubricGrade(ctx, "c1", &dto.RecordRubricGradeRequest{StudentID: "s1", Type: "STYLE", Value: 5}); !errors.Is(err, ErrRubricTypeInvalid) {
		t.Errorf("期望 ErrRubricTypeInvalid，实际: %v", err)
	}
	if _, err := f.grading.RecordRubricGrade(ctx, "c1", &dto.RecordRubricGradeRequest{StudentID: "s1", Type: "CONTENT", Value: 11}); !errors.Is(err, ErrRubricValueRange) {
		t.Errorf("期望 ErrRubricValueRange，实际: %v", err)
	}
}

func TestGradingService_Rubric_ConfiguredThreshold(t *testing.T) {
	m, repo := newMockRepos()
	m.seedCourse("c1", newStudent("s1", "2024-0001", "Ana", "Cruz"))
	grading := NewGradingService(repo, NewGradeConfigService(repo, nil, zap.NewNop()),
		&config.GradingConfig{RubricPassingThreshold: 60}, zap.NewNop())
	ctx := context.Background()

	grading.RecordRubricGrade(ctx, "c1", &dto.RecordRubricGradeRequest{StudentID: "s1", Type: "CONTENT", Value: 7})
	got, _ := grading.RecordRubricGrade(ctx, "c1", &dto.RecordRubricGradeRequest{StudentID: "s1", Type: "CLARITY", Value: 6})
	if got.Remarks != model.RemarksPassed {
		t.Errorf("及格线 60 时 65 应 PASSED，实际 %s", got.Remarks)
	}
}

func TestGradingService_Rubric_ZeroThreshold(t *testing.T) {
	m, repo := newMockRepos()
	m.seedCourse("c1", newStudent("s1", "2024-0001", "Ana", "Cruz"))
	grading := NewGradingService(repo, NewGradeConfigService(repo, nil, zap.NewNop()),
		&config.GradingConfig{RubricPassingThreshold: 0}, zap.NewNop())
	ctx := context.Background()

	grading.RecordRubricGrade(ctx, "c1", &dto.RecordRubricGradeRequest{StudentID: "s1", Type: "CONTENT", Value: 1})
	got, err := grading.RecordRubricGrade(ctx, "c1", &dto.RecordRubricGradeRequest{StudentID: "s1", Type: "CLARITY", Value: 1})
	if err != nil {
		t.Fatalf("RecordRubricGrade 应成功: %v", err)
	}
	if got.Remarks != model.RemarksPassed {
		t.Errorf("配置及格线 0 时 10 分应 PASSED，实际 %s", got.Remarks)
	}
}

func TestGradingService_Rubric_DefaultThreshold(t *testing.T) {
	m, repo := newMockRepos()
	m.seedCourse("c1", newStudent("s1", "2024-0001", "Ana", "Cruz"))
	grading := NewGradingService(repo, NewGradeConfigService(repo, nil, zap.NewNop()), nil, zap.NewNop())
	ctx := context.Background()

	grading.RecordRubricGrade(ctx, "c1", &dto.RecordRubricGradeRequest{StudentID: "s1", Type: "CONTENT", Value: 7})
	got, _ := grading.RecordRubricGrade(ctx, "c1", &dto.RecordRubricGradeRequest{StudentID: "s1", Type: "CLARITY", Value: 7})
	if got.Remarks != model.RemarksFailed {
		t.Errorf("未配置时使用默认及格线 75，70 应 FAILED，实际 %s", got.Remarks)
	}
}

func TestRemarks_Epsilon(t *testing.T) {
	if remarks(74.9999999999, 75) != model.RemarksPassed {
		t.Error("浮点误差内应判定 PASSED")
	}
	if remarks(74.99, 75) != model.RemarksFailed {
		t.Error("74.99 应判定 FAILED")
	}
}
