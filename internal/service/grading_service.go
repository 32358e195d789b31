package service

import (
	"context"
	"errors"
	"math"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/viniuy/didasko-final-sub002/config"
	"github.com/viniuy/didasko-final-sub002/internal/dto"
	"github.com/viniuy/didasko-final-sub002/internal/model"
	"github.com/viniuy/didasko-final-sub002/internal/repository"
)

// ── 成绩汇总模块业务错误 ──

var (
	ErrRubricTypeInvalid = errors.New("评分项类型无效，应为 CONTENT / CLARITY")
	ErrRubricValueRange  = errors.New("内容/清晰度得分必须在 0-10 之间")
)

const (
	// defaultRubricThreshold 内容/清晰度策略默认及格线
	defaultRubricThreshold = 75
	// rubricItemMax 单项满分
	rubricItemMax = 10
	// passEpsilon 及格比较的浮点容差
	passEpsilon = 1e-9
)

// GradingService 成绩汇总引擎
// 两种策略相互独立：加权策略（评分方案）与内容/清晰度策略；结果均按请求实时计算，不落库
type GradingService interface {
	// ComputeStudent configID 为空时使用当前方案与最新成绩
	ComputeStudent(ctx context.Context, courseID, studentID, configID string) (*dto.StudentGradeResponse, error)
	ComputeCourse(ctx context.Context, courseID string) ([]dto.StudentGradeResponse, error)

	RecordRubricGrade(ctx context.Context, courseID string, req *dto.RecordRubricGradeRequest) (*dto.RubricGradeResponse, error)
	ComputeRubricStudent(ctx context.Context, courseID, studentID string) (*dto.RubricGradeResponse, error)
	ComputeRubric(ctx context.Context, courseID string) ([]dto.RubricGradeResponse, error)
}

type gradingService struct {
	repo    *repository.Repository
	configs GradeConfigService
	grading *config.GradingConfig
	logger  *zap.Logger
}

// NewGradingService 创建 GradingService 实例
func NewGradingService(repo *repository.Repository, configs GradeConfigService, grading *config.GradingConfig, logger *zap.Logger) GradingService {
	return &gradingService{repo: repo, configs: configs, grading: grading, logger: logger}
}

// ────────────────────── 加权策略 ──────────────────────

func (s *gradingService) ComputeStudent(ctx context.Context, courseID, studentID, configID string) (*dto.StudentGradeResponse, error) {
	if _, err := loadCourse(ctx, s.repo, s.logger, courseID); err != nil {
		return nil, err
	}
	student, err := s.enrolledStudent(ctx, courseID, studentID)
	if err != nil {
		return nil, err
	}

	var (
		cfg   *model.GradeConfiguration
		score *model.GradeScore
	)
	if configID != "" {
		cfg, err = s.repo.GradeConfig.GetByID(ctx, configID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrGradeConfigNotFound
			}
			s.logger.Error("查询评分方案失败", zap.String("config_id", configID), zap.Error(err))
			return nil, err
		}
		if cfg.CourseID != courseID {
			return nil, ErrGradeConfigCourseDiffer
		}
		score, err = s.repo.GradeScore.GetForConfig(ctx, courseID, studentID, configID)
	} else {
		if cfg, err = s.configs.Resolve(ctx, courseID); err != nil {
			return nil, err
		}
		score, err = s.repo.GradeScore.Latest(ctx, courseID, studentID, nil, nil)
	}
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询分项成绩失败", zap.String("student_id", studentID), zap.Error(err))
			return nil, err
		}
		score = nil
	}

	result := weightedGrade(score, cfg)
	result.StudentID = student.StudentID
	result.StudentNumber = student.StudentNumber
	result.Name = student.FullName()
	return &result, nil
}

func (s *gradingService) ComputeCourse(ctx context.Context, courseID string) ([]dto.StudentGradeResponse, error) {
	if _, err := loadCourse(ctx, s.repo, s.logger, courseID); err != nil {
		return nil, err
	}
	students, err := s.repo.Enrollment.ListStudents(ctx, courseID)
	if err != nil {
		s.logger.Error("查询选课学生失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	cfg, err := s.configs.Resolve(ctx, courseID)
	if err != nil {
		return nil, err
	}
	scores, err := s.repo.GradeScore.LatestByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("查询课程成绩失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	byStudent := make(map[string]*model.GradeScore, len(scores))
	for i := range scores {
		byStudent[scores[i].StudentID] = &scores[i]
	}

	result := make([]dto.StudentGradeResponse, 0, len(students))
	for i := range students {
		st := &students[i]
		r := weightedGrade(byStudent[st.StudentID], cfg)
		r.StudentID = st.StudentID
		r.StudentNumber = st.StudentNumber
		r.Name = st.FullName()
		result = append(result, r)
	}
	return result, nil
}

// weightedGrade 加权总评 = Σ 分项 × 权重 / 100
// score 为 nil 时各分项按 0 计；cfg 为 nil 时权重均为 0，结果恒为 FAILED
func weightedGrade(score *model.GradeScore, cfg *model.GradeConfiguration) dto.StudentGradeResponse {
	var r, c, q float64
	if score != nil {
		r, c, q = score.ReportingScore, score.RecitationScore, score.QuizScore
	}

	result := dto.StudentGradeResponse{
		ReportingScore:  round2(r),
		RecitationScore: round2(c),
		QuizScore:       round2(q),
		Remarks:         model.RemarksFailed,
	}
	if cfg == nil {
		return result
	}

	total := r*cfg.ReportingWeight/100 + c*cfg.RecitationWeight/100 + q*cfg.QuizWeight/100
	result.ConfigID = cfg.ConfigID
	result.Configured = true
	result.TotalGrade = round2(total)
	result.Remarks = remarks(total, cfg.PassingThreshold)
	return result
}

// ────────────────────── 内容/清晰度策略 ──────────────────────

func (s *gradingService) RecordRubricGrade(ctx context.Context, courseID string, req *dto.RecordRubricGradeRequest) (*dto.RubricGradeResponse, error) {
	if req.Type != model.GradeItemContent && req.Type != model.GradeItemClarity {
		return nil, ErrRubricTypeInvalid
	}
	if req.Value < 0 || req.Value > rubricItemMax {
		return nil, ErrRubricValueRange
	}
	if _, err := loadActiveCourse(ctx, s.repo, s.logger, courseID); err != nil {
		return nil, err
	}
	if _, err := s.enrolledStudent(ctx, courseID, req.StudentID); err != nil {
		return nil, err
	}

	item, err := s.repo.Rubric.EnsureItem(ctx, courseID, req.Type)
	if err != nil {
		s.logger.Error("初始化评分项失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	grade := &model.Grade{StudentID: req.StudentID, GradeItemID: item.GradeItemID, Value: req.Value}
	if err := s.repo.Rubric.UpsertGrade(ctx, grade); err != nil {
		s.logger.Error("写入评分失败", zap.String("student_id", req.StudentID), zap.Error(err))
		return nil, err
	}

	return s.ComputeRubricStudent(ctx, courseID, req.StudentID)
}

func (s *gradingService) ComputeRubricStudent(ctx context.Context, courseID, studentID string) (*dto.RubricGradeResponse, error) {
	all, err := s.ComputeRubric(ctx, courseID)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].StudentID == studentID {
			return &all[i], nil
		}
	}
	return nil, ErrNotEnrolled
}

func (s *gradingService) ComputeRubric(ctx context.Context, courseID string) ([]dto.RubricGradeResponse, error) {
	if _, err := loadCourse(ctx, s.repo, s.logger, courseID); err != nil {
		return nil, err
	}
	students, err := s.repo.Enrollment.ListStudents(ctx, courseID)
	if err != nil {
		s.logger.Error("查询选课学生失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	items, err := s.repo.Rubric.ListItems(ctx, courseID)
	if err != nil {
		s.logger.Error("查询评分项失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	grades, err := s.repo.Rubric.ListGrades(ctx, courseID)
	if err != nil {
		s.logger.Error("查询评分失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	itemType := make(map[string]string, len(items))
	for _, it := range items {
		itemType[it.GradeItemID] = it.Type
	}
	type pair struct{ content, clarity float64 }
	byStudent := make(map[string]*pair)
	for _, g := range grades {
		p, ok := byStudent[g.StudentID]
		if !ok {
			p = &pair{}
			byStudent[g.StudentID] = p
		}
		switch itemType[g.GradeItemID] {
		case model.GradeItemContent:
			p.content = g.Value
		case model.GradeItemClarity:
			p.clarity = g.Value
		}
	}

	threshold := s.rubricThreshold()
	result := make([]dto.RubricGradeResponse, 0, len(students))
	for i := range students {
		st := &students[i]
		var content, clarity float64
		if p, ok := byStudent[st.StudentID]; ok {
			content, clarity = p.content, p.clarity
		}
		total, rem := rubricGrade(content, clarity, threshold)
		result = append(result, dto.RubricGradeResponse{
			StudentID:     st.StudentID,
			StudentNumber: st.StudentNumber,
			Name:          st.FullName(),
			Content:       round2(content),
			Clarity:       round2(clarity),
			TotalGrade:    round2(total),
			Remarks:       rem,
		})
	}
	return result, nil
}

// rubricGrade 总评 = (内容 + 清晰度) / 20 × 100，两项各满分 10、权重各半
func rubricGrade(content, clarity, threshold float64) (float64, string) {
	total := (content + clarity) / (2 * rubricItemMax) * 100
	return total, remarks(total, threshold)
}

func (s *gradingService) rubricThreshold() float64 {
	if s.grading == nil {
		return defaultRubricThreshold
	}
	return s.grading.RubricPassingThreshold
}

// ── 内部辅助方法 ──

func (s *gradingService) enrolledStudent(ctx context.Context, courseID, studentID string) (*model.Student, error) {
	student, err := s.repo.Student.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	ok, err := s.repo.Enrollment.IsEnrolled(ctx, courseID, studentID)
	if err != nil {
		s.logger.Error("查询选课关系失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	if !ok {
		return nil, ErrNotEnrolled
	}
	return student, nil
}

func remarks(total, threshold float64) string {
	if total+passEpsilon >= threshold {
		return model.RemarksPassed
	}
	return model.RemarksFailed
}

// round2 展示层保留两位小数
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
