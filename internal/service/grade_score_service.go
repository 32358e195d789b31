package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/viniuy/didasko-final-sub002/internal/dto"
	"github.com/viniuy/didasko-final-sub002/internal/model"
	"github.com/viniuy/didasko-final-sub002/internal/repository"
	"github.com/viniuy/didasko-final-sub002/pkg/dateutil"
)

// ── 分项成绩模块业务错误 ──

var (
	ErrScoreFieldInvalid = errors.New("分项字段无效，应为 reporting / recitation / quiz")
	ErrScoreOutOfRange   = errors.New("分项成绩必须在 0-100 之间")
	ErrScoreDateInvalid  = errors.New("日期格式无效，应为 YYYY-MM-DD")
)

// maxSupersedeDepth 沿 supersedes 链回溯的最大层数
const maxSupersedeDepth = 32

// GradeScoreService 分项成绩业务接口
type GradeScoreService interface {
	// Latest 无记录时返回零值占位，不视为错误
	Latest(ctx context.Context, courseID, studentID string, q *dto.LatestScoreQuery) (*dto.GradeScoreResponse, error)
	UpsertComponent(ctx context.Context, courseID string, req *dto.UpsertComponentRequest) (*dto.GradeScoreResponse, error)
	// UpsertComponents 针对当前方案批量写入同一分项，单事务
	UpsertComponents(ctx context.Context, courseID string, req *dto.UpsertComponentsRequest) (int, error)
}

type gradeScoreService struct {
	repo    *repository.Repository
	configs GradeConfigService
	logger  *zap.Logger
}

// NewGradeScoreService 创建 GradeScoreService 实例
func NewGradeScoreService(repo *repository.Repository, configs GradeConfigService, logger *zap.Logger) GradeScoreService {
	return &gradeScoreService{repo: repo, configs: configs, logger: logger}
}

// ────────────────────── Latest ──────────────────────

func (s *gradeScoreService) Latest(ctx context.Context, courseID, studentID string, q *dto.LatestScoreQuery) (*dto.GradeScoreResponse, error) {
	if _, err := loadCourse(ctx, s.repo, s.logger, courseID); err != nil {
		return nil, err
	}

	var (
		score *model.GradeScore
		err   error
	)
	if q != nil && q.ConfigID != "" {
		score, err = s.repo.GradeScore.GetForConfig(ctx, courseID, studentID, q.ConfigID)
	} else {
		var from, to *time.Time
		if q != nil {
			if from, err = parseScoreDate(q.From, 0); err != nil {
				return nil, err
			}
			// to 为闭区间，按次日零点作为开区间上界
			if to, err = parseScoreDate(q.To, 1); err != nil {
				return nil, err
			}
		}
		score, err = s.repo.GradeScore.Latest(ctx, courseID, studentID, from, to)
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.GradeScoreResponse{StudentID: studentID, CourseID: courseID, Placeholder: true}, nil
		}
		s.logger.Error("查询分项成绩失败",
			zap.String("course_id", courseID), zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	return toGradeScoreResponse(score), nil
}

// ────────────────────── UpsertComponent ──────────────────────

func (s *gradeScoreService) UpsertComponent(ctx context.Context, courseID string, req *dto.UpsertComponentRequest) (*dto.GradeScoreResponse, error) {
	if !model.ValidComponent(req.Field) {
		return nil, ErrScoreFieldInvalid
	}
	if req.Value < 0 || req.Value > 100 {
		return nil, ErrScoreOutOfRange
	}
	if _, err := loadActiveCourse(ctx, s.repo, s.logger, courseID); err != nil {
		return nil, err
	}
	cfg, err := s.targetConfig(ctx, courseID, req.ConfigID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEnrolled(ctx, courseID, []string{req.StudentID}); err != nil {
		return nil, err
	}

	score, err := s.write(ctx, s.repo, courseID, req.StudentID, cfg, req.Field, req.Value)
	if err != nil {
		return nil, err
	}
	return toGradeScoreResponse(score), nil
}

// ────────────────────── UpsertComponents ──────────────────────

func (s *gradeScoreService) UpsertComponents(ctx context.Context, courseID string, req *dto.UpsertComponentsRequest) (int, error) {
	if !model.ValidComponent(req.Field) {
		return 0, ErrScoreFieldInvalid
	}
	ids := make([]string, 0, len(req.Entries))
	for _, e := range req.Entries {
		if e.Value < 0 || e.Value > 100 {
			return 0, ErrScoreOutOfRange
		}
		ids = append(ids, e.StudentID)
	}
	if _, err := loadActiveCourse(ctx, s.repo, s.logger, courseID); err != nil {
		return 0, err
	}
	cfg, err := s.targetConfig(ctx, courseID, "")
	if err != nil {
		return 0, err
	}
	if err := s.ensureEnrolled(ctx, courseID, dedupe(ids)); err != nil {
		return 0, err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return 0, err
	}
	txRepo := s.repo.WithTx(tx)

	for _, e := range req.Entries {
		if _, err := s.write(ctx, txRepo, courseID, e.StudentID, cfg, req.Field, e.Value); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			return 0, err
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return 0, err
		}
	}
	return len(req.Entries), nil
}

// ── 内部辅助方法 ──

// write 同一方案下原地更新；否则追加新行
// 新方案是学生最新成绩所在方案的后续快照时，沿用其余分项
func (s *gradeScoreService) write(ctx context.Context, repo *repository.Repository, courseID, studentID string, cfg *model.GradeConfiguration, field string, value float64) (*model.GradeScore, error) {
	existing, err := repo.GradeScore.GetForConfig(ctx, courseID, studentID, cfg.ConfigID)
	if err == nil {
		if err := repo.GradeScore.UpdateComponent(ctx, existing.GradeScoreID, field, value); err != nil {
			s.logger.Error("更新分项成绩失败",
				zap.String("student_id", studentID), zap.String("field", field), zap.Error(err))
			return nil, err
		}
		existing.SetComponent(field, value)
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询分项成绩失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	score := &model.GradeScore{
		StudentID: studentID,
		CourseID:  courseID,
		ConfigID:  cfg.ConfigID,
	}
	prior, err := repo.GradeScore.Latest(ctx, courseID, studentID, nil, nil)
	switch {
	case err == nil:
		carry, err := s.supersedes(ctx, repo, cfg, prior.ConfigID)
		if err != nil {
			return nil, err
		}
		if carry {
			score.ReportingScore = prior.ReportingScore
			score.RecitationScore = prior.RecitationScore
			score.QuizScore = prior.QuizScore
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		s.logger.Error("查询分项成绩失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}
	score.SetComponent(field, value)

	if err := repo.GradeScore.Create(ctx, score); err != nil {
		s.logger.Error("写入分项成绩失败",
			zap.String("student_id", studentID), zap.String("config_id", cfg.ConfigID), zap.Error(err))
		return nil, err
	}
	return score, nil
}

// supersedes cfg 是否沿 supersedes 链派生自 ancestorID
func (s *gradeScoreService) supersedes(ctx context.Context, repo *repository.Repository, cfg *model.GradeConfiguration, ancestorID string) (bool, error) {
	next := cfg.SupersedesID
	for depth := 0; next != nil && depth < maxSupersedeDepth; depth++ {
		if *next == ancestorID {
			return true, nil
		}
		parent, err := repo.GradeConfig.GetByID(ctx, *next)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			s.logger.Error("查询评分方案失败", zap.String("config_id", *next), zap.Error(err))
			return false, err
		}
		next = parent.SupersedesID
	}
	return false, nil
}

// targetConfig configID 为空时取当前方案；无方案时无法落库
func (s *gradeScoreService) targetConfig(ctx context.Context, courseID, configID string) (*model.GradeConfiguration, error) {
	if configID == "" {
		cfg, err := s.configs.Resolve(ctx, courseID)
		if err != nil {
			return nil, err
		}
		if cfg == nil {
			return nil, ErrNoConfiguration
		}
		return cfg, nil
	}

	cfg, err := s.repo.GradeConfig.GetByID(ctx, configID)
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
	return cfg, nil
}

func (s *gradeScoreService) ensureEnrolled(ctx context.Context, courseID string, studentIDs []string) error {
	enrolled, err := s.repo.Enrollment.FilterEnrolled(ctx, courseID, studentIDs)
	if err != nil {
		s.logger.Error("查询选课关系失败", zap.String("course_id", courseID), zap.Error(err))
		return err
	}
	if len(enrolled) != len(studentIDs) {
		return ErrNotEnrolled
	}
	return nil
}

func parseScoreDate(s string, addDays int) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := dateutil.Parse(s)
	if err != nil {
		return nil, ErrScoreDateInvalid
	}
	d = d.AddDate(0, 0, addDays)
	return &d, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func toGradeScoreResponse(g *model.GradeScore) *dto.GradeScoreResponse {
	return &dto.GradeScoreResponse{
		ID:              g.GradeScoreID,
		StudentID:       g.StudentID,
		CourseID:        g.CourseID,
		ConfigID:        g.ConfigID,
		ReportingScore:  round2(g.ReportingScore),
		RecitationScore: round2(g.RecitationScore),
		QuizScore:       round2(g.QuizScore),
		CreatedAt:       g.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
