package service

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/viniuy/didasko-final-sub002/config"
	"github.com/viniuy/didasko-final-sub002/internal/dto"
	"github.com/viniuy/didasko-final-sub002/internal/model"
	"github.com/viniuy/didasko-final-sub002/internal/repository"
	"github.com/viniuy/didasko-final-sub002/pkg/dateutil"
)

// ── 评分方案模块业务错误 ──

var (
	ErrGradeConfigNotFound     = errors.New("评分方案不存在")
	ErrNoConfiguration         = errors.New("课程尚未配置评分方案")
	ErrGradeConfigWeightSum    = errors.New("三项权重之和必须为 100")
	ErrGradeConfigWeight       = errors.New("权重必须在 0-100 之间")
	ErrGradeConfigThreshold    = errors.New("及格线必须在 0-100 之间")
	ErrGradeConfigWindow       = errors.New("有效期结束日期不能早于开始日期")
	ErrGradeConfigDateInvalid  = errors.New("日期格式无效，应为 YYYY-MM-DD")
	ErrGradeConfigSuperseded   = errors.New("该评分方案已被新版本替代，请基于最新版本修改")
	ErrGradeConfigCourseDiffer = errors.New("评分方案不属于该课程")
)

// weightSumTolerance 权重和的浮点容差
const weightSumTolerance = 0.001

// GradeConfigService 评分方案业务接口
type GradeConfigService interface {
	Create(ctx context.Context, courseID string, req *dto.CreateGradeConfigRequest, callerID string) (*dto.GradeConfigResponse, error)
	Get(ctx context.Context, configID string) (*dto.GradeConfigResponse, error)
	// Current 课程当前方案；无方案时返回 ErrNoConfiguration
	Current(ctx context.Context, courseID string) (*dto.GradeConfigResponse, error)
	// At 有效期覆盖 date 的最新方案，无覆盖时回退到当前方案
	At(ctx context.Context, courseID, date string) (*dto.GradeConfigResponse, error)
	List(ctx context.Context, courseID string) ([]dto.GradeConfigResponse, error)
	// Update 生成新的不可变快照并标记旧方案为已替代
	Update(ctx context.Context, configID string, req *dto.UpdateGradeConfigRequest, callerID string) (*dto.GradeConfigResponse, error)

	// Resolve 供汇总引擎使用：无方案时返回 (nil, nil)
	Resolve(ctx context.Context, courseID string) (*model.GradeConfiguration, error)
}

type gradeConfigService struct {
	repo    *repository.Repository
	grading *config.GradingConfig
	logger  *zap.Logger
	now     func() time.Time
}

// NewGradeConfigService 创建 GradeConfigService 实例
func NewGradeConfigService(repo *repository.Repository, grading *config.GradingConfig, logger *zap.Logger) GradeConfigService {
	return &gradeConfigService{repo: repo, grading: grading, logger: logger, now: time.Now}
}

// ────────────────────── Create ──────────────────────

func (s *gradeConfigService) Create(ctx context.Context, courseID string, req *dto.CreateGradeConfigRequest, callerID string) (*dto.GradeConfigResponse, error) {
	cfg := &model.GradeConfiguration{
		CourseID:         courseID,
		Name:             req.Name,
		ReportingWeight:  req.ReportingWeight,
		RecitationWeight: req.RecitationWeight,
		QuizWeight:       req.QuizWeight,
		PassingThreshold: req.PassingThreshold,
	}
	var err error
	if cfg.StartDate, err = parseOptionalDate(req.StartDate); err != nil {
		return nil, err
	}
	if cfg.EndDate, err = parseOptionalDate(req.EndDate); err != nil {
		return nil, err
	}
	if err := s.validate(cfg); err != nil {
		return nil, err
	}
	if _, err := loadActiveCourse(ctx, s.repo, s.logger, courseID); err != nil {
		return nil, err
	}

	cfg.CreatedAt = s.now().UTC()
	cfg.ConfigID = model.NewConfigID(courseID, cfg.CreatedAt)
	if callerID != "" {
		cfg.CreatedBy = &callerID
	}

	if err := s.repo.GradeConfig.Create(ctx, cfg); err != nil {
		s.logger.Error("创建评分方案失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	return toGradeConfigResponse(cfg), nil
}

// ────────────────────── Get / List ──────────────────────

func (s *gradeConfigService) Get(ctx context.Context, configID string) (*dto.GradeConfigResponse, error) {
	cfg, err := s.load(ctx, configID)
	if err != nil {
		return nil, err
	}
	return toGradeConfigResponse(cfg), nil
}

func (s *gradeConfigService) List(ctx context.Context, courseID string) ([]dto.GradeConfigResponse, error) {
	if _, err := loadCourse(ctx, s.repo, s.logger, courseID); err != nil {
		return nil, err
	}
	cfgs, err := s.repo.GradeConfig.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("查询评分方案历史失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.GradeConfigResponse, 0, len(cfgs))
	for i := range cfgs {
		result = append(result, *toGradeConfigResponse(&cfgs[i]))
	}
	return result, nil
}

// ────────────────────── Current / At ──────────────────────

func (s *gradeConfigService) Current(ctx context.Context, courseID string) (*dto.GradeConfigResponse, error) {
	if _, err := loadCourse(ctx, s.repo, s.logger, courseID); err != nil {
		return nil, err
	}
	cfg, err := s.Resolve(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, ErrNoConfiguration
	}
	return toGradeConfigResponse(cfg), nil
}

func (s *gradeConfigService) At(ctx context.Context, courseID, date string) (*dto.GradeConfigResponse, error) {
	day, err := dateutil.Parse(date)
	if err != nil {
		return nil, ErrGradeConfigDateInvalid
	}
	if _, err := loadCourse(ctx, s.repo, s.logger, courseID); err != nil {
		return nil, err
	}
	cfg, err := s.resolveAt(ctx, courseID, day)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, ErrNoConfiguration
	}
	return toGradeConfigResponse(cfg), nil
}

// Resolve 当前方案 = 有效期覆盖今天（无有效期视为覆盖）的最新未替代方案；均未覆盖时取最新未替代方案
func (s *gradeConfigService) Resolve(ctx context.Context, courseID string) (*model.GradeConfiguration, error) {
	return s.resolveAt(ctx, courseID, dateutil.Day(s.now()))
}

func (s *gradeConfigService) resolveAt(ctx context.Context, courseID string, day time.Time) (*model.GradeConfiguration, error) {
	cfg, err := s.repo.GradeConfig.LatestCovering(ctx, courseID, day)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询评分方案失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	cfg, err = s.repo.GradeConfig.Latest(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("查询评分方案失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	return cfg, nil
}

// ────────────────────── Update ──────────────────────

func (s *gradeConfigService) Update(ctx context.Context, configID string, req *dto.UpdateGradeConfigRequest, callerID string) (*dto.GradeConfigResponse, error) {
	old, err := s.load(ctx, configID)
	if err != nil {
		return nil, err
	}
	if old.SupersededAt != nil {
		return nil, ErrGradeConfigSuperseded
	}
	if _, err := loadActiveCourse(ctx, s.repo, s.logger, old.CourseID); err != nil {
		return nil, err
	}

	// 复制旧快照再应用局部修改
	next := *old
	next.SupersedesID = &old.ConfigID
	next.SupersededAt = nil
	if req.Name != nil {
		next.Name = *req.Name
	}
	if req.ReportingWeight != nil {
		next.ReportingWeight = *req.ReportingWeight
	}
	if req.RecitationWeight != nil {
		next.RecitationWeight = *req.RecitationWeight
	}
	if req.QuizWeight != nil {
		next.QuizWeight = *req.QuizWeight
	}
	if req.PassingThreshold != nil {
		next.PassingThreshold = *req.PassingThreshold
	}
	if req.StartDate != nil {
		if next.StartDate, err = parseOptionalDate(*req.StartDate); err != nil {
			return nil, err
		}
	}
	if req.EndDate != nil {
		if next.EndDate, err = parseOptionalDate(*req.EndDate); err != nil {
			return nil, err
		}
	}
	if err := s.validate(&next); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if !now.After(old.CreatedAt) {
		now = old.CreatedAt.Add(time.Microsecond)
	}
	next.CreatedAt = now
	next.ConfigID = model.NewConfigID(old.CourseID, now)
	next.CreatedBy = nil
	if callerID != "" {
		next.CreatedBy = &callerID
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	txRepo := s.repo.WithTx(tx)

	if err := txRepo.GradeConfig.Create(ctx, &next); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("写入评分方案快照失败", zap.String("supersedes", configID), zap.Error(err))
		return nil, err
	}
	if err := txRepo.GradeConfig.MarkSuperseded(ctx, old.ConfigID, now); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 并发更新：旧方案已被其他请求替代
			return nil, ErrGradeConfigSuperseded
		}
		s.logger.Error("标记评分方案替代失败", zap.String("config_id", configID), zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	return toGradeConfigResponse(&next), nil
}

// ── 内部辅助方法 ──

func (s *gradeConfigService) load(ctx context.Context, configID string) (*model.GradeConfiguration, error) {
	cfg, err := s.repo.GradeConfig.GetByID(ctx, configID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGradeConfigNotFound
		}
		s.logger.Error("查询评分方案失败", zap.String("config_id", configID), zap.Error(err))
		return nil, err
	}
	return cfg, nil
}

func (s *gradeConfigService) validate(cfg *model.GradeConfiguration) error {
	for _, w := range []float64{cfg.ReportingWeight, cfg.RecitationWeight, cfg.QuizWeight} {
		if w < 0 || w > 100 {
			return ErrGradeConfigWeight
		}
	}
	if s.grading == nil || s.grading.RequireWeightSum {
		if math.Abs(cfg.WeightSum()-100) > weightSumTolerance {
			return ErrGradeConfigWeightSum
		}
	}
	if cfg.PassingThreshold < 0 || cfg.PassingThreshold > 100 {
		return ErrGradeConfigThreshold
	}
	if cfg.StartDate != nil && cfg.EndDate != nil && cfg.EndDate.Before(*cfg.StartDate) {
		return ErrGradeConfigWindow
	}
	return nil
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	d, err := dateutil.Parse(s)
	if err != nil {
		return nil, ErrGradeConfigDateInvalid
	}
	return &d, nil
}

func toGradeConfigResponse(c *model.GradeConfiguration) *dto.GradeConfigResponse {
	resp := &dto.GradeConfigResponse{
		ID:               c.ConfigID,
		CourseID:         c.CourseID,
		Name:             c.Name,
		ReportingWeight:  c.ReportingWeight,
		RecitationWeight: c.RecitationWeight,
		QuizWeight:       c.QuizWeight,
		PassingThreshold: c.PassingThreshold,
		StartDate:        dateutil.FormatPtr(c.StartDate),
		EndDate:          dateutil.FormatPtr(c.EndDate),
		CreatedAt:        c.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if c.SupersedesID != nil {
		resp.SupersedesID = *c.SupersedesID
	}
	if c.SupersededAt != nil {
		resp.SupersededAt = c.SupersededAt.Format("2006-01-02T15:04:05Z")
	}
	return resp
}
