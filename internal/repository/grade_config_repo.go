package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/viniuy/didasko-final-sub002/internal/model"
)

// GradeConfigRepository 评分方案数据访问接口
// 方案行只插入不修改，唯一允许的更新是标记 superseded_at
type GradeConfigRepository interface {
	Create(ctx context.Context, cfg *model.GradeConfiguration) error
	GetByID(ctx context.Context, id string) (*model.GradeConfiguration, error)
	// Latest 课程最新（created_at 最大）且未被替代的方案
	Latest(ctx context.Context, courseID string) (*model.GradeConfiguration, error)
	// LatestCovering 有效期覆盖 day 的最新未替代方案（缺失的边界视为不限）
	LatestCovering(ctx context.Context, courseID string, day time.Time) (*model.GradeConfiguration, error)
	ListByCourse(ctx context.Context, courseID string) ([]model.GradeConfiguration, error)
	MarkSuperseded(ctx context.Context, id string, at time.Time) error
}

type gradeConfigRepo struct {
	db *gorm.DB
}

// NewGradeConfigRepo 创建 GradeConfigRepository 实例
func NewGradeConfigRepo(db *gorm.DB) GradeConfigRepository {
	return &gradeConfigRepo{db: db}
}

func (r *gradeConfigRepo) Create(ctx context.Context, cfg *model.GradeConfiguration) error {
	return r.db.WithContext(ctx).Create(cfg).Error
}

func (r *gradeConfigRepo) GetByID(ctx context.Context, id string) (*model.GradeConfiguration, error) {
	var cfg model.GradeConfiguration
	if err := r.db.WithContext(ctx).Where("config_id = ?", id).First(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *gradeConfigRepo) Latest(ctx context.Context, courseID string) (*model.GradeConfiguration, error) {
	var cfg model.GradeConfiguration
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND superseded_at IS NULL", courseID).
		Order("created_at DESC").
		First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *gradeConfigRepo) LatestCovering(ctx context.Context, courseID string, day time.Time) (*model.GradeConfiguration, error) {
	var cfg model.GradeConfiguration
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND superseded_at IS NULL", courseID).
		Where("(start_date IS NULL OR start_date <= ?) AND (end_date IS NULL OR end_date >= ?)", day, day).
		Order("created_at DESC").
		First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *gradeConfigRepo) ListByCourse(ctx context.Context, courseID string) ([]model.GradeConfiguration, error) {
	var cfgs []model.GradeConfiguration
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at DESC").
		Find(&cfgs).Error
	return cfgs, err
}

func (r *gradeConfigRepo) MarkSuperseded(ctx context.Context, id string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.GradeConfiguration{}).
		Where("config_id = ? AND superseded_at IS NULL", id).
		Update("superseded_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
