package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/viniuy/didasko-final-sub002/internal/model"
)

// GradeScoreRepository 分项成绩数据访问接口
type GradeScoreRepository interface {
	Create(ctx context.Context, score *model.GradeScore) error
	// Latest (student, course) 最新一行，可选按 created_at 区间过滤
	Latest(ctx context.Context, courseID, studentID string, from, to *time.Time) (*model.GradeScore, error)
	// GetForConfig 学生在指定方案下的最新一行
	GetForConfig(ctx context.Context, courseID, studentID, configID string) (*model.GradeScore, error)
	UpdateComponent(ctx context.Context, id, field string, value float64) error
	// LatestByCourse 课程内每个学生的最新一行
	LatestByCourse(ctx context.Context, courseID string) ([]model.GradeScore, error)
}

type gradeScoreRepo struct {
	db *gorm.DB
}

// NewGradeScoreRepo 创建 GradeScoreRepository 实例
func NewGradeScoreRepo(db *gorm.DB) GradeScoreRepository {
	return &gradeScoreRepo{db: db}
}

func (r *gradeScoreRepo) Create(ctx context.Context, score *model.GradeScore) error {
	return r.db.WithContext(ctx).Create(score).Error
}

func (r *gradeScoreRepo) Latest(ctx context.Context, courseID, studentID string, from, to *time.Time) (*model.GradeScore, error) {
	var score model.GradeScore
	db := r.db.WithContext(ctx).
		Where("course_id = ? AND student_id = ?", courseID, studentID)
	if from != nil {
		db = db.Where("created_at >= ?", *from)
	}
	if to != nil {
		db = db.Where("created_at < ?", *to)
	}
	if err := db.Order("created_at DESC").First(&score).Error; err != nil {
		return nil, err
	}
	return &score, nil
}

func (r *gradeScoreRepo) GetForConfig(ctx context.Context, courseID, studentID, configID string) (*model.GradeScore, error) {
	var score model.GradeScore
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND student_id = ? AND config_id = ?", courseID, studentID, configID).
		Order("created_at DESC").
		First(&score).Error
	if err != nil {
		return nil, err
	}
	return &score, nil
}

func (r *gradeScoreRepo) UpdateComponent(ctx context.Context, id, field string, value float64) error {
	return r.db.WithContext(ctx).Model(&model.GradeScore{}).
		Where("grade_score_id = ?", id).
		Updates(map[string]interface{}{
			model.ComponentColumn(field): value,
			"updated_at":                 time.Now().UTC(),
		}).Error
}

func (r *gradeScoreRepo) LatestByCourse(ctx context.Context, courseID string) ([]model.GradeScore, error) {
	var scores []model.GradeScore
	err := r.db.WithContext(ctx).Raw(
		`SELECT DISTINCT ON (student_id) *
		   FROM grade_scores
		  WHERE course_id = ?
		  ORDER BY student_id, created_at DESC`, courseID).
		Scan(&scores).Error
	return scores, err
}
