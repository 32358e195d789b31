package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/viniuy/didasko-final-sub002/internal/model"
	pkgerrors "github.com/viniuy/didasko-final-sub002/pkg/errors"
)

// QuizRepository 测验数据访问接口
type QuizRepository interface {
	Create(ctx context.Context, quiz *model.Quiz) error
	GetByID(ctx context.Context, id string) (*model.Quiz, error)
	ListByCourse(ctx context.Context, courseID string) ([]model.Quiz, error)
	Update(ctx context.Context, quiz *model.Quiz) error
	Delete(ctx context.Context, id string) error
}

// QuizScoreRepository 测验成绩数据访问接口
type QuizScoreRepository interface {
	// Upsert 按 (quiz_id, student_id) 插入或覆盖
	Upsert(ctx context.Context, score *model.QuizScore) error
	ListByQuiz(ctx context.Context, quizID string) ([]model.QuizScore, error)
	DeleteByQuiz(ctx context.Context, quizID string) error
}

// ── Quiz Repository 实现 ──

type quizRepo struct {
	db *gorm.DB
}

// NewQuizRepo 创建 QuizRepository 实例
func NewQuizRepo(db *gorm.DB) QuizRepository {
	return &quizRepo{db: db}
}

func (r *quizRepo) Create(ctx context.Context, quiz *model.Quiz) error {
	return r.db.WithContext(ctx).Create(quiz).Error
}

func (r *quizRepo) GetByID(ctx context.Context, id string) (*model.Quiz, error) {
	var q model.Quiz
	if err := r.db.WithContext(ctx).Where("quiz_id = ?", id).First(&q).Error; err != nil {
		return nil, pkgerrors.MapInvalidID(err)
	}
	return &q, nil
}

func (r *quizRepo) ListByCourse(ctx context.Context, courseID string) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("quiz_date DESC").
		Find(&quizzes).Error
	return quizzes, err
}

func (r *quizRepo) Update(ctx context.Context, quiz *model.Quiz) error {
	return r.db.WithContext(ctx).Save(quiz).Error
}

func (r *quizRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("quiz_id = ?", id).Delete(&model.Quiz{}).Error
}

// ── QuizScore Repository 实现 ──

type quizScoreRepo struct {
	db *gorm.DB
}

// NewQuizScoreRepo 创建 QuizScoreRepository 实例
func NewQuizScoreRepo(db *gorm.DB) QuizScoreRepository {
	return &quizScoreRepo{db: db}
}

func (r *quizScoreRepo) Upsert(ctx context.Context, score *model.QuizScore) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "quiz_id"}, {Name: "student_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"score", "attendance", "plus_points", "total_grade", "updated_at", "updated_by",
			}),
		}).
		Create(score).Error
}

func (r *quizScoreRepo) ListByQuiz(ctx context.Context, quizID string) ([]model.QuizScore, error) {
	var scores []model.QuizScore
	err := r.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Find(&scores).Error
	return scores, err
}

func (r *quizScoreRepo) DeleteByQuiz(ctx context.Context, quizID string) error {
	return r.db.WithContext(ctx).Where("quiz_id = ?", quizID).Delete(&model.QuizScore{}).Error
}
