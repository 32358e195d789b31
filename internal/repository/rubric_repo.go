package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/viniuy/didasko-final-sub002/internal/model"
)

// RubricRepository 内容/清晰度评分数据访问接口
type RubricRepository interface {
	// EnsureItem 获取课程指定类型的评分项，不存在时创建
	EnsureItem(ctx context.Context, courseID, itemType string) (*model.GradeItem, error)
	ListItems(ctx context.Context, courseID string) ([]model.GradeItem, error)
	// UpsertGrade 按 (student_id, grade_item_id) 插入或覆盖
	UpsertGrade(ctx context.Context, grade *model.Grade) error
	// ListGrades 课程内所有评分项下的得分
	ListGrades(ctx context.Context, courseID string) ([]model.Grade, error)
}

type rubricRepo struct {
	db *gorm.DB
}

// NewRubricRepo 创建 RubricRepository 实例
func NewRubricRepo(db *gorm.DB) RubricRepository {
	return &rubricRepo{db: db}
}

func (r *rubricRepo) EnsureItem(ctx context.Context, courseID, itemType string) (*model.GradeItem, error) {
	item := model.GradeItem{CourseID: courseID, Type: itemType, Weight: 50}
	err := r.db.WithContext(ctx).
		Where(model.GradeItem{CourseID: courseID, Type: itemType}).
		FirstOrCreate(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *rubricRepo) ListItems(ctx context.Context, courseID string) ([]model.GradeItem, error) {
	var items []model.GradeItem
	err := r.db.WithContext(ctx).Where("course_id = ?", courseID).Find(&items).Error
	return items, err
}

func (r *rubricRepo) UpsertGrade(ctx context.Context, grade *model.Grade) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "grade_item_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(grade).Error
}

func (r *rubricRepo) ListGrades(ctx context.Context, courseID string) ([]model.Grade, error) {
	var grades []model.Grade
	err := r.db.WithContext(ctx).
		Joins("JOIN grade_items gi ON gi.grade_item_id = grades.grade_item_id").
		Where("gi.course_id = ?", courseID).
		Find(&grades).Error
	return grades, err
}
