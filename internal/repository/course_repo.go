package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/viniuy/didasko-final-sub002/internal/model"
	pkgerrors "github.com/viniuy/didasko-final-sub002/pkg/errors"
)

// CourseRepository 课程数据访问接口
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id string) (*model.Course, error)
	GetBySlug(ctx context.Context, slug string) (*model.Course, error)
	Update(ctx context.Context, course *model.Course) error
	List(ctx context.Context, filter CourseFilter, offset, limit int) ([]model.Course, int64, error)
	// ReplaceSchedules 全量替换课程上课时间：先删除旧数据，再批量插入
	ReplaceSchedules(ctx context.Context, courseID string, schedules []model.CourseSchedule) error
}

// CourseFilter 课程列表筛选条件
type CourseFilter struct {
	Status    string
	FacultyID string
	Semester  string
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) Create(ctx context.Context, course *model.Course) error {
	return pkgerrors.MapDuplicate(r.db.WithContext(ctx).Create(course).Error)
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Preload("Schedules", func(db *gorm.DB) *gorm.DB {
			return db.Order("day_of_week ASC, start_time ASC")
		}).
		Where("course_id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, pkgerrors.MapInvalidID(err)
	}
	return &course, nil
}

func (r *courseRepo) GetBySlug(ctx context.Context, slug string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Preload("Schedules").
		Where("slug = ?", slug).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) Update(ctx context.Context, course *model.Course) error {
	// 关联的 Schedules 由 ReplaceSchedules 单独维护
	return pkgerrors.MapDuplicate(r.db.WithContext(ctx).Omit("Schedules", "Faculty").Save(course).Error)
}

func (r *courseRepo) List(ctx context.Context, filter CourseFilter, offset, limit int) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Course{})
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.FacultyID != "" {
		db = db.Where("faculty_id = ?", filter.FacultyID)
	}
	if filter.Semester != "" {
		db = db.Where("semester = ?", filter.Semester)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Preload("Schedules").
		Offset(offset).Limit(limit).
		Order("code ASC, section ASC").
		Find(&courses).Error; err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

func (r *courseRepo) ReplaceSchedules(ctx context.Context, courseID string, schedules []model.CourseSchedule) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", courseID).
			Delete(&model.CourseSchedule{}).Error; err != nil {
			return err
		}
		if len(schedules) > 0 {
			if err := tx.Create(&schedules).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
