package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/viniuy/didasko-final-sub002/internal/model"
	pkgerrors "github.com/viniuy/didasko-final-sub002/pkg/errors"
)

// EnrollmentRepository 选课关系数据访问接口
type EnrollmentRepository interface {
	BatchCreate(ctx context.Context, enrollments []model.Enrollment) error
	Delete(ctx context.Context, courseID, studentID string) error
	IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error)
	// FilterEnrolled 返回 studentIDs 中已选该课程的学生 ID
	FilterEnrolled(ctx context.Context, courseID string, studentIDs []string) ([]string, error)
	ListStudents(ctx context.Context, courseID string) ([]model.Student, error)
}

type enrollmentRepo struct {
	db *gorm.DB
}

// NewEnrollmentRepo 创建 EnrollmentRepository 实例
func NewEnrollmentRepo(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

func (r *enrollmentRepo) BatchCreate(ctx context.Context, enrollments []model.Enrollment) error {
	if len(enrollments) == 0 {
		return nil
	}
	return pkgerrors.MapDuplicate(r.db.WithContext(ctx).Create(&enrollments).Error)
}

func (r *enrollmentRepo) Delete(ctx context.Context, courseID, studentID string) error {
	res := r.db.WithContext(ctx).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Delete(&model.Enrollment{})
	if res.Error != nil {
		return pkgerrors.MapInvalidID(res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *enrollmentRepo) IsEnrolled(ctx context.Context, courseID, studentID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Enrollment{}).
		Where("course_id = ? AND student_id = ?", courseID, studentID).
		Count(&n).Error
	if pkgerrors.IsInvalidText(err) {
		return false, nil
	}
	return n > 0, err
}

func (r *enrollmentRepo) FilterEnrolled(ctx context.Context, courseID string, studentIDs []string) ([]string, error) {
	var ids []string
	if len(studentIDs) == 0 {
		return ids, nil
	}
	err := r.db.WithContext(ctx).Model(&model.Enrollment{}).
		Where("course_id = ? AND student_id IN ?", courseID, studentIDs).
		Pluck("student_id", &ids).Error
	if pkgerrors.IsInvalidText(err) {
		return nil, nil
	}
	return ids, err
}

func (r *enrollmentRepo) ListStudents(ctx context.Context, courseID string) ([]model.Student, error) {
	var students []model.Student
	err := r.db.WithContext(ctx).
		Joins("JOIN course_students cs ON cs.student_id = students.student_id").
		Where("cs.course_id = ?", courseID).
		Order("students.last_name ASC, students.first_name ASC").
		Find(&students).Error
	return students, err
}
