package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/viniuy/didasko-final-sub002/internal/model"
	pkgerrors "github.com/viniuy/didasko-final-sub002/pkg/errors"
)

// StudentRepository 学生数据访问接口
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id string) (*model.Student, error)
	GetByNumber(ctx context.Context, number string) (*model.Student, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Student, error)
	Update(ctx context.Context, student *model.Student) error
	List(ctx context.Context, search string, offset, limit int) ([]model.Student, int64, error)
	// HasRecords 是否存在考勤或成绩记录引用该学生
	HasRecords(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	return pkgerrors.MapDuplicate(r.db.WithContext(ctx).Create(student).Error)
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	var s model.Student
	if err := r.db.WithContext(ctx).Where("student_id = ?", id).First(&s).Error; err != nil {
		return nil, pkgerrors.MapInvalidID(err)
	}
	return &s, nil
}

func (r *studentRepo) GetByNumber(ctx context.Context, number string) (*model.Student, error) {
	var s model.Student
	if err := r.db.WithContext(ctx).Where("student_number = ?", number).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *studentRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Student, error) {
	var students []model.Student
	if len(ids) == 0 {
		return students, nil
	}
	err := r.db.WithContext(ctx).
		Where("student_id IN ?", ids).
		Order("last_name ASC, first_name ASC").
		Find(&students).Error
	return students, err
}

func (r *studentRepo) Update(ctx context.Context, student *model.Student) error {
	return pkgerrors.MapDuplicate(r.db.WithContext(ctx).Save(student).Error)
}

func (r *studentRepo) List(ctx context.Context, search string, offset, limit int) ([]model.Student, int64, error) {
	var students []model.Student
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Student{})
	if search != "" {
		like := "%" + search + "%"
		db = db.Where("student_number ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ?", like, like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Offset(offset).Limit(limit).
		Order("last_name ASC, first_name ASC").
		Find(&students).Error; err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

func (r *studentRepo) HasRecords(ctx context.Context, id string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.AttendanceRecord{}).
		Where("student_id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	if err := r.db.WithContext(ctx).Model(&model.GradeScore{}).
		Where("student_id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *studentRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("student_id = ?", id).Delete(&model.Student{}).Error
}
