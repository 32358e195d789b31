package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User        UserRepository
	Student     StudentRepository
	Course      CourseRepository
	Enrollment  EnrollmentRepository
	Group       GroupRepository
	Attendance  AttendanceRepository
	GradeConfig GradeConfigRepository
	GradeScore  GradeScoreRepository
	Quiz        QuizRepository
	QuizScore   QuizScoreRepository
	Rubric      RubricRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:          db,
		User:        NewUserRepo(db),
		Student:     NewStudentRepo(db),
		Course:      NewCourseRepo(db),
		Enrollment:  NewEnrollmentRepo(db),
		Group:       NewGroupRepo(db),
		Attendance:  NewAttendanceRepo(db),
		GradeConfig: NewGradeConfigRepo(db),
		GradeScore:  NewGradeScoreRepo(db),
		Quiz:        NewQuizRepo(db),
		QuizScore:   NewQuizScoreRepo(db),
		Rubric:      NewRubricRepo(db),
	}
}

// BeginTx 开启事务；未持有数据库连接（单元测试注入 mock）时返回 nil
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx 返回绑定到事务的 Repository 聚合；tx 为 nil 时返回自身
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}
