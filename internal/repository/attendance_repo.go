package repository

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/viniuy/didasko-final-sub002/internal/model"
)

// AttendanceRepository 考勤数据访问接口
type AttendanceRepository interface {
	// Upsert 按 (student_id, course_id, date) 插入或覆盖状态
	Upsert(ctx context.Context, records []model.AttendanceRecord) error
	// DeleteByIDs 按 ID 批量删除，始终附加 course_id 过滤
	DeleteByIDs(ctx context.Context, courseID string, ids []string) (int64, error)
	// MaxDate 课程中最近一次有考勤记录的日期，无记录返回 nil
	MaxDate(ctx context.Context, courseID string) (*time.Time, error)
	ListByDate(ctx context.Context, courseID string, date time.Time) ([]model.AttendanceRecord, error)
	// ListRange 闭区间 [from, to] 内的记录；studentID 为空表示全部学生
	ListRange(ctx context.Context, courseID, studentID string, from, to time.Time) ([]model.AttendanceRecord, error)
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Upsert(ctx context.Context, records []model.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "course_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at", "updated_by"}),
		}).
		Create(&records).Error
}

func (r *attendanceRepo) DeleteByIDs(ctx context.Context, courseID string, ids []string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("course_id = ? AND attendance_id IN ?", courseID, ids).
		Delete(&model.AttendanceRecord{})
	return res.RowsAffected, res.Error
}

func (r *attendanceRepo) MaxDate(ctx context.Context, courseID string) (*time.Time, error) {
	var d sql.NullTime
	err := r.db.WithContext(ctx).Model(&model.AttendanceRecord{}).
		Select("MAX(date)").
		Where("course_id = ?", courseID).
		Row().Scan(&d)
	if err != nil {
		return nil, err
	}
	if !d.Valid {
		return nil, nil
	}
	t := d.Time.UTC()
	return &t, nil
}

func (r *attendanceRepo) ListByDate(ctx context.Context, courseID string, date time.Time) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND date = ?", courseID, date).
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) ListRange(ctx context.Context, courseID, studentID string, from, to time.Time) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	db := r.db.WithContext(ctx).
		Where("course_id = ? AND date BETWEEN ? AND ?", courseID, from, to)
	if studentID != "" {
		db = db.Where("student_id = ?", studentID)
	}
	err := db.Order("date ASC").Find(&records).Error
	return records, err
}
