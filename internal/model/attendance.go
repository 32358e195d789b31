package model

import "time"

// AttendanceStatus 考勤状态
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceLate    AttendanceStatus = "LATE"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendanceExcused AttendanceStatus = "EXCUSED"
	// AttendanceNotSet 仅用于展示，从不落库
	AttendanceNotSet AttendanceStatus = "NOT_SET"
)

// Valid 是否为可落库的状态
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceLate, AttendanceAbsent, AttendanceExcused:
		return true
	default:
		return false
	}
}

// Attended 出勤（到课或迟到）
func (s AttendanceStatus) Attended() bool {
	return s == AttendancePresent || s == AttendanceLate
}

// AttendanceRecord 考勤记录 — 对应 attendance_records
// (student_id, course_id, date) 唯一
type AttendanceRecord struct {
	AttendanceID string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attendance_id"`
	StudentID    string           `gorm:"type:uuid;not null"                             json:"student_id"`
	CourseID     string           `gorm:"type:uuid;not null"                             json:"course_id"`
	Date         time.Time        `gorm:"type:date;not null"                             json:"date"`
	Status       AttendanceStatus `gorm:"type:varchar(20);not null"                      json:"status"`
	BaseModel
}

// TableName 指定表名
func (AttendanceRecord) TableName() string { return "attendance_records" }
