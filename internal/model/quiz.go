package model

import "time"

// Quiz 测验 — 对应 quizzes
type Quiz struct {
	QuizID               string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"quiz_id"`
	CourseID             string    `gorm:"type:uuid;not null"                             json:"course_id"`
	Name                 string    `gorm:"type:varchar(150);not null"                     json:"name"`
	QuizDate             time.Time `gorm:"type:date;not null"                             json:"quiz_date"`
	AttendanceRangeStart time.Time `gorm:"type:date;not null"                             json:"attendance_range_start"`
	AttendanceRangeEnd   time.Time `gorm:"type:date;not null"                             json:"attendance_range_end"`
	MaxScore             float64   `gorm:"type:numeric(7,2);not null"                     json:"max_score"`
	PassingRate          float64   `gorm:"type:numeric(6,2);not null"                     json:"passing_rate"`
	BaseModel
}

// TableName 指定表名
func (Quiz) TableName() string { return "quizzes" }

// QuizScore 测验成绩 — 对应 quiz_scores，(quiz_id, student_id) 唯一
type QuizScore struct {
	QuizScoreID string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"quiz_score_id"`
	QuizID      string           `gorm:"type:uuid;not null"                             json:"quiz_id"`
	StudentID   string           `gorm:"type:uuid;not null"                             json:"student_id"`
	Score       float64          `gorm:"type:numeric(7,2);not null"                     json:"score"`
	Attendance  AttendanceStatus `gorm:"type:varchar(20);not null"                      json:"attendance"` // PRESENT | LATE | ABSENT
	PlusPoints  float64          `gorm:"type:numeric(7,2);not null;default:0"           json:"plus_points"`
	TotalGrade  float64          `gorm:"type:numeric(6,2);not null;default:0"           json:"total_grade"`
	BaseModel
}

// TableName 指定表名
func (QuizScore) TableName() string { return "quiz_scores" }

// ValidQuizAttendance 测验成绩允许的出勤值（不含 EXCUSED）
func ValidQuizAttendance(s AttendanceStatus) bool {
	return s == AttendancePresent || s == AttendanceLate || s == AttendanceAbsent
}
