package model

import "time"

// 课程状态
const (
	CourseStatusActive   = "ACTIVE"
	CourseStatusInactive = "INACTIVE"
)

// Course 课程表 — 对应 courses
type Course struct {
	CourseID  string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	Code      string  `gorm:"type:varchar(30);not null"                      json:"code"`
	Title     string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Section   string  `gorm:"type:varchar(30);not null"                      json:"section"`
	Slug      string  `gorm:"type:varchar(100);not null"                     json:"slug"` // 唯一业务键
	Semester  string  `gorm:"type:varchar(30);not null"                      json:"semester"`
	Room      string  `gorm:"type:varchar(50)"                               json:"room,omitempty"`
	Status    string  `gorm:"type:varchar(20);not null;default:'ACTIVE'"     json:"status"` // ACTIVE | INACTIVE
	FacultyID *string `gorm:"type:uuid"                                      json:"faculty_id,omitempty"`
	SoftDeleteModel

	// 关联
	Faculty   *User            `gorm:"foreignKey:FacultyID;references:UserID" json:"faculty,omitempty"`
	Schedules []CourseSchedule `gorm:"foreignKey:CourseID"                    json:"schedules,omitempty"`
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// CourseSchedule 课程上课时间 — 对应 course_schedules
type CourseSchedule struct {
	CourseScheduleID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_schedule_id"`
	CourseID         string `gorm:"type:uuid;not null"                             json:"course_id"`
	DayOfWeek        int    `gorm:"type:smallint;not null"                         json:"day_of_week"` // 1-7
	StartTime        string `gorm:"type:time;not null"                             json:"start_time"`
	EndTime          string `gorm:"type:time;not null"                             json:"end_time"`
	BaseModel
}

// TableName 指定表名
func (CourseSchedule) TableName() string { return "course_schedules" }

// Enrollment 选课关系 — 对应 course_students（多对多中间表）
type Enrollment struct {
	CourseID   string    `gorm:"type:uuid;primaryKey"               json:"course_id"`
	StudentID  string    `gorm:"type:uuid;primaryKey"               json:"student_id"`
	EnrolledAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"enrolled_at"`

	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
}

// TableName 指定表名
func (Enrollment) TableName() string { return "course_students" }
