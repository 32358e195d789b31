package model

import "time"

// 评分项类型
const (
	GradeItemContent = "CONTENT"
	GradeItemClarity = "CLARITY"
)

// GradeItem 评分项 — 对应 grade_items，(course_id, type) 唯一
type GradeItem struct {
	GradeItemID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"grade_item_id"`
	CourseID    string    `gorm:"type:uuid;not null"                             json:"course_id"`
	Type        string    `gorm:"type:varchar(20);not null"                      json:"type"`
	Weight      float64   `gorm:"type:numeric(6,2);not null;default:50"          json:"weight"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

// TableName 指定表名
func (GradeItem) TableName() string { return "grade_items" }

// Grade 单项得分（0-10） — 对应 grades，(student_id, grade_item_id) 唯一
type Grade struct {
	GradeID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"grade_id"`
	StudentID   string    `gorm:"type:uuid;not null"                             json:"student_id"`
	GradeItemID string    `gorm:"type:uuid;not null"                             json:"grade_item_id"`
	Value       float64   `gorm:"type:numeric(5,2);not null"                     json:"value"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

// TableName 指定表名
func (Grade) TableName() string { return "grades" }
