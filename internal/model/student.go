package model

import "strings"

// Student 学生表 — 对应 students
type Student struct {
	StudentID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	StudentNumber string `gorm:"type:varchar(30);not null"                      json:"student_number"`
	FirstName     string `gorm:"type:varchar(100);not null"                     json:"first_name"`
	MiddleName    string `gorm:"type:varchar(100)"                              json:"middle_name,omitempty"`
	LastName      string `gorm:"type:varchar(100);not null"                     json:"last_name"`
	ImageURL      string `gorm:"type:varchar(500)"                              json:"image_url,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Student) TableName() string { return "students" }

// FullName 姓, 名 中间名首字母（与花名册展示一致）
func (s *Student) FullName() string {
	name := s.LastName + ", " + s.FirstName
	if m := strings.TrimSpace(s.MiddleName); m != "" {
		name += " " + string([]rune(m)[0]) + "."
	}
	return name
}
