package model

// Group 课程分组 — 对应 course_groups
// 同一课程内 name 与 number 均唯一
type Group struct {
	GroupID  string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"group_id"`
	CourseID string  `gorm:"type:uuid;not null"                             json:"course_id"`
	Name     string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Number   int     `gorm:"not null"                                       json:"number"`
	LeaderID *string `gorm:"type:uuid"                                      json:"leader_id,omitempty"`
	BaseModel

	Members []GroupMember `gorm:"foreignKey:GroupID" json:"members,omitempty"`
}

// TableName 指定表名
func (Group) TableName() string { return "course_groups" }

// GroupMember 分组成员 — 对应 group_members
type GroupMember struct {
	GroupID   string `gorm:"type:uuid;primaryKey" json:"group_id"`
	StudentID string `gorm:"type:uuid;primaryKey" json:"student_id"`

	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
}

// TableName 指定表名
func (GroupMember) TableName() string { return "group_members" }
