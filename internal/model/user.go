package model

// User 系统用户表 — 对应 users（管理员 / 教务主任 / 教师）
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'FACULTY'"    json:"role"`
	Status       string `gorm:"type:varchar(20);not null;default:'ACTIVE'"     json:"status"` // ACTIVE | ARCHIVED
	SoftDeleteModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// 用户状态
const (
	UserStatusActive   = "ACTIVE"
	UserStatusArchived = "ARCHIVED"
)
