package model

import (
	"fmt"
	"time"
)

// 评定结果
const (
	RemarksPassed = "PASSED"
	RemarksFailed = "FAILED"
)

// 分项成绩字段
const (
	ComponentReporting  = "reporting"
	ComponentRecitation = "recitation"
	ComponentQuiz       = "quiz"
)

// ValidComponent 是否为合法的分项字段
func ValidComponent(field string) bool {
	switch field {
	case ComponentReporting, ComponentRecitation, ComponentQuiz:
		return true
	default:
		return false
	}
}

// GradeConfiguration 评分方案 — 对应 grade_configurations
// 行一经写入即不可修改（SupersededAt 除外），更新会生成新快照
type GradeConfiguration struct {
	ConfigID         string     `gorm:"type:varchar(80);primaryKey"  json:"config_id"`
	CourseID         string     `gorm:"type:uuid;not null"           json:"course_id"`
	Name             string     `gorm:"type:varchar(100);not null"   json:"name"`
	ReportingWeight  float64    `gorm:"type:numeric(6,2);not null"   json:"reporting_weight"`
	RecitationWeight float64    `gorm:"type:numeric(6,2);not null"   json:"recitation_weight"`
	QuizWeight       float64    `gorm:"type:numeric(6,2);not null"   json:"quiz_weight"`
	PassingThreshold float64    `gorm:"type:numeric(6,2);not null"   json:"passing_threshold"`
	StartDate        *time.Time `gorm:"type:date"                    json:"start_date,omitempty"`
	EndDate          *time.Time `gorm:"type:date"                    json:"end_date,omitempty"`
	SupersedesID     *string    `gorm:"type:varchar(80)"             json:"supersedes_id,omitempty"`
	SupersededAt     *time.Time `                                    json:"superseded_at,omitempty"`
	CreatedAt        time.Time  `gorm:"not null"                     json:"created_at"`
	CreatedBy        *string    `gorm:"type:uuid"                    json:"created_by,omitempty"`
}

// TableName 指定表名
func (GradeConfiguration) TableName() string { return "grade_configurations" }

// NewConfigID 生成方案 ID：<courseId>-<创建时间纳秒>
func NewConfigID(courseID string, createdAt time.Time) string {
	return fmt.Sprintf("%s-%d", courseID, createdAt.UnixNano())
}

// WeightSum 三项权重之和
func (c *GradeConfiguration) WeightSum() float64 {
	return c.ReportingWeight + c.RecitationWeight + c.QuizWeight
}

// Covers 日期是否落在方案有效期内（开区间端点视为不限）
func (c *GradeConfiguration) Covers(day time.Time) bool {
	if c.StartDate != nil && day.Before(*c.StartDate) {
		return false
	}
	if c.EndDate != nil && day.After(*c.EndDate) {
		return false
	}
	return true
}

// GradeScore 分项成绩 — 对应 grade_scores
// 同一 (student, course) 可有多行历史，"当前" 取 created_at 最新者
type GradeScore struct {
	GradeScoreID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"grade_score_id"`
	StudentID       string    `gorm:"type:uuid;not null"                             json:"student_id"`
	CourseID        string    `gorm:"type:uuid;not null"                             json:"course_id"`
	ConfigID        string    `gorm:"type:varchar(80);not null"                      json:"config_id"`
	ReportingScore  float64   `gorm:"type:numeric(6,2);not null;default:0"           json:"reporting_score"`
	RecitationScore float64   `gorm:"type:numeric(6,2);not null;default:0"           json:"recitation_score"`
	QuizScore       float64   `gorm:"type:numeric(6,2);not null;default:0"           json:"quiz_score"`
	CreatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

// TableName 指定表名
func (GradeScore) TableName() string { return "grade_scores" }

// Component 读取分项
func (g *GradeScore) Component(field string) float64 {
	switch field {
	case ComponentReporting:
		return g.ReportingScore
	case ComponentRecitation:
		return g.RecitationScore
	case ComponentQuiz:
		return g.QuizScore
	}
	return 0
}

// SetComponent 写入分项
func (g *GradeScore) SetComponent(field string, value float64) {
	switch field {
	case ComponentReporting:
		g.ReportingScore = value
	case ComponentRecitation:
		g.RecitationScore = value
	case ComponentQuiz:
		g.QuizScore = value
	}
}

// ComponentColumn 分项对应的数据库列
func ComponentColumn(field string) string {
	return field + "_score"
}
