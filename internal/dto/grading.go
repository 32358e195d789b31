package dto

// ── 评分方案 DTO ──

// CreateGradeConfigRequest 创建评分方案
type CreateGradeConfigRequest struct {
	Name             string  `json:"name"              binding:"required,max=100"`
	ReportingWeight  float64 `json:"reporting_weight"  binding:"min=0,max=100"`
	RecitationWeight float64 `json:"recitation_weight" binding:"min=0,max=100"`
	QuizWeight       float64 `json:"quiz_weight"       binding:"min=0,max=100"`
	PassingThreshold float64 `json:"passing_threshold" binding:"min=0,max=100"`
	StartDate        string  `json:"start_date"        binding:"omitempty,isodate"`
	EndDate          string  `json:"end_date"          binding:"omitempty,isodate"`
}

// UpdateGradeConfigRequest 局部更新（生成新快照）
type UpdateGradeConfigRequest struct {
	Name             *string  `json:"name"              binding:"omitempty,max=100"`
	ReportingWeight  *float64 `json:"reporting_weight"  binding:"omitempty,min=0,max=100"`
	RecitationWeight *float64 `json:"recitation_weight" binding:"omitempty,min=0,max=100"`
	QuizWeight       *float64 `json:"quiz_weight"       binding:"omitempty,min=0,max=100"`
	PassingThreshold *float64 `json:"passing_threshold" binding:"omitempty,min=0,max=100"`
	StartDate        *string  `json:"start_date"        binding:"omitempty,isodate"`
	EndDate          *string  `json:"end_date"          binding:"omitempty,isodate"`
}

// GradeConfigResponse 评分方案响应
type GradeConfigResponse struct {
	ID               string  `json:"id"`
	CourseID         string  `json:"course_id"`
	Name             string  `json:"name"`
	ReportingWeight  float64 `json:"reporting_weight"`
	RecitationWeight float64 `json:"recitation_weight"`
	QuizWeight       float64 `json:"quiz_weight"`
	PassingThreshold float64 `json:"passing_threshold"`
	StartDate        string  `json:"start_date,omitempty"`
	EndDate          string  `json:"end_date,omitempty"`
	SupersedesID     string  `json:"supersedes_id,omitempty"`
	SupersededAt     string  `json:"superseded_at,omitempty"`
	CreatedAt        string  `json:"created_at"`
}

// ── 分项成绩 DTO ──

// UpsertComponentRequest 写入单个分项
type UpsertComponentRequest struct {
	StudentID string  `json:"student_id" binding:"required,uuid"`
	ConfigID  string  `json:"config_id"  binding:"omitempty,max=80"` // 为空时使用当前方案
	Field     string  `json:"field"      binding:"required,oneof=reporting recitation quiz"`
	Value     float64 `json:"value"      binding:"min=0,max=100"`
}

// ComponentEntry 批量写入中的单个学生
type ComponentEntry struct {
	StudentID string  `json:"student_id" binding:"required,uuid"`
	Value     float64 `json:"value"      binding:"min=0,max=100"`
}

// UpsertComponentsRequest 批量写入同一分项
type UpsertComponentsRequest struct {
	Field   string           `json:"field"   binding:"required,oneof=reporting recitation quiz"`
	Entries []ComponentEntry `json:"entries" binding:"required,min=1,dive"`
}

// LatestScoreQuery 最新成绩查询
type LatestScoreQuery struct {
	ConfigID string `form:"config_id" binding:"omitempty,max=80"`
	From     string `form:"from"      binding:"omitempty,isodate"`
	To       string `form:"to"        binding:"omitempty,isodate"`
}

// GradeScoreResponse 分项成绩响应
type GradeScoreResponse struct {
	ID              string  `json:"id,omitempty"`
	StudentID       string  `json:"student_id"`
	CourseID        string  `json:"course_id"`
	ConfigID        string  `json:"config_id,omitempty"`
	ReportingScore  float64 `json:"reporting_score"`
	RecitationScore float64 `json:"recitation_score"`
	QuizScore       float64 `json:"quiz_score"`
	Placeholder     bool    `json:"placeholder"` // 无记录时的零值占位
	CreatedAt       string  `json:"created_at,omitempty"`
}

// ── 成绩汇总 DTO ──

// StudentGradeResponse 加权策略汇总结果
type StudentGradeResponse struct {
	StudentID       string  `json:"student_id"`
	StudentNumber   string  `json:"student_number,omitempty"`
	Name            string  `json:"name,omitempty"`
	ConfigID        string  `json:"config_id,omitempty"`
	Configured      bool    `json:"configured"`
	ReportingScore  float64 `json:"reporting_score"`
	RecitationScore float64 `json:"recitation_score"`
	QuizScore       float64 `json:"quiz_score"`
	TotalGrade      float64 `json:"total_grade"`
	Remarks         string  `json:"remarks"`
}

// RecordRubricGradeRequest 内容/清晰度打分（0-10）
type RecordRubricGradeRequest struct {
	StudentID string  `json:"student_id" binding:"required,uuid"`
	Type      string  `json:"type"       binding:"required,oneof=CONTENT CLARITY"`
	Value     float64 `json:"value"      binding:"min=0,max=10"`
}

// RubricGradeResponse 内容/清晰度策略汇总结果
type RubricGradeResponse struct {
	StudentID     string  `json:"student_id"`
	StudentNumber string  `json:"student_number,omitempty"`
	Name          string  `json:"name,omitempty"`
	Content       float64 `json:"content"`
	Clarity       float64 `json:"clarity"`
	TotalGrade    float64 `json:"total_grade"`
	Remarks       string  `json:"remarks"`
}
