package dto

// ── 测验模块 DTO ──

// CreateQuizRequest 创建测验
type CreateQuizRequest struct {
	Name                 string  `json:"name"                   binding:"required,max=150"`
	QuizDate             string  `json:"quiz_date"              binding:"required,isodate"`
	AttendanceRangeStart string  `json:"attendance_range_start" binding:"required,isodate"`
	AttendanceRangeEnd   string  `json:"attendance_range_end"   binding:"required,isodate"`
	MaxScore             float64 `json:"max_score"              binding:"required,gt=0"`
	PassingRate          float64 `json:"passing_rate"           binding:"min=0,max=100"`
}

// UpdateQuizRequest 更新测验
type UpdateQuizRequest struct {
	Name                 *string  `json:"name"                   binding:"omitempty,max=150"`
	QuizDate             *string  `json:"quiz_date"              binding:"omitempty,isodate"`
	AttendanceRangeStart *string  `json:"attendance_range_start" binding:"omitempty,isodate"`
	AttendanceRangeEnd   *string  `json:"attendance_range_end"   binding:"omitempty,isodate"`
	MaxScore             *float64 `json:"max_score"              binding:"omitempty,gt=0"`
	PassingRate          *float64 `json:"passing_rate"           binding:"omitempty,min=0,max=100"`
}

// QuizResponse 测验响应
type QuizResponse struct {
	ID                   string  `json:"id"`
	CourseID             string  `json:"course_id"`
	Name                 string  `json:"name"`
	QuizDate             string  `json:"quiz_date"`
	AttendanceRangeStart string  `json:"attendance_range_start"`
	AttendanceRangeEnd   string  `json:"attendance_range_end"`
	MaxScore             float64 `json:"max_score"`
	PassingRate          float64 `json:"passing_rate"`
	CreatedAt            string  `json:"created_at"`
}

// QuizScoreEntry 批量保存中的单行
// 字段在服务层统一预校验，以便一次性返回全部错误行
type QuizScoreEntry struct {
	StudentID  string   `json:"student_id"`
	Score      *float64 `json:"score"`
	Attendance string   `json:"attendance"`
	PlusPoints float64  `json:"plus_points"`
	TotalGrade *float64 `json:"total_grade"`
}

// SaveQuizScoresRequest 批量保存测验成绩
type SaveQuizScoresRequest struct {
	Scores []QuizScoreEntry `json:"scores" binding:"required,min=1"`
}

// SaveQuizScoresResponse 批量保存结果
type SaveQuizScoresResponse struct {
	QuizID string `json:"quiz_id"`
	Saved  int    `json:"saved"`
}

// QuizScoreResponse 测验成绩响应
type QuizScoreResponse struct {
	StudentID  string  `json:"student_id"`
	Score      float64 `json:"score"`
	Attendance string  `json:"attendance"`
	PlusPoints float64 `json:"plus_points"`
	TotalGrade float64 `json:"total_grade"`
	Remarks    string  `json:"remarks"`
}

// QuizEligibilityResponse 测验加分资格
type QuizEligibilityResponse struct {
	StudentID     string `json:"student_id"`
	StudentNumber string `json:"student_number"`
	Name          string `json:"name"`
	Present       int    `json:"present"`
	Late          int    `json:"late"`
	Absent        int    `json:"absent"`
	Excused       int    `json:"excused"`
	Eligible      bool   `json:"eligible"`
}
