package dto

// ── 学生模块 DTO ──

// CreateStudentRequest 创建学生请求
type CreateStudentRequest struct {
	StudentNumber string `json:"student_number" binding:"required,max=30"`
	FirstName     string `json:"first_name"     binding:"required,max=100"`
	MiddleName    string `json:"middle_name"    binding:"omitempty,max=100"`
	LastName      string `json:"last_name"      binding:"required,max=100"`
	ImageURL      string `json:"image_url"      binding:"omitempty,url,max=500"`
}

// UpdateStudentRequest 更新学生资料请求
type UpdateStudentRequest struct {
	FirstName  *string `json:"first_name"  binding:"omitempty,min=1,max=100"`
	MiddleName *string `json:"middle_name" binding:"omitempty,max=100"`
	LastName   *string `json:"last_name"   binding:"omitempty,min=1,max=100"`
	ImageURL   *string `json:"image_url"   binding:"omitempty,url,max=500"`
}

// StudentListRequest 学生列表查询参数
type StudentListRequest struct {
	PaginationRequest
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// StudentResponse 学生信息响应
type StudentResponse struct {
	ID            string `json:"id"`
	StudentNumber string `json:"student_number"`
	FirstName     string `json:"first_name"`
	MiddleName    string `json:"middle_name,omitempty"`
	LastName      string `json:"last_name"`
	FullName      string `json:"full_name"`
	ImageURL      string `json:"image_url,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// ImportStudentResponse 批量导入学生响应
type ImportStudentResponse struct {
	Total   int                  `json:"total"`
	Success int                  `json:"success"`
	Failed  int                  `json:"failed"`
	Errors  []ImportStudentError `json:"errors,omitempty"`
}

// ImportStudentError 导入错误详情
type ImportStudentError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}
