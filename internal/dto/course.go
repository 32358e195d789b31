package dto

// ── 课程模块 DTO ──

// ScheduleRequest 上课时间
type ScheduleRequest struct {
	DayOfWeek int    `json:"day_of_week" binding:"required,min=1,max=7"`
	StartTime string `json:"start_time"  binding:"required"` // "08:00"
	EndTime   string `json:"end_time"    binding:"required"` // "09:30"
}

// CreateCourseRequest 创建课程请求
type CreateCourseRequest struct {
	Code      string            `json:"code"       binding:"required,max=30"`
	Title     string            `json:"title"      binding:"required,max=200"`
	Section   string            `json:"section"    binding:"required,max=30"`
	Semester  string            `json:"semester"   binding:"required,max=30"`
	Room      string            `json:"room"       binding:"omitempty,max=50"`
	FacultyID string            `json:"faculty_id" binding:"omitempty,uuid"`
	Schedules []ScheduleRequest `json:"schedules"  binding:"omitempty,dive"`
}

// UpdateCourseRequest 更新课程请求
type UpdateCourseRequest struct {
	Title     *string            `json:"title"      binding:"omitempty,max=200"`
	Room      *string            `json:"room"       binding:"omitempty,max=50"`
	Status    *string            `json:"status"     binding:"omitempty,oneof=ACTIVE INACTIVE"`
	FacultyID *string            `json:"faculty_id" binding:"omitempty,uuid"`
	Schedules *[]ScheduleRequest `json:"schedules"  binding:"omitempty,dive"`
}

// CourseListRequest 课程列表查询参数
type CourseListRequest struct {
	PaginationRequest
	Status   string `form:"status"   binding:"omitempty,oneof=ACTIVE INACTIVE"`
	Semester string `form:"semester" binding:"omitempty,max=30"`
}

// ScheduleResponse 上课时间响应
type ScheduleResponse struct {
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// CourseResponse 课程信息响应
type CourseResponse struct {
	ID        string             `json:"id"`
	Code      string             `json:"code"`
	Title     string             `json:"title"`
	Section   string             `json:"section"`
	Slug      string             `json:"slug"`
	Semester  string             `json:"semester"`
	Room      string             `json:"room,omitempty"`
	Status    string             `json:"status"`
	FacultyID string             `json:"faculty_id,omitempty"`
	Schedules []ScheduleResponse `json:"schedules"`
	CreatedAt string             `json:"created_at"`
}

// EnrollRequest 选课请求
type EnrollRequest struct {
	StudentIDs []string `json:"student_ids" binding:"required,min=1,dive,uuid"`
}

// ── 分组 ──

// CreateGroupRequest 创建分组请求
type CreateGroupRequest struct {
	Name      string   `json:"name"       binding:"required,max=100"`
	Number    int      `json:"number"     binding:"required,min=1"`
	LeaderID  string   `json:"leader_id"  binding:"omitempty,uuid"`
	MemberIDs []string `json:"member_ids" binding:"omitempty,dive,uuid"`
}

// GroupMembersRequest 分组成员变更请求
type GroupMembersRequest struct {
	StudentIDs []string `json:"student_ids" binding:"required,min=1,dive,uuid"`
}

// GroupResponse 分组响应
type GroupResponse struct {
	ID       string         `json:"id"`
	CourseID string         `json:"course_id"`
	Name     string         `json:"name"`
	Number   int            `json:"number"`
	LeaderID string         `json:"leader_id,omitempty"`
	Members  []StudentBrief `json:"members"`
}
