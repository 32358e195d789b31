package dto

// ── 考勤模块 DTO ──

// RecordAttendanceRequest 单条考勤登记
type RecordAttendanceRequest struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
	Date      string `json:"date"       binding:"required,isodate"`
	Status    string `json:"status"     binding:"required,attendance_status"`
}

// AttendanceEntry 批量登记中的单个学生
type AttendanceEntry struct {
	StudentID string `json:"student_id" binding:"required,uuid"`
	Status    string `json:"status"     binding:"required,attendance_status"`
}

// RecordAttendanceBatchRequest 同一天批量登记
type RecordAttendanceBatchRequest struct {
	Date    string            `json:"date"    binding:"required,isodate"`
	Records []AttendanceEntry `json:"records" binding:"required,min=1,dive"`
}

// ClearAttendanceRequest 批量删除考勤
type ClearAttendanceRequest struct {
	IDs []string `json:"ids" binding:"dive,uuid"`
}

// AttendanceDateQuery 按日期查询
type AttendanceDateQuery struct {
	Date string `form:"date" binding:"omitempty,isodate"`
}

// AttendanceRangeQuery 按区间查询
type AttendanceRangeQuery struct {
	From string `form:"from" binding:"required,isodate"`
	To   string `form:"to"   binding:"required,isodate"`
}

// AttendanceRecordResponse 考勤记录
type AttendanceRecordResponse struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id"`
	Date      string `json:"date"`
	Status    string `json:"status"`
}

// AttendanceStatsResponse 某日考勤统计
type AttendanceStatsResponse struct {
	CourseID       string  `json:"course_id"`
	Date           string  `json:"date,omitempty"`
	Total          int     `json:"total"`
	Present        int     `json:"present"`
	Late           int     `json:"late"`
	Absent         int     `json:"absent"`
	Excused        int     `json:"excused"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// StudentStatusResponse 学生当日考勤（未登记为 NOT_SET）
type StudentStatusResponse struct {
	StudentID     string `json:"student_id"`
	StudentNumber string `json:"student_number"`
	Name          string `json:"name"`
	Status        string `json:"status"`
	RecordID      string `json:"record_id,omitempty"`
}

// RangeSummaryResponse 区间内考勤汇总
type RangeSummaryResponse struct {
	StudentID string `json:"student_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Present   int    `json:"present"`
	Late      int    `json:"late"`
	Absent    int    `json:"absent"`
	Excused   int    `json:"excused"`
	Total     int    `json:"total"`
}

// MostRecentDateResponse 最近考勤日期
type MostRecentDateResponse struct {
	Date *string `json:"date"`
}

// ClearAttendanceResponse 删除结果
type ClearAttendanceResponse struct {
	Deleted int64 `json:"deleted"`
}
