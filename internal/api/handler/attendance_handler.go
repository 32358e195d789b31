package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/viniuy/didasko-final-sub002/internal/dto"
	"github.com/viniuy/didasko-final-sub002/internal/service"
	"github.com/viniuy/didasko-final-sub002/pkg/dateutil"
	"github.com/viniuy/didasko-final-sub002/pkg/response"
)

// AttendanceHandler 考勤模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// Record 登记单个学生某日考勤（同日重复登记覆盖）
// PUT /api/v1/courses/:id/attendance
func (h *AttendanceHandler) Record(c *gin.Context) {
	var req dto.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	record, err := h.attendanceSvc.Record(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, record)
}

// RecordBatch 批量登记同一日期的考勤，单事务
// PUT /api/v1/courses/:id/attendance/batch
func (h *AttendanceHandler) RecordBatch(c *gin.Context) {
	var req dto.RecordAttendanceBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	n, err := h.attendanceSvc.RecordBatch(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, gin.H{"saved": n})
}

// Clear 按记录 ID 批量删除（限定本课程）
// POST /api/v1/courses/:id/attendance/clear
func (h *AttendanceHandler) Clear(c *gin.Context) {
	var req dto.ClearAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	n, err := h.attendanceSvc.Clear(c.Request.Context(), c.Param("id"), req.IDs)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, dto.ClearAttendanceResponse{Deleted: n})
}

// MostRecentDate 最近一次有考勤记录的日期，无记录时 date 为 null
// GET /api/v1/courses/:id/attendance/latest-date
func (h *AttendanceHandler) MostRecentDate(c *gin.Context) {
	d, err := h.attendanceSvc.MostRecentDate(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	var resp dto.MostRecentDateResponse
	if d != nil {
		s := dateutil.Format(*d)
		resp.Date = &s
	}
	response.OK(c, resp)
}

// StatusOnDate 某日已登记的考勤，studentID → status
// GET /api/v1/courses/:id/attendance?date=YYYY-MM-DD
func (h *AttendanceHandler) StatusOnDate(c *gin.Context) {
	var q dto.AttendanceDateQuery
	if err := c.ShouldBindQuery(&q); err != nil || q.Date == "" {
		response.BadRequest(c, 10001, "date 参数不能为空")
		return
	}

	statuses, err := h.attendanceSvc.StatusOnDate(c.Request.Context(), c.Param("id"), q.Date)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, statuses)
}

// Stats 某日考勤统计（date 缺省时取最近考勤日）
// GET /api/v1/courses/:id/attendance/stats
func (h *AttendanceHandler) Stats(c *gin.Context) {
	var q dto.AttendanceDateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	stats, err := h.attendanceSvc.Stats(c.Request.Context(), c.Param("id"), q.Date)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, stats)
}

// StudentStatuses 花名册视图，未登记显示 NOT_SET
// GET /api/v1/courses/:id/attendance/students
func (h *AttendanceHandler) StudentStatuses(c *gin.Context) {
	var q dto.AttendanceDateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	list, err := h.attendanceSvc.StudentStatuses(c.Request.Context(), c.Param("id"), q.Date)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// RangeSummary 学生在日期区间内的考勤汇总
// GET /api/v1/courses/:id/attendance/students/:studentId/summary?from=&to=
func (h *AttendanceHandler) RangeSummary(c *gin.Context) {
	var q dto.AttendanceRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	summary, err := h.attendanceSvc.RangeSummary(c.Request.Context(), c.Param("id"), c.Param("studentId"), q.From, q.To)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}

	response.OK(c, summary)
}

func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrAttendanceStatusInvalid):
		response.BadRequest(c, 22001, "考勤状态无效")
	case errors.Is(err, service.ErrAttendanceDateInvalid):
		response.BadRequest(c, 22002, "日期格式无效，应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrAttendanceRangeInvalid):
		response.BadRequest(c, 22003, "结束日期不能早于开始日期")
	case errors.Is(err, service.ErrAttendanceIDsEmpty):
		response.BadRequest(c, 22004, "待删除的考勤记录列表不能为空")
	case errors.Is(err, service.ErrAttendanceStudentEmpty):
		response.BadRequest(c, 22005, "学生 ID 不能为空")
	default:
		response.InternalError(c)
	}
}
