package handler

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/viniuy/didasko-final-sub002/internal/dto"
	"github.com/viniuy/didasko-final-sub002/internal/model"
	"github.com/viniuy/didasko-final-sub002/internal/service"
	"github.com/viniuy/didasko-final-sub002/pkg/response"
)

// CourseHandler 课程与选课 HTTP 处理器
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// CreateCourse 创建课程（slug 由课程代码 + 班级生成）
// POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	course, err := h.courseSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.Created(c, course)
}

// ListCourses 课程列表；任课教师仅能看到自己的课程
// GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *gin.Context) {
	var req dto.CourseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}
	facultyID := ""
	if role == model.RoleFaculty {
		facultyID = userID
	}

	courses, total, err := h.courseSvc.List(c.Request.Context(), &req, facultyID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, courses, total, req.GetPage(), req.GetPageSize())
}

// GetCourse 课程详情
// GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	course, err := h.courseSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, course)
}

// GetCourseBySlug 按 slug 获取课程
// GET /api/v1/courses/slug/:slug
func (h *CourseHandler) GetCourseBySlug(c *gin.Context) {
	course, err := h.courseSvc.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, course)
}

// UpdateCourse 更新课程
// PUT /api/v1/courses/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	course, err := h.courseSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, course)
}

// ArchiveCourse 归档课程
// PUT /api/v1/courses/:id/archive
func (h *CourseHandler) ArchiveCourse(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.courseSvc.Archive(c.Request.Context(), c.Param("id"), callerID); err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, nil)
}

// ────────────────────── 选课 ──────────────────────

// Enroll 批量选课，任一学生已选则整体 409
// POST /api/v1/courses/:id/students
func (h *CourseHandler) Enroll(c *gin.Context) {
	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	if err := h.courseSvc.Enroll(c.Request.Context(), c.Param("id"), &req); err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.Created(c, gin.H{"enrolled": len(req.StudentIDs)})
}

// Unenroll 退课
// DELETE /api/v1/courses/:id/students/:studentId
func (h *CourseHandler) Unenroll(c *gin.Context) {
	if err := h.courseSvc.Unenroll(c.Request.Context(), c.Param("id"), c.Param("studentId")); err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListStudents 课程花名册
// GET /api/v1/courses/:id/students
func (h *CourseHandler) ListStudents(c *gin.Context) {
	students, err := h.courseSvc.ListStudents(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, gin.H{"list": students})
}

// ImportSchedules 从日历文件导入每周上课时间（整体替换）
// POST /api/v1/courses/:id/schedules/import  multipart/form-data, field="file", 可选 match
func (h *CourseHandler) ImportSchedules(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, 20011, "请上传 .ics 日历文件")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".ics") {
		response.BadRequest(c, 20012, "仅支持 .ics 文件")
		return
	}

	course, err := h.courseSvc.ImportSchedules(c.Request.Context(), c.Param("id"), file, c.PostForm("match"), callerID)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}

	response.OK(c, course)
}

func (h *CourseHandler) handleCourseError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrCourseSlugExists):
		response.Conflict(c, 20002, "相同课程代码与班级的课程已存在")
	case errors.Is(err, service.ErrFacultyNotFound):
		response.BadRequest(c, 20004, "任课教师不存在")
	case errors.Is(err, service.ErrScheduleInvalid):
		response.BadRequest(c, 20005, "上课时间无效，结束时间必须晚于开始时间")
	case errors.Is(err, service.ErrScheduleICSBadFile):
		response.BadRequest(c, 20009, "无法解析 ICS 日历文件")
	case errors.Is(err, service.ErrScheduleICSEmpty):
		response.BadRequest(c, 20010, "日历中没有可导入的上课时间")
	case errors.Is(err, service.ErrAlreadyEnrolled):
		response.Conflict(c, 20006, "学生已选该课程")
	case errors.Is(err, service.ErrDuplicateStudents):
		response.BadRequest(c, 20008, "学生列表中存在重复项")
	default:
		response.InternalError(c)
	}
}
