package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/viniuy/didasko-final-sub002/internal/dto"
	"github.com/viniuy/didasko-final-sub002/internal/service"
	"github.com/viniuy/didasko-final-sub002/pkg/response"
)

// GradeHandler 分项成绩与成绩汇总 HTTP 处理器
type GradeHandler struct {
	scoreSvc   service.GradeScoreService
	gradingSvc service.GradingService
}

// NewGradeHandler 创建 GradeHandler
func NewGradeHandler(scoreSvc service.GradeScoreService, gradingSvc service.GradingService) *GradeHandler {
	return &GradeHandler{scoreSvc: scoreSvc, gradingSvc: gradingSvc}
}

// ────────────────────── 分项成绩 ──────────────────────

// LatestScore 学生最新分项成绩，无记录时返回零值占位
// GET /api/v1/courses/:id/scores/:studentId
func (h *GradeHandler) LatestScore(c *gin.Context) {
	var q dto.LatestScoreQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	score, err := h.scoreSvc.Latest(c.Request.Context(), c.Param("id"), c.Param("studentId"), &q)
	if err != nil {
		h.handleGradeError(c, err)
		return
	}

	response.OK(c, score)
}

// UpsertComponent 写入单个分项
// PUT /api/v1/courses/:id/scores
func (h *GradeHandler) UpsertComponent(c *gin.Context) {
	var req dto.UpsertComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	score, err := h.scoreSvc.UpsertComponent(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleGradeError(c, err)
		return
	}

	response.OK(c, score)
}

// UpsertComponents 批量写入同一分项
// PUT /api/v1/courses/:id/scores/batch
func (h *GradeHandler) UpsertComponents(c *gin.Context) {
	var req dto.UpsertComponentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	n, err := h.scoreSvc.UpsertComponents(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleGradeError(c, err)
		return
	}

	response.OK(c, gin.H{"saved": n})
}

// ────────────────────── 加权汇总 ──────────────────────

// CourseGrades 课程全部学生的加权总评
// GET /api/v1/courses/:id/grades
func (h *GradeHandler) CourseGrades(c *gin.Context) {
	list, err := h.gradingSvc.ComputeCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleGradeError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// StudentGrade 单个学生的加权总评，可指定历史方案
// GET /api/v1/courses/:id/grades/:studentId?config_id=
func (h *GradeHandler) StudentGrade(c *gin.Context) {
	grade, err := h.gradingSvc.ComputeStudent(c.Request.Context(), c.Param("id"), c.Param("studentId"), c.Query("config_id"))
	if err != nil {
		h.handleGradeError(c, err)
		return
	}

	response.OK(c, grade)
}

// ────────────────────── 内容/清晰度 ──────────────────────

// RecordRubricGrade 内容/清晰度打分
// PUT /api/v1/courses/:id/rubric
func (h *GradeHandler) RecordRubricGrade(c *gin.Context) {
	var req dto.RecordRubricGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	grade, err := h.gradingSvc.RecordRubricGrade(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleGradeError(c, err)
		return
	}

	response.OK(c, grade)
}

// CourseRubric 课程内容/清晰度汇总
// GET /api/v1/courses/:id/rubric
func (h *GradeHandler) CourseRubric(c *gin.Context) {
	list, err := h.gradingSvc.ComputeRubric(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleGradeError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// StudentRubric 单个学生内容/清晰度结果
// GET /api/v1/courses/:id/rubric/:studentId
func (h *GradeHandler) StudentRubric(c *gin.Context) {
	grade, err := h.gradingSvc.ComputeRubricStudent(c.Request.Context(), c.Param("id"), c.Param("studentId"))
	if err != nil {
		h.handleGradeError(c, err)
		return
	}

	response.OK(c, grade)
}

func (h *GradeHandler) handleGradeError(c *gin.Context, err error) {
	if handleCommonError(c, err) || handleGradeConfigError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrScoreFieldInvalid):
		response.BadRequest(c, 24001, "分项字段无效，应为 reporting / recitation / quiz")
	case errors.Is(err, service.ErrScoreOutOfRange):
		response.BadRequest(c, 24002, "分项成绩必须在 0-100 之间")
	case errors.Is(err, service.ErrScoreDateInvalid):
		response.BadRequest(c, 24003, "日期格式无效，应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrRubricTypeInvalid):
		response.BadRequest(c, 26001, "评分项类型无效，应为 CONTENT / CLARITY")
	case errors.Is(err, service.ErrRubricValueRange):
		response.BadRequest(c, 26002, "内容/清晰度得分必须在 0-10 之间")
	default:
		response.InternalError(c)
	}
}
