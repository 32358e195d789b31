package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/viniuy/didasko-final-sub002/internal/dto"
	"github.com/viniuy/didasko-final-sub002/internal/service"
	"github.com/viniuy/didasko-final-sub002/pkg/response"
)

// QuizHandler 测验模块 HTTP 处理器
type QuizHandler struct {
	quizSvc service.QuizService
}

// NewQuizHandler 创建 QuizHandler
func NewQuizHandler(quizSvc service.QuizService) *QuizHandler {
	return &QuizHandler{quizSvc: quizSvc}
}

// CreateQuiz 创建测验
// POST /api/v1/courses/:id/quizzes
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req dto.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	quiz, err := h.quizSvc.Create(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	response.Created(c, quiz)
}

// ListQuizzes 课程测验列表
// GET /api/v1/courses/:id/quizzes
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	list, err := h.quizSvc.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GetQuiz 测验详情
// GET /api/v1/quizzes/:quizId
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quiz, err := h.quizSvc.Get(c.Request.Context(), c.Param("quizId"))
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	response.OK(c, quiz)
}

// UpdateQuiz 更新测验
// PUT /api/v1/quizzes/:quizId
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	var req dto.UpdateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	quiz, err := h.quizSvc.Update(c.Request.Context(), c.Param("quizId"), &req, callerID)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	response.OK(c, quiz)
}

// DeleteQuiz 删除测验及其成绩
// DELETE /api/v1/quizzes/:quizId
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	if err := h.quizSvc.Delete(c.Request.Context(), c.Param("quizId")); err != nil {
		h.handleQuizError(c, err)
		return
	}

	response.OK(c, nil)
}

// SaveScores 批量保存测验成绩：全部通过校验才写入
// PUT /api/v1/quizzes/:quizId/scores
func (h *QuizHandler) SaveScores(c *gin.Context) {
	var req dto.SaveQuizScoresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.quizSvc.SaveAll(c.Request.Context(), c.Param("quizId"), &req, callerID)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	response.OK(c, result)
}

// ListScores 测验成绩（含及格判定）
// GET /api/v1/quizzes/:quizId/scores
func (h *QuizHandler) ListScores(c *gin.Context) {
	list, err := h.quizSvc.ListScores(c.Request.Context(), c.Param("quizId"))
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// Eligibility 考勤加分资格
// GET /api/v1/quizzes/:quizId/eligibility
func (h *QuizHandler) Eligibility(c *gin.Context) {
	list, err := h.quizSvc.Eligibility(c.Request.Context(), c.Param("quizId"))
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

func (h *QuizHandler) handleQuizError(c *gin.Context, err error) {
	var batchErr *service.BatchValidationError
	if errors.As(err, &batchErr) {
		response.ValidationFailed(c, strings.Join(batchErr.Issues, "; "))
		return
	}
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrQuizNotFound):
		response.NotFound(c, 25001, "测验不存在")
	case errors.Is(err, service.ErrQuizDateInvalid):
		response.BadRequest(c, 25002, "日期格式无效，应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrQuizRangeInvalid):
		response.BadRequest(c, 25003, "考勤统计区间结束日期不能早于开始日期")
	case errors.Is(err, service.ErrQuizMaxScore):
		response.BadRequest(c, 25004, "满分必须大于 0")
	case errors.Is(err, service.ErrQuizMaxBelowScores):
		response.Conflict(c, 25006, "满分不能低于已录入的成绩")
	case errors.Is(err, service.ErrQuizPassingRate):
		response.BadRequest(c, 25005, "及格率必须在 0-100 之间")
	default:
		response.InternalError(c)
	}
}
