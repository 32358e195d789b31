package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/viniuy/didasko-final-sub002/internal/dto"
	"github.com/viniuy/didasko-final-sub002/internal/service"
	"github.com/viniuy/didasko-final-sub002/pkg/response"
)

// GradeConfigHandler 评分方案 HTTP 处理器
type GradeConfigHandler struct {
	configSvc service.GradeConfigService
}

// NewGradeConfigHandler 创建 GradeConfigHandler
func NewGradeConfigHandler(configSvc service.GradeConfigService) *GradeConfigHandler {
	return &GradeConfigHandler{configSvc: configSvc}
}

// CreateConfig 创建评分方案
// POST /api/v1/courses/:id/grade-configs
func (h *GradeConfigHandler) CreateConfig(c *gin.Context) {
	var req dto.CreateGradeConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	cfg, err := h.configSvc.Create(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleConfigError(c, err)
		return
	}

	response.Created(c, cfg)
}

// ListConfigs 方案历史（按创建时间倒序）
// GET /api/v1/courses/:id/grade-configs
func (h *GradeConfigHandler) ListConfigs(c *gin.Context) {
	list, err := h.configSvc.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleConfigError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// CurrentConfig 当前方案；传 date 时返回有效期覆盖该日的方案
// GET /api/v1/courses/:id/grade-configs/current?date=YYYY-MM-DD
func (h *GradeConfigHandler) CurrentConfig(c *gin.Context) {
	var (
		cfg *dto.GradeConfigResponse
		err error
	)
	if date := c.Query("date"); date != "" {
		cfg, err = h.configSvc.At(c.Request.Context(), c.Param("id"), date)
	} else {
		cfg, err = h.configSvc.Current(c.Request.Context(), c.Param("id"))
	}
	if err != nil {
		h.handleConfigError(c, err)
		return
	}

	response.OK(c, cfg)
}

// GetConfig 方案详情
// GET /api/v1/grade-configs/:configId
func (h *GradeConfigHandler) GetConfig(c *gin.Context) {
	cfg, err := h.configSvc.Get(c.Request.Context(), c.Param("configId"))
	if err != nil {
		h.handleConfigError(c, err)
		return
	}

	response.OK(c, cfg)
}

// UpdateConfig 修改方案，生成新快照
// PUT /api/v1/grade-configs/:configId
func (h *GradeConfigHandler) UpdateConfig(c *gin.Context) {
	var req dto.UpdateGradeConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	cfg, err := h.configSvc.Update(c.Request.Context(), c.Param("configId"), &req, callerID)
	if err != nil {
		h.handleConfigError(c, err)
		return
	}

	response.Created(c, cfg)
}

func (h *GradeConfigHandler) handleConfigError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	if handleGradeConfigError(c, err) {
		return
	}
	response.InternalError(c)
}

// handleGradeConfigError 评分方案错误映射，成绩模块同样会遇到
func handleGradeConfigError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, service.ErrGradeConfigNotFound):
		response.NotFound(c, 23001, "评分方案不存在")
	case errors.Is(err, service.ErrNoConfiguration):
		response.NotFound(c, 23002, "课程尚未配置评分方案")
	case errors.Is(err, service.ErrGradeConfigWeightSum):
		response.BadRequest(c, 23003, "三项权重之和必须为 100")
	case errors.Is(err, service.ErrGradeConfigWeight):
		response.BadRequest(c, 23004, "权重必须在 0-100 之间")
	case errors.Is(err, service.ErrGradeConfigThreshold):
		response.BadRequest(c, 23005, "及格线必须在 0-100 之间")
	case errors.Is(err, service.ErrGradeConfigWindow):
		response.BadRequest(c, 23006, "有效期结束日期不能早于开始日期")
	case errors.Is(err, service.ErrGradeConfigDateInvalid):
		response.BadRequest(c, 23007, "日期格式无效，应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrGradeConfigSuperseded):
		response.Conflict(c, 23008, "该评分方案已被新版本替代，请基于最新版本修改")
	case errors.Is(err, service.ErrGradeConfigCourseDiffer):
		response.BadRequest(c, 23009, "评分方案不属于该课程")
	default:
		return false
	}
	return true
}
