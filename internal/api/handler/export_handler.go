package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/viniuy/didasko-final-sub002/internal/dto"
	"github.com/viniuy/didasko-final-sub002/internal/service"
	"github.com/viniuy/didasko-final-sub002/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportGrades 导出成绩表
// GET /api/v1/courses/:id/export/grades
func (h *ExportHandler) ExportGrades(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportGrades(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	response.Attachment(c, filename, response.XLSXContentType, buf.Bytes())
}

// ExportAttendance 导出考勤矩阵
// GET /api/v1/courses/:id/export/attendance?from=&to=
func (h *ExportHandler) ExportAttendance(c *gin.Context) {
	var q dto.AttendanceRangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	buf, filename, err := h.exportSvc.ExportAttendance(c.Request.Context(), c.Param("id"), q.From, q.To)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	response.Attachment(c, filename, response.XLSXContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	if handleCommonError(c, err) || handleGradeConfigError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrExportRangeInvalid):
		response.BadRequest(c, 28001, "导出日期区间无效")
	case errors.Is(err, service.ErrExportRangeTooLong):
		response.BadRequest(c, 28002, "导出日期区间不能超过 366 天")
	default:
		response.InternalError(c)
	}
}
