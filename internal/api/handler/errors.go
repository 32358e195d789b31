package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/viniuy/didasko-final-sub002/internal/service"
	"github.com/viniuy/didasko-final-sub002/pkg/response"
)

// handleCommonError 处理跨模块共享的业务错误，已写入响应时返回 true
func handleCommonError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 20001, "课程不存在")
	case errors.Is(err, service.ErrCourseInactive):
		response.Conflict(c, 20003, "课程已归档")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 27001, "学生不存在")
	case errors.Is(err, service.ErrNotEnrolled):
		response.BadRequest(c, 20007, "学生未选该课程")
	default:
		return false
	}
	return true
}

// bindFailed 绑定失败时输出字段级详情
func bindFailed(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		parts := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
		}
		response.ValidationFailed(c, strings.Join(parts, "; "))
		return
	}
	response.BadRequest(c, 10001, "参数校验失败")
}
