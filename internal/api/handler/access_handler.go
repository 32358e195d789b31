package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/viniuy/didasko-final-sub002/internal/service"
	"github.com/viniuy/didasko-final-sub002/pkg/response"
)

// AccessHandler 课程归属校验中间件，挂在 RequireCapability 之后
type AccessHandler struct {
	accessSvc service.CourseAccessService
}

// NewAccessHandler 创建 AccessHandler 实例
func NewAccessHandler(accessSvc service.CourseAccessService) *AccessHandler {
	return &AccessHandler{accessSvc: accessSvc}
}

// Course 校验路径参数 :id 指向的课程
func (h *AccessHandler) Course() gin.HandlerFunc {
	return h.guard("id", h.accessSvc.CheckCourse)
}

// Quiz 校验路径参数 :quizId 所属课程
func (h *AccessHandler) Quiz() gin.HandlerFunc {
	return h.guard("quizId", h.accessSvc.CheckQuiz)
}

// Config 校验路径参数 :configId 所属课程
func (h *AccessHandler) Config() gin.HandlerFunc {
	return h.guard("configId", h.accessSvc.CheckConfig)
}

type accessCheck func(ctx context.Context, id, userID, role string) error

func (h *AccessHandler) guard(param string, check accessCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := MustGetUserID(c)
		if !ok {
			c.Abort()
			return
		}
		role, ok := MustGetRole(c)
		if !ok {
			c.Abort()
			return
		}

		err := check(c.Request.Context(), c.Param(param), userID, role)
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, service.ErrCourseForbidden):
			response.Forbidden(c, 20013, "无权操作该课程")
			c.Abort()
		case errors.Is(err, service.ErrCourseNotFound),
			errors.Is(err, service.ErrQuizNotFound),
			errors.Is(err, service.ErrGradeConfigNotFound):
			// 不存在的资源交给业务处理器返回对应的 404
			c.Next()
		default:
			response.InternalError(c)
			c.Abort()
		}
	}
}
