package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/viniuy/didasko-final-sub002/internal/dto"
	"github.com/viniuy/didasko-final-sub002/internal/service"
	"github.com/viniuy/didasko-final-sub002/pkg/response"
)

// GroupHandler 课程分组 HTTP 处理器
type GroupHandler struct {
	groupSvc service.GroupService
}

// NewGroupHandler 创建 GroupHandler
func NewGroupHandler(groupSvc service.GroupService) *GroupHandler {
	return &GroupHandler{groupSvc: groupSvc}
}

// CreateGroup 创建分组（名称/编号在课程内唯一）
// POST /api/v1/courses/:id/groups
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req dto.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	group, err := h.groupSvc.Create(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleGroupError(c, err)
		return
	}

	response.Created(c, group)
}

// ListGroups 课程分组列表
// GET /api/v1/courses/:id/groups
func (h *GroupHandler) ListGroups(c *gin.Context) {
	groups, err := h.groupSvc.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleGroupError(c, err)
		return
	}

	response.OK(c, gin.H{"list": groups})
}

// GetGroup 分组详情
// GET /api/v1/courses/:id/groups/:groupId
func (h *GroupHandler) GetGroup(c *gin.Context) {
	group, err := h.groupSvc.Get(c.Request.Context(), c.Param("id"), c.Param("groupId"))
	if err != nil {
		h.handleGroupError(c, err)
		return
	}

	response.OK(c, group)
}

// AddMembers 添加组员
// POST /api/v1/courses/:id/groups/:groupId/members
func (h *GroupHandler) AddMembers(c *gin.Context) {
	var req dto.GroupMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	group, err := h.groupSvc.AddMembers(c.Request.Context(), c.Param("id"), c.Param("groupId"), &req)
	if err != nil {
		h.handleGroupError(c, err)
		return
	}

	response.OK(c, group)
}

// RemoveMember 移除组员
// DELETE /api/v1/courses/:id/groups/:groupId/members/:studentId
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	err := h.groupSvc.RemoveMember(c.Request.Context(), c.Param("id"), c.Param("groupId"), c.Param("studentId"))
	if err != nil {
		h.handleGroupError(c, err)
		return
	}

	response.OK(c, nil)
}

// DeleteGroup 删除分组
// DELETE /api/v1/courses/:id/groups/:groupId
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	if err := h.groupSvc.Delete(c.Request.Context(), c.Param("id"), c.Param("groupId")); err != nil {
		h.handleGroupError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *GroupHandler) handleGroupError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrGroupNotFound):
		response.NotFound(c, 21001, "分组不存在")
	case errors.Is(err, service.ErrGroupNameExists):
		response.Conflict(c, 21002, "该课程下分组名称已存在")
	case errors.Is(err, service.ErrGroupNumberExists):
		response.Conflict(c, 21003, "该课程下分组编号已存在")
	case errors.Is(err, service.ErrGroupLeaderInvalid):
		response.BadRequest(c, 21004, "组长必须是该组成员")
	case errors.Is(err, service.ErrDuplicateStudents):
		response.BadRequest(c, 20008, "学生列表中存在重复项")
	default:
		response.InternalError(c)
	}
}
