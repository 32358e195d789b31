package service

import (
	"context"
	"errors"
	"slices"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/viniuy/didasko-final-sub002/internal/dto"
	"github.com/viniuy/didasko-final-sub002/internal/model"
	"github.com/viniuy/didasko-final-sub002/internal/repository"
	pkgerrors "github.com/viniuy/didasko-final-sub002/pkg/errors"
)

// ── 分组模块业务错误 ──

var (
	ErrGroupNotFound      = errors.New("分组不存在")
	ErrGroupNameExists    = errors.New("该课程下分组名称已存在")
	ErrGroupNumberExists  = errors.New("该课程下分组编号已存在")
	ErrGroupLeaderInvalid = errors.New("组长必须是该组成员")
)

// GroupService 分组业务接口
type GroupService interface {
	Create(ctx context.Context, courseID string, req *dto.CreateGroupRequest, callerID string) (*dto.GroupResponse, error)
	List(ctx context.Context, courseID string) ([]dto.GroupResponse, error)
	Get(ctx context.Context, courseID, groupID string) (*dto.GroupResponse, error)
	AddMembers(ctx context.Context, courseID, groupID string, req *dto.GroupMembersRequest) (*dto.GroupResponse, error)
	RemoveMember(ctx context.Context, courseID, groupID, studentID string) error
	Delete(ctx context.Context, courseID, groupID string) error
}

type groupService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewGroupService 创建 GroupService 实例
func NewGroupService(repo *repository.Repository, logger *zap.Logger) GroupService {
	return &groupService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *groupService) Create(ctx context.Context, courseID string, req *dto.CreateGroupRequest, callerID string) (*dto.GroupResponse, error) {
	if _, err := loadActiveCourse(ctx, s.repo, s.logger, courseID); err != nil {
		return nil, err
	}

	// 名称与编号在课程内唯一，写入前显式检查
	exists, err := s.repo.Group.ExistsByName(ctx, courseID, req.Name)
	if err != nil {
		s.logger.Error("检查分组名称失败", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, ErrGroupNameExists
	}
	exists, err = s.repo.Group.ExistsByNumber(ctx, courseID, req.Number)
	if err != nil {
		s.logger.Error("检查分组编号失败", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, ErrGroupNumberExists
	}

	memberIDs := dedupe(req.MemberIDs)
	if err := s.checkEnrolled(ctx, courseID, memberIDs); err != nil {
		return nil, err
	}
	if req.LeaderID != "" && !slices.Contains(memberIDs, req.LeaderID) {
		return nil, ErrGroupLeaderInvalid
	}

	group := &model.Group{
		CourseID: courseID,
		Name:     req.Name,
		Number:   req.Number,
	}
	if req.LeaderID != "" {
		group.LeaderID = &req.LeaderID
	}
	for _, id := range memberIDs {
		group.Members = append(group.Members, model.GroupMember{StudentID: id})
	}
	group.Audit(callerID)

	if err := s.repo.Group.Create(ctx, group); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			return nil, s.duplicateCause(ctx, courseID, req.Number)
		}
		s.logger.Error("创建分组失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	return s.reload(ctx, group.GroupID)
}

// ────────────────────── List / Get ──────────────────────

func (s *groupService) List(ctx context.Context, courseID string) ([]dto.GroupResponse, error) {
	if _, err := loadCourse(ctx, s.repo, s.logger, courseID); err != nil {
		return nil, err
	}
	groups, err := s.repo.Group.ListByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("查询分组失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.GroupResponse, 0, len(groups))
	for i := range groups {
		result = append(result, *toGroupResponse(&groups[i]))
	}
	return result, nil
}

func (s *groupService) Get(ctx context.Context, courseID, groupID string) (*dto.GroupResponse, error) {
	group, err := s.load(ctx, courseID, groupID)
	if err != nil {
		return nil, err
	}
	return toGroupResponse(group), nil
}

// ────────────────────── Members ──────────────────────

func (s *groupService) AddMembers(ctx context.Context, courseID, groupID string, req *dto.GroupMembersRequest) (*dto.GroupResponse, error) {
	if _, err := loadActiveCourse(ctx, s.repo, s.logger, courseID); err != nil {
		return nil, err
	}
	group, err := s.load(ctx, courseID, groupID)
	if err != nil {
		return nil, err
	}
	ids := dedupe(req.StudentIDs)
	if err := s.checkEnrolled(ctx, courseID, ids); err != nil {
		return nil, err
	}

	current := make(map[string]struct{}, len(group.Members))
	for _, m := range group.Members {
		current[m.StudentID] = struct{}{}
	}
	var members []model.GroupMember
	for _, id := range ids {
		if _, ok := current[id]; ok {
			continue
		}
		members = append(members, model.GroupMember{GroupID: groupID, StudentID: id})
	}

	if err := s.repo.Group.AddMembers(ctx, members); err != nil {
		s.logger.Error("添加分组成员失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, err
	}
	return s.reload(ctx, groupID)
}

func (s *groupService) RemoveMember(ctx context.Context, courseID, groupID, studentID string) error {
	if _, err := loadActiveCourse(ctx, s.repo, s.logger, courseID); err != nil {
		return err
	}
	if _, err := s.load(ctx, courseID, groupID); err != nil {
		return err
	}
	if err := s.repo.Group.RemoveMember(ctx, groupID, studentID); err != nil {
		s.logger.Error("移除分组成员失败", zap.String("group_id", groupID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *groupService) Delete(ctx context.Context, courseID, groupID string) error {
	if _, err := loadActiveCourse(ctx, s.repo, s.logger, courseID); err != nil {
		return err
	}
	if _, err := s.load(ctx, courseID, groupID); err != nil {
		return err
	}
	if err := s.repo.Group.Delete(ctx, groupID); err != nil {
		s.logger.Error("删除分组失败", zap.String("group_id", groupID), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

// duplicateCause 并发创建撞上唯一约束时，区分编号冲突与名称冲突
func (s *groupService) duplicateCause(ctx context.Context, courseID string, number int) error {
	taken, err := s.repo.Group.ExistsByNumber(ctx, courseID, number)
	if err == nil && taken {
		return ErrGroupNumberExists
	}
	return ErrGroupNameExists
}

// load 加载分组并校验其归属课程
func (s *groupService) load(ctx context.Context, courseID, groupID string) (*model.Group, error) {
	group, err := s.repo.Group.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		s.logger.Error("查询分组失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, err
	}
	if group.CourseID != courseID {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

func (s *groupService) reload(ctx context.Context, groupID string) (*dto.GroupResponse, error) {
	group, err := s.repo.Group.GetByID(ctx, groupID)
	if err != nil {
		s.logger.Error("查询分组失败", zap.String("group_id", groupID), zap.Error(err))
		return nil, err
	}
	return toGroupResponse(group), nil
}

func (s *groupService) checkEnrolled(ctx context.Context, courseID string, studentIDs []string) error {
	if len(studentIDs) == 0 {
		return nil
	}
	enrolled, err := s.repo.Enrollment.FilterEnrolled(ctx, courseID, studentIDs)
	if err != nil {
		s.logger.Error("查询选课关系失败", zap.String("course_id", courseID), zap.Error(err))
		return err
	}
	set := make(map[string]struct{}, len(enrolled))
	for _, id := range enrolled {
		set[id] = struct{}{}
	}
	for _, id := range studentIDs {
		if _, ok := set[id]; !ok {
			return ErrNotEnrolled
		}
	}
	return nil
}

func toGroupResponse(g *model.Group) *dto.GroupResponse {
	resp := &dto.GroupResponse{
		ID:       g.GroupID,
		CourseID: g.CourseID,
		Name:     g.Name,
		Number:   g.Number,
		Members:  make([]dto.StudentBrief, 0, len(g.Members)),
	}
	if g.LeaderID != nil {
		resp.LeaderID = *g.LeaderID
	}
	for _, m := range g.Members {
		if m.Student != nil {
			resp.Members = append(resp.Members, toStudentBrief(m.Student))
		} else {
			resp.Members = append(resp.Members, dto.StudentBrief{ID: m.StudentID})
		}
	}
	return resp
}
