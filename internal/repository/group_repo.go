package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/viniuy/didasko-final-sub002/internal/model"
	pkgerrors "github.com/viniuy/didasko-final-sub002/pkg/errors"
)

// GroupRepository 分组数据访问接口
type GroupRepository interface {
	Create(ctx context.Context, group *model.Group) error
	GetByID(ctx context.Context, id string) (*model.Group, error)
	ListByCourse(ctx context.Context, courseID string) ([]model.Group, error)
	ExistsByName(ctx context.Context, courseID, name string) (bool, error)
	ExistsByNumber(ctx context.Context, courseID string, number int) (bool, error)
	AddMembers(ctx context.Context, members []model.GroupMember) error
	RemoveMember(ctx context.Context, groupID, studentID string) error
	Delete(ctx context.Context, id string) error
}

type groupRepo struct {
	db *gorm.DB
}

// NewGroupRepo 创建 GroupRepository 实例
func NewGroupRepo(db *gorm.DB) GroupRepository {
	return &groupRepo{db: db}
}

func (r *groupRepo) Create(ctx context.Context, group *model.Group) error {
	return pkgerrors.MapDuplicate(r.db.WithContext(ctx).Create(group).Error)
}

func (r *groupRepo) GetByID(ctx context.Context, id string) (*model.Group, error) {
	var g model.Group
	err := r.db.WithContext(ctx).
		Preload("Members.Student").
		Where("group_id = ?", id).
		First(&g).Error
	if err != nil {
		return nil, pkgerrors.MapInvalidID(err)
	}
	return &g, nil
}

func (r *groupRepo) ListByCourse(ctx context.Context, courseID string) ([]model.Group, error) {
	var groups []model.Group
	err := r.db.WithContext(ctx).
		Preload("Members.Student").
		Where("course_id = ?", courseID).
		Order("number ASC").
		Find(&groups).Error
	return groups, err
}

func (r *groupRepo) ExistsByName(ctx context.Context, courseID, name string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Group{}).
		Where("course_id = ? AND name = ?", courseID, name).
		Count(&n).Error
	return n > 0, err
}

func (r *groupRepo) ExistsByNumber(ctx context.Context, courseID string, number int) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Group{}).
		Where("course_id = ? AND number = ?", courseID, number).
		Count(&n).Error
	return n > 0, err
}

func (r *groupRepo) AddMembers(ctx context.Context, members []model.GroupMember) error {
	if len(members) == 0 {
		return nil
	}
	return pkgerrors.MapDuplicate(r.db.WithContext(ctx).Create(&members).Error)
}

func (r *groupRepo) RemoveMember(ctx context.Context, groupID, studentID string) error {
	return r.db.WithContext(ctx).
		Where("group_id = ? AND student_id = ?", groupID, studentID).
		Delete(&model.GroupMember{}).Error
}

func (r *groupRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("group_id = ?", id).Delete(&model.Group{}).Error
}
