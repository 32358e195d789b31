package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/viniuy/didasko-final-sub002/internal/dto"
	"github.com/viniuy/didasko-final-sub002/internal/model"
)

func setupUserService() (UserService, *mockRepos) {
	m, repo := newMockRepos()
	return NewUserService(repo, zap.NewNop()), m
}

func TestUserService_Create(t *testing.T) {
	svc, m := setupUserService()

	got, err := svc.Create(context.Background(), &dto.CreateUserRequest{
		Name: "Faculty One", Email: "f1@school.edu", Password: "password123", Role: model.RoleFaculty,
	}, "admin")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if got.Status != model.UserStatusActive {
		t.Errorf("新账号应为 ACTIVE，实际 %s", got.Status)
	}
	stored := m.user.users[got.ID]
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123")) != nil {
		t.Error("密码应以 bcrypt 哈希存储")
	}
}

func TestUserService_Create_DuplicateEmail(t *testing.T) {
	svc, _ := setupUserService()
	ctx := context.Background()
	req := &dto.CreateUserRequest{Name: "A", Email: "a@school.edu", Password: "password123", Role: model.RoleAdmin}
	svc.Create(ctx, req, "")

	if _, err := svc.Create(ctx, req, ""); !errors.Is(err, ErrEmailExists) {
		t.Errorf("期望 ErrEmailExists，实际: %v", err)
	}
}

func TestUserService_List_RoleFilter(t *testing.T) {
	svc, _ := setupUserService()
	ctx := context.Background()
	svc.Create(ctx, &dto.CreateUserRequest{Name: "A", Email: "a@school.edu", Password: "password123", Role: model.RoleAdmin}, "")
	svc.Create(ctx, &dto.CreateUserRequest{Name: "F", Email: "f@school.edu", Password: "password123", Role: model.RoleFaculty}, "")

	list, total, err := svc.List(ctx, &dto.UserListRequest{Role: model.RoleFaculty})
	if err != nil || total != 1 || list[0].Email != "f@school.edu" {
		t.Errorf("角色过滤不符: total=%d err=%v", total, err)
	}
}

func TestUserService_Update_SelfRoleChange(t *testing.T) {
	svc, _ := setupUserService()
	ctx := context.Background()
	u, _ := svc.Create(ctx, &dto.CreateUserRequest{Name: "A", Email: "a@school.edu", Password: "password123", Role: model.RoleAdmin}, "")

	role := model.RoleFaculty
	if _, err := svc.Update(ctx, u.ID, &dto.UpdateUserRequest{Role: &role}, u.ID); !errors.Is(err, ErrUserSelfRoleChange) {
		t.Errorf("期望 ErrUserSelfRoleChange，实际: %v", err)
	}

	name := "Admin Renamed"
	got, err := svc.Update(ctx, u.ID, &dto.UpdateUserRequest{Name: &name}, u.ID)
	if err != nil || got.Name != name {
		t.Errorf("修改自己的名字应成功: %v", err)
	}
}

func TestUserService_ResetPassword(t *testing.T) {
	svc, m := setupUserService()
	ctx := context.Background()
	u, _ := svc.Create(ctx, &dto.CreateUserRequest{Name: "A", Email: "a@school.edu", Password: "password123", Role: model.RoleAdmin}, "")

	temp, err := svc.ResetPassword(ctx, u.ID, "admin")
	if err != nil {
		t.Fatalf("ResetPassword 应成功: %v", err)
	}
	if len(temp) != 10 {
		t.Errorf("临时密码应为 10 位，实际 %d", len(temp))
	}
	if bcrypt.CompareHashAndPassword([]byte(m.user.users[u.ID].PasswordHash), []byte(temp)) != nil {
		t.Error("临时密码应可登录")
	}
}

func TestGenerateTempPassword(t *testing.T) {
	for i := 0; i < 20; i++ {
		p, err := generateTempPassword(12)
		if err != nil {
			t.Fatalf("generateTempPassword 失败: %v", err)
		}
		var letter, digit bool
		for _, c := range p {
			switch {
			case c >= '0' && c <= '9':
				digit = true
			case (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
				letter = true
			}
		}
		if !letter || !digit {
			t.Errorf("临时密码应同时包含字母和数字: %s", p)
		}
	}
}
