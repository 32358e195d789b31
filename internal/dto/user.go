package dto

// ── 用户模块 DTO ──

// CreateUserRequest 创建账号请求（管理员）
type CreateUserRequest struct {
	Name     string `json:"name"     binding:"required,min=2,max=100"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=64"`
	Role     string `json:"role"     binding:"required,oneof=ADMIN ACADEMIC_HEAD FACULTY"`
}

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role string `form:"role" binding:"omitempty,oneof=ADMIN ACADEMIC_HEAD FACULTY"`
}

// UpdateUserRequest 更新用户信息请求
type UpdateUserRequest struct {
	Name   *string `json:"name"   binding:"omitempty,min=2,max=100"`
	Role   *string `json:"role"   binding:"omitempty,oneof=ADMIN ACADEMIC_HEAD FACULTY"`
	Status *string `json:"status" binding:"omitempty,oneof=ACTIVE ARCHIVED"`
}
