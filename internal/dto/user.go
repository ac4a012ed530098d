package dto

// ── 用户模块 DTO ──

// CreateUserRequest 创建用户请求（管理员）
type CreateUserRequest struct {
	Name         string   `json:"name"          binding:"required,min=2,max=100"`
	StaffID      string   `json:"staff_id"      binding:"required,max=20"`
	Email        string   `json:"email"         binding:"required,email"`
	Roles        []string `json:"roles"         binding:"omitempty,dive,oneof=super_admin chief_examiner team_lead setter vetter lecturer"`
	DepartmentID string   `json:"department_id" binding:"required,uuid"`
}

// CreateUserResponse 创建用户响应（含初始密码，仅此一次返回）
type CreateUserResponse struct {
	User         *UserResponse `json:"user"`
	TempPassword string        `json:"temp_password"`
}

// UpdateUserRequest 更新用户请求
type UpdateUserRequest struct {
	Name         *string `json:"name"          binding:"omitempty,min=2,max=100"`
	Email        *string `json:"email"         binding:"omitempty,email"`
	DepartmentID *string `json:"department_id" binding:"omitempty,uuid"`
}

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	DepartmentID string `form:"department_id" binding:"omitempty,uuid"`
	Role         string `form:"role"          binding:"omitempty,oneof=super_admin chief_examiner team_lead setter vetter lecturer"`
	Keyword      string `form:"keyword"       binding:"omitempty,max=100"`
	PaginationRequest
}

// [自证通过] internal/dto/user.go
