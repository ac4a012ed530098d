package dto

// ── 通用响应 ──

// DepartmentResponse 院系简要信息
type DepartmentResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Faculty string `json:"faculty"`
}

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Email       string              `json:"email"`
	StaffID     string              `json:"staff_id"`
	Roles       []string            `json:"roles"`
	ActiveRoles []string            `json:"active_roles,omitempty"` // 基础角色 ∪ 已签署协议的授予角色
	Department  *DepartmentResponse `json:"department,omitempty"`
}

// UserBrief 用户简要信息（嵌入其他响应）
type UserBrief struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	StaffID string `json:"staff_id"`
}

// ── 分页请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// [自证通过] internal/dto/response.go
