package model

// ── 工作流角色 ──

const (
	RoleSuperAdmin    = "super_admin"
	RoleChiefExaminer = "chief_examiner"
	RoleTeamLead      = "team_lead"
	RoleSetter        = "setter"
	RoleVetter        = "vetter"
	RoleLecturer      = "lecturer"
)

// ConsentRequiredRoles 需要签署角色协议后才激活的角色。
// chief_examiner 与 super_admin 不在其中：授予后立即生效。
var ConsentRequiredRoles = map[string]bool{
	RoleSetter:   true,
	RoleVetter:   true,
	RoleTeamLead: true,
}

// ValidRole 判断是否为已定义的工作流角色
func ValidRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleChiefExaminer, RoleTeamLead, RoleSetter, RoleVetter, RoleLecturer:
		return true
	}
	return false
}

// User 用户表 — 对应 users
//
// Roles 为基础角色列表（立即生效的角色）。通过 AppointRole 授予的
// setter/vetter/team_lead 角色不会进入该列表，须经 RoleConsentAcceptance
// 确认后才在会话层面合并为有效角色。
type User struct {
	UserID       string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string      `gorm:"type:varchar(100);not null"                     json:"name"`
	StaffID      string      `gorm:"type:varchar(20);not null"                      json:"staff_id"`
	Email        string      `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash string      `gorm:"type:varchar(255);not null"                     json:"-"`
	Roles        StringArray `gorm:"type:text[];not null;default:'{lecturer}'"      json:"roles"`
	DepartmentID string      `gorm:"type:uuid;not null"                             json:"department_id"`
	VersionedModel

	// 关联
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// Department 院系表 — 对应 departments
type Department struct {
	DepartmentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"department_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Faculty      string `gorm:"type:varchar(100);not null"                     json:"faculty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Department) TableName() string { return "departments" }

// [自证通过] internal/model/user.go
