package model

import "time"

// PrivilegeElevation 角色授予记录表 — 对应 privilege_elevations
// 一次授予一行；撤销时置 is_active=false，不删除（保留审计线索）。
type PrivilegeElevation struct {
	ElevationID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"elevation_id"`
	UserID          string `gorm:"type:uuid;not null;index"                       json:"user_id"`
	Role            string `gorm:"type:varchar(30);not null"                      json:"role"`
	ElevatedBy      string `gorm:"type:uuid;not null"                             json:"elevated_by"`
	IsActive        bool   `gorm:"not null;default:true"                          json:"is_active"`
	RequiresConsent bool   `gorm:"not null;default:false"                         json:"requires_consent"`

	// 主考官任命元数据（其余角色为空）
	Faculty      string `gorm:"type:varchar(100)" json:"faculty,omitempty"`
	DepartmentID string `gorm:"type:uuid"         json:"department_id,omitempty"`
	Semester     string `gorm:"type:varchar(20)"  json:"semester,omitempty"`
	AcademicYear string `gorm:"type:varchar(9)"   json:"academic_year,omitempty"`

	BaseModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (PrivilegeElevation) TableName() string { return "privilege_elevations" }

// RoleConsentAcceptance 角色协议签署表 — 对应 role_consent_acceptances
// (user_id, role) 唯一；同角色重新授予时删除旧行，强制重新签署。
type RoleConsentAcceptance struct {
	AcceptanceID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"  json:"acceptance_id"`
	UserID       string    `gorm:"type:uuid;not null;uniqueIndex:uniq_user_role"   json:"user_id"`
	Role         string    `gorm:"type:varchar(30);not null;uniqueIndex:uniq_user_role" json:"role"`
	// 协议文档指针（role-consents 桶）
	ConsentBucket string    `gorm:"type:varchar(100)"                  json:"consent_bucket,omitempty"`
	ConsentObject string    `gorm:"type:varchar(500)"                  json:"consent_object,omitempty"`
	AcceptedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"accepted_at"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (RoleConsentAcceptance) TableName() string { return "role_consent_acceptances" }

// [自证通过] internal/model/elevation.go
