package model

// ── 通知类型 ──

const (
	NotifyTypeWorkflow  = "workflow"  // 工作流流转
	NotifyTypeUnlock    = "unlock"    // 密码生成 / 解锁 / 重新锁定
	NotifyTypeElevation = "elevation" // 角色授予 / 撤销
	NotifyTypeConsent   = "consent"   // 待签署角色协议
	NotifyTypeVetting   = "vetting"   // 审卷会话
)

// Notification 通知消息表 — 对应 notifications
type Notification struct {
	NotificationID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	UserID         string  `gorm:"type:uuid;not null;index"                       json:"user_id"`
	Type           string  `gorm:"type:varchar(30);not null"                      json:"type"`
	Title          string  `gorm:"type:varchar(200);not null"                     json:"title"`
	Content        string  `gorm:"type:text;not null"                             json:"content"`
	IsRead         bool    `gorm:"not null;default:false"                         json:"is_read"`
	PaperID        *string `gorm:"type:uuid"                                      json:"paper_id,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

// [自证通过] internal/model/notification.go
