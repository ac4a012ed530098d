package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"examflow/backend/config"
	"examflow/backend/internal/dto"
	"examflow/backend/internal/model"
	"examflow/backend/internal/repository"
	"examflow/backend/pkg/metrics"
)

// ── 审卷模块业务错误 ──

var (
	ErrSessionNotFound          = errors.New("审卷会话不存在")
	ErrNotSessionVetter         = errors.New("只有被任命的审卷人可以操作该会话")
	ErrInvalidSessionTransition = errors.New("当前会话状态不允许该操作")
	ErrSessionNotActive         = errors.New("会话未开始或已结束，不能添加意见")
	ErrCommentNotFound          = errors.New("审卷意见不存在")
	ErrNoRecording              = errors.New("该会话未登记录像")
)

// 录像回放链接有效期
const recordingURLExpiry = time.Hour

// 单个审卷会话的标称时长（ICS 日历事件用）
const sessionDuration = 2 * time.Hour

// VettingService 审卷会话与意见业务接口
//
// 会话由 AppointVetters 批量创建为 pending；第一个会话开始时考卷进入
// vetting_in_progress，全部会话结束（completed/expired/cancelled）且至少
// 一个 completed 时考卷进入 vetted_with_comments。
type VettingService interface {
	StartSession(ctx context.Context, sessionID, vetterID string) error
	CompleteSession(ctx context.Context, sessionID, vetterID string) error
	CancelSession(ctx context.Context, sessionID, actorID string) error
	// ExpireOverdue 将计划时间加宽限期已过、仍未完成的会话置为过期
	ExpireOverdue(ctx context.Context, now time.Time) (int, error)
	ListByPaper(ctx context.Context, paperID string) ([]dto.SessionResponse, error)
	ListByVetter(ctx context.Context, vetterID string) ([]dto.SessionResponse, error)
	AddComment(ctx context.Context, sessionID string, req *dto.AddCommentRequest, authorID string) (*dto.CommentResponse, error)
	MarkCommentAddressed(ctx context.Context, commentID, actorID string) error
	ListComments(ctx context.Context, paperID string) ([]dto.CommentResponse, error)
	AttachRecording(ctx context.Context, sessionID string, req *dto.AttachRecordingRequest, vetterID string) error
	RecordingURL(ctx context.Context, sessionID string) (string, error)
	// ExportICS 导出审卷人的会话日程（iCalendar 格式）
	ExportICS(ctx context.Context, vetterID string) (string, error)
}

type vettingService struct {
	cfg          *config.Config
	repo         *repository.Repository
	notification NotificationService
	store        ObjectStore
	logger       *zap.Logger
}

// NewVettingService 创建 VettingService 实例
func NewVettingService(
	cfg *config.Config,
	repo *repository.Repository,
	notification NotificationService,
	store ObjectStore,
	logger *zap.Logger,
) VettingService {
	return &vettingService{cfg: cfg, repo: repo, notification: notification, store: store, logger: logger}
}

func (s *vettingService) StartSession(ctx context.Context, sessionID, vetterID string) error {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.VetterID != vetterID {
		return ErrNotSessionVetter
	}
	if !model.CanTransitionSession(session.Status, model.SessionInProgress) {
		return ErrInvalidSessionTransition
	}

	now := time.Now()
	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		session.Status = model.SessionInProgress
		session.StartedAt = &now
		session.UpdatedBy = &vetterID
		if err := txRepo.Vetting.Update(ctx, session); err != nil {
			return err
		}
		// 第一个会话开始时考卷进入审卷中
		return s.advancePaper(ctx, txRepo, session.PaperID, model.StatusVettingInProgress, vetterID)
	})
	if err != nil {
		s.logger.Error("开始审卷会话失败", zap.String("session_id", sessionID), zap.Error(err))
		return err
	}

	s.logger.Info("开始审卷会话",
		zap.String("session_id", sessionID),
		zap.String("vetter_id", vetterID),
	)
	return nil
}

func (s *vettingService) CompleteSession(ctx context.Context, sessionID, vetterID string) error {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.VetterID != vetterID {
		return ErrNotSessionVetter
	}
	if !model.CanTransitionSession(session.Status, model.SessionCompleted) {
		return ErrInvalidSessionTransition
	}

	now := time.Now()
	allDone := false
	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		session.Status = model.SessionCompleted
		session.CompletedAt = &now
		session.UpdatedBy = &vetterID
		if err := txRepo.Vetting.Update(ctx, session); err != nil {
			return err
		}

		// 全部会话结束后考卷进入已审卷待修订
		siblings, err := txRepo.Vetting.ListByPaper(ctx, session.PaperID)
		if err != nil {
			return err
		}
		allDone = true
		for _, sib := range siblings {
			if sib.SessionID == session.SessionID {
				continue
			}
			if sib.Status == model.SessionPending || sib.Status == model.SessionInProgress {
				allDone = false
				break
			}
		}
		if !allDone {
			return nil
		}
		return s.advancePaper(ctx, txRepo, session.PaperID, model.StatusVettedWithComments, vetterID)
	})
	if err != nil {
		s.logger.Error("完成审卷会话失败", zap.String("session_id", sessionID), zap.Error(err))
		return err
	}

	s.logger.Info("完成审卷会话",
		zap.String("session_id", sessionID),
		zap.Bool("all_done", allDone),
	)

	if allDone {
		if paper, err := s.repo.ExamPaper.GetByID(ctx, session.PaperID); err == nil {
			s.notification.Notify(ctx, paper.SetterID, model.NotifyTypeVetting,
				"审卷已完成",
				fmt.Sprintf("课程 %s《%s》的审卷已全部完成，请根据意见修订。", paper.CourseCode, paper.CourseTitle),
				&paper.PaperID)
		}
	}
	return nil
}

func (s *vettingService) CancelSession(ctx context.Context, sessionID, actorID string) error {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if !model.CanTransitionSession(session.Status, model.SessionCancelled) {
		return ErrInvalidSessionTransition
	}

	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		session.Status = model.SessionCancelled
		session.UpdatedBy = &actorID
		if err := txRepo.Vetting.Update(ctx, session); err != nil {
			return err
		}
		// 取消可能是最后一个活动会话，结算考卷去向
		return s.settlePaper(ctx, txRepo, session.PaperID, actorID)
	})
	if err != nil {
		s.logger.Error("取消审卷会话失败", zap.String("session_id", sessionID), zap.Error(err))
		return err
	}

	s.logger.Info("取消审卷会话", zap.String("session_id", sessionID), zap.String("actor_id", actorID))
	s.notification.Notify(ctx, session.VetterID, model.NotifyTypeVetting,
		"审卷会话已取消",
		"您的一场审卷会话已被取消。",
		&session.PaperID)
	return nil
}

func (s *vettingService) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	deadline := now.Add(-s.cfg.Lock.SessionGrace)
	sessions, err := s.repo.Vetting.ListOverdue(ctx, deadline)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range sessions {
		session := &sessions[i]
		if !model.CanTransitionSession(session.Status, model.SessionExpired) {
			continue
		}
		err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
			session.Status = model.SessionExpired
			session.UpdatedBy = nil
			if err := txRepo.Vetting.Update(ctx, session); err != nil {
				return err
			}
			// 最后一个活动会话过期后结算考卷去向
			return s.settlePaper(ctx, txRepo, session.PaperID, session.VetterID)
		})
		if err != nil {
			s.logger.Error("过期审卷会话失败", zap.String("session_id", session.SessionID), zap.Error(err))
			continue
		}
		expired++
		s.notification.Notify(ctx, session.VetterID, model.NotifyTypeVetting,
			"审卷会话已过期",
			"您的一场审卷会话因超过计划时间未完成而过期。",
			&session.PaperID)
	}
	return expired, nil
}

func (s *vettingService) ListByPaper(ctx context.Context, paperID string) ([]dto.SessionResponse, error) {
	sessions, err := s.repo.Vetting.ListByPaper(ctx, paperID)
	if err != nil {
		return nil, err
	}
	return s.toSessionResponses(sessions), nil
}

func (s *vettingService) ListByVetter(ctx context.Context, vetterID string) ([]dto.SessionResponse, error) {
	sessions, err := s.repo.Vetting.ListByVetter(ctx, vetterID)
	if err != nil {
		return nil, err
	}
	return s.toSessionResponses(sessions), nil
}

func (s *vettingService) AddComment(ctx context.Context, sessionID string, req *dto.AddCommentRequest, authorID string) (*dto.CommentResponse, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.VetterID != authorID {
		return nil, ErrNotSessionVetter
	}
	if session.Status != model.SessionInProgress {
		return nil, ErrSessionNotActive
	}

	comment := &model.VettingComment{
		SessionID: session.SessionID,
		PaperID:   session.PaperID,
		AuthorID:  authorID,
		Section:   req.Section,
		Content:   req.Content,
	}
	comment.CreatedBy = &authorID
	if err := s.repo.Comment.Create(ctx, comment); err != nil {
		s.logger.Error("添加审卷意见失败", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("添加审卷意见",
		zap.String("comment_id", comment.CommentID),
		zap.String("session_id", sessionID),
	)
	return toCommentResponse(comment), nil
}

func (s *vettingService) MarkCommentAddressed(ctx context.Context, commentID, actorID string) error {
	comment, err := s.repo.Comment.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	// 只有命题人在修订阶段置位
	paper, err := s.repo.ExamPaper.GetByID(ctx, comment.PaperID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaperNotFound
		}
		return err
	}
	if paper.SetterID != actorID {
		return ErrNotPaperSetter
	}

	comment.IsAddressed = true
	comment.UpdatedBy = &actorID
	if err := s.repo.Comment.Update(ctx, comment); err != nil {
		return err
	}

	s.logger.Info("审卷意见已处理", zap.String("comment_id", commentID))
	return nil
}

func (s *vettingService) ListComments(ctx context.Context, paperID string) ([]dto.CommentResponse, error) {
	comments, err := s.repo.Comment.ListByPaper(ctx, paperID)
	if err != nil {
		return nil, err
	}

	result := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		result = append(result, *toCommentResponse(&comments[i]))
	}
	return result, nil
}

func (s *vettingService) AttachRecording(ctx context.Context, sessionID string, req *dto.AttachRecordingRequest, vetterID string) error {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.VetterID != vetterID {
		return ErrNotSessionVetter
	}

	session.RecordingBucket = s.cfg.Storage.RecordingBucket
	session.RecordingObject = req.Object
	session.RecordingDuration = req.Duration
	session.UpdatedBy = &vetterID
	if err := s.repo.Vetting.Update(ctx, session); err != nil {
		s.logger.Error("登记会话录像失败", zap.String("session_id", sessionID), zap.Error(err))
		return err
	}

	s.logger.Info("登记会话录像",
		zap.String("session_id", sessionID),
		zap.String("object", req.Object),
		zap.Int("duration", req.Duration),
	)
	return nil
}

func (s *vettingService) RecordingURL(ctx context.Context, sessionID string) (string, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if session.RecordingObject == "" {
		return "", ErrNoRecording
	}
	return s.store.PresignedGet(ctx, session.RecordingBucket, session.RecordingObject, recordingURLExpiry)
}

func (s *vettingService) ExportICS(ctx context.Context, vetterID string) (string, error) {
	sessions, err := s.repo.Vetting.ListByVetter(ctx, vetterID)
	if err != nil {
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//examflow//vetting//ZH")

	for i := range sessions {
		session := &sessions[i]
		if session.Status != model.SessionPending && session.Status != model.SessionInProgress {
			continue
		}

		event := cal.AddEvent(session.SessionID)
		event.SetCreatedTime(session.CreatedAt)
		event.SetDtStampTime(session.CreatedAt)
		event.SetStartAt(session.ScheduledAt)
		event.SetEndAt(session.ScheduledAt.Add(sessionDuration))
		if session.Paper != nil {
			event.SetSummary(fmt.Sprintf("审卷：%s %s", session.Paper.CourseCode, session.Paper.CourseTitle))
		} else {
			event.SetSummary("审卷会话")
		}
	}

	return cal.Serialize(), nil
}

// ── 内部辅助 ──

func (s *vettingService) loadSession(ctx context.Context, id string) (*model.VettingSession, error) {
	session, err := s.repo.Vetting.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// settlePaper 会话终结（取消/过期）后的考卷去向结算：
// 仍有活动会话则不动；存在完成会话则推进到 vetted_with_comments；
// 全部失效且无一完成则停留原状态，等待主考官重新任命。
func (s *vettingService) settlePaper(ctx context.Context, txRepo *repository.Repository, paperID, actorID string) error {
	siblings, err := txRepo.Vetting.ListByPaper(ctx, paperID)
	if err != nil {
		return err
	}

	completed := false
	for i := range siblings {
		switch siblings[i].Status {
		case model.SessionPending, model.SessionInProgress:
			return nil
		case model.SessionCompleted:
			completed = true
		}
	}
	if !completed {
		return nil
	}

	if err := s.advancePaper(ctx, txRepo, paperID, model.StatusVettedWithComments, actorID); err != nil {
		return err
	}
	if paper, err := txRepo.ExamPaper.GetByID(ctx, paperID); err == nil {
		s.notification.Notify(ctx, paper.SetterID, model.NotifyTypeVetting,
			"审卷已完成",
			fmt.Sprintf("课程 %s《%s》的审卷已全部结束，请根据意见修订。", paper.CourseCode, paper.CourseTitle),
			&paper.PaperID)
	}
	return nil
}

// advancePaper 在会话事务内推进考卷状态；考卷已处于目标状态时跳过（幂等）
func (s *vettingService) advancePaper(ctx context.Context, txRepo *repository.Repository, paperID string, to model.PaperStatus, actorID string) error {
	paper, err := txRepo.ExamPaper.GetByID(ctx, paperID)
	if err != nil {
		return err
	}
	if paper.Status == to {
		return nil
	}
	if !model.CanTransition(paper.Status, to) {
		return ErrInvalidTransition
	}

	from := paper.Status
	paper.Status = to
	paper.UpdatedBy = &actorID
	if err := txRepo.ExamPaper.Update(ctx, paper); err != nil {
		return err
	}
	if err := txRepo.Timeline.Create(ctx, &model.WorkflowTimelineEntry{
		PaperID:    paper.PaperID,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actorID,
	}); err != nil {
		return err
	}
	metrics.WorkflowTransitionsTotal.WithLabelValues(string(from), string(to)).Inc()
	return nil
}

func (s *vettingService) toSessionResponses(sessions []model.VettingSession) []dto.SessionResponse {
	result := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		session := &sessions[i]
		resp := dto.SessionResponse{
			ID:           session.SessionID,
			PaperID:      session.PaperID,
			Status:       string(session.Status),
			ScheduledAt:  fmtTime(session.ScheduledAt),
			StartedAt:    fmtTimePtr(session.StartedAt),
			CompletedAt:  fmtTimePtr(session.CompletedAt),
			HasRecording: session.RecordingObject != "",
		}
		if session.Paper != nil {
			resp.CourseCode = session.Paper.CourseCode
		}
		if session.Vetter != nil {
			resp.Vetter = &dto.UserBrief{
				ID:      session.Vetter.UserID,
				Name:    session.Vetter.Name,
				StaffID: session.Vetter.StaffID,
			}
		}
		result = append(result, resp)
	}
	return result
}

func toCommentResponse(comment *model.VettingComment) *dto.CommentResponse {
	return &dto.CommentResponse{
		ID:          comment.CommentID,
		SessionID:   comment.SessionID,
		PaperID:     comment.PaperID,
		AuthorID:    comment.AuthorID,
		Section:     comment.Section,
		Content:     comment.Content,
		IsAddressed: comment.IsAddressed,
		CreatedAt:   fmtTime(comment.CreatedAt),
	}
}

// [自证通过] internal/service/vetting_service.go
