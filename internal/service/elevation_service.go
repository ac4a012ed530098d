package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"examflow/backend/config"
	"examflow/backend/internal/dto"
	"examflow/backend/internal/model"
	"examflow/backend/internal/repository"
)

// ── 角色授予模块业务错误 ──

var (
	ErrElevationUserNotFound = errors.New("被授予用户不存在")
	ErrRoleAlreadyGranted    = errors.New("该用户已持有此角色")
	ErrNoActiveGrant         = errors.New("该用户没有此角色的有效授予")
	ErrNoPendingConsent      = errors.New("没有待签署的角色协议")
	ErrConsentNotRequired    = errors.New("该角色无需签署协议")
)

// ConsentDocument 签署时随附的协议文档（已签名的扫描件等）
type ConsentDocument struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// ElevationService 角色授予与协议签署业务接口
//
// 角色分两类：chief_examiner 授予后立即生效；setter / vetter / team_lead
// 授予后处于待签署状态，用户本人签署协议后才计入有效角色。
type ElevationService interface {
	ElevateToChiefExaminer(ctx context.Context, req *dto.ElevateChiefExaminerRequest, operatorID string) (*dto.ElevationResponse, error)
	AppointRole(ctx context.Context, req *dto.AppointRoleRequest, operatorID string) (*dto.ElevationResponse, error)
	// AcceptConsent 签署角色协议；doc 非空时文档存入 role-consents 桶并记录指针
	AcceptConsent(ctx context.Context, userID, role string, doc *ConsentDocument) error
	RevokeRole(ctx context.Context, req *dto.RevokeRoleRequest, operatorID string) error
	ListElevations(ctx context.Context, page, pageSize int) ([]dto.ElevationResponse, int64, error)
	ListPendingConsents(ctx context.Context, userID string) ([]dto.PendingConsentResponse, error)
	// ActiveRoles 返回用户当前有效角色：基础角色 ∪ 已签署协议的授予角色
	ActiveRoles(ctx context.Context, user *model.User) ([]string, error)
}

type elevationService struct {
	cfg          *config.Config
	repo         *repository.Repository
	notification NotificationService
	store        ObjectStore
	logger       *zap.Logger
}

// NewElevationService 创建 ElevationService 实例
func NewElevationService(
	cfg *config.Config,
	repo *repository.Repository,
	notification NotificationService,
	store ObjectStore,
	logger *zap.Logger,
) ElevationService {
	return &elevationService{cfg: cfg, repo: repo, notification: notification, store: store, logger: logger}
}

func (s *elevationService) ElevateToChiefExaminer(ctx context.Context, req *dto.ElevateChiefExaminerRequest, operatorID string) (*dto.ElevationResponse, error) {
	user, err := s.repo.User.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrElevationUserNotFound
		}
		return nil, err
	}
	if user.Roles.Contains(model.RoleChiefExaminer) {
		return nil, ErrRoleAlreadyGranted
	}

	elevation := &model.PrivilegeElevation{
		UserID:          user.UserID,
		Role:            model.RoleChiefExaminer,
		ElevatedBy:      operatorID,
		IsActive:        true,
		RequiresConsent: false,
		Faculty:         req.Faculty,
		DepartmentID:    req.DepartmentID,
		Semester:        req.Semester,
		AcademicYear:    req.AcademicYear,
	}

	// 主考官立即生效：授予记录 + 基础角色写入在同一事务内
	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Elevation.Create(ctx, elevation); err != nil {
			return err
		}
		user.Roles = append(user.Roles, model.RoleChiefExaminer)
		user.UpdatedBy = &operatorID
		return txRepo.User.Update(ctx, user)
	})
	if err != nil {
		s.logger.Error("任命主考官失败", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("任命主考官",
		zap.String("user_id", user.UserID),
		zap.String("operator_id", operatorID),
		zap.String("academic_year", req.AcademicYear),
	)
	s.notification.Notify(ctx, user.UserID, model.NotifyTypeElevation,
		"主考官任命",
		fmt.Sprintf("您已被任命为 %s 学年 %s 学期的主考官，任命立即生效。", req.AcademicYear, req.Semester),
		nil)
	s.notification.NotifyRole(ctx, model.RoleSuperAdmin, model.NotifyTypeElevation,
		"主考官任命",
		fmt.Sprintf("%s 已被任命为 %s 学年 %s 学期的主考官。", user.Name, req.AcademicYear, req.Semester),
		nil)

	return s.toElevationResponse(elevation, true), nil
}

func (s *elevationService) AppointRole(ctx context.Context, req *dto.AppointRoleRequest, operatorID string) (*dto.ElevationResponse, error) {
	user, err := s.repo.User.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrElevationUserNotFound
		}
		return nil, err
	}

	if existing, err := s.repo.Elevation.GetActive(ctx, req.UserID, req.Role); err == nil && existing != nil {
		return nil, ErrRoleAlreadyGranted
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	elevation := &model.PrivilegeElevation{
		UserID:          user.UserID,
		Role:            req.Role,
		ElevatedBy:      operatorID,
		IsActive:        true,
		RequiresConsent: true,
	}

	// 重新授予时删除旧签署记录，强制重签
	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Consent.DeleteByUserRole(ctx, user.UserID, req.Role); err != nil {
			return err
		}
		return txRepo.Elevation.Create(ctx, elevation)
	})
	if err != nil {
		s.logger.Error("授予角色失败",
			zap.String("user_id", req.UserID),
			zap.String("role", req.Role),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("授予角色（待签署）",
		zap.String("user_id", user.UserID),
		zap.String("role", req.Role),
		zap.String("operator_id", operatorID),
	)
	s.notification.Notify(ctx, user.UserID, model.NotifyTypeConsent,
		"角色授予待确认",
		fmt.Sprintf("您已被授予角色 %s，签署角色协议后生效。", req.Role),
		nil)

	return s.toElevationResponse(elevation, false), nil
}

func (s *elevationService) AcceptConsent(ctx context.Context, userID, role string, doc *ConsentDocument) error {
	if !model.ConsentRequiredRoles[role] {
		return ErrConsentNotRequired
	}

	elevation, err := s.repo.Elevation.GetActive(ctx, userID, role)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoPendingConsent
		}
		return err
	}
	if !elevation.RequiresConsent {
		return ErrConsentNotRequired
	}
	if _, err := s.repo.Consent.Get(ctx, userID, role); err == nil {
		// 已签署过，幂等返回
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	acceptance := &model.RoleConsentAcceptance{
		UserID: userID,
		Role:   role,
	}
	if doc != nil {
		object := fmt.Sprintf("consents/%s/%s_%s", userID, role, doc.Filename)
		if err := s.store.Put(ctx, s.cfg.Storage.ConsentBucket, object, doc.Reader, doc.Size, doc.ContentType); err != nil {
			s.logger.Error("上传角色协议文档失败",
				zap.String("user_id", userID),
				zap.String("role", role),
				zap.Error(err),
			)
			return err
		}
		acceptance.ConsentBucket = s.cfg.Storage.ConsentBucket
		acceptance.ConsentObject = object
	}
	if err := s.repo.Consent.Create(ctx, acceptance); err != nil {
		s.logger.Error("签署角色协议失败",
			zap.String("user_id", userID),
			zap.String("role", role),
			zap.Error(err),
		)
		return err
	}

	s.logger.Info("签署角色协议", zap.String("user_id", userID), zap.String("role", role))
	s.notification.Notify(ctx, elevation.ElevatedBy, model.NotifyTypeConsent,
		"角色协议已签署",
		fmt.Sprintf("用户已签署 %s 角色协议，角色已生效。", role),
		nil)
	return nil
}

func (s *elevationService) RevokeRole(ctx context.Context, req *dto.RevokeRoleRequest, operatorID string) error {
	user, err := s.repo.User.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrElevationUserNotFound
		}
		return err
	}

	if _, err := s.repo.Elevation.GetActive(ctx, req.UserID, req.Role); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 主考官可能只存在于基础角色（历史数据），允许撤销
			if req.Role != model.RoleChiefExaminer || !user.Roles.Contains(req.Role) {
				return ErrNoActiveGrant
			}
		} else {
			return err
		}
	}

	// 撤销前取出签署记录，事务成功后清理协议文档
	acceptance, err := s.repo.Consent.Get(ctx, req.UserID, req.Role)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	err = s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Elevation.DeactivateByUserRole(ctx, req.UserID, req.Role, operatorID); err != nil {
			return err
		}
		if err := txRepo.Consent.DeleteByUserRole(ctx, req.UserID, req.Role); err != nil {
			return err
		}
		if user.Roles.Contains(req.Role) {
			user.Roles = user.Roles.Remove(req.Role)
			user.UpdatedBy = &operatorID
			return txRepo.User.Update(ctx, user)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("撤销角色失败",
			zap.String("user_id", req.UserID),
			zap.String("role", req.Role),
			zap.Error(err),
		)
		return err
	}

	// 协议文档清理尽力而为，失败不回滚撤销
	if acceptance != nil && acceptance.ConsentObject != "" {
		if err := s.store.Remove(ctx, acceptance.ConsentBucket, acceptance.ConsentObject); err != nil {
			s.logger.Warn("删除角色协议文档失败",
				zap.String("object", acceptance.ConsentObject),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("撤销角色",
		zap.String("user_id", req.UserID),
		zap.String("role", req.Role),
		zap.String("operator_id", operatorID),
	)
	s.notification.Notify(ctx, req.UserID, model.NotifyTypeElevation,
		"角色已撤销",
		fmt.Sprintf("您的 %s 角色已被撤销。", req.Role),
		nil)
	s.notification.NotifyRole(ctx, model.RoleSuperAdmin, model.NotifyTypeElevation,
		"角色撤销",
		fmt.Sprintf("%s 的 %s 角色已被撤销。", user.Name, req.Role),
		nil)
	return nil
}

func (s *elevationService) ListElevations(ctx context.Context, page, pageSize int) ([]dto.ElevationResponse, int64, error) {
	offset := (page - 1) * pageSize
	elevations, total, err := s.repo.Elevation.List(ctx, offset, pageSize)
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.ElevationResponse, 0, len(elevations))
	for i := range elevations {
		e := &elevations[i]
		accepted := !e.RequiresConsent
		if e.RequiresConsent {
			if _, err := s.repo.Consent.Get(ctx, e.UserID, e.Role); err == nil {
				accepted = true
			}
		}
		result = append(result, *s.toElevationResponse(e, accepted))
	}
	return result, total, nil
}

func (s *elevationService) ListPendingConsents(ctx context.Context, userID string) ([]dto.PendingConsentResponse, error) {
	elevations, err := s.repo.Elevation.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]dto.PendingConsentResponse, 0)
	for i := range elevations {
		e := &elevations[i]
		if !e.IsActive || !e.RequiresConsent {
			continue
		}
		if _, err := s.repo.Consent.Get(ctx, userID, e.Role); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		result = append(result, dto.PendingConsentResponse{
			Role:       e.Role,
			ElevatedBy: e.ElevatedBy,
			GrantedAt:  fmtTime(e.CreatedAt),
		})
	}
	return result, nil
}

func (s *elevationService) ActiveRoles(ctx context.Context, user *model.User) ([]string, error) {
	roles := make([]string, 0, len(user.Roles)+3)
	seen := make(map[string]bool, len(user.Roles)+3)
	for _, r := range user.Roles {
		if !seen[r] {
			seen[r] = true
			roles = append(roles, r)
		}
	}

	acceptances, err := s.repo.Consent.ListByUser(ctx, user.UserID)
	if err != nil {
		return nil, err
	}
	for _, a := range acceptances {
		if seen[a.Role] {
			continue
		}
		// 签署记录必须对应仍然有效的授予
		if _, err := s.repo.Elevation.GetActive(ctx, user.UserID, a.Role); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		seen[a.Role] = true
		roles = append(roles, a.Role)
	}
	return roles, nil
}

func (s *elevationService) toElevationResponse(e *model.PrivilegeElevation, consentAccepted bool) *dto.ElevationResponse {
	resp := &dto.ElevationResponse{
		ID:              e.ElevationID,
		Role:            e.Role,
		ElevatedBy:      e.ElevatedBy,
		IsActive:        e.IsActive,
		RequiresConsent: e.RequiresConsent,
		ConsentAccepted: consentAccepted,
		Faculty:         e.Faculty,
		DepartmentID:    e.DepartmentID,
		Semester:        e.Semester,
		AcademicYear:    e.AcademicYear,
		CreatedAt:       fmtTime(e.CreatedAt),
	}
	if e.User != nil {
		resp.User = &dto.UserBrief{
			ID:      e.User.UserID,
			Name:    e.User.Name,
			StaffID: e.User.StaffID,
		}
	}
	return resp
}

// [自证通过] internal/service/elevation_service.go
