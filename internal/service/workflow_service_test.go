package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"examflow/backend/config"
	"examflow/backend/internal/dto"
	"examflow/backend/internal/model"
)

// ── 测试辅助 ──

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 168 * time.Hour,
		},
		Storage: config.StorageConfig{
			PaperBucket:     "exam-papers",
			RecordingBucket: "vetting-recordings",
			ConsentBucket:   "role-consents",
		},
		Lock: config.LockConfig{
			PasswordLength:     16,
			DefaultUnlockHours: 24,
			MaxUnlockHours:     72,
			SweepInterval:      time.Minute,
			SessionGrace:       48 * time.Hour,
		},
	}
}

func setupTestWorkflowService() (WorkflowService, *testRepos) {
	repos := newTestRepos()
	repo := repos.toRepository()
	logger := zap.NewNop()
	notify := NewNotificationService(repo, logger)
	svc := NewWorkflowService(testConfig(), repo, notify, repos.store, logger)
	return svc, repos
}

// seedWorkflowUsers 种子数据：命题人 / 组长 / 主考官 / 审卷人
func seedWorkflowUsers(repos *testRepos) {
	repos.user.users["setter-1"] = &model.User{
		UserID: "setter-1", Name: "王命题", StaffID: "T001",
		Roles: model.StringArray{model.RoleLecturer, model.RoleSetter}, DepartmentID: "dept-1",
	}
	repos.user.users["lead-1"] = &model.User{
		UserID: "lead-1", Name: "李组长", StaffID: "T002",
		Roles: model.StringArray{model.RoleLecturer, model.RoleTeamLead}, DepartmentID: "dept-1",
	}
	repos.user.users["chief-1"] = &model.User{
		UserID: "chief-1", Name: "张主考", StaffID: "T003",
		Roles: model.StringArray{model.RoleLecturer, model.RoleChiefExaminer}, DepartmentID: "dept-1",
	}
	repos.user.users["vetter-1"] = &model.User{
		UserID: "vetter-1", Name: "赵审卷", StaffID: "T004",
		Roles: model.StringArray{model.RoleLecturer, model.RoleVetter}, DepartmentID: "dept-1",
	}
}

// seedPaper 种子一张指定状态的考卷
func seedPaper(repos *testRepos, id string, status model.PaperStatus) *model.ExamPaper {
	paper := &model.ExamPaper{
		PaperID:       id,
		CourseCode:    "CSC2101",
		CourseTitle:   "数据结构与算法",
		DepartmentID:  "dept-1",
		Semester:      "Semester 1",
		AcademicYear:  "2025/2026",
		SetterID:      "setter-1",
		Status:        status,
		VersionNumber: 1,
	}
	paper.Version = 1
	repos.paper.papers[id] = paper
	return paper
}

// ── 创建考卷测试 ──

func TestCreatePaper_Success(t *testing.T) {
	svc, _ := setupTestWorkflowService()

	result, err := svc.CreatePaper(context.Background(), &dto.CreatePaperRequest{
		CourseCode:   "CSC2101",
		CourseTitle:  "数据结构与算法",
		DepartmentID: "dept-1",
		Semester:     "Semester 1",
		AcademicYear: "2025/2026",
	}, "setter-1")

	if err != nil {
		t.Fatalf("CreatePaper 应成功: %v", err)
	}
	if result.Status != string(model.StatusDraft) {
		t.Errorf("期望 status=draft，实际=%s", result.Status)
	}
	if result.VersionNumber != 1 {
		t.Errorf("期望 version_number=1，实际=%d", result.VersionNumber)
	}
}

func TestCreatePaper_InvalidDueTime(t *testing.T) {
	svc, _ := setupTestWorkflowService()

	bad := "2026-13-45 25:00"
	_, err := svc.CreatePaper(context.Background(), &dto.CreatePaperRequest{
		CourseCode:    "CSC2101",
		CourseTitle:   "数据结构与算法",
		DepartmentID:  "dept-1",
		Semester:      "Semester 1",
		AcademicYear:  "2025/2026",
		PrintingDueAt: &bad,
	}, "setter-1")

	if !errors.Is(err, ErrInvalidDueTime) {
		t.Errorf("期望 ErrInvalidDueTime，实际: %v", err)
	}
}

// ── 状态流转测试 ──

func TestSubmitToRepository_Success(t *testing.T) {
	svc, repos := setupTestWorkflowService()
	seedWorkflowUsers(repos)
	seedPaper(repos, "paper-1", model.StatusDraft)

	err := svc.SubmitToRepository(context.Background(), "paper-1",
		&dto.SubmitPaperRequest{FileObject: "papers/csc2101-v1.pdf", Note: "初稿"}, "setter-1")
	if err != nil {
		t.Fatalf("SubmitToRepository 应成功: %v", err)
	}

	paper := repos.paper.papers["paper-1"]
	if paper.Status != model.StatusSubmittedToRepository {
		t.Errorf("期望 status=submitted_to_repository，实际=%s", paper.Status)
	}
	if paper.FileObject != "papers/csc2101-v1.pdf" {
		t.Errorf("文件指针未更新，实际=%s", paper.FileObject)
	}
	if len(repos.version.versions) != 1 {
		t.Errorf("期望插入 1 条版本记录，实际=%d", len(repos.version.versions))
	}
	if len(repos.timeline.entries) != 1 {
		t.Errorf("期望追加 1 条时间线，实际=%d", len(repos.timeline.entries))
	}
	// 组长应收到通知
	if len(repos.notification.notifications) == 0 {
		t.Error("应通知组长")
	}
}

func TestSubmitToRepository_NotSetter(t *testing.T) {
	svc, repos := setupTestWorkflowService()
	seedWorkflowUsers(repos)
	seedPaper(repos, "paper-1", model.StatusDraft)

	err := svc.SubmitToRepository(context.Background(), "paper-1",
		&dto.SubmitPaperRequest{FileObject: "papers/x.pdf"}, "lead-1")
	if !errors.Is(err, ErrNotPaperSetter) {
		t.Errorf("期望 ErrNotPaperSetter，实际: %v", err)
	}
}

func TestSubmitToRepository_InvalidTransition(t *testing.T) {
	svc, repos := setupTestWorkflowService()
	seedWorkflowUsers(repos)
	seedPaper(repos, "paper-1", model.StatusSubmittedToRepository)

	err := svc.SubmitToRepository(context.Background(), "paper-1",
		&dto.SubmitPaperRequest{FileObject: "papers/x.pdf"}, "setter-1")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("期望 ErrInvalidTransition，实际: %v", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := setupTestWorkflowService()

	_, err := svc.Get(context.Background(), "nonexistent")
	if !errors.Is(err, ErrPaperNotFound) {
		t.Errorf("期望 ErrPaperNotFound，实际: %v", err)
	}
}

// ── 考卷文件测试 ──

func TestUploadPaperFile_Success(t *testing.T) {
	svc, repos := setupTestWorkflowService()
	seedWorkflowUsers(repos)
	seedPaper(repos, "paper-1", model.StatusDraft)

	object, err := svc.UploadPaperFile(context.Background(), "paper-1",
		"csc2101-final.pdf", strings.NewReader("%PDF-1.7 考卷内容"), 24, "application/pdf", "setter-1")
	if err != nil {
		t.Fatalf("UploadPaperFile 应成功: %v", err)
	}
	if !strings.HasPrefix(object, "papers/paper-1/v1/") {
		t.Errorf("对象名应按考卷与版本号分目录，实际=%s", object)
	}
	if !strings.HasSuffix(object, "_csc2101-final.pdf") {
		t.Errorf("对象名应保留原文件名，实际=%s", object)
	}
	if _, ok := repos.store.objects["exam-papers/"+object]; !ok {
		t.Error("文件应写入考卷桶")
	}
}

func TestUploadPaperFile_PaperNotFound(t *testing.T) {
	svc, _ := setupTestWorkflowService()

	_, err := svc.UploadPaperFile(context.Background(), "nonexistent",
		"x.pdf", strings.NewReader("x"), 1, "application/pdf", "setter-1")
	if !errors.Is(err, ErrPaperNotFound) {
		t.Errorf("期望 ErrPaperNotFound，实际: %v", err)
	}
}

func TestPaperFileURL_Success(t *testing.T) {
	svc, repos := setupTestWorkflowService()
	seedWorkflowUsers(repos)
	paper := seedPaper(repos, "paper-1", model.StatusSubmittedToRepository)
	paper.FileBucket = "exam-papers"
	paper.FileObject = "papers/paper-1/v1/abc123_csc2101.pdf"

	url, err := svc.PaperFileURL(context.Background(), "paper-1")
	if err != nil {
		t.Fatalf("PaperFileURL 应成功: %v", err)
	}
	if !strings.Contains(url, paper.FileObject) {
		t.Errorf("下载链接应指向考卷对象，实际=%s", url)
	}
}

func TestPaperFileURL_NoFile(t *testing.T) {
	svc, repos := setupTestWorkflowService()
	seedWorkflowUsers(repos)
	seedPaper(repos, "paper-1", model.StatusDraft)

	_, err := svc.PaperFileURL(context.Background(), "paper-1")
	if !errors.Is(err, ErrNoPaperFile) {
		t.Errorf("期望 ErrNoPaperFile，实际: %v", err)
	}
}

func TestPaperFileURL_LockedPaper(t *testing.T) {
	svc, repos := setupTestWorkflowService()
	seedWorkflowUsers(repos)
	paper := seedPaper(repos, "paper-1", model.StatusApprovedForPrinting)
	paper.FileBucket = "exam-papers"
	paper.FileObject = "papers/paper-1/v2/def456_csc2101.pdf"
	paper.IsLocked = true

	_, err := svc.PaperFileURL(context.Background(), "paper-1")
	if !errors.Is(err, ErrPaperLocked) {
		t.Errorf("锁定中的考卷不应签发下载链接，期望 ErrPaperLocked，实际: %v", err)
	}
}

func TestPaperFileURL_UnlockedWindow(t *testing.T) {
	svc, repos := setupTestWorkflowService()
	seedWorkflowUsers(repos)
	paper := seedPaper(repos, "paper-1", model.StatusApprovedForPrinting)
	paper.FileBucket = "exam-papers"
	paper.FileObject = "papers/paper-1/v2/def456_csc2101.pdf"
	paper.IsLocked = false

	url, err := svc.PaperFileURL(context.Background(), "paper-1")
	if err != nil {
		t.Fatalf("解锁窗口内应可取件: %v", err)
	}
	if !strings.Contains(url, paper.FileObject) {
		t.Errorf("下载链接应指向考卷对象，实际=%s", url)
	}
}

// ── 任命审卷人测试 ──

func TestAppointVetters_Success(t *testing.T) {
	svc, repos := setupTestWorkflowService()
	seedWorkflowUsers(repos)
	seedPaper(repos, "paper-1", model.StatusSentToChiefExaminer)

	scheduledAt := time.Now().Add(48 * time.Hour).Format(time.RFC3339)
	err := svc.AppointVetters(context.Background(), "paper-1", &dto.AppointVettersRequest{
		VetterIDs:   []string{"vetter-1"},
		ScheduledAt: scheduledAt,
	}, "chief-1")
	if err != nil {
		t.Fatalf("AppointVetters 应成功: %v", err)
	}

	paper := repos.paper.papers["paper-1"]
	if paper.Status != model.StatusAppointedForVetting {
		t.Errorf("期望 status=appointed_for_vetting，实际=%s", paper.Status)
	}
	if len(repos.session.sessions) != 1 {
		t.Fatalf("期望创建 1 个审卷会话，实际=%d", len(repos.session.sessions))
	}
	for _, s := range repos.session.sessions {
		if s.Status != model.SessionPending {
			t.Errorf("期望会话状态 pending，实际=%s", s.Status)
		}
		if s.VetterID != "vetter-1" {
			t.Errorf("期望 vetter_id=vetter-1，实际=%s", s.VetterID)
		}
	}
}

func TestAppointVetters_PastTime(t *testing.T) {
	svc, repos := setupTestWorkflowService()
	seedWorkflowUsers(repos)
	seedPaper(repos, "paper-1", model.StatusSentToChiefExaminer)

	scheduledAt := time.Now().Add(-time.Hour).Format(time.RFC3339)
	err := svc.AppointVetters(context.Background(), "paper-1", &dto.AppointVettersRequest{
		VetterIDs:   []string{"vetter-1"},
		ScheduledAt: scheduledAt,
	}, "chief-1")
	if !errors.Is(err, ErrInvalidScheduleTime) {
		t.Errorf("期望 ErrInvalidScheduleTime，实际: %v", err)
	}
}

func TestAppointVetters_VetterWithoutRole(t *testing.T) {
	svc, repos := setupTestWorkflowService()
	seedWorkflowUsers(repos)
	seedPaper(repos, "paper-1", model.StatusSentToChiefExaminer)

	scheduledAt := time.Now().Add(48 * time.Hour).Format(time.RFC3339)
	err := svc.AppointVetters(context.Background(), "paper-1", &dto.AppointVettersRequest{
		VetterIDs:   []string{"lead-1"}, // 组长没有 vetter 角色
		ScheduledAt: scheduledAt,
	}, "chief-1")
	if !errors.Is(err, ErrVetterInvalid) {
		t.Errorf("期望 ErrVetterInvalid，实际: %v", err)
	}
}

func TestAppointVetters_VetterViaConsent(t *testing.T) {
	svc, repos := setupTestWorkflowService()
	seedWorkflowUsers(repos)
	seedPaper(repos, "paper-1", model.StatusSentToChiefExaminer)

	// lead-1 基础角色中没有 vetter，但已签署 vetter 角色协议
	repos.consent.acceptances = append(repos.consent.acceptances, &model.RoleConsentAcceptance{
		AcceptanceID: "consent-1", UserID: "lead-1", Role: model.RoleVetter,
	})

	scheduledAt := time.Now().Add(48 * time.Hour).Format(time.RFC3339)
	err := svc.AppointVetters(context.Background(), "paper-1", &dto.AppointVettersRequest{
		VetterIDs:   []string{"lead-1"},
		ScheduledAt: scheduledAt,
	}, "chief-1")
	if err != nil {
		t.Fatalf("已签署协议的授予角色应可被任命: %v", err)
	}
}

func TestAppointVetters_ReappointAfterAllExpired(t *testing.T) {
	svc, repos := setupTestWorkflowService()
	seedWorkflowUsers(repos)
	seedPaper(repos, "paper-1", model.StatusVettingInProgress)
	seedSession(repos, "sess-old", "paper-1", "vetter-1", model.SessionExpired)

	scheduledAt := time.Now().Add(48 * time.Hour).Format(time.RFC3339)
	err := svc.AppointVetters(context.Background(), "paper-1", &dto.AppointVettersRequest{
		VetterIDs:   []string{"vetter-1"},
		ScheduledAt: scheduledAt,
	}, "chief-1")
	if err != nil {
		t.Fatalf("全部会话失效后应可重新任命: %v", err)
	}

	if repos.paper.papers["paper-1"].Status != model.StatusAppointedForVetting {
		t.Errorf("重新任命后期望 status=appointed_for_vetting，实际=%s", repos.paper.papers["paper-1"].Status)
	}
	pending := 0
	for _, s := range repos.session.sessions {
		if s.Status == model.SessionPending {
			pending++
		}
	}
	if pending != 1 {
		t.Errorf("期望新建 1 场 pending 会话，实际=%d", pending)
	}
}

func TestAppointVetters_RejectsWhileSessionActive(t *testing.T) {
	svc, repos := setupTestWorkflowService()
	seedWorkflowUsers(repos)
	seedPaper(repos, "paper-1", model.StatusVettingInProgress)
	seedSession(repos, "sess-1", "paper-1", "vetter-1", model.SessionInProgress)

	scheduledAt := time.Now().Add(48 * time.Hour).Format(time.RFC3339)
	err := svc.AppointVetters(context.Background(), "paper-1", &dto.AppointVettersRequest{
		VetterIDs:   []string{"vetter-1"},
		ScheduledAt: scheduledAt,
	}, "chief-1")
	if !errors.Is(err, ErrVettingUnsettled) {
		t.Errorf("仍有活动会话时期望 ErrVettingUnsettled，实际: %v", err)
	}
}

func TestAppointVetters_RejectsAfterCompletedSession(t *testing.T) {
	svc, repos := setupTestWorkflowService()
	seedWorkflowUsers(repos)
	seedPaper(repos, "paper-1", model.StatusVettingInProgress)
	seedSession(repos, "sess-1", "paper-1", "vetter-1", model.SessionCompleted)
	seedSession(repos, "sess-2", "paper-1", "vetter-1", model.SessionExpired)

	scheduledAt := time.Now().Add(48 * time.Hour).Format(time.RFC3339)
	err := svc.AppointVetters(context.Background(), "paper-1", &dto.AppointVettersRequest{
		VetterIDs:   []string{"vetter-1"},
		ScheduledAt: scheduledAt,
	}, "chief-1")
	if !errors.Is(err, ErrVettingUnsettled) {
		t.Errorf("已有完成会话的考卷不应重新任命，期望 ErrVettingUnsettled，实际: %v", err)
	}
}

// ── 修订与重新提交测试 ──

func TestSubmitRevisedExam_UnaddressedComments(t *testing.T) {
	svc, repos := setupTestWorkflowService()
	seedWorkflowUsers(repos)
	seedPaper(repos, "paper-1", model.StatusRevisionInProgress)

	repos.comment.comments["cmt-1"] = &model.VettingComment{
		CommentID: "cmt-1", SessionID: "sess-1", PaperID: "paper-1",
		AuthorID: "vetter-1", Content: "第 3 题表述不清", IsAddressed: false,
	}

	err := svc.SubmitRevisedExam(context.Background(), "paper-1",
		&dto.SubmitPaperRequest{FileObject: "papers/csc2101-v2.pdf"}, "setter-1")
	if !errors.Is(err, ErrCommentsUnaddressed) {
		t.Errorf("期望 ErrCommentsUnaddressed，实际: %v", err)
	}
}

func TestSubmitRevisedExam_Success(t *testing.T) {
	svc, repos := setupTestWorkflowService()
	seedWorkflowUsers(repos)
	seedPaper(repos, "paper-1", model.StatusRevisionInProgress)

	repos.comment.comments["cmt-1"] = &model.VettingComment{
		CommentID: "cmt-1", SessionID: "sess-1", PaperID: "paper-1",
		AuthorID: "vetter-1", Content: "第 3 题表述不清", IsAddressed: true,
	}

	err := svc.SubmitRevisedExam(context.Background(), "paper-1",
		&dto.SubmitPaperRequest{FileObject: "papers/csc2101-v2.pdf", Note: "已按意见修订"}, "setter-1")
	if err != nil {
		t.Fatalf("SubmitRevisedExam 应成功: %v", err)
	}
	if repos.paper.papers["paper-1"].Status != model.StatusResubmittedToChiefExaminer {
		t.Errorf("期望 status=resubmitted_to_chief_examiner，实际=%s", repos.paper.papers["paper-1"].Status)
	}
}

// ── 批准与驳回测试 ──

func TestApproveForPrinting_LocksPaper(t *testing.T) {
	svc, repos := setupTestWorkflowService()
	seedWorkflowUsers(repos)
	paper := seedPaper(repos, "paper-1", model.StatusResubmittedToChiefExaminer)
	// 残留的历史解锁状态应在批准时清除
	old := time.Now().Add(-time.Hour)
	paper.UnlockPasswordHash = "stale:hash"
	paper.UnlockedAt = &old

	due := time.Now().Add(14 * 24 * time.Hour).Format(time.RFC3339)
	err := svc.ApproveForPrinting(context.Background(), "paper-1",
		&dto.DecisionRequest{Note: "同意付印", PrintingDueAt: &due}, "chief-1")
	if err != nil {
		t.Fatalf("ApproveForPrinting 应成功: %v", err)
	}

	got := repos.paper.papers["paper-1"]
	if got.Status != model.StatusApprovedForPrinting {
		t.Errorf("期望 status=approved_for_printing，实际=%s", got.Status)
	}
	if !got.IsLocked {
		t.Error("批准后考卷应处于锁定状态")
	}
	if got.UnlockPasswordHash != "" {
		t.Error("批准后应清除历史密码哈希")
	}
	if got.UnlockedAt != nil {
		t.Error("批准后应清除历史解锁时间")
	}
	if got.PrintingDueAt == nil {
		t.Error("付印截止时间应已设置")
	}
}

func TestApproveForPrinting_InvalidTransition(t *testing.T) {
	svc, repos := setupTestWorkflowService()
	seedWorkflowUsers(repos)
	seedPaper(repos, "paper-1", model.StatusDraft)

	err := svc.ApproveForPrinting(context.Background(), "paper-1", &dto.DecisionRequest{}, "chief-1")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("期望 ErrInvalidTransition，实际: %v", err)
	}
}

func TestRejectAndRestart_ThenRestart(t *testing.T) {
	svc, repos := setupTestWorkflowService()
	seedWorkflowUsers(repos)
	seedPaper(repos, "paper-1", model.StatusResubmittedToChiefExaminer)

	err := svc.RejectAndRestart(context.Background(), "paper-1",
		&dto.DecisionRequest{Note: "题量不足"}, "chief-1")
	if err != nil {
		t.Fatalf("RejectAndRestart 应成功: %v", err)
	}
	if repos.paper.papers["paper-1"].Status != model.StatusRejectedRestartProcess {
		t.Errorf("期望 status=rejected_restart_process，实际=%s", repos.paper.papers["paper-1"].Status)
	}

	// 命题人重启流程：回到草稿，版本号递增
	err = svc.RestartAfterRejection(context.Background(), "paper-1", "setter-1")
	if err != nil {
		t.Fatalf("RestartAfterRejection 应成功: %v", err)
	}
	got := repos.paper.papers["paper-1"]
	if got.Status != model.StatusDraft {
		t.Errorf("期望 status=draft，实际=%s", got.Status)
	}
	if got.VersionNumber != 2 {
		t.Errorf("期望 version_number=2，实际=%d", got.VersionNumber)
	}
}

func TestRestartAfterRejection_NotSetter(t *testing.T) {
	svc, repos := setupTestWorkflowService()
	seedWorkflowUsers(repos)
	seedPaper(repos, "paper-1", model.StatusRejectedRestartProcess)

	err := svc.RestartAfterRejection(context.Background(), "paper-1", "chief-1")
	if !errors.Is(err, ErrNotPaperSetter) {
		t.Errorf("期望 ErrNotPaperSetter，实际: %v", err)
	}
}

// ── 全流程冒烟测试 ──

func TestWorkflow_FullHappyPath(t *testing.T) {
	svc, repos := setupTestWorkflowService()
	seedWorkflowUsers(repos)

	created, err := svc.CreatePaper(context.Background(), &dto.CreatePaperRequest{
		CourseCode:   "MTH1101",
		CourseTitle:  "高等数学",
		DepartmentID: "dept-1",
		Semester:     "Semester 1",
		AcademicYear: "2025/2026",
	}, "setter-1")
	if err != nil {
		t.Fatalf("CreatePaper 失败: %v", err)
	}
	paperID := created.ID

	if err := svc.SubmitToRepository(context.Background(), paperID,
		&dto.SubmitPaperRequest{FileObject: "papers/mth-v1.pdf"}, "setter-1"); err != nil {
		t.Fatalf("SubmitToRepository 失败: %v", err)
	}
	if err := svc.IntegrateExams(context.Background(), paperID,
		&dto.SubmitPaperRequest{FileObject: "papers/mth-integrated.pdf"}, "lead-1"); err != nil {
		t.Fatalf("IntegrateExams 失败: %v", err)
	}
	if err := svc.SendToChiefExaminer(context.Background(), paperID, "请审批", "lead-1"); err != nil {
		t.Fatalf("SendToChiefExaminer 失败: %v", err)
	}

	scheduledAt := time.Now().Add(24 * time.Hour).Format(time.RFC3339)
	if err := svc.AppointVetters(context.Background(), paperID, &dto.AppointVettersRequest{
		VetterIDs:   []string{"vetter-1"},
		ScheduledAt: scheduledAt,
	}, "chief-1"); err != nil {
		t.Fatalf("AppointVetters 失败: %v", err)
	}

	// 审卷阶段由 VettingService 推进，此处直接落位
	repos.paper.papers[paperID].Status = model.StatusVettedWithComments

	if err := svc.StartRevision(context.Background(), paperID, "setter-1"); err != nil {
		t.Fatalf("StartRevision 失败: %v", err)
	}
	if err := svc.SubmitRevisedExam(context.Background(), paperID,
		&dto.SubmitPaperRequest{FileObject: "papers/mth-v2.pdf"}, "setter-1"); err != nil {
		t.Fatalf("SubmitRevisedExam 失败: %v", err)
	}
	if err := svc.ApproveForPrinting(context.Background(), paperID, &dto.DecisionRequest{}, "chief-1"); err != nil {
		t.Fatalf("ApproveForPrinting 失败: %v", err)
	}

	got := repos.paper.papers[paperID]
	if got.Status != model.StatusApprovedForPrinting {
		t.Errorf("期望终态 approved_for_printing，实际=%s", got.Status)
	}
	if !got.IsLocked {
		t.Error("批准后考卷应锁定")
	}

	// 产出文件的步骤各插入一条版本记录
	versions, _ := repos.version.ListByPaper(context.Background(), paperID)
	if len(versions) != 3 {
		t.Errorf("期望 3 条版本记录，实际=%d", len(versions))
	}

	timeline, err := svc.GetTimeline(context.Background(), paperID)
	if err != nil {
		t.Fatalf("GetTimeline 失败: %v", err)
	}
	if len(timeline) != 7 {
		t.Errorf("期望 7 条时间线，实际=%d", len(timeline))
	}
}
