package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"examflow/backend/internal/dto"
	"examflow/backend/internal/model"
	"examflow/backend/pkg/password"
)

// ── 测试辅助 ──

func setupTestRepositoryService() (RepositoryService, *testRepos) {
	repos := newTestRepos()
	repo := repos.toRepository()
	logger := zap.NewNop()
	notify := NewNotificationService(repo, logger)
	svc := NewRepositoryService(testConfig(), repo, notify, logger)

	// 超级管理员（接收密码通知）
	repos.user.users["admin-1"] = &model.User{
		UserID: "admin-1", Name: "管理员", StaffID: "A001",
		Roles: model.StringArray{model.RoleSuperAdmin}, DepartmentID: "dept-1",
	}
	return svc, repos
}

// seedApprovedPaper 种子一张已批准付印（锁定）的考卷
func seedApprovedPaper(repos *testRepos, id string) *model.ExamPaper {
	paper := &model.ExamPaper{
		PaperID:       id,
		CourseCode:    "CSC2101",
		CourseTitle:   "数据结构与算法",
		DepartmentID:  "dept-1",
		Semester:      "Semester 1",
		AcademicYear:  "2025/2026",
		SetterID:      "setter-1",
		Status:        model.StatusApprovedForPrinting,
		VersionNumber: 1,
		IsLocked:      true,
	}
	paper.Version = 1
	repos.paper.papers[id] = paper
	return paper
}

func lastUnlockLog(repos *testRepos) *model.PaperUnlockLog {
	if len(repos.unlockLog.logs) == 0 {
		return nil
	}
	return &repos.unlockLog.logs[len(repos.unlockLog.logs)-1]
}

// ── 生成密码测试 ──

func TestGeneratePassword_Success(t *testing.T) {
	svc, repos := setupTestRepositoryService()
	seedApprovedPaper(repos, "paper-1")

	err := svc.GeneratePassword(context.Background(), "paper-1", false, "admin-1")
	if err != nil {
		t.Fatalf("GeneratePassword 应成功: %v", err)
	}

	paper := repos.paper.papers["paper-1"]
	if paper.UnlockPasswordHash == "" {
		t.Error("密码哈希应已写入")
	}
	if paper.PasswordGeneratedAt == nil {
		t.Error("PasswordGeneratedAt 应已设置")
	}

	log := lastUnlockLog(repos)
	if log == nil || log.Action != model.UnlockActionPasswordGenerated {
		t.Errorf("期望审计动作 password_generated，实际: %+v", log)
	}
	// 明文密码通过通知转交超级管理员
	if len(repos.notification.notifications) == 0 {
		t.Error("应通知超级管理员")
	}
}

func TestGeneratePassword_AlreadyGenerated(t *testing.T) {
	svc, repos := setupTestRepositoryService()
	paper := seedApprovedPaper(repos, "paper-1")
	paper.UnlockPasswordHash = "salt:existinghash"

	err := svc.GeneratePassword(context.Background(), "paper-1", false, "admin-1")
	if !errors.Is(err, ErrPasswordAlreadyGenerated) {
		t.Errorf("期望 ErrPasswordAlreadyGenerated，实际: %v", err)
	}
}

func TestGeneratePassword_ForceOverwrite(t *testing.T) {
	svc, repos := setupTestRepositoryService()
	paper := seedApprovedPaper(repos, "paper-1")
	paper.UnlockPasswordHash = "salt:existinghash"
	// 残留的解锁窗口
	now := time.Now()
	expires := now.Add(time.Hour)
	paper.IsLocked = false
	paper.UnlockedAt = &now
	paper.UnlockExpiresAt = &expires

	err := svc.GeneratePassword(context.Background(), "paper-1", true, "admin-1")
	if err != nil {
		t.Fatalf("force 覆盖生成应成功: %v", err)
	}

	got := repos.paper.papers["paper-1"]
	if got.UnlockPasswordHash == "salt:existinghash" {
		t.Error("密码哈希应已被覆盖")
	}
	if !got.IsLocked {
		t.Error("覆盖生成应关闭残留的解锁窗口")
	}
	if got.UnlockExpiresAt != nil {
		t.Error("覆盖生成应清除解锁到期时间")
	}
}

func TestGeneratePassword_NotApproved(t *testing.T) {
	svc, repos := setupTestRepositoryService()
	paper := seedApprovedPaper(repos, "paper-1")
	paper.Status = model.StatusDraft

	err := svc.GeneratePassword(context.Background(), "paper-1", false, "admin-1")
	if !errors.Is(err, ErrPaperNotApproved) {
		t.Errorf("期望 ErrPaperNotApproved，实际: %v", err)
	}
}

// ── 解锁测试 ──

func TestUnlock_Success_DefaultHours(t *testing.T) {
	svc, repos := setupTestRepositoryService()
	paper := seedApprovedPaper(repos, "paper-1")
	hash, _ := password.Hash("Secret#123")
	paper.UnlockPasswordHash = hash

	result, err := svc.Unlock(context.Background(), "paper-1",
		&dto.UnlockPaperRequest{Password: "Secret#123"}, "admin-1")
	if err != nil {
		t.Fatalf("Unlock 应成功: %v", err)
	}
	if result.PaperID != "paper-1" {
		t.Errorf("期望 paper_id=paper-1，实际=%s", result.PaperID)
	}

	got := repos.paper.papers["paper-1"]
	if got.IsLocked {
		t.Error("解锁后 IsLocked 应为 false")
	}
	if got.UnlockExpiresAt == nil {
		t.Fatal("UnlockExpiresAt 应已设置")
	}
	// 未指定时长时使用配置默认 24 小时
	remaining := time.Until(*got.UnlockExpiresAt)
	if remaining < 23*time.Hour || remaining > 25*time.Hour {
		t.Errorf("期望约 24 小时解锁窗口，实际=%v", remaining)
	}

	log := lastUnlockLog(repos)
	if log == nil || log.Action != model.UnlockActionUnlock {
		t.Errorf("期望审计动作 unlock，实际: %+v", log)
	}
}

func TestUnlock_HoursClamped(t *testing.T) {
	svc, repos := setupTestRepositoryService()
	paper := seedApprovedPaper(repos, "paper-1")
	hash, _ := password.Hash("Secret#123")
	paper.UnlockPasswordHash = hash

	_, err := svc.Unlock(context.Background(), "paper-1",
		&dto.UnlockPaperRequest{Password: "Secret#123", Hours: 1000}, "admin-1")
	if err != nil {
		t.Fatalf("Unlock 应成功: %v", err)
	}

	got := repos.paper.papers["paper-1"]
	remaining := time.Until(*got.UnlockExpiresAt)
	// 超出上限的时长截断为 72 小时
	if remaining > 73*time.Hour {
		t.Errorf("解锁时长应截断为 72 小时，实际=%v", remaining)
	}
}

func TestUnlock_WrongPassword(t *testing.T) {
	svc, repos := setupTestRepositoryService()
	paper := seedApprovedPaper(repos, "paper-1")
	hash, _ := password.Hash("Secret#123")
	paper.UnlockPasswordHash = hash

	_, err := svc.Unlock(context.Background(), "paper-1",
		&dto.UnlockPaperRequest{Password: "wrong"}, "admin-1")
	if !errors.Is(err, ErrWrongUnlockPassword) {
		t.Errorf("期望 ErrWrongUnlockPassword，实际: %v", err)
	}

	// 失败尝试记入审计，考卷保持锁定
	if repos.paper.papers["paper-1"].IsLocked != true {
		t.Error("密码错误时考卷应保持锁定")
	}
	log := lastUnlockLog(repos)
	if log == nil || log.Action != model.UnlockActionUnlockDenied {
		t.Errorf("期望审计动作 unlock_denied，实际: %+v", log)
	}
}

func TestUnlock_NoPassword(t *testing.T) {
	svc, repos := setupTestRepositoryService()
	seedApprovedPaper(repos, "paper-1")

	_, err := svc.Unlock(context.Background(), "paper-1",
		&dto.UnlockPaperRequest{Password: "whatever"}, "admin-1")
	if !errors.Is(err, ErrNoPasswordGenerated) {
		t.Errorf("期望 ErrNoPasswordGenerated，实际: %v", err)
	}
}

// ── 重新锁定测试 ──

func TestReLock_Success(t *testing.T) {
	svc, repos := setupTestRepositoryService()
	paper := seedApprovedPaper(repos, "paper-1")
	now := time.Now()
	expires := now.Add(time.Hour)
	paper.IsLocked = false
	paper.UnlockedAt = &now
	paper.UnlockExpiresAt = &expires

	if err := svc.ReLock(context.Background(), "paper-1", "admin-1"); err != nil {
		t.Fatalf("ReLock 应成功: %v", err)
	}

	got := repos.paper.papers["paper-1"]
	if !got.IsLocked {
		t.Error("重新锁定后 IsLocked 应为 true")
	}
	if got.UnlockExpiresAt != nil {
		t.Error("重新锁定应清除解锁到期时间")
	}
	log := lastUnlockLog(repos)
	if log == nil || log.Action != model.UnlockActionRelock {
		t.Errorf("期望审计动作 relock，实际: %+v", log)
	}
}

func TestReLock_Idempotent(t *testing.T) {
	svc, repos := setupTestRepositoryService()
	seedApprovedPaper(repos, "paper-1") // 已锁定

	if err := svc.ReLock(context.Background(), "paper-1", "admin-1"); err != nil {
		t.Fatalf("已锁定时 ReLock 应幂等返回: %v", err)
	}
	if len(repos.unlockLog.logs) != 0 {
		t.Error("幂等返回不应追加审计日志")
	}
}

// ── 定时巡检测试 ──

func TestSweepExpired(t *testing.T) {
	svc, repos := setupTestRepositoryService()

	// 一张窗口过期，一张仍在窗口内
	now := time.Now()
	expired := seedApprovedPaper(repos, "paper-expired")
	pastUnlock := now.Add(-25 * time.Hour)
	pastExpire := now.Add(-time.Hour)
	expired.IsLocked = false
	expired.UnlockedAt = &pastUnlock
	expired.UnlockExpiresAt = &pastExpire

	active := seedApprovedPaper(repos, "paper-active")
	futureExpire := now.Add(time.Hour)
	active.IsLocked = false
	active.UnlockedAt = &now
	active.UnlockExpiresAt = &futureExpire

	relocked, err := svc.SweepExpired(context.Background(), now)
	if err != nil {
		t.Fatalf("SweepExpired 应成功: %v", err)
	}
	if relocked != 1 {
		t.Errorf("期望重新锁定 1 张，实际=%d", relocked)
	}
	if !repos.paper.papers["paper-expired"].IsLocked {
		t.Error("过期考卷应已重新锁定")
	}
	if repos.paper.papers["paper-active"].IsLocked {
		t.Error("窗口内考卷不应被锁定")
	}

	log := lastUnlockLog(repos)
	if log == nil || log.Action != model.UnlockActionAutoRelock {
		t.Errorf("期望审计动作 auto_relock，实际: %+v", log)
	}
	if log != nil && log.ActorID != nil {
		t.Error("定时任务触发的审计 actor_id 应为空")
	}
}

func TestSweepDuePasswords(t *testing.T) {
	svc, repos := setupTestRepositoryService()

	now := time.Now()
	due := seedApprovedPaper(repos, "paper-due")
	pastDue := now.Add(-time.Hour)
	due.PrintingDueAt = &pastDue

	notDue := seedApprovedPaper(repos, "paper-not-due")
	futureDue := now.Add(24 * time.Hour)
	notDue.PrintingDueAt = &futureDue

	generated, err := svc.SweepDuePasswords(context.Background(), now)
	if err != nil {
		t.Fatalf("SweepDuePasswords 应成功: %v", err)
	}
	if generated != 1 {
		t.Errorf("期望生成 1 个密码，实际=%d", generated)
	}
	if repos.paper.papers["paper-due"].UnlockPasswordHash == "" {
		t.Error("付印截止已到的考卷应已生成密码")
	}
	if repos.paper.papers["paper-not-due"].UnlockPasswordHash != "" {
		t.Error("未到截止的考卷不应生成密码")
	}
}

func TestSweepDuePasswords_SkipAlreadyGenerated(t *testing.T) {
	svc, repos := setupTestRepositoryService()

	now := time.Now()
	paper := seedApprovedPaper(repos, "paper-1")
	pastDue := now.Add(-time.Hour)
	paper.PrintingDueAt = &pastDue
	paper.UnlockPasswordHash = "salt:alreadyset"

	generated, err := svc.SweepDuePasswords(context.Background(), now)
	if err != nil {
		t.Fatalf("SweepDuePasswords 应成功: %v", err)
	}
	if generated != 0 {
		t.Errorf("已有密码的考卷不应重复生成，实际=%d", generated)
	}
}
