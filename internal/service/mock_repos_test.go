package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"gorm.io/gorm"

	"examflow/backend/internal/model"
	"examflow/backend/internal/repository"
)

// ── Mock 对象存储 ──

// fakeObjectStore 内存对象存储，key 为 bucket/object
type fakeObjectStore struct {
	objects map[string][]byte
	removed []string
	putErr  error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (f *fakeObjectStore) Put(_ context.Context, bucket, object string, reader io.Reader, _ int64, _ string) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.objects[bucket+"/"+object] = data
	return nil
}

func (f *fakeObjectStore) PresignedGet(_ context.Context, bucket, object string, _ time.Duration) (string, error) {
	return "https://minio.test/" + bucket + "/" + object + "?X-Amz-Signature=test", nil
}

func (f *fakeObjectStore) Remove(_ context.Context, bucket, object string) error {
	key := bucket + "/" + object
	delete(f.objects, key)
	f.removed = append(f.removed, key)
	return nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: user_id
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.StaffID
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByStaffID(_ context.Context, staffID string) (*model.User, error) {
	for _, u := range m.users {
		if u.StaffID == staffID {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, filters *repository.UserListFilters) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.users {
		if filters.DepartmentID != "" && u.DepartmentID != filters.DepartmentID {
			continue
		}
		if filters.Role != "" && !u.Roles.Contains(filters.Role) {
			continue
		}
		if filters.Keyword != "" &&
			!strings.Contains(u.Name, filters.Keyword) &&
			!strings.Contains(u.StaffID, filters.Keyword) {
			continue
		}
		all = append(all, *u)
	}
	total := int64(len(all))
	if filters.Offset >= len(all) {
		return nil, total, nil
	}
	end := filters.Offset + filters.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[filters.Offset:end], total, nil
}

func (m *mockUserRepo) ListByRole(_ context.Context, role string) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if u.Roles.Contains(role) {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.UserID]; !ok {
		return gorm.ErrRecordNotFound
	}
	user.Version++
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.users, id)
	return nil
}

// ── Mock DepartmentRepository ──

type mockDeptRepo struct {
	departments map[string]*model.Department
}

func newMockDeptRepo() *mockDeptRepo {
	return &mockDeptRepo{
		departments: map[string]*model.Department{
			"dept-1": {DepartmentID: "dept-1", Name: "计算机系", Faculty: "理工学院"},
		},
	}
}

func (m *mockDeptRepo) Create(_ context.Context, dept *model.Department) error {
	if dept.DepartmentID == "" {
		dept.DepartmentID = "dept-" + dept.Name
	}
	m.departments[dept.DepartmentID] = dept
	return nil
}

func (m *mockDeptRepo) GetByID(_ context.Context, id string) (*model.Department, error) {
	if d, ok := m.departments[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeptRepo) List(_ context.Context) ([]model.Department, error) {
	var result []model.Department
	for _, d := range m.departments {
		result = append(result, *d)
	}
	return result, nil
}

func (m *mockDeptRepo) Update(_ context.Context, dept *model.Department) error {
	m.departments[dept.DepartmentID] = dept
	return nil
}

func (m *mockDeptRepo) Delete(_ context.Context, id string) error {
	delete(m.departments, id)
	return nil
}

// ── Mock ExamPaperRepository ──

type mockExamPaperRepo struct {
	papers    map[string]*model.ExamPaper
	idCounter int
}

func newMockExamPaperRepo() *mockExamPaperRepo {
	return &mockExamPaperRepo{papers: make(map[string]*model.ExamPaper)}
}

func (m *mockExamPaperRepo) Create(_ context.Context, paper *model.ExamPaper) error {
	if paper.PaperID == "" {
		m.idCounter++
		paper.PaperID = fmt.Sprintf("paper-%d", m.idCounter)
	}
	paper.CreatedAt = time.Now()
	paper.UpdatedAt = time.Now()
	if paper.Version == 0 {
		paper.Version = 1
	}
	m.papers[paper.PaperID] = paper
	return nil
}

func (m *mockExamPaperRepo) GetByID(_ context.Context, id string) (*model.ExamPaper, error) {
	if p, ok := m.papers[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockExamPaperRepo) List(_ context.Context, filters *repository.PaperListFilters) ([]model.ExamPaper, int64, error) {
	var all []model.ExamPaper
	for _, p := range m.papers {
		if filters.Status != "" && p.Status != filters.Status {
			continue
		}
		if filters.DepartmentID != "" && p.DepartmentID != filters.DepartmentID {
			continue
		}
		if filters.SetterID != "" && p.SetterID != filters.SetterID {
			continue
		}
		if filters.Keyword != "" &&
			!strings.Contains(p.CourseCode, filters.Keyword) &&
			!strings.Contains(p.CourseTitle, filters.Keyword) {
			continue
		}
		all = append(all, *p)
	}
	total := int64(len(all))
	if filters.Offset >= len(all) {
		return nil, total, nil
	}
	end := filters.Offset + filters.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[filters.Offset:end], total, nil
}

func (m *mockExamPaperRepo) ListApproved(_ context.Context, offset, limit int) ([]model.ExamPaper, int64, error) {
	var all []model.ExamPaper
	for _, p := range m.papers {
		if p.Status == model.StatusApprovedForPrinting {
			all = append(all, *p)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockExamPaperRepo) ListNeedingPassword(_ context.Context, now time.Time) ([]model.ExamPaper, error) {
	var result []model.ExamPaper
	for _, p := range m.papers {
		if p.Status != model.StatusApprovedForPrinting {
			continue
		}
		if p.PrintingDueAt == nil || p.PrintingDueAt.After(now) {
			continue
		}
		if p.UnlockPasswordHash != "" {
			continue
		}
		result = append(result, *p)
	}
	return result, nil
}

func (m *mockExamPaperRepo) ListExpiredUnlocks(_ context.Context, now time.Time) ([]model.ExamPaper, error) {
	var result []model.ExamPaper
	for _, p := range m.papers {
		if p.IsLocked {
			continue
		}
		if p.UnlockExpiresAt == nil || !p.UnlockExpiresAt.Before(now) {
			continue
		}
		result = append(result, *p)
	}
	return result, nil
}

func (m *mockExamPaperRepo) Update(_ context.Context, paper *model.ExamPaper) error {
	if _, ok := m.papers[paper.PaperID]; !ok {
		return gorm.ErrRecordNotFound
	}
	paper.UpdatedAt = time.Now()
	paper.Version++
	m.papers[paper.PaperID] = paper
	return nil
}

// ── Mock ExamVersionRepository ──

type mockExamVersionRepo struct {
	versions  []model.ExamVersion
	idCounter int
}

func newMockExamVersionRepo() *mockExamVersionRepo {
	return &mockExamVersionRepo{}
}

func (m *mockExamVersionRepo) Create(_ context.Context, version *model.ExamVersion) error {
	m.idCounter++
	if version.VersionID == "" {
		version.VersionID = fmt.Sprintf("ver-%d", m.idCounter)
	}
	version.CreatedAt = time.Now()
	m.versions = append(m.versions, *version)
	return nil
}

func (m *mockExamVersionRepo) ListByPaper(_ context.Context, paperID string) ([]model.ExamVersion, error) {
	var result []model.ExamVersion
	for _, v := range m.versions {
		if v.PaperID == paperID {
			result = append(result, v)
		}
	}
	return result, nil
}

// ── Mock WorkflowTimelineRepository ──

type mockTimelineRepo struct {
	entries   []model.WorkflowTimelineEntry
	idCounter int
}

func newMockTimelineRepo() *mockTimelineRepo {
	return &mockTimelineRepo{}
}

func (m *mockTimelineRepo) Create(_ context.Context, entry *model.WorkflowTimelineEntry) error {
	m.idCounter++
	if entry.EntryID == "" {
		entry.EntryID = fmt.Sprintf("entry-%d", m.idCounter)
	}
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockTimelineRepo) ListByPaper(_ context.Context, paperID string) ([]model.WorkflowTimelineEntry, error) {
	var result []model.WorkflowTimelineEntry
	for _, e := range m.entries {
		if e.PaperID == paperID {
			result = append(result, e)
		}
	}
	return result, nil
}

// ── Mock PaperUnlockLogRepository ──

type mockUnlockLogRepo struct {
	logs      []model.PaperUnlockLog
	idCounter int
}

func newMockUnlockLogRepo() *mockUnlockLogRepo {
	return &mockUnlockLogRepo{}
}

func (m *mockUnlockLogRepo) Create(_ context.Context, log *model.PaperUnlockLog) error {
	m.idCounter++
	if log.LogID == "" {
		log.LogID = fmt.Sprintf("log-%d", m.idCounter)
	}
	log.CreatedAt = time.Now()
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockUnlockLogRepo) ListByPaper(_ context.Context, paperID string, offset, limit int) ([]model.PaperUnlockLog, int64, error) {
	var filtered []model.PaperUnlockLog
	for _, l := range m.logs {
		if l.PaperID == paperID {
			filtered = append(filtered, l)
		}
	}
	total := int64(len(filtered))
	if offset >= len(filtered) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

// ── Mock VettingSessionRepository ──

type mockVettingSessionRepo struct {
	sessions  map[string]*model.VettingSession
	idCounter int
}

func newMockVettingSessionRepo() *mockVettingSessionRepo {
	return &mockVettingSessionRepo{sessions: make(map[string]*model.VettingSession)}
}

func (m *mockVettingSessionRepo) Create(_ context.Context, session *model.VettingSession) error {
	if session.SessionID == "" {
		m.idCounter++
		session.SessionID = fmt.Sprintf("sess-%d", m.idCounter)
	}
	session.CreatedAt = time.Now()
	if session.Version == 0 {
		session.Version = 1
	}
	m.sessions[session.SessionID] = session
	return nil
}

func (m *mockVettingSessionRepo) BatchCreate(_ context.Context, sessions []model.VettingSession) error {
	for i := range sessions {
		m.idCounter++
		sessions[i].SessionID = fmt.Sprintf("sess-%d", m.idCounter)
		sessions[i].CreatedAt = time.Now()
		if sessions[i].Version == 0 {
			sessions[i].Version = 1
		}
		cp := sessions[i]
		m.sessions[cp.SessionID] = &cp
	}
	return nil
}

func (m *mockVettingSessionRepo) GetByID(_ context.Context, id string) (*model.VettingSession, error) {
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockVettingSessionRepo) ListByPaper(_ context.Context, paperID string) ([]model.VettingSession, error) {
	var result []model.VettingSession
	for _, s := range m.sessions {
		if s.PaperID == paperID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockVettingSessionRepo) ListByVetter(_ context.Context, vetterID string) ([]model.VettingSession, error) {
	var result []model.VettingSession
	for _, s := range m.sessions {
		if s.VetterID == vetterID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockVettingSessionRepo) ListOverdue(_ context.Context, deadline time.Time) ([]model.VettingSession, error) {
	var result []model.VettingSession
	for _, s := range m.sessions {
		if s.Status != model.SessionPending && s.Status != model.SessionInProgress {
			continue
		}
		if !s.ScheduledAt.Before(deadline) {
			continue
		}
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockVettingSessionRepo) Update(_ context.Context, session *model.VettingSession) error {
	if _, ok := m.sessions[session.SessionID]; !ok {
		return gorm.ErrRecordNotFound
	}
	session.Version++
	m.sessions[session.SessionID] = session
	return nil
}

// ── Mock VettingCommentRepository ──

type mockVettingCommentRepo struct {
	comments  map[string]*model.VettingComment
	idCounter int
}

func newMockVettingCommentRepo() *mockVettingCommentRepo {
	return &mockVettingCommentRepo{comments: make(map[string]*model.VettingComment)}
}

func (m *mockVettingCommentRepo) Create(_ context.Context, comment *model.VettingComment) error {
	if comment.CommentID == "" {
		m.idCounter++
		comment.CommentID = fmt.Sprintf("cmt-%d", m.idCounter)
	}
	comment.CreatedAt = time.Now()
	m.comments[comment.CommentID] = comment
	return nil
}

func (m *mockVettingCommentRepo) GetByID(_ context.Context, id string) (*model.VettingComment, error) {
	if c, ok := m.comments[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockVettingCommentRepo) ListByPaper(_ context.Context, paperID string) ([]model.VettingComment, error) {
	var result []model.VettingComment
	for _, c := range m.comments {
		if c.PaperID == paperID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockVettingCommentRepo) ListBySession(_ context.Context, sessionID string) ([]model.VettingComment, error) {
	var result []model.VettingComment
	for _, c := range m.comments {
		if c.SessionID == sessionID {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockVettingCommentRepo) CountUnaddressed(_ context.Context, paperID string) (int64, error) {
	var count int64
	for _, c := range m.comments {
		if c.PaperID == paperID && !c.IsAddressed {
			count++
		}
	}
	return count, nil
}

func (m *mockVettingCommentRepo) Update(_ context.Context, comment *model.VettingComment) error {
	if _, ok := m.comments[comment.CommentID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.comments[comment.CommentID] = comment
	return nil
}

// ── Mock PrivilegeElevationRepository ──

type mockElevationRepo struct {
	elevations []*model.PrivilegeElevation
	idCounter  int
}

func newMockElevationRepo() *mockElevationRepo {
	return &mockElevationRepo{}
}

func (m *mockElevationRepo) Create(_ context.Context, elevation *model.PrivilegeElevation) error {
	m.idCounter++
	if elevation.ElevationID == "" {
		elevation.ElevationID = fmt.Sprintf("elev-%d", m.idCounter)
	}
	elevation.CreatedAt = time.Now()
	m.elevations = append(m.elevations, elevation)
	return nil
}

func (m *mockElevationRepo) GetActive(_ context.Context, userID, role string) (*model.PrivilegeElevation, error) {
	for i := len(m.elevations) - 1; i >= 0; i-- {
		e := m.elevations[i]
		if e.UserID == userID && e.Role == role && e.IsActive {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockElevationRepo) ListByUser(_ context.Context, userID string) ([]model.PrivilegeElevation, error) {
	var result []model.PrivilegeElevation
	for _, e := range m.elevations {
		if e.UserID == userID {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (m *mockElevationRepo) List(_ context.Context, offset, limit int) ([]model.PrivilegeElevation, int64, error) {
	total := int64(len(m.elevations))
	if offset >= len(m.elevations) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(m.elevations) {
		end = len(m.elevations)
	}
	var result []model.PrivilegeElevation
	for _, e := range m.elevations[offset:end] {
		result = append(result, *e)
	}
	return result, total, nil
}

func (m *mockElevationRepo) DeactivateByUserRole(_ context.Context, userID, role string, updatedBy string) error {
	for _, e := range m.elevations {
		if e.UserID == userID && e.Role == role && e.IsActive {
			e.IsActive = false
			e.UpdatedBy = &updatedBy
		}
	}
	return nil
}

// ── Mock RoleConsentRepository ──

type mockConsentRepo struct {
	acceptances []*model.RoleConsentAcceptance
	idCounter   int
}

func newMockConsentRepo() *mockConsentRepo {
	return &mockConsentRepo{}
}

func (m *mockConsentRepo) Create(_ context.Context, acceptance *model.RoleConsentAcceptance) error {
	m.idCounter++
	if acceptance.AcceptanceID == "" {
		acceptance.AcceptanceID = fmt.Sprintf("consent-%d", m.idCounter)
	}
	acceptance.AcceptedAt = time.Now()
	m.acceptances = append(m.acceptances, acceptance)
	return nil
}

func (m *mockConsentRepo) Get(_ context.Context, userID, role string) (*model.RoleConsentAcceptance, error) {
	for _, a := range m.acceptances {
		if a.UserID == userID && a.Role == role {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockConsentRepo) ListByUser(_ context.Context, userID string) ([]model.RoleConsentAcceptance, error) {
	var result []model.RoleConsentAcceptance
	for _, a := range m.acceptances {
		if a.UserID == userID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockConsentRepo) DeleteByUserRole(_ context.Context, userID, role string) error {
	var remaining []*model.RoleConsentAcceptance
	for _, a := range m.acceptances {
		if !(a.UserID == userID && a.Role == role) {
			remaining = append(remaining, a)
		}
	}
	m.acceptances = remaining
	return nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	notifications map[string]*model.Notification
	idCounter     int
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{notifications: make(map[string]*model.Notification)}
}

func (m *mockNotificationRepo) Create(_ context.Context, notification *model.Notification) error {
	if notification.NotificationID == "" {
		m.idCounter++
		notification.NotificationID = fmt.Sprintf("notify-%d", m.idCounter)
	}
	notification.CreatedAt = time.Now()
	m.notifications[notification.NotificationID] = notification
	return nil
}

func (m *mockNotificationRepo) GetByID(_ context.Context, id string) (*model.Notification, error) {
	if n, ok := m.notifications[id]; ok {
		return n, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, limit int) ([]model.Notification, error) {
	var result []model.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		if len(result) >= limit {
			break
		}
		result = append(result, *n)
	}
	return result, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id string) error {
	if n, ok := m.notifications[id]; ok {
		n.IsRead = true
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	for _, n := range m.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (m *mockNotificationRepo) Delete(_ context.Context, id string) error {
	delete(m.notifications, id)
	return nil
}

func (m *mockNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

// ── 测试辅助：聚合所有 mock repo ──

// testRepos 聚合所有 mock repo 便于 seed 数据。
// db 为空的 Repository 聚合使 Transaction 直接执行 fn，不包事务。
type testRepos struct {
	user         *mockUserRepo
	department   *mockDeptRepo
	paper        *mockExamPaperRepo
	version      *mockExamVersionRepo
	timeline     *mockTimelineRepo
	unlockLog    *mockUnlockLogRepo
	session      *mockVettingSessionRepo
	comment      *mockVettingCommentRepo
	elevation    *mockElevationRepo
	consent      *mockConsentRepo
	notification *mockNotificationRepo
	store        *fakeObjectStore
}

func newTestRepos() *testRepos {
	return &testRepos{
		user:         newMockUserRepo(),
		department:   newMockDeptRepo(),
		paper:        newMockExamPaperRepo(),
		version:      newMockExamVersionRepo(),
		timeline:     newMockTimelineRepo(),
		unlockLog:    newMockUnlockLogRepo(),
		session:      newMockVettingSessionRepo(),
		comment:      newMockVettingCommentRepo(),
		elevation:    newMockElevationRepo(),
		consent:      newMockConsentRepo(),
		notification: newMockNotificationRepo(),
		store:        newFakeObjectStore(),
	}
}

func (r *testRepos) toRepository() *repository.Repository {
	return &repository.Repository{
		User:         r.user,
		Department:   r.department,
		ExamPaper:    r.paper,
		ExamVersion:  r.version,
		Timeline:     r.timeline,
		UnlockLog:    r.unlockLog,
		Vetting:      r.session,
		Comment:      r.comment,
		Elevation:    r.elevation,
		Consent:      r.consent,
		Notification: r.notification,
	}
}
