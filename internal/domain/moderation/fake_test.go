package moderation

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/toolindex/toolindex-api/internal/domain/content"
)

// memStore is an in-memory stand-in for the three repositories, preserving
// the same transition rules the SQL layer enforces.
type memStore struct {
	reports   map[int64]*Report
	queue     map[int64]*QueueEntry
	decisions map[int64]*Decision
	actions   map[int64]*Action
	appeals   map[int64]*Appeal
	statuses  map[int64]*UserModerationStatus
	nextID    int64
}

func newMemStore() *memStore {
	return &memStore{
		reports:   map[int64]*Report{},
		queue:     map[int64]*QueueEntry{},
		decisions: map[int64]*Decision{},
		actions:   map[int64]*Action{},
		appeals:   map[int64]*Appeal{},
		statuses:  map[int64]*UserModerationStatus{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

// --- Repository ---

func (m *memStore) CreateReport(_ context.Context, r *Report) error {
	r.ID = m.id()
	m.reports[r.ID] = r
	return nil
}

func (m *memStore) GetReportByID(_ context.Context, id int64) (*Report, error) {
	return m.reports[id], nil
}

func (m *memStore) FindOpenDuplicate(_ context.Context, reporterID int64, targetType TargetType, targetID int64, reason ReportReason) (*Report, error) {
	for _, r := range m.reports {
		if r.ReporterID == reporterID && r.TargetType == targetType && r.TargetID == targetID &&
			r.Reason == reason && r.Status.IsOpen() {
			return r, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListReports(_ context.Context, filter *ReportFilter) ([]*Report, error) {
	var out []*Report
	for _, r := range m.reports {
		if filter != nil {
			if filter.Status != "" && r.Status != filter.Status {
				continue
			}
			if filter.Reason != "" && r.Reason != filter.Reason {
				continue
			}
			if filter.ReporterID != nil && r.ReporterID != *filter.ReporterID {
				continue
			}
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) CreateQueueEntry(_ context.Context, e *QueueEntry) error {
	for _, q := range m.queue {
		if q.ReportID == e.ReportID {
			return ErrAlreadyQueued
		}
	}
	e.ID = m.id()
	m.queue[e.ID] = e
	return nil
}

func (m *memStore) GetQueueEntryByID(_ context.Context, id int64) (*QueueEntry, error) {
	return m.queue[id], nil
}

func (m *memStore) GetQueueEntryByReportID(_ context.Context, reportID int64) (*QueueEntry, error) {
	for _, q := range m.queue {
		if q.ReportID == reportID {
			return q, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListQueue(_ context.Context, filter *QueueFilter) ([]*QueueEntry, error) {
	var out []*QueueEntry
	for _, q := range m.queue {
		if filter != nil {
			if filter.Priority != "" && q.Priority != filter.Priority {
				continue
			}
			if filter.AssignedTo != nil && (!q.AssignedTo.Valid || q.AssignedTo.Int64 != *filter.AssignedTo) {
				continue
			}
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority.Rank() != out[j].Priority.Rank() {
			return out[i].Priority.Rank() < out[j].Priority.Rank()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *memStore) AssignEntry(_ context.Context, entryID, moderatorID int64) error {
	e, ok := m.queue[entryID]
	if !ok {
		return ErrQueueEntryNotFound
	}
	if e.AssignedTo.Valid {
		return ErrAlreadyAssigned
	}
	r := m.reports[e.ReportID]
	if r == nil || r.Status != ReportStatusPending {
		return ErrReportNotPending
	}
	e.AssignedTo = nullInt64(&moderatorID)
	now := time.Now()
	e.AssignedAt.Time, e.AssignedAt.Valid = now, true
	r.Status = ReportStatusUnderReview
	return nil
}

func (m *memStore) UnassignEntry(_ context.Context, entryID int64) error {
	e, ok := m.queue[entryID]
	if !ok {
		return ErrQueueEntryNotFound
	}
	e.AssignedTo.Valid = false
	e.AssignedAt.Valid = false
	if r := m.reports[e.ReportID]; r != nil && r.Status == ReportStatusUnderReview {
		r.Status = ReportStatusPending
	}
	return nil
}

func (m *memStore) GetTerminalDecisionByReportID(_ context.Context, reportID int64) (*Decision, error) {
	for _, d := range m.decisions {
		if d.ReportID == reportID && d.Decision.Terminal() {
			return d, nil
		}
	}
	return nil, nil
}

func (m *memStore) CreateTerminalDecision(ctx context.Context, d *Decision, status ReportStatus) error {
	r := m.reports[d.ReportID]
	if r == nil {
		return ErrReportNotFound
	}
	if r.Status != ReportStatusUnderReview {
		return ErrReportNotUnderReview
	}
	if existing, _ := m.GetTerminalDecisionByReportID(ctx, d.ReportID); existing != nil {
		return ErrDecisionExists
	}
	d.ID = m.id()
	m.decisions[d.ID] = d
	r.Status = status
	for id, q := range m.queue {
		if q.ReportID == d.ReportID {
			delete(m.queue, id)
		}
	}
	return nil
}

func (m *memStore) CreateEscalateDecision(ctx context.Context, d *Decision) error {
	r := m.reports[d.ReportID]
	if r == nil {
		return ErrReportNotFound
	}
	if r.Status != ReportStatusUnderReview {
		return ErrReportNotUnderReview
	}
	e, _ := m.GetQueueEntryByReportID(ctx, d.ReportID)
	if e == nil {
		return ErrQueueEntryNotFound
	}
	d.ID = m.id()
	m.decisions[d.ID] = d
	e.Priority = e.Priority.Bump()
	e.AssignedTo.Valid = false
	e.AssignedAt.Valid = false
	r.Status = ReportStatusPending
	return nil
}

// --- ActionRepository ---

func (m *memStore) CreateAction(_ context.Context, a *Action) error {
	a.ID = m.id()
	m.actions[a.ID] = a
	return nil
}

func (m *memStore) ApplyUserSanction(ctx context.Context, a *Action) error {
	if !a.UserID.Valid {
		return ErrTargetUserRequired
	}
	a.ID = m.id()
	m.actions[a.ID] = a

	status := m.status(a.UserID.Int64)
	switch a.Kind {
	case ActionUserWarn:
		status.WarningCount++
	case ActionUserSuspend:
		status.IsSuspended = true
		status.SuspensionEndsAt.Valid = false
		if a.DurationDays.Valid {
			status.SuspensionEndsAt.Time = a.CreatedAt.Add(time.Duration(a.DurationDays.Int64) * 24 * time.Hour)
			status.SuspensionEndsAt.Valid = true
		}
		status.SuspensionReason = nullString(a.Reason)
		status.SuspendedByActionID = nullInt64(&a.ID)
	case ActionUserBan:
		status.IsBanned = true
		status.BanReason = nullString(a.Reason)
		status.BannedByActionID = nullInt64(&a.ID)
	case ActionUserRestore:
		clearSuspension(status)
		clearBan(status)
	default:
		return ErrTargetUserRequired
	}
	return nil
}

func (m *memStore) GetActionByID(_ context.Context, id int64) (*Action, error) {
	return m.actions[id], nil
}

func (m *memStore) FindRecentDuplicate(_ context.Context, a *Action, since time.Time) (*Action, error) {
	for _, prev := range m.actions {
		if prev.ModeratorID == a.ModeratorID && prev.Kind == a.Kind &&
			prev.UserID == a.UserID && prev.ActionableType == a.ActionableType &&
			prev.ActionableID == a.ActionableID && prev.CreatedAt.After(since) {
			return prev, nil
		}
	}
	return nil, nil
}

func (m *memStore) ListActionsByUser(_ context.Context, userID int64, limit, offset int) ([]*Action, error) {
	var out []*Action
	for _, a := range m.actions {
		if a.UserID.Valid && a.UserID.Int64 == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) CreateAppeal(_ context.Context, ap *Appeal) error {
	for _, existing := range m.appeals {
		if existing.ActionID == ap.ActionID && existing.Status == AppealStatusPending {
			return ErrAppealPendingExists
		}
	}
	ap.ID = m.id()
	m.appeals[ap.ID] = ap
	return nil
}

func (m *memStore) GetAppealByID(_ context.Context, id int64) (*Appeal, error) {
	return m.appeals[id], nil
}

func (m *memStore) ListPendingAppeals(_ context.Context, limit, offset int) ([]*Appeal, error) {
	var out []*Appeal
	for _, ap := range m.appeals {
		if ap.Status == AppealStatusPending {
			out = append(out, ap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) ReviewAppeal(_ context.Context, appealID, reviewerID int64, outcome AppealStatus, notes string) (*Appeal, error) {
	ap, ok := m.appeals[appealID]
	if !ok {
		return nil, ErrAppealNotFound
	}
	if ap.Status != AppealStatusPending {
		return nil, ErrAppealClosed
	}
	ap.Status = outcome
	ap.ReviewedBy = nullInt64(&reviewerID)
	ap.ReviewNotes = nullString(notes)

	if outcome == AppealStatusApproved {
		a := m.actions[ap.ActionID]
		if a == nil {
			return nil, ErrActionNotFound
		}
		if !a.UserID.Valid {
			return nil, ErrNotReversible
		}
		status := m.status(a.UserID.Int64)
		switch a.Kind {
		case ActionUserWarn:
			if status.WarningCount > 0 {
				status.WarningCount--
			}
		case ActionUserSuspend:
			if status.SuspendedByActionID.Valid && status.SuspendedByActionID.Int64 == a.ID {
				clearSuspension(status)
			}
		case ActionUserBan:
			if status.BannedByActionID.Valid && status.BannedByActionID.Int64 == a.ID {
				clearBan(status)
			}
		default:
			return nil, ErrNotReversible
		}
	}
	return ap, nil
}

// --- StatusRepository ---

func (m *memStore) Get(_ context.Context, userID int64) (*UserModerationStatus, error) {
	return m.statuses[userID], nil
}

func (m *memStore) GetOrCreate(_ context.Context, userID int64) (*UserModerationStatus, error) {
	return m.status(userID), nil
}

func (m *memStore) ExpireSuspensions(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, s := range m.statuses {
		if s.IsSuspended && s.SuspensionEndsAt.Valid && !s.SuspensionEndsAt.Time.After(now) {
			clearSuspension(s)
			n++
		}
	}
	return n, nil
}

func (m *memStore) GetStatistics(_ context.Context) (*Statistics, error) {
	stats := &Statistics{TotalActions: len(m.actions)}
	for _, r := range m.reports {
		switch r.Status {
		case ReportStatusPending:
			stats.PendingReports++
		case ReportStatusUnderReview:
			stats.UnderReview++
		case ReportStatusResolved:
			stats.ResolvedReports++
		case ReportStatusDismissed:
			stats.DismissedReports++
		}
	}
	for _, s := range m.statuses {
		if s.IsSuspended {
			stats.SuspendedUsers++
		}
		if s.IsBanned {
			stats.BannedUsers++
		}
	}
	for _, ap := range m.appeals {
		switch ap.Status {
		case AppealStatusPending:
			stats.PendingAppeals++
		case AppealStatusApproved:
			stats.ApprovedAppeals++
		}
	}
	return stats, nil
}

func (m *memStore) status(userID int64) *UserModerationStatus {
	if s, ok := m.statuses[userID]; ok {
		return s
	}
	s := &UserModerationStatus{UserID: userID}
	m.statuses[userID] = s
	return s
}

func clearSuspension(s *UserModerationStatus) {
	s.IsSuspended = false
	s.SuspensionEndsAt.Valid = false
	s.SuspensionReason.Valid = false
	s.SuspendedByActionID.Valid = false
}

func clearBan(s *UserModerationStatus) {
	s.IsBanned = false
	s.BanReason.Valid = false
	s.BannedByActionID.Valid = false
}

// --- Collaborator stubs ---

type usersStub struct {
	roles map[int64]string
}

func (u *usersStub) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := u.roles[id]
	return ok, nil
}

func (u *usersStub) ListModeratorIDs(_ context.Context) ([]int64, error) {
	var ids []int64
	for id, role := range u.roles {
		if role == "moderator" || role == "admin" {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type contentStub struct {
	items   map[content.Kind]map[int64]string // "" visible, "hidden", "removed"
	failing bool
}

func newContentStub() *contentStub {
	return &contentStub{items: map[content.Kind]map[int64]string{
		content.KindTool:    {},
		content.KindComment: {},
		content.KindReview:  {},
	}}
}

func (c *contentStub) add(kind content.Kind, id int64) {
	c.items[kind][id] = ""
}

func (c *contentStub) Exists(_ context.Context, kind content.Kind, id int64) (bool, error) {
	state, ok := c.items[kind][id]
	return ok && state != "removed", nil
}

func (c *contentStub) Hide(_ context.Context, kind content.Kind, id int64) error {
	return c.mark(kind, id, "hidden")
}

func (c *contentStub) Remove(_ context.Context, kind content.Kind, id int64) error {
	return c.mark(kind, id, "removed")
}

func (c *contentStub) mark(kind content.Kind, id int64, state string) error {
	if c.failing {
		return errors.New("store unavailable")
	}
	if _, ok := c.items[kind][id]; !ok {
		return content.ErrNotFound
	}
	c.items[kind][id] = state
	return nil
}

type notifierStub struct {
	reportFiled   int
	decisionMade  int
	actionTaken   int
	appealOutcome int
}

func (n *notifierStub) NotifyReportFiled(_ context.Context, _ []int64, _ int64, _ string) {
	n.reportFiled++
}
func (n *notifierStub) NotifyDecisionMade(_ context.Context, _, _ int64, _ string) {
	n.decisionMade++
}
func (n *notifierStub) NotifyActionTaken(_ context.Context, _, _ int64, _, _ string) {
	n.actionTaken++
}
func (n *notifierStub) NotifyAppealOutcome(_ context.Context, _, _ int64, _ string) {
	n.appealOutcome++
}

type activityStub struct {
	actions []string
}

func (a *activityStub) Record(_ context.Context, _ int64, action, _ string, _ int64, _ interface{}) {
	a.actions = append(a.actions, action)
}

// Test fixture wiring a Service onto the in-memory store with a settable
// clock.
type fixture struct {
	svc      *Service
	store    *memStore
	users    *usersStub
	content  *contentStub
	notifier *notifierStub
	activity *activityStub
	clock    time.Time
}

func newFixture() *fixture {
	f := &fixture{
		store: newMemStore(),
		users: &usersStub{roles: map[int64]string{
			1: "user", 2: "user", 3: "moderator", 4: "admin",
		}},
		content:  newContentStub(),
		notifier: &notifierStub{},
		activity: &activityStub{},
		clock:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	f.content.add(content.KindTool, 10)
	f.content.add(content.KindComment, 20)
	f.content.add(content.KindReview, 30)

	f.svc = NewService(f.store, f.store, f.store, f.content, f.users, f.notifier, f.activity, nil)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}
