package moderation

import (
	"context"
	"errors"
	"testing"
)

func (f *fixture) sanction(t *testing.T, kind string, userID int64) *Action {
	t.Helper()
	req := &ApplyActionRequest{Kind: kind, UserID: int64p(userID), Reason: "violation"}
	if kind == "user_suspend" {
		req.DurationDays = intp(14)
	}
	action, err := f.svc.ApplyAction(context.Background(), 3, req)
	if err != nil {
		t.Fatal(err)
	}
	f.advance(2 * duplicateActionWindow)
	return action
}

func TestFileAppealOnlyByTarget(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	action := f.sanction(t, "user_ban", 2)

	_, err := f.svc.FileAppeal(ctx, 1, action.ID, &FileAppealRequest{Reason: "not me"})
	if !errors.Is(err, ErrNotActionTarget) {
		t.Fatalf("expected ErrNotActionTarget, got %v", err)
	}

	_, err = f.svc.FileAppeal(ctx, 2, 999, &FileAppealRequest{Reason: "unfair"})
	if !errors.Is(err, ErrActionNotFound) {
		t.Fatalf("expected ErrActionNotFound, got %v", err)
	}
}

func TestFileAppealNonAppealableKinds(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	restore := f.sanction(t, "user_restore", 2)
	if _, err := f.svc.FileAppeal(ctx, 2, restore.ID, &FileAppealRequest{Reason: "?"}); !errors.Is(err, ErrNotAppealable) {
		t.Fatalf("restore: expected ErrNotAppealable, got %v", err)
	}

	hide, err := f.svc.ApplyAction(ctx, 3, &ApplyActionRequest{
		Kind: "content_hide", TargetType: "tool", TargetID: int64p(10), Reason: "spam",
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.FileAppeal(ctx, 2, hide.ID, &FileAppealRequest{Reason: "my tool"}); !errors.Is(err, ErrNotActionTarget) {
		t.Fatalf("content action: expected ErrNotActionTarget, got %v", err)
	}
}

func TestFileAppealRespectsNonAppealableDecision(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	report, _ := f.fileAndAssign(t, 1, "hate_speech", 3)

	appealable := false
	if _, err := f.svc.RecordDecision(ctx, 3, report.ID, &RecordDecisionRequest{
		Decision: "approve_action", Reasoning: "egregious", Appealable: &appealable,
	}); err != nil {
		t.Fatal(err)
	}
	action, err := f.svc.ApplyAction(ctx, 3, &ApplyActionRequest{
		Kind: "user_ban", UserID: int64p(2), ReportID: &report.ID, Reason: "hate speech",
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.FileAppeal(ctx, 2, action.ID, &FileAppealRequest{Reason: "unfair"}); !errors.Is(err, ErrNotAppealable) {
		t.Fatalf("expected ErrNotAppealable, got %v", err)
	}
}

func TestFileAppealSinglePending(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	action := f.sanction(t, "user_ban", 2)

	if _, err := f.svc.FileAppeal(ctx, 2, action.ID, &FileAppealRequest{Reason: "unfair"}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.FileAppeal(ctx, 2, action.ID, &FileAppealRequest{Reason: "still unfair"}); !errors.Is(err, ErrAppealPendingExists) {
		t.Fatalf("expected ErrAppealPendingExists, got %v", err)
	}
}

func TestReviewAppealOneShot(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	action := f.sanction(t, "user_ban", 2)
	appeal, err := f.svc.FileAppeal(ctx, 2, action.ID, &FileAppealRequest{Reason: "unfair"})
	if err != nil {
		t.Fatal(err)
	}

	reviewed, err := f.svc.ReviewAppeal(ctx, 4, appeal.ID, &ReviewAppealRequest{Outcome: "rejected", Notes: "upheld"})
	if err != nil {
		t.Fatal(err)
	}
	if reviewed.Status != AppealStatusRejected {
		t.Fatalf("expected rejected, got %s", reviewed.Status)
	}
	if f.store.statuses[2].IsBanned != true {
		t.Fatal("rejection must not touch the ledger")
	}

	if _, err := f.svc.ReviewAppeal(ctx, 4, appeal.ID, &ReviewAppealRequest{Outcome: "approved"}); !errors.Is(err, ErrAppealClosed) {
		t.Fatalf("expected ErrAppealClosed, got %v", err)
	}
	if f.notifier.appealOutcome != 1 {
		t.Fatalf("expected 1 appellant notification, got %d", f.notifier.appealOutcome)
	}
}

func TestBanAppealApprovalRestoresAccess(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	action := f.sanction(t, "user_ban", 2)

	if ok, _ := f.svc.CanAccess(ctx, 2); ok {
		t.Fatal("banned user must not have access")
	}

	appeal, err := f.svc.FileAppeal(ctx, 2, action.ID, &FileAppealRequest{Reason: "mistaken identity"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.ReviewAppeal(ctx, 4, appeal.ID, &ReviewAppealRequest{Outcome: "approved", Notes: "verified"}); err != nil {
		t.Fatal(err)
	}

	if ok, _ := f.svc.CanAccess(ctx, 2); !ok {
		t.Fatal("approved appeal must restore access")
	}
}

func TestAppealReversalSkipsOverwrittenSanction(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first := f.sanction(t, "user_suspend", 2)
	appeal, err := f.svc.FileAppeal(ctx, 2, first.ID, &FileAppealRequest{Reason: "excessive"})
	if err != nil {
		t.Fatal(err)
	}

	// A newer suspension replaces the first one before the appeal closes
	second := f.sanction(t, "user_suspend", 2)

	if _, err := f.svc.ReviewAppeal(ctx, 4, appeal.ID, &ReviewAppealRequest{Outcome: "approved"}); err != nil {
		t.Fatal(err)
	}

	status := f.store.statuses[2]
	if !status.IsSuspended {
		t.Fatal("the newer suspension must stand")
	}
	if !status.SuspendedByActionID.Valid || status.SuspendedByActionID.Int64 != second.ID {
		t.Fatal("ledger must still point at the newer action")
	}
}

func TestWarnAppealApprovalDecrementsCount(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	action := f.sanction(t, "user_warn", 2)

	appeal, err := f.svc.FileAppeal(ctx, 2, action.ID, &FileAppealRequest{Reason: "no violation"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.ReviewAppeal(ctx, 4, appeal.ID, &ReviewAppealRequest{Outcome: "approved"}); err != nil {
		t.Fatal(err)
	}
	if got := f.store.statuses[2].WarningCount; got != 0 {
		t.Fatalf("expected warning count 0, got %d", got)
	}
}
