package moderation

import (
	"errors"
	"testing"

	"github.com/lib/pq"
)

func TestMapReportDBError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"queue unique", &pq.Error{Code: "23505", Constraint: "uq_moderation_queue_report"}, ErrAlreadyQueued},
		{"terminal decision unique", &pq.Error{Code: "23505", Constraint: "uq_moderation_decisions_terminal"}, ErrDecisionExists},
		{"queue report fk", &pq.Error{Code: "23503", Constraint: "moderation_queue_report_id_fkey"}, ErrReportNotFound},
		{"decision report fk", &pq.Error{Code: "23503", Constraint: "moderation_decisions_report_id_fkey"}, ErrReportNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if mapped := mapReportDBError(tc.err); !errors.Is(mapped, tc.want) {
				t.Fatalf("expected errors.Is(%v), got %v", tc.want, mapped)
			}
		})
	}

	t.Run("unrelated errors pass through", func(t *testing.T) {
		plain := errors.New("boom")
		if mapped := mapReportDBError(plain); mapped != plain {
			t.Fatalf("expected passthrough, got %v", mapped)
		}
		if mapReportDBError(nil) != nil {
			t.Fatal("nil must stay nil")
		}
	})
}

func TestMapActionDBError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"pending appeal unique", &pq.Error{Code: "23505", Constraint: "uq_moderation_appeals_pending"}, ErrAppealPendingExists},
		{"appeal action fk", &pq.Error{Code: "23503", Constraint: "moderation_appeals_action_id_fkey"}, ErrActionNotFound},
		{"action report fk", &pq.Error{Code: "23503", Constraint: "moderation_actions_report_id_fkey"}, ErrReportNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if mapped := mapActionDBError(tc.err); !errors.Is(mapped, tc.want) {
				t.Fatalf("expected errors.Is(%v), got %v", tc.want, mapped)
			}
		})
	}
}
