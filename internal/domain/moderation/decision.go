package moderation

import (
	"context"
	"fmt"
	"strings"
)

// RecordDecision records a moderator's verdict on an in-review report.
// Approve and reject close the report and drop its queue entry; escalate
// returns it to the pending pool one priority band higher and unassigned.
// The verdict and the report transition commit together.
func (s *Service) RecordDecision(ctx context.Context, moderatorID, reportID int64, req *RecordDecisionRequest) (*Decision, error) {
	if strings.TrimSpace(req.Reasoning) == "" {
		return nil, ErrReasoningRequired
	}

	report, err := s.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	appealable := true
	if req.Appealable != nil {
		appealable = *req.Appealable
	}

	decision := &Decision{
		ReportID:    reportID,
		ModeratorID: moderatorID,
		Decision:    DecisionKind(req.Decision),
		Reasoning:   req.Reasoning,
		Appealable:  appealable,
		CreatedAt:   s.now().UTC(),
	}

	switch decision.Decision {
	case DecisionApproveAction:
		err = s.repo.CreateTerminalDecision(ctx, decision, ReportStatusResolved)
	case DecisionRejectReport:
		err = s.repo.CreateTerminalDecision(ctx, decision, ReportStatusDismissed)
	case DecisionEscalate:
		err = s.repo.CreateEscalateDecision(ctx, decision)
	default:
		return nil, fmt.Errorf("unknown decision kind: %s", req.Decision)
	}
	if err != nil {
		return nil, err
	}

	s.activity.Record(ctx, moderatorID, "decision.recorded", "report", reportID, map[string]interface{}{
		"decision": decision.Decision,
	})
	s.notifier.NotifyDecisionMade(ctx, report.ReporterID, reportID, string(decision.Decision))

	return decision, nil
}
