package moderation

import "testing"

func TestBumpCapsAtUrgent(t *testing.T) {
	steps := []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent, PriorityUrgent}
	for i := 0; i < len(steps)-1; i++ {
		if got := steps[i].Bump(); got != steps[i+1] {
			t.Fatalf("%s.Bump() = %s, want %s", steps[i], got, steps[i+1])
		}
	}
}

func TestRankOrdering(t *testing.T) {
	order := []Priority{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow}
	for i := 1; i < len(order); i++ {
		if order[i-1].Rank() >= order[i].Rank() {
			t.Fatalf("%s must rank before %s", order[i-1], order[i])
		}
	}
}

func TestPriorityForReasonDefaultsToMedium(t *testing.T) {
	if got := PriorityForReason(ReasonOther); got != PriorityMedium {
		t.Fatalf("expected medium for other, got %s", got)
	}
	if got := PriorityForReason(ReasonInappropriate); got != PriorityMedium {
		t.Fatalf("expected medium for inappropriate_content, got %s", got)
	}
}
