package moderation

// PriorityForReason maps a report reason onto its initial queue band.
// Safety-critical reasons jump the queue.
func PriorityForReason(reason ReportReason) Priority {
	switch reason {
	case ReasonHateSpeech, ReasonViolent, ReasonExplicit:
		return PriorityUrgent
	case ReasonHarassment, ReasonScam, ReasonCopyright:
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

// Rank orders bands for scheduling: lower rank is served first
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	default:
		return 3
	}
}

// Bump raises the band by one, capped at urgent
func (p Priority) Bump() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityUrgent
	}
}

// Valid reports whether p names a known band
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
