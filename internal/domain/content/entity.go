package content

// Kind identifies which catalogue table a content reference points at.
// Reports and moderation actions carry a (kind, id) pair instead of a typed
// foreign key so one workflow covers every reportable surface.
type Kind string

const (
	KindTool    Kind = "tool"
	KindComment Kind = "comment"
	KindReview  Kind = "review"
)

// Valid reports whether k names a known content kind
func (k Kind) Valid() bool {
	switch k {
	case KindTool, KindComment, KindReview:
		return true
	}
	return false
}
