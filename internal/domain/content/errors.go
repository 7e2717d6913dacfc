package content

import "errors"

var (
	ErrNotFound    = errors.New("content not found")
	ErrUnknownKind = errors.New("unknown content kind")
)
