package content

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Store resolves polymorphic content references and executes moderation side
// effects against them
type Store interface {
	Exists(ctx context.Context, kind Kind, id int64) (bool, error)
	Hide(ctx context.Context, kind Kind, id int64) error
	Remove(ctx context.Context, kind Kind, id int64) error
}

type store struct {
	db *sqlx.DB
}

// NewStore creates content store backed by the catalogue tables
func NewStore(db *sqlx.DB) Store {
	return &store{db: db}
}

func tableFor(kind Kind) (string, error) {
	switch kind {
	case KindTool:
		return "tools", nil
	case KindComment:
		return "comments", nil
	case KindReview:
		return "tool_reviews", nil
	}
	return "", ErrUnknownKind
}

func (s *store) Exists(ctx context.Context, kind Kind, id int64) (bool, error) {
	table, err := tableFor(kind)
	if err != nil {
		return false, err
	}

	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1 AND removed_at IS NULL)`, table)
	err = s.db.GetContext(ctx, &exists, query, id)
	return exists, err
}

func (s *store) Hide(ctx context.Context, kind Kind, id int64) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE %s SET is_hidden = true, updated_at = now() WHERE id = $1 AND removed_at IS NULL`, table)
	return s.exec(ctx, query, id)
}

// Remove soft-deletes so the row stays available for audit queries
func (s *store) Remove(ctx context.Context, kind Kind, id int64) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE %s SET removed_at = now(), updated_at = now() WHERE id = $1 AND removed_at IS NULL`, table)
	return s.exec(ctx, query, id)
}

func (s *store) exec(ctx context.Context, query string, id int64) error {
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
