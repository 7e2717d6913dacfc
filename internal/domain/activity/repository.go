package activity

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repository defines activity-log data access
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	ListByEntity(ctx context.Context, entityType string, entityID int64, limit int) ([]*Entry, error)
	ListRange(ctx context.Context, from, to time.Time) ([]*Entry, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates activity repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, e *Entry) error {
	query := `
		INSERT INTO activity_log (actor_id, action, entity_type, entity_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	return r.db.QueryRowxContext(ctx, query,
		e.ActorID,
		e.Action,
		e.EntityType,
		e.EntityID,
		e.Metadata,
		e.CreatedAt,
	).Scan(&e.ID)
}

func (r *repository) ListByEntity(ctx context.Context, entityType string, entityID int64, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT * FROM activity_log
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3
	`
	var entries []*Entry
	err := r.db.SelectContext(ctx, &entries, query, entityType, entityID, limit)
	return entries, err
}

func (r *repository) ListRange(ctx context.Context, from, to time.Time) ([]*Entry, error) {
	query := `
		SELECT * FROM activity_log
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at ASC
	`
	var entries []*Entry
	err := r.db.SelectContext(ctx, &entries, query, from, to)
	return entries, err
}
