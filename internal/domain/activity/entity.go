package activity

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Entry represents one append-only activity-log record: who did what, to
// which entity, and when. Entries are never updated or deleted.
type Entry struct {
	ID         int64           `db:"id" json:"id"`
	ActorID    sql.NullInt64   `db:"actor_id" json:"actor_id,omitempty"`
	Action     string          `db:"action" json:"action"`
	EntityType string          `db:"entity_type" json:"entity_type"`
	EntityID   sql.NullInt64   `db:"entity_id" json:"entity_id,omitempty"`
	Metadata   json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}
