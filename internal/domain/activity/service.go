package activity

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
)

// Recorder appends activity entries. Logging failures are swallowed so a
// broken audit trail never fails the primary operation.
type Recorder struct {
	repo Repository
}

// NewRecorder creates activity recorder
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo}
}

// Record appends one entry. meta is marshalled to JSON; a nil meta is stored
// as NULL.
func (r *Recorder) Record(ctx context.Context, actorID int64, action, entityType string, entityID int64, meta interface{}) {
	e := &Entry{
		Action:     action,
		EntityType: entityType,
		CreatedAt:  time.Now(),
	}
	if actorID != 0 {
		e.ActorID = sql.NullInt64{Int64: actorID, Valid: true}
	}
	if entityID != 0 {
		e.EntityID = sql.NullInt64{Int64: entityID, Valid: true}
	}
	if meta != nil {
		data, err := json.Marshal(meta)
		if err == nil {
			e.Metadata = data
		}
	}

	if err := r.repo.Create(ctx, e); err != nil {
		log.Error().Err(err).
			Str("action", action).
			Str("entity_type", entityType).
			Int64("entity_id", entityID).
			Msg("Failed to record activity")
	}
}
