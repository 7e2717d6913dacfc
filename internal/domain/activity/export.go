package activity

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/toolindex/toolindex-api/internal/pkg/storage"
)

// Exporter dumps a date range of the activity log to an object store as CSV.
type Exporter struct {
	repo     Repository
	uploader storage.Uploader
}

// NewExporter creates activity exporter
func NewExporter(repo Repository, uploader storage.Uploader) *Exporter {
	return &Exporter{repo: repo, uploader: uploader}
}

// ExportRange writes all entries in [from, to) as a CSV object and returns
// the object key.
func (e *Exporter) ExportRange(ctx context.Context, from, to time.Time) (string, error) {
	entries, err := e.repo.ListRange(ctx, from, to)
	if err != nil {
		return "", fmt.Errorf("list activity range: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"id", "actor_id", "action", "entity_type", "entity_id", "metadata", "created_at"}); err != nil {
		return "", err
	}

	for _, entry := range entries {
		actor := ""
		if entry.ActorID.Valid {
			actor = strconv.FormatInt(entry.ActorID.Int64, 10)
		}
		entity := ""
		if entry.EntityID.Valid {
			entity = strconv.FormatInt(entry.EntityID.Int64, 10)
		}
		record := []string{
			strconv.FormatInt(entry.ID, 10),
			actor,
			entry.Action,
			entry.EntityType,
			entity,
			string(entry.Metadata),
			entry.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	key := fmt.Sprintf("activity-exports/%s_%s.csv", from.Format("20060102"), to.Format("20060102"))
	if err := e.uploader.Put(ctx, key, &buf, "text/csv"); err != nil {
		return "", fmt.Errorf("upload activity export: %w", err)
	}

	log.Info().Str("key", key).Int("entries", len(entries)).Msg("Activity export uploaded")
	return key, nil
}
