package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/esprit-rpg/towerbot/towerbot/database/models"
	"github.com/uptrace/bun"
)

const (
	defaultBuffer      = 1024
	insertTimeout      = 5 * time.Second
	droppedLogInterval = 1 * time.Minute
)

// DBRecorder persists events into the audit_events table through a buffered
// channel so callers never wait on the database. Events are dropped when the
// buffer is full; a full buffer means the database is the bottleneck and
// gameplay must not queue behind it.
type DBRecorder struct {
	db     *bun.DB
	events chan models.AuditEvent

	// Unix nanos of the last drop warning; atomic because Record is called
	// from concurrent handlers.
	lastDrop atomic.Int64
}

func NewDBRecorder(db *bun.DB) *DBRecorder {
	return &DBRecorder{
		db:     db,
		events: make(chan models.AuditEvent, defaultBuffer),
	}
}

func (r *DBRecorder) Record(playerID int64, kind EventKind, payload map[string]any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("Failed to encode audit payload",
			slog.String("type", "audit"),
			slog.String("kind", string(kind)),
			slog.Any("error", err))
		raw = []byte("{}")
	}

	event := models.AuditEvent{
		PlayerID:  playerID,
		Kind:      string(kind),
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
	}

	select {
	case r.events <- event:
	default:
		last := r.lastDrop.Load()
		now := time.Now().UnixNano()
		if now-last > int64(droppedLogInterval) && r.lastDrop.CompareAndSwap(last, now) {
			slog.Warn("Audit buffer full, dropping events",
				slog.String("type", "audit"))
		}
	}
}

// Run drains the buffer until ctx is cancelled, then flushes what remains.
func (r *DBRecorder) Run(ctx context.Context) error {
	for {
		select {
		case event := <-r.events:
			r.insert(event)
		case <-ctx.Done():
			for {
				select {
				case event := <-r.events:
					r.insert(event)
				default:
					return nil
				}
			}
		}
	}
}

func (r *DBRecorder) insert(event models.AuditEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), insertTimeout)
	defer cancel()

	if _, err := r.db.NewInsert().Model(&event).Exec(ctx); err != nil {
		slog.Warn("Failed to persist audit event",
			slog.String("type", "audit"),
			slog.String("kind", event.Kind),
			slog.Int64("player_id", event.PlayerID),
			slog.Any("error", err))
	}
}
