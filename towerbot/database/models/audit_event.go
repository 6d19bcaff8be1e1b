package models

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// AuditEvent is an append-only audit trail row. Player 0 marks system events.
type AuditEvent struct {
	bun.BaseModel `bun:"table:audit_events,alias:ae"`

	ID       int64           `bun:"id,pk,autoincrement"`
	PlayerID int64           `bun:"player_id,notnull"`
	Kind     string          `bun:"kind,notnull"`
	Payload  json.RawMessage `bun:"payload,type:jsonb"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
