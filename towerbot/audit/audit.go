package audit

import "log/slog"

// EventKind classifies audit trail entries.
type EventKind string

const (
	CurrencyGain       EventKind = "currency_gain"
	CurrencySpend      EventKind = "currency_spend"
	ResourceConsume    EventKind = "resource_consume"
	EspritSummoned     EventKind = "esprit_summoned"
	EspritFused        EventKind = "esprit_fused"
	FloorCleared       EventKind = "floor_cleared"
	FloorAttemptFailed EventKind = "floor_attempt_failed"
	TowerRaid          EventKind = "tower_raid"
	PlayerCreated      EventKind = "player_created"
	LevelGained        EventKind = "level_gained"
	SystemAction       EventKind = "system_action"
)

// SystemPlayerID marks events without a player context.
const SystemPlayerID int64 = 0

// Recorder receives gameplay audit events. Implementations are
// fire-and-forget: Record must never block the caller or surface an error,
// since a broken audit trail must not break gameplay.
type Recorder interface {
	Record(playerID int64, kind EventKind, payload map[string]any)
}

// LogRecorder writes events to the structured logger.
type LogRecorder struct{}

func (LogRecorder) Record(playerID int64, kind EventKind, payload map[string]any) {
	slog.Info("Audit event",
		slog.String("type", "audit"),
		slog.String("kind", string(kind)),
		slog.Int64("player_id", playerID),
		slog.Any("payload", payload),
	)
}

// MultiRecorder fans out to several recorders.
type MultiRecorder []Recorder

func (m MultiRecorder) Record(playerID int64, kind EventKind, payload map[string]any) {
	for _, r := range m {
		r.Record(playerID, kind, payload)
	}
}
