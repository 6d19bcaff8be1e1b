package engine

import (
	"context"
	"testing"
	"time"

	"github.com/esprit-rpg/towerbot/towerbot/database/models"
)

func TestApplyRegen(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	interval := 5 * time.Minute

	tests := []struct {
		name      string
		current   int
		cap       int
		elapsed   time.Duration
		wantValue int
		wantLast  time.Duration // offset of the new anchor from base
	}{
		{"no interval elapsed", 10, 50, 4 * time.Minute, 10, 0},
		{"one interval", 10, 50, 5 * time.Minute, 11, 5 * time.Minute},
		{"partial interval kept", 10, 50, 12 * time.Minute, 12, 10 * time.Minute},
		{"many intervals", 10, 50, 3 * time.Hour, 46, 3 * time.Hour},
		{"clamped at cap", 48, 50, time.Hour, 50, time.Hour},
		{"already at cap untouched", 50, 50, 10 * time.Hour, 50, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := applyRegen(tt.current, tt.cap, base, base.Add(tt.elapsed), interval, 1)
			if got.Value != tt.wantValue {
				t.Errorf("value = %d, want %d", got.Value, tt.wantValue)
			}
			if want := base.Add(tt.wantLast); !got.LastRegen.Equal(want) {
				t.Errorf("anchor = %v, want %v", got.LastRegen, want)
			}
		})
	}
}

func TestApplyRegenIdempotent(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := base.Add(17 * time.Minute)
	interval := 5 * time.Minute

	once := applyRegen(10, 50, base, now, interval, 1)
	twice := applyRegen(once.Value, 50, once.LastRegen, now, interval, 1)

	if twice.Value != once.Value {
		t.Errorf("second application changed value: %d -> %d", once.Value, twice.Value)
	}
	if !twice.LastRegen.Equal(once.LastRegen) {
		t.Errorf("second application moved anchor: %v -> %v", once.LastRegen, twice.LastRegen)
	}
}

func TestResourceStatusPersistsRegen(t *testing.T) {
	store := newMemStore()
	tuning := testTuning(t)
	player := seedPlayer(store, "100", func(p *models.Player) {
		p.Energy = 10
		p.Stamina = 5
	})

	eng := NewResourceEngine(store, tuning, &captureRecorder{})
	start := player.LastEnergyRegen
	eng.now = func() time.Time { return start.Add(25 * time.Minute) }

	res := eng.Status(context.Background(), player.ID)
	if !res.Success {
		t.Fatalf("status failed: %s %s", res.ErrorKind, res.Message)
	}
	if res.Data.Energy != 15 || res.Data.Stamina != 10 {
		t.Errorf("pools = %d/%d, want 15/10", res.Data.Energy, res.Data.Stamina)
	}

	stored := store.player(player.ID)
	if stored.Energy != 15 || stored.Stamina != 10 {
		t.Errorf("persisted pools = %d/%d, want 15/10", stored.Energy, stored.Stamina)
	}

	// A second call at the same instant must not change anything.
	again := eng.Status(context.Background(), player.ID)
	if again.Data.Energy != 15 || again.Data.Stamina != 10 {
		t.Errorf("repeat status changed pools to %d/%d", again.Data.Energy, again.Data.Stamina)
	}
}

func TestResourceConsume(t *testing.T) {
	store := newMemStore()
	tuning := testTuning(t)
	player := seedPlayer(store, "101", func(p *models.Player) {
		p.Stamina = 3
	})

	rec := &captureRecorder{}
	eng := NewResourceEngine(store, tuning, rec)
	eng.now = func() time.Time { return player.LastStaminaRegen }

	res := eng.Consume(context.Background(), player.ID, ResourceStamina, 2, "testing")
	if !res.Success {
		t.Fatalf("consume failed: %s", res.Message)
	}
	if res.Data.Stamina != 1 {
		t.Errorf("stamina = %d, want 1", res.Data.Stamina)
	}
	if got := len(rec.byKind("resource_consume")); got != 1 {
		t.Errorf("audit events = %d, want 1", got)
	}
	if stored := store.player(player.ID); stored.Stamina != 1 {
		t.Errorf("persisted stamina = %d, want 1", stored.Stamina)
	}

	short := eng.Consume(context.Background(), player.ID, ResourceStamina, 5, "testing")
	if short.Success {
		t.Fatal("expected insufficiency")
	}
	if short.ErrorKind != ErrInsufficientResource {
		t.Errorf("kind = %s, want %s", short.ErrorKind, ErrInsufficientResource)
	}
	if short.Shortage != 4 {
		t.Errorf("shortage = %d, want 4", short.Shortage)
	}
	if stored := store.player(player.ID); stored.Stamina != 1 {
		t.Errorf("failed consume mutated stamina to %d", stored.Stamina)
	}
}

func TestResourceConsumeRegeneratesFirst(t *testing.T) {
	store := newMemStore()
	tuning := testTuning(t)
	player := seedPlayer(store, "102", func(p *models.Player) {
		p.Energy = 0
	})

	eng := NewResourceEngine(store, tuning, &captureRecorder{})
	eng.now = func() time.Time { return player.LastEnergyRegen.Add(10 * time.Minute) }

	res := eng.Consume(context.Background(), player.ID, ResourceEnergy, 2, "testing")
	if !res.Success {
		t.Fatalf("consume should succeed after regen, got %s", res.Message)
	}
	if res.Data.Energy != 0 {
		t.Errorf("energy = %d, want 0", res.Data.Energy)
	}
}

func TestResourceValidateReadOnly(t *testing.T) {
	store := newMemStore()
	tuning := testTuning(t)
	player := seedPlayer(store, "103", func(p *models.Player) {
		p.Stamina = 1
	})

	eng := NewResourceEngine(store, tuning, &captureRecorder{})
	eng.now = func() time.Time { return player.LastStaminaRegen.Add(10 * time.Minute) }

	// 1 stored + 2 regenerated = 3 available.
	res := eng.Validate(context.Background(), player.ID, ResourceStamina, 5)
	if !res.Success {
		t.Fatalf("validate failed: %s", res.Message)
	}
	if res.Data.CanAfford {
		t.Error("expected shortfall")
	}
	if res.Data.Available != 3 || res.Data.Shortage != 2 {
		t.Errorf("available = %d shortage = %d, want 3/2", res.Data.Available, res.Data.Shortage)
	}

	affordable := eng.Validate(context.Background(), player.ID, ResourceStamina, 3)
	if !affordable.Data.CanAfford {
		t.Error("pending regen should cover the cost")
	}

	// Validation must not persist the simulated regen.
	if stored := store.player(player.ID); stored.Stamina != 1 {
		t.Errorf("validate persisted stamina %d", stored.Stamina)
	}
}

func TestResourceCapGrowsWithLevel(t *testing.T) {
	tuning := testTuning(t)
	if got := tuning.EnergyCap(1); got != 50 {
		t.Errorf("energy cap L1 = %d, want 50", got)
	}
	if got := tuning.EnergyCap(5); got != 90 {
		t.Errorf("energy cap L5 = %d, want 90", got)
	}
	if got := tuning.StaminaCap(4); got != 40 {
		t.Errorf("stamina cap L4 = %d, want 40", got)
	}
}
