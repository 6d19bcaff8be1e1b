package engine

import (
	"context"
	"testing"
	"time"

	"github.com/esprit-rpg/towerbot/towerbot/database/models"
)

func TestPray(t *testing.T) {
	store := newMemStore()
	player := seedPlayer(store, "800", func(p *models.Player) { p.Ichor = 0 })
	rec := &captureRecorder{}
	eng := NewPrayerEngine(store, testTuning(t), rec)

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	eng.now = func() time.Time { return start }

	res := eng.Pray(context.Background(), player.ID)
	if !res.Success {
		t.Fatalf("pray failed: %s", res.Message)
	}
	if res.Data.IchorGained != 1 || res.Data.IchorTotal != 1 {
		t.Errorf("ichor = +%d total %d, want +1 total 1", res.Data.IchorGained, res.Data.IchorTotal)
	}

	// Second prayer inside the window is refused with the remaining wait.
	eng.now = func() time.Time { return start.Add(2 * time.Minute) }
	blocked := eng.Pray(context.Background(), player.ID)
	if blocked.ErrorKind != ErrCooldownActive {
		t.Fatalf("kind = %s, want %s", blocked.ErrorKind, ErrCooldownActive)
	}
	if blocked.Remaining != 3*time.Minute {
		t.Errorf("remaining = %v, want 3m", blocked.Remaining)
	}
	if store.player(player.ID).Ichor != 1 {
		t.Error("blocked prayer granted ichor")
	}

	// After the cooldown it works again.
	eng.now = func() time.Time { return start.Add(5 * time.Minute) }
	again := eng.Pray(context.Background(), player.ID)
	if !again.Success {
		t.Fatalf("post-cooldown pray failed: %s", again.Message)
	}
	if again.Data.IchorTotal != 2 {
		t.Errorf("total = %d, want 2", again.Data.IchorTotal)
	}
	if got := len(rec.byKind("currency_gain")); got != 2 {
		t.Errorf("gain events = %d, want 2", got)
	}
}

func TestPrayerStatus(t *testing.T) {
	store := newMemStore()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	player := seedPlayer(store, "801", func(p *models.Player) {
		p.LastPrayTime = start
	})
	eng := NewPrayerEngine(store, testTuning(t), &captureRecorder{})
	eng.now = func() time.Time { return start.Add(time.Minute) }

	res := eng.Status(context.Background(), player.ID)
	if !res.Success {
		t.Fatalf("status failed: %s", res.Message)
	}
	if res.Data.Ready {
		t.Error("should still be cooling down")
	}
	if res.Data.Remaining != 4*time.Minute {
		t.Errorf("remaining = %v, want 4m", res.Data.Remaining)
	}

	eng.now = func() time.Time { return start.Add(10 * time.Minute) }
	later := eng.Status(context.Background(), player.ID)
	if !later.Data.Ready {
		t.Error("cooldown should have lapsed")
	}
}

func TestToggleNotifications(t *testing.T) {
	store := newMemStore()
	player := seedPlayer(store, "802", nil)
	eng := NewPrayerEngine(store, testTuning(t), &captureRecorder{})

	on := eng.ToggleNotifications(context.Background(), player.ID)
	if !on.Success || !on.Data {
		t.Fatalf("first toggle = %v (%s)", on.Data, on.Message)
	}
	off := eng.ToggleNotifications(context.Background(), player.ID)
	if off.Data {
		t.Error("second toggle should disable")
	}
}

func TestReadyForNotification(t *testing.T) {
	store := newMemStore()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	ready := seedPlayer(store, "803", func(p *models.Player) {
		p.PrayNotifications = true
		p.LastPrayTime = start.Add(-10 * time.Minute)
	})
	seedPlayer(store, "804", func(p *models.Player) {
		p.PrayNotifications = true
		p.LastPrayTime = start.Add(-time.Minute)
	})
	seedPlayer(store, "805", func(p *models.Player) {
		p.PrayNotifications = false
		p.LastPrayTime = start.Add(-10 * time.Minute)
	})

	eng := NewPrayerEngine(store, testTuning(t), &captureRecorder{})
	eng.now = func() time.Time { return start }

	players, err := eng.ReadyForNotification(context.Background())
	if err != nil {
		t.Fatalf("listing failed: %v", err)
	}
	if len(players) != 1 || players[0].ID != ready.ID {
		t.Errorf("ready players = %v, want just %d", players, ready.ID)
	}
}
