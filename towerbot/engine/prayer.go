package engine

import (
	"context"
	"time"

	"github.com/esprit-rpg/towerbot/towerbot/audit"
	"github.com/esprit-rpg/towerbot/towerbot/database/models"
)

// PrayerResult reports one granted prayer.
type PrayerResult struct {
	IchorGained int64
	IchorTotal  int64
	NextPrayIn  time.Duration
}

// PrayerStatus is the read-only cooldown view.
type PrayerStatus struct {
	Ready         bool
	Remaining     time.Duration
	Notifications bool
}

// PrayerEngine grants the small timed ichor blessing.
type PrayerEngine struct {
	store    Store
	tuning   *Tuning
	recorder audit.Recorder
	now      func() time.Time
}

func NewPrayerEngine(store Store, tuning *Tuning, recorder audit.Recorder) *PrayerEngine {
	return &PrayerEngine{store: store, tuning: tuning, recorder: recorder, now: time.Now}
}

// Pray grants the ichor reward once per cooldown window.
func (e *PrayerEngine) Pray(ctx context.Context, playerID int64) Result[PrayerResult] {
	cooldown := e.tuning.PrayerCooldown()
	reward := e.tuning.PrayerReward()

	var result PrayerResult
	err := e.store.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		player, err := tx.GetPlayerForUpdate(ctx, playerID)
		if err != nil {
			return err
		}

		now := e.now().UTC()
		if !player.LastPrayTime.IsZero() {
			if elapsed := now.Sub(player.LastPrayTime); elapsed < cooldown {
				return cooldownf(cooldown-elapsed, "the altar is silent, come back soon")
			}
		}

		credit(player, CurrencyIchor, reward)
		player.LastPrayTime = now
		player.UpdateActivity()
		if err := tx.UpdatePlayer(ctx, player); err != nil {
			return err
		}

		result = PrayerResult{
			IchorGained: reward,
			IchorTotal:  player.Ichor,
			NextPrayIn:  cooldown,
		}
		return nil
	})
	if err != nil {
		return fail[PrayerResult]("prayer.pray", err)
	}

	e.recorder.Record(playerID, audit.CurrencyGain, map[string]any{
		"currency": string(CurrencyIchor),
		"amount":   result.IchorGained,
		"reason":   "prayer",
	})
	return ok(result)
}

// Status reports cooldown state without mutating anything.
func (e *PrayerEngine) Status(ctx context.Context, playerID int64) Result[PrayerStatus] {
	player, err := e.store.GetPlayer(ctx, playerID)
	if err != nil {
		return fail[PrayerStatus]("prayer.status", err)
	}

	status := PrayerStatus{Ready: true, Notifications: player.PrayNotifications}
	if !player.LastPrayTime.IsZero() {
		if elapsed := e.now().UTC().Sub(player.LastPrayTime); elapsed < e.tuning.PrayerCooldown() {
			status.Ready = false
			status.Remaining = e.tuning.PrayerCooldown() - elapsed
		}
	}
	return ok(status)
}

// ToggleNotifications flips the prayer-ready DM preference.
func (e *PrayerEngine) ToggleNotifications(ctx context.Context, playerID int64) Result[bool] {
	var enabled bool
	err := e.store.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		player, err := tx.GetPlayerForUpdate(ctx, playerID)
		if err != nil {
			return err
		}
		player.PrayNotifications = !player.PrayNotifications
		enabled = player.PrayNotifications
		return tx.UpdatePlayer(ctx, player)
	})
	if err != nil {
		return fail[bool]("prayer.toggle_notifications", err)
	}
	return ok(enabled)
}

// ReadyForNotification lists opted-in players whose cooldown has lapsed,
// for the background notifier loop.
func (e *PrayerEngine) ReadyForNotification(ctx context.Context) ([]*models.Player, error) {
	cutoff := e.now().UTC().Add(-e.tuning.PrayerCooldown())
	return e.store.ListPrayerReady(ctx, cutoff)
}
