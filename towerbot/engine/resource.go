package engine

import (
	"context"
	"time"

	"github.com/esprit-rpg/towerbot/towerbot/audit"
	"github.com/esprit-rpg/towerbot/towerbot/database/models"
)

// ResourceKind identifies one of the two regenerating pools.
type ResourceKind string

const (
	ResourceEnergy  ResourceKind = "energy"
	ResourceStamina ResourceKind = "stamina"
)

func (k ResourceKind) Valid() bool {
	return k == ResourceEnergy || k == ResourceStamina
}

// regenResult is the outcome of applying lazy regeneration to one pool.
type regenResult struct {
	Value     int
	LastRegen time.Time
	Gained    int
}

// applyRegen advances a regenerating pool to now. Only whole elapsed
// intervals count; the regen anchor moves forward by exactly the intervals
// consumed so fractional progress toward the next point is never lost. A pool
// already at cap keeps its anchor untouched.
func applyRegen(current, cap int, last time.Time, now time.Time, interval time.Duration, amount int) regenResult {
	if current >= cap || interval <= 0 || amount <= 0 {
		return regenResult{Value: current, LastRegen: last}
	}
	elapsed := now.Sub(last)
	if elapsed < interval {
		return regenResult{Value: current, LastRegen: last}
	}

	intervals := int64(elapsed / interval)
	gained := int(intervals) * amount
	value := current + gained
	if value > cap {
		value = cap
	}
	return regenResult{
		Value:     value,
		LastRegen: last.Add(time.Duration(intervals) * interval),
		Gained:    value - current,
	}
}

// regenerate applies both pools to a locked player row in place.
func regenerate(p *models.Player, tuning *Tuning, now time.Time) {
	interval, amount := tuning.EnergyRegen()
	energy := applyRegen(p.Energy, tuning.EnergyCap(p.Level), p.LastEnergyRegen, now, interval, amount)
	p.Energy = energy.Value
	p.LastEnergyRegen = energy.LastRegen

	interval, amount = tuning.StaminaRegen()
	stamina := applyRegen(p.Stamina, tuning.StaminaCap(p.Level), p.LastStaminaRegen, now, interval, amount)
	p.Stamina = stamina.Value
	p.LastStaminaRegen = stamina.LastRegen
}

// consumeStamina regenerates first, then deducts, so a player is never
// charged against a stale pool value.
func consumeStamina(p *models.Player, tuning *Tuning, now time.Time, amount int) *Error {
	regenerate(p, tuning, now)
	if p.Stamina < amount {
		return insufficientf(int64(amount-p.Stamina), "not enough stamina: need %d, have %d", amount, p.Stamina)
	}
	p.Stamina -= amount
	return nil
}

func consumeEnergy(p *models.Player, tuning *Tuning, now time.Time, amount int) *Error {
	regenerate(p, tuning, now)
	if p.Energy < amount {
		return insufficientf(int64(amount-p.Energy), "not enough energy: need %d, have %d", amount, p.Energy)
	}
	p.Energy -= amount
	return nil
}

// ResourceStatus reports both pools after regeneration, plus the wait until
// the next regeneration point for pools below cap.
type ResourceStatus struct {
	Energy           int
	EnergyCap        int
	Stamina          int
	StaminaCap       int
	NextEnergyRegen  time.Duration
	NextStaminaRegen time.Duration
}

// ResourceEngine applies lazy regeneration and serves pool status.
type ResourceEngine struct {
	store    Store
	tuning   *Tuning
	recorder audit.Recorder
	now      func() time.Time
}

func NewResourceEngine(store Store, tuning *Tuning, recorder audit.Recorder) *ResourceEngine {
	return &ResourceEngine{store: store, tuning: tuning, recorder: recorder, now: time.Now}
}

// Status regenerates both pools to now, persists the result and reports it.
// Calling it repeatedly within one interval is a no-op on the stored state.
func (e *ResourceEngine) Status(ctx context.Context, playerID int64) Result[ResourceStatus] {
	var status ResourceStatus
	err := e.store.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		player, err := tx.GetPlayerForUpdate(ctx, playerID)
		if err != nil {
			return err
		}

		now := e.now().UTC()
		regenerate(player, e.tuning, now)
		if err := tx.UpdatePlayer(ctx, player); err != nil {
			return err
		}

		status = ResourceStatus{
			Energy:     player.Energy,
			EnergyCap:  e.tuning.EnergyCap(player.Level),
			Stamina:    player.Stamina,
			StaminaCap: e.tuning.StaminaCap(player.Level),
		}
		energyInterval, _ := e.tuning.EnergyRegen()
		staminaInterval, _ := e.tuning.StaminaRegen()
		if status.Energy < status.EnergyCap {
			status.NextEnergyRegen = player.LastEnergyRegen.Add(energyInterval).Sub(now)
		}
		if status.Stamina < status.StaminaCap {
			status.NextStaminaRegen = player.LastStaminaRegen.Add(staminaInterval).Sub(now)
		}
		return nil
	})
	if err != nil {
		return fail[ResourceStatus]("resource.status", err)
	}
	return ok(status)
}

// Consume deducts from one pool after bringing it up to date.
func (e *ResourceEngine) Consume(ctx context.Context, playerID int64, kind ResourceKind, amount int, purpose string) Result[ResourceStatus] {
	if !kind.Valid() {
		return fail[ResourceStatus]("resource.consume", validationf("unknown resource %q", kind))
	}
	if amount <= 0 {
		return fail[ResourceStatus]("resource.consume", validationf("amount must be positive, got %d", amount))
	}

	var status ResourceStatus
	err := e.store.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		player, err := tx.GetPlayerForUpdate(ctx, playerID)
		if err != nil {
			return err
		}

		// The helpers return a typed *Error; assigning a nil one into an
		// error variable would make it non-nil, so unwrap in its own scope.
		now := e.now().UTC()
		if kind == ResourceEnergy {
			if consumeErr := consumeEnergy(player, e.tuning, now, amount); consumeErr != nil {
				return consumeErr
			}
		} else {
			if consumeErr := consumeStamina(player, e.tuning, now, amount); consumeErr != nil {
				return consumeErr
			}
		}

		player.UpdateActivity()
		if err := tx.UpdatePlayer(ctx, player); err != nil {
			return err
		}
		status = ResourceStatus{
			Energy:     player.Energy,
			EnergyCap:  e.tuning.EnergyCap(player.Level),
			Stamina:    player.Stamina,
			StaminaCap: e.tuning.StaminaCap(player.Level),
		}
		return nil
	})
	if err != nil {
		return fail[ResourceStatus]("resource.consume", err)
	}

	e.recorder.Record(playerID, audit.ResourceConsume, map[string]any{
		"resource": string(kind),
		"amount":   amount,
		"purpose":  purpose,
	})
	return ok(status)
}

// ResourceCheck is the read-only affordability answer.
type ResourceCheck struct {
	CanAfford bool
	Available int
	Shortage  int
}

// Validate answers whether the player could pay the cost right now,
// counting regeneration that has accrued but not yet been persisted.
func (e *ResourceEngine) Validate(ctx context.Context, playerID int64, kind ResourceKind, amount int) Result[ResourceCheck] {
	if !kind.Valid() {
		return fail[ResourceCheck]("resource.validate", validationf("unknown resource %q", kind))
	}
	if amount <= 0 {
		return fail[ResourceCheck]("resource.validate", validationf("amount must be positive, got %d", amount))
	}

	player, err := e.store.GetPlayer(ctx, playerID)
	if err != nil {
		return fail[ResourceCheck]("resource.validate", err)
	}

	now := e.now().UTC()
	var available int
	if kind == ResourceEnergy {
		interval, regen := e.tuning.EnergyRegen()
		available = applyRegen(player.Energy, e.tuning.EnergyCap(player.Level), player.LastEnergyRegen, now, interval, regen).Value
	} else {
		interval, regen := e.tuning.StaminaRegen()
		available = applyRegen(player.Stamina, e.tuning.StaminaCap(player.Level), player.LastStaminaRegen, now, interval, regen).Value
	}

	check := ResourceCheck{CanAfford: available >= amount, Available: available}
	if !check.CanAfford {
		check.Shortage = amount - available
	}
	return ok(check)
}
