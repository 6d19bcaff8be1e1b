package engine

import (
	"context"
	"sort"

	"github.com/esprit-rpg/towerbot/towerbot/database/models"
)

// espritPower scales a template's base stats to the stack's current tier.
// Both stats share one multiplier so fusion never shifts the atk/def ratio.
func espritPower(base *models.EspritBase, tier int, tuning *Tuning) (atk, def int64) {
	mult := tuning.TierMultiplier(tier) * tuning.ElementBonus()
	atk = int64(float64(base.BaseAtk) * mult)
	def = int64(float64(base.BaseDef) * mult)
	return atk, def
}

// recomputePower rebuilds the cached combat aggregates from the full
// collection. Must run on a locked player row; callers persist the player.
func recomputePower(ctx context.Context, tx Tx, tuning *Tuning, player *models.Player) error {
	esprits, err := tx.ListOwnedEsprits(ctx, player.ID)
	if err != nil {
		return err
	}

	var totalAtk, totalDef int64
	for _, esprit := range esprits {
		if esprit.Quantity <= 0 {
			continue
		}
		base := esprit.Base
		if base == nil {
			base, err = tx.GetEspritBase(ctx, esprit.BaseID)
			if err != nil {
				return err
			}
		}
		atk, def := espritPower(base, esprit.Tier, tuning)
		totalAtk += atk * esprit.Quantity
		totalDef += def * esprit.Quantity
	}

	player.AttackPower = totalAtk
	player.DefensePower = totalDef
	return nil
}

// PowerBreakdown reports the refreshed aggregates.
type PowerBreakdown struct {
	AttackPower  int64
	DefensePower int64
	TotalPower   int64
	StackCount   int
}

// PowerContribution is one stack's share of a player's total power.
type PowerContribution struct {
	Base     *models.EspritBase
	Tier     int
	Quantity int64
	Power    int64
	Percent  float64
}

// PowerEngine recomputes the cached combat power from the collection.
type PowerEngine struct {
	store  Store
	tuning *Tuning
}

func NewPowerEngine(store Store, tuning *Tuning) *PowerEngine {
	return &PowerEngine{store: store, tuning: tuning}
}

// Refresh recomputes and persists the power cache, returning the breakdown.
func (e *PowerEngine) Refresh(ctx context.Context, playerID int64) Result[PowerBreakdown] {
	var breakdown PowerBreakdown
	err := e.store.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		player, err := tx.GetPlayerForUpdate(ctx, playerID)
		if err != nil {
			return err
		}
		if err := recomputePower(ctx, tx, e.tuning, player); err != nil {
			return err
		}
		if err := tx.UpdatePlayer(ctx, player); err != nil {
			return err
		}

		esprits, err := tx.ListOwnedEsprits(ctx, player.ID)
		if err != nil {
			return err
		}
		stacks := 0
		for _, esprit := range esprits {
			if esprit.Quantity > 0 {
				stacks++
			}
		}
		breakdown = PowerBreakdown{
			AttackPower:  player.AttackPower,
			DefensePower: player.DefensePower,
			TotalPower:   player.TotalPower(),
			StackCount:   stacks,
		}
		return nil
	})
	if err != nil {
		return fail[PowerBreakdown]("power.refresh", err)
	}
	return ok(breakdown)
}

// Contributions ranks the collection's stacks by their share of total power,
// trimmed to the ten biggest. Read-only, served from live collection data
// rather than the cached aggregates.
func (e *PowerEngine) Contributions(ctx context.Context, playerID int64) Result[[]PowerContribution] {
	esprits, err := e.store.ListOwnedEsprits(ctx, playerID)
	if err != nil {
		return fail[[]PowerContribution]("power.contributions", err)
	}

	contributions := make([]PowerContribution, 0, len(esprits))
	var total int64
	for _, esprit := range esprits {
		if esprit.Quantity <= 0 {
			continue
		}
		base := esprit.Base
		if base == nil {
			base, err = e.store.GetEspritBase(ctx, esprit.BaseID)
			if err != nil {
				return fail[[]PowerContribution]("power.contributions", err)
			}
		}
		atk, def := espritPower(base, esprit.Tier, e.tuning)
		power := (atk + def) * esprit.Quantity
		total += power
		contributions = append(contributions, PowerContribution{
			Base:     base,
			Tier:     esprit.Tier,
			Quantity: esprit.Quantity,
			Power:    power,
		})
	}

	sort.Slice(contributions, func(i, j int) bool {
		return contributions[i].Power > contributions[j].Power
	})
	if len(contributions) > 10 {
		contributions = contributions[:10]
	}
	if total > 0 {
		for i := range contributions {
			contributions[i].Percent = float64(contributions[i].Power) / float64(total) * 100.0
		}
	}
	return ok(contributions)
}
