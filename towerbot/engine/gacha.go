package engine

import (
	"context"
	"sort"
	"time"

	"github.com/esprit-rpg/towerbot/towerbot/audit"
	"github.com/esprit-rpg/towerbot/towerbot/database/models"
)

// TierRate is one row of the summon probability table.
type TierRate struct {
	Tier   int
	Chance float64
}

// rollTier walks the rate table in ascending tier order, accumulating
// probability mass until the roll lands. A roll past the total mass falls
// through to the highest tier, so rounding in the configured rates can only
// ever favor the player.
func rollTier(roll float64, rates []TierRate) int {
	if len(rates) == 0 {
		return 1
	}
	cumulative := 0.0
	for _, rate := range rates {
		cumulative += rate.Chance
		if roll < cumulative {
			return rate.Tier
		}
	}
	return rates[len(rates)-1].Tier
}

// SummonResult reports one completed draw.
type SummonResult struct {
	Base       *models.EspritBase
	Tier       int
	TierName   string
	Quantity   int64
	New        bool
	IchorSpent int64
	IchorLeft  int64
}

// GachaEngine runs the gacha draw loop: pay ichor, roll a tier, pick a
// template, grow the owner's stack.
type GachaEngine struct {
	store    Store
	tuning   *Tuning
	recorder audit.Recorder
	rng      RandomSource
	now      func() time.Time
}

func NewGachaEngine(store Store, tuning *Tuning, recorder audit.Recorder, rng RandomSource) *GachaEngine {
	return &GachaEngine{store: store, tuning: tuning, recorder: recorder, rng: rng, now: time.Now}
}

// pickBase selects a uniform random template at the rolled tier, stepping
// down a tier at a time when the catalog has no entries there. An entirely
// empty catalog is a deployment fault, not a gameplay outcome.
func (e *GachaEngine) pickBase(ctx context.Context, tx Tx, tier int) (*models.EspritBase, int, error) {
	for t := tier; t >= 1; t-- {
		bases, err := tx.ListEspritBasesByTier(ctx, t)
		if err != nil {
			return nil, 0, err
		}
		if len(bases) > 0 {
			return bases[e.rng.IntN(len(bases))], t, nil
		}
	}
	return nil, 0, configurationf("esprit catalog has no templates at tier %d or below", tier)
}

// Summon performs one draw for the player.
func (e *GachaEngine) Summon(ctx context.Context, playerID int64) Result[SummonResult] {
	rates := e.tuning.SummonRates()
	if len(rates) == 0 {
		return fail[SummonResult]("summon", configurationf("summon rate table is empty"))
	}
	cost := e.tuning.SummonCost()

	var result SummonResult
	err := e.store.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		player, err := tx.GetPlayerForUpdate(ctx, playerID)
		if err != nil {
			return err
		}
		if err := debit(player, CurrencyIchor, cost); err != nil {
			return err
		}

		tier := rollTier(e.rng.Float64(), rates)
		base, landedTier, err := e.pickBase(ctx, tx, tier)
		if err != nil {
			return err
		}

		now := e.now().UTC()
		stack, err := tx.GetStackForUpdate(ctx, playerID, base.ID)
		switch {
		case err == nil:
			stack.Quantity++
			stack.Touch()
			if err := tx.UpdateStack(ctx, stack); err != nil {
				return err
			}
			result.New = stack.Quantity == 1
		case isNotFound(err):
			// Fresh stacks always begin at tier 1 regardless of the
			// template's rarity; fusion is the only path upward.
			stack = &models.Esprit{
				OwnerID:      playerID,
				BaseID:       base.ID,
				Quantity:     1,
				Tier:         1,
				Element:      base.Element,
				CreatedAt:    now,
				LastModified: now,
			}
			if err := tx.CreateStack(ctx, stack); err != nil {
				return err
			}
			result.New = true
		default:
			return err
		}

		if err := recomputePower(ctx, tx, e.tuning, player); err != nil {
			return err
		}
		player.UpdateActivity()
		if err := tx.UpdatePlayer(ctx, player); err != nil {
			return err
		}

		result.Base = base
		result.Tier = landedTier
		result.TierName = e.tuning.TierName(landedTier)
		result.Quantity = stack.Quantity
		result.IchorSpent = cost
		result.IchorLeft = player.Ichor
		return nil
	})
	if err != nil {
		return fail[SummonResult]("summon", err)
	}

	e.recorder.Record(playerID, audit.EspritSummoned, map[string]any{
		"base_id":  result.Base.ID,
		"name":     result.Base.Name,
		"tier":     result.Tier,
		"new":      result.New,
		"quantity": result.Quantity,
		"cost":     result.IchorSpent,
	})
	return ok(result)
}

// CollectionEntry is one owned stack with its template, for collection
// listings and detail views.
type CollectionEntry struct {
	Esprit *models.Esprit
	Base   *models.EspritBase
	Power  int64
}

// Collection lists the player's stacks, strongest template first. Fused-away
// remnants are hidden.
func (e *GachaEngine) Collection(ctx context.Context, playerID int64) Result[[]CollectionEntry] {
	esprits, err := e.store.ListOwnedEsprits(ctx, playerID)
	if err != nil {
		return fail[[]CollectionEntry]("collection.list", err)
	}

	entries := make([]CollectionEntry, 0, len(esprits))
	for _, esprit := range esprits {
		if esprit.Quantity <= 0 {
			continue
		}
		base := esprit.Base
		if base == nil {
			base, err = e.store.GetEspritBase(ctx, esprit.BaseID)
			if err != nil {
				return fail[[]CollectionEntry]("collection.list", err)
			}
		}
		atk, def := espritPower(base, esprit.Tier, e.tuning)
		entries = append(entries, CollectionEntry{
			Esprit: esprit,
			Base:   base,
			Power:  (atk + def) * esprit.Quantity,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Base.BaseTier != entries[j].Base.BaseTier {
			return entries[i].Base.BaseTier > entries[j].Base.BaseTier
		}
		if entries[i].Esprit.Tier != entries[j].Esprit.Tier {
			return entries[i].Esprit.Tier > entries[j].Esprit.Tier
		}
		return entries[i].Esprit.Quantity > entries[j].Esprit.Quantity
	})
	return ok(entries)
}

// Inspect returns one stack's detail view.
func (e *GachaEngine) Inspect(ctx context.Context, playerID, baseID int64) Result[CollectionEntry] {
	esprits, err := e.store.ListOwnedEsprits(ctx, playerID)
	if err != nil {
		return fail[CollectionEntry]("collection.inspect", err)
	}

	for _, esprit := range esprits {
		if esprit.BaseID != baseID || esprit.Quantity <= 0 {
			continue
		}
		base := esprit.Base
		if base == nil {
			base, err = e.store.GetEspritBase(ctx, baseID)
			if err != nil {
				return fail[CollectionEntry]("collection.inspect", err)
			}
		}
		atk, def := espritPower(base, esprit.Tier, e.tuning)
		return ok(CollectionEntry{
			Esprit: esprit,
			Base:   base,
			Power:  (atk + def) * esprit.Quantity,
		})
	}
	return fail[CollectionEntry]("collection.inspect", notFoundf("you do not own that esprit"))
}
