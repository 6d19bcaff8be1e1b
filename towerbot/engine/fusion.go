package engine

import (
	"context"
	"time"

	"github.com/esprit-rpg/towerbot/towerbot/audit"
	"github.com/esprit-rpg/towerbot/towerbot/database/models"
)

// fusionEligible reports whether a stack can fuse: two copies to merge and
// headroom below the tier ceiling.
func fusionEligible(stack *models.Esprit, maxTier int) bool {
	return stack.Quantity >= 2 && stack.Tier < maxTier
}

// FusionResult reports one completed fusion.
type FusionResult struct {
	Base       *models.EspritBase
	NewTier    int
	TierName   string
	Quantity   int64
	SeiosSpent int64
	SeiosLeft  int64
	TotalPower int64
}

// FusionCandidate is one fusable stack from the preview listing.
type FusionCandidate struct {
	Esprit *models.Esprit
	Base   *models.EspritBase
	Cost   int64
}

// FusionEngine merges two copies of a stack into one copy a tier higher,
// for a seios fee that grows with the stack's current tier.
type FusionEngine struct {
	store    Store
	tuning   *Tuning
	recorder audit.Recorder
	now      func() time.Time
}

func NewFusionEngine(store Store, tuning *Tuning, recorder audit.Recorder) *FusionEngine {
	return &FusionEngine{store: store, tuning: tuning, recorder: recorder, now: time.Now}
}

// Candidates lists the player's fusable stacks with their current fusion
// price. Read-only; no locks taken.
func (e *FusionEngine) Candidates(ctx context.Context, playerID int64) Result[[]FusionCandidate] {
	esprits, err := e.store.ListOwnedEsprits(ctx, playerID)
	if err != nil {
		return fail[[]FusionCandidate]("fusion.candidates", err)
	}

	maxTier := e.tuning.FusionMaxTier()
	candidates := make([]FusionCandidate, 0, len(esprits))
	for _, esprit := range esprits {
		if !fusionEligible(esprit, maxTier) {
			continue
		}
		base := esprit.Base
		if base == nil {
			base, err = e.store.GetEspritBase(ctx, esprit.BaseID)
			if err != nil {
				return fail[[]FusionCandidate]("fusion.candidates", err)
			}
		}
		candidates = append(candidates, FusionCandidate{
			Esprit: esprit,
			Base:   base,
			Cost:   e.tuning.FusionCost(esprit.Tier),
		})
	}
	return ok(candidates)
}

// FusionPreview shows what a fusion would do before committing to it.
type FusionPreview struct {
	Base       *models.EspritBase
	Tier       int
	NextTier   int
	Quantity   int64
	Cost       int64
	Eligible   bool
	Reason     string
	PowerDelta int64
}

// Preview computes the outcome of fusing a stack without mutating anything.
func (e *FusionEngine) Preview(ctx context.Context, playerID, baseID int64) Result[FusionPreview] {
	esprits, err := e.store.ListOwnedEsprits(ctx, playerID)
	if err != nil {
		return fail[FusionPreview]("fusion.preview", err)
	}

	var stack *models.Esprit
	for _, esprit := range esprits {
		if esprit.BaseID == baseID {
			stack = esprit
			break
		}
	}
	if stack == nil {
		return fail[FusionPreview]("fusion.preview", notFoundf("you do not own that esprit"))
	}

	base := stack.Base
	if base == nil {
		base, err = e.store.GetEspritBase(ctx, baseID)
		if err != nil {
			return fail[FusionPreview]("fusion.preview", err)
		}
	}

	preview := FusionPreview{
		Base:     base,
		Tier:     stack.Tier,
		NextTier: stack.Tier + 1,
		Quantity: stack.Quantity,
		Cost:     e.tuning.FusionCost(stack.Tier),
	}

	maxTier := e.tuning.FusionMaxTier()
	switch {
	case stack.Quantity < 2:
		preview.Reason = "fusion needs two copies"
	case stack.Tier >= maxTier:
		preview.Reason = "already at the maximum tier"
	default:
		preview.Eligible = true
		// Power shifts from quantity copies at the old tier to
		// quantity-1 copies at the new one.
		oldAtk, oldDef := espritPower(base, stack.Tier, e.tuning)
		newAtk, newDef := espritPower(base, stack.Tier+1, e.tuning)
		preview.PowerDelta = (newAtk+newDef)*(stack.Quantity-1) - (oldAtk+oldDef)*stack.Quantity
	}
	return ok(preview)
}

// Fuse consumes two copies from the stack and promotes it one tier. The
// currency charge, the stack mutation and the power refresh commit together
// or not at all.
func (e *FusionEngine) Fuse(ctx context.Context, playerID, baseID int64) Result[FusionResult] {
	maxTier := e.tuning.FusionMaxTier()

	var result FusionResult
	err := e.store.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		player, err := tx.GetPlayerForUpdate(ctx, playerID)
		if err != nil {
			return err
		}
		stack, err := tx.GetStackForUpdate(ctx, playerID, baseID)
		if err != nil {
			if isNotFound(err) {
				return notFoundf("you do not own that esprit")
			}
			return err
		}

		if stack.Quantity < 2 {
			return validationf("fusion needs two copies, you have %d", stack.Quantity)
		}
		if stack.Tier >= maxTier {
			return validationf("this esprit is already at the maximum tier %d", maxTier)
		}

		cost := e.tuning.FusionCost(stack.Tier)
		if err := debit(player, CurrencySeios, cost); err != nil {
			return err
		}

		stack.Quantity--
		stack.Tier++
		stack.Touch()
		if err := tx.UpdateStack(ctx, stack); err != nil {
			return err
		}

		if err := recomputePower(ctx, tx, e.tuning, player); err != nil {
			return err
		}
		player.UpdateActivity()
		if err := tx.UpdatePlayer(ctx, player); err != nil {
			return err
		}

		base := stack.Base
		if base == nil {
			base, err = tx.GetEspritBase(ctx, stack.BaseID)
			if err != nil {
				return err
			}
		}
		result = FusionResult{
			Base:       base,
			NewTier:    stack.Tier,
			TierName:   e.tuning.TierName(stack.Tier),
			Quantity:   stack.Quantity,
			SeiosSpent: cost,
			SeiosLeft:  player.Seios,
			TotalPower: player.TotalPower(),
		}
		return nil
	})
	if err != nil {
		return fail[FusionResult]("fusion.fuse", err)
	}

	e.recorder.Record(playerID, audit.EspritFused, map[string]any{
		"base_id":  baseID,
		"name":     result.Base.Name,
		"new_tier": result.NewTier,
		"quantity": result.Quantity,
		"cost":     result.SeiosSpent,
	})
	return ok(result)
}
