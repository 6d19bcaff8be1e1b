package engine

import (
	"context"
	"time"

	"github.com/esprit-rpg/towerbot/towerbot/audit"
	"github.com/esprit-rpg/towerbot/towerbot/database/models"
)

// CombatEfficiency describes how a player's power measures against a floor.
type CombatEfficiency struct {
	PlayerPower      int64
	FloorRequirement int64
	Efficiency       float64
	CanAttempt       bool
	Recommended      bool
}

// combatEfficiency compares cached power to the floor requirement. The ratio
// is capped so overwhelming power cannot trivialize deep-floor pacing, and
// attempts below the minimum are blocked outright.
func combatEfficiency(power int64, floor int, tuning *Tuning) CombatEfficiency {
	requirement := tuning.FloorRequirement(floor)
	efficiency := 1.0
	if requirement > 0 {
		efficiency = float64(power) / float64(requirement)
		if cap := tuning.EfficiencyCap(); efficiency > cap {
			efficiency = cap
		}
	}
	return CombatEfficiency{
		PlayerPower:      power,
		FloorRequirement: requirement,
		Efficiency:       efficiency,
		CanAttempt:       efficiency >= tuning.MinEfficiency(),
		Recommended:      efficiency >= 1.0,
	}
}

// CombatReport is the outcome of one boss fight.
type CombatReport struct {
	BossMaxHealth       float64
	DamageDealt         int64
	BossHealthRemaining float64
	Victory             bool
	StaminaUsed         int
}

// simulateCombat resolves a boss fight. Each point of stamina deals the
// efficiency's worth of base boss health in damage, swung by the variance
// roll (uniform in [1-v, 1+v]).
func simulateCombat(eff CombatEfficiency, staminaUsed, floor int, roll float64, tuning *Tuning) CombatReport {
	bossHealth := tuning.BossHealth(floor)
	variance := tuning.DamageVariance()
	swing := 1.0 + (roll*2.0-1.0)*variance

	damage := int64(eff.Efficiency * tuning.BaseBossHealth() * float64(staminaUsed) * swing)
	remaining := bossHealth - float64(damage)
	if remaining < 0 {
		remaining = 0
	}
	return CombatReport{
		BossMaxHealth:       bossHealth,
		DamageDealt:         damage,
		BossHealthRemaining: remaining,
		Victory:             float64(damage) >= bossHealth,
		StaminaUsed:         staminaUsed,
	}
}

// RaidLoot is the reward bundle from one idle collection.
type RaidLoot struct {
	Seios      int64
	Erythl     int64
	BonusSeios int64
	Encounter  bool
}

// calculateRaidLoot rolls the idle rewards for a stretch of hours on a floor.
// Seios scales linearly with time and 10% per floor past the first; erythl is
// a single rare roll whose odds grow with idle time; a treasure encounter
// adds a flat bonus. rolls: [0] erythl gate, [1] encounter gate.
func calculateRaidLoot(floor int, idleHours float64, rng RandomSource, tuning *Tuning) RaidLoot {
	seiosPerHour := tuning.SeiosPerHour() * (1.0 + float64(floor-1)*tuning.FloorBonusRate())
	loot := RaidLoot{Seios: int64(seiosPerHour * idleHours)}

	erythlChance := tuning.ErythlChancePerHour() * idleHours
	if erythlChance > 1.0 {
		erythlChance = 1.0
	}
	if rng.Float64() < erythlChance {
		maxRoll := floor / 10
		if maxRoll < 1 {
			maxRoll = 1
		}
		loot.Erythl = int64(1 + rng.IntN(maxRoll))
	}

	if rng.Float64() < tuning.EncounterChancePerHour()*idleHours {
		loot.Encounter = true
		loot.BonusSeios = int64(50 + rng.IntN(151))
	}
	return loot
}

// idleAnchor is the instant idle accrual starts from: the later of the last
// raid and the last climb, so advancing a floor restarts the clock. A player
// who has done neither starts accruing now.
func idleAnchor(p *models.Player, now time.Time) time.Time {
	anchor := p.LastRaidTime
	if p.LastClimbTime.After(anchor) {
		anchor = p.LastClimbTime
	}
	if anchor.IsZero() {
		return now
	}
	return anchor
}

// raidProgressGain is the floor-unlock progress earned from idle hours.
// Stronger players progress faster, up to double rate.
func raidProgressGain(power, floorRequirement int64, idleHours float64, tuning *Tuning) float64 {
	efficiency := 1.0
	if floorRequirement > 0 {
		efficiency = float64(power) / float64(floorRequirement)
		if cap := tuning.ProgressEfficiencyCap(); efficiency > cap {
			efficiency = cap
		}
	}
	gain := tuning.ProgressPerHour() * efficiency * idleHours
	if gain > 1.0 {
		gain = 1.0
	}
	return gain
}

// ClimbResult reports one floor attempt.
type ClimbResult struct {
	Victory    bool
	FromFloor  int
	ToFloor    int
	NewHighest bool
	Combat     CombatReport
	Efficiency CombatEfficiency
}

// RaidResult reports one idle collection.
type RaidResult struct {
	Floor          int
	IdleHours      float64
	Loot           RaidLoot
	ProgressGained float64
	TotalProgress  float64
	ReadyToClimb   bool
}

// TowerStatus is the read-only tower overview.
type TowerStatus struct {
	CurrentFloor  int
	HighestFloor  int
	TotalClears   int
	RaidProgress  float64
	ReadyToClimb  bool
	FloorTheme    string
	Efficiency    CombatEfficiency
	HoursIdle     float64
	EstimatedLoot int64
}

// TowerEngine drives the active climb loop and the idle raid loop.
type TowerEngine struct {
	store    Store
	tuning   *Tuning
	recorder audit.Recorder
	rng      RandomSource
	now      func() time.Time
}

func NewTowerEngine(store Store, tuning *Tuning, recorder audit.Recorder, rng RandomSource) *TowerEngine {
	return &TowerEngine{store: store, tuning: tuning, recorder: recorder, rng: rng, now: time.Now}
}

// Climb spends stamina on a boss attempt at the current floor. Victory
// advances the floor and resets raid progress; defeat only costs the stamina.
func (e *TowerEngine) Climb(ctx context.Context, playerID int64, staminaToUse int) Result[ClimbResult] {
	if staminaToUse < 1 {
		return fail[ClimbResult]("tower.climb", validationf("must use at least 1 stamina"))
	}

	var result ClimbResult
	err := e.store.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		player, err := tx.GetPlayerForUpdate(ctx, playerID)
		if err != nil {
			return err
		}

		floor := player.CurrentFloor
		eff := combatEfficiency(player.TotalPower(), floor, e.tuning)
		if !eff.CanAttempt {
			return underpoweredf("floor %d needs %d power, you have %d",
				floor, eff.FloorRequirement, eff.PlayerPower)
		}

		now := e.now().UTC()
		if err := consumeStamina(player, e.tuning, now, staminaToUse); err != nil {
			return err
		}

		combat := simulateCombat(eff, staminaToUse, floor, e.rng.Float64(), e.tuning)
		result = ClimbResult{
			Victory:    combat.Victory,
			FromFloor:  floor,
			ToFloor:    floor,
			Combat:     combat,
			Efficiency: eff,
		}

		if combat.Victory {
			player.CurrentFloor = floor + 1
			if player.CurrentFloor > player.HighestFloorReached {
				player.HighestFloorReached = player.CurrentFloor
				result.NewHighest = true
			}
			player.TotalFloorClears++
			player.TotalBossKills++
			player.RaidProgress = 0
			result.ToFloor = player.CurrentFloor
		}

		player.LastClimbTime = now
		player.UpdateActivity()
		return tx.UpdatePlayer(ctx, player)
	})
	if err != nil {
		return fail[ClimbResult]("tower.climb", err)
	}

	if result.Victory {
		e.recorder.Record(playerID, audit.FloorCleared, map[string]any{
			"from_floor":   result.FromFloor,
			"to_floor":     result.ToFloor,
			"stamina_used": result.Combat.StaminaUsed,
			"efficiency":   result.Efficiency.Efficiency,
			"damage_dealt": result.Combat.DamageDealt,
		})
	} else {
		e.recorder.Record(playerID, audit.FloorAttemptFailed, map[string]any{
			"floor":                 result.FromFloor,
			"stamina_used":          result.Combat.StaminaUsed,
			"damage_dealt":          result.Combat.DamageDealt,
			"boss_health_remaining": result.Combat.BossHealthRemaining,
		})
	}
	return ok(result)
}

// Raid collects idle loot accrued since the later of the last collection and
// the last climb. Idle time is capped, and collections inside the minimum
// window are rejected with the remaining wait.
func (e *TowerEngine) Raid(ctx context.Context, playerID int64) Result[RaidResult] {
	var result RaidResult
	err := e.store.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		player, err := tx.GetPlayerForUpdate(ctx, playerID)
		if err != nil {
			return err
		}

		now := e.now().UTC()
		idleHours := now.Sub(idleAnchor(player, now)).Hours()
		if idleHours > e.tuning.MaxIdleHours() {
			idleHours = e.tuning.MaxIdleHours()
		}
		if minHours := e.tuning.MinIdleHours(); idleHours < minHours {
			remaining := time.Duration((minHours - idleHours) * float64(time.Hour))
			return cooldownf(remaining, "raid loot is still accumulating")
		}

		loot := calculateRaidLoot(player.CurrentFloor, idleHours, e.rng, e.tuning)
		credit(player, CurrencySeios, loot.Seios+loot.BonusSeios)
		if loot.Erythl > 0 {
			credit(player, CurrencyErythl, loot.Erythl)
		}

		requirement := e.tuning.FloorRequirement(player.CurrentFloor)
		gained := raidProgressGain(player.TotalPower(), requirement, idleHours, e.tuning)
		player.RaidProgress += gained
		if player.RaidProgress > 1.0 {
			player.RaidProgress = 1.0
		}

		player.LastRaidTime = now
		player.UpdateActivity()
		if err := tx.UpdatePlayer(ctx, player); err != nil {
			return err
		}

		result = RaidResult{
			Floor:          player.CurrentFloor,
			IdleHours:      idleHours,
			Loot:           loot,
			ProgressGained: gained,
			TotalProgress:  player.RaidProgress,
			ReadyToClimb:   player.RaidProgress >= 1.0,
		}
		return nil
	})
	if err != nil {
		return fail[RaidResult]("tower.raid", err)
	}

	e.recorder.Record(playerID, audit.TowerRaid, map[string]any{
		"floor":           result.Floor,
		"idle_hours":      result.IdleHours,
		"seios_gained":    result.Loot.Seios + result.Loot.BonusSeios,
		"erythl_gained":   result.Loot.Erythl,
		"encounter":       result.Loot.Encounter,
		"progress_gained": result.ProgressGained,
		"total_progress":  result.TotalProgress,
	})
	return ok(result)
}

// Status reports the tower overview without taking locks or mutating state.
func (e *TowerEngine) Status(ctx context.Context, playerID int64) Result[TowerStatus] {
	player, err := e.store.GetPlayer(ctx, playerID)
	if err != nil {
		return fail[TowerStatus]("tower.status", err)
	}

	now := e.now().UTC()
	idleHours := now.Sub(idleAnchor(player, now)).Hours()
	if idleHours > e.tuning.MaxIdleHours() {
		idleHours = e.tuning.MaxIdleHours()
	}

	seiosPerHour := e.tuning.SeiosPerHour() * (1.0 + float64(player.CurrentFloor-1)*e.tuning.FloorBonusRate())
	estimated := int64(0)
	if idleHours >= e.tuning.MinIdleHours() {
		estimated = int64(seiosPerHour * idleHours)
	}

	return ok(TowerStatus{
		CurrentFloor:  player.CurrentFloor,
		HighestFloor:  player.HighestFloorReached,
		TotalClears:   player.TotalFloorClears,
		RaidProgress:  player.RaidProgress,
		ReadyToClimb:  player.RaidProgress >= 1.0,
		FloorTheme:    e.floorTheme(player.CurrentFloor),
		Efficiency:    combatEfficiency(player.TotalPower(), player.CurrentFloor, e.tuning),
		HoursIdle:     idleHours,
		EstimatedLoot: estimated,
	})
}

func (e *TowerEngine) floorTheme(floor int) string {
	switch {
	case floor <= e.tuning.cfg.Int("tower_themes.lower.max_floor", 100):
		return e.tuning.cfg.String("tower_themes.lower.name", "Lower Floors")
	case floor <= e.tuning.cfg.Int("tower_themes.mid.max_floor", 500):
		return e.tuning.cfg.String("tower_themes.mid.name", "Mid Floors")
	default:
		return e.tuning.cfg.String("tower_themes.upper.name", "Upper Floors")
	}
}
