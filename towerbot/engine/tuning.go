package engine

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/esprit-rpg/towerbot/towerbot/gameconfig"
)

// Tuning adapts the game configuration snapshot into the typed values the
// engines consume. Every accessor carries the shipped default so a stripped
// config directory still yields a playable game.
type Tuning struct {
	cfg *gameconfig.Provider
}

func NewTuning(cfg *gameconfig.Provider) *Tuning {
	return &Tuning{cfg: cfg}
}

// --- resources ---

func (t *Tuning) EnergyCap(level int) int {
	base := t.cfg.Int("player.base_energy", 50)
	perLevel := t.cfg.Int("player.energy_per_level", 10)
	return base + (level-1)*perLevel
}

func (t *Tuning) StaminaCap(level int) int {
	base := t.cfg.Int("player.base_stamina", 25)
	perLevel := t.cfg.Int("player.stamina_per_level", 5)
	return base + (level-1)*perLevel
}

func (t *Tuning) EnergyRegen() (time.Duration, int) {
	return t.cfg.Minutes("energy.regen_minutes", 5*time.Minute), t.cfg.Int("energy.regen_amount", 1)
}

func (t *Tuning) StaminaRegen() (time.Duration, int) {
	return t.cfg.Minutes("stamina.regen_minutes", 5*time.Minute), t.cfg.Int("stamina.regen_amount", 1)
}

// --- progression ---

// TotalXPForLevel is the cumulative experience required to reach a level.
// The per-level requirement grows geometrically, so the total is a
// closed-form series sum rather than a loop.
func (t *Tuning) TotalXPForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	base := float64(t.cfg.Int64("player.xp_base", 1000))
	mult := t.cfg.Float("player.xp_multiplier", 1.15)

	terms := float64(level - 1)
	if mult == 1.0 {
		return int64(base * terms)
	}
	// Round before converting: the series sum lands a hair under the exact
	// value (2149.999... for 2150) and truncation would shave a point off.
	return int64(math.Round(base * (1 - math.Pow(mult, terms)) / (1 - mult)))
}

func (t *Tuning) StartingSeios() int64 { return t.cfg.Int64("player.starting_seios", 1000) }
func (t *Tuning) StartingIchor() int64 { return t.cfg.Int64("player.starting_ichor", 10) }

// --- summoning ---

func (t *Tuning) SummonCost() int64 { return t.cfg.Int64("summoning.ichor_cost", 1) }

// SummonRates returns the tier probability table sorted ascending by tier.
func (t *Tuning) SummonRates() []TierRate {
	raw := t.cfg.FloatMap("summoning.rates")
	rates := make([]TierRate, 0, len(raw))
	for key, chance := range raw {
		tier, err := strconv.Atoi(key)
		if err != nil || tier < 1 || chance <= 0 {
			continue
		}
		rates = append(rates, TierRate{Tier: tier, Chance: chance})
	}
	sort.Slice(rates, func(i, j int) bool { return rates[i].Tier < rates[j].Tier })
	return rates
}

// --- fusion ---

func (t *Tuning) FusionMaxTier() int { return t.cfg.Int("fusion.max_tier", 6) }

// FusionCost is the seios price of fusing a stack at the given tier.
func (t *Tuning) FusionCost(tier int) int64 {
	base := t.cfg.Int64("fusion.base_cost", 1000)
	perTier := t.cfg.Int64("fusion.tier_cost_multiplier", 500)
	return base + int64(tier)*perTier
}

// --- power ---

func (t *Tuning) TierMultiplier(tier int) float64 {
	base := t.cfg.Float("power.tier_scaling_base", 1.0)
	step := t.cfg.Float("power.tier_scaling_multiplier", 0.15)
	return base + float64(tier-1)*step
}

func (t *Tuning) ElementBonus() float64 {
	return 1.0 + t.cfg.Float("power.element_bonus_multiplier", 0.05)
}

// --- tower ---

func (t *Tuning) FloorRequirement(floor int) int64 {
	return int64(floor) * t.cfg.Int64("tower.difficulty_multiplier", 1000)
}

func (t *Tuning) BossHealth(floor int) float64 {
	return float64(t.cfg.Int64("tower.base_boss_health", 100)) * float64(floor)
}

func (t *Tuning) BaseBossHealth() float64 {
	return float64(t.cfg.Int64("tower.base_boss_health", 100))
}

func (t *Tuning) DamageVariance() float64  { return t.cfg.Float("tower.damage_variance", 0.2) }
func (t *Tuning) MinEfficiency() float64   { return t.cfg.Float("tower.min_efficiency", 0.3) }
func (t *Tuning) EfficiencyCap() float64   { return t.cfg.Float("tower.efficiency_cap", 10.0) }
func (t *Tuning) MaxIdleHours() float64    { return t.cfg.Float("tower.max_idle_hours", 24.0) }
func (t *Tuning) MinIdleHours() float64    { return t.cfg.Float("tower.min_idle_hours", 0.1) }
func (t *Tuning) FloorBonusRate() float64  { return t.cfg.Float("tower.floor_bonus_rate", 0.1) }
func (t *Tuning) ProgressPerHour() float64 { return t.cfg.Float("tower.base_progress_per_hour", 0.1) }

func (t *Tuning) ProgressEfficiencyCap() float64 {
	return t.cfg.Float("tower.progress_efficiency_cap", 2.0)
}

func (t *Tuning) SeiosPerHour() float64 {
	return float64(t.cfg.Int64("tower.base_seios_per_hour", 100))
}

func (t *Tuning) ErythlChancePerHour() float64 {
	return t.cfg.Float("tower.erythl_chance_per_hour", 0.05)
}

func (t *Tuning) EncounterChancePerHour() float64 {
	return t.cfg.Float("tower.encounter_chance_per_hour", 0.1)
}

// --- prayer ---

func (t *Tuning) PrayerCooldown() time.Duration {
	return t.cfg.Minutes("prayer.cooldown_minutes", 5*time.Minute)
}

func (t *Tuning) PrayerReward() int64 { return t.cfg.Int64("prayer.ichor_reward", 1) }

// --- currency ---

// ExchangeRate is the base-unit value of one unit of the named currency,
// used for display and for cross-currency conversions.
func (t *Tuning) ExchangeRate(currency Currency) int64 {
	return t.cfg.Int64("currency.exchange_rates."+string(currency)+"_to_base", 1)
}

func (t *Tuning) TransferEnabled(currency Currency) bool {
	return t.cfg.Bool("currency.transfers."+string(currency)+".enabled", false)
}

// --- display ---

func (t *Tuning) TierName(tier int) string {
	return t.cfg.String("tier_system.names."+strconv.Itoa(tier), "Tier "+strconv.Itoa(tier))
}
