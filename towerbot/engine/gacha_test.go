package engine

import (
	"context"
	"math"
	"testing"

	"github.com/esprit-rpg/towerbot/towerbot/database/models"
)

func seedCatalog(store *memStore) []*models.EspritBase {
	bases := []*models.EspritBase{
		{Name: "Cindling", Element: "Inferno", BaseTier: 1, BaseAtk: 10, BaseDef: 10},
		{Name: "Droplet", Element: "Aqua", BaseTier: 1, BaseAtk: 12, BaseDef: 8},
		{Name: "Gustling", Element: "Tempest", BaseTier: 2, BaseAtk: 20, BaseDef: 18},
		{Name: "Stoneheart", Element: "Earth", BaseTier: 3, BaseAtk: 35, BaseDef: 40},
	}
	for _, b := range bases {
		store.addBase(b)
	}
	return bases
}

func TestRollTierDistribution(t *testing.T) {
	tuning := testTuning(t)
	rates := tuning.SummonRates()
	rng := NewSeededRNG(42)

	const draws = 100_000
	counts := make(map[int]int)
	for i := 0; i < draws; i++ {
		counts[rollTier(rng.Float64(), rates)]++
	}

	want := map[int]float64{1: 0.70, 2: 0.20, 3: 0.08, 4: 0.015, 5: 0.004, 6: 0.001}
	for tier, expected := range want {
		got := float64(counts[tier]) / draws
		// Loose band: three-ish standard deviations for the rarest tiers.
		tolerance := math.Max(0.004, expected*0.15)
		if math.Abs(got-expected) > tolerance {
			t.Errorf("tier %d frequency = %.4f, want %.4f ±%.4f", tier, got, expected, tolerance)
		}
	}
}

func TestRollTierEdges(t *testing.T) {
	rates := []TierRate{{1, 0.7}, {2, 0.2}, {3, 0.1}}

	if got := rollTier(0.0, rates); got != 1 {
		t.Errorf("roll 0.0 = tier %d, want 1", got)
	}
	if got := rollTier(0.699, rates); got != 1 {
		t.Errorf("roll 0.699 = tier %d, want 1", got)
	}
	if got := rollTier(0.75, rates); got != 2 {
		t.Errorf("roll 0.75 = tier %d, want 2", got)
	}
	// A roll at or past the total mass falls through to the highest tier.
	if got := rollTier(0.99999, rates); got != 3 {
		t.Errorf("roll past mass = tier %d, want 3", got)
	}
	if got := rollTier(0.5, nil); got != 1 {
		t.Errorf("empty table = tier %d, want 1", got)
	}
}

func TestSummonCreatesAndStacks(t *testing.T) {
	store := newMemStore()
	bases := seedCatalog(store)
	tuning := testTuning(t)
	player := seedPlayer(store, "400", func(p *models.Player) { p.Ichor = 5 })

	rec := &captureRecorder{}
	// Tier roll 0.1 lands on tier 1; template roll picks the first entry.
	eng := NewGachaEngine(store, tuning, rec, &fixedRolls{floats: []float64{0.1, 0.1}, ints: []int{0, 0}})

	res := eng.Summon(context.Background(), player.ID)
	if !res.Success {
		t.Fatalf("summon failed: %s %s", res.ErrorKind, res.Message)
	}
	if !res.Data.New {
		t.Error("first summon should be new")
	}
	if res.Data.Base.ID != bases[0].ID {
		t.Errorf("summoned base %d, want %d", res.Data.Base.ID, bases[0].ID)
	}
	if res.Data.IchorLeft != 4 {
		t.Errorf("ichor left = %d, want 4", res.Data.IchorLeft)
	}

	stack := store.stack(player.ID, bases[0].ID)
	if stack == nil || stack.Quantity != 1 || stack.Tier != 1 {
		t.Fatalf("stack = %+v, want qty 1 tier 1", stack)
	}

	// Same roll again grows the stack instead of creating a second row.
	again := eng.Summon(context.Background(), player.ID)
	if !again.Success {
		t.Fatalf("second summon failed: %s", again.Message)
	}
	if again.Data.New {
		t.Error("repeat summon flagged as new")
	}
	if again.Data.Quantity != 2 {
		t.Errorf("quantity = %d, want 2", again.Data.Quantity)
	}

	if stored := store.player(player.ID); stored.TotalPower() == 0 {
		t.Error("power cache not refreshed after summon")
	}
	if got := len(rec.byKind("esprit_summoned")); got != 2 {
		t.Errorf("audit events = %d, want 2", got)
	}
}

func TestSummonTierFallback(t *testing.T) {
	store := newMemStore()
	seedCatalog(store) // no tier-6 templates
	tuning := testTuning(t)
	player := seedPlayer(store, "401", nil)

	// Roll past all probability mass: tier 6, which is empty, falling back
	// through 5 and 4 until tier 3 has a template.
	eng := NewGachaEngine(store, tuning, &captureRecorder{}, &fixedRolls{floats: []float64{0.99999}, ints: []int{0}})

	res := eng.Summon(context.Background(), player.ID)
	if !res.Success {
		t.Fatalf("summon failed: %s", res.Message)
	}
	if res.Data.Base.BaseTier != 3 {
		t.Errorf("fell back to tier %d, want 3", res.Data.Base.BaseTier)
	}
}

func TestSummonEmptyCatalog(t *testing.T) {
	store := newMemStore()
	player := seedPlayer(store, "402", nil)
	eng := NewGachaEngine(store, testTuning(t), &captureRecorder{}, NewSeededRNG(1))

	res := eng.Summon(context.Background(), player.ID)
	if res.Success {
		t.Fatal("summon against an empty catalog must fail")
	}
	if res.ErrorKind != ErrConfiguration {
		t.Errorf("kind = %s, want %s", res.ErrorKind, ErrConfiguration)
	}
	// The ichor charge must not stick.
	if stored := store.player(player.ID); stored.Ichor != 10 {
		t.Errorf("ichor = %d, want 10", stored.Ichor)
	}
}

func TestSummonInsufficientIchor(t *testing.T) {
	store := newMemStore()
	seedCatalog(store)
	player := seedPlayer(store, "403", func(p *models.Player) { p.Ichor = 0 })
	eng := NewGachaEngine(store, testTuning(t), &captureRecorder{}, NewSeededRNG(1))

	res := eng.Summon(context.Background(), player.ID)
	if res.ErrorKind != ErrInsufficientResource {
		t.Errorf("kind = %s, want %s", res.ErrorKind, ErrInsufficientResource)
	}
	if res.Shortage != 1 {
		t.Errorf("shortage = %d, want 1", res.Shortage)
	}
}

func TestCollectionListingAndInspect(t *testing.T) {
	store := newMemStore()
	bases := seedCatalog(store)
	player := seedPlayer(store, "404", nil)

	store.addEsprit(&models.Esprit{OwnerID: player.ID, BaseID: bases[0].ID, Quantity: 3, Tier: 2, Element: bases[0].Element})
	store.addEsprit(&models.Esprit{OwnerID: player.ID, BaseID: bases[3].ID, Quantity: 1, Tier: 1, Element: bases[3].Element})
	store.addEsprit(&models.Esprit{OwnerID: player.ID, BaseID: bases[1].ID, Quantity: 0, Tier: 1, Element: bases[1].Element})

	eng := NewGachaEngine(store, testTuning(t), &captureRecorder{}, NewSeededRNG(1))

	res := eng.Collection(context.Background(), player.ID)
	if !res.Success {
		t.Fatalf("collection failed: %s", res.Message)
	}
	if len(res.Data) != 2 {
		t.Fatalf("entries = %d, want 2 (remnant hidden)", len(res.Data))
	}
	if res.Data[0].Base.ID != bases[3].ID {
		t.Errorf("first entry base %d, want highest base tier %d", res.Data[0].Base.ID, bases[3].ID)
	}

	detail := eng.Inspect(context.Background(), player.ID, bases[0].ID)
	if !detail.Success {
		t.Fatalf("inspect failed: %s", detail.Message)
	}
	if detail.Data.Esprit.Quantity != 3 {
		t.Errorf("quantity = %d, want 3", detail.Data.Esprit.Quantity)
	}

	missing := eng.Inspect(context.Background(), player.ID, bases[1].ID)
	if missing.ErrorKind != ErrNotFound {
		t.Errorf("remnant inspect kind = %s, want %s", missing.ErrorKind, ErrNotFound)
	}
}
