package engine

import (
	"context"
	"testing"

	"github.com/esprit-rpg/towerbot/towerbot/database/models"
)

func TestEspritPowerScaling(t *testing.T) {
	tuning := testTuning(t)
	base := &models.EspritBase{BaseAtk: 100, BaseDef: 60}

	tests := []struct {
		tier    int
		wantAtk int64
		wantDef int64
	}{
		{1, 105, 63},  // 1.00 * 1.05
		{2, 120, 72},  // 1.15 * 1.05 = 1.2075
		{6, 183, 110}, // 1.75 * 1.05 = 1.8375
	}
	for _, tt := range tests {
		atk, def := espritPower(base, tt.tier, tuning)
		if atk != tt.wantAtk || def != tt.wantDef {
			t.Errorf("tier %d = %d/%d, want %d/%d", tt.tier, atk, def, tt.wantAtk, tt.wantDef)
		}
	}
}

func TestPowerRefresh(t *testing.T) {
	store := newMemStore()
	bases := seedCatalog(store)
	player := seedPlayer(store, "900", nil)

	// Three tier-1 Cindlings at 10/10 and one tier-2 Gustling at 20/18.
	store.addEsprit(&models.Esprit{OwnerID: player.ID, BaseID: bases[0].ID, Quantity: 3, Tier: 1})
	store.addEsprit(&models.Esprit{OwnerID: player.ID, BaseID: bases[2].ID, Quantity: 1, Tier: 2})
	store.addEsprit(&models.Esprit{OwnerID: player.ID, BaseID: bases[1].ID, Quantity: 0, Tier: 1})

	eng := NewPowerEngine(store, testTuning(t))

	res := eng.Refresh(context.Background(), player.ID)
	if !res.Success {
		t.Fatalf("refresh failed: %s", res.Message)
	}
	// Cindling tier 1: 10*1.05 = 10 each, ×3 = 30 atk / 30 def.
	// Gustling tier 2: 20*1.2075 = 24 atk, 18*1.2075 = 21 def.
	if res.Data.AttackPower != 54 || res.Data.DefensePower != 51 {
		t.Errorf("power = %d/%d, want 54/51", res.Data.AttackPower, res.Data.DefensePower)
	}
	if res.Data.StackCount != 2 {
		t.Errorf("stacks = %d, want 2 (remnant excluded)", res.Data.StackCount)
	}

	stored := store.player(player.ID)
	if stored.AttackPower != 54 || stored.DefensePower != 51 {
		t.Errorf("persisted power = %d/%d", stored.AttackPower, stored.DefensePower)
	}
}

func TestPowerContributions(t *testing.T) {
	store := newMemStore()
	bases := seedCatalog(store)
	player := seedPlayer(store, "901", nil)

	store.addEsprit(&models.Esprit{OwnerID: player.ID, BaseID: bases[0].ID, Quantity: 1, Tier: 1}) // 20
	store.addEsprit(&models.Esprit{OwnerID: player.ID, BaseID: bases[3].ID, Quantity: 1, Tier: 1}) // 35+40 at 1.05 = 36+42 = 78

	eng := NewPowerEngine(store, testTuning(t))

	res := eng.Contributions(context.Background(), player.ID)
	if !res.Success {
		t.Fatalf("contributions failed: %s", res.Message)
	}
	if len(res.Data) != 2 {
		t.Fatalf("entries = %d, want 2", len(res.Data))
	}
	if res.Data[0].Base.ID != bases[3].ID {
		t.Errorf("strongest first: got base %d", res.Data[0].Base.ID)
	}
	if res.Data[0].Power != 78 || res.Data[1].Power != 20 {
		t.Errorf("powers = %d/%d, want 78/20", res.Data[0].Power, res.Data[1].Power)
	}
	wantPct := float64(78) / 98 * 100
	if res.Data[0].Percent != wantPct {
		t.Errorf("percent = %v, want %v", res.Data[0].Percent, wantPct)
	}
}
