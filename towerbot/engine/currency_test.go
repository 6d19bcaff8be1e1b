package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/esprit-rpg/towerbot/towerbot/database/models"
)

func TestCurrencySpendInsufficient(t *testing.T) {
	store := newMemStore()
	tuning := testTuning(t)
	player := seedPlayer(store, "200", func(p *models.Player) {
		p.Seios = 300
	})

	rec := &captureRecorder{}
	eng := NewCurrencyEngine(store, tuning, rec)

	res := eng.Spend(context.Background(), player.ID, CurrencySeios, 500, "testing")
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.ErrorKind != ErrInsufficientResource {
		t.Errorf("kind = %s, want %s", res.ErrorKind, ErrInsufficientResource)
	}
	if res.Shortage != 200 {
		t.Errorf("shortage = %d, want 200", res.Shortage)
	}
	if stored := store.player(player.ID); stored.Seios != 300 {
		t.Errorf("failed spend mutated balance to %d", stored.Seios)
	}
	if len(rec.events) != 0 {
		t.Errorf("failed spend recorded %d audit events", len(rec.events))
	}
}

func TestCurrencyGrantAndSpend(t *testing.T) {
	store := newMemStore()
	tuning := testTuning(t)
	player := seedPlayer(store, "201", nil)

	rec := &captureRecorder{}
	eng := NewCurrencyEngine(store, tuning, rec)

	if res := eng.Grant(context.Background(), player.ID, CurrencyErythl, 7, "testing"); !res.Success {
		t.Fatalf("grant failed: %s", res.Message)
	}
	res := eng.Spend(context.Background(), player.ID, CurrencyErythl, 3, "testing")
	if !res.Success {
		t.Fatalf("spend failed: %s", res.Message)
	}
	if res.Data.Erythl != 4 {
		t.Errorf("erythl = %d, want 4", res.Data.Erythl)
	}
	gains := rec.byKind("currency_gain")
	if len(gains) != 1 {
		t.Fatalf("gain events = %d, want 1", len(gains))
	}
	if old, next := gains[0].Payload["old_balance"], gains[0].Payload["new_balance"]; old != int64(0) || next != int64(7) {
		t.Errorf("gain balances = %v -> %v, want 0 -> 7", old, next)
	}
	spends := rec.byKind("currency_spend")
	if len(spends) != 1 {
		t.Fatalf("spend events = %d, want 1", len(spends))
	}
	if old, next := spends[0].Payload["old_balance"], spends[0].Payload["new_balance"]; old != int64(7) || next != int64(4) {
		t.Errorf("spend balances = %v -> %v, want 7 -> 4", old, next)
	}
}

func TestCurrencyGrantRejectsBadInput(t *testing.T) {
	store := newMemStore()
	eng := NewCurrencyEngine(store, testTuning(t), &captureRecorder{})
	player := seedPlayer(store, "202", nil)

	if res := eng.Grant(context.Background(), player.ID, Currency("gold"), 5, "t"); res.ErrorKind != ErrValidation {
		t.Errorf("unknown currency kind = %s, want %s", res.ErrorKind, ErrValidation)
	}
	if res := eng.Grant(context.Background(), player.ID, CurrencySeios, 0, "t"); res.ErrorKind != ErrValidation {
		t.Errorf("zero amount kind = %s, want %s", res.ErrorKind, ErrValidation)
	}
	if res := eng.Grant(context.Background(), player.ID, CurrencySeios, -5, "t"); res.ErrorKind != ErrValidation {
		t.Errorf("negative amount kind = %s, want %s", res.ErrorKind, ErrValidation)
	}
}

func TestCurrencyConcurrentGrantsSum(t *testing.T) {
	store := newMemStore()
	player := seedPlayer(store, "203", func(p *models.Player) {
		p.Seios = 0
	})
	eng := NewCurrencyEngine(store, testTuning(t), &captureRecorder{})

	const workers = 50
	const perWorker = 10

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if res := eng.Grant(context.Background(), player.ID, CurrencySeios, 1, "load"); !res.Success {
					t.Errorf("grant failed: %s", res.Message)
					return
				}
			}
		}()
	}
	wg.Wait()

	if stored := store.player(player.ID); stored.Seios != workers*perWorker {
		t.Errorf("balance = %d, want %d", stored.Seios, workers*perWorker)
	}
}

func TestCurrencyTransfer(t *testing.T) {
	tuning := testTuningTOML(t, `
[currency.transfers.seios]
enabled = true
`)

	store := newMemStore()
	alice := seedPlayer(store, "300", func(p *models.Player) { p.Seios = 400 })
	bob := seedPlayer(store, "301", func(p *models.Player) { p.Seios = 100 })
	rec := &captureRecorder{}
	eng := NewCurrencyEngine(store, tuning, rec)

	res := eng.Transfer(context.Background(), alice.ID, bob.ID, CurrencySeios, 150)
	if !res.Success {
		t.Fatalf("transfer failed: %s", res.Message)
	}
	if res.Data.FromRemaining != 250 || res.Data.ToBalance != 250 {
		t.Errorf("balances = %d/%d, want 250/250", res.Data.FromRemaining, res.Data.ToBalance)
	}

	// Both legs of the audit trail carry before and after balances.
	if outs := rec.byKind("currency_spend"); len(outs) != 1 {
		t.Errorf("spend events = %d, want 1", len(outs))
	} else if old, next := outs[0].Payload["old_balance"], outs[0].Payload["new_balance"]; old != int64(400) || next != int64(250) {
		t.Errorf("sender balances = %v -> %v, want 400 -> 250", old, next)
	}
	if ins := rec.byKind("currency_gain"); len(ins) != 1 {
		t.Errorf("gain events = %d, want 1", len(ins))
	} else if old, next := ins[0].Payload["old_balance"], ins[0].Payload["new_balance"]; old != int64(100) || next != int64(250) {
		t.Errorf("recipient balances = %v -> %v, want 100 -> 250", old, next)
	}

	// Insufficient transfer leaves both sides untouched.
	short := eng.Transfer(context.Background(), alice.ID, bob.ID, CurrencySeios, 9999)
	if short.ErrorKind != ErrInsufficientResource {
		t.Fatalf("kind = %s, want %s", short.ErrorKind, ErrInsufficientResource)
	}
	if a, b := store.player(alice.ID).Seios, store.player(bob.ID).Seios; a != 250 || b != 250 {
		t.Errorf("failed transfer mutated balances to %d/%d", a, b)
	}

	if res := eng.Transfer(context.Background(), alice.ID, alice.ID, CurrencySeios, 10); res.ErrorKind != ErrValidation {
		t.Errorf("self transfer kind = %s, want %s", res.ErrorKind, ErrValidation)
	}
}

func TestCurrencyTransferDisabledByDefault(t *testing.T) {
	store := newMemStore()
	alice := seedPlayer(store, "302", nil)
	bob := seedPlayer(store, "303", nil)
	eng := NewCurrencyEngine(store, testTuning(t), &captureRecorder{})

	res := eng.Transfer(context.Background(), alice.ID, bob.ID, CurrencySeios, 10)
	if res.ErrorKind != ErrValidation {
		t.Errorf("kind = %s, want %s", res.ErrorKind, ErrValidation)
	}
}

func TestCurrencyTransferConcurrentOpposing(t *testing.T) {
	tuning := testTuningTOML(t, `
[currency.transfers.seios]
enabled = true
`)

	store := newMemStore()
	alice := seedPlayer(store, "304", func(p *models.Player) { p.Seios = 1000 })
	bob := seedPlayer(store, "305", func(p *models.Player) { p.Seios = 1000 })
	eng := NewCurrencyEngine(store, tuning, &captureRecorder{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			eng.Transfer(context.Background(), alice.ID, bob.ID, CurrencySeios, 5)
		}()
		go func() {
			defer wg.Done()
			eng.Transfer(context.Background(), bob.ID, alice.ID, CurrencySeios, 5)
		}()
	}
	wg.Wait()

	total := store.player(alice.ID).Seios + store.player(bob.ID).Seios
	if total != 2000 {
		t.Errorf("total after opposing transfers = %d, want 2000", total)
	}
}

func TestCurrencySummary(t *testing.T) {
	store := newMemStore()
	player := seedPlayer(store, "306", func(p *models.Player) {
		p.Seios = 500
		p.Ichor = 3
		p.Erythl = 2
	})
	eng := NewCurrencyEngine(store, testTuning(t), &captureRecorder{})

	res := eng.Summary(context.Background(), player.ID)
	if !res.Success {
		t.Fatalf("summary failed: %s", res.Message)
	}
	// 500*1 + 3*100 + 2*1000 under default exchange rates.
	if res.Data.BaseValue != 2800 {
		t.Errorf("base value = %d, want 2800", res.Data.BaseValue)
	}
}

func TestCurrencyValidateCost(t *testing.T) {
	store := newMemStore()
	player := seedPlayer(store, "307", func(p *models.Player) {
		p.Seios = 400
	})
	eng := NewCurrencyEngine(store, testTuning(t), &captureRecorder{})

	tests := []struct {
		name      string
		amount    int64
		canAfford bool
		shortage  int64
	}{
		{"affordable", 400, true, 0},
		{"short", 650, false, 250},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := eng.ValidateCost(context.Background(), player.ID, CurrencySeios, tt.amount)
			if !res.Success {
				t.Fatalf("validate failed: %s", res.Message)
			}
			if res.Data.CanAfford != tt.canAfford {
				t.Errorf("CanAfford = %v, want %v", res.Data.CanAfford, tt.canAfford)
			}
			if res.Data.Shortage != tt.shortage {
				t.Errorf("Shortage = %d, want %d", res.Data.Shortage, tt.shortage)
			}
			if res.Data.Available != 400 {
				t.Errorf("Available = %d, want 400", res.Data.Available)
			}
		})
	}

	if res := eng.ValidateCost(context.Background(), player.ID, Currency("gold"), 1); res.Success || res.ErrorKind != ErrValidation {
		t.Errorf("unknown currency: got %+v", res)
	}
	if got := store.player(player.ID).Seios; got != 400 {
		t.Errorf("validate mutated balance: %d", got)
	}
}
