package engine

import (
	"context"
	"time"

	"github.com/esprit-rpg/towerbot/towerbot/audit"
	"github.com/esprit-rpg/towerbot/towerbot/database/models"
)

// Currency identifies one of the three tracked balances.
type Currency string

const (
	CurrencySeios  Currency = "seios"
	CurrencyIchor  Currency = "ichor"
	CurrencyErythl Currency = "erythl"
)

func (c Currency) Valid() bool {
	switch c {
	case CurrencySeios, CurrencyIchor, CurrencyErythl:
		return true
	}
	return false
}

func balanceOf(p *models.Player, c Currency) int64 {
	switch c {
	case CurrencySeios:
		return p.Seios
	case CurrencyIchor:
		return p.Ichor
	case CurrencyErythl:
		return p.Erythl
	}
	return 0
}

// credit adds amount to the balance on an already-locked player row.
// Callers validate amount > 0 before reaching here.
func credit(p *models.Player, c Currency, amount int64) {
	switch c {
	case CurrencySeios:
		p.Seios += amount
	case CurrencyIchor:
		p.Ichor += amount
	case CurrencyErythl:
		p.Erythl += amount
	}
}

// debit removes amount from the balance, failing with the shortage when the
// balance cannot cover it. No partial deduction happens on failure.
func debit(p *models.Player, c Currency, amount int64) *Error {
	have := balanceOf(p, c)
	if have < amount {
		return insufficientf(amount-have, "not enough %s: need %d, have %d", c, amount, have)
	}
	credit(p, c, -amount)
	return nil
}

// Balances is a point-in-time snapshot of a player's wallet.
type Balances struct {
	Seios  int64
	Ichor  int64
	Erythl int64
}

func snapshotBalances(p *models.Player) Balances {
	return Balances{Seios: p.Seios, Ichor: p.Ichor, Erythl: p.Erythl}
}

// TransferReceipt reports a completed player-to-player transfer.
type TransferReceipt struct {
	Currency      Currency
	Amount        int64
	FromRemaining int64
	ToBalance     int64
}

// CurrencyEngine owns every balance mutation. All writes happen on locked
// rows inside a single transaction so concurrent grants cannot lose updates.
type CurrencyEngine struct {
	store    Store
	tuning   *Tuning
	recorder audit.Recorder
}

func NewCurrencyEngine(store Store, tuning *Tuning, recorder audit.Recorder) *CurrencyEngine {
	return &CurrencyEngine{store: store, tuning: tuning, recorder: recorder}
}

// Balances reads the wallet without locking.
func (e *CurrencyEngine) Balances(ctx context.Context, playerID int64) Result[Balances] {
	player, err := e.store.GetPlayer(ctx, playerID)
	if err != nil {
		return fail[Balances]("currency.balances", err)
	}
	return ok(snapshotBalances(player))
}

// WalletSummary is the balances plus their combined worth in base units
// under the configured exchange rates.
type WalletSummary struct {
	Balances  Balances
	BaseValue int64
}

// Summary reads the wallet and values it at the configured exchange rates.
func (e *CurrencyEngine) Summary(ctx context.Context, playerID int64) Result[WalletSummary] {
	player, err := e.store.GetPlayer(ctx, playerID)
	if err != nil {
		return fail[WalletSummary]("currency.summary", err)
	}

	balances := snapshotBalances(player)
	total := balances.Seios*e.tuning.ExchangeRate(CurrencySeios) +
		balances.Ichor*e.tuning.ExchangeRate(CurrencyIchor) +
		balances.Erythl*e.tuning.ExchangeRate(CurrencyErythl)
	return ok(WalletSummary{Balances: balances, BaseValue: total})
}

// CurrencyCheck answers an affordability question without mutating anything.
type CurrencyCheck struct {
	CanAfford bool
	Available int64
	Shortage  int64
}

// ValidateCost reports whether the player could pay amount right now.
func (e *CurrencyEngine) ValidateCost(ctx context.Context, playerID int64, currency Currency, amount int64) Result[CurrencyCheck] {
	if !currency.Valid() {
		return fail[CurrencyCheck]("currency.validate", validationf("unknown currency %q", currency))
	}
	if amount <= 0 {
		return fail[CurrencyCheck]("currency.validate", validationf("amount must be positive, got %d", amount))
	}

	player, err := e.store.GetPlayer(ctx, playerID)
	if err != nil {
		return fail[CurrencyCheck]("currency.validate", err)
	}

	available := balanceOf(player, currency)
	check := CurrencyCheck{CanAfford: available >= amount, Available: available}
	if !check.CanAfford {
		check.Shortage = amount - available
	}
	return ok(check)
}

// Grant credits amount of the currency and records the reason in the audit
// trail.
func (e *CurrencyEngine) Grant(ctx context.Context, playerID int64, currency Currency, amount int64, reason string) Result[Balances] {
	if !currency.Valid() {
		return fail[Balances]("currency.grant", validationf("unknown currency %q", currency))
	}
	if amount <= 0 {
		return fail[Balances]("currency.grant", validationf("amount must be positive, got %d", amount))
	}

	var balances Balances
	var oldBalance, newBalance int64
	err := e.store.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		player, err := tx.GetPlayerForUpdate(ctx, playerID)
		if err != nil {
			return err
		}
		oldBalance = balanceOf(player, currency)
		credit(player, currency, amount)
		newBalance = balanceOf(player, currency)
		player.UpdateActivity()
		if err := tx.UpdatePlayer(ctx, player); err != nil {
			return err
		}
		balances = snapshotBalances(player)
		return nil
	})
	if err != nil {
		return fail[Balances]("currency.grant", err)
	}

	e.recorder.Record(playerID, audit.CurrencyGain, map[string]any{
		"currency":    string(currency),
		"amount":      amount,
		"old_balance": oldBalance,
		"new_balance": newBalance,
		"reason":      reason,
	})
	return ok(balances)
}

// Spend debits amount of the currency, rejecting with the exact shortage when
// the balance is too small.
func (e *CurrencyEngine) Spend(ctx context.Context, playerID int64, currency Currency, amount int64, reason string) Result[Balances] {
	if !currency.Valid() {
		return fail[Balances]("currency.spend", validationf("unknown currency %q", currency))
	}
	if amount <= 0 {
		return fail[Balances]("currency.spend", validationf("amount must be positive, got %d", amount))
	}

	var balances Balances
	var oldBalance, newBalance int64
	err := e.store.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		player, err := tx.GetPlayerForUpdate(ctx, playerID)
		if err != nil {
			return err
		}
		oldBalance = balanceOf(player, currency)
		if err := debit(player, currency, amount); err != nil {
			return err
		}
		newBalance = balanceOf(player, currency)
		player.UpdateActivity()
		if err := tx.UpdatePlayer(ctx, player); err != nil {
			return err
		}
		balances = snapshotBalances(player)
		return nil
	})
	if err != nil {
		return fail[Balances]("currency.spend", err)
	}

	e.recorder.Record(playerID, audit.CurrencySpend, map[string]any{
		"currency":    string(currency),
		"amount":      amount,
		"old_balance": oldBalance,
		"new_balance": newBalance,
		"reason":      reason,
	})
	return ok(balances)
}

// Transfer moves currency between two players atomically. Both rows are
// locked for the duration; the store locks them in ascending id order.
func (e *CurrencyEngine) Transfer(ctx context.Context, fromID, toID int64, currency Currency, amount int64) Result[TransferReceipt] {
	if !currency.Valid() {
		return fail[TransferReceipt]("currency.transfer", validationf("unknown currency %q", currency))
	}
	if amount <= 0 {
		return fail[TransferReceipt]("currency.transfer", validationf("amount must be positive, got %d", amount))
	}
	if fromID == toID {
		return fail[TransferReceipt]("currency.transfer", validationf("cannot transfer to yourself"))
	}
	if !e.tuning.TransferEnabled(currency) {
		return fail[TransferReceipt]("currency.transfer", validationf("%s transfers are disabled", currency))
	}

	var receipt TransferReceipt
	var fromOld, toOld int64
	err := e.store.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		from, to, err := tx.GetPlayerPairForUpdate(ctx, fromID, toID)
		if err != nil {
			return err
		}
		fromOld = balanceOf(from, currency)
		toOld = balanceOf(to, currency)
		if err := debit(from, currency, amount); err != nil {
			return err
		}
		credit(to, currency, amount)
		from.UpdateActivity()
		if err := tx.UpdatePlayer(ctx, from); err != nil {
			return err
		}
		if err := tx.UpdatePlayer(ctx, to); err != nil {
			return err
		}
		receipt = TransferReceipt{
			Currency:      currency,
			Amount:        amount,
			FromRemaining: balanceOf(from, currency),
			ToBalance:     balanceOf(to, currency),
		}
		return nil
	})
	if err != nil {
		return fail[TransferReceipt]("currency.transfer", err)
	}

	now := time.Now().UTC()
	e.recorder.Record(fromID, audit.CurrencySpend, map[string]any{
		"currency":    string(currency),
		"amount":      amount,
		"old_balance": fromOld,
		"new_balance": receipt.FromRemaining,
		"reason":      "transfer_out",
		"to":          toID,
		"at":          now,
	})
	e.recorder.Record(toID, audit.CurrencyGain, map[string]any{
		"currency":    string(currency),
		"amount":      amount,
		"old_balance": toOld,
		"new_balance": receipt.ToBalance,
		"reason":      "transfer_in",
		"from":        fromID,
		"at":          now,
	})
	return ok(receipt)
}
