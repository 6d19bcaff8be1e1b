package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/esprit-rpg/towerbot/towerbot/database/models"
	"github.com/esprit-rpg/towerbot/towerbot/engine"
	"github.com/uptrace/bun"
)

const defaultQueryTimeout = 10 * time.Second

// Store is the bun-backed implementation of engine.Store. All write paths
// run inside RunInTx transactions with SELECT ... FOR UPDATE row locks.
type Store struct {
	db    *bun.DB
	bases *BaseCache
}

func NewStore(db *bun.DB) *Store {
	return &Store{
		db:    db,
		bases: NewBaseCache(db),
	}
}

func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx engine.Tx) error) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	return s.db.RunInTx(timeoutCtx, nil, func(ctx context.Context, btx bun.Tx) error {
		return fn(ctx, &storeTx{tx: btx, bases: s.bases})
	})
}

func (s *Store) GetPlayer(ctx context.Context, playerID int64) (*models.Player, error) {
	player := new(models.Player)
	err := s.db.NewSelect().
		Model(player).
		Where("id = ?", playerID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return player, nil
}

func (s *Store) GetPlayerByDiscordID(ctx context.Context, discordID string) (*models.Player, error) {
	player := new(models.Player)
	err := s.db.NewSelect().
		Model(player).
		Where("discord_id = ?", discordID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return player, nil
}

func (s *Store) GetEspritBase(ctx context.Context, baseID int64) (*models.EspritBase, error) {
	return s.bases.Get(ctx, baseID)
}

func (s *Store) ListOwnedEsprits(ctx context.Context, ownerID int64) ([]*models.Esprit, error) {
	var esprits []*models.Esprit
	err := s.db.NewSelect().
		Model(&esprits).
		Relation("Base").
		Where("e.owner_id = ? AND e.quantity > 0", ownerID).
		Order("e.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list esprits for owner %d: %w", ownerID, err)
	}
	return esprits, nil
}

func (s *Store) ListPrayerReady(ctx context.Context, cutoff time.Time) ([]*models.Player, error) {
	var players []*models.Player
	err := s.db.NewSelect().
		Model(&players).
		Where("pray_notifications = true").
		Where("last_pray_time <= ?", cutoff).
		Order("last_pray_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list prayer-ready players: %w", err)
	}
	return players, nil
}

// storeTx wraps one bun transaction as an engine.Tx.
type storeTx struct {
	tx    bun.Tx
	bases *BaseCache
}

func (t *storeTx) GetPlayerForUpdate(ctx context.Context, playerID int64) (*models.Player, error) {
	player := new(models.Player)
	err := t.tx.NewSelect().
		Model(player).
		Where("id = ?", playerID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return player, nil
}

func (t *storeTx) GetPlayerByDiscordIDForUpdate(ctx context.Context, discordID string) (*models.Player, error) {
	player := new(models.Player)
	err := t.tx.NewSelect().
		Model(player).
		Where("discord_id = ?", discordID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return player, nil
}

// GetPlayerPairForUpdate locks both rows in ascending id order so two
// opposing transfers cannot deadlock against each other.
func (t *storeTx) GetPlayerPairForUpdate(ctx context.Context, firstID, secondID int64) (*models.Player, *models.Player, error) {
	lowID, highID := firstID, secondID
	if lowID > highID {
		lowID, highID = highID, lowID
	}

	low, err := t.GetPlayerForUpdate(ctx, lowID)
	if err != nil {
		return nil, nil, err
	}
	high, err := t.GetPlayerForUpdate(ctx, highID)
	if err != nil {
		return nil, nil, err
	}

	if firstID == lowID {
		return low, high, nil
	}
	return high, low, nil
}

func (t *storeTx) CreatePlayer(ctx context.Context, player *models.Player) error {
	_, err := t.tx.NewInsert().Model(player).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create player %s: %w", player.DiscordID, err)
	}
	return nil
}

func (t *storeTx) UpdatePlayer(ctx context.Context, player *models.Player) error {
	_, err := t.tx.NewUpdate().
		Model(player).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update player %d: %w", player.ID, err)
	}
	return nil
}

func (t *storeTx) GetEspritBase(ctx context.Context, baseID int64) (*models.EspritBase, error) {
	// Templates are immutable at runtime, so the shared cache is safe to
	// consult mid-transaction.
	if base, ok := t.bases.Peek(baseID); ok {
		return base, nil
	}

	base := new(models.EspritBase)
	err := t.tx.NewSelect().
		Model(base).
		Where("id = ?", baseID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	t.bases.Put(base)
	return base, nil
}

func (t *storeTx) ListEspritBasesByTier(ctx context.Context, tier int) ([]*models.EspritBase, error) {
	var bases []*models.EspritBase
	err := t.tx.NewSelect().
		Model(&bases).
		Where("base_tier = ?", tier).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tier %d templates: %w", tier, err)
	}
	return bases, nil
}

func (t *storeTx) GetStackForUpdate(ctx context.Context, ownerID, baseID int64) (*models.Esprit, error) {
	esprit := new(models.Esprit)
	err := t.tx.NewSelect().
		Model(esprit).
		Where("owner_id = ? AND base_id = ?", ownerID, baseID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return esprit, nil
}

func (t *storeTx) ListOwnedEsprits(ctx context.Context, ownerID int64) ([]*models.Esprit, error) {
	var esprits []*models.Esprit
	err := t.tx.NewSelect().
		Model(&esprits).
		Relation("Base").
		Where("e.owner_id = ? AND e.quantity > 0", ownerID).
		Order("e.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list esprits for owner %d: %w", ownerID, err)
	}
	return esprits, nil
}

func (t *storeTx) CreateStack(ctx context.Context, esprit *models.Esprit) error {
	_, err := t.tx.NewInsert().Model(esprit).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create stack owner=%d base=%d: %w", esprit.OwnerID, esprit.BaseID, err)
	}
	return nil
}

func (t *storeTx) UpdateStack(ctx context.Context, esprit *models.Esprit) error {
	_, err := t.tx.NewUpdate().
		Model(esprit).
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update stack %d: %w", esprit.ID, err)
	}
	return nil
}
