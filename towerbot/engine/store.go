package engine

import (
	"context"
	"time"

	"github.com/esprit-rpg/towerbot/towerbot/database/models"
)

// Tx is the set of row operations an engine performs inside one transaction.
// GetPlayerForUpdate and friends take row locks; implementations must lock
// multi-player pairs in ascending id order so concurrent transfers cannot
// deadlock.
type Tx interface {
	GetPlayerForUpdate(ctx context.Context, playerID int64) (*models.Player, error)
	GetPlayerByDiscordIDForUpdate(ctx context.Context, discordID string) (*models.Player, error)
	GetPlayerPairForUpdate(ctx context.Context, firstID, secondID int64) (*models.Player, *models.Player, error)
	CreatePlayer(ctx context.Context, player *models.Player) error
	UpdatePlayer(ctx context.Context, player *models.Player) error

	GetEspritBase(ctx context.Context, baseID int64) (*models.EspritBase, error)
	ListEspritBasesByTier(ctx context.Context, tier int) ([]*models.EspritBase, error)

	GetStackForUpdate(ctx context.Context, ownerID, baseID int64) (*models.Esprit, error)
	ListOwnedEsprits(ctx context.Context, ownerID int64) ([]*models.Esprit, error)
	CreateStack(ctx context.Context, esprit *models.Esprit) error
	UpdateStack(ctx context.Context, esprit *models.Esprit) error
}

// Store opens transactions and serves the read paths that need no locking.
type Store interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	GetPlayer(ctx context.Context, playerID int64) (*models.Player, error)
	GetPlayerByDiscordID(ctx context.Context, discordID string) (*models.Player, error)
	GetEspritBase(ctx context.Context, baseID int64) (*models.EspritBase, error)
	ListOwnedEsprits(ctx context.Context, ownerID int64) ([]*models.Esprit, error)

	// ListPrayerReady returns opted-in players whose last prayer is at or
	// before the cutoff.
	ListPrayerReady(ctx context.Context, cutoff time.Time) ([]*models.Player, error)
}
