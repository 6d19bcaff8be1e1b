package engine

import (
	"context"
	"strings"
	"time"

	"github.com/esprit-rpg/towerbot/towerbot/audit"
	"github.com/esprit-rpg/towerbot/towerbot/database/models"
)

// awardExperience adds xp to a locked player row and resolves every level-up
// the new total unlocks. Experience is cumulative and never resets on
// level-up.
func awardExperience(p *models.Player, amount int64, tuning *Tuning) int {
	p.Experience += amount
	levels := 0
	for p.Experience >= tuning.TotalXPForLevel(p.Level+1) {
		p.Level++
		levels++
	}
	return levels
}

// LevelInfo describes progression toward the next level.
type LevelInfo struct {
	Level            int
	Experience       int64
	NextLevelAt      int64
	ExperienceToNext int64
	Progress         float64
	EnergyCap        int
	StaminaCap       int
}

func levelInfo(p *models.Player, tuning *Tuning) LevelInfo {
	currentAt := tuning.TotalXPForLevel(p.Level)
	nextAt := tuning.TotalXPForLevel(p.Level + 1)

	toNext := nextAt - p.Experience
	if toNext < 0 {
		toNext = 0
	}

	progress := 0.0
	if span := nextAt - currentAt; span > 0 {
		progress = float64(p.Experience-currentAt) / float64(span)
		if progress < 0 {
			progress = 0
		}
		if progress > 1 {
			progress = 1
		}
	}

	return LevelInfo{
		Level:            p.Level,
		Experience:       p.Experience,
		NextLevelAt:      nextAt,
		ExperienceToNext: toNext,
		Progress:         progress,
		EnergyCap:        tuning.EnergyCap(p.Level),
		StaminaCap:       tuning.StaminaCap(p.Level),
	}
}

// ExperienceGain reports one completed experience award.
type ExperienceGain struct {
	Gained       int64
	Total        int64
	OldLevel     int
	NewLevel     int
	LevelsGained int
}

// PlayerEngine owns account lifecycle and level progression.
type PlayerEngine struct {
	store    Store
	tuning   *Tuning
	recorder audit.Recorder
	now      func() time.Time
}

func NewPlayerEngine(store Store, tuning *Tuning, recorder audit.Recorder) *PlayerEngine {
	return &PlayerEngine{store: store, tuning: tuning, recorder: recorder, now: time.Now}
}

// Create registers a new account for the Discord user with starting
// resources at full caps.
func (e *PlayerEngine) Create(ctx context.Context, discordID, username string) Result[*models.Player] {
	username = strings.TrimSpace(username)
	if username == "" {
		username = "Unknown Player"
	}
	if len(username) > 100 {
		username = username[:100]
	}

	var player *models.Player
	err := e.store.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		existing, err := tx.GetPlayerByDiscordIDForUpdate(ctx, discordID)
		if err == nil && existing != nil {
			return validationf("you already have an account, %s", existing.Username)
		}
		if err != nil && !isNotFound(err) {
			return err
		}

		now := e.now().UTC()
		player = &models.Player{
			DiscordID:           discordID,
			Username:            username,
			Level:               1,
			Energy:              e.tuning.EnergyCap(1),
			Stamina:             e.tuning.StaminaCap(1),
			LastEnergyRegen:     now,
			LastStaminaRegen:    now,
			Seios:               e.tuning.StartingSeios(),
			Ichor:               e.tuning.StartingIchor(),
			CurrentFloor:        1,
			HighestFloorReached: 1,
			LastActive:          now,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		return tx.CreatePlayer(ctx, player)
	})
	if err != nil {
		return fail[*models.Player]("player.create", err)
	}

	e.recorder.Record(player.ID, audit.PlayerCreated, map[string]any{
		"discord_id":     discordID,
		"username":       username,
		"starting_seios": player.Seios,
		"starting_ichor": player.Ichor,
	})
	return ok(player)
}

// GetByDiscordID looks up an account without creating one.
func (e *PlayerEngine) GetByDiscordID(ctx context.Context, discordID string) Result[*models.Player] {
	player, err := e.store.GetPlayerByDiscordID(ctx, discordID)
	if err != nil {
		if isNotFound(err) {
			return fail[*models.Player]("player.get", notFoundf("no account yet, use /start first"))
		}
		return fail[*models.Player]("player.get", err)
	}
	return ok(player)
}

// GetOrCreate resolves the account for a Discord user, registering one on
// first contact.
func (e *PlayerEngine) GetOrCreate(ctx context.Context, discordID, username string) Result[*models.Player] {
	player, err := e.store.GetPlayerByDiscordID(ctx, discordID)
	if err == nil {
		return ok(player)
	}
	if !isNotFound(err) {
		return fail[*models.Player]("player.get_or_create", err)
	}
	return e.Create(ctx, discordID, username)
}

// AddExperience awards xp and resolves level-ups in one transaction.
func (e *PlayerEngine) AddExperience(ctx context.Context, playerID, amount int64, source string) Result[ExperienceGain] {
	if amount <= 0 {
		return fail[ExperienceGain]("player.add_experience", validationf("amount must be positive, got %d", amount))
	}

	var gain ExperienceGain
	err := e.store.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		player, err := tx.GetPlayerForUpdate(ctx, playerID)
		if err != nil {
			return err
		}

		oldLevel := player.Level
		levels := awardExperience(player, amount, e.tuning)
		player.UpdateActivity()
		if err := tx.UpdatePlayer(ctx, player); err != nil {
			return err
		}

		gain = ExperienceGain{
			Gained:       amount,
			Total:        player.Experience,
			OldLevel:     oldLevel,
			NewLevel:     player.Level,
			LevelsGained: levels,
		}
		return nil
	})
	if err != nil {
		return fail[ExperienceGain]("player.add_experience", err)
	}

	e.recorder.Record(playerID, audit.CurrencyGain, map[string]any{
		"currency": "experience",
		"amount":   amount,
		"source":   source,
	})
	if gain.LevelsGained > 0 {
		e.recorder.Record(playerID, audit.LevelGained, map[string]any{
			"from_level": gain.OldLevel,
			"to_level":   gain.NewLevel,
			"levels":     gain.LevelsGained,
			"source":     source,
		})
	}
	return ok(gain)
}

// LevelInfo reports progression toward the next level, read-only.
func (e *PlayerEngine) LevelInfo(ctx context.Context, playerID int64) Result[LevelInfo] {
	player, err := e.store.GetPlayer(ctx, playerID)
	if err != nil {
		return fail[LevelInfo]("player.level_info", err)
	}
	return ok(levelInfo(player, e.tuning))
}

// UpdateUsername renames the account.
func (e *PlayerEngine) UpdateUsername(ctx context.Context, playerID int64, username string) Result[*models.Player] {
	username = strings.TrimSpace(username)
	if username == "" {
		return fail[*models.Player]("player.update_username", validationf("username cannot be empty"))
	}
	if len(username) > 100 {
		username = username[:100]
	}

	var player *models.Player
	err := e.store.WithTransaction(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		player, err = tx.GetPlayerForUpdate(ctx, playerID)
		if err != nil {
			return err
		}
		player.Username = username
		player.UpdateActivity()
		return tx.UpdatePlayer(ctx, player)
	})
	if err != nil {
		return fail[*models.Player]("player.update_username", err)
	}
	return ok(player)
}
