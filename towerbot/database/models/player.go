package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Player struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	ID        int64  `bun:"id,pk,autoincrement"`
	DiscordID string `bun:"discord_id,notnull,unique"`
	Username  string `bun:"username,notnull"`

	// Progression
	Level      int   `bun:"level,notnull,default:1"`
	Experience int64 `bun:"experience,notnull,default:0"`

	// Regenerating resources
	Energy           int       `bun:"energy,notnull,default:0"`
	Stamina          int       `bun:"stamina,notnull,default:0"`
	LastEnergyRegen  time.Time `bun:"last_energy_regen,notnull"`
	LastStaminaRegen time.Time `bun:"last_stamina_regen,notnull"`

	// Currencies
	Seios  int64 `bun:"seios,notnull,default:0"`
	Ichor  int64 `bun:"ichor,notnull,default:0"`
	Erythl int64 `bun:"erythl,notnull,default:0"`

	// Cached combat aggregates, recomputed after collection mutations
	AttackPower  int64 `bun:"attack_power,notnull,default:0"`
	DefensePower int64 `bun:"defense_power,notnull,default:0"`

	// Tower progression
	CurrentFloor        int     `bun:"current_floor,notnull,default:1"`
	HighestFloorReached int     `bun:"highest_floor_reached,notnull,default:1"`
	TotalFloorClears    int     `bun:"total_floor_clears,notnull,default:0"`
	TotalBossKills      int     `bun:"total_boss_kills,notnull,default:0"`
	RaidProgress        float64 `bun:"raid_progress,notnull,default:0"`

	// Activity tracking
	LastActive    time.Time `bun:"last_active,notnull"`
	LastPrayTime  time.Time `bun:"last_pray_time,nullzero"`
	LastClimbTime time.Time `bun:"last_climb_time,nullzero"`
	LastRaidTime  time.Time `bun:"last_raid_time,nullzero"`

	// Preferences
	PrayNotifications   bool `bun:"pray_notifications,notnull,default:false"`
	EnergyNotifications bool `bun:"energy_notifications,notnull,default:false"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// TotalPower returns the cached combat power sum. It may lag behind the
// collection between explicit refresh points.
func (p *Player) TotalPower() int64 {
	return p.AttackPower + p.DefensePower
}

// UpdateActivity stamps the player as active now.
func (p *Player) UpdateActivity() {
	p.LastActive = time.Now().UTC()
}
