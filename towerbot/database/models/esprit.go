package models

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Esprit is a player-owned stack of one template: every extra summon of the
// same base increments quantity, fusion trades two copies for one copy a tier
// higher. Rows are never hard-deleted; a fully fused-away stack keeps
// quantity 0 as a ledger remnant. One row per (owner, base) pair.
type Esprit struct {
	bun.BaseModel `bun:"table:esprits,alias:e"`

	ID      int64 `bun:"id,pk,autoincrement"`
	OwnerID int64 `bun:"owner_id,notnull"`
	BaseID  int64 `bun:"base_id,notnull"`

	Quantity int64 `bun:"quantity,notnull,default:1"`
	Tier     int   `bun:"tier,notnull,default:1"`

	// Cached from the base template so collection queries avoid the join.
	Element string `bun:"element,notnull"`

	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
	LastModified time.Time `bun:"last_modified,notnull"`

	Base *EspritBase `bun:"rel:belongs-to,join:base_id=id"`
}

// Touch updates the modification timestamp.
func (e *Esprit) Touch() {
	e.LastModified = time.Now().UTC()
}

// StackDisplay formats tier and quantity for embeds.
func (e *Esprit) StackDisplay() string {
	if e.Quantity == 1 {
		return fmt.Sprintf("Tier %d", e.Tier)
	}
	return fmt.Sprintf("Tier %d (×%d)", e.Tier, e.Quantity)
}
