package models

import "github.com/uptrace/bun"

// EspritBase is the immutable template shared by every owned copy of an
// esprit. Content authors manage these rows; the game only reads them.
type EspritBase struct {
	bun.BaseModel `bun:"table:esprit_bases,alias:eb"`

	ID       int64  `bun:"id,pk,autoincrement"`
	Name     string `bun:"name,notnull"`
	Element  string `bun:"element,notnull"`
	BaseTier int    `bun:"base_tier,notnull,default:1"`

	BaseAtk int `bun:"base_atk,notnull,default:10"`
	BaseDef int `bun:"base_def,notnull,default:10"`

	Description string `bun:"description"`
	ImageURL    string `bun:"image_url"`
	PortraitURL string `bun:"portrait_url"`
}

// BasePower is the unscaled template power used in catalog displays.
func (b *EspritBase) BasePower() int {
	return b.BaseAtk + b.BaseDef
}
