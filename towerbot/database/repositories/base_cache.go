package repositories

import (
	"context"
	"fmt"

	"github.com/esprit-rpg/towerbot/towerbot/database/models"
	lru "github.com/hashicorp/golang-lru"
	"github.com/uptrace/bun"
)

const baseCacheSize = 512

// BaseCache serves esprit templates from an LRU in front of the database.
// Templates only change when the catalog is reseeded, so entries are never
// invalidated individually; Reset clears everything after a reseed.
type BaseCache struct {
	db    *bun.DB
	cache *lru.Cache
}

func NewBaseCache(db *bun.DB) *BaseCache {
	cache, _ := lru.New(baseCacheSize)
	return &BaseCache{db: db, cache: cache}
}

func (c *BaseCache) Get(ctx context.Context, baseID int64) (*models.EspritBase, error) {
	if base, ok := c.Peek(baseID); ok {
		return base, nil
	}

	base := new(models.EspritBase)
	err := c.db.NewSelect().
		Model(base).
		Where("id = ?", baseID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	c.cache.Add(baseID, base)
	return base, nil
}

func (c *BaseCache) Peek(baseID int64) (*models.EspritBase, bool) {
	if v, ok := c.cache.Get(baseID); ok {
		if base, ok := v.(*models.EspritBase); ok {
			return base, true
		}
	}
	return nil, false
}

func (c *BaseCache) Put(base *models.EspritBase) {
	c.cache.Add(base.ID, base)
}

// Warm preloads the entire catalog; call once after schema init.
func (c *BaseCache) Warm(ctx context.Context) error {
	var bases []*models.EspritBase
	err := c.db.NewSelect().
		Model(&bases).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return fmt.Errorf("failed to warm template cache: %w", err)
	}

	for _, base := range bases {
		c.cache.Add(base.ID, base)
	}
	return nil
}

func (c *BaseCache) Reset() {
	c.cache.Purge()
}
