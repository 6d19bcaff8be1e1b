package gameconfig

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Provider is the game-tuning configuration store. Values are addressed by
// dotted paths ("tower.base_boss_health") and resolved against a snapshot of
// defaults deep-merged with every *.toml file in the config directory.
// Reload swaps the snapshot atomically, so readers mid-operation keep a
// consistent view.
type Provider struct {
	dir      string
	snapshot atomic.Pointer[map[string]any]
}

// New builds a provider for dir and performs the initial load. A missing or
// empty directory is not an error; defaults still apply.
func New(dir string) (*Provider, error) {
	p := &Provider{dir: dir}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Reload re-reads every config file and publishes a fresh snapshot.
func (p *Provider) Reload() error {
	merged := defaults()

	if p.dir != "" {
		files, err := filepath.Glob(filepath.Join(p.dir, "*.toml"))
		if err != nil {
			return fmt.Errorf("failed to scan config dir: %w", err)
		}
		for _, file := range files {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", file, err)
			}
			var overlay map[string]any
			if err := toml.Unmarshal(data, &overlay); err != nil {
				return fmt.Errorf("failed to parse %s: %w", file, err)
			}
			merged = deepMerge(merged, overlay)
			slog.Debug("Loaded game config file",
				slog.String("type", "sys"),
				slog.String("file", file))
		}
	}

	p.snapshot.Store(&merged)
	slog.Info("Game configuration loaded",
		slog.String("type", "sys"),
		slog.String("dir", p.dir))
	return nil
}

// Get resolves a dotted key against the current snapshot, returning def when
// any path segment is absent.
func (p *Provider) Get(key string, def any) any {
	snap := p.snapshot.Load()
	if snap == nil {
		return def
	}

	var cur any = *snap
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return def
		}
		cur, ok = m[part]
		if !ok {
			return def
		}
	}
	return cur
}

// Int reads an integer value; TOML decodes numbers as int64 or float64.
func (p *Provider) Int(key string, def int) int {
	switch v := p.Get(key, nil).(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	default:
		return def
	}
}

func (p *Provider) Int64(key string, def int64) int64 {
	switch v := p.Get(key, nil).(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return def
	}
}

func (p *Provider) Float(key string, def float64) float64 {
	switch v := p.Get(key, nil).(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return def
	}
}

func (p *Provider) Bool(key string, def bool) bool {
	if v, ok := p.Get(key, nil).(bool); ok {
		return v
	}
	return def
}

func (p *Provider) String(key string, def string) string {
	if v, ok := p.Get(key, nil).(string); ok {
		return v
	}
	return def
}

// Minutes reads a duration stored as a minute count.
func (p *Provider) Minutes(key string, def time.Duration) time.Duration {
	v := p.Float(key, -1)
	if v < 0 {
		return def
	}
	return time.Duration(v * float64(time.Minute))
}

// FloatMap reads a table of numeric values, e.g. the summon rate table keyed
// by tier string.
func (p *Provider) FloatMap(key string) map[string]float64 {
	m, ok := p.Get(key, nil).(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, raw := range m {
		switch v := raw.(type) {
		case float64:
			out[k] = v
		case int64:
			out[k] = float64(v)
		case int:
			out[k] = float64(v)
		}
	}
	return out
}

func deepMerge(base, overlay map[string]any) map[string]any {
	out := make(map[string]any, len(base))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		if bm, ok := out[k].(map[string]any); ok {
			if om, ok := v.(map[string]any); ok {
				out[k] = deepMerge(bm, om)
				continue
			}
		}
		out[k] = v
	}
	return out
}
