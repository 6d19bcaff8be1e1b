package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"time"

	"log/slog"

	"github.com/esprit-rpg/towerbot/towerbot/database/models"
	"github.com/uptrace/bun"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

const (
	defaultConnTimeout   = 5 * time.Second
	defaultMaxRetries    = 3
	defaultRetryInterval = time.Second
	schemaVersion        = 1 // bump when schema/migrations change
)

type DBConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	Database     string `toml:"database"`
	PoolSize     int    `toml:"pool_size"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	MaxLifetime  int    `toml:"max_lifetime"`
}

type DB struct {
	pool  *pgxpool.Pool
	bunDB *bun.DB
}

func New(ctx context.Context, cfg DBConfig) (*DB, error) {
	// Probe reachability with retries before handing pgx a dead address.
	var conn net.Conn
	var err error

	tryDial := func() (net.Conn, error) {
		addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))
		force4 := os.Getenv("DB_DIAL_FORCE_IPV4") == "1"
		force6 := os.Getenv("DB_DIAL_FORCE_IPV6") == "1"

		if force4 {
			return net.DialTimeout("tcp4", addr, defaultConnTimeout)
		}
		if force6 {
			return net.DialTimeout("tcp6", addr, defaultConnTimeout)
		}

		// Prefer IPv4, then fall back to IPv6
		if c, e := net.DialTimeout("tcp4", addr, defaultConnTimeout); e == nil {
			return c, nil
		}
		return net.DialTimeout("tcp6", addr, defaultConnTimeout)
	}

	for i := 0; i < defaultMaxRetries; i++ {
		conn, err = tryDial()
		if err == nil {
			break
		}
		time.Sleep(defaultRetryInterval)
	}
	if err != nil {
		return nil, fmt.Errorf("database server unreachable after %d attempts: %w", defaultMaxRetries, err)
	}
	defer conn.Close()

	poolConfig, err := pgxpool.ParseConfig(buildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	if cfg.PoolSize > 0 {
		poolConfig.MaxConns = int32(cfg.PoolSize)
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = time.Duration(cfg.MaxLifetime) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return &DB{pool: pool, bunDB: newBunDB(pool)}, nil
}

func buildConnString(cfg DBConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?connect_timeout=5",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
	)
}

func (db *DB) GetPool() *pgxpool.Pool {
	return db.pool
}

func (db *DB) BunDB() *bun.DB {
	return db.bunDB
}

func newBunDB(pool *pgxpool.Pool) *bun.DB {
	// Default to disabling SSL for Bun unless explicitly overridden by env
	sslMode := os.Getenv("PG_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		pool.Config().ConnConfig.User,
		pool.Config().ConnConfig.Password,
		pool.Config().ConnConfig.Host,
		pool.Config().ConnConfig.Port,
		pool.Config().ConnConfig.Database,
		sslMode,
	)

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func (db *DB) ExecWithLog(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	start := time.Now()
	result, err := db.pool.Exec(ctx, sql, args...)
	duration := time.Since(start)

	if err != nil {
		slog.Error("Query failed",
			slog.String("type", "db"),
			slog.String("operation", "exec"),
			slog.String("query", sql),
			slog.Any("args", args),
			slog.Duration("took", duration),
			slog.Any("error", err),
		)
		return result, err
	}

	slog.Info("Query executed",
		slog.String("type", "db"),
		slog.String("operation", "exec"),
		slog.String("query", sql),
		slog.Any("args", args),
		slog.Duration("took", duration),
		slog.Int64("affected_rows", result.RowsAffected()),
	)
	return result, nil
}

func (db *DB) QueryWithLog(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	start := time.Now()
	rows, err := db.pool.Query(ctx, sql, args...)
	duration := time.Since(start)

	if err != nil {
		slog.Error("Query failed",
			slog.String("type", "db"),
			slog.String("operation", "query"),
			slog.String("query", sql),
			slog.Any("args", args),
			slog.Duration("took", duration),
			slog.Any("error", err),
		)
		return rows, err
	}

	slog.Info("Query executed",
		slog.String("type", "db"),
		slog.String("operation", "query"),
		slog.String("query", sql),
		slog.Any("args", args),
		slog.Duration("took", duration),
	)
	return rows, nil
}

func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
	if db.bunDB != nil {
		db.bunDB.Close()
	}
}

// InitializeSchema creates all required database tables and indexes
func (db *DB) InitializeSchema(ctx context.Context) error {
	// Fast init path for development: skip when schema version matches
	fastInit := os.Getenv("DB_FAST_INIT") == "1"
	if fastInit {
		if err := db.ensureAppMeta(ctx); err == nil {
			if v, _ := db.getAppMeta(ctx, "schema_version"); v == fmt.Sprintf("%d", schemaVersion) {
				slog.Info("Fast DB init: schema up-to-date, skipping initialization",
					slog.String("mode", "DB_FAST_INIT"),
					slog.Int("schema_version", schemaVersion))
				return nil
			}
		}
	}

	if err := db.ensureUTF8Encoding(ctx); err != nil {
		return fmt.Errorf("failed to ensure UTF-8 encoding: %w", err)
	}

	// Create tables in the correct order to handle foreign key constraints
	tables := []interface{}{
		(*models.EspritBase)(nil),
		(*models.Player)(nil),
		(*models.Esprit)(nil),
		(*models.AuditEvent)(nil),
	}

	for _, model := range tables {
		query := db.bunDB.NewCreateTable().
			Model(model).
			IfNotExists()

		if _, err := query.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	indexes := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_players_discord_id ON players(discord_id);",
		"CREATE INDEX IF NOT EXISTS idx_players_last_active ON players(last_active);",
		// Prayer notifier scan: opted-in players by prayer time
		"CREATE INDEX IF NOT EXISTS idx_players_pray_ready ON players(last_pray_time) WHERE pray_notifications = true;",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_esprits_owner_base ON esprits(owner_id, base_id);",
		"CREATE INDEX IF NOT EXISTS idx_esprits_owner_id ON esprits(owner_id) WHERE quantity > 0;",
		// Seeding upserts by name
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_esprit_bases_name ON esprit_bases(name);",
		"CREATE INDEX IF NOT EXISTS idx_esprit_bases_tier ON esprit_bases(base_tier);",
		"CREATE INDEX IF NOT EXISTS idx_esprit_bases_element ON esprit_bases(element);",
		"CREATE INDEX IF NOT EXISTS idx_audit_events_player ON audit_events(player_id, created_at);",
		"CREATE INDEX IF NOT EXISTS idx_audit_events_kind ON audit_events(kind, created_at);",
	}

	for _, idx := range indexes {
		if _, err := db.ExecWithLog(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	if err := db.SeedEspritBases(ctx); err != nil {
		return fmt.Errorf("failed to seed esprit catalog: %w", err)
	}

	// Update schema version marker (safe upsert)
	if err := db.ensureAppMeta(ctx); err == nil {
		_ = db.setAppMeta(ctx, "schema_version", fmt.Sprintf("%d", schemaVersion))
	}

	return nil
}

// ensureAppMeta creates the app_meta table if not exists
func (db *DB) ensureAppMeta(ctx context.Context) error {
	_, err := db.ExecWithLog(ctx, `CREATE TABLE IF NOT EXISTS app_meta (key TEXT PRIMARY KEY, value TEXT)`)
	return err
}

func (db *DB) getAppMeta(ctx context.Context, key string) (string, error) {
	row := db.pool.QueryRow(ctx, `SELECT value FROM app_meta WHERE key = $1`, key)
	var v string
	if err := row.Scan(&v); err != nil {
		return "", err
	}
	return v, nil
}

func (db *DB) setAppMeta(ctx context.Context, key, value string) error {
	sql := `INSERT INTO app_meta(key, value) VALUES($1, $2)
            ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	_, err := db.pool.Exec(ctx, sql, key, value)
	return err
}

// Ping verifies both database connections are working
func (db *DB) Ping(ctx context.Context) error {
	if err := db.pool.Ping(ctx); err != nil {
		return fmt.Errorf("pgxpool ping failed: %w", err)
	}
	if err := db.bunDB.PingContext(ctx); err != nil {
		return fmt.Errorf("bun ping failed: %w", err)
	}
	return nil
}

// ensureUTF8Encoding checks and ensures the database is using UTF-8 encoding
func (db *DB) ensureUTF8Encoding(ctx context.Context) error {
	var encoding string
	err := db.pool.QueryRow(ctx, "SHOW server_encoding;").Scan(&encoding)
	if err != nil {
		return fmt.Errorf("failed to check database encoding: %w", err)
	}

	slog.Info("Database encoding", "encoding", encoding)

	// Changing encoding requires superuser, so only warn.
	if encoding != "UTF8" {
		slog.Warn("Database is not using UTF-8 encoding, this may cause character encoding issues",
			"current_encoding", encoding,
			"recommended", "UTF8")
	}

	if _, err = db.pool.Exec(ctx, "SET client_encoding TO 'UTF8';"); err != nil {
		return fmt.Errorf("failed to set client encoding to UTF-8: %w", err)
	}
	return nil
}

// SeedEspritBases upserts the starter esprit catalog so a fresh database is
// summonable immediately. Content updates overwrite stats by name.
func (db *DB) SeedEspritBases(ctx context.Context) error {
	insertSQL := `
        INSERT INTO esprit_bases (name, element, base_tier, base_atk, base_def, description)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (name) DO UPDATE SET
            element = EXCLUDED.element,
            base_tier = EXCLUDED.base_tier,
            base_atk = EXCLUDED.base_atk,
            base_def = EXCLUDED.base_def,
            description = EXCLUDED.description;
    `

	for _, b := range starterCatalog {
		if _, err := db.ExecWithLog(ctx, insertSQL,
			b.Name, b.Element, b.BaseTier, b.BaseAtk, b.BaseDef, b.Description); err != nil {
			return fmt.Errorf("failed to seed esprit %s: %w", b.Name, err)
		}
	}

	slog.Info("Esprit catalog seeded successfully",
		slog.String("type", "db"),
		slog.Int("templates", len(starterCatalog)))
	return nil
}

// starterCatalog covers every tier and element so tier fallback during
// summons never walks off the bottom.
var starterCatalog = []models.EspritBase{
	// Tier 1
	{Name: "Cindling", Element: "Inferno", BaseTier: 1, BaseAtk: 12, BaseDef: 8, Description: "A spark that refuses to go out."},
	{Name: "Droplet", Element: "Aqua", BaseTier: 1, BaseAtk: 8, BaseDef: 12, Description: "A bead of living water."},
	{Name: "Gustling", Element: "Tempest", BaseTier: 1, BaseAtk: 11, BaseDef: 9, Description: "A breeze with opinions."},
	{Name: "Pebblekin", Element: "Earth", BaseTier: 1, BaseAtk: 7, BaseDef: 13, Description: "Small, round, and remarkably stubborn."},
	{Name: "Shadeworm", Element: "Umbral", BaseTier: 1, BaseAtk: 10, BaseDef: 10, Description: "It prefers the underside of things."},
	{Name: "Glimmer", Element: "Radiant", BaseTier: 1, BaseAtk: 9, BaseDef: 11, Description: "A stray mote of tower light."},
	// Tier 2
	{Name: "Emberwolf", Element: "Inferno", BaseTier: 2, BaseAtk: 24, BaseDef: 16, Description: "Runs hotter when cornered."},
	{Name: "Tidecaller", Element: "Aqua", BaseTier: 2, BaseAtk: 17, BaseDef: 23, Description: "The tide comes when it whistles."},
	{Name: "Stormkite", Element: "Tempest", BaseTier: 2, BaseAtk: 22, BaseDef: 18, Description: "Rides the updrafts between floors."},
	{Name: "Bouldermaw", Element: "Earth", BaseTier: 2, BaseAtk: 15, BaseDef: 25, Description: "Eats gravel, spits grudges."},
	{Name: "Duskstalker", Element: "Umbral", BaseTier: 2, BaseAtk: 21, BaseDef: 19, Description: "You will not hear it twice."},
	{Name: "Lumen Owl", Element: "Radiant", BaseTier: 2, BaseAtk: 18, BaseDef: 22, Description: "Sees by the light it sheds."},
	// Tier 3
	{Name: "Pyreclaw", Element: "Inferno", BaseTier: 3, BaseAtk: 42, BaseDef: 28, Description: "Its talons scorch the floor markings."},
	{Name: "Abyssal Koi", Element: "Aqua", BaseTier: 3, BaseAtk: 30, BaseDef: 40, Description: "Grew strange in the flooded levels."},
	{Name: "Galehart", Element: "Tempest", BaseTier: 3, BaseAtk: 38, BaseDef: 32, Description: "A stag-shaped knot of wind."},
	{Name: "Terragon", Element: "Earth", BaseTier: 3, BaseAtk: 28, BaseDef: 44, Description: "A dragon in the geological sense."},
	{Name: "Nightrender", Element: "Umbral", BaseTier: 3, BaseAtk: 40, BaseDef: 30, Description: "Cuts shapes out of the dark."},
	{Name: "Dawnpiercer", Element: "Radiant", BaseTier: 3, BaseAtk: 36, BaseDef: 34, Description: "The first light after a cleared floor."},
	// Tier 4
	{Name: "Infernarch", Element: "Inferno", BaseTier: 4, BaseAtk: 70, BaseDef: 50, Description: "Royalty of the burning floors."},
	{Name: "Maelstrom Naga", Element: "Aqua", BaseTier: 4, BaseAtk: 55, BaseDef: 65, Description: "The whirlpool is its tail."},
	{Name: "Thunder Roc", Element: "Tempest", BaseTier: 4, BaseAtk: 66, BaseDef: 54, Description: "Its wingbeats register on instruments."},
	{Name: "Gravemountain", Element: "Earth", BaseTier: 4, BaseAtk: 48, BaseDef: 72, Description: "Climbers mistake it for terrain."},
	{Name: "Voidmaw", Element: "Umbral", BaseTier: 4, BaseAtk: 68, BaseDef: 52, Description: "What it swallows stays swallowed."},
	{Name: "Seraph Lynx", Element: "Radiant", BaseTier: 4, BaseAtk: 60, BaseDef: 60, Description: "Walks on light it makes itself."},
	// Tier 5
	{Name: "Cataclysm Drake", Element: "Inferno", BaseTier: 5, BaseAtk: 110, BaseDef: 80, Description: "Floors burn for weeks after it passes."},
	{Name: "Leviathan Sovereign", Element: "Aqua", BaseTier: 5, BaseAtk: 85, BaseDef: 105, Description: "The flooded levels answer to it."},
	{Name: "Tempest Regent", Element: "Tempest", BaseTier: 5, BaseAtk: 100, BaseDef: 90, Description: "Crowned in a permanent storm."},
	{Name: "Worldspine", Element: "Earth", BaseTier: 5, BaseAtk: 78, BaseDef: 112, Description: "Some say the tower rests on it."},
	{Name: "Umbra Tyrant", Element: "Umbral", BaseTier: 5, BaseAtk: 105, BaseDef: 85, Description: "Darkness with a throne."},
	{Name: "Solarius", Element: "Radiant", BaseTier: 5, BaseAtk: 95, BaseDef: 95, Description: "A captive sunrise."},
	// Tier 6
	{Name: "Pyrrhos Eternal", Element: "Inferno", BaseTier: 6, BaseAtk: 160, BaseDef: 120, Description: "The fire that was here before the tower."},
	{Name: "Thalassion", Element: "Aqua", BaseTier: 6, BaseAtk: 125, BaseDef: 155, Description: "The sea remembers being everything."},
	{Name: "Zephyrion Prime", Element: "Tempest", BaseTier: 6, BaseAtk: 150, BaseDef: 130, Description: "The storm at the top of everything."},
	{Name: "Atlas Reborn", Element: "Earth", BaseTier: 6, BaseAtk: 115, BaseDef: 165, Description: "It carries the upper floors without complaint."},
	{Name: "Erebos Unbound", Element: "Umbral", BaseTier: 6, BaseAtk: 155, BaseDef: 125, Description: "The dark between the tower's lights."},
	{Name: "Luxarchon", Element: "Radiant", BaseTier: 6, BaseAtk: 140, BaseDef: 140, Description: "Keeper of the summit's glow."},
}
