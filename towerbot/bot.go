package towerbot

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/paginator"

	"github.com/esprit-rpg/towerbot/towerbot/audit"
	"github.com/esprit-rpg/towerbot/towerbot/database"
	"github.com/esprit-rpg/towerbot/towerbot/database/repositories"
	"github.com/esprit-rpg/towerbot/towerbot/engine"
	"github.com/esprit-rpg/towerbot/towerbot/gameconfig"
)

func New(cfg Config, version string, commit string) *Bot {
	return &Bot{
		Cfg:       cfg,
		Paginator: paginator.New(),
		Version:   version,
		Commit:    commit,
	}
}

type Bot struct {
	Cfg       Config
	Client    bot.Client
	Paginator *paginator.Manager
	Version   string
	Commit    string

	DB      *database.DB
	Store   *repositories.Store
	GameCfg *gameconfig.Provider
	Tuning  *engine.Tuning
	Audit   audit.Recorder

	Players  *engine.PlayerEngine
	Resource *engine.ResourceEngine
	Currency *engine.CurrencyEngine
	Gacha    *engine.GachaEngine
	Fusion   *engine.FusionEngine
	Tower    *engine.TowerEngine
	Prayer   *engine.PrayerEngine
	Power    *engine.PowerEngine
}

// SetupEngines wires the game engines on top of an initialized database.
func (b *Bot) SetupEngines() {
	b.Store = repositories.NewStore(b.DB.BunDB())
	b.Tuning = engine.NewTuning(b.GameCfg)

	rng := engine.NewRandomSource()

	b.Players = engine.NewPlayerEngine(b.Store, b.Tuning, b.Audit)
	b.Resource = engine.NewResourceEngine(b.Store, b.Tuning, b.Audit)
	b.Currency = engine.NewCurrencyEngine(b.Store, b.Tuning, b.Audit)
	b.Gacha = engine.NewGachaEngine(b.Store, b.Tuning, b.Audit, rng)
	b.Fusion = engine.NewFusionEngine(b.Store, b.Tuning, b.Audit)
	b.Tower = engine.NewTowerEngine(b.Store, b.Tuning, b.Audit, rng)
	b.Prayer = engine.NewPrayerEngine(b.Store, b.Tuning, b.Audit)
	b.Power = engine.NewPowerEngine(b.Store, b.Tuning)
}

func (b *Bot) SetupBot(listeners ...bot.EventListener) error {
	client, err := disgo.New(b.Cfg.Bot.Token,
		bot.WithGatewayConfigOpts(gateway.WithIntents(gateway.IntentGuilds)),
		bot.WithCacheConfigOpts(cache.WithCaches(cache.FlagGuilds)),
		bot.WithEventListeners(b.Paginator),
		bot.WithEventListeners(listeners...),
	)
	if err != nil {
		return err
	}

	b.Client = client
	return nil
}

func (b *Bot) OnReady(_ *events.Ready) {
	slog.Info("TowerBot is now ready",
		slog.String("version", b.Version),
		slog.String("commit", b.Commit))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.Client.SetPresence(ctx,
		gateway.WithPlayingActivity("the endless tower"),
		gateway.WithOnlineStatus(discord.OnlineStatusOnline)); err != nil {
		slog.Error("Failed to set presence", slog.Any("error", err))
	}
}
