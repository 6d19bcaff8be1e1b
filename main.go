package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"
	"golang.org/x/sync/errgroup"

	"github.com/esprit-rpg/towerbot/towerbot"
	"github.com/esprit-rpg/towerbot/towerbot/audit"
	"github.com/esprit-rpg/towerbot/towerbot/commands"
	"github.com/esprit-rpg/towerbot/towerbot/database"
	"github.com/esprit-rpg/towerbot/towerbot/gameconfig"
	"github.com/esprit-rpg/towerbot/towerbot/handlers"
	"github.com/esprit-rpg/towerbot/towerbot/logger"
	"github.com/esprit-rpg/towerbot/towerbot/services"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := towerbot.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}

	logger.Setup(cfg.Log.Level)
	slog.Info("Starting TowerBot",
		slog.String("version", version),
		slog.String("commit", commit))

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	defer db.Close()

	slog.Info("Database connected successfully",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema",
			slog.String("error", err.Error()))
		os.Exit(-1)
	}
	slog.Info("Database schema initialized successfully")

	gameCfg, err := gameconfig.New(cfg.Game.ConfigDir)
	if err != nil {
		slog.Error("Failed to load gameplay tuning",
			slog.String("error", err.Error()),
			slog.String("config_dir", cfg.Game.ConfigDir))
		os.Exit(-1)
	}

	b := towerbot.New(*cfg, version, commit)
	b.DB = db
	b.GameCfg = gameCfg

	dbRecorder := audit.NewDBRecorder(db.BunDB())
	b.Audit = audit.MultiRecorder{audit.LogRecorder{}, dbRecorder}

	b.SetupEngines()

	h := handler.New()
	h.Command("/start", handlers.WrapWithLogging("start", commands.StartHandler(b)))
	h.Command("/profile", handlers.WrapWithLogging("profile", commands.ProfileHandler(b)))
	h.Command("/balance", handlers.WrapWithLogging("balance", commands.BalanceHandler(b)))
	h.Command("/status", handlers.WrapWithLogging("status", commands.StatusHandler(b)))
	h.Command("/pray", handlers.WrapWithLogging("pray", commands.PrayHandler(b)))
	h.Command("/summon", handlers.WrapWithLogging("summon", commands.SummonHandler(b)))
	h.Command("/collection", handlers.WrapWithLogging("collection", commands.CollectionHandler(b)))
	h.Command("/esprit", handlers.WrapWithLogging("esprit", commands.EspritHandler(b)))
	h.Command("/fuse", handlers.WrapWithLogging("fuse", commands.FuseHandler(b)))
	h.Command("/climb", handlers.WrapWithLogging("climb", commands.ClimbHandler(b)))
	h.Command("/raid", handlers.WrapWithLogging("raid", commands.RaidHandler(b)))
	h.Command("/tower", handlers.WrapWithLogging("tower", commands.TowerHandler(b)))
	h.Command("/power", handlers.WrapWithLogging("power", commands.PowerHandler(b)))
	h.Command("/give", handlers.WrapWithLogging("give", commands.GiveHandler(b)))
	h.Command("/admin", handlers.WrapWithLogging("admin", commands.AdminHandler(b)))

	if err = b.SetupBot(h, bot.NewListenerFunc(b.OnReady)); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err))
		os.Exit(-1)
	}

	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer closeCancel()
		b.Client.Close(closeCtx)
	}()

	if *shouldSyncCommands {
		slog.Info("Syncing commands",
			slog.String("type", "sys"),
			slog.Any("guild_ids", cfg.Bot.DevGuilds))
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err))
		}
	}

	gatewayCtx, gatewayCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer gatewayCancel()
	if err = b.Client.OpenGateway(gatewayCtx); err != nil {
		slog.Error("Failed to open gateway",
			slog.String("type", "sys"),
			slog.Any("error", err))
		os.Exit(-1)
	}

	// Background workers: audit drain and prayer notifier. Both stop on
	// shutdown; the audit drain flushes its buffer before returning.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	group, groupCtx := errgroup.WithContext(workerCtx)
	group.Go(func() error {
		return dbRecorder.Run(groupCtx)
	})
	notifier := services.NewPrayerNotifier(b.Client, b.Prayer)
	group.Go(func() error {
		return notifier.Run(groupCtx)
	})

	slog.Info("TowerBot is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s

	slog.Info("Shutting down...")
	workerCancel()
	if err := group.Wait(); err != nil && err != context.Canceled {
		slog.Warn("Background worker exited with error", slog.Any("error", err))
	}
}
