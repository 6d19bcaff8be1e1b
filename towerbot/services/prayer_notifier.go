package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"

	"github.com/esprit-rpg/towerbot/towerbot/engine"
)

const notifyPollInterval = time.Minute

// PrayerNotifier DMs opted-in players when their prayer comes off cooldown.
// Each cooldown window is announced at most once; the sent-marker is keyed on
// the player's last prayer time, so praying again re-arms the notification.
type PrayerNotifier struct {
	client bot.Client
	prayer *engine.PrayerEngine

	mu       sync.Mutex
	notified map[int64]time.Time
}

func NewPrayerNotifier(client bot.Client, prayer *engine.PrayerEngine) *PrayerNotifier {
	return &PrayerNotifier{
		client:   client,
		prayer:   prayer,
		notified: make(map[int64]time.Time),
	}
}

func (n *PrayerNotifier) Run(ctx context.Context) error {
	ticker := time.NewTicker(notifyPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n.sweep(ctx)
		}
	}
}

func (n *PrayerNotifier) sweep(ctx context.Context) {
	players, err := n.prayer.ReadyForNotification(ctx)
	if err != nil {
		slog.Error("Prayer notification sweep failed",
			slog.String("type", "sys"),
			slog.Any("error", err))
		return
	}

	for _, player := range players {
		n.mu.Lock()
		alreadySent := n.notified[player.ID].Equal(player.LastPrayTime)
		if !alreadySent {
			n.notified[player.ID] = player.LastPrayTime
		}
		n.mu.Unlock()

		if alreadySent {
			continue
		}

		n.notify(ctx, player.DiscordID, player.Username)
	}
}

func (n *PrayerNotifier) notify(ctx context.Context, discordID, username string) {
	userID, err := snowflake.Parse(discordID)
	if err != nil {
		slog.Warn("Skipping prayer notification, bad discord id",
			slog.String("type", "sys"),
			slog.String("discord_id", discordID))
		return
	}

	channel, err := n.client.Rest().CreateDMChannel(userID)
	if err != nil {
		slog.Warn("Failed to open DM for prayer notification",
			slog.String("type", "sys"),
			slog.String("player_tag", username),
			slog.Any("error", err))
		return
	}

	_, err = n.client.Rest().CreateMessage(channel.ID(), discord.MessageCreate{
		Content: "🙏 Your prayer is ready! Use `/pray now` to collect your ichor.",
	})
	if err != nil {
		slog.Warn("Failed to send prayer notification",
			slog.String("type", "sys"),
			slog.String("player_tag", username),
			slog.Any("error", err))
		return
	}

	slog.Info("Prayer notification sent",
		slog.String("type", "sys"),
		slog.String("player_tag", username))
}
