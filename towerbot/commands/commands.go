package commands

import (
	"context"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/esprit-rpg/towerbot/towerbot"
	"github.com/esprit-rpg/towerbot/towerbot/database/models"
	"github.com/esprit-rpg/towerbot/towerbot/utils"
)

// Commands is the full slash command set synced to Discord.
var Commands = []discord.ApplicationCommandCreate{
	Start,
	Profile,
	Balance,
	Status,
	Pray,
	Summon,
	Collection,
	Esprit,
	Fuse,
	Climb,
	Raid,
	Tower,
	Power,
	Give,
	Admin,
}

const commandContextTimeout = 5 * time.Second

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), commandContextTimeout)
}

// requirePlayer resolves the invoking user's account. A nil player means the
// error response has already been sent.
func requirePlayer(ctx context.Context, b *towerbot.Bot, e *handler.CommandEvent) (*models.Player, error) {
	res := b.Players.GetByDiscordID(ctx, e.User().ID.String())
	if !res.Success {
		return nil, utils.EH.CreateEngineError(e, res.Err())
	}
	return res.Data, nil
}
