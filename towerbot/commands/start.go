package commands

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/esprit-rpg/towerbot/towerbot"
	"github.com/esprit-rpg/towerbot/towerbot/utils"
)

var Start = discord.SlashCommandCreate{
	Name:        "start",
	Description: "🗼 Begin your climb of the endless tower",
}

func StartHandler(b *towerbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		res := b.Players.Create(ctx, e.User().ID.String(), e.User().Username)
		if !res.Success {
			return utils.EH.CreateEngineError(e, res.Err())
		}

		player := res.Data
		description := fmt.Sprintf(
			"Welcome to the tower, **%s**!\n\n"+
				"You begin on **floor %d** with:\n"+
				"💰 **%s** seios\n"+
				"🧪 **%s** ichor\n"+
				"⚡ **%d** energy  🗡️ **%d** stamina\n\n"+
				"Use `/summon` to call your first esprit, then `/climb` when you feel strong enough.",
			player.Username,
			player.CurrentFloor,
			utils.FormatNumber(player.Seios),
			utils.FormatNumber(player.Ichor),
			player.Energy,
			player.Stamina,
		)

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "🗼 The Tower Awaits",
				Description: description,
				Color:       utils.SuccessColor,
			}},
		})
	}
}
