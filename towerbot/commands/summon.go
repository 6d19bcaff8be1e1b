package commands

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/esprit-rpg/towerbot/towerbot"
	"github.com/esprit-rpg/towerbot/towerbot/utils"
)

var Summon = discord.SlashCommandCreate{
	Name:        "summon",
	Description: "🧪 Spend ichor to summon an esprit",
}

func SummonHandler(b *towerbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		player, err := requirePlayer(ctx, b, e)
		if player == nil {
			return err
		}

		res := b.Gacha.Summon(ctx, player.ID)
		if !res.Success {
			return utils.EH.CreateEngineError(e, res.Err())
		}

		summon := res.Data
		title := fmt.Sprintf("✨ %s — %s", summon.Base.Name, summon.TierName)
		if summon.New {
			title = "🌟 NEW! " + title
		}

		description := fmt.Sprintf(
			"**%s** · %s\n%s\n\n"+
				"You now own **%d** cop%s.\n"+
				"🧪 Ichor: **%s** (−%d)",
			summon.Base.Element,
			summon.TierName,
			summon.Base.Description,
			summon.Quantity,
			plural(summon.Quantity, "y", "ies"),
			utils.FormatNumber(summon.IchorLeft),
			summon.IchorSpent,
		)

		embed := discord.Embed{
			Title:       title,
			Description: description,
			Color:       utils.TierColor(summon.Tier),
		}
		if summon.Base.ImageURL != "" {
			embed.Thumbnail = &discord.EmbedResource{URL: summon.Base.ImageURL}
		}

		return e.CreateMessage(discord.MessageCreate{Embeds: []discord.Embed{embed}})
	}
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
