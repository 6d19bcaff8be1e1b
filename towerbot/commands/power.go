package commands

import (
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/esprit-rpg/towerbot/towerbot"
	"github.com/esprit-rpg/towerbot/towerbot/utils"
)

var Power = discord.SlashCommandCreate{
	Name:        "power",
	Description: "💪 See which esprits carry your combat power",
}

func PowerHandler(b *towerbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		player, err := requirePlayer(ctx, b, e)
		if player == nil {
			return err
		}

		res := b.Power.Contributions(ctx, player.ID)
		if !res.Success {
			return utils.EH.CreateEngineError(e, res.Err())
		}
		if len(res.Data) == 0 {
			return utils.EH.CreateInfoEmbed(e, "💪 No esprits yet. Use `/summon` to build your power.")
		}

		var description strings.Builder
		description.WriteString("```ansi\n")
		for i, c := range res.Data {
			description.WriteString(fmt.Sprintf(
				"%2d. \x1b[32m%s\x1b[0m T%d ×%d  %s (%.0f%%)\n",
				i+1,
				c.Base.Name,
				c.Tier,
				c.Quantity,
				utils.FormatPower(c.Power),
				c.Percent,
			))
		}
		description.WriteString("```")
		description.WriteString(fmt.Sprintf(
			"\nTotal: ⚔️ **%s** / 🛡️ **%s**",
			utils.FormatPower(player.AttackPower),
			utils.FormatPower(player.DefensePower),
		))

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "💪 Power Breakdown",
				Description: description.String(),
				Color:       utils.InfoColor,
			}},
		})
	}
}
