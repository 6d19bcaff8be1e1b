package commands

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/esprit-rpg/towerbot/towerbot"
	"github.com/esprit-rpg/towerbot/towerbot/utils"
)

var Esprit = discord.SlashCommandCreate{
	Name:        "esprit",
	Description: "🔍 Inspect one esprit stack you own",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionInt{
			Name:        "id",
			Description: "The esprit's template id (shown in /collection)",
			Required:    true,
			MinValue:    intPtr(1),
		},
	},
}

func intPtr(v int) *int { return &v }

func EspritHandler(b *towerbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		player, err := requirePlayer(ctx, b, e)
		if player == nil {
			return err
		}

		baseID := int64(e.SlashCommandInteractionData().Int("id"))

		res := b.Gacha.Inspect(ctx, player.ID, baseID)
		if !res.Success {
			return utils.EH.CreateEngineError(e, res.Err())
		}

		entry := res.Data
		description := fmt.Sprintf(
			"**%s** · Tier %d (%s)\n%s\n\n"+
				"Copies owned: **%d**\n"+
				"Stack power: **%s**\n"+
				"Base stats: ⚔️ %d / 🛡️ %d",
			entry.Base.Element,
			entry.Esprit.Tier,
			b.Tuning.TierName(entry.Esprit.Tier),
			entry.Base.Description,
			entry.Esprit.Quantity,
			utils.FormatPower(entry.Power),
			entry.Base.BaseAtk,
			entry.Base.BaseDef,
		)

		embed := discord.Embed{
			Title:       fmt.Sprintf("🔍 %s", entry.Base.Name),
			Description: description,
			Color:       utils.TierColor(entry.Esprit.Tier),
		}
		if entry.Base.PortraitURL != "" {
			embed.Image = &discord.EmbedResource{URL: entry.Base.PortraitURL}
		}

		return e.CreateMessage(discord.MessageCreate{Embeds: []discord.Embed{embed}})
	}
}
