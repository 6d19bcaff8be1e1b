package commands

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/esprit-rpg/towerbot/towerbot"
	"github.com/esprit-rpg/towerbot/towerbot/utils"
)

var Raid = discord.SlashCommandCreate{
	Name:        "raid",
	Description: "💤 Collect the spoils your esprits gathered while you were away",
}

func RaidHandler(b *towerbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		player, err := requirePlayer(ctx, b, e)
		if player == nil {
			return err
		}

		res := b.Tower.Raid(ctx, player.ID)
		if !res.Success {
			return utils.EH.CreateEngineError(e, res.Err())
		}

		raid := res.Data
		description := fmt.Sprintf(
			"Your esprits raided **floor %d** for **%s**.\n\n"+
				"💰 **%s** seios",
			raid.Floor,
			utils.FormatHours(raid.IdleHours),
			utils.FormatNumber(raid.Loot.Seios),
		)
		if raid.Loot.Encounter {
			description += fmt.Sprintf("\n🗝️ Treasure encounter! Bonus **%s** seios", utils.FormatNumber(raid.Loot.BonusSeios))
		}
		if raid.Loot.Erythl > 0 {
			description += fmt.Sprintf("\n💎 **%d** erythl", raid.Loot.Erythl)
		}

		description += fmt.Sprintf(
			"\n\n🗼 Floor progress: %s %s",
			utils.ProgressBar(raid.TotalProgress, 12),
			utils.FormatPercent(raid.TotalProgress),
		)
		if raid.ReadyToClimb {
			description += "\nThe path to the boss is open — `/climb` when ready!"
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "💤 Idle Raid Collected",
				Description: description,
				Color:       utils.SuccessColor,
			}},
		})
	}
}
