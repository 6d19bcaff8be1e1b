package commands

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/esprit-rpg/towerbot/towerbot"
	"github.com/esprit-rpg/towerbot/towerbot/utils"
)

var Pray = discord.SlashCommandCreate{
	Name:        "pray",
	Description: "🙏 Prayers and their cooldown",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "now",
			Description: "Pray for a gift of ichor",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "status",
			Description: "Check when your next prayer is ready",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "notify",
			Description: "Toggle a ping when your prayer comes off cooldown",
		},
	},
}

func PrayHandler(b *towerbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		player, err := requirePlayer(ctx, b, e)
		if player == nil {
			return err
		}

		switch *e.SlashCommandInteractionData().SubCommandName {
		case "status":
			res := b.Prayer.Status(ctx, player.ID)
			if !res.Success {
				return utils.EH.CreateEngineError(e, res.Err())
			}
			if res.Data.Ready {
				return utils.EH.CreateInfoEmbed(e, "🙏 Your prayer is ready. Use `/pray now`.")
			}
			return utils.EH.CreateInfoEmbed(e, fmt.Sprintf(
				"⏰ Next prayer in **%s**.", utils.FormatDuration(res.Data.Remaining)))

		case "notify":
			res := b.Prayer.ToggleNotifications(ctx, player.ID)
			if !res.Success {
				return utils.EH.CreateEngineError(e, res.Err())
			}
			if res.Data {
				return utils.EH.CreateSuccessEmbed(e, "🔔 Prayer notifications enabled.")
			}
			return utils.EH.CreateSuccessEmbed(e, "🔕 Prayer notifications disabled.")

		default:
			res := b.Prayer.Pray(ctx, player.ID)
			if !res.Success {
				return utils.EH.CreateEngineError(e, res.Err())
			}
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{{
					Title: "🙏 Prayer Answered",
					Description: fmt.Sprintf(
						"You received **%d** ichor (now **%s**).\nNext prayer in **%s**.",
						res.Data.IchorGained,
						utils.FormatNumber(res.Data.IchorTotal),
						utils.FormatDuration(res.Data.NextPrayIn)),
					Color: utils.SuccessColor,
				}},
			})
		}
	}
}
