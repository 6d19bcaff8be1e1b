package commands

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/esprit-rpg/towerbot/towerbot"
	"github.com/esprit-rpg/towerbot/towerbot/utils"
)

var Climb = discord.SlashCommandCreate{
	Name:        "climb",
	Description: "⚔️ Challenge your floor's boss",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionInt{
			Name:        "stamina",
			Description: "How much stamina to pour into the attempt",
			Required:    true,
			MinValue:    intPtr(1),
		},
	},
}

func ClimbHandler(b *towerbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		player, err := requirePlayer(ctx, b, e)
		if player == nil {
			return err
		}

		stamina := e.SlashCommandInteractionData().Int("stamina")

		res := b.Tower.Climb(ctx, player.ID, stamina)
		if !res.Success {
			return utils.EH.CreateEngineError(e, res.Err())
		}

		climb := res.Data
		if climb.Victory {
			title := fmt.Sprintf("🏆 Floor %d Cleared!", climb.FromFloor)
			description := fmt.Sprintf(
				"You dealt **%s** damage (boss had %s HP) with %d stamina.\n\n"+
					"You advance to **floor %d**.",
				utils.FormatNumber(climb.Combat.DamageDealt),
				utils.FormatNumber(int64(climb.Combat.BossMaxHealth)),
				climb.Combat.StaminaUsed,
				climb.ToFloor,
			)
			if climb.NewHighest {
				description += "\n🎉 A new personal best!"
			}
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{{
					Title:       title,
					Description: description,
					Color:       utils.SuccessColor,
				}},
			})
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title: fmt.Sprintf("💥 The Floor %d Boss Endures", climb.FromFloor),
				Description: fmt.Sprintf(
					"You dealt **%s** damage but **%s** HP remained.\n"+
						"Combat efficiency: **%.2f** — grow stronger or spend more stamina.",
					utils.FormatNumber(climb.Combat.DamageDealt),
					utils.FormatNumber(int64(climb.Combat.BossHealthRemaining)),
					climb.Efficiency.Efficiency,
				),
				Color: utils.WarningColor,
			}},
		})
	}
}
