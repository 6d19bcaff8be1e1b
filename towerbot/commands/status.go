package commands

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/esprit-rpg/towerbot/towerbot"
	"github.com/esprit-rpg/towerbot/towerbot/utils"
)

var Status = discord.SlashCommandCreate{
	Name:        "status",
	Description: "⚡ Your energy and stamina, with regen timers",
}

func StatusHandler(b *towerbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		player, err := requirePlayer(ctx, b, e)
		if player == nil {
			return err
		}

		res := b.Resource.Status(ctx, player.ID)
		if !res.Success {
			return utils.EH.CreateEngineError(e, res.Err())
		}

		pools := res.Data

		energyLine := fmt.Sprintf("⚡ Energy **%d/%d**  %s",
			pools.Energy, pools.EnergyCap,
			utils.ProgressBar(float64(pools.Energy)/float64(pools.EnergyCap), 10))
		if pools.Energy < pools.EnergyCap {
			energyLine += fmt.Sprintf("\n• next point in **%s**", utils.FormatDuration(pools.NextEnergyRegen))
		}

		staminaLine := fmt.Sprintf("🗡️ Stamina **%d/%d**  %s",
			pools.Stamina, pools.StaminaCap,
			utils.ProgressBar(float64(pools.Stamina)/float64(pools.StaminaCap), 10))
		if pools.Stamina < pools.StaminaCap {
			staminaLine += fmt.Sprintf("\n• next point in **%s**", utils.FormatDuration(pools.NextStaminaRegen))
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "⚡ Resources",
				Description: energyLine + "\n\n" + staminaLine,
				Color:       utils.InfoColor,
			}},
		})
	}
}
