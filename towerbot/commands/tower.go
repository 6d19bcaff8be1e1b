package commands

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/esprit-rpg/towerbot/towerbot"
	"github.com/esprit-rpg/towerbot/towerbot/utils"
)

var Tower = discord.SlashCommandCreate{
	Name:        "tower",
	Description: "🗼 Your current standing in the tower",
}

func TowerHandler(b *towerbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		player, err := requirePlayer(ctx, b, e)
		if player == nil {
			return err
		}

		res := b.Tower.Status(ctx, player.ID)
		if !res.Success {
			return utils.EH.CreateEngineError(e, res.Err())
		}

		status := res.Data

		readiness := "🔒 Raid more to open the boss room"
		if status.ReadyToClimb {
			readiness = "⚔️ The boss room is open"
		}
		if !status.Efficiency.CanAttempt {
			readiness = "⚠️ Too weak for this floor's boss"
		}

		description := fmt.Sprintf(
			"**%s**\n\n"+
				"Current floor: **%d**\nHighest reached: **%d**\nTotal clears: **%d**\n\n"+
				"Raid progress: %s %s\n"+
				"Combat efficiency: **%.2f** (need %s power)\n"+
				"Idle time banked: **%s** (~%s seios)\n\n%s",
			status.FloorTheme,
			status.CurrentFloor,
			status.HighestFloor,
			status.TotalClears,
			utils.ProgressBar(status.RaidProgress, 12),
			utils.FormatPercent(status.RaidProgress),
			status.Efficiency.Efficiency,
			utils.FormatPower(status.Efficiency.FloorRequirement),
			utils.FormatHours(status.HoursIdle),
			utils.FormatNumber(status.EstimatedLoot),
			readiness,
		)

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       fmt.Sprintf("🗼 The Tower — Floor %d", status.CurrentFloor),
				Description: description,
				Color:       utils.InfoColor,
			}},
		})
	}
}
