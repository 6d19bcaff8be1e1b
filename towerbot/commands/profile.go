package commands

import (
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/esprit-rpg/towerbot/towerbot"
	"github.com/esprit-rpg/towerbot/towerbot/utils"
)

var Profile = discord.SlashCommandCreate{
	Name:        "profile",
	Description: "📜 View your level, power, and resource pools",
}

func ProfileHandler(b *towerbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		player, err := requirePlayer(ctx, b, e)
		if player == nil {
			return err
		}

		levelRes := b.Players.LevelInfo(ctx, player.ID)
		if !levelRes.Success {
			return utils.EH.CreateEngineError(e, levelRes.Err())
		}
		resRes := b.Resource.Status(ctx, player.ID)
		if !resRes.Success {
			return utils.EH.CreateEngineError(e, resRes.Err())
		}

		level := levelRes.Data
		pools := resRes.Data

		description := fmt.Sprintf(
			"**Level %d** — %s XP\n%s %s to next level\n\n"+
				"⚔️ Attack **%s**  🛡️ Defense **%s**\n"+
				"💪 Total Power **%s**\n\n"+
				"⚡ Energy **%d/%d**\n🗡️ Stamina **%d/%d**\n\n"+
				"🗼 Floor **%d** (highest **%d**, %d clears)",
			level.Level,
			utils.FormatNumber(level.Experience),
			utils.ProgressBar(level.Progress, 12),
			utils.FormatNumber(level.ExperienceToNext),
			utils.FormatPower(player.AttackPower),
			utils.FormatPower(player.DefensePower),
			utils.FormatPower(player.TotalPower()),
			pools.Energy, pools.EnergyCap,
			pools.Stamina, pools.StaminaCap,
			player.CurrentFloor,
			player.HighestFloorReached,
			player.TotalFloorClears,
		)

		now := time.Now()
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       fmt.Sprintf("📜 %s", player.Username),
				Description: description,
				Color:       utils.InfoColor,
				Footer: &discord.EmbedFooter{
					Text: fmt.Sprintf("Climbing since %s", player.CreatedAt.Format("Jan 2, 2006")),
				},
				Timestamp: &now,
			}},
		})
	}
}
