package commands

import (
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/esprit-rpg/towerbot/towerbot"
	"github.com/esprit-rpg/towerbot/towerbot/utils"
)

var Balance = discord.SlashCommandCreate{
	Name:        "balance",
	Description: "💰 View your seios, ichor, and erythl",
}

func BalanceHandler(b *towerbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		player, err := requirePlayer(ctx, b, e)
		if player == nil {
			return err
		}

		res := b.Currency.Summary(ctx, player.ID)
		if !res.Success {
			return utils.EH.CreateEngineError(e, res.Err())
		}

		wallet := res.Data
		description := fmt.Sprintf("```ansi\n"+
			"\x1b[1;33mSeios:\x1b[0m  %s\n"+
			"\x1b[1;35mIchor:\x1b[0m  %s\n"+
			"\x1b[1;36mErythl:\x1b[0m %s\n"+
			"```\n"+
			"Total value: **%s** seios-equivalent",
			utils.FormatNumber(wallet.Balances.Seios),
			utils.FormatNumber(wallet.Balances.Ichor),
			utils.FormatNumber(wallet.Balances.Erythl),
			utils.FormatNumber(wallet.BaseValue),
		)

		now := time.Now()
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "💰 Balance",
				Description: description,
				Color:       utils.SuccessColor,
				Footer: &discord.EmbedFooter{
					Text: fmt.Sprintf("Requested by %s", e.User().Username),
				},
				Timestamp: &now,
			}},
		})
	}
}
