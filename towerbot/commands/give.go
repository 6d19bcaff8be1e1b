package commands

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/esprit-rpg/towerbot/towerbot"
	"github.com/esprit-rpg/towerbot/towerbot/engine"
	"github.com/esprit-rpg/towerbot/towerbot/utils"
)

var Give = discord.SlashCommandCreate{
	Name:        "give",
	Description: "🎁 Send currency to another climber",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "recipient",
			Description: "Who receives the currency",
			Required:    true,
		},
		discord.ApplicationCommandOptionString{
			Name:        "currency",
			Description: "Which currency to send",
			Required:    true,
			Choices: []discord.ApplicationCommandOptionChoiceString{
				{Name: "Seios", Value: string(engine.CurrencySeios)},
				{Name: "Ichor", Value: string(engine.CurrencyIchor)},
				{Name: "Erythl", Value: string(engine.CurrencyErythl)},
			},
		},
		discord.ApplicationCommandOptionInt{
			Name:        "amount",
			Description: "How much to send",
			Required:    true,
			MinValue:    intPtr(1),
		},
	},
}

func GiveHandler(b *towerbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		sender, err := requirePlayer(ctx, b, e)
		if sender == nil {
			return err
		}

		data := e.SlashCommandInteractionData()
		recipientUser := data.User("recipient")

		recipientRes := b.Players.GetByDiscordID(ctx, recipientUser.ID.String())
		if !recipientRes.Success {
			return utils.EH.CreateErrorEmbed(e,
				fmt.Sprintf("**%s** has not started climbing yet.", recipientUser.Username))
		}

		currency := engine.Currency(data.String("currency"))
		amount := int64(data.Int("amount"))

		res := b.Currency.Transfer(ctx, sender.ID, recipientRes.Data.ID, currency, amount)
		if !res.Success {
			return utils.EH.CreateEngineError(e, res.Err())
		}

		receipt := res.Data
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title: "🎁 Transfer Complete",
				Description: fmt.Sprintf(
					"Sent **%s %s** to **%s**.\nYou have **%s** left.",
					utils.FormatNumber(receipt.Amount),
					receipt.Currency,
					recipientUser.Username,
					utils.FormatNumber(receipt.FromRemaining)),
				Color: utils.SuccessColor,
			}},
		})
	}
}
