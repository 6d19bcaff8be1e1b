package commands

import (
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/json"

	"github.com/esprit-rpg/towerbot/towerbot"
	"github.com/esprit-rpg/towerbot/towerbot/engine"
	"github.com/esprit-rpg/towerbot/towerbot/utils"
)

var Admin = discord.SlashCommandCreate{
	Name:                     "admin",
	Description:              "🔧 Operator tools",
	DefaultMemberPermissions: json.NewNullablePtr(discord.PermissionAdministrator),
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "grant",
			Description: "Grant currency to a player",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The recipient",
					Required:    true,
				},
				discord.ApplicationCommandOptionString{
					Name:        "currency",
					Description: "Which currency to grant",
					Required:    true,
					Choices: []discord.ApplicationCommandOptionChoiceString{
						{Name: "Seios", Value: string(engine.CurrencySeios)},
						{Name: "Ichor", Value: string(engine.CurrencyIchor)},
						{Name: "Erythl", Value: string(engine.CurrencyErythl)},
					},
				},
				discord.ApplicationCommandOptionInt{
					Name:        "amount",
					Description: "How much to grant",
					Required:    true,
					MinValue:    intPtr(1),
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "addxp",
			Description: "Award experience to a player",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The recipient",
					Required:    true,
				},
				discord.ApplicationCommandOptionInt{
					Name:        "amount",
					Description: "Experience to award",
					Required:    true,
					MinValue:    intPtr(1),
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "refresh-power",
			Description: "Recompute a player's cached power from their collection",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "user",
					Description: "The player to refresh",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "reload-config",
			Description: "Reload gameplay tuning from disk",
		},
	},
}

func AdminHandler(b *towerbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		data := e.SlashCommandInteractionData()
		sub := *data.SubCommandName

		if sub == "reload-config" {
			if err := b.GameCfg.Reload(); err != nil {
				slog.Error("Config reload failed",
					slog.String("type", "cmd"),
					slog.Any("error", err))
				return utils.EH.CreateErrorEmbed(e, fmt.Sprintf("Reload failed: %v", err))
			}
			slog.Info("Gameplay config reloaded",
				slog.String("type", "cmd"),
				slog.String("admin_id", e.User().ID.String()))
			return utils.EH.CreateSuccessEmbed(e, "🔄 Gameplay tuning reloaded.")
		}

		targetUser := data.User("user")
		targetRes := b.Players.GetByDiscordID(ctx, targetUser.ID.String())
		if !targetRes.Success {
			return utils.EH.CreateErrorEmbed(e,
				fmt.Sprintf("**%s** has no account.", targetUser.Username))
		}
		target := targetRes.Data

		switch sub {
		case "grant":
			currency := engine.Currency(data.String("currency"))
			amount := int64(data.Int("amount"))

			res := b.Currency.Grant(ctx, target.ID, currency, amount,
				fmt.Sprintf("admin grant by %s", e.User().ID))
			if !res.Success {
				return utils.EH.CreateEngineError(e, res.Err())
			}
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf(
				"Granted **%s %s** to **%s**.",
				utils.FormatNumber(amount), currency, targetUser.Username))

		case "addxp":
			amount := int64(data.Int("amount"))

			res := b.Players.AddExperience(ctx, target.ID, amount,
				fmt.Sprintf("admin grant by %s", e.User().ID))
			if !res.Success {
				return utils.EH.CreateEngineError(e, res.Err())
			}
			gain := res.Data
			msg := fmt.Sprintf("Awarded **%s** XP to **%s**.",
				utils.FormatNumber(gain.Gained), targetUser.Username)
			if gain.LevelsGained > 0 {
				msg += fmt.Sprintf(" They reached **level %d**!", gain.NewLevel)
			}
			return utils.EH.CreateSuccessEmbed(e, msg)

		case "refresh-power":
			res := b.Power.Refresh(ctx, target.ID)
			if !res.Success {
				return utils.EH.CreateEngineError(e, res.Err())
			}
			return utils.EH.CreateSuccessEmbed(e, fmt.Sprintf(
				"Recomputed **%s**'s power: ⚔️ %s / 🛡️ %s over %d stacks.",
				targetUser.Username,
				utils.FormatPower(res.Data.AttackPower),
				utils.FormatPower(res.Data.DefensePower),
				res.Data.StackCount))

		default:
			return utils.EH.CreateErrorEmbed(e, "Unknown subcommand.")
		}
	}
}
