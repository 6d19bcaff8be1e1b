package commands

import (
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/esprit-rpg/towerbot/towerbot"
	"github.com/esprit-rpg/towerbot/towerbot/utils"
)

var Fuse = discord.SlashCommandCreate{
	Name:        "fuse",
	Description: "⚗️ Merge esprit copies into a higher tier",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "list",
			Description: "Show which stacks can be fused right now",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "preview",
			Description: "Preview cost and power change before fusing",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "id",
					Description: "The esprit's template id",
					Required:    true,
					MinValue:    intPtr(1),
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "do",
			Description: "Fuse two copies into one of the next tier",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "id",
					Description: "The esprit's template id",
					Required:    true,
					MinValue:    intPtr(1),
				},
			},
		},
	},
}

func FuseHandler(b *towerbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		player, err := requirePlayer(ctx, b, e)
		if player == nil {
			return err
		}

		data := e.SlashCommandInteractionData()
		switch *data.SubCommandName {
		case "preview":
			return fusePreview(b, e, player.ID, int64(data.Int("id")))
		case "do":
			return fuseDo(b, e, player.ID, int64(data.Int("id")))
		default:
			return fuseList(b, e, player.ID)
		}
	}
}

func fuseList(b *towerbot.Bot, e *handler.CommandEvent, playerID int64) error {
	ctx, cancel := commandContext()
	defer cancel()

	res := b.Fusion.Candidates(ctx, playerID)
	if !res.Success {
		return utils.EH.CreateEngineError(e, res.Err())
	}
	if len(res.Data) == 0 {
		return utils.EH.CreateInfoEmbed(e, "⚗️ Nothing to fuse. You need at least two copies of a stack below max tier.")
	}

	var description strings.Builder
	description.WriteString("```ansi\n")
	for _, c := range res.Data {
		description.WriteString(fmt.Sprintf(
			"#%-4d \x1b[32m%s\x1b[0m  T%d ×%d  cost %s seios\n",
			c.Base.ID,
			c.Base.Name,
			c.Esprit.Tier,
			c.Esprit.Quantity,
			utils.FormatNumber(c.Cost),
		))
	}
	description.WriteString("```\nUse `/fuse preview id` or `/fuse do id`.")

	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       "⚗️ Fusable Stacks",
			Description: description.String(),
			Color:       utils.InfoColor,
		}},
	})
}

func fusePreview(b *towerbot.Bot, e *handler.CommandEvent, playerID, baseID int64) error {
	ctx, cancel := commandContext()
	defer cancel()

	res := b.Fusion.Preview(ctx, playerID, baseID)
	if !res.Success {
		return utils.EH.CreateEngineError(e, res.Err())
	}

	p := res.Data
	if !p.Eligible {
		return utils.EH.CreateInfoEmbed(e, fmt.Sprintf("⚗️ **%s** cannot be fused: %s", p.Base.Name, p.Reason))
	}

	delta := utils.FormatNumber(p.PowerDelta)
	if p.PowerDelta > 0 {
		delta = "+" + delta
	}

	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title: fmt.Sprintf("⚗️ Fusion Preview — %s", p.Base.Name),
			Description: fmt.Sprintf(
				"Tier **%d → %d**\nCopies **%d → %d**\nCost **%s** seios\nPower change **%s**",
				p.Tier, p.NextTier,
				p.Quantity, p.Quantity-1,
				utils.FormatNumber(p.Cost),
				delta),
			Color: utils.TierColor(p.NextTier),
		}},
	})
}

func fuseDo(b *towerbot.Bot, e *handler.CommandEvent, playerID, baseID int64) error {
	ctx, cancel := commandContext()
	defer cancel()

	res := b.Fusion.Fuse(ctx, playerID, baseID)
	if !res.Success {
		return utils.EH.CreateEngineError(e, res.Err())
	}

	f := res.Data
	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title: fmt.Sprintf("⚗️ Fusion Complete — %s", f.Base.Name),
			Description: fmt.Sprintf(
				"Now **Tier %d** (%s) with **%d** cop%s.\n"+
					"💰 Seios: **%s** (−%s)\n"+
					"💪 Total power: **%s**",
				f.NewTier, f.TierName,
				f.Quantity, plural(f.Quantity, "y", "ies"),
				utils.FormatNumber(f.SeiosLeft),
				utils.FormatNumber(f.SeiosSpent),
				utils.FormatPower(f.TotalPower)),
			Color: utils.TierColor(f.NewTier),
		}},
	})
}
