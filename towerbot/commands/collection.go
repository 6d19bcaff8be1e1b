package commands

import (
	"fmt"
	"math"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"

	"github.com/esprit-rpg/towerbot/towerbot"
	"github.com/esprit-rpg/towerbot/towerbot/utils"
)

const espritsPerPage = 10

var Collection = discord.SlashCommandCreate{
	Name:        "collection",
	Description: "📦 Browse the esprits you own",
}

func CollectionHandler(b *towerbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := commandContext()
		defer cancel()

		player, err := requirePlayer(ctx, b, e)
		if player == nil {
			return err
		}

		res := b.Gacha.Collection(ctx, player.ID)
		if !res.Success {
			return utils.EH.CreateEngineError(e, res.Err())
		}

		entries := res.Data
		if len(entries) == 0 {
			return utils.EH.CreateInfoEmbed(e, "📦 Your collection is empty. Use `/summon` to call your first esprit.")
		}

		totalPages := int(math.Ceil(float64(len(entries)) / float64(espritsPerPage)))

		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				startIdx := page * espritsPerPage
				endIdx := min(startIdx+espritsPerPage, len(entries))

				var description strings.Builder
				description.WriteString("```ansi\n")
				for _, entry := range entries[startIdx:endIdx] {
					description.WriteString(fmt.Sprintf(
						"%s \x1b[32m%s\x1b[0m ×%d  [%s]  %s power\n",
						strings.Repeat("⭐", entry.Esprit.Tier),
						entry.Base.Name,
						entry.Esprit.Quantity,
						entry.Base.Element,
						utils.FormatPower(entry.Power),
					))
				}
				description.WriteString("```")

				embed.
					SetTitle(fmt.Sprintf("📦 %s's Collection", player.Username)).
					SetDescription(description.String()).
					SetColor(utils.EmbedDefaultColor).
					SetFooter(fmt.Sprintf("Page %d/%d · %d stacks", page+1, totalPages, len(entries)), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}
