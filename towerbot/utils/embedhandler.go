package utils

import (
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/esprit-rpg/towerbot/towerbot/engine"
)

// ResponseHandler provides standardized response methods for commands.
type ResponseHandler struct{}

var EH = &ResponseHandler{}

// errorStyling maps engine error kinds to an emoji prefix and embed color.
func errorStyling(kind engine.ErrorKind) (string, int) {
	switch kind {
	case engine.ErrValidation:
		return "⚠️", WarningColor
	case engine.ErrInsufficientResource, engine.ErrInsufficientPower:
		return "⏳", WarningColor
	case engine.ErrCooldownActive:
		return "⏰", WarningColor
	case engine.ErrNotFound:
		return "🔍", InfoColor
	default:
		return "❌", ErrorColor
	}
}

// CreateErrorEmbed creates a standard error embed for command events.
func (h *ResponseHandler) CreateErrorEmbed(event *handler.CommandEvent, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: "❌ " + message,
			Color:       ErrorColor,
		}},
	})
}

// CreateSuccessEmbed creates a standard success embed for command events.
func (h *ResponseHandler) CreateSuccessEmbed(event *handler.CommandEvent, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: message,
			Color:       SuccessColor,
		}},
	})
}

// CreateInfoEmbed creates a standard info embed for command events.
func (h *ResponseHandler) CreateInfoEmbed(event *handler.CommandEvent, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: message,
			Color:       InfoColor,
		}},
	})
}

// CreateEngineError renders the failure side of an engine result with
// kind-appropriate styling. Cooldown failures append the remaining wait,
// shortage failures the missing amount.
func (h *ResponseHandler) CreateEngineError(event *handler.CommandEvent, engErr *engine.Error) error {
	prefix, color := errorStyling(engErr.Kind)

	message := engErr.Message
	if engErr.Remaining > 0 {
		message = fmt.Sprintf("%s Try again in **%s**.", message, FormatDuration(engErr.Remaining))
	}
	if engErr.Shortage > 0 {
		message = fmt.Sprintf("%s (short by %s)", message, FormatNumber(engErr.Shortage))
	}

	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: prefix + " " + message,
			Color:       color,
		}},
	})
}

// CreateEphemeralError creates an ephemeral error message for component events.
func (h *ResponseHandler) CreateEphemeralError(event *handler.ComponentEvent, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Content: "❌ " + message,
		Flags:   discord.MessageFlagEphemeral,
	})
}
