package utils

const (
	// Colors
	ErrorColor   = 0xFF0000
	SuccessColor = 0x00FF00
	InfoColor    = 0x0099FF
	WarningColor = 0xFFAA00

	// Discord UI Colors
	EmbedDefaultColor = 0x2B2D31

	// Tier Colors
	TierCommonColor    = 0x808080 // Gray for tier 1
	TierUncommonColor  = 0x00FF00 // Green for tier 2
	TierRareColor      = 0x0000FF // Blue for tier 3
	TierEpicColor      = 0x800080 // Purple for tier 4
	TierLegendaryColor = 0xFFD700 // Gold for tier 5
	TierMythicColor    = 0xFF4500 // Orange-red for tier 6
)

// TierColor maps an esprit tier to its embed color.
func TierColor(tier int) int {
	switch tier {
	case 1:
		return TierCommonColor
	case 2:
		return TierUncommonColor
	case 3:
		return TierRareColor
	case 4:
		return TierEpicColor
	case 5:
		return TierLegendaryColor
	case 6:
		return TierMythicColor
	default:
		return EmbedDefaultColor
	}
}
