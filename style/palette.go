package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/tubecli/tube/color"
)

// Player screen palette.
var (
	// Base is drawn on top of an accent.
	Base        = color.New("#1e1e1e")
	AccentColor = color.YouTube
	MusicColor  = color.Music
)

// Accent returns the accent for where the media comes from.
func Accent(music bool) lipgloss.Color {
	if music {
		return MusicColor
	}
	return AccentColor
}
