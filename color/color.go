// Package color holds the terminal colors used across the application.
package color

import "github.com/charmbracelet/lipgloss"

// New initializes a lipgloss.Color from a string value.
func New(value string) lipgloss.Color {
	return lipgloss.Color(value)
}

// ANSI colors, which follow the user's terminal theme.
var (
	Red    = New("1")
	Green  = New("2")
	Yellow = New("3")
	Blue   = New("4")
	Purple = New("5")
	Cyan   = New("6")
	White  = New("7")
	Black  = New("8")

	HiRed    = New("9")
	HiYellow = New("11")
	HiBlack  = New("16")
)

// Fixed colors for the player screen.
var (
	YouTube = New("#ff0033")
	Music   = New("#ff4e45")
	Gray    = New("#808080")
	Light   = New("230")
	Indigo  = New("62")
)
