package main

import (
	"image/color"

	"charm.land/lipgloss/v2"
	"github.com/darksworm/kubeportal/pkg/theme"
)

var (
	accentColor  color.Color
	warningColor color.Color
	dimColor     color.Color
	successColor color.Color
	dangerColor  color.Color
	infoColor    color.Color
	textColor    color.Color
	mutedBG      color.Color

	headerStyle   lipgloss.Style
	selectedStyle lipgloss.Style
	cursorStyle   lipgloss.Style
	statusStyle   lipgloss.Style
	errorStyle    lipgloss.Style
	noticeStyle   lipgloss.Style
	crumbStyle    lipgloss.Style
	modalStyle    lipgloss.Style
)

func init() {
	applyTheme(theme.Default())
}

// applyTheme updates the colour variables and the styles derived from them.
// Call it at startup before the program runs.
func applyTheme(p theme.Palette) {
	if p.SelectedBG == nil {
		p.SelectedBG = p.Accent
	}
	if p.CursorBG == nil {
		p.CursorBG = p.Info
	}

	accentColor = p.Accent
	warningColor = p.Warning
	dimColor = p.Dim
	successColor = p.Success
	dangerColor = p.Danger
	infoColor = p.Info
	textColor = p.Text
	mutedBG = p.MutedBG

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(warningColor)
	selectedStyle = lipgloss.NewStyle().Background(p.SelectedBG)
	cursorStyle = lipgloss.NewStyle().Background(p.CursorBG).Foreground(lipgloss.Color("0"))
	statusStyle = lipgloss.NewStyle().Foreground(dimColor)
	errorStyle = lipgloss.NewStyle().Foreground(dangerColor).Bold(true)
	noticeStyle = lipgloss.NewStyle().Foreground(successColor)
	crumbStyle = lipgloss.NewStyle().Foreground(infoColor).Bold(true)
	modalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dangerColor).
		Foreground(textColor).
		Padding(1, 2)
}
