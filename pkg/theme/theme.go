// Package theme holds the colour palettes of the terminal client.
package theme

import (
	"image/color"
	"os"

	"charm.land/lipgloss/v2"
)

// Palette defines the colours used by the TUI. Values can be ANSI indices
// or truecolor hex strings.
type Palette struct {
	Accent  color.Color // active tabs, modal border
	Warning color.Color // table headers, hints
	Dim     color.Color // subtle text, disabled tabs
	Success color.Color // saved / copied notices
	Danger  color.Color // error line, delete prompts
	Info    color.Color // env tabs, breadcrumbs
	Text    color.Color

	SelectedBG color.Color // selected rows
	CursorBG   color.Color // row under the cursor
	MutedBG    color.Color // inactive tabs
}

// Default returns the stock ANSI palette.
func Default() Palette {
	return Palette{
		Accent:     lipgloss.Color("13"),
		Warning:    lipgloss.Color("11"),
		Dim:        lipgloss.Color("8"),
		Success:    lipgloss.Color("10"),
		Danger:     lipgloss.Color("9"),
		Info:       lipgloss.Color("14"),
		Text:       lipgloss.Color("15"),
		SelectedBG: lipgloss.Color("13"),
		CursorBG:   lipgloss.Color("14"),
		MutedBG:    lipgloss.Color("238"),
	}
}

// FromEnv overlays base with colours from the environment.
// Hex values like "#88c0d0" or ANSI numbers like "33" are both supported.
//
// Supported variables:
//
//	KUBEPORTAL_COLOR_ACCENT
//	KUBEPORTAL_COLOR_WARNING
//	KUBEPORTAL_COLOR_DIM
//	KUBEPORTAL_COLOR_SUCCESS
//	KUBEPORTAL_COLOR_DANGER
//	KUBEPORTAL_COLOR_INFO
//	KUBEPORTAL_COLOR_TEXT
//	KUBEPORTAL_BG_SELECTED
//	KUBEPORTAL_BG_CURSOR
//	KUBEPORTAL_BG_MUTED
func FromEnv(base Palette) Palette {
	set := func(env string, apply func(color.Color)) {
		if v := os.Getenv(env); v != "" {
			apply(lipgloss.Color(v))
		}
	}

	set("KUBEPORTAL_COLOR_ACCENT", func(c color.Color) { base.Accent = c; base.SelectedBG = c })
	set("KUBEPORTAL_COLOR_WARNING", func(c color.Color) { base.Warning = c })
	set("KUBEPORTAL_COLOR_DIM", func(c color.Color) { base.Dim = c })
	set("KUBEPORTAL_COLOR_SUCCESS", func(c color.Color) { base.Success = c })
	set("KUBEPORTAL_COLOR_DANGER", func(c color.Color) { base.Danger = c })
	set("KUBEPORTAL_COLOR_INFO", func(c color.Color) { base.Info = c })
	set("KUBEPORTAL_COLOR_TEXT", func(c color.Color) { base.Text = c })
	set("KUBEPORTAL_BG_SELECTED", func(c color.Color) { base.SelectedBG = c })
	set("KUBEPORTAL_BG_CURSOR", func(c color.Color) { base.CursorBG = c })
	set("KUBEPORTAL_BG_MUTED", func(c color.Color) { base.MutedBG = c })
	return base
}
