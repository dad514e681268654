package theme

import (
	"sort"
	"strings"

	"charm.land/lipgloss/v2"
)

var presets = map[string]Palette{
	"default": Default(),
	"nord": {
		Accent:     lipgloss.Color("#81a1c1"),
		Warning:    lipgloss.Color("#ebcb8b"),
		Dim:        lipgloss.Color("#4c566a"),
		Success:    lipgloss.Color("#a3be8c"),
		Danger:     lipgloss.Color("#bf616a"),
		Info:       lipgloss.Color("#88c0d0"),
		Text:       lipgloss.Color("#eceff4"),
		SelectedBG: lipgloss.Color("#81a1c1"),
		CursorBG:   lipgloss.Color("#88c0d0"),
		MutedBG:    lipgloss.Color("#3b4252"),
	},
	"dracula": {
		Accent:     lipgloss.Color("#bd93f9"),
		Warning:    lipgloss.Color("#f1fa8c"),
		Dim:        lipgloss.Color("#6272a4"),
		Success:    lipgloss.Color("#50fa7b"),
		Danger:     lipgloss.Color("#ff5555"),
		Info:       lipgloss.Color("#8be9fd"),
		Text:       lipgloss.Color("#f8f8f2"),
		SelectedBG: lipgloss.Color("#bd93f9"),
		CursorBG:   lipgloss.Color("#8be9fd"),
		MutedBG:    lipgloss.Color("#44475a"),
	},
	"solarized-light": {
		Accent:     lipgloss.Color("#6c71c4"),
		Warning:    lipgloss.Color("#b58900"),
		Dim:        lipgloss.Color("#93a1a1"),
		Success:    lipgloss.Color("#859900"),
		Danger:     lipgloss.Color("#dc322f"),
		Info:       lipgloss.Color("#268bd2"),
		Text:       lipgloss.Color("#073642"),
		SelectedBG: lipgloss.Color("#eee8d5"),
		CursorBG:   lipgloss.Color("#93a1a1"),
		MutedBG:    lipgloss.Color("#eee8d5"),
	},
}

// Names returns the preset names, sorted.
func Names() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Get looks a preset up by exact name.
func Get(name string) (Palette, bool) {
	p, ok := presets[name]
	return p, ok
}

// FromName returns the preset matching name case-insensitively, or Default.
func FromName(name string) Palette {
	if p, ok := Get(strings.ToLower(strings.TrimSpace(name))); ok {
		return p
	}
	return Default()
}
