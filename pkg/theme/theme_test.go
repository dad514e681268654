package theme

import (
	"fmt"
	"testing"

	"charm.land/lipgloss/v2"
)

func sameColor(a, b interface{}) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func TestPresetsAreComplete(t *testing.T) {
	for _, name := range Names() {
		p, ok := Get(name)
		if !ok {
			t.Fatalf("preset %q missing", name)
		}
		for field, c := range map[string]interface{}{
			"Accent": p.Accent, "Warning": p.Warning, "Dim": p.Dim, "Success": p.Success,
			"Danger": p.Danger, "Info": p.Info, "Text": p.Text, "SelectedBG": p.SelectedBG,
			"CursorBG": p.CursorBG, "MutedBG": p.MutedBG,
		} {
			if c == nil {
				t.Errorf("%s: %s is nil", name, field)
			}
		}
	}
}

func TestFromName(t *testing.T) {
	if !sameColor(FromName(" Nord ").Accent, lipgloss.Color("#81a1c1")) {
		t.Error("name lookup should be case-insensitive and trimmed")
	}
	if !sameColor(FromName("does-not-exist").Accent, Default().Accent) {
		t.Error("unknown names fall back to the default palette")
	}
	if _, ok := Get("NORD"); ok {
		t.Error("Get is exact")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("KUBEPORTAL_COLOR_ACCENT", "#123456")
	t.Setenv("KUBEPORTAL_BG_CURSOR", "33")

	p := FromEnv(Default())
	if !sameColor(p.Accent, lipgloss.Color("#123456")) || !sameColor(p.SelectedBG, lipgloss.Color("#123456")) {
		t.Errorf("accent override should also set the selection background: %v %v", p.Accent, p.SelectedBG)
	}
	if !sameColor(p.CursorBG, lipgloss.Color("33")) {
		t.Errorf("cursor = %v", p.CursorBG)
	}
	if !sameColor(p.Danger, Default().Danger) {
		t.Error("unset variables keep the base colour")
	}
}
