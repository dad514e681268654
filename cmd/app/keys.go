package main

import "charm.land/bubbles/v2/key"

type keyMap struct {
	Up, Down, PageUp, PageDown, Top, Bottom key.Binding

	Toggle, SelectAll, Open       key.Binding
	Namespaces, L4Ingress, Egress key.Binding
	Details                       key.Binding
	Delete, DeleteRow             key.Binding
	Copy, Reload                  key.Binding
	PrevEnv, NextEnv              key.Binding
	Back, HistoryBack, Forward    key.Binding

	Home, Provisioning, Approvals key.Binding
	NextField, PrevField, Save    key.Binding

	Yes, No key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
		Top:      key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),

		Toggle:     key.NewBinding(key.WithKeys("space"), key.WithHelp("space", "select")),
		SelectAll:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
		Open:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "view details")),
		Namespaces: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "namespaces")),
		L4Ingress:  key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "L4 ingress")),
		Egress:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "egress IPs")),
		Details:    key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "ns details")),
		Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete selected")),
		DeleteRow:  key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete row")),
		Copy:       key.NewBinding(key.WithKeys("y", "c"), key.WithHelp("y", "copy IPs")),
		Reload:     key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "reload")),
		PrevEnv:    key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev env")),
		NextEnv:    key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next env")),

		Back:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		HistoryBack: key.NewBinding(key.WithKeys("backspace", "alt+left"), key.WithHelp("⌫", "history back")),
		Forward:     key.NewBinding(key.WithKeys("alt+right"), key.WithHelp("alt+→", "history forward")),

		Home:         key.NewBinding(key.WithKeys("f1"), key.WithHelp("F1", "home")),
		Provisioning: key.NewBinding(key.WithKeys("f2"), key.WithHelp("F2", "provisioning")),
		Approvals:    key.NewBinding(key.WithKeys("f3"), key.WithHelp("F3", "approvals")),
		NextField:    key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		PrevField:    key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		Save:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),

		Yes: key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "yes")),
		No:  key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),

		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}
