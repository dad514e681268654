package main

import (
	"fmt"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/darksworm/kubeportal/pkg/route"
	"github.com/darksworm/kubeportal/pkg/store"
	"github.com/darksworm/kubeportal/pkg/tui/clipboard"
)

// copyNotice is the status line text for a clipboard result.
func copyNotice(c clipboard.CopyMsg) string {
	switch {
	case !c.Success:
		return "Nothing to copy."
	case c.Lines == 1:
		return fmt.Sprintf("Copied 1 IP (%s).", c.Method)
	default:
		return fmt.Sprintf("Copied %d IPs (%s).", c.Lines, c.Method)
	}
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	m.notice = ""

	if msg.String() == "ctrl+c" {
		m.Teardown()
		return m, tea.Quit
	}

	if m.state.Confirm != nil {
		switch {
		case key.Matches(msg, k.Yes):
			return m, m.dispatch(store.ConfirmationAnswered{Accepted: true})
		case key.Matches(msg, k.No):
			return m, m.dispatch(store.ConfirmationAnswered{Accepted: false})
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, k.Home):
		return m, m.dispatch(store.TopTabSelected{Tab: store.TabHome})
	case key.Matches(msg, k.Provisioning):
		return m, m.dispatch(store.TopTabSelected{Tab: store.TabProvisioning})
	case key.Matches(msg, k.Approvals):
		return m, m.dispatch(store.TopTabSelected{Tab: store.TabApprovals})
	}

	switch m.state.TopTab {
	case store.TabHome:
		return m, m.handleHomeKey(msg)
	case store.TabApprovals:
		if key.Matches(msg, k.Quit) {
			m.Teardown()
			return m, tea.Quit
		}
		return m, nil
	}
	return m, m.handleProvisioningKey(msg)
}

func (m *Model) handleHomeKey(msg tea.KeyPressMsg) tea.Cmd {
	k := m.keys
	switch {
	case key.Matches(msg, k.Save):
		return m.dispatch(store.ConfigSaveRequested{Config: store.PortalConfig{
			Workspace:     m.inputs[0].Value(),
			RequestsRepo:  m.inputs[1].Value(),
			ProcessedRepo: m.inputs[2].Value(),
		}})
	case key.Matches(msg, k.NextField):
		return m.focusInput(m.focus + 1)
	case key.Matches(msg, k.PrevField):
		return m.focusInput(m.focus - 1)
	case msg.String() == "esc" && m.state.Status.Error != "":
		return m.dispatch(store.ErrorDismissed{})
	}
	return m.updateFocusedInput(msg)
}

func (m *Model) focusInput(i int) tea.Cmd {
	n := len(m.inputs)
	i = (i%n + n) % n
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[i].Focus()
}

func (m *Model) updateFocusedInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return cmd
}

func (m *Model) handleProvisioningKey(msg tea.KeyPressMsg) tea.Cmd {
	k := m.keys
	s := m.state

	switch {
	case key.Matches(msg, k.Quit):
		m.Teardown()
		return tea.Quit

	case key.Matches(msg, k.Up):
		m.nav.Move(-1)
	case key.Matches(msg, k.Down):
		m.nav.Move(1)
	case key.Matches(msg, k.PageUp):
		m.nav.Page(-1)
	case key.Matches(msg, k.PageDown):
		m.nav.Page(1)
	case key.Matches(msg, k.Top):
		m.nav.Top()
	case key.Matches(msg, k.Bottom):
		m.nav.Bottom()

	case key.Matches(msg, k.Back):
		switch {
		case s.Status.Error != "":
			return m.dispatch(store.ErrorDismissed{})
		case s.View == route.ViewNamespaceDetails:
			return m.dispatch(store.BackToNamespaces{})
		case s.View != route.ViewApps:
			return m.dispatch(store.BackToApps{})
		}
	case key.Matches(msg, k.HistoryBack):
		m.history.Back()
		return m.drainPops()
	case key.Matches(msg, k.Forward):
		m.history.Forward()
		return m.drainPops()

	case key.Matches(msg, k.PrevEnv):
		return m.stepEnv(-1)
	case key.Matches(msg, k.NextEnv):
		return m.stepEnv(1)
	case key.Matches(msg, k.Reload):
		return m.dispatch(store.ReloadRequested{})

	case key.Matches(msg, k.Toggle):
		return m.toggleCursorRow()
	case key.Matches(msg, k.SelectAll):
		return m.dispatch(store.AllSelected{Checked: !allSelected(s)})

	case key.Matches(msg, k.Open):
		return m.openCursorRow()
	case key.Matches(msg, k.Namespaces):
		return m.dispatch(store.ViewRequested{View: route.ViewNamespaces})
	case key.Matches(msg, k.L4Ingress):
		return m.dispatch(store.ViewRequested{View: route.ViewL4Ingress})
	case key.Matches(msg, k.Egress):
		return m.dispatch(store.ViewRequested{View: route.ViewEgressIPs})
	case key.Matches(msg, k.Details):
		if s.View == route.ViewNamespaces {
			return m.dispatch(store.NamespaceDetailsRequested{})
		}

	case key.Matches(msg, k.Delete):
		switch s.View {
		case route.ViewApps:
			return m.dispatch(store.DeleteAppsRequested{})
		case route.ViewNamespaces:
			return m.dispatch(store.DeleteNamespacesRequested{})
		}
	case key.Matches(msg, k.DeleteRow):
		name, ok := m.cursorName()
		if !ok {
			return nil
		}
		switch s.View {
		case route.ViewApps:
			return m.dispatch(store.DeleteAppsRequested{Names: []string{name}})
		case route.ViewNamespaces:
			return m.dispatch(store.DeleteNamespacesRequested{Names: []string{name}})
		}

	case key.Matches(msg, k.Copy):
		return clipboard.CopyLinesCmd(s.VisibleIPs())
	}
	return nil
}

func (m *Model) stepEnv(delta int) tea.Cmd {
	envs := m.state.Envs
	if len(envs) == 0 {
		return nil
	}
	cur := 0
	for i, e := range envs {
		if e == m.state.ActiveEnv {
			cur = i
		}
	}
	next := (cur + delta + len(envs)) % len(envs)
	return m.dispatch(store.EnvironmentSelected{Env: envs[next]})
}

// cursorName returns the app or namespace name under the cursor.
func (m *Model) cursorName() (string, bool) {
	var names []string
	switch m.state.View {
	case route.ViewApps:
		names = m.state.Apps.Names()
	case route.ViewNamespaces:
		names = m.state.Namespaces.Names()
	default:
		return "", false
	}
	i := m.nav.Cursor()
	if i < 0 || i >= len(names) {
		return "", false
	}
	return names[i], true
}

func (m *Model) toggleCursorRow() tea.Cmd {
	s := m.state
	switch s.View {
	case route.ViewApps:
		if name, ok := m.cursorName(); ok {
			return m.dispatch(store.AppSelectionToggled{Name: name, Included: !s.SelectedApps.Has(name)})
		}
	case route.ViewNamespaces:
		if name, ok := m.cursorName(); ok {
			return m.dispatch(store.NamespaceSelectionToggled{Name: name, Included: !s.SelectedNamespaces.Has(name)})
		}
	case route.ViewL4Ingress:
		if i := m.nav.Cursor(); i < len(s.L4Items) {
			return m.dispatch(store.RowSelectionToggled{Index: i, Included: !s.SelectedL4.Has(i)})
		}
	case route.ViewEgressIPs:
		if i := m.nav.Cursor(); i < len(s.EgressItems) {
			return m.dispatch(store.RowSelectionToggled{Index: i, Included: !s.SelectedEgress.Has(i)})
		}
	}
	return nil
}

// openCursorRow is the row "view details" action.
func (m *Model) openCursorRow() tea.Cmd {
	name, ok := m.cursorName()
	if !ok {
		return nil
	}
	if m.state.View == route.ViewApps {
		return m.dispatch(store.ViewRequested{View: route.ViewNamespaces, App: name})
	}
	return m.dispatch(store.NamespaceDetailsRequested{Namespace: name})
}

func allSelected(s store.State) bool {
	switch s.View {
	case route.ViewApps:
		return s.Apps.Len() > 0 && s.SelectedApps.Len() == s.Apps.Len()
	case route.ViewNamespaces:
		return s.Namespaces.Len() > 0 && s.SelectedNamespaces.Len() == s.Namespaces.Len()
	case route.ViewL4Ingress:
		return len(s.L4Items) > 0 && s.SelectedL4.Len() == len(s.L4Items)
	case route.ViewEgressIPs:
		return len(s.EgressItems) > 0 && s.SelectedEgress.Len() == len(s.EgressItems)
	}
	return false
}
