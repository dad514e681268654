package main

import (
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/lipgloss/v2"
	"github.com/darksworm/kubeportal/pkg/route"
	"github.com/darksworm/kubeportal/pkg/store"
)

// chromeLines is the height of everything around the body: banner, top
// tabs, env tabs, breadcrumb, table header, status and help lines.
const chromeLines = 8

const comingSoon = "Coming soon."

var homeLabels = []string{"Workspace", "Requests repo", "Processed repo"}

func (m *Model) bodyHeight() int {
	return max(3, m.height-chromeLines)
}

func (m *Model) render() string {
	if m.state.Confirm != nil {
		return m.renderConfirm()
	}
	sections := []string{m.renderBanner(), m.renderTopTabs()}

	switch m.state.TopTab {
	case store.TabHome:
		sections = append(sections, m.renderHome())
	case store.TabApprovals:
		sections = append(sections, "", statusStyle.Render(comingSoon))
	default:
		sections = append(sections, m.renderEnvTabs(), m.renderProvisioning())
	}

	body := strings.Join(sections, "\n")
	footer := m.renderStatusLine() + "\n" + m.renderHelp()
	pad := m.height - lipgloss.Height(body) - lipgloss.Height(footer)
	if pad > 0 {
		body += strings.Repeat("\n", pad)
	}
	return body + "\n" + footer
}

func (m *Model) renderBanner() string {
	d := m.state.Deployment
	style := lipgloss.NewStyle().
		Background(lipgloss.Color(d.HeaderColor())).
		Foreground(lipgloss.Color("#ffffff")).
		Bold(true).
		Padding(0, 1)

	left := d.Title()
	right := ""
	if m.state.CurrentUser != "" {
		right = "Logged in as " + m.state.CurrentUser
	}
	inner := max(0, m.width-2)
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return style.Width(m.width).Render(clipToWidth(left, inner))
	}
	return style.Render(left + strings.Repeat(" ", gap) + right)
}

func clipToWidth(s string, w int) string {
	if lipgloss.Width(s) <= w {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r)) > w {
		r = r[:len(r)-1]
	}
	return string(r)
}

func (m *Model) renderTopTabs() string {
	active := lipgloss.NewStyle().Bold(true).Foreground(textColor).Background(accentColor).Padding(0, 1)
	inactive := lipgloss.NewStyle().Foreground(textColor).Background(mutedBG).Padding(0, 1)
	disabled := lipgloss.NewStyle().Foreground(dimColor).Padding(0, 1)

	tabs := make([]string, 0, len(store.TopTabs))
	for i, t := range store.TopTabs {
		label := "F" + string(rune('1'+i)) + " " + string(t)
		switch {
		case t == m.state.TopTab:
			tabs = append(tabs, active.Render(label))
		case t != store.TabHome && !m.state.ProvisioningEnabled():
			tabs = append(tabs, disabled.Render(label))
		default:
			tabs = append(tabs, inactive.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderEnvTabs() string {
	if len(m.state.Envs) == 0 {
		return statusStyle.Render("No environments.")
	}
	active := lipgloss.NewStyle().Bold(true).Underline(true).Foreground(infoColor)
	parts := make([]string, 0, len(m.state.Envs))
	for _, e := range m.state.Envs {
		if e == m.state.ActiveEnv {
			parts = append(parts, active.Render(e))
		} else {
			parts = append(parts, statusStyle.Render(e))
		}
	}
	return strings.Join(parts, "  ")
}

func (m *Model) renderProvisioning() string {
	s := m.state
	crumb := crumbStyle.Render(breadcrumb(s))
	if s.ActiveEnv == "" {
		return crumb
	}
	start, end := m.nav.Window()

	if s.View == route.ViewNamespaceDetails {
		lines := detailLines(s)
		if end > len(lines) {
			end = len(lines)
		}
		return crumb + "\n" + strings.Join(lines[start:end], "\n")
	}

	if !s.EnvReady() && s.View == route.ViewApps && s.Apps.Len() == 0 {
		return crumb
	}
	t := tableFor(s)
	if len(t.rows) == 0 {
		return crumb + "\n" + statusStyle.Render("No items.")
	}
	return crumb + "\n" + renderTable(t, max(20, m.width-1), m.nav.Cursor(), start, end)
}

func (m *Model) renderHome() string {
	label := lipgloss.NewStyle().Bold(true).Width(16)
	lines := []string{""}
	for i, in := range m.inputs {
		marker := "  "
		if i == m.focus {
			marker = crumbStyle.Render("› ")
		}
		lines = append(lines, marker+label.Render(homeLabels[i])+in.View())
	}
	lines = append(lines, "")
	if m.state.ProvisioningEnabled() {
		lines = append(lines, noticeStyle.Render("Provisioning tabs enabled."))
	} else {
		lines = append(lines, statusStyle.Render(store.MsgConfigIncomplete))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderStatusLine() string {
	switch {
	case m.state.Status.Error != "":
		return errorStyle.Render("Error: "+m.state.Status.Error) + statusStyle.Render("  (esc to dismiss)")
	case m.state.Status.Loading:
		return m.spinner.View() + " " + statusStyle.Render("Loading…")
	case m.notice != "":
		return noticeStyle.Render(m.notice)
	}
	return ""
}

func (m *Model) renderHelp() string {
	k := m.keys
	var bindings []key.Binding
	switch m.state.TopTab {
	case store.TabHome:
		bindings = []key.Binding{k.NextField, k.Save, k.Provisioning}
	case store.TabApprovals:
		bindings = []key.Binding{k.Home, k.Provisioning, k.Quit}
	default:
		switch m.state.View {
		case route.ViewApps:
			bindings = []key.Binding{k.Toggle, k.SelectAll, k.Open, k.Namespaces, k.L4Ingress, k.Egress, k.Delete, k.Copy, k.NextEnv}
		case route.ViewNamespaces:
			bindings = []key.Binding{k.Toggle, k.SelectAll, k.Open, k.Details, k.Delete, k.DeleteRow, k.Back}
		case route.ViewL4Ingress, route.ViewEgressIPs:
			bindings = []key.Binding{k.Toggle, k.SelectAll, k.Copy, k.Namespaces, k.Back}
		case route.ViewNamespaceDetails:
			bindings = []key.Binding{k.Down, k.Back}
		}
		bindings = append(bindings, k.Reload, k.HistoryBack, k.Quit)
	}
	return m.help.ShortHelpView(bindings)
}

func (m *Model) renderConfirm() string {
	c := m.state.Confirm
	title := errorStyle.Render("Confirm delete")
	hint := statusStyle.Render("[y] Yes   [n] No")
	box := modalStyle.
		Width(min(72, max(30, m.width-4))).
		Render(title + "\n\n" + c.Prompt + "\n\n" + hint)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
