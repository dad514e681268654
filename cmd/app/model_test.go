package main

import (
	"context"
	"strings"
	"sync"
	"testing"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/darksworm/kubeportal/pkg/model"
	"github.com/darksworm/kubeportal/pkg/navigation"
	"github.com/darksworm/kubeportal/pkg/route"
	"github.com/darksworm/kubeportal/pkg/store"
	"github.com/darksworm/kubeportal/pkg/tui/clipboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner answers every effect with canned portal data.
type fakeRunner struct {
	mu   sync.Mutex
	apps []model.App
	ran  []store.Effect
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{apps: []model.App{
		{Name: "payments", Description: "Payments API", Clusters: []string{"east"}, NamespaceCount: 2},
		{Name: "search", Clusters: []string{"west"}, NamespaceCount: 1},
	}}
}

func (f *fakeRunner) effects() []store.Effect {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]store.Effect(nil), f.ran...)
}

func (f *fakeRunner) env() (model.AppSet, model.IndexMap, model.IndexMap) {
	return model.NewAppSet(f.apps...),
		model.IndexMap{"payments": {"10.0.0.1"}, "search": {"10.0.0.2"}},
		model.IndexMap{"payments": {"192.168.0.1"}}
}

func (f *fakeRunner) Run(_ context.Context, eff store.Effect) store.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ran = append(f.ran, eff)

	switch e := eff.(type) {
	case store.FetchMetadata:
		return store.MetadataLoaded{Token: e.Token, User: "alice", Envs: []string{"prod", "staging"}}
	case store.LoadEnvironment:
		apps, l4, egress := f.env()
		return store.EnvironmentLoaded{Token: e.Token, Env: e.Env, Apps: apps, L4IPs: l4, EgressIPs: egress}
	case store.LoadSubView:
		return store.SubViewLoaded{
			Token: e.Token, Env: e.Env, App: e.App, View: e.View, Push: e.Push, ThenNamespace: e.ThenNamespace,
			Namespaces: model.NewNamespaceSet(
				model.Namespace{Name: "payments-dev", Clusters: []string{"east"}, Raw: `{"name":"payments-dev","clusters":["east"],"_id":"x"}`},
				model.Namespace{Name: "payments-qa", Clusters: []string{"east"}},
			),
			L4Items: []model.L4IngressItem{{Cluster: "east", AllocatedIPs: []string{"10.0.0.1"}}},
		}
	case store.DeleteApps:
		var kept []model.App
		for _, a := range f.apps {
			if !contains(e.Apps, a.Name) {
				kept = append(kept, a)
			}
		}
		f.apps = kept
		apps, l4, egress := f.env()
		return store.AppsDeleted{Token: e.Token, Env: e.Env, Deleted: e.Apps, Apps: apps, L4IPs: l4, EgressIPs: egress}
	case store.SaveConfig:
		return store.ConfigSaved{Token: e.Token, Config: e.Config}
	}
	return nil
}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

var completeConfig = store.PortalConfig{Workspace: "/ws", RequestsRepo: "org/req", ProcessedRepo: "org/done"}

func newTestModel(t *testing.T, cfg store.PortalConfig, location string) (*Model, *fakeRunner, *navigation.MemoryHistory) {
	t.Helper()
	runner := newFakeRunner()
	history := navigation.NewMemoryHistory(location)
	m := NewModel(context.Background(), Deps{
		Runner:   runner,
		Store:    store.NewStore(cfg),
		History:  history,
		Location: location,
	})
	t.Cleanup(m.Teardown)
	m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	return m, runner, history
}

// drain runs cmd and feeds every resulting message back into the model,
// the way the bubbletea loop would. Spinner ticks are dropped.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, spinner.TickMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case tea.QuitMsg:
		default:
			_, next := m.Update(msg)
			queue = append(queue, next)
		}
	}
}

func press(t *testing.T, m *Model, keys ...string) {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyPressMsg
		switch k {
		case "enter":
			msg = tea.KeyPressMsg{Code: tea.KeyEnter}
		case "esc":
			msg = tea.KeyPressMsg{Code: tea.KeyEscape}
		case "backspace":
			msg = tea.KeyPressMsg{Code: tea.KeyBackspace}
		case "space":
			msg = tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
		case "f1":
			msg = tea.KeyPressMsg{Code: tea.KeyF1}
		case "f2":
			msg = tea.KeyPressMsg{Code: tea.KeyF2}
		case "f3":
			msg = tea.KeyPressMsg{Code: tea.KeyF3}
		default:
			msg = tea.KeyPressMsg{Code: rune(k[0]), Text: k}
		}
		_, cmd := m.Update(msg)
		drain(t, m, cmd)
	}
}

func TestStartupLoadsFirstEnvironment(t *testing.T) {
	m, _, history := newTestModel(t, completeConfig, "/apps")
	drain(t, m, m.Init())

	s := m.store.State()
	assert.Equal(t, "prod", s.ActiveEnv)
	assert.True(t, s.EnvReady())
	assert.Equal(t, 2, s.Apps.Len())
	assert.Equal(t, "/apps?env=prod", history.Location())

	out := m.render()
	assert.Contains(t, out, "Logged in as alice")
	assert.Contains(t, out, "payments")
	assert.Contains(t, out, "10.0.0.1")
	assert.Contains(t, out, model.DefaultBannerTitle)
}

func TestDeepLinkOpensNamespaceDetails(t *testing.T) {
	m, _, history := newTestModel(t, completeConfig, "/apps/payments/namespaces/payments-dev?env=prod")
	drain(t, m, m.Init())

	s := m.store.State()
	require.Equal(t, route.ViewNamespaceDetails, s.View)
	assert.Equal(t, "payments-dev", s.DetailNamespace)
	assert.Equal(t, "/apps/payments/namespaces/payments-dev?env=prod", history.Location())

	out := m.render()
	assert.Contains(t, out, "name: payments-dev")
	assert.NotContains(t, out, "_id")
}

func TestRowOpenAndHistoryBack(t *testing.T) {
	m, _, history := newTestModel(t, completeConfig, "/apps")
	drain(t, m, m.Init())

	press(t, m, "enter")
	s := m.store.State()
	require.Equal(t, route.ViewNamespaces, s.View)
	assert.Equal(t, "payments", s.DetailApp)
	assert.Equal(t, "/apps/payments/namespaces?env=prod", history.Location())

	press(t, m, "backspace")
	s = m.store.State()
	assert.Equal(t, route.ViewApps, s.View)
	assert.Equal(t, "/apps?env=prod", history.Location())
	assert.True(t, history.CanGoForward())
}

func TestSubViewNeedsExactlyOneSelectedApp(t *testing.T) {
	m, runner, _ := newTestModel(t, completeConfig, "/apps")
	drain(t, m, m.Init())
	before := len(runner.effects())

	press(t, m, "l")
	assert.Equal(t, store.MsgSelectOneApp, m.store.State().Status.Error)
	assert.Len(t, runner.effects(), before, "rejected actions make no call")
	assert.Contains(t, m.render(), store.MsgSelectOneApp)

	press(t, m, "esc", "j", "space", "l")
	s := m.store.State()
	assert.Empty(t, s.Status.Error)
	assert.Equal(t, route.ViewL4Ingress, s.View)
	assert.Equal(t, "search", s.DetailApp)
}

func TestDeleteRowAsksForConfirmation(t *testing.T) {
	m, runner, _ := newTestModel(t, completeConfig, "/apps")
	drain(t, m, m.Init())

	press(t, m, "D")
	require.NotNil(t, m.store.State().Confirm)
	assert.Contains(t, m.render(), "Are you sure you want to delete 1 app(s)?")

	press(t, m, "n")
	assert.Nil(t, m.store.State().Confirm)
	for _, eff := range runner.effects() {
		_, isDelete := eff.(store.DeleteApps)
		assert.False(t, isDelete, "declined confirmation must not delete")
	}

	press(t, m, "D", "y")
	s := m.store.State()
	assert.Nil(t, s.Confirm)
	assert.Equal(t, []string{"search"}, s.Apps.Names())
	assert.False(t, s.Status.Loading)
}

func TestHomeTabSavesConfig(t *testing.T) {
	m, runner, _ := newTestModel(t, store.PortalConfig{}, "/apps")
	drain(t, m, m.Init())
	require.Equal(t, store.TabHome, m.store.State().TopTab)

	press(t, m, "f2")
	assert.Equal(t, store.MsgConfigIncomplete, m.store.State().Status.Error)

	press(t, m, "enter")
	assert.Equal(t, store.MsgConfigIncomplete, m.store.State().Status.Error)

	m.inputs[0].SetValue("/ws")
	m.inputs[1].SetValue("org/req")
	m.inputs[2].SetValue("org/done")
	press(t, m, "enter")

	s := m.store.State()
	assert.True(t, s.ProvisioningEnabled())
	assert.Equal(t, store.TabHome, s.TopTab)
	var saved bool
	for _, eff := range runner.effects() {
		if sc, ok := eff.(store.SaveConfig); ok {
			saved = true
			assert.Equal(t, "org/req", sc.Config.RequestsRepo)
		}
	}
	assert.True(t, saved)

	press(t, m, "f3")
	assert.Contains(t, m.render(), comingSoon)
	press(t, m, "f2")
	assert.Equal(t, store.TabProvisioning, m.store.State().TopTab)
}

func TestEnvTabsCycle(t *testing.T) {
	m, _, history := newTestModel(t, completeConfig, "/apps")
	drain(t, m, m.Init())

	press(t, m, "]")
	assert.Equal(t, "staging", m.store.State().ActiveEnv)
	assert.Equal(t, "/apps?env=staging", history.Location())

	press(t, m, "]")
	assert.Equal(t, "prod", m.store.State().ActiveEnv)
}

func TestQuitTearsDown(t *testing.T) {
	m, _, history := newTestModel(t, completeConfig, "/apps")
	drain(t, m, m.Init())
	press(t, m, "enter")

	_, cmd := m.Update(tea.KeyPressMsg{Code: 'q', Text: "q"})
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
	assert.True(t, m.store.State().TornDown)
	assert.Error(t, m.ctx.Err())

	history.Back()
	assert.Empty(t, m.popped, "closed bridge ignores pops")
	m.Teardown()
}

func TestCopyNoticeText(t *testing.T) {
	assert.Equal(t, "Nothing to copy.", copyNotice(clipboardMsg(false, 0)))
	assert.Equal(t, "Copied 1 IP (native).", copyNotice(clipboardMsg(true, 1)))
	assert.True(t, strings.HasPrefix(copyNotice(clipboardMsg(true, 3)), "Copied 3 IPs"))
}

func clipboardMsg(ok bool, lines int) clipboard.CopyMsg {
	return clipboard.CopyMsg{Success: ok, Lines: lines, Method: clipboard.MethodNative}
}
