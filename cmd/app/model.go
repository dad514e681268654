package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	cblog "github.com/charmbracelet/log"
	"github.com/darksworm/kubeportal/pkg/logging"
	"github.com/darksworm/kubeportal/pkg/navigation"
	"github.com/darksworm/kubeportal/pkg/store"
	"github.com/darksworm/kubeportal/pkg/tui/clipboard"
	"github.com/darksworm/kubeportal/pkg/tui/listnav"
)

// EffectRunner executes a store effect and returns its completion event.
type EffectRunner interface {
	Run(ctx context.Context, eff store.Effect) store.Event
}

// Deps are the collaborators of the TUI model.
type Deps struct {
	Runner   EffectRunner
	Store    *store.Store
	History  *navigation.MemoryHistory
	Location string
}

// eventMsg carries a completion event back into the update loop.
type eventMsg struct{ ev store.Event }

// Model is the bubbletea model of the portal. It renders store snapshots and
// turns keys into store events.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	runner   EffectRunner
	store    *store.Store
	history  *navigation.MemoryHistory
	bridge   *navigation.Bridge
	location string
	// popped collects events the bridge dispatches while Update moves history.
	popped []store.Event

	state  store.State
	width  int
	height int

	nav     *listnav.Nav
	navKey  string
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	inputs []textinput.Model
	focus  int

	notice string

	teardown sync.Once
}

// NewModel wires the store, history bridge and effect runner.
func NewModel(ctx context.Context, deps Deps) *Model {
	ctx, cancel := context.WithCancel(ctx)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(accentColor)

	m := &Model{
		ctx:      ctx,
		cancel:   cancel,
		runner:   deps.Runner,
		store:    deps.Store,
		history:  deps.History,
		location: deps.Location,
		nav:      listnav.New(),
		spinner:  s,
		help:     help.New(),
		keys:     defaultKeyMap(),
		width:    100,
		height:   30,
	}
	m.bridge = navigation.NewBridge(deps.History, func(ev store.Event) {
		m.popped = append(m.popped, ev)
	})
	m.state = deps.Store.State()
	m.inputs = newConfigInputs(m.state.Config)
	return m
}

func newConfigInputs(cfg store.PortalConfig) []textinput.Model {
	fields := []struct{ placeholder, value string }{
		{"/path/to/workspace", cfg.Workspace},
		{"org/requests-repo", cfg.RequestsRepo},
		{"org/processed-repo", cfg.ProcessedRepo},
	}
	inputs := make([]textinput.Model, len(fields))
	for i, f := range fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = f.placeholder
		ti.SetValue(f.value)
		inputs[i] = ti
	}
	inputs[0].Focus()
	return inputs
}

// Init starts the portal from the initial location.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.dispatch(store.Started{Location: m.location}))
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.refresh()
		return m, nil

	case eventMsg:
		return m, m.dispatch(msg.ev)

	case clipboard.CopyMsg:
		m.notice = copyNotice(msg)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	if m.state.TopTab == store.TabHome {
		return m, m.updateFocusedInput(msg)
	}
	return m, nil
}

func (m *Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// dispatch reduces ev, applies history syncs and returns the remaining
// effects as commands.
func (m *Model) dispatch(ev store.Event) tea.Cmd {
	effects := m.store.Dispatch(ev)
	var cmds []tea.Cmd
	for _, eff := range effects {
		if sh, ok := eff.(store.SyncHistory); ok {
			m.bridge.Apply(sh)
			continue
		}
		cmds = append(cmds, m.runEffect(eff))
	}
	m.refresh()
	return tea.Batch(cmds...)
}

// drainPops dispatches the RoutePopped events a history move produced.
func (m *Model) drainPops() tea.Cmd {
	popped := m.popped
	m.popped = nil
	cmds := make([]tea.Cmd, 0, len(popped))
	for _, ev := range popped {
		cmds = append(cmds, m.dispatch(ev))
	}
	return tea.Batch(cmds...)
}

func (m *Model) runEffect(eff store.Effect) tea.Cmd {
	ctx, runner := m.ctx, m.runner
	return func() tea.Msg {
		start := time.Now()
		ev := runner.Run(ctx, eff)
		var err error
		if f, ok := ev.(store.OperationFailed); ok {
			err = f.Err
		}
		logging.LogOperation(cblog.With("component", "tui"), effectName(eff), time.Since(start), err)
		if ev == nil {
			return nil
		}
		return eventMsg{ev: ev}
	}
}

func effectName(eff store.Effect) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", eff), "store.")
}

// refresh takes a new store snapshot and keeps the cursor in range.
func (m *Model) refresh() {
	m.state = m.store.State()
	if k := viewKey(m.state); k != m.navKey {
		m.nav.Reset()
		m.navKey = k
	}
	m.nav.Sync(rowCount(m.state), m.bodyHeight())
}

// viewKey identifies the list on screen; the cursor resets when it changes.
func viewKey(s store.State) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s", s.TopTab, s.ActiveEnv, s.View, s.DetailApp, s.DetailNamespace)
}

// Teardown cancels in-flight work and detaches from history. Safe to call
// more than once.
func (m *Model) Teardown() {
	m.teardown.Do(func() {
		m.store.Dispatch(store.TornDown{})
		m.cancel()
		m.bridge.Close()
		cblog.With("component", "tui").Info("torn down")
	})
}
