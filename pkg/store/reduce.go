package store

import (
	"fmt"
	"strings"

	cblog "github.com/charmbracelet/log"
	"github.com/darksworm/kubeportal/pkg/model"
	"github.com/darksworm/kubeportal/pkg/route"
)

// Messages shown for rejected user actions. No network call is made.
const (
	MsgSelectOneApp       = "Select exactly one application."
	MsgSelectOneNamespace = "Select exactly one namespace."
	MsgSelectNamespaces   = "Please select at least one namespace to delete."
	MsgSelectApps         = "Please select at least one application to delete."
	MsgNoApplication      = "No application selected."
	MsgConfigIncomplete   = "Set all fields to enable provisioning tabs."
)

const unknownOperationFailure = "operation failed"

type historyMode int

const (
	historyPush historyMode = iota
	historyReplace
)

// Reduce applies ev to s and returns the next state plus the effects to run.
// s itself is left untouched.
func Reduce(s State, ev Event) (State, []Effect) {
	if s.TornDown {
		return s, nil
	}
	r := &reducer{s: s.Clone()}
	r.apply(ev)
	r.s.Status.Loading = r.anyInFlight()
	return r.s, r.effects
}

type reducer struct {
	s       State
	effects []Effect
}

func (r *reducer) emit(e Effect) {
	r.effects = append(r.effects, e)
}

func (r *reducer) apply(ev Event) {
	switch e := ev.(type) {
	case Started:
		loc := route.Decode(e.Location)
		r.s.Route = loc
		r.s.Pending = &loc
		r.emit(FetchMetadata{Token: r.begin(LaneStartup)})

	case MetadataLoaded:
		if !r.accept(e.Token) {
			return
		}
		r.onMetadata(e)

	case EnvironmentSelected:
		env, ok := r.s.resolveEnv(e.Env)
		if !ok {
			return
		}
		r.sync(route.Default(env), historyPush)
		r.enterEnv(env)

	case EnvironmentLoaded:
		if !r.acceptFor(e.Token, e.Env) {
			return
		}
		r.commitEnvData(e.Apps, e.L4IPs, e.EgressIPs)
		r.s.LoadedEnv = e.Env
		r.resetSelections()
		r.reconcilePending()

	case ViewRequested:
		r.onViewRequested(e)

	case SubViewLoaded:
		if !r.acceptFor(e.Token, e.Env) {
			return
		}
		r.onSubViewLoaded(e)

	case BackToApps:
		if r.s.View == route.ViewApps || r.s.ActiveEnv == "" {
			return
		}
		r.s.Status.Error = ""
		r.cancel(LaneSubview)
		r.resetToApps()
		r.sync(route.Default(r.s.ActiveEnv), historyPush)

	case NamespaceDetailsRequested:
		r.onNamespaceDetails(e)

	case BackToNamespaces:
		if r.s.View != route.ViewNamespaceDetails {
			return
		}
		r.s.View = route.ViewNamespaces
		r.s.DetailNamespace = ""
		r.resetSelections()
		r.sync(route.Route{Env: r.s.ActiveEnv, View: route.ViewNamespaces, App: r.s.DetailApp}, historyPush)

	case RoutePopped:
		r.onPop(e.Route)

	case ReloadRequested:
		r.onReload()

	case AppSelectionToggled:
		if r.s.View == route.ViewApps {
			r.s.SelectedApps.ToggleOne(e.Name, e.Included)
		}

	case NamespaceSelectionToggled:
		if r.s.View == route.ViewNamespaces {
			r.s.SelectedNamespaces.ToggleOne(e.Name, e.Included)
		}

	case RowSelectionToggled:
		switch r.s.View {
		case route.ViewL4Ingress:
			r.s.SelectedL4.ToggleOne(e.Index, e.Included)
		case route.ViewEgressIPs:
			r.s.SelectedEgress.ToggleOne(e.Index, e.Included)
		}

	case AllSelected:
		r.onSelectAll(e.Checked)

	case DeleteAppsRequested:
		names := e.Names
		if names == nil {
			names = r.s.SelectedApps.Items()
		}
		if len(names) == 0 {
			r.reject(MsgSelectApps)
			return
		}
		r.s.Confirm = &Confirmation{
			Kind:    ConfirmDeleteApps,
			Targets: names,
			Prompt: fmt.Sprintf("Are you sure you want to delete %d app(s)?\n\nApps: %s\n\n"+
				"This will remove all associated namespaces, L4 ingress IPs, and pull requests.",
				len(names), strings.Join(names, ", ")),
		}

	case DeleteNamespacesRequested:
		names := e.Names
		if names == nil {
			names = r.s.SelectedNamespaces.Items()
		}
		if len(names) == 0 {
			r.reject(MsgSelectNamespaces)
			return
		}
		app := r.s.DetailApp
		if app == "" {
			r.reject(MsgNoApplication)
			return
		}
		r.s.Confirm = &Confirmation{
			Kind:    ConfirmDeleteNamespaces,
			App:     app,
			Targets: names,
			Prompt: fmt.Sprintf("Are you sure you want to delete %d namespace(s) from %s?\n\nNamespaces: %s\n\n"+
				"This action cannot be undone.",
				len(names), app, strings.Join(names, ", ")),
		}

	case ConfirmationAnswered:
		c := r.s.Confirm
		r.s.Confirm = nil
		if c == nil || !e.Accepted || r.s.ActiveEnv == "" {
			return
		}
		tok := r.begin(LaneMutation)
		switch c.Kind {
		case ConfirmDeleteApps:
			r.emit(DeleteApps{Token: tok, Env: r.s.ActiveEnv, Apps: c.Targets})
		case ConfirmDeleteNamespaces:
			r.emit(DeleteNamespaces{Token: tok, Env: r.s.ActiveEnv, App: c.App, Namespaces: c.Targets})
		}

	case AppsDeleted:
		if !r.acceptFor(e.Token, e.Env) {
			return
		}
		r.commitEnvData(e.Apps, e.L4IPs, e.EgressIPs)
		r.s.SelectedApps.Reset(r.s.Apps.Names())

	case NamespacesDeleted:
		if !r.acceptFor(e.Token, e.Env) {
			return
		}
		r.onNamespacesDeleted(e)

	case OperationFailed:
		if !r.accept(e.Token) {
			return
		}
		msg := unknownOperationFailure
		if e.Err != nil {
			msg = e.Err.Error()
		}
		r.s.Status.Error = msg
		cblog.With("component", "store").Warn("operation failed", "token", e.Token, "err", e.Err)

	case TopTabSelected:
		if e.Tab != TabHome && !r.s.ProvisioningEnabled() {
			r.reject(MsgConfigIncomplete)
			return
		}
		r.s.TopTab = e.Tab

	case ConfigSaveRequested:
		cfg := PortalConfig{
			Workspace:     strings.TrimSpace(e.Config.Workspace),
			RequestsRepo:  strings.TrimSpace(e.Config.RequestsRepo),
			ProcessedRepo: strings.TrimSpace(e.Config.ProcessedRepo),
		}
		if !cfg.Complete() {
			r.reject(MsgConfigIncomplete)
			return
		}
		r.emit(SaveConfig{Token: r.begin(LaneConfig), Config: cfg})

	case ConfigSaved:
		if !r.accept(e.Token) {
			return
		}
		r.s.Config = e.Config

	case ErrorDismissed:
		r.s.Status.Error = ""

	case TornDown:
		for l := Lane(0); l < numLanes; l++ {
			r.cancel(l)
		}
		r.s.Pending = nil
		r.s.Confirm = nil
		r.s.TornDown = true
	}
}

func (r *reducer) onMetadata(e MetadataLoaded) {
	r.s.Deployment = e.Deployment
	r.s.CurrentUser = e.User
	r.s.Envs = model.UniqStrings(e.Envs)

	initial := route.Default("")
	if r.s.Pending != nil {
		initial = *r.s.Pending
	}

	env := ""
	for _, k := range r.s.Envs {
		if k == initial.Env {
			env = k
			break
		}
	}
	if env == "" && len(r.s.Envs) > 0 {
		env = r.s.Envs[0]
	}
	if env == "" {
		r.sync(route.Default(""), historyReplace)
		return
	}

	// The first write replaces the unparsed startup location. A deep link
	// keeps its sub-view only when it will actually be opened.
	mirror := route.Default(env)
	if initial.IsSubView() && initial.Valid() && strings.EqualFold(initial.Env, env) {
		mirror = initial
		mirror.Env = env
	}
	r.sync(mirror, historyReplace)
	r.enterEnv(env)
}

func (r *reducer) onViewRequested(e ViewRequested) {
	switch e.View {
	case route.ViewNamespaces, route.ViewL4Ingress, route.ViewEgressIPs:
	default:
		return
	}
	if r.s.ActiveEnv == "" {
		return
	}
	app := e.App
	if app == "" {
		app = r.s.DetailApp
	}
	if app == "" {
		selected := r.s.SelectedApps.Items()
		if len(selected) != 1 {
			r.reject(MsgSelectOneApp)
			return
		}
		app = selected[0]
	}
	r.startSubView(e.View, app, true, "")
}

func (r *reducer) onSubViewLoaded(e SubViewLoaded) {
	r.s.View = e.View
	r.s.DetailApp = e.App
	r.s.DetailNamespace = ""
	r.s.Namespaces = model.NewNamespaceSet()
	r.s.L4Items = nil
	r.s.EgressItems = nil

	next := route.Route{Env: e.Env, View: e.View, App: e.App}
	switch e.View {
	case route.ViewNamespaces:
		r.s.Namespaces = e.Namespaces
		if e.ThenNamespace != "" {
			if _, ok := e.Namespaces.Get(e.ThenNamespace); ok {
				r.s.View = route.ViewNamespaceDetails
				r.s.DetailNamespace = e.ThenNamespace
				next.View = route.ViewNamespaceDetails
				next.Namespace = e.ThenNamespace
			}
		}
	case route.ViewL4Ingress:
		r.s.L4Items = e.L4Items
	case route.ViewEgressIPs:
		r.s.EgressItems = e.EgressItems
	}
	r.resetSelections()

	if e.Push {
		r.sync(next, historyPush)
	} else {
		r.correct(next)
	}
}

func (r *reducer) onNamespaceDetails(e NamespaceDetailsRequested) {
	if r.s.View != route.ViewNamespaces {
		return
	}
	ns := e.Namespace
	if ns == "" {
		selected := r.s.SelectedNamespaces.Items()
		if len(selected) != 1 {
			r.reject(MsgSelectOneNamespace)
			return
		}
		ns = selected[0]
	}
	if _, ok := r.s.Namespaces.Get(ns); !ok {
		return
	}
	r.s.View = route.ViewNamespaceDetails
	r.s.DetailNamespace = ns
	r.resetSelections()
	r.sync(route.Route{
		Env:       r.s.ActiveEnv,
		View:      route.ViewNamespaceDetails,
		App:       r.s.DetailApp,
		Namespace: ns,
	}, historyPush)
}

// onPop handles a history back/forward. The location is already current, so
// nothing here writes history.
func (r *reducer) onPop(p route.Route) {
	r.s.Confirm = nil
	r.s.Route = p

	envName := p.Env
	if envName == "" {
		envName = r.s.ActiveEnv
		if envName == "" && len(r.s.Envs) > 0 {
			envName = r.s.Envs[0]
		}
	}
	env, known := r.s.resolveEnv(envName)
	pending := p
	if known {
		pending.Env = env
	}
	r.s.Pending = &pending

	if !known {
		// Kept pending until that environment shows up.
		if p.View == route.ViewApps && r.s.View != route.ViewApps {
			r.cancel(LaneSubview)
			r.resetToApps()
		}
		return
	}
	if env != r.s.ActiveEnv {
		r.enterEnv(env)
		return
	}
	if p.View == route.ViewApps || !p.Valid() {
		r.cancel(LaneSubview)
		r.resetToApps()
		r.s.Pending = nil
		return
	}
	if r.switchLocally(p) {
		r.s.Pending = nil
		return
	}
	if r.s.EnvReady() {
		r.reconcilePending()
	}
}

// switchLocally moves between namespaces and namespace details of the same
// app without refetching.
func (r *reducer) switchLocally(p route.Route) bool {
	if p.App != r.s.DetailApp || r.s.inflight[LaneSubview] != nil {
		return false
	}
	if r.s.View != route.ViewNamespaces && r.s.View != route.ViewNamespaceDetails {
		return false
	}
	switch p.View {
	case route.ViewNamespaces:
		r.s.View = route.ViewNamespaces
		r.s.DetailNamespace = ""
	case route.ViewNamespaceDetails:
		if _, ok := r.s.Namespaces.Get(p.Namespace); !ok {
			return false
		}
		r.s.View = route.ViewNamespaceDetails
		r.s.DetailNamespace = p.Namespace
	default:
		return false
	}
	r.resetSelections()
	return true
}

func (r *reducer) onReload() {
	if r.s.ActiveEnv == "" {
		return
	}
	switch r.s.View {
	case route.ViewApps:
		r.enterEnv(r.s.ActiveEnv)
	case route.ViewNamespaceDetails:
		r.startSubView(route.ViewNamespaces, r.s.DetailApp, false, r.s.DetailNamespace)
	default:
		r.startSubView(r.s.View, r.s.DetailApp, false, "")
	}
}

func (r *reducer) onSelectAll(checked bool) {
	switch r.s.View {
	case route.ViewApps:
		if checked {
			r.s.SelectedApps.SetAll(r.s.Apps.Names())
		} else {
			r.s.SelectedApps.Clear()
		}
	case route.ViewNamespaces:
		if checked {
			r.s.SelectedNamespaces.SetAll(r.s.Namespaces.Names())
		} else {
			r.s.SelectedNamespaces.Clear()
		}
	case route.ViewL4Ingress:
		if checked {
			r.s.SelectedL4.SetAll(indices(len(r.s.L4Items)))
		} else {
			r.s.SelectedL4.Clear()
		}
	case route.ViewEgressIPs:
		if checked {
			r.s.SelectedEgress.SetAll(indices(len(r.s.EgressItems)))
		} else {
			r.s.SelectedEgress.Clear()
		}
	}
}

func (r *reducer) onNamespacesDeleted(e NamespacesDeleted) {
	r.commitEnvData(e.Apps, e.L4IPs, e.EgressIPs)
	r.s.SelectedApps.Reset(r.s.Apps.Names())

	if e.App != r.s.DetailApp {
		return
	}
	switch r.s.View {
	case route.ViewNamespaces:
		r.s.Namespaces = e.Namespaces
		r.s.SelectedNamespaces.Reset(r.s.Namespaces.Names())
	case route.ViewNamespaceDetails:
		r.s.Namespaces = e.Namespaces
		r.s.SelectedNamespaces.Reset(r.s.Namespaces.Names())
		if _, ok := r.s.Namespaces.Get(r.s.DetailNamespace); !ok {
			r.s.View = route.ViewNamespaces
			r.s.DetailNamespace = ""
			r.correct(route.Route{Env: r.s.ActiveEnv, View: route.ViewNamespaces, App: e.App})
		}
	}
}

// reconcilePending opens the pending sub-view once its environment is the
// active one. A pending route for another environment is left alone.
func (r *reducer) reconcilePending() {
	p := r.s.Pending
	if p == nil || !strings.EqualFold(p.Env, r.s.ActiveEnv) {
		return
	}
	r.s.Pending = nil
	if !p.IsSubView() || !p.Valid() {
		return
	}
	view, then := p.View, ""
	if view == route.ViewNamespaceDetails {
		view, then = route.ViewNamespaces, p.Namespace
	}
	r.startSubView(view, p.App, false, then)
}

// enterEnv switches environment: supersedes every environment-scoped
// operation, drops the old datasets and selections, and loads env.
func (r *reducer) enterEnv(env string) {
	r.cancel(LaneEnv, LaneSubview, LaneMutation)
	r.s.Confirm = nil
	r.s.ActiveEnv = env
	r.s.LoadedEnv = ""
	r.s.Apps = model.NewAppSet()
	r.s.ClustersByApp = model.IndexMap{}
	r.s.L4IPsByApp = model.IndexMap{}
	r.s.EgressIPsByApp = model.IndexMap{}
	r.resetToApps()
	r.emit(LoadEnvironment{Token: r.begin(LaneEnv), Env: env})
}

func (r *reducer) startSubView(view route.View, app string, push bool, then string) {
	r.emit(LoadSubView{
		Token:         r.begin(LaneSubview),
		Env:           r.s.ActiveEnv,
		App:           app,
		View:          view,
		Push:          push,
		ThenNamespace: then,
	})
}

func (r *reducer) commitEnvData(apps model.AppSet, l4, egress model.IndexMap) {
	r.s.Apps = apps
	r.s.ClustersByApp = model.ClustersByApp(apps)
	r.s.L4IPsByApp = l4.Restrict(apps)
	r.s.EgressIPsByApp = egress.Restrict(apps)
}

func (r *reducer) resetToApps() {
	r.s.View = route.ViewApps
	r.s.DetailApp = ""
	r.s.DetailNamespace = ""
	r.s.Namespaces = model.NewNamespaceSet()
	r.s.L4Items = nil
	r.s.EgressItems = nil
	r.resetSelections()
}

// resetSelections empties every selection and rescopes it to the list now
// on screen.
func (r *reducer) resetSelections() {
	r.s.SelectedApps.Reset(r.s.Apps.Names())
	r.s.SelectedNamespaces.Reset(r.s.Namespaces.Names())
	r.s.SelectedL4.Reset(indices(len(r.s.L4Items)))
	r.s.SelectedEgress.Reset(indices(len(r.s.EgressItems)))
}

func (r *reducer) sync(rt route.Route, mode historyMode) {
	r.s.Route = rt
	r.emit(SyncHistory{Route: rt, Replace: mode == historyReplace})
}

// correct updates the route without a new history entry, replacing the
// current one only if it differs.
func (r *reducer) correct(rt route.Route) {
	if route.Encode(rt) == route.Encode(r.s.Route) {
		r.s.Route = rt
		return
	}
	r.sync(rt, historyReplace)
}

func (r *reducer) reject(msg string) {
	r.s.Status.Error = msg
}

func (r *reducer) begin(lane Lane) *Token {
	r.cancel(lane)
	r.s.nextToken++
	tok := newToken(r.s.nextToken, lane)
	r.s.inflight[lane] = tok
	r.s.Status.Error = ""
	return tok
}

func (r *reducer) cancel(lanes ...Lane) {
	for _, l := range lanes {
		if tok := r.s.inflight[l]; tok != nil {
			tok.Cancel()
			r.s.inflight[l] = nil
		}
	}
}

// accept reports whether tok is still the live operation of its lane and,
// if so, retires it.
func (r *reducer) accept(tok *Token) bool {
	if tok == nil || tok.Cancelled() || tok.lane < 0 || tok.lane >= numLanes || r.s.inflight[tok.lane] != tok {
		cblog.With("component", "store").Debug("dropping superseded completion", "token", tok)
		return false
	}
	r.s.inflight[tok.lane] = nil
	return true
}

// acceptFor is accept plus a check that env is still the active one.
func (r *reducer) acceptFor(tok *Token, env string) bool {
	if env != r.s.ActiveEnv {
		cblog.With("component", "store").Debug("dropping completion for inactive env",
			"token", tok, "env", env, "active", r.s.ActiveEnv)
		return false
	}
	return r.accept(tok)
}

func (r *reducer) anyInFlight() bool {
	for _, t := range r.s.inflight {
		if t != nil {
			return true
		}
	}
	return false
}
