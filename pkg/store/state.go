package store

import (
	"strings"

	"github.com/darksworm/kubeportal/pkg/model"
	"github.com/darksworm/kubeportal/pkg/route"
	"github.com/darksworm/kubeportal/pkg/selection"
)

// TopTab is the portal section shown above the environment tabs.
type TopTab string

const (
	TabHome         TopTab = "Home"
	TabProvisioning TopTab = "Request provisioning"
	TabApprovals    TopTab = "PRs and Approval"
)

// TopTabs lists the sections in display order.
var TopTabs = []TopTab{TabHome, TabProvisioning, TabApprovals}

// PortalConfig is the operator workspace set on the Home tab.
type PortalConfig struct {
	Workspace     string
	RequestsRepo  string
	ProcessedRepo string
}

// Complete reports whether every field is set.
func (c PortalConfig) Complete() bool {
	return strings.TrimSpace(c.Workspace) != "" &&
		strings.TrimSpace(c.RequestsRepo) != "" &&
		strings.TrimSpace(c.ProcessedRepo) != ""
}

// Status is process wide: whichever operation ran last owns it.
type Status struct {
	Loading bool
	Error   string
}

// ConfirmKind says what a pending confirmation will delete.
type ConfirmKind int

const (
	ConfirmDeleteApps ConfirmKind = iota + 1
	ConfirmDeleteNamespaces
)

// Confirmation is a destructive action waiting for a yes/no answer.
type Confirmation struct {
	Kind    ConfirmKind
	App     string
	Targets []string
	Prompt  string
}

// State is everything the portal shows. Reduce never mutates a State it was
// given; it works on a Clone.
type State struct {
	// Route mirrors the history location for what is on screen.
	Route route.Route
	// Pending is a route waiting for its environment to load.
	Pending *route.Route

	Deployment  model.Deployment
	CurrentUser string
	Envs        []string
	ActiveEnv   string
	// LoadedEnv is the environment whose app data is committed.
	LoadedEnv string

	Apps           model.AppSet
	ClustersByApp  model.IndexMap
	L4IPsByApp     model.IndexMap
	EgressIPsByApp model.IndexMap

	View            route.View
	DetailApp       string
	DetailNamespace string
	Namespaces      model.NamespaceSet
	L4Items         []model.L4IngressItem
	EgressItems     []model.EgressIPItem

	SelectedApps       *selection.Set[string]
	SelectedNamespaces *selection.Set[string]
	SelectedL4         *selection.Set[int]
	SelectedEgress     *selection.Set[int]

	Status  Status
	Confirm *Confirmation

	TopTab TopTab
	Config PortalConfig

	TornDown bool

	inflight  [numLanes]*Token
	nextToken uint64
}

// New returns the state before startup. cfg is the saved workspace config.
func New(cfg PortalConfig) State {
	tab := TabHome
	if cfg.Complete() {
		tab = TabProvisioning
	}
	return State{
		Route:              route.Default(""),
		View:               route.ViewApps,
		SelectedApps:       selection.New[string](),
		SelectedNamespaces: selection.New[string](),
		SelectedL4:         selection.New[int](),
		SelectedEgress:     selection.New[int](),
		TopTab:             tab,
		Config:             cfg,
	}
}

// Clone returns a copy that shares no mutable data with s. Datasets are
// replaced wholesale and never edited in place, so they are shared.
func (s State) Clone() State {
	c := s
	c.SelectedApps = s.SelectedApps.Clone()
	c.SelectedNamespaces = s.SelectedNamespaces.Clone()
	c.SelectedL4 = s.SelectedL4.Clone()
	c.SelectedEgress = s.SelectedEgress.Clone()
	if s.Pending != nil {
		p := *s.Pending
		c.Pending = &p
	}
	if s.Confirm != nil {
		cf := *s.Confirm
		cf.Targets = append([]string(nil), s.Confirm.Targets...)
		c.Confirm = &cf
	}
	c.Envs = append([]string(nil), s.Envs...)
	return c
}

// EnvReady reports whether the active environment's data is committed and
// no environment load is in flight.
func (s State) EnvReady() bool {
	return s.ActiveEnv != "" && s.LoadedEnv == s.ActiveEnv && s.inflight[LaneEnv] == nil
}

// InFlight returns the token of the operation running in lane, if any.
func (s State) InFlight(lane Lane) *Token {
	return s.inflight[lane]
}

// ProvisioningEnabled reports whether the provisioning tabs are usable.
func (s State) ProvisioningEnabled() bool {
	return s.Config.Complete()
}

// VisibleIPs returns the IPs of the selected rows of the visible IP table,
// or of every row when none is selected.
func (s State) VisibleIPs() []string {
	var ips []string
	switch s.View {
	case route.ViewL4Ingress:
		for i, it := range s.L4Items {
			if s.SelectedL4.Len() == 0 || s.SelectedL4.Has(i) {
				ips = append(ips, it.AllocatedIPs...)
			}
		}
	case route.ViewEgressIPs:
		for i, it := range s.EgressItems {
			if s.SelectedEgress.Len() == 0 || s.SelectedEgress.Has(i) {
				ips = append(ips, it.AllocatedIPs...)
			}
		}
	case route.ViewApps:
		names := s.SelectedApps.Items()
		if len(names) == 0 {
			names = s.Apps.Names()
		}
		for _, n := range names {
			ips = append(ips, s.L4IPsByApp[n]...)
			ips = append(ips, s.EgressIPsByApp[n]...)
		}
	}
	return model.UniqStrings(ips)
}

func (s State) resolveEnv(name string) (string, bool) {
	for _, e := range s.Envs {
		if e == name {
			return e, true
		}
	}
	for _, e := range s.Envs {
		if strings.EqualFold(e, name) {
			return e, true
		}
	}
	return "", false
}

func indices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
