package store

import (
	"github.com/darksworm/kubeportal/pkg/model"
	"github.com/darksworm/kubeportal/pkg/route"
)

// Event is anything that can change State: user intent, history pops and
// completions of asynchronous operations.
type Event interface{ isEvent() }

// Started kicks off the portal from the initial location.
type Started struct{ Location string }

// MetadataLoaded completes the startup fetch.
type MetadataLoaded struct {
	Token      *Token
	Deployment model.Deployment
	User       string
	Envs       []string
}

// EnvironmentSelected is an environment tab click.
type EnvironmentSelected struct{ Env string }

// EnvironmentLoaded carries the app list and derived per-app data of Env.
type EnvironmentLoaded struct {
	Token     *Token
	Env       string
	Apps      model.AppSet
	L4IPs     model.IndexMap
	EgressIPs model.IndexMap
}

// ViewRequested asks for a per-app view. An empty App means the detail app
// or the single selected app.
type ViewRequested struct {
	View route.View
	App  string
}

// SubViewLoaded carries the dataset of a per-app view.
type SubViewLoaded struct {
	Token       *Token
	Env         string
	App         string
	View        route.View
	Namespaces  model.NamespaceSet
	L4Items     []model.L4IngressItem
	EgressItems []model.EgressIPItem
	Push        bool
	// ThenNamespace opens that namespace's details once namespaces load.
	ThenNamespace string
}

// BackToApps leaves any per-app view.
type BackToApps struct{}

// NamespaceDetailsRequested opens one namespace. Empty means the single
// selected namespace.
type NamespaceDetailsRequested struct{ Namespace string }

// BackToNamespaces leaves namespace details.
type BackToNamespaces struct{}

// RoutePopped is a history back/forward to Route.
type RoutePopped struct{ Route route.Route }

// ReloadRequested re-fetches what is on screen.
type ReloadRequested struct{}

// AppSelectionToggled includes or excludes one app row.
type AppSelectionToggled struct {
	Name     string
	Included bool
}

// NamespaceSelectionToggled includes or excludes one namespace row.
type NamespaceSelectionToggled struct {
	Name     string
	Included bool
}

// RowSelectionToggled includes or excludes a row of the visible IP table.
type RowSelectionToggled struct {
	Index    int
	Included bool
}

// AllSelected selects (or with Checked false, clears) every visible row.
type AllSelected struct{ Checked bool }

// DeleteAppsRequested asks to delete Names, or the selected apps when nil.
type DeleteAppsRequested struct{ Names []string }

// DeleteNamespacesRequested asks to delete Names of the detail app, or the
// selected namespaces when nil.
type DeleteNamespacesRequested struct{ Names []string }

// ConfirmationAnswered answers the pending confirmation.
type ConfirmationAnswered struct{ Accepted bool }

// AppsDeleted carries the refreshed environment after an app delete.
type AppsDeleted struct {
	Token     *Token
	Env       string
	Deleted   []string
	Apps      model.AppSet
	L4IPs     model.IndexMap
	EgressIPs model.IndexMap
}

// NamespacesDeleted carries refreshed data after a namespace delete.
type NamespacesDeleted struct {
	Token      *Token
	Env        string
	App        string
	Deleted    []string
	Namespaces model.NamespaceSet
	Apps       model.AppSet
	L4IPs      model.IndexMap
	EgressIPs  model.IndexMap
}

// OperationFailed ends any asynchronous operation with an error.
type OperationFailed struct {
	Token *Token
	Err   error
}

// TopTabSelected switches the portal section.
type TopTabSelected struct{ Tab TopTab }

// ConfigSaveRequested saves the Home tab fields.
type ConfigSaveRequested struct{ Config PortalConfig }

// ConfigSaved completes a config save.
type ConfigSaved struct {
	Token  *Token
	Config PortalConfig
}

// ErrorDismissed clears the visible error.
type ErrorDismissed struct{}

// TornDown cancels everything; later events are ignored.
type TornDown struct{}

func (Started) isEvent()                   {}
func (MetadataLoaded) isEvent()            {}
func (EnvironmentSelected) isEvent()       {}
func (EnvironmentLoaded) isEvent()         {}
func (ViewRequested) isEvent()             {}
func (SubViewLoaded) isEvent()             {}
func (BackToApps) isEvent()                {}
func (NamespaceDetailsRequested) isEvent() {}
func (BackToNamespaces) isEvent()          {}
func (RoutePopped) isEvent()               {}
func (ReloadRequested) isEvent()           {}
func (AppSelectionToggled) isEvent()       {}
func (NamespaceSelectionToggled) isEvent() {}
func (RowSelectionToggled) isEvent()       {}
func (AllSelected) isEvent()               {}
func (DeleteAppsRequested) isEvent()       {}
func (DeleteNamespacesRequested) isEvent() {}
func (ConfirmationAnswered) isEvent()      {}
func (AppsDeleted) isEvent()               {}
func (NamespacesDeleted) isEvent()         {}
func (OperationFailed) isEvent()           {}
func (TopTabSelected) isEvent()            {}
func (ConfigSaveRequested) isEvent()       {}
func (ConfigSaved) isEvent()               {}
func (ErrorDismissed) isEvent()            {}
func (TornDown) isEvent()                  {}

// Effect is work the reducer asks the outside world to do.
type Effect interface{ isEffect() }

// FetchMetadata loads deployment type, current user and environment list
// concurrently. Completes with MetadataLoaded or OperationFailed.
type FetchMetadata struct{ Token *Token }

// LoadEnvironment loads the app list of Env, then the per-app L4 and egress
// data concurrently. Completes with EnvironmentLoaded or OperationFailed.
type LoadEnvironment struct {
	Token *Token
	Env   string
}

// LoadSubView loads the dataset of a per-app view. Completes with
// SubViewLoaded or OperationFailed.
type LoadSubView struct {
	Token         *Token
	Env           string
	App           string
	View          route.View
	Push          bool
	ThenNamespace string
}

// DeleteApps deletes apps concurrently, then refreshes the environment.
type DeleteApps struct {
	Token *Token
	Env   string
	Apps  []string
}

// DeleteNamespaces deletes namespaces of App in one call, then refreshes
// namespaces, apps and derived data.
type DeleteNamespaces struct {
	Token      *Token
	Env        string
	App        string
	Namespaces []string
}

// SyncHistory writes Route to history. Replace is set for the first sync and
// for corrections of a location that is already current.
type SyncHistory struct {
	Route   route.Route
	Replace bool
}

// SaveConfig persists the Home tab fields.
type SaveConfig struct {
	Token  *Token
	Config PortalConfig
}

func (FetchMetadata) isEffect()    {}
func (LoadEnvironment) isEffect()  {}
func (LoadSubView) isEffect()      {}
func (DeleteApps) isEffect()       {}
func (DeleteNamespaces) isEffect() {}
func (SyncHistory) isEffect()      {}
func (SaveConfig) isEffect()       {}
