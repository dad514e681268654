package model

// Server represents the portal backend the client talks to
type Server struct {
	BaseURL  string `json:"baseUrl"`
	Token    string `json:"token,omitempty"`
	Insecure bool   `json:"insecure,omitempty"`
}

const (
	DefaultBannerTitle = "OCP App Provisioning Portal"
	DefaultBannerColor = "#384454"
)

// Deployment is the /api/deployment_type payload. Titles and header colours
// are keyed by deployment environment.
type Deployment struct {
	Env          string            `json:"deployment_env"`
	Titles       map[string]string `json:"title,omitempty"`
	HeaderColors map[string]string `json:"headerColor,omitempty"`
}

// Title returns the banner title for the deployment environment.
func (d Deployment) Title() string {
	if t := d.Titles[d.Env]; t != "" {
		return t
	}
	return DefaultBannerTitle
}

// HeaderColor returns the banner colour for the deployment environment.
func (d Deployment) HeaderColor() string {
	if c := d.HeaderColors[d.Env]; c != "" {
		return c
	}
	return DefaultBannerColor
}

// App is one provisioned application in an environment.
type App struct {
	Name           string   `json:"appname"`
	Description    string   `json:"description,omitempty"`
	Clusters       []string `json:"clusters"`
	NamespaceCount int      `json:"totalns"`
	ManagerGroups  []string `json:"managergroups,omitempty"`
	// Raw is the server payload for this app, kept for detail rendering.
	Raw string `json:"-"`
}

// Namespace is one namespace allocated to an app.
type Namespace struct {
	Name          string   `json:"name"`
	Clusters      []string `json:"clusters"`
	EgressName    string   `json:"egressname,omitempty"`
	VaultSetup    bool     `json:"vaultsetup"`
	ManagedByArgo bool     `json:"managedbyargo"`
	Raw           string   `json:"-"`
}

// L4IngressItem is one L4 ingress allocation of an app in a cluster.
type L4IngressItem struct {
	Cluster      string   `json:"cluster"`
	Purpose      string   `json:"purpose,omitempty"`
	AllocatedIPs []string `json:"allocated_ips"`
	Link         string   `json:"link,omitempty"`
}

// EgressIPItem is one egress allocation of an app in a cluster.
type EgressIPItem struct {
	Cluster      string   `json:"cluster"`
	AllocationID string   `json:"allocation_id"`
	AllocatedIPs []string `json:"allocated_ips"`
	Link         string   `json:"link,omitempty"`
}

// AppSet keeps apps in server order with lookup by name.
type AppSet struct {
	order []string
	byKey map[string]App
}

// NewAppSet builds a set from apps in the given order. Later duplicates replace
// earlier ones without moving them.
func NewAppSet(apps ...App) AppSet {
	s := AppSet{byKey: make(map[string]App, len(apps))}
	for _, a := range apps {
		if _, ok := s.byKey[a.Name]; !ok {
			s.order = append(s.order, a.Name)
		}
		s.byKey[a.Name] = a
	}
	return s
}

func (s AppSet) Len() int { return len(s.order) }

// Names returns app names in server order.
func (s AppSet) Names() []string {
	return append([]string(nil), s.order...)
}

func (s AppSet) Get(name string) (App, bool) {
	a, ok := s.byKey[name]
	return a, ok
}

func (s AppSet) Has(name string) bool {
	_, ok := s.byKey[name]
	return ok
}

// Items returns apps in server order.
func (s AppSet) Items() []App {
	out := make([]App, 0, len(s.order))
	for _, n := range s.order {
		out = append(out, s.byKey[n])
	}
	return out
}

// NamespaceSet keeps namespaces in server order with lookup by name.
type NamespaceSet struct {
	order []string
	byKey map[string]Namespace
}

func NewNamespaceSet(nss ...Namespace) NamespaceSet {
	s := NamespaceSet{byKey: make(map[string]Namespace, len(nss))}
	for _, n := range nss {
		if _, ok := s.byKey[n.Name]; !ok {
			s.order = append(s.order, n.Name)
		}
		s.byKey[n.Name] = n
	}
	return s
}

func (s NamespaceSet) Len() int { return len(s.order) }

func (s NamespaceSet) Names() []string {
	return append([]string(nil), s.order...)
}

func (s NamespaceSet) Get(name string) (Namespace, bool) {
	n, ok := s.byKey[name]
	return n, ok
}

func (s NamespaceSet) Items() []Namespace {
	out := make([]Namespace, 0, len(s.order))
	for _, n := range s.order {
		out = append(out, s.byKey[n])
	}
	return out
}
