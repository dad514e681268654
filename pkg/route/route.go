// Package route maps navigable locations ("/apps/<app>/namespaces?env=prod")
// to Route values and back. Decoding never fails: anything it does not
// understand becomes the Apps route.
package route

import (
	"net/url"
	"strings"
)

// View identifies which dataset the portal is showing.
type View string

const (
	ViewApps             View = "apps"
	ViewNamespaces       View = "namespaces"
	ViewL4Ingress        View = "l4ingress"
	ViewEgressIPs        View = "egressips"
	ViewNamespaceDetails View = "namespaceDetails"
)

// Path segments used in locations for each sub-view.
const (
	segmentApps       = "apps"
	segmentNamespaces = "namespaces"
	segmentL4Ingress  = "l4_ingress"
	segmentEgressIPs  = "egress_ips"
	envParam          = "env"
)

// Route is the structured form of a location.
type Route struct {
	Env       string
	View      View
	App       string
	Namespace string
}

// Default returns the Apps route for env.
func Default(env string) Route {
	return Route{Env: env, View: ViewApps}
}

// Valid reports whether the route satisfies the view invariants: every
// sub-view names an app, and namespace details also name a namespace.
func (r Route) Valid() bool {
	switch r.View {
	case ViewApps:
		return r.App == "" && r.Namespace == ""
	case ViewNamespaces, ViewL4Ingress, ViewEgressIPs:
		return r.App != "" && r.Namespace == ""
	case ViewNamespaceDetails:
		return r.App != "" && r.Namespace != ""
	default:
		return false
	}
}

// IsSubView reports whether the route opens a per-app view.
func (r Route) IsSubView() bool {
	return r.View != ViewApps && r.App != ""
}

// Neutral is the value a pending route is reset to once consumed.
func (r Route) Neutral() Route {
	return Default(r.Env)
}

// String returns the encoded location.
func (r Route) String() string {
	return Encode(r)
}

// Decode parses a location. Unmatched or malformed input yields the Apps
// route with the env query parameter when it can be read.
func Decode(location string) Route {
	u, err := url.Parse(strings.TrimSpace(location))
	if err != nil {
		return Default(envFromRaw(location))
	}
	env := u.Query().Get(envParam)

	// Split on the escaped form so "%2F" inside an app name stays one segment.
	raw := strings.TrimSuffix(u.EscapedPath(), "/")
	raw = strings.TrimPrefix(raw, "/")
	parts := strings.Split(raw, "/")
	if len(parts) == 0 || parts[0] != segmentApps {
		return Default(env)
	}

	segs := make([]string, 0, len(parts)-1)
	for _, p := range parts[1:] {
		s, err := url.PathUnescape(p)
		if err != nil || s == "" {
			return Default(env)
		}
		segs = append(segs, s)
	}

	switch len(segs) {
	case 0, 1:
		// "/apps/<app>" has no view of its own.
		return Default(env)
	case 2:
		app := segs[0]
		switch segs[1] {
		case segmentNamespaces:
			return Route{Env: env, View: ViewNamespaces, App: app}
		case segmentL4Ingress:
			return Route{Env: env, View: ViewL4Ingress, App: app}
		case segmentEgressIPs:
			return Route{Env: env, View: ViewEgressIPs, App: app}
		}
	case 3:
		if segs[1] == segmentNamespaces {
			return Route{Env: env, View: ViewNamespaceDetails, App: segs[0], Namespace: segs[2]}
		}
	}
	return Default(env)
}

// Encode renders a route as path plus query. Invalid routes encode as the
// Apps location for their env.
func Encode(r Route) string {
	if !r.Valid() {
		r = Default(r.Env)
	}

	var b strings.Builder
	b.WriteString("/" + segmentApps)
	switch r.View {
	case ViewNamespaces:
		b.WriteString("/" + url.PathEscape(r.App) + "/" + segmentNamespaces)
	case ViewL4Ingress:
		b.WriteString("/" + url.PathEscape(r.App) + "/" + segmentL4Ingress)
	case ViewEgressIPs:
		b.WriteString("/" + url.PathEscape(r.App) + "/" + segmentEgressIPs)
	case ViewNamespaceDetails:
		b.WriteString("/" + url.PathEscape(r.App) + "/" + segmentNamespaces + "/" + url.PathEscape(r.Namespace))
	}
	if r.Env != "" {
		q := url.Values{}
		q.Set(envParam, r.Env)
		b.WriteString("?" + q.Encode())
	}
	return b.String()
}

// envFromRaw salvages the env parameter from input url.Parse rejected.
func envFromRaw(location string) string {
	i := strings.IndexByte(location, '?')
	if i < 0 {
		return ""
	}
	q, err := url.ParseQuery(location[i+1:])
	if err != nil {
		return ""
	}
	return q.Get(envParam)
}
