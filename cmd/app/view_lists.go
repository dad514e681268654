package main

import (
	"strconv"
	"strings"

	"github.com/darksworm/kubeportal/pkg/neat"
	"github.com/darksworm/kubeportal/pkg/route"
	"github.com/darksworm/kubeportal/pkg/store"
)

// rowCount is the number of navigable rows of the current view.
func rowCount(s store.State) int {
	if s.TopTab != store.TabProvisioning {
		return 0
	}
	switch s.View {
	case route.ViewApps:
		return s.Apps.Len()
	case route.ViewNamespaces:
		return s.Namespaces.Len()
	case route.ViewL4Ingress:
		return len(s.L4Items)
	case route.ViewEgressIPs:
		return len(s.EgressItems)
	case route.ViewNamespaceDetails:
		return len(detailLines(s))
	}
	return 0
}

func joinOrDash(xs []string) string {
	if len(xs) == 0 {
		return "—"
	}
	return strings.Join(xs, ", ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// tableFor builds the table of a list view.
func tableFor(s store.State) tableData {
	var t tableData
	switch s.View {
	case route.ViewApps:
		t.headers = []string{"", "APP", "DESCRIPTION", "CLUSTERS", "NAMESPACES", "L4 INGRESS IPS", "EGRESS IPS"}
		for _, a := range s.Apps.Items() {
			on := s.SelectedApps.Has(a.Name)
			t.selected = append(t.selected, on)
			t.rows = append(t.rows, []string{
				checkbox(on),
				a.Name,
				a.Description,
				joinOrDash(s.ClustersByApp[a.Name]),
				strconv.Itoa(a.NamespaceCount),
				joinOrDash(s.L4IPsByApp[a.Name]),
				joinOrDash(s.EgressIPsByApp[a.Name]),
			})
		}
	case route.ViewNamespaces:
		t.headers = []string{"", "NAMESPACE", "CLUSTERS", "EGRESS", "VAULT", "ARGO"}
		for _, n := range s.Namespaces.Items() {
			on := s.SelectedNamespaces.Has(n.Name)
			t.selected = append(t.selected, on)
			t.rows = append(t.rows, []string{
				checkbox(on),
				n.Name,
				joinOrDash(n.Clusters),
				n.EgressName,
				yesNo(n.VaultSetup),
				yesNo(n.ManagedByArgo),
			})
		}
	case route.ViewL4Ingress:
		t.headers = []string{"", "CLUSTER", "PURPOSE", "ALLOCATED IPS", "LINK"}
		for i, it := range s.L4Items {
			on := s.SelectedL4.Has(i)
			t.selected = append(t.selected, on)
			t.rows = append(t.rows, []string{checkbox(on), it.Cluster, it.Purpose, joinOrDash(it.AllocatedIPs), it.Link})
		}
	case route.ViewEgressIPs:
		t.headers = []string{"", "CLUSTER", "ALLOCATION", "ALLOCATED IPS", "LINK"}
		for i, it := range s.EgressItems {
			on := s.SelectedEgress.Has(i)
			t.selected = append(t.selected, on)
			t.rows = append(t.rows, []string{checkbox(on), it.Cluster, it.AllocationID, joinOrDash(it.AllocatedIPs), it.Link})
		}
	}
	return t
}

// detailLines renders the detail namespace as YAML, one entry per line.
func detailLines(s store.State) []string {
	ns, ok := s.Namespaces.Get(s.DetailNamespace)
	if !ok {
		return []string{"Namespace " + s.DetailNamespace + " not found."}
	}
	if strings.TrimSpace(ns.Raw) == "" {
		return []string{"No details."}
	}
	out, err := neat.Details(ns.Raw)
	if err != nil {
		return []string{"Cannot render details: " + err.Error()}
	}
	return strings.Split(strings.TrimRight(out, "\n"), "\n")
}

// breadcrumb names the view, e.g. "prod › payments › Namespaces".
func breadcrumb(s store.State) string {
	parts := []string{s.ActiveEnv}
	switch s.View {
	case route.ViewApps:
		parts = append(parts, "Applications")
	case route.ViewNamespaces:
		parts = append(parts, s.DetailApp, "Namespaces")
	case route.ViewL4Ingress:
		parts = append(parts, s.DetailApp, "L4 Ingress IPs")
	case route.ViewEgressIPs:
		parts = append(parts, s.DetailApp, "Egress IPs")
	case route.ViewNamespaceDetails:
		parts = append(parts, s.DetailApp, "Namespaces", s.DetailNamespace)
	}
	return strings.Join(parts, " › ")
}
