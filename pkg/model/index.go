package model

// IndexMap maps an app name to a deduplicated, insertion-ordered list of
// strings (clusters, L4 IPs, egress IPs).
type IndexMap map[string][]string

// UniqStrings drops empty and repeated values, keeping first occurrences.
func UniqStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// ClustersByApp derives the cluster index from an app set.
func ClustersByApp(apps AppSet) IndexMap {
	idx := make(IndexMap, apps.Len())
	for _, a := range apps.Items() {
		idx[a.Name] = UniqStrings(a.Clusters)
	}
	return idx
}

// L4IPs flattens the allocated IPs of every item.
func L4IPs(items []L4IngressItem) []string {
	var all []string
	for _, it := range items {
		all = append(all, it.AllocatedIPs...)
	}
	return UniqStrings(all)
}

// EgressIPs flattens the allocated IPs of every item.
func EgressIPs(items []EgressIPItem) []string {
	var all []string
	for _, it := range items {
		all = append(all, it.AllocatedIPs...)
	}
	return UniqStrings(all)
}

// Restrict returns a copy holding only keys present in apps.
func (m IndexMap) Restrict(apps AppSet) IndexMap {
	out := make(IndexMap, len(m))
	for k, v := range m {
		if apps.Has(k) {
			out[k] = append([]string(nil), v...)
		}
	}
	return out
}

// Clone returns a deep copy.
func (m IndexMap) Clone() IndexMap {
	if m == nil {
		return nil
	}
	out := make(IndexMap, len(m))
	for k, v := range m {
		out[k] = append([]string(nil), v...)
	}
	return out
}
