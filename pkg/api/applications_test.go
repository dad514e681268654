package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/darksworm/kubeportal/pkg/model"
)

func newTestService(t *testing.T, routes map[string]string) (*ApplicationService, *[]string) {
	t.Helper()
	var seen []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.RequestURI())
		body, ok := routes[r.Method+" "+r.URL.RequestURI()]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("no route"))
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return NewApplicationService(&model.Server{BaseURL: server.URL}), &seen
}

func TestEnvListKeepsServerOrder(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"GET /api/envlist": `{"prod":{"a":1},"dev":{},"qa":{}}`,
	})

	envs, err := svc.EnvList(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(envs, []string{"prod", "dev", "qa"}) {
		t.Errorf("envs = %v", envs)
	}
}

func TestEnvListAcceptsArray(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"GET /api/envlist": `["dev","qa","prod"]`,
	})

	envs, err := svc.EnvList(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(envs, []string{"dev", "qa", "prod"}) {
		t.Errorf("envs = %v", envs)
	}
}

func TestDeploymentTypeAndUser(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"GET /api/deployment_type": `{"deployment_env":"live","title":{"live":"Live Portal"},"headerColor":{"live":"#aa0000"}}`,
		"GET /api/current-user":    `{"user":"jdoe"}`,
	})

	d, err := svc.DeploymentType(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Title() != "Live Portal" || d.HeaderColor() != "#aa0000" {
		t.Errorf("deployment = %+v", d)
	}

	user, err := svc.CurrentUser(context.Background())
	if err != nil || user != "jdoe" {
		t.Errorf("user = %q, err = %v", user, err)
	}
}

func TestApps(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"GET /api/apps?env=prod": `{
			"payments": {"appname":"payments","clusters":["c1","c2","c1"],"totalns":3,"description":"Payments"},
			"billing": {"clusters":"c3, c4"}
		}`,
	})

	apps, err := svc.Apps(context.Background(), "prod")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(apps.Names(), []string{"payments", "billing"}) {
		t.Fatalf("names = %v", apps.Names())
	}
	p, _ := apps.Get("payments")
	if p.NamespaceCount != 3 || !reflect.DeepEqual(p.Clusters, []string{"c1", "c2"}) || p.Description != "Payments" {
		t.Errorf("payments = %+v", p)
	}
	b, _ := apps.Get("billing")
	if !reflect.DeepEqual(b.Clusters, []string{"c3", "c4"}) {
		t.Errorf("billing clusters = %v", b.Clusters)
	}
}

func TestAppsNullOrBlankClusters(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"GET /api/apps?env=prod": `{"payments":{"clusters":null},"billing":{"clusters":""},"search":{"clusters":"c1,,c2, "}}`,
	})

	apps, err := svc.Apps(context.Background(), "prod")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{"payments", "billing"} {
		a, _ := apps.Get(name)
		if a.Clusters == nil || len(a.Clusters) != 0 {
			t.Errorf("%s clusters = %#v, want empty", name, a.Clusters)
		}
	}
	s, _ := apps.Get("search")
	if !reflect.DeepEqual(s.Clusters, []string{"c1", "c2"}) {
		t.Errorf("search clusters = %#v", s.Clusters)
	}
}

func TestNamespacesObjectAndList(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"GET /api/apps/payments/namespaces?env=prod": `{"ns-a":{"clusters":["c1"],"egressname":"eg1","vaultsetup":true},"ns-b":{"managedbyargo":true}}`,
		"GET /api/apps/billing/namespaces?env=prod":  `[{"name":"ns1","egressname":"eg1","clusters":"clusterA","vaultsetup":true,"managedbyargo":false}]`,
	})

	nss, err := svc.Namespaces(context.Background(), "prod", "payments")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(nss.Names(), []string{"ns-a", "ns-b"}) {
		t.Fatalf("names = %v", nss.Names())
	}
	a, _ := nss.Get("ns-a")
	if a.EgressName != "eg1" || !a.VaultSetup || a.ManagedByArgo {
		t.Errorf("ns-a = %+v", a)
	}

	nss, err = svc.Namespaces(context.Background(), "prod", "billing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ns1, ok := nss.Get("ns1")
	if !ok || !reflect.DeepEqual(ns1.Clusters, []string{"clusterA"}) {
		t.Errorf("ns1 = %+v", ns1)
	}
}

func TestL4IngressAndEgress(t *testing.T) {
	svc, _ := newTestService(t, map[string]string{
		"GET /api/apps/pay%20ments/l4_ingress?env=prod": `[{"cluster":"c1","allocated_ips":["1.1.1.1","1.1.1.2"]},{"cluster":"c2","allocated_ips":["1.1.1.1"]}]`,
		"GET /api/apps/pay%20ments/egress_ips?env=prod": `[{"cluster":"c1","allocation_id":"a-1","allocated_ips":["9.9.9.9"],"link":"https://x"}]`,
	})

	l4, err := svc.L4Ingress(context.Background(), "prod", "pay ments")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(l4) != 2 || !reflect.DeepEqual(model.L4IPs(l4), []string{"1.1.1.1", "1.1.1.2"}) {
		t.Errorf("l4 = %+v", l4)
	}

	eg, err := svc.EgressIPs(context.Background(), "prod", "pay ments")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(eg) != 1 || eg[0].AllocationID != "a-1" || eg[0].Link != "https://x" {
		t.Errorf("egress = %+v", eg)
	}
}

func TestDeleteEndpoints(t *testing.T) {
	svc, seen := newTestService(t, map[string]string{
		"DELETE /api/apps/payments?env=prod":                              `{"detail":"Deleted"}`,
		"DELETE /api/apps/payments/namespaces?env=prod&namespaces=ns-a%2Cns-b": `{"deleted":["ns-a","ns-b"]}`,
	})

	if err := svc.DeleteApp(context.Background(), "prod", "payments"); err != nil {
		t.Fatalf("DeleteApp: %v", err)
	}
	if err := svc.DeleteNamespaces(context.Background(), "prod", "payments", []string{"ns-a", "ns-b"}); err != nil {
		t.Fatalf("DeleteNamespaces: %v", err)
	}
	if len(*seen) != 2 {
		t.Errorf("calls = %v", *seen)
	}

	err := svc.DeleteApp(context.Background(), "prod", "missing")
	he, ok := AsHTTPError(err)
	if !ok || he.Status != 404 {
		t.Fatalf("expected 404, got %v", err)
	}
}
