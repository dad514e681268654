package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	cblog "github.com/charmbracelet/log"
	"github.com/darksworm/kubeportal/pkg/model"
	"github.com/tidwall/gjson"
)

// ApplicationService wraps the portal REST endpoints.
type ApplicationService struct {
	client Fetcher
}

// NewApplicationService creates a service backed by a real HTTP client.
func NewApplicationService(server *model.Server) *ApplicationService {
	return &ApplicationService{client: NewClient(server)}
}

// NewApplicationServiceWithFetcher creates a service over any Fetcher.
func NewApplicationServiceWithFetcher(f Fetcher) *ApplicationService {
	return &ApplicationService{client: f}
}

func appPath(app string, suffix string, q url.Values) string {
	p := "/api/apps/" + url.PathEscape(app) + suffix
	if len(q) > 0 {
		p += "?" + q.Encode()
	}
	return p
}

func envQuery(env string) url.Values {
	q := url.Values{}
	q.Set("env", env)
	return q
}

// DeploymentType fetches banner metadata.
func (s *ApplicationService) DeploymentType(ctx context.Context) (model.Deployment, error) {
	res, err := s.client.FetchJSON(ctx, "/api/deployment_type")
	if err != nil {
		return model.Deployment{}, err
	}
	d := model.Deployment{
		Env:          res.Get("deployment_env").String(),
		Titles:       stringMap(res.Get("title")),
		HeaderColors: stringMap(res.Get("headerColor")),
	}
	return d, nil
}

// CurrentUser returns the signed-in user name.
func (s *ApplicationService) CurrentUser(ctx context.Context) (string, error) {
	res, err := s.client.FetchJSON(ctx, "/api/current-user")
	if err != nil {
		return "", err
	}
	return res.Get("user").String(), nil
}

// EnvList returns environment keys in server order.
func (s *ApplicationService) EnvList(ctx context.Context) ([]string, error) {
	res, err := s.client.FetchJSON(ctx, "/api/envlist")
	if err != nil {
		return nil, err
	}
	var envs []string
	switch {
	case res.IsObject():
		res.ForEach(func(key, _ gjson.Result) bool {
			envs = append(envs, key.String())
			return true
		})
	case res.IsArray():
		for _, v := range res.Array() {
			envs = append(envs, v.String())
		}
	}
	return model.UniqStrings(envs), nil
}

// Apps lists the applications of env in server order.
func (s *ApplicationService) Apps(ctx context.Context, env string) (model.AppSet, error) {
	res, err := s.client.FetchJSON(ctx, "/api/apps?"+envQuery(env).Encode())
	if err != nil {
		return model.AppSet{}, err
	}
	var apps []model.App
	eachKeyed(res, "appname", func(name string, v gjson.Result) {
		apps = append(apps, model.App{
			Name:           name,
			Description:    v.Get("description").String(),
			Clusters:       stringList(v.Get("clusters")),
			NamespaceCount: int(v.Get("totalns").Int()),
			ManagerGroups:  stringList(v.Get("managergroups")),
			Raw:            v.Raw,
		})
	})
	cblog.With("component", "api").Debug("apps loaded", "env", env, "count", len(apps))
	return model.NewAppSet(apps...), nil
}

// Namespaces lists the namespaces of app in env.
func (s *ApplicationService) Namespaces(ctx context.Context, env, app string) (model.NamespaceSet, error) {
	res, err := s.client.FetchJSON(ctx, appPath(app, "/namespaces", envQuery(env)))
	if err != nil {
		return model.NamespaceSet{}, err
	}
	var nss []model.Namespace
	eachKeyed(res, "name", func(name string, v gjson.Result) {
		nss = append(nss, model.Namespace{
			Name:          name,
			Clusters:      stringList(v.Get("clusters")),
			EgressName:    v.Get("egressname").String(),
			VaultSetup:    v.Get("vaultsetup").Bool(),
			ManagedByArgo: v.Get("managedbyargo").Bool(),
			Raw:           v.Raw,
		})
	})
	return model.NewNamespaceSet(nss...), nil
}

// L4Ingress lists the L4 ingress allocations of app in env.
func (s *ApplicationService) L4Ingress(ctx context.Context, env, app string) ([]model.L4IngressItem, error) {
	res, err := s.client.FetchJSON(ctx, appPath(app, "/l4_ingress", envQuery(env)))
	if err != nil {
		return nil, err
	}
	items := []model.L4IngressItem{}
	for _, v := range res.Array() {
		items = append(items, model.L4IngressItem{
			Cluster:      v.Get("cluster").String(),
			Purpose:      v.Get("purpose").String(),
			AllocatedIPs: stringList(v.Get("allocated_ips")),
			Link:         v.Get("link").String(),
		})
	}
	return items, nil
}

// EgressIPs lists the egress allocations of app in env.
func (s *ApplicationService) EgressIPs(ctx context.Context, env, app string) ([]model.EgressIPItem, error) {
	res, err := s.client.FetchJSON(ctx, appPath(app, "/egress_ips", envQuery(env)))
	if err != nil {
		return nil, err
	}
	items := []model.EgressIPItem{}
	for _, v := range res.Array() {
		items = append(items, model.EgressIPItem{
			Cluster:      v.Get("cluster").String(),
			AllocationID: v.Get("allocation_id").String(),
			AllocatedIPs: stringList(v.Get("allocated_ips")),
			Link:         v.Get("link").String(),
		})
	}
	return items, nil
}

// DeleteApp deletes app and everything that depends on it in env.
func (s *ApplicationService) DeleteApp(ctx context.Context, env, app string) error {
	_, err := s.client.Mutate(ctx, http.MethodDelete, appPath(app, "", envQuery(env)))
	return err
}

// DeleteNamespaces deletes the listed namespaces of app in one call.
func (s *ApplicationService) DeleteNamespaces(ctx context.Context, env, app string, names []string) error {
	q := envQuery(env)
	q.Set("namespaces", strings.Join(names, ","))
	_, err := s.client.Mutate(ctx, http.MethodDelete, appPath(app, "/namespaces", q))
	return err
}

// eachKeyed walks either a name-keyed object or a list of records carrying
// their name in nameField, in payload order.
func eachKeyed(res gjson.Result, nameField string, fn func(name string, v gjson.Result)) {
	switch {
	case res.IsObject():
		res.ForEach(func(key, value gjson.Result) bool {
			fn(key.String(), value)
			return true
		})
	case res.IsArray():
		for _, v := range res.Array() {
			if name := v.Get(nameField).String(); name != "" {
				fn(name, v)
			}
		}
	}
}

// stringList reads an array of scalars, or a comma-separated string.
func stringList(v gjson.Result) []string {
	if !v.Exists() {
		return []string{}
	}
	var out []string
	if v.IsArray() {
		for _, e := range v.Array() {
			out = append(out, e.String())
		}
	} else {
		for _, part := range strings.Split(v.String(), ",") {
			out = append(out, strings.TrimSpace(part))
		}
	}
	return model.UniqStrings(out)
}

func stringMap(v gjson.Result) map[string]string {
	m := map[string]string{}
	v.ForEach(func(key, value gjson.Result) bool {
		m[key.String()] = value.String()
		return true
	})
	return m
}
