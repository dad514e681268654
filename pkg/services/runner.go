// Package services runs the side effects the view-state store asks for and
// turns their outcome into completion events.
package services

import (
	"context"
	"fmt"
	"net/http"

	cblog "github.com/charmbracelet/log"
	"github.com/darksworm/kubeportal/pkg/api"
	apperrors "github.com/darksworm/kubeportal/pkg/errors"
	"github.com/darksworm/kubeportal/pkg/model"
	"github.com/darksworm/kubeportal/pkg/route"
	"github.com/darksworm/kubeportal/pkg/services/appdelete"
	"github.com/darksworm/kubeportal/pkg/store"
	"golang.org/x/sync/errgroup"
)

// PortalAPI is the read side of the portal REST API.
type PortalAPI interface {
	DeploymentType(ctx context.Context) (model.Deployment, error)
	CurrentUser(ctx context.Context) (string, error)
	EnvList(ctx context.Context) ([]string, error)
	Apps(ctx context.Context, env string) (model.AppSet, error)
	Namespaces(ctx context.Context, env, app string) (model.NamespaceSet, error)
	L4Ingress(ctx context.Context, env, app string) ([]model.L4IngressItem, error)
	EgressIPs(ctx context.Context, env, app string) ([]model.EgressIPItem, error)
}

// ConfigSaver persists the Home tab fields.
type ConfigSaver func(cfg store.PortalConfig) error

// Runner executes store effects against the portal API.
type Runner struct {
	api     PortalAPI
	deleter appdelete.AppDeleteService
	save    ConfigSaver
	// fanout caps concurrent per-app fetches; zero means unbounded.
	fanout int
}

// NewRunner creates a Runner talking to server.
func NewRunner(server *model.Server, save ConfigSaver) *Runner {
	svc := api.NewApplicationService(server)
	return &Runner{
		api:     svc,
		deleter: appdelete.NewAppDeleteServiceWithAPI(svc),
		save:    save,
	}
}

// NewRunnerWithAPI creates a Runner with injected dependencies (for testing).
func NewRunnerWithAPI(portal PortalAPI, deleter appdelete.AppDeleteService, save ConfigSaver) *Runner {
	return &Runner{api: portal, deleter: deleter, save: save}
}

// SetFanout caps concurrent per-app requests, reads and deletes alike.
func (r *Runner) SetFanout(n int) {
	r.fanout = n
	r.deleter = appdelete.WithConcurrency(r.deleter, n)
}

// Run executes eff and returns its completion event. Effects that are not
// network operations (history sync) return nil.
func (r *Runner) Run(ctx context.Context, eff store.Effect) store.Event {
	switch e := eff.(type) {
	case store.FetchMetadata:
		return r.fetchMetadata(ctx, e)
	case store.LoadEnvironment:
		return r.loadEnvironment(ctx, e)
	case store.LoadSubView:
		return r.loadSubView(ctx, e)
	case store.DeleteApps:
		return r.deleteApps(ctx, e)
	case store.DeleteNamespaces:
		return r.deleteNamespaces(ctx, e)
	case store.SaveConfig:
		return r.saveConfig(e)
	}
	return nil
}

func failed(tok *store.Token, err error) store.Event {
	return store.OperationFailed{Token: tok, Err: err}
}

func (r *Runner) fetchMetadata(ctx context.Context, e store.FetchMetadata) store.Event {
	var (
		dep  model.Deployment
		user string
		envs []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		dep, err = r.api.DeploymentType(gctx)
		return err
	})
	g.Go(func() (err error) {
		user, err = r.api.CurrentUser(gctx)
		return err
	})
	g.Go(func() (err error) {
		envs, err = r.api.EnvList(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		cblog.With("component", "runner").Error("metadata fetch failed", "err", err)
		return failed(e.Token, err)
	}
	return store.MetadataLoaded{Token: e.Token, Deployment: dep, User: user, Envs: envs}
}

func (r *Runner) loadEnvironment(ctx context.Context, e store.LoadEnvironment) store.Event {
	apps, l4, egress, err := r.environment(ctx, e.Token, e.Env)
	if err != nil {
		return failed(e.Token, err)
	}
	return store.EnvironmentLoaded{Token: e.Token, Env: e.Env, Apps: apps, L4IPs: l4, EgressIPs: egress}
}

// environment fetches the app list of env and then, concurrently, the L4 and
// egress allocations of every app.
func (r *Runner) environment(ctx context.Context, tok *store.Token, env string) (model.AppSet, model.IndexMap, model.IndexMap, error) {
	log := cblog.With("component", "runner", "env", env)
	apps, err := r.api.Apps(ctx, env)
	if err != nil {
		log.Error("apps fetch failed", "err", err)
		return model.AppSet{}, nil, nil, err
	}
	if tok != nil && tok.Cancelled() {
		return model.AppSet{}, nil, nil, context.Canceled
	}

	names := apps.Names()
	l4 := make([][]string, len(names))
	egress := make([][]string, len(names))

	g, gctx := errgroup.WithContext(ctx)
	if r.fanout > 0 {
		g.SetLimit(r.fanout)
	}
	for i, name := range names {
		g.Go(func() error {
			items, err := r.api.L4Ingress(gctx, env, name)
			if err != nil {
				return err
			}
			l4[i] = model.L4IPs(items)
			return nil
		})
		g.Go(func() error {
			items, err := r.egressIPs(gctx, env, name)
			if err != nil {
				return err
			}
			egress[i] = model.EgressIPs(items)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("per-app fetch failed", "err", err)
		return model.AppSet{}, nil, nil, err
	}

	l4Map := make(model.IndexMap, len(names))
	egressMap := make(model.IndexMap, len(names))
	for i, name := range names {
		l4Map[name] = l4[i]
		egressMap[name] = egress[i]
	}
	log.Debug("environment loaded", "apps", len(names))
	return apps, l4Map, egressMap, nil
}

// egressIPs fetches the egress allocations of app. Portals without the
// egress endpoint answer 404, which means no allocations.
func (r *Runner) egressIPs(ctx context.Context, env, app string) ([]model.EgressIPItem, error) {
	items, err := r.api.EgressIPs(ctx, env, app)
	if he, ok := api.AsHTTPError(err); ok && he.Status == http.StatusNotFound {
		cblog.With("component", "runner").Debug("no egress endpoint", "env", env, "app", app)
		return []model.EgressIPItem{}, nil
	}
	return items, err
}

func (r *Runner) loadSubView(ctx context.Context, e store.LoadSubView) store.Event {
	ev := store.SubViewLoaded{
		Token:         e.Token,
		Env:           e.Env,
		App:           e.App,
		View:          e.View,
		Push:          e.Push,
		ThenNamespace: e.ThenNamespace,
	}
	var err error
	switch e.View {
	case route.ViewNamespaces:
		ev.Namespaces, err = r.api.Namespaces(ctx, e.Env, e.App)
	case route.ViewL4Ingress:
		ev.L4Items, err = r.api.L4Ingress(ctx, e.Env, e.App)
	case route.ViewEgressIPs:
		ev.EgressItems, err = r.egressIPs(ctx, e.Env, e.App)
	default:
		err = apperrors.New(apperrors.ErrorInternal, "UNKNOWN_VIEW", fmt.Sprintf("no dataset for view %q", e.View))
	}
	if err != nil {
		cblog.With("component", "runner").Error("sub-view fetch failed", "view", e.View, "app", e.App, "err", err)
		return failed(e.Token, err)
	}
	return ev
}

func (r *Runner) deleteApps(ctx context.Context, e store.DeleteApps) store.Event {
	err := r.deleter.DeleteApps(ctx, appdelete.AppDeleteRequest{Env: e.Env, Apps: e.Apps})
	if err != nil {
		return failed(e.Token, err)
	}
	apps, l4, egress, err := r.environment(ctx, e.Token, e.Env)
	if err != nil {
		return failed(e.Token, err)
	}
	return store.AppsDeleted{Token: e.Token, Env: e.Env, Deleted: e.Apps, Apps: apps, L4IPs: l4, EgressIPs: egress}
}

func (r *Runner) deleteNamespaces(ctx context.Context, e store.DeleteNamespaces) store.Event {
	err := r.deleter.DeleteNamespaces(ctx, appdelete.NamespaceDeleteRequest{
		Env:        e.Env,
		App:        e.App,
		Namespaces: e.Namespaces,
	})
	if err != nil {
		return failed(e.Token, err)
	}

	ev := store.NamespacesDeleted{Token: e.Token, Env: e.Env, App: e.App, Deleted: e.Namespaces}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ev.Namespaces, err = r.api.Namespaces(gctx, e.Env, e.App)
		return err
	})
	g.Go(func() (err error) {
		ev.Apps, ev.L4IPs, ev.EgressIPs, err = r.environment(gctx, e.Token, e.Env)
		return err
	})
	if err := g.Wait(); err != nil {
		return failed(e.Token, err)
	}
	return ev
}

func (r *Runner) saveConfig(e store.SaveConfig) store.Event {
	if r.save == nil {
		return store.ConfigSaved{Token: e.Token, Config: e.Config}
	}
	if err := r.save(e.Config); err != nil {
		cblog.With("component", "runner").Error("config save failed", "err", err)
		return failed(e.Token, apperrors.ConvertError(err, apperrors.ErrorConfig, "CONFIG_SAVE_FAILED"))
	}
	return store.ConfigSaved{Token: e.Token, Config: e.Config}
}
