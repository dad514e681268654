package appdelete

import (
	"context"
	"fmt"

	cblog "github.com/charmbracelet/log"
	"github.com/darksworm/kubeportal/pkg/api"
	apperrors "github.com/darksworm/kubeportal/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// ApplicationAPI interface for dependency injection
type ApplicationAPI interface {
	DeleteApp(ctx context.Context, env, app string) error
	DeleteNamespaces(ctx context.Context, env, app string, names []string) error
}

type appDeleteServiceImpl struct {
	appService ApplicationAPI
	limit      int
}

// NewAppDeleteServiceWithAPI creates a delete service over appService.
func NewAppDeleteServiceWithAPI(appService ApplicationAPI) AppDeleteService {
	return &appDeleteServiceImpl{appService: appService}
}

// WithConcurrency caps parallel app deletes. Zero means no cap.
func WithConcurrency(svc AppDeleteService, n int) AppDeleteService {
	if impl, ok := svc.(*appDeleteServiceImpl); ok {
		cp := *impl
		cp.limit = n
		return &cp
	}
	return svc
}

func (s *appDeleteServiceImpl) DeleteApps(ctx context.Context, req AppDeleteRequest) error {
	if err := s.ValidateAppRequest(req); err != nil {
		return err
	}
	log := cblog.With("component", "appdelete")
	log.Info("deleting apps", "env", req.Env, "apps", req.Apps)

	// Every issued delete runs to completion; a failure must not abort the
	// others halfway. Wait still reports the first error.
	var g errgroup.Group
	if s.limit > 0 {
		g.SetLimit(s.limit)
	}
	for _, app := range req.Apps {
		g.Go(func() error {
			if err := s.appService.DeleteApp(ctx, req.Env, app); err != nil {
				return s.handleAPIError(app, fmt.Sprintf("Failed to delete %s", app), err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("app delete failed", "env", req.Env, "err", err)
		return err
	}
	return nil
}

func (s *appDeleteServiceImpl) DeleteNamespaces(ctx context.Context, req NamespaceDeleteRequest) error {
	if err := s.ValidateNamespaceRequest(req); err != nil {
		return err
	}
	log := cblog.With("component", "appdelete")
	log.Info("deleting namespaces", "env", req.Env, "app", req.App, "namespaces", req.Namespaces)

	if err := s.appService.DeleteNamespaces(ctx, req.Env, req.App, req.Namespaces); err != nil {
		derr := s.handleAPIError(req.App, "Failed to delete namespaces", err)
		log.Error("namespace delete failed", "app", req.App, "err", derr)
		return derr
	}
	return nil
}

func (s *appDeleteServiceImpl) ValidateAppRequest(req AppDeleteRequest) error {
	if req.Env == "" {
		return apperrors.ValidationError("MISSING_ENV", "environment is required")
	}
	if len(req.Apps) == 0 {
		return apperrors.ValidationError("NO_APPS", "Please select at least one application to delete.")
	}
	for _, a := range req.Apps {
		if a == "" {
			return apperrors.ValidationError("EMPTY_APP", "application name is required")
		}
	}
	return nil
}

func (s *appDeleteServiceImpl) ValidateNamespaceRequest(req NamespaceDeleteRequest) error {
	if req.Env == "" {
		return apperrors.ValidationError("MISSING_ENV", "environment is required")
	}
	if req.App == "" {
		return apperrors.ValidationError("NO_APP", "No application selected.")
	}
	if len(req.Namespaces) == 0 {
		return apperrors.ValidationError("NO_NAMESPACES", "Please select at least one namespace to delete.")
	}
	return nil
}

// handleAPIError converts an API error into a DeleteError whose message is
// prefix followed by the status line and body of the response.
func (s *appDeleteServiceImpl) handleAPIError(target, prefix string, err error) *DeleteError {
	derr := &DeleteError{
		Code:    "UNKNOWN",
		Target:  target,
		Message: fmt.Sprintf("%s: %s", prefix, err.Error()),
		Cause:   err,
	}
	he, ok := api.AsHTTPError(err)
	if !ok {
		return derr
	}
	derr.StatusCode = he.Status
	derr.Message = fmt.Sprintf("%s: %s", prefix, he.Error())
	switch {
	case he.Status == 404:
		derr.Code = "NOT_FOUND"
	case he.Status == 403:
		derr.Code = "FORBIDDEN"
	case he.Status == 409:
		derr.Code = "CONFLICT"
	case he.Status >= 500:
		derr.Code = "SERVER_ERROR"
	}
	return derr
}
