package appdelete

import "context"

// AppDeleteRequest deletes whole applications of one environment.
type AppDeleteRequest struct {
	Env  string
	Apps []string
}

// NamespaceDeleteRequest deletes namespaces of one application.
type NamespaceDeleteRequest struct {
	Env        string
	App        string
	Namespaces []string
}

// DeleteError is a failed delete call with the portal's answer attached.
type DeleteError struct {
	Code       string // NOT_FOUND, FORBIDDEN, CONFLICT, SERVER_ERROR, UNKNOWN
	Target     string
	Message    string
	StatusCode int
	Cause      error
}

func (e *DeleteError) Error() string { return e.Message }

func (e *DeleteError) Unwrap() error { return e.Cause }

// AppDeleteService deletes apps and namespaces through the portal API.
type AppDeleteService interface {
	// DeleteApps issues one delete per app concurrently. The first failure
	// is returned as a *DeleteError.
	DeleteApps(ctx context.Context, req AppDeleteRequest) error

	// DeleteNamespaces deletes every namespace in a single call.
	DeleteNamespaces(ctx context.Context, req NamespaceDeleteRequest) error

	ValidateAppRequest(req AppDeleteRequest) error
	ValidateNamespaceRequest(req NamespaceDeleteRequest) error
}
