package appdelete

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/darksworm/kubeportal/pkg/api"
	apperrors "github.com/darksworm/kubeportal/pkg/errors"
)

// MockApplicationService implements a mock for testing
type MockApplicationService struct {
	DeleteFunc           func(ctx context.Context, env, app string) error
	DeleteNamespacesFunc func(ctx context.Context, env, app string, names []string) error

	mu    sync.Mutex
	calls []string
}

func (m *MockApplicationService) DeleteApp(ctx context.Context, env, app string) error {
	m.mu.Lock()
	m.calls = append(m.calls, "app:"+app)
	m.mu.Unlock()
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, env, app)
	}
	return nil
}

func (m *MockApplicationService) DeleteNamespaces(ctx context.Context, env, app string, names []string) error {
	m.mu.Lock()
	m.calls = append(m.calls, "ns:"+app+":"+strings.Join(names, ","))
	m.mu.Unlock()
	if m.DeleteNamespacesFunc != nil {
		return m.DeleteNamespacesFunc(ctx, env, app, names)
	}
	return nil
}

func TestAppDeleteService_ValidateRequests(t *testing.T) {
	service := NewAppDeleteServiceWithAPI(&MockApplicationService{})

	appTests := []struct {
		name    string
		req     AppDeleteRequest
		wantErr string
	}{
		{name: "valid", req: AppDeleteRequest{Env: "prod", Apps: []string{"payments"}}},
		{name: "missing env", req: AppDeleteRequest{Apps: []string{"payments"}}, wantErr: "environment is required"},
		{name: "no apps", req: AppDeleteRequest{Env: "prod"}, wantErr: "Please select at least one application to delete."},
		{name: "empty name", req: AppDeleteRequest{Env: "prod", Apps: []string{""}}, wantErr: "application name is required"},
	}
	for _, tt := range appTests {
		t.Run("apps/"+tt.name, func(t *testing.T) {
			err := service.ValidateAppRequest(tt.req)
			checkErr(t, err, tt.wantErr)
		})
	}

	nsTests := []struct {
		name    string
		req     NamespaceDeleteRequest
		wantErr string
	}{
		{name: "valid", req: NamespaceDeleteRequest{Env: "prod", App: "payments", Namespaces: []string{"ns-a"}}},
		{name: "no app", req: NamespaceDeleteRequest{Env: "prod", Namespaces: []string{"ns-a"}}, wantErr: "No application selected."},
		{name: "no namespaces", req: NamespaceDeleteRequest{Env: "prod", App: "payments"}, wantErr: "Please select at least one namespace to delete."},
	}
	for _, tt := range nsTests {
		t.Run("namespaces/"+tt.name, func(t *testing.T) {
			err := service.ValidateNamespaceRequest(tt.req)
			checkErr(t, err, tt.wantErr)
		})
	}
}

func checkErr(t *testing.T, err error, want string) {
	t.Helper()
	if want == "" {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return
	}
	if err == nil || err.Error() != want {
		t.Fatalf("error = %v, want %q", err, want)
	}
	if pe, ok := apperrors.As(err); !ok || pe.Category != apperrors.ErrorValidation {
		t.Errorf("expected validation error, got %#v", err)
	}
}

func TestDeleteApps_AllIssuedConcurrently(t *testing.T) {
	var inFlight, peak int32
	release := make(chan struct{})
	mock := &MockApplicationService{
		DeleteFunc: func(ctx context.Context, env, app string) error {
			n := atomic.AddInt32(&inFlight, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			if n == 3 {
				close(release)
			}
			select {
			case <-release:
			case <-time.After(2 * time.Second):
			}
			atomic.AddInt32(&inFlight, -1)
			return nil
		},
	}
	service := NewAppDeleteServiceWithAPI(mock)

	err := service.DeleteApps(context.Background(), AppDeleteRequest{Env: "prod", Apps: []string{"a", "b", "c"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if peak != 3 {
		t.Errorf("peak concurrency = %d, want 3", peak)
	}
	if len(mock.calls) != 3 {
		t.Errorf("calls = %v", mock.calls)
	}
}

func TestDeleteApps_FailureMessage(t *testing.T) {
	mock := &MockApplicationService{
		DeleteFunc: func(ctx context.Context, env, app string) error {
			if app == "billing" {
				return &api.HTTPError{Status: 404, StatusText: "Not Found", Body: `{"detail":"missing"}`}
			}
			return nil
		},
	}
	service := NewAppDeleteServiceWithAPI(mock)

	err := service.DeleteApps(context.Background(), AppDeleteRequest{Env: "prod", Apps: []string{"payments", "billing"}})
	if err == nil {
		t.Fatal("expected error")
	}
	want := `Failed to delete billing: 404 Not Found: {"detail":"missing"}`
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
	var derr *DeleteError
	if !errors.As(err, &derr) || derr.Code != "NOT_FOUND" || derr.StatusCode != 404 || derr.Target != "billing" {
		t.Errorf("delete error = %#v", derr)
	}
}

func TestDeleteApps_FailureLetsOthersFinish(t *testing.T) {
	billingFailed := make(chan struct{})
	var paymentsCtxErr error
	var paymentsDone atomic.Bool
	mock := &MockApplicationService{
		DeleteFunc: func(ctx context.Context, env, app string) error {
			if app == "billing" {
				close(billingFailed)
				return &api.HTTPError{Status: 404, StatusText: "Not Found", Body: "gone"}
			}
			<-billingFailed
			time.Sleep(20 * time.Millisecond)
			paymentsCtxErr = ctx.Err()
			paymentsDone.Store(true)
			return nil
		},
	}
	service := NewAppDeleteServiceWithAPI(mock)

	err := service.DeleteApps(context.Background(), AppDeleteRequest{Env: "prod", Apps: []string{"payments", "billing"}})
	if err == nil || err.Error() != "Failed to delete billing: 404 Not Found: gone" {
		t.Fatalf("error = %v", err)
	}
	if !paymentsDone.Load() {
		t.Error("payments delete did not finish before DeleteApps returned")
	}
	if paymentsCtxErr != nil {
		t.Errorf("payments delete saw ctx err %v after billing failed", paymentsCtxErr)
	}
}

func TestDeleteNamespaces_SingleCall(t *testing.T) {
	mock := &MockApplicationService{}
	service := NewAppDeleteServiceWithAPI(mock)

	err := service.DeleteNamespaces(context.Background(), NamespaceDeleteRequest{
		Env: "prod", App: "payments", Namespaces: []string{"ns-a", "ns-b"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mock.calls) != 1 || mock.calls[0] != "ns:payments:ns-a,ns-b" {
		t.Errorf("calls = %v", mock.calls)
	}
}

func TestHandleAPIError(t *testing.T) {
	s := &appDeleteServiceImpl{}
	tests := []struct {
		err      error
		wantCode string
		wantMsg  string
	}{
		{
			err:      &api.HTTPError{Status: 500, StatusText: "Internal Server Error", Body: "boom"},
			wantCode: "SERVER_ERROR",
			wantMsg:  "Failed to delete namespaces: 500 Internal Server Error: boom",
		},
		{
			err:      fmt.Errorf("wrapped: %w", &api.HTTPError{Status: 403, StatusText: "Forbidden", Body: "no"}),
			wantCode: "FORBIDDEN",
			wantMsg:  "Failed to delete namespaces: 403 Forbidden: no",
		},
		{
			err:      &api.HTTPError{Status: 409, StatusText: "Conflict", Body: "busy"},
			wantCode: "CONFLICT",
			wantMsg:  "Failed to delete namespaces: 409 Conflict: busy",
		},
		{
			err:      errors.New("connection refused"),
			wantCode: "UNKNOWN",
			wantMsg:  "Failed to delete namespaces: connection refused",
		},
	}
	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			got := s.handleAPIError("payments", "Failed to delete namespaces", tt.err)
			if got.Code != tt.wantCode || got.Message != tt.wantMsg {
				t.Errorf("got %s %q", got.Code, got.Message)
			}
			if !errors.Is(got, tt.err) {
				t.Error("cause not kept in chain")
			}
		})
	}
}

func TestWithConcurrency(t *testing.T) {
	var inFlight, peak int32
	mock := &MockApplicationService{
		DeleteFunc: func(ctx context.Context, env, app string) error {
			n := atomic.AddInt32(&inFlight, 1)
			if n > atomic.LoadInt32(&peak) {
				atomic.StoreInt32(&peak, n)
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			return nil
		},
	}
	service := WithConcurrency(NewAppDeleteServiceWithAPI(mock), 1)
	if err := service.DeleteApps(context.Background(), AppDeleteRequest{Env: "prod", Apps: []string{"a", "b", "c"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if peak != 1 {
		t.Errorf("peak = %d, want 1", peak)
	}
}
