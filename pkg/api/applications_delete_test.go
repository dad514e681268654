package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/darksworm/kubeportal/pkg/errors"
	"github.com/darksworm/kubeportal/pkg/model"
)

func TestDeleteApp_SendsTokenAndEnv(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("Expected DELETE request, got %s", r.Method)
		}
		if r.URL.Path != "/api/apps/payments api" {
			t.Errorf("Expected escaped app path, got %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("env"); got != "prod" {
			t.Errorf("Expected env=prod, got %s", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(`{"detail":"Deleted"}`))
	}))
	defer server.Close()

	svc := NewApplicationService(&model.Server{BaseURL: server.URL, Token: "test-token"})
	if err := svc.DeleteApp(context.Background(), "prod", "payments api"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
}

func TestDeleteApp_EmptyResponseIsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	svc := NewApplicationService(&model.Server{BaseURL: server.URL})
	if err := svc.DeleteApp(context.Background(), "prod", "payments"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
}

func TestDeleteApp_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		category apperrors.ErrorCategory
		want     string
	}{
		{"forbidden", http.StatusForbidden, "not an owner", apperrors.ErrorPermission, "403 Forbidden: not an owner"},
		{"conflict", http.StatusConflict, "namespaces still attached", apperrors.ErrorValidation, "409 Conflict: namespaces still attached"},
		{"not found", http.StatusNotFound, "no such app", apperrors.ErrorAPI, "404 Not Found: no such app"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			svc := NewApplicationService(&model.Server{BaseURL: server.URL})
			err := svc.DeleteApp(context.Background(), "prod", "payments")
			if err == nil {
				t.Fatal("Expected error")
			}
			if err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.want)
			}
			pe, ok := apperrors.As(err)
			if !ok || pe.Category != tt.category {
				t.Errorf("category = %v, want %s", pe, tt.category)
			}
		})
	}
}

func TestDeleteNamespaces_JoinsNames(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/apps/payments/namespaces" {
			t.Errorf("path = %s", r.URL.Path)
		}
		got = r.URL.Query().Get("namespaces")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	svc := NewApplicationService(&model.Server{BaseURL: server.URL})
	if err := svc.DeleteNamespaces(context.Background(), "prod", "payments", []string{"payments-dev", "payments-qa"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got != "payments-dev,payments-qa" {
		t.Errorf("namespaces = %q", got)
	}
}
