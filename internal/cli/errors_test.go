package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/stackabletech/stackable/internal/core/fetch"
	"github.com/stackabletech/stackable/internal/core/helm"
	"github.com/stackabletech/stackable/internal/core/install"
	"github.com/stackabletech/stackable/internal/core/params"
)

func TestErrorHint(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "deadline",
			err:  fmt.Errorf("failed to list operators: %w", context.DeadlineExceeded),
			want: "timed out",
		},
		{
			name: "permission denied",
			err:  &install.NamespaceError{Namespace: "demo", Err: fmt.Errorf("%w: forbidden", install.ErrPermissionDenied)},
			want: "missing Kubernetes permissions",
		},
		{
			name: "forbidden",
			err:  apierrors.NewForbidden(schema.GroupResource{Resource: "secrets"}, "x", errors.New("denied")),
			want: "missing Kubernetes permissions",
		},
		{
			name: "unauthorized",
			err:  apierrors.NewUnauthorized("expired"),
			want: "credentials were rejected",
		},
		{
			name: "unsupported namespace",
			err:  &install.UnsupportedNamespaceError{Requested: "other", Supported: []string{"default"}},
			want: "--product-namespace",
		},
		{
			name: "missing stack",
			err:  &install.NoSuchStackError{Name: "x"},
			want: "stackablectl stack list",
		},
		{
			name: "missing release",
			err:  fmt.Errorf("wrapped: %w", &install.NoSuchReleaseError{Name: "x"}),
			want: "stackablectl release list",
		},
		{
			name: "missing demo",
			err:  &install.NoSuchDemoError{Name: "x", Available: []string{"y"}},
			want: "stackablectl demo list",
		},
		{
			name: "invalid parameter",
			err:  &params.InvalidParameterError{Parameter: "foo", Expected: "bar"},
			want: "declared parameters",
		},
		{
			name: "already installed",
			err:  &helm.ReleaseAlreadyInstalledError{Name: "trino-operator", CurrentVersion: "24.7.0", RequestedVersion: "24.11.0"},
			want: "install version 24.7.0",
		},
		{
			name: "remote",
			err:  &fetch.RemoteError{Location: "https://example.com", StatusCode: 500},
			want: "--stale-fallback",
		},
		{
			name: "other",
			err:  errors.New("boom"),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errorHint(tt.err)
			if tt.want == "" {
				if got != "" {
					t.Errorf("expected no hint, got %q", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("expected hint containing %q, got %q", tt.want, got)
			}
		})
	}
}
