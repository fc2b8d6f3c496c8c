package install

import (
	"errors"
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/stackabletech/stackable/internal/core/spec"
)

var ErrPermissionDenied = errors.New("permission denied")

// UnsupportedNamespaceError names the stack or demo whose supported
// namespaces exclude the requested one.
type UnsupportedNamespaceError struct {
	Kind      spec.Kind
	Name      string
	Requested string
	Supported []string
}

func (e *UnsupportedNamespaceError) Error() string {
	msg := fmt.Sprintf("unsupported namespace %q, supported namespaces are: %s",
		e.Requested, strings.Join(e.Supported, ", "))
	if e.Name == "" {
		return msg
	}
	return fmt.Sprintf("%s %q: %s", e.Kind, e.Name, msg)
}

// NoSuchStackError reports an unknown stack together with the stacks that
// are available.
type NoSuchStackError struct {
	Name      string
	Available []string
}

func (e *NoSuchStackError) Error() string {
	return notFound("stack", e.Name, e.Available)
}

type NoSuchReleaseError struct {
	Name      string
	Available []string
}

func (e *NoSuchReleaseError) Error() string {
	return notFound("release", e.Name, e.Available)
}

type NoSuchDemoError struct {
	Name      string
	Available []string
}

func (e *NoSuchDemoError) Error() string {
	return notFound("demo", e.Name, e.Available)
}

func notFound(kind, name string, available []string) string {
	if len(available) == 0 {
		return fmt.Sprintf("no %s with name %q, no %ss are available", kind, name, kind)
	}
	return fmt.Sprintf("no %s with name %q, available %ss are: %s",
		kind, name, kind, strings.Join(available, ", "))
}

// NamespaceError reports a namespace that could not be checked or created.
type NamespaceError struct {
	Namespace string
	Err       error
}

func (e *NamespaceError) Error() string {
	return fmt.Sprintf("failed to create namespace %q: %v", e.Namespace, e.Err)
}

func (e *NamespaceError) Unwrap() error { return e.Err }

// ResourceShortfallError is a soft failure: the cluster has less free
// capacity than a stack or demo requests.
type ResourceShortfallError struct {
	Unit      string
	Resource  string
	Requested resource.Quantity
	Available resource.Quantity
}

func (e *ResourceShortfallError) Error() string {
	return fmt.Sprintf("the %s requires %s of %s but the cluster only has %s available",
		e.Unit, e.Requested.String(), e.Resource, e.Available.String())
}

// ManifestError wraps a failure to apply one manifest.
type ManifestError struct {
	Location string
	Err      error
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("failed to install manifest %s: %v", e.Location, e.Err)
}

func (e *ManifestError) Unwrap() error { return e.Err }
