package install

import (
	"context"

	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/stackabletech/stackable/internal/core/helm"
	"github.com/stackabletech/stackable/internal/core/index"
	"github.com/stackabletech/stackable/internal/core/spec"
)

const (
	DefaultOperatorNamespace = "stackable-operators"
	DefaultProductNamespace  = "default"
)

// Capacity is the free allocatable capacity of a cluster.
type Capacity struct {
	CPU    resource.Quantity
	Memory resource.Quantity
}

type Cluster interface {
	NamespaceExists(ctx context.Context, namespace string) (bool, error)
	CreateNamespace(ctx context.Context, namespace string) error
	Capacity(ctx context.Context) (Capacity, error)
}

// Applier installs one manifest of a stack or demo into namespace.
type Applier interface {
	Apply(ctx context.Context, manifest spec.Manifest, params map[string]string, namespace string) error
}

// ReleaseInstaller is satisfied by *helm.Installer.
type ReleaseInstaller interface {
	Install(ctx context.Context, req helm.ChartRequest) (helm.InstallStatus, error)
	Uninstall(ctx context.Context, name, namespace string) (helm.UninstallStatus, error)
}

// Context carries everything an installation needs besides the unit itself.
// Parameters are raw NAME=VALUE tokens; they are merged with the declared
// parameters of the stack and demo during the prerequisite check.
type Context struct {
	OperatorNamespace    string
	ProductNamespace     string
	StackParameterTokens []string
	DemoParameterTokens  []string
	SkipRelease          bool

	Releases *index.List[*spec.Release]
	Stacks   *index.List[*spec.Stack]
}

func (c Context) withDefaults() Context {
	if c.OperatorNamespace == "" {
		c.OperatorNamespace = DefaultOperatorNamespace
	}
	if c.ProductNamespace == "" {
		c.ProductNamespace = DefaultProductNamespace
	}
	return c
}

// OperatorStatus is the outcome of installing one product operator.
type OperatorStatus struct {
	Product string             `json:"product" yaml:"product"`
	Release string             `json:"release" yaml:"release"`
	Version string             `json:"version" yaml:"version"`
	Status  helm.InstallStatus `json:"-" yaml:"-"`
}

type Result struct {
	Kind      spec.Kind        `json:"kind" yaml:"kind"`
	Name      string           `json:"name" yaml:"name"`
	States    []State          `json:"-" yaml:"-"`
	Operators []OperatorStatus `json:"operators,omitempty" yaml:"operators,omitempty"`
	Warnings  []error          `json:"-" yaml:"-"`
}

func (r *Result) Final() State {
	if len(r.States) == 0 {
		return Created
	}
	return r.States[len(r.States)-1]
}
