package spec

import "github.com/stackabletech/stackable/internal/core/params"

// Demo instantiates a stack and adds example manifests on top of it.
type Demo struct {
	Description         string             `yaml:"description" json:"description"`
	Documentation       string             `yaml:"documentation,omitempty" json:"documentation,omitempty"`
	Stack               string             `yaml:"stackableStack" json:"stackableStack" validate:"required"`
	Labels              []string           `yaml:"labels,omitempty" json:"labels,omitempty"`
	SupportedNamespaces []string           `yaml:"supportedNamespaces,omitempty" json:"supportedNamespaces,omitempty"`
	Manifests           []Manifest         `yaml:"manifests,omitempty" json:"manifests,omitempty" validate:"dive"`
	ResourceRequests    *ResourceRequests  `yaml:"resourceRequests,omitempty" json:"resourceRequests,omitempty"`
	Parameters          []params.Parameter `yaml:"parameters,omitempty" json:"parameters,omitempty" validate:"dive"`

	Extra map[string]any `yaml:",inline" json:"-"`
}

func (d *Demo) Kind() Kind      { return KindDemo }
func (d *Demo) Summary() string { return d.Description }
func (d *Demo) isSpec()         {}

func (d *Demo) SupportsNamespace(namespace string) bool {
	return supportsNamespace(d.SupportedNamespaces, namespace)
}

func (d *Demo) LabelSet() []string { return d.Labels }
