package spec

import (
	"github.com/samber/lo"

	"github.com/stackabletech/stackable/internal/core/params"
)

// Stack combines a release with manifests to form a reusable platform baseline.
type Stack struct {
	Description         string             `yaml:"description" json:"description"`
	Documentation       string             `yaml:"documentation,omitempty" json:"documentation,omitempty"`
	Release             string             `yaml:"stackableRelease" json:"stackableRelease" validate:"required"`
	Operators           []string           `yaml:"stackableOperators,omitempty" json:"stackableOperators,omitempty"`
	Labels              []string           `yaml:"labels,omitempty" json:"labels,omitempty"`
	SupportedNamespaces []string           `yaml:"supportedNamespaces,omitempty" json:"supportedNamespaces,omitempty"`
	Manifests           []Manifest         `yaml:"manifests,omitempty" json:"manifests,omitempty" validate:"dive"`
	ResourceRequests    *ResourceRequests  `yaml:"resourceRequests,omitempty" json:"resourceRequests,omitempty"`
	Parameters          []params.Parameter `yaml:"parameters,omitempty" json:"parameters,omitempty" validate:"dive"`

	Extra map[string]any `yaml:",inline" json:"-"`
}

func (s *Stack) Kind() Kind      { return KindStack }
func (s *Stack) Summary() string { return s.Description }
func (s *Stack) isSpec()         {}

func (s *Stack) SupportsNamespace(namespace string) bool {
	return supportsNamespace(s.SupportedNamespaces, namespace)
}

func supportsNamespace(supported []string, namespace string) bool {
	return len(supported) == 0 || lo.Contains(supported, namespace)
}

func (s *Stack) LabelSet() []string { return s.Labels }
