package spec

import (
	"fmt"

	"k8s.io/apimachinery/pkg/api/resource"
)

// ResourceRequests are the minimum cluster resources a stack or demo needs.
type ResourceRequests struct {
	CPU    string `yaml:"cpu" json:"cpu" validate:"required"`
	Memory string `yaml:"memory" json:"memory" validate:"required"`
	PVC    string `yaml:"pvc,omitempty" json:"pvc,omitempty"`

	Extra map[string]any `yaml:",inline" json:"-"`
}

// Quantities parses the CPU and memory requests.
func (r ResourceRequests) Quantities() (cpu, memory resource.Quantity, err error) {
	cpu, err = resource.ParseQuantity(r.CPU)
	if err != nil {
		return cpu, memory, fmt.Errorf("invalid cpu request %q: %w", r.CPU, err)
	}
	memory, err = resource.ParseQuantity(r.Memory)
	if err != nil {
		return cpu, memory, fmt.Errorf("invalid memory request %q: %w", r.Memory, err)
	}
	return cpu, memory, nil
}
