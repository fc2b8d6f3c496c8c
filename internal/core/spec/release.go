package spec

import (
	"sort"

	"github.com/samber/lo"
)

// Release pins one operator version per product.
type Release struct {
	ReleaseDate string             `yaml:"releaseDate,omitempty" json:"releaseDate,omitempty"`
	Description string             `yaml:"description" json:"description"`
	Products    map[string]Product `yaml:"products" json:"products" validate:"dive"`

	Extra map[string]any `yaml:",inline" json:"-"`
}

type Product struct {
	OperatorVersion string `yaml:"operatorVersion" json:"operatorVersion" validate:"required"`

	Extra map[string]any `yaml:",inline" json:"-"`
}

func (r *Release) Kind() Kind      { return KindRelease }
func (r *Release) Summary() string { return r.Description }
func (r *Release) isSpec()         {}

// ProductNames returns the product names sorted alphabetically.
func (r *Release) ProductNames() []string {
	names := lo.Keys(r.Products)
	sort.Strings(names)
	return names
}

// FilterProducts applies include and exclude lists. An empty include list
// keeps every product.
func (r *Release) FilterProducts(include, exclude []string) []string {
	return lo.Filter(r.ProductNames(), func(name string, _ int) bool {
		if len(include) > 0 && !lo.Contains(include, name) {
			return false
		}
		return !lo.Contains(exclude, name)
	})
}
