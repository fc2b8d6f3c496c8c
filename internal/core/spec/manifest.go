package spec

type ManifestKind string

const (
	ManifestHelmChart ManifestKind = "helmChart"
	ManifestPlainYAML ManifestKind = "plainYaml"
)

// Manifest references either a templated Helm chart description or a
// templated plain YAML file. Exactly one of the fields is set.
type Manifest struct {
	HelmChart string `yaml:"helmChart,omitempty" json:"helmChart,omitempty" validate:"required_without=PlainYAML,excluded_with=PlainYAML"`
	PlainYAML string `yaml:"plainYaml,omitempty" json:"plainYaml,omitempty" validate:"required_without=HelmChart"`

	Extra map[string]any `yaml:",inline" json:"-"`
}

func (m Manifest) Kind() ManifestKind {
	if m.HelmChart != "" {
		return ManifestHelmChart
	}
	return ManifestPlainYAML
}

func (m Manifest) Location() string {
	if m.HelmChart != "" {
		return m.HelmChart
	}
	return m.PlainYAML
}

// HelmChart is the document a helmChart manifest points to.
type HelmChart struct {
	ReleaseName string         `yaml:"releaseName" json:"releaseName"`
	Name        string         `yaml:"name" json:"name"`
	Repo        HelmChartRepo  `yaml:"repo" json:"repo"`
	Version     string         `yaml:"version" json:"version"`
	Options     map[string]any `yaml:"options,omitempty" json:"options,omitempty"`
}

type HelmChartRepo struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}
