package helm

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/lo"
	"helm.sh/helm/v3/pkg/repo"
	"sigs.k8s.io/yaml"

	"github.com/stackabletech/stackable/internal/core/fetch"
)

const (
	indexFile  = "index.yaml"
	devVersion = "0.0.0-dev"
)

type Repository struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

var (
	StableRepository = Repository{Name: "stackable-stable", URL: "https://repo.stackable.tech/repository/helm-stable/"}
	TestRepository   = Repository{Name: "stackable-test", URL: "https://repo.stackable.tech/repository/helm-test/"}
	DevRepository    = Repository{Name: "stackable-dev", URL: "https://repo.stackable.tech/repository/helm-dev/"}
)

func Repositories() []Repository {
	return []Repository{StableRepository, TestRepository, DevRepository}
}

// RepositoryForVersion picks the repository an operator version is published
// in: 0.0.0-dev lives in dev, PR builds in test and everything else in stable.
func RepositoryForVersion(version string) Repository {
	if version == devVersion {
		return DevRepository
	}
	v, err := semver.NewVersion(version)
	if err == nil && strings.Contains(v.Prerelease(), "pr") {
		return TestRepository
	}
	return StableRepository
}

// OperatorChartName returns the chart and release name for a product operator.
func OperatorChartName(product string) string {
	return product + "-operator"
}

// OperatorRequest builds the chart request for one product operator.
func OperatorRequest(product, version, namespace string) ChartRequest {
	name := OperatorChartName(product)
	return ChartRequest{
		ReleaseName: name,
		ChartName:   name,
		Repo:        RepositoryForVersion(version),
		Version:     version,
		Namespace:   namespace,
	}
}

type Fetcher interface {
	Fetch(ctx context.Context, source fetch.Source) ([]byte, error)
}

// FetchIndex retrieves and parses the index.yaml of a chart repository.
func FetchIndex(ctx context.Context, fetcher Fetcher, repository Repository) (*repo.IndexFile, error) {
	base, err := url.Parse(repository.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid repository URL %s: %w", repository.URL, err)
	}
	indexURL := base.JoinPath(indexFile).String()

	data, err := fetcher.Fetch(ctx, fetch.Source{Kind: fetch.SourceURL, Location: indexURL})
	if err != nil {
		return nil, err
	}

	idx := &repo.IndexFile{}
	if err := yaml.Unmarshal(data, idx); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", indexURL, err)
	}
	idx.SortEntries()
	return idx, nil
}

// ChartVersions lists the versions of chart in idx, newest first.
func ChartVersions(idx *repo.IndexFile, chart string) []string {
	return lo.Map(idx.Entries[chart], func(v *repo.ChartVersion, _ int) string {
		return v.Version
	})
}
