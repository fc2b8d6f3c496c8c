package helm

import (
	"context"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/release"
	"helm.sh/helm/v3/pkg/storage"
	"helm.sh/helm/v3/pkg/storage/driver"
	helmtime "helm.sh/helm/v3/pkg/time"
)

func deployedRelease(name, namespace, version string) *release.Release {
	return &release.Release{
		Name:      name,
		Namespace: namespace,
		Version:   1,
		Chart: &chart.Chart{Metadata: &chart.Metadata{
			Name:       name,
			Version:    version,
			AppVersion: version,
			APIVersion: chart.APIVersionV2,
		}},
		Info: &release.Info{
			Status:       release.StatusDeployed,
			LastDeployed: helmtime.Time{Time: time.Date(2024, 11, 18, 0, 0, 0, 0, time.UTC)},
		},
	}
}

func newMemoryClient(t *testing.T, releases ...*release.Release) *SDKClient {
	t.Helper()
	store := storage.Init(driver.NewMemory())
	for _, rel := range releases {
		require.NoError(t, store.Create(rel))
	}

	client := NewSDKClient(cli.New(), logr.Discard())
	client.newConfig = func(string) (*action.Configuration, error) {
		return &action.Configuration{Releases: store}, nil
	}
	return client
}

func TestSDKClientReadsReleases(t *testing.T) {
	client := newMemoryClient(t,
		deployedRelease("commons-operator", "stackable-operators", "24.11.0"),
		deployedRelease("trino-operator", "stackable-operators", "24.7.0"),
	)
	ctx := context.Background()

	exists, err := client.ReleaseExists(ctx, "trino-operator", "stackable-operators")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = client.ReleaseExists(ctx, "hive-operator", "stackable-operators")
	require.NoError(t, err)
	assert.False(t, exists)

	rel, err := client.GetRelease(ctx, "trino-operator", "stackable-operators")
	require.NoError(t, err)
	assert.Equal(t, "24.7.0", rel.Version)
	assert.Equal(t, "deployed", rel.Status)

	_, err = client.GetRelease(ctx, "hive-operator", "stackable-operators")
	assert.ErrorIs(t, err, ErrReleaseNotFound)

	releases, err := client.ListReleases(ctx, "stackable-operators")
	require.NoError(t, err)
	assert.Len(t, releases, 2)
}

func TestSDKClientCachesConfigPerNamespace(t *testing.T) {
	calls := map[string]int{}
	client := NewSDKClient(cli.New(), logr.Discard())
	client.newConfig = func(namespace string) (*action.Configuration, error) {
		calls[namespace]++
		return &action.Configuration{Releases: storage.Init(driver.NewMemory())}, nil
	}

	for _, ns := range []string{"a", "b", "a"} {
		_, err := client.config(ns)
		require.NoError(t, err)
	}
	assert.Equal(t, map[string]int{"a": 1, "b": 1}, calls)
}

func TestFromHelmRelease(t *testing.T) {
	got := fromHelmRelease(deployedRelease("kafka-operator", "ops", "24.11.0"))
	assert.Equal(t, Release{
		Name:         "kafka-operator",
		Namespace:    "ops",
		Chart:        "kafka-operator",
		Version:      "24.11.0",
		AppVersion:   "24.11.0",
		Status:       "deployed",
		LastDeployed: time.Date(2024, 11, 18, 0, 0, 0, 0, time.UTC),
	}, got)
}
