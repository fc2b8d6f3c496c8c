package helm

import (
	"context"
	"errors"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	releases   map[string]Release
	installs   []ChartRequest
	uninstalls []string
	existsErr  error
	installErr error
}

func newFakeClient(releases ...Release) *fakeClient {
	c := &fakeClient{releases: map[string]Release{}}
	for _, r := range releases {
		c.releases[r.Namespace+"/"+r.Name] = r
	}
	return c
}

func (c *fakeClient) ReleaseExists(_ context.Context, name, namespace string) (bool, error) {
	if c.existsErr != nil {
		return false, c.existsErr
	}
	_, ok := c.releases[namespace+"/"+name]
	return ok, nil
}

func (c *fakeClient) GetRelease(_ context.Context, name, namespace string) (*Release, error) {
	r, ok := c.releases[namespace+"/"+name]
	if !ok {
		return nil, ErrReleaseNotFound
	}
	return &r, nil
}

func (c *fakeClient) InstallRelease(_ context.Context, req ChartRequest) error {
	c.installs = append(c.installs, req)
	if c.installErr != nil {
		return c.installErr
	}
	c.releases[req.Namespace+"/"+req.ReleaseName] = Release{Name: req.ReleaseName, Namespace: req.Namespace, Version: req.Version}
	return nil
}

func (c *fakeClient) UninstallRelease(_ context.Context, name, namespace string) error {
	c.uninstalls = append(c.uninstalls, name)
	delete(c.releases, namespace+"/"+name)
	return nil
}

func (c *fakeClient) ListReleases(_ context.Context, namespace string) ([]Release, error) {
	var out []Release
	for _, r := range c.releases {
		if r.Namespace == namespace {
			out = append(out, r)
		}
	}
	return out, nil
}

func TestInstall(t *testing.T) {
	installed := Release{Name: "trino-operator", Namespace: "ops", Version: "24.11.0"}

	tests := []struct {
		name         string
		existing     []Release
		version      string
		wantStatus   InstallStatus
		wantConflict bool
		wantInstalls int
	}{
		{name: "not installed", version: "24.11.0", wantStatus: Installed, wantInstalls: 1},
		{name: "installed without requested version", existing: []Release{installed}, wantStatus: AlreadyInstalledUnspecified},
		{name: "installed with same version", existing: []Release{installed}, version: "24.11.0", wantStatus: AlreadyInstalledWithVersion},
		{name: "installed with semantically equal version", existing: []Release{installed}, version: "v24.11.0", wantStatus: AlreadyInstalledWithVersion},
		{name: "installed with different version", existing: []Release{installed}, version: "24.7.0", wantConflict: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newFakeClient(tt.existing...)
			installer := NewInstaller(client, logr.Discard())

			status, err := installer.Install(context.Background(), ChartRequest{
				ReleaseName: "trino-operator",
				ChartName:   "trino-operator",
				Version:     tt.version,
				Namespace:   "ops",
			})

			assert.Len(t, client.installs, tt.wantInstalls)
			if tt.wantConflict {
				var conflict *ReleaseAlreadyInstalledError
				require.ErrorAs(t, err, &conflict)
				assert.Equal(t, "24.11.0", conflict.CurrentVersion)
				assert.Equal(t, tt.version, conflict.RequestedVersion)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestInstallIsIdempotent(t *testing.T) {
	client := newFakeClient()
	installer := NewInstaller(client, logr.Discard())
	req := ChartRequest{ReleaseName: "commons-operator", Version: "24.11.0", Namespace: "ops"}

	first, err := installer.Install(context.Background(), req)
	require.NoError(t, err)
	second, err := installer.Install(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, Installed, first)
	assert.Equal(t, AlreadyInstalledWithVersion, second)
	assert.Len(t, client.installs, 1)
}

func TestInstallPropagatesBackendErrors(t *testing.T) {
	backendErr := errors.New("cluster unreachable")

	client := newFakeClient()
	client.existsErr = backendErr
	_, err := NewInstaller(client, logr.Discard()).Install(context.Background(), ChartRequest{ReleaseName: "x"})
	assert.ErrorIs(t, err, backendErr)
	assert.Empty(t, client.installs)

	client = newFakeClient()
	client.installErr = backendErr
	_, err = NewInstaller(client, logr.Discard()).Install(context.Background(), ChartRequest{ReleaseName: "x"})
	assert.ErrorIs(t, err, backendErr)
}

func TestUninstall(t *testing.T) {
	client := newFakeClient(Release{Name: "hive-operator", Namespace: "ops", Version: "24.11.0"})
	installer := NewInstaller(client, logr.Discard())

	status, err := installer.Uninstall(context.Background(), "hive-operator", "ops")
	require.NoError(t, err)
	assert.Equal(t, Uninstalled, status)

	status, err = installer.Uninstall(context.Background(), "hive-operator", "ops")
	require.NoError(t, err)
	assert.Equal(t, NotInstalled, status)
	assert.Equal(t, []string{"hive-operator"}, client.uninstalls)
}

func TestVersionsEqual(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"24.11.0", "24.11.0", true},
		{"v24.11.0", "24.11.0", true},
		{"24.11", "24.11.0", true},
		{"24.11.0", "24.11.1", false},
		{"0.0.0-dev", "0.0.0-dev", true},
		{"latest", "latest", true},
		{"latest", "24.11.0", false},
		{"not-a-version", "NOT-A-VERSION", false},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, VersionsEqual(tt.a, tt.b))
		})
	}
}
