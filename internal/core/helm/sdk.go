package helm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/samber/lo"
	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/release"
	"helm.sh/helm/v3/pkg/storage/driver"
)

const defaultTimeout = 10 * time.Minute

// SDKClient talks to the cluster through the Helm SDK. Action configurations
// are namespace scoped and created on first use.
type SDKClient struct {
	settings  *cli.EnvSettings
	log       logr.Logger
	newConfig func(namespace string) (*action.Configuration, error)
	loadChart func(req ChartRequest) (*chart.Chart, error)
	wait      bool
	timeout   time.Duration

	mu      sync.Mutex
	configs map[string]*action.Configuration
}

type SDKOption func(*SDKClient)

func WithWait(wait bool, timeout time.Duration) SDKOption {
	return func(c *SDKClient) {
		c.wait = wait
		c.timeout = lo.Ternary(timeout > 0, timeout, defaultTimeout)
	}
}

func NewSDKClient(settings *cli.EnvSettings, log logr.Logger, opts ...SDKOption) *SDKClient {
	c := &SDKClient{
		settings: settings,
		log:      log,
		timeout:  defaultTimeout,
		configs:  make(map[string]*action.Configuration),
	}
	c.newConfig = c.initConfig
	c.loadChart = c.locateChart
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *SDKClient) initConfig(namespace string) (*action.Configuration, error) {
	cfg := new(action.Configuration)
	logFunc := func(format string, v ...interface{}) {
		c.log.V(1).Info(fmt.Sprintf(format, v...), "component", "helm")
	}
	if err := cfg.Init(c.settings.RESTClientGetter(), namespace, os.Getenv("HELM_DRIVER"), logFunc); err != nil {
		return nil, fmt.Errorf("init helm action config: %w", err)
	}
	return cfg, nil
}

func (c *SDKClient) config(namespace string) (*action.Configuration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cfg, ok := c.configs[namespace]; ok {
		return cfg, nil
	}
	cfg, err := c.newConfig(namespace)
	if err != nil {
		return nil, err
	}
	c.configs[namespace] = cfg
	return cfg, nil
}

func (c *SDKClient) locateChart(req ChartRequest) (*chart.Chart, error) {
	pathOptions := action.ChartPathOptions{RepoURL: req.Repo.URL, Version: req.Version}
	chartPath, err := pathOptions.LocateChart(req.ChartName, c.settings)
	if err != nil {
		return nil, fmt.Errorf("locate chart: %w", err)
	}
	chrt, err := loader.Load(chartPath)
	if err != nil {
		return nil, fmt.Errorf("load chart: %w", err)
	}
	return chrt, nil
}

func (c *SDKClient) ReleaseExists(ctx context.Context, name, namespace string) (bool, error) {
	_, err := c.GetRelease(ctx, name, namespace)
	if errors.Is(err, ErrReleaseNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (c *SDKClient) GetRelease(_ context.Context, name, namespace string) (*Release, error) {
	cfg, err := c.config(namespace)
	if err != nil {
		return nil, err
	}

	rel, err := cfg.Releases.Deployed(name)
	if err != nil {
		if errors.Is(err, driver.ErrReleaseNotFound) || errors.Is(err, driver.ErrNoDeployedReleases) {
			return nil, ErrReleaseNotFound
		}
		return nil, fmt.Errorf("get release %s: %w", name, err)
	}
	return lo.ToPtr(fromHelmRelease(rel)), nil
}

func (c *SDKClient) InstallRelease(ctx context.Context, req ChartRequest) error {
	cfg, err := c.config(req.Namespace)
	if err != nil {
		return err
	}

	chrt, err := c.loadChart(req)
	if err != nil {
		return err
	}

	install := action.NewInstall(cfg)
	install.ReleaseName = req.ReleaseName
	install.Namespace = req.Namespace
	install.Version = req.Version
	install.Wait = c.wait
	install.Timeout = c.timeout

	if _, err := install.RunWithContext(ctx, chrt, req.Values); err != nil {
		return fmt.Errorf("helm install: %w", err)
	}
	return nil
}

func (c *SDKClient) UninstallRelease(_ context.Context, name, namespace string) error {
	cfg, err := c.config(namespace)
	if err != nil {
		return err
	}

	uninstall := action.NewUninstall(cfg)
	uninstall.Wait = c.wait
	uninstall.Timeout = c.timeout
	if _, err := uninstall.Run(name); err != nil {
		if errors.Is(err, driver.ErrReleaseNotFound) {
			return ErrReleaseNotFound
		}
		return fmt.Errorf("helm uninstall: %w", err)
	}
	return nil
}

func (c *SDKClient) ListReleases(_ context.Context, namespace string) ([]Release, error) {
	cfg, err := c.config(namespace)
	if err != nil {
		return nil, err
	}

	releases, err := cfg.Releases.ListDeployed()
	if err != nil {
		return nil, fmt.Errorf("list releases: %w", err)
	}
	return lo.Map(releases, func(rel *release.Release, _ int) Release {
		return fromHelmRelease(rel)
	}), nil
}

func fromHelmRelease(rel *release.Release) Release {
	out := Release{
		Name:      rel.Name,
		Namespace: rel.Namespace,
	}
	if rel.Chart != nil && rel.Chart.Metadata != nil {
		out.Chart = rel.Chart.Metadata.Name
		out.Version = rel.Chart.Metadata.Version
		out.AppVersion = rel.Chart.Metadata.AppVersion
	}
	if rel.Info != nil {
		out.Status = rel.Info.Status.String()
		out.LastDeployed = rel.Info.LastDeployed.Time
	}
	return out
}
