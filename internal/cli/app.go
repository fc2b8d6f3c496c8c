package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	helmcli "helm.sh/helm/v3/pkg/cli"

	"github.com/stackabletech/stackable/internal/config"
	"github.com/stackabletech/stackable/internal/core/fetch"
	"github.com/stackabletech/stackable/internal/core/helm"
	"github.com/stackabletech/stackable/internal/core/index"
	"github.com/stackabletech/stackable/internal/core/install"
	"github.com/stackabletech/stackable/internal/core/kube"
	"github.com/stackabletech/stackable/internal/core/registry"
	"github.com/stackabletech/stackable/internal/core/spec"
)

type listSet uint8

const (
	withReleases listSet = 1 << iota
	withStacks
	withDemos
)

type specLists struct {
	releases *index.List[*spec.Release]
	stacks   *index.List[*spec.Stack]
	demos    *index.List[*spec.Demo]
}

func newFetcher() (*fetch.Fetcher, error) {
	fetcher, err := fetch.New(settings.Cache,
		fetch.WithLogger(logger.WithName("fetch")),
		fetch.WithOCIPuller(registry.NewClient(logger.WithName("registry"))),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetcher: %w", err)
	}
	return fetcher, nil
}

// loadLists builds the requested lists concurrently. All builds finish before
// it returns.
func loadLists(ctx context.Context, fetcher *fetch.Fetcher, want listSet) (*specLists, error) {
	lists := &specLists{}
	g, ctx := errgroup.WithContext(ctx)

	if want&withReleases != 0 {
		g.Go(func() error {
			l, err := buildList[spec.ReleaseDocument, *spec.Release](ctx, fetcher, settings.ReleaseSources())
			if err != nil {
				return fmt.Errorf("failed to build release list: %w", err)
			}
			lists.releases = l
			return nil
		})
	}
	if want&withStacks != 0 {
		g.Go(func() error {
			l, err := buildList[spec.StackDocument, *spec.Stack](ctx, fetcher, settings.StackSources())
			if err != nil {
				return fmt.Errorf("failed to build stack list: %w", err)
			}
			lists.stacks = l
			return nil
		})
	}
	if want&withDemos != 0 {
		g.Go(func() error {
			l, err := buildList[spec.DemoDocument, *spec.Demo](ctx, fetcher, settings.DemoSources())
			if err != nil {
				return fmt.Errorf("failed to build demo list: %w", err)
			}
			lists.demos = l
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lists, nil
}

func loadListsFor(cmd *cobra.Command, want listSet) (*specLists, error) {
	fetcher, err := newFetcher()
	if err != nil {
		return nil, err
	}
	return loadLists(cmd.Context(), fetcher, want)
}

func buildList[D index.Document[S], S spec.Spec](ctx context.Context, fetcher *fetch.Fetcher, locations []string) (*index.List[S], error) {
	sources, err := fetch.ParseSources(locations)
	if err != nil {
		return nil, err
	}
	return index.Build[D, S](ctx, index.YAMLLoader[D](fetcher), sources)
}

func newHelmClient() *helm.SDKClient {
	helmSettings := helmcli.New()
	if settings.Kubeconfig != "" {
		helmSettings.KubeConfig = settings.Kubeconfig
	}
	if settings.KubeContext != "" {
		helmSettings.KubeContext = settings.KubeContext
	}
	return helm.NewSDKClient(helmSettings, logger.WithName("helm"))
}

func addOperatorNamespaceFlag(cmd *cobra.Command) {
	cmd.Flags().String(config.KeyOperatorNamespace, install.DefaultOperatorNamespace, "Namespace the operators are installed in")
}

func addProductNamespaceFlag(cmd *cobra.Command) {
	cmd.Flags().StringP(config.KeyProductNamespace, "n", install.DefaultProductNamespace, "Namespace the products are installed in")
}

// newManager wires the orchestrator to the cluster, Helm and the state store.
func newManager(fetcher *fetch.Fetcher, opts ...install.Option) (*install.Manager, error) {
	cluster, err := kube.New(settings.Kubeconfig, settings.KubeContext, logger.WithName("kube"))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes client: %w", err)
	}

	installer := helm.NewInstaller(newHelmClient(), logger.WithName("helm"))
	applier := install.NewManifestApplier(fetcher, installer, cluster, logger.WithName("manifests"))

	opts = append([]install.Option{
		install.WithLogger(logger.WithName("install")),
		install.WithStore(install.NewStore(settings.StateDir)),
	}, opts...)
	return install.NewManager(cluster, installer, applier, opts...), nil
}
