package install

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/samber/lo"

	"github.com/stackabletech/stackable/internal/core/fetch"
	"github.com/stackabletech/stackable/internal/core/helm"
	"github.com/stackabletech/stackable/internal/core/spec"
	"github.com/stackabletech/stackable/internal/core/template"
)

// NamespaceParameter is always available to manifest templates and holds the
// namespace the manifest is installed into.
const NamespaceParameter = "NAMESPACE"

// ObjectApplier applies a rendered multi-document YAML manifest.
type ObjectApplier interface {
	ApplyManifest(ctx context.Context, manifest, namespace string) error
}

// ManifestApplier renders manifests and hands Helm charts to the release
// installer and plain YAML to the object applier.
type ManifestApplier struct {
	fetcher  template.Fetcher
	releases ReleaseInstaller
	objects  ObjectApplier
	log      logr.Logger
}

func NewManifestApplier(fetcher template.Fetcher, releases ReleaseInstaller, objects ObjectApplier, log logr.Logger) *ManifestApplier {
	return &ManifestApplier{fetcher: fetcher, releases: releases, objects: objects, log: log}
}

func (a *ManifestApplier) Apply(ctx context.Context, manifest spec.Manifest, params map[string]string, namespace string) error {
	source, err := fetch.ParseSource(manifest.Location())
	if err != nil {
		return err
	}
	values := lo.Assign(map[string]string{NamespaceParameter: namespace}, params)

	switch manifest.Kind() {
	case spec.ManifestHelmChart:
		return a.applyHelmChart(ctx, source, values, namespace)
	default:
		return a.applyPlainYAML(ctx, source, values, namespace)
	}
}

func (a *ManifestApplier) applyHelmChart(ctx context.Context, source fetch.Source, values map[string]string, namespace string) error {
	chart, err := template.Load[spec.HelmChart](ctx, a.fetcher, source, values)
	if err != nil {
		return err
	}
	if chart.ReleaseName == "" || chart.Name == "" {
		return fmt.Errorf("helm chart manifest %s must set releaseName and name", source)
	}

	status, err := a.releases.Install(ctx, helm.ChartRequest{
		ReleaseName: chart.ReleaseName,
		ChartName:   chart.Name,
		Repo:        helm.Repository{Name: chart.Repo.Name, URL: chart.Repo.URL},
		Version:     chart.Version,
		Namespace:   namespace,
		Values:      chart.Options,
	})
	if err != nil {
		return err
	}
	a.log.Info("helm chart manifest", "release", chart.ReleaseName, "status", status.String())
	return nil
}

func (a *ManifestApplier) applyPlainYAML(ctx context.Context, source fetch.Source, values map[string]string, namespace string) error {
	if a.objects == nil {
		return fmt.Errorf("no object applier configured for %s", source)
	}
	rendered, err := template.LoadText(ctx, a.fetcher, source, values)
	if err != nil {
		return err
	}
	if err := a.objects.ApplyManifest(ctx, rendered, namespace); err != nil {
		return err
	}
	a.log.Info("applied plain YAML manifest", "source", source.Location)
	return nil
}
