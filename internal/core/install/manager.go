package install

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"

	"github.com/stackabletech/stackable/internal/core/helm"
	"github.com/stackabletech/stackable/internal/core/index"
	"github.com/stackabletech/stackable/internal/core/params"
	"github.com/stackabletech/stackable/internal/core/spec"
)

// Manager drives stack and demo installations through a fixed sequence of
// states. Nothing after a failed step is attempted.
type Manager struct {
	cluster   Cluster
	releases  ReleaseInstaller
	applier   Applier
	records   *Store
	observers []Observer
	log       logr.Logger
}

type Option func(*Manager)

func WithObserver(o Observer) Option {
	return func(m *Manager) { m.observers = append(m.observers, o) }
}

func WithLogger(log logr.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// WithStore records successful installations.
func WithStore(store *Store) Option {
	return func(m *Manager) { m.records = store }
}

func NewManager(cluster Cluster, releases ReleaseInstaller, applier Applier, opts ...Option) *Manager {
	m := &Manager{
		cluster:  cluster,
		releases: releases,
		applier:  applier,
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// plan is the resolved input of one pipeline run.
type plan struct {
	kind      spec.Kind
	name      string
	ic        Context
	supported []string
	requests  *spec.ResourceRequests

	stackName   string
	stack       *spec.Stack
	releaseName string
	release     *spec.Release
	demo        *spec.Demo

	stackParams map[string]string
	demoParams  map[string]string
}

type run struct {
	m      *Manager
	plan   *plan
	state  State
	result *Result
}

func (r *run) transition(to State, err error) {
	t := Transition{Kind: r.plan.kind, Name: r.plan.name, From: r.state, To: to, Err: err}
	r.state = to
	r.result.States = append(r.result.States, to)
	r.m.log.V(1).Info("installation state changed", "kind", string(t.Kind), "name", t.Name,
		"from", t.From.String(), "to", t.To.String())
	for _, o := range r.m.observers {
		o.StateChanged(t)
	}
}

func (r *run) fail(err error) (*Result, error) {
	r.transition(Failed, err)
	return r.result, err
}

// InstallStack installs the release of stack (unless skipped) and then the
// stack manifests.
func (m *Manager) InstallStack(ctx context.Context, name string, stack *spec.Stack, ic Context) (*Result, error) {
	p := &plan{
		kind:      spec.KindStack,
		name:      name,
		ic:        ic.withDefaults(),
		supported: stack.SupportedNamespaces,
		requests:  stack.ResourceRequests,
		stackName: name,
		stack:     stack,
	}
	return m.execute(ctx, p)
}

// InstallDemo installs the stack a demo references followed by the demo
// manifests.
func (m *Manager) InstallDemo(ctx context.Context, name string, demo *spec.Demo, ic Context) (*Result, error) {
	p := &plan{
		kind:      spec.KindDemo,
		name:      name,
		ic:        ic.withDefaults(),
		supported: demo.SupportedNamespaces,
		requests:  demo.ResourceRequests,
		stackName: demo.Stack,
		demo:      demo,
	}
	return m.execute(ctx, p)
}

func (m *Manager) execute(ctx context.Context, p *plan) (*Result, error) {
	r := &run{m: m, plan: p, state: Created, result: &Result{Kind: p.kind, Name: p.name, States: []State{Created}}}

	steps := []func(context.Context, *run) (State, error){
		m.checkPrerequisites,
		m.ensureNamespaces,
		m.installStackRelease,
		m.installStackManifests,
	}
	if p.demo != nil {
		steps = append(steps, m.installDemoManifests)
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return r.fail(err)
		}
		next, err := step(ctx, r)
		if err != nil {
			return r.fail(err)
		}
		r.transition(next, nil)
	}

	if m.records != nil {
		if err := m.records.Save(recordFor(p)); err != nil {
			m.log.Info("failed to record installation", "severity", "warning", "error", err.Error())
		}
	}
	r.transition(Done, nil)
	return r.result, nil
}

func (m *Manager) checkPrerequisites(ctx context.Context, r *run) (State, error) {
	p := r.plan

	if !supportsNamespace(p.supported, p.ic.ProductNamespace) {
		return Failed, &UnsupportedNamespaceError{
			Kind: p.kind, Name: p.name, Requested: p.ic.ProductNamespace, Supported: p.supported,
		}
	}

	if err := m.resolve(p); err != nil {
		return Failed, err
	}

	// A demo installs its stack, so the stack's own requirements apply too.
	if p.demo != nil && !supportsNamespace(p.stack.SupportedNamespaces, p.ic.ProductNamespace) {
		return Failed, &UnsupportedNamespaceError{
			Kind: spec.KindStack, Name: p.stackName, Requested: p.ic.ProductNamespace, Supported: p.stack.SupportedNamespaces,
		}
	}

	warnings, err := m.checkResources(ctx, string(p.kind), p.requests)
	if err != nil {
		return Failed, err
	}
	if p.demo != nil {
		stackWarnings, err := m.checkResources(ctx, string(spec.KindStack), p.stack.ResourceRequests)
		if err != nil {
			return Failed, fmt.Errorf("stack %q: %w", p.stackName, err)
		}
		warnings = append(warnings, stackWarnings...)
	}
	for _, w := range warnings {
		m.log.Info(w.Error(), "severity", "warning", "kind", string(p.kind), "name", p.name)
	}
	r.result.Warnings = append(r.result.Warnings, warnings...)

	return PrerequisitesChecked, nil
}

func supportsNamespace(supported []string, namespace string) bool {
	return len(supported) == 0 || lo.Contains(supported, namespace)
}

// resolve follows demo to stack and stack to release references and merges
// parameters. The release is only required when it will be installed.
func (m *Manager) resolve(p *plan) error {
	if p.stack == nil {
		stack, ok := lookup(p.ic.Stacks, p.stackName)
		if !ok {
			return &NoSuchStackError{Name: p.stackName, Available: names(p.ic.Stacks)}
		}
		p.stack = stack
	}

	if !p.ic.SkipRelease {
		p.releaseName = p.stack.Release
		release, ok := lookup(p.ic.Releases, p.releaseName)
		if !ok {
			return &NoSuchReleaseError{Name: p.releaseName, Available: names(p.ic.Releases)}
		}
		p.release = release
	}

	stackParams, err := params.MergeTokens(p.ic.StackParameterTokens, p.stack.Parameters)
	if err != nil {
		return fmt.Errorf("invalid stack parameters: %w", err)
	}
	p.stackParams = stackParams

	if p.demo != nil {
		demoParams, err := params.MergeTokens(p.ic.DemoParameterTokens, p.demo.Parameters)
		if err != nil {
			return fmt.Errorf("invalid demo parameters: %w", err)
		}
		p.demoParams = demoParams
	}
	return nil
}

func lookup[S spec.Spec](list *index.List[S], name string) (S, bool) {
	if list == nil {
		var zero S
		return zero, false
	}
	return list.Get(name)
}

func names[S spec.Spec](list *index.List[S]) []string {
	if list == nil {
		return nil
	}
	return list.Names()
}

// checkResources returns shortfalls as warnings. Failing to parse the
// requests or to query the cluster is a hard error.
func (m *Manager) checkResources(ctx context.Context, unit string, requests *spec.ResourceRequests) ([]error, error) {
	if requests == nil {
		return nil, nil
	}

	cpu, memory, err := requests.Quantities()
	if err != nil {
		return nil, err
	}

	capacity, err := m.cluster.Capacity(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to determine cluster capacity: %w", err)
	}

	var shortfalls *multierror.Error
	if cpu.Cmp(capacity.CPU) > 0 {
		shortfalls = multierror.Append(shortfalls, &ResourceShortfallError{
			Unit: unit, Resource: "cpu", Requested: cpu, Available: capacity.CPU,
		})
	}
	if memory.Cmp(capacity.Memory) > 0 {
		shortfalls = multierror.Append(shortfalls, &ResourceShortfallError{
			Unit: unit, Resource: "memory", Requested: memory, Available: capacity.Memory,
		})
	}
	if shortfalls == nil {
		return nil, nil
	}
	return shortfalls.Errors, nil
}

func (m *Manager) ensureNamespaces(ctx context.Context, r *run) (State, error) {
	if !r.plan.ic.SkipRelease {
		if err := m.EnsureNamespace(ctx, r.plan.ic.OperatorNamespace); err != nil {
			return Failed, err
		}
	}
	if err := m.EnsureNamespace(ctx, r.plan.ic.ProductNamespace); err != nil {
		return Failed, err
	}
	return NamespacesReady, nil
}

// EnsureNamespace creates namespace unless it already exists.
func (m *Manager) EnsureNamespace(ctx context.Context, namespace string) error {
	exists, err := m.cluster.NamespaceExists(ctx, namespace)
	if err != nil {
		return &NamespaceError{Namespace: namespace, Err: err}
	}
	if exists {
		return nil
	}
	m.log.Info("creating namespace", "namespace", namespace)
	if err := m.cluster.CreateNamespace(ctx, namespace); err != nil {
		return &NamespaceError{Namespace: namespace, Err: err}
	}
	return nil
}

func (m *Manager) installStackRelease(ctx context.Context, r *run) (State, error) {
	if r.plan.ic.SkipRelease {
		m.log.Info("skipping release installation", "stack", r.plan.stackName)
		return ReleaseSkipped, nil
	}

	statuses, err := m.InstallRelease(ctx, r.plan.release, r.plan.ic.OperatorNamespace, r.plan.stack.Operators, nil)
	r.result.Operators = append(r.result.Operators, statuses...)
	if err != nil {
		return Failed, err
	}
	return ReleaseInstalled, nil
}

// InstallRelease installs one operator per selected product of release.
// The first failure stops the installation.
func (m *Manager) InstallRelease(ctx context.Context, release *spec.Release, namespace string, include, exclude []string) ([]OperatorStatus, error) {
	var statuses []OperatorStatus
	for _, product := range release.FilterProducts(include, exclude) {
		if err := ctx.Err(); err != nil {
			return statuses, err
		}
		version := release.Products[product].OperatorVersion
		req := helm.OperatorRequest(product, version, namespace)

		status, err := m.releases.Install(ctx, req)
		if err != nil {
			return statuses, err
		}
		statuses = append(statuses, OperatorStatus{
			Product: product,
			Release: req.ReleaseName,
			Version: version,
			Status:  status,
		})
	}
	return statuses, nil
}

// UninstallRelease removes the operators of the selected products.
func (m *Manager) UninstallRelease(ctx context.Context, release *spec.Release, namespace string, include, exclude []string) (map[string]helm.UninstallStatus, error) {
	statuses := make(map[string]helm.UninstallStatus)
	var errs *multierror.Error
	for _, product := range release.FilterProducts(include, exclude) {
		name := helm.OperatorChartName(product)
		status, err := m.releases.Uninstall(ctx, name, namespace)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		statuses[product] = status
	}
	return statuses, errs.ErrorOrNil()
}

func (m *Manager) installStackManifests(ctx context.Context, r *run) (State, error) {
	if err := m.applyManifests(ctx, r.plan.stack.Manifests, r.plan.stackParams, r.plan.ic.ProductNamespace); err != nil {
		return Failed, err
	}
	return StackManifestsInstalled, nil
}

func (m *Manager) installDemoManifests(ctx context.Context, r *run) (State, error) {
	if err := m.applyManifests(ctx, r.plan.demo.Manifests, r.plan.demoParams, r.plan.ic.ProductNamespace); err != nil {
		return Failed, err
	}
	return DemoManifestsInstalled, nil
}

func (m *Manager) applyManifests(ctx context.Context, manifests []spec.Manifest, values map[string]string, namespace string) error {
	for _, manifest := range manifests {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.applier.Apply(ctx, manifest, values, namespace); err != nil {
			var me *ManifestError
			if errors.As(err, &me) {
				return err
			}
			return &ManifestError{Location: manifest.Location(), Err: err}
		}
	}
	return nil
}
