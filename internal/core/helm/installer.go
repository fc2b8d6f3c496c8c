package helm

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/go-logr/logr"
)

type InstallStatus int

const (
	Installed InstallStatus = iota
	AlreadyInstalledUnspecified
	AlreadyInstalledWithVersion
)

func (s InstallStatus) String() string {
	switch s {
	case AlreadyInstalledUnspecified:
		return "already installed (no version requested)"
	case AlreadyInstalledWithVersion:
		return "already installed"
	default:
		return "installed"
	}
}

type UninstallStatus int

const (
	NotInstalled UninstallStatus = iota
	Uninstalled
)

func (s UninstallStatus) String() string {
	if s == Uninstalled {
		return "uninstalled"
	}
	return "not installed"
}

// ReleaseAlreadyInstalledError reports a release present with a different
// version than requested. Nothing is changed in that case.
type ReleaseAlreadyInstalledError struct {
	Name             string
	Namespace        string
	CurrentVersion   string
	RequestedVersion string
}

func (e *ReleaseAlreadyInstalledError) Error() string {
	return fmt.Sprintf("release %s is already installed in namespace %s with version %s, requested version %s; uninstall it first",
		e.Name, e.Namespace, e.CurrentVersion, e.RequestedVersion)
}

// Installer makes installs idempotent on top of a Client.
type Installer struct {
	client Client
	log    logr.Logger
}

func NewInstaller(client Client, log logr.Logger) *Installer {
	return &Installer{client: client, log: log}
}

func (i *Installer) Client() Client {
	return i.client
}

func (i *Installer) Install(ctx context.Context, req ChartRequest) (InstallStatus, error) {
	exists, err := i.client.ReleaseExists(ctx, req.ReleaseName, req.Namespace)
	if err != nil {
		return Installed, fmt.Errorf("failed to check release %s: %w", req.ReleaseName, err)
	}

	if exists {
		current, err := i.client.GetRelease(ctx, req.ReleaseName, req.Namespace)
		if err != nil {
			return Installed, fmt.Errorf("failed to get release %s: %w", req.ReleaseName, err)
		}

		if req.Version == "" {
			i.log.Info("release already installed, no version requested", "release", req.ReleaseName,
				"namespace", req.Namespace, "currentVersion", current.Version)
			return AlreadyInstalledUnspecified, nil
		}
		if !VersionsEqual(current.Version, req.Version) {
			return Installed, &ReleaseAlreadyInstalledError{
				Name:             req.ReleaseName,
				Namespace:        req.Namespace,
				CurrentVersion:   current.Version,
				RequestedVersion: req.Version,
			}
		}
		i.log.Info("release already installed", "release", req.ReleaseName,
			"namespace", req.Namespace, "version", current.Version)
		return AlreadyInstalledWithVersion, nil
	}

	i.log.Info("installing release", "release", req.ReleaseName, "chart", req.ChartName,
		"version", req.Version, "namespace", req.Namespace, "repo", req.Repo.URL)
	if err := i.client.InstallRelease(ctx, req); err != nil {
		return Installed, fmt.Errorf("failed to install release %s: %w", req.ReleaseName, err)
	}
	return Installed, nil
}

func (i *Installer) Uninstall(ctx context.Context, name, namespace string) (UninstallStatus, error) {
	exists, err := i.client.ReleaseExists(ctx, name, namespace)
	if err != nil {
		return NotInstalled, fmt.Errorf("failed to check release %s: %w", name, err)
	}
	if !exists {
		return NotInstalled, nil
	}

	if err := i.client.UninstallRelease(ctx, name, namespace); err != nil {
		if errors.Is(err, ErrReleaseNotFound) {
			return NotInstalled, nil
		}
		return NotInstalled, fmt.Errorf("failed to uninstall release %s: %w", name, err)
	}
	i.log.Info("uninstalled release", "release", name, "namespace", namespace)
	return Uninstalled, nil
}

// VersionsEqual compares semantically when both sides are semver versions and
// falls back to exact string comparison otherwise.
func VersionsEqual(a, b string) bool {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return va.Equal(vb)
}
