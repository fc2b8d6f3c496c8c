// Package helm installs and removes Helm releases idempotently and knows the
// Stackable chart repositories.
package helm

import (
	"context"
	"errors"
	"time"
)

var ErrReleaseNotFound = errors.New("release not found")

// Release is the installed state of a Helm release.
type Release struct {
	Name         string    `json:"name" yaml:"name"`
	Namespace    string    `json:"namespace" yaml:"namespace"`
	Chart        string    `json:"chart" yaml:"chart"`
	Version      string    `json:"version" yaml:"version"`
	AppVersion   string    `json:"appVersion,omitempty" yaml:"appVersion,omitempty"`
	Status       string    `json:"status" yaml:"status"`
	LastDeployed time.Time `json:"lastDeployed" yaml:"lastDeployed"`
}

// ChartRequest describes one chart installation.
type ChartRequest struct {
	ReleaseName string
	ChartName   string
	Repo        Repository
	Version     string
	Namespace   string
	Values      map[string]any
}

// Client is the package manager backend. Implementations return
// ErrReleaseNotFound from GetRelease when nothing is installed under name.
type Client interface {
	ReleaseExists(ctx context.Context, name, namespace string) (bool, error)
	GetRelease(ctx context.Context, name, namespace string) (*Release, error)
	InstallRelease(ctx context.Context, req ChartRequest) error
	UninstallRelease(ctx context.Context, name, namespace string) error
	ListReleases(ctx context.Context, namespace string) ([]Release, error)
}
