package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/pflag"
	apierrors "k8s.io/apimachinery/pkg/api/errors"

	"github.com/stackabletech/stackable/internal/core/fetch"
	"github.com/stackabletech/stackable/internal/core/helm"
	"github.com/stackabletech/stackable/internal/core/install"
	"github.com/stackabletech/stackable/internal/core/params"
)

var (
	errorStyle = color.New(color.FgRed, color.Bold).SprintFunc()
	hintLabel  = color.New(color.FgYellow).SprintFunc()
)

func handleError(err error) {
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle("Error:"), err)
	if hint := errorHint(err); hint != "" {
		fmt.Fprintf(os.Stderr, "%s %s\n", hintLabel("Hint:"), hint)
	}
}

func errorHint(err error) string {
	var (
		namespaceErr *install.UnsupportedNamespaceError
		noStack      *install.NoSuchStackError
		noRelease    *install.NoSuchReleaseError
		noDemo       *install.NoSuchDemoError
		paramErr     *params.InvalidParameterError
		alreadyErr   *helm.ReleaseAlreadyInstalledError
		remoteErr    *fetch.RemoteError
	)

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "the operation timed out. Verify network connectivity to the cluster and the spec sources."
	case errors.Is(err, install.ErrPermissionDenied), apierrors.IsForbidden(err):
		return "missing Kubernetes permissions. Creating namespaces and installing operators requires cluster-admin like access."
	case apierrors.IsUnauthorized(err):
		return "kubeconfig credentials were rejected. Run 'kubectl config view' to confirm the active user."
	case errors.As(err, &namespaceErr):
		return "pass a supported namespace with --product-namespace."
	case errors.As(err, &noStack):
		return "run 'stackablectl stack list' to see the available stacks."
	case errors.As(err, &noRelease):
		return "run 'stackablectl release list' to see the available releases."
	case errors.As(err, &noDemo):
		return "run 'stackablectl demo list' to see the available demos."
	case errors.As(err, &paramErr):
		return "run 'stackablectl stack describe' or 'stackablectl demo describe' to see the declared parameters."
	case errors.As(err, &alreadyErr):
		return fmt.Sprintf("uninstall the existing %s release first or install version %s.", alreadyErr.Name, alreadyErr.CurrentVersion)
	case errors.As(err, &remoteErr):
		return "the remote file could not be fetched. Retry, pass --stale-fallback to use an expired cache entry, or point --release-file/--stack-file/--demo-file at a local copy."
	}
	return ""
}
