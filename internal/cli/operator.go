package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"helm.sh/helm/v3/pkg/release"

	"github.com/stackabletech/stackable/internal/core/helm"
)

var (
	statusDeployed = color.New(color.FgGreen).SprintFunc()
	statusFailed   = color.New(color.FgRed).SprintFunc()
	statusPending  = color.New(color.FgYellow).SprintFunc()
)

var operatorCmd = &cobra.Command{
	Use:     "operator",
	Aliases: []string{"op"},
	Short:   "Interact with single operator instead of the full platform",
}

var operatorInstalledCmd = &cobra.Command{
	Use:     "installed",
	Aliases: []string{"i"},
	Short:   "List installed operators",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		releases, err := newHelmClient().ListReleases(cmd.Context(), settings.OperatorNamespace)
		if err != nil {
			return fmt.Errorf("failed to list operators: %w", err)
		}
		operators := lo.Filter(releases, func(r helm.Release, _ int) bool {
			return strings.HasSuffix(r.Name, "-operator")
		})

		if format, _ := outputFormat(cmd); format == outputPlain && len(operators) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No operators installed in namespace %s\n", settings.OperatorNamespace)
			return nil
		}

		return render(cmd, operators, func(w io.Writer) error {
			if err := writeRow(w, "OPERATOR", "VERSION", "NAMESPACE", "STATUS", "LAST UPDATED"); err != nil {
				return err
			}
			for _, r := range operators {
				if err := writeRow(w,
					strings.TrimSuffix(r.Name, "-operator"),
					r.Version,
					r.Namespace,
					colorStatus(r.Status),
					r.LastDeployed.Format("2006-01-02 15:04:05"),
				); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

var operatorVersionsCmd = &cobra.Command{
	Use:   "versions PRODUCT",
	Short: "List the available versions of a product operator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		product := strings.ToLower(args[0])
		if err := validateName(product); err != nil {
			return err
		}
		repoNames, err := cmd.Flags().GetStringSlice("repo")
		if err != nil {
			return fmt.Errorf("failed to get repo flag: %w", err)
		}
		repositories, err := selectRepositories(repoNames)
		if err != nil {
			return err
		}

		fetcher, err := newFetcher()
		if err != nil {
			return err
		}
		versions := make(map[string][]string, len(repositories))
		for _, repository := range repositories {
			idx, err := helm.FetchIndex(cmd.Context(), fetcher, repository)
			if err != nil {
				return fmt.Errorf("failed to fetch index of %s: %w", repository.Name, err)
			}
			versions[repository.Name] = helm.ChartVersions(idx, helm.OperatorChartName(product))
		}

		return render(cmd, versions, func(w io.Writer) error {
			if err := writeRow(w, "REPOSITORY", "VERSIONS"); err != nil {
				return err
			}
			for _, repository := range repositories {
				if err := writeRow(w, repository.Name, joinOrNone(versions[repository.Name])); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

// selectRepositories accepts the short names stable, test and dev as well as
// the full repository names.
func selectRepositories(names []string) ([]helm.Repository, error) {
	all := helm.Repositories()
	if len(names) == 0 {
		return []helm.Repository{helm.StableRepository}, nil
	}
	var selected []helm.Repository
	for _, name := range names {
		repository, ok := lo.Find(all, func(r helm.Repository) bool {
			return r.Name == name || r.Name == "stackable-"+name
		})
		if !ok {
			return nil, fmt.Errorf("unknown repository %q (expected stable, test or dev)", name)
		}
		selected = append(selected, repository)
	}
	return lo.Uniq(selected), nil
}

func colorStatus(status string) string {
	switch status {
	case release.StatusDeployed.String():
		return statusDeployed(status)
	case release.StatusFailed.String():
		return statusFailed(status)
	case release.StatusPendingInstall.String(), release.StatusPendingUpgrade.String(), release.StatusPendingRollback.String():
		return statusPending(status)
	default:
		return status
	}
}

func init() {
	addOutputFlag(operatorInstalledCmd)
	addOperatorNamespaceFlag(operatorInstalledCmd)
	addOutputFlag(operatorVersionsCmd)
	operatorVersionsCmd.Flags().StringSlice("repo", nil, "Helm repositories to query (stable, test, dev)")

	operatorCmd.AddCommand(operatorInstalledCmd, operatorVersionsCmd)
	rootCmd.AddCommand(operatorCmd)
}
