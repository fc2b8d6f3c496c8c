package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stackabletech/stackable/internal/core/fetch"
	"github.com/stackabletech/stackable/internal/core/install"
	"github.com/stackabletech/stackable/internal/core/spec"
)

var releaseCmd = &cobra.Command{
	Use:     "release",
	Aliases: []string{"rel"},
	Short:   "Interact with Stackable releases",
	Long: `A release is a set of operator versions which are tested to work together.

Installing a release installs one operator per product into the operator namespace.`,
}

var releaseListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List available releases",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lists, err := loadListsFor(cmd, withReleases)
		if err != nil {
			return err
		}

		return render(cmd, lists.releases.Entries(), func(w io.Writer) error {
			if err := writeRow(w, "#", "RELEASE", "RELEASE DATE", "DESCRIPTION"); err != nil {
				return err
			}
			i := 0
			for name, release := range lists.releases.All() {
				i++
				if err := writeRow(w, i, name, release.ReleaseDate, release.Description); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

var releaseDescribeCmd = &cobra.Command{
	Use:     "describe RELEASE",
	Aliases: []string{"desc"},
	Short:   "Print out detailed release information",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := validateName(name); err != nil {
			return err
		}
		lists, err := loadListsFor(cmd, withReleases)
		if err != nil {
			return err
		}
		release, ok := lists.releases.Get(name)
		if !ok {
			return &install.NoSuchReleaseError{Name: name, Available: lists.releases.Names()}
		}

		err = render(cmd, release, func(w io.Writer) error {
			rows := [][2]string{
				{"RELEASE", name},
				{"RELEASE DATE", release.ReleaseDate},
				{"DESCRIPTION", release.Description},
			}
			for _, row := range rows {
				if err := writeRow(w, row[0], row[1]); err != nil {
					return err
				}
			}
			for i, product := range release.ProductNames() {
				label := ""
				if i == 0 {
					label = "INCLUDED PRODUCTS"
				}
				if err := writeRow(w, label, product, release.Products[product].OperatorVersion); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		if format, _ := outputFormat(cmd); format == outputPlain {
			printHints(cmd, [2]string{"stackablectl release install " + name, "install the release"})
		}
		return nil
	},
}

var releaseInstallCmd = &cobra.Command{
	Use:     "install RELEASE",
	Aliases: []string{"i", "in"},
	Short:   "Install a specific release",
	Example: `  # Install all operators of release 24.11
  stackablectl release install 24.11

  # Only install the Trino and Hive operators
  stackablectl release install 24.11 --include trino,hive`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		include, exclude, err := productFilters(cmd)
		if err != nil {
			return err
		}
		release, fetcher, err := lookupRelease(cmd, name)
		if err != nil {
			return err
		}

		manager, err := newManager(fetcher)
		if err != nil {
			return err
		}
		namespace := settings.OperatorNamespace
		if err := manager.EnsureNamespace(cmd.Context(), namespace); err != nil {
			return err
		}

		statuses, err := manager.InstallRelease(cmd.Context(), release, namespace, include, exclude)
		for _, status := range statuses {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", status.Release, status.Version, status.Status)
		}
		if err != nil {
			return fmt.Errorf("failed to install release %s: %w", name, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Installed release '%s'\n", name)
		printHints(cmd, [2]string{"stackablectl operator installed --operator-namespace " + namespace, "display the installed operators"})
		return nil
	},
}

var releaseUninstallCmd = &cobra.Command{
	Use:     "uninstall RELEASE",
	Aliases: []string{"rm", "un"},
	Short:   "Uninstall a release",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		include, exclude, err := productFilters(cmd)
		if err != nil {
			return err
		}
		release, fetcher, err := lookupRelease(cmd, name)
		if err != nil {
			return err
		}

		manager, err := newManager(fetcher)
		if err != nil {
			return err
		}
		statuses, err := manager.UninstallRelease(cmd.Context(), release, settings.OperatorNamespace, include, exclude)
		for _, product := range release.FilterProducts(include, exclude) {
			if status, ok := statuses[product]; ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", product, status)
			}
		}
		if err != nil {
			return fmt.Errorf("failed to uninstall release %s: %w", name, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Uninstalled release '%s'\n", name)
		return nil
	},
}

func lookupRelease(cmd *cobra.Command, name string) (*spec.Release, *fetch.Fetcher, error) {
	if err := validateName(name); err != nil {
		return nil, nil, err
	}
	fetcher, err := newFetcher()
	if err != nil {
		return nil, nil, err
	}
	lists, err := loadLists(cmd.Context(), fetcher, withReleases)
	if err != nil {
		return nil, nil, err
	}
	release, ok := lists.releases.Get(name)
	if !ok {
		return nil, nil, &install.NoSuchReleaseError{Name: name, Available: lists.releases.Names()}
	}
	return release, fetcher, nil
}

func productFilters(cmd *cobra.Command) (include, exclude []string, err error) {
	if include, err = cmd.Flags().GetStringSlice("include"); err != nil {
		return nil, nil, fmt.Errorf("failed to get include flag: %w", err)
	}
	if exclude, err = cmd.Flags().GetStringSlice("exclude"); err != nil {
		return nil, nil, fmt.Errorf("failed to get exclude flag: %w", err)
	}
	if len(include) > 0 && len(exclude) > 0 {
		return nil, nil, fmt.Errorf("--include and --exclude cannot be combined")
	}
	return lowerAll(include), lowerAll(exclude), nil
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}

func init() {
	addOutputFlag(releaseListCmd)
	addOutputFlag(releaseDescribeCmd)

	for _, cmd := range []*cobra.Command{releaseInstallCmd, releaseUninstallCmd} {
		cmd.Flags().StringSliceP("include", "i", nil, "Only handle the operators of these products")
		cmd.Flags().StringSliceP("exclude", "e", nil, "Handle every operator except those of these products")
		addOperatorNamespaceFlag(cmd)
	}

	releaseCmd.AddCommand(releaseListCmd, releaseDescribeCmd, releaseInstallCmd, releaseUninstallCmd)
	rootCmd.AddCommand(releaseCmd)
}
