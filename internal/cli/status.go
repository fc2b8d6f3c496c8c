package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/stackabletech/stackable/internal/core/helm"
	"github.com/stackabletech/stackable/internal/core/install"
)

var statusCmd = &cobra.Command{
	Use:   "status NAME",
	Short: "Show the status of an installed stack or demo",
	Long: `Show the installation record of a stack or demo together with the state of
the operator releases it installed.`,
	Example: `  # Show status of the trino-taxi-data demo
  stackablectl status trino-taxi-data`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := validateName(name); err != nil {
			return err
		}

		records, err := install.NewStore(settings.StateDir).List()
		if err != nil {
			return fmt.Errorf("failed to read installations: %w", err)
		}
		matches := lo.Filter(records, func(rec install.Record, _ int) bool { return rec.Name == name })
		if len(matches) == 0 {
			return fmt.Errorf("'%s' is not installed", name)
		}

		client := newHelmClient()
		w := newTable(cmd.OutOrStdout())
		for _, rec := range matches {
			if err := writeStatus(cmd, w, client, rec); err != nil {
				return err
			}
		}
		return w.Flush()
	},
}

func writeStatus(cmd *cobra.Command, w io.Writer, client helm.Client, rec install.Record) error {
	rows := [][2]string{
		{"KIND", string(rec.Kind)},
		{"NAME", rec.Name},
		{"STACK", orDash(rec.Stack)},
		{"RELEASE", orDash(rec.Release)},
		{"OPERATOR NAMESPACE", orDash(rec.OperatorNamespace)},
		{"PRODUCT NAMESPACE", rec.ProductNamespace},
		{"INSTALLED", rec.InstallTime.Format("2006-01-02 15:04:05")},
	}
	for _, row := range rows {
		if err := writeRow(w, row[0], row[1]); err != nil {
			return err
		}
	}

	keys := lo.Keys(rec.Parameters)
	sort.Strings(keys)
	for i, key := range keys {
		label := lo.Ternary(i == 0, "PARAMETERS", "")
		if err := writeRow(w, label, key+"="+rec.Parameters[key]); err != nil {
			return err
		}
	}

	if rec.OperatorNamespace == "" {
		return writeRow(w, "", "")
	}
	releases, err := client.ListReleases(cmd.Context(), rec.OperatorNamespace)
	if err != nil && !errors.Is(err, helm.ErrReleaseNotFound) {
		return fmt.Errorf("failed to list operators in %s: %w", rec.OperatorNamespace, err)
	}
	for i, r := range releases {
		label := lo.Ternary(i == 0, "OPERATORS", "")
		if err := writeRow(w, label, r.Name+" "+r.Version+" "+colorStatus(r.Status)); err != nil {
			return err
		}
	}
	return writeRow(w, "", "")
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
