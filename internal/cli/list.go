package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/stackabletech/stackable/internal/core/install"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed stacks and demos",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := install.NewStore(settings.StateDir).List()
		if err != nil {
			return fmt.Errorf("failed to list installations: %w", err)
		}

		if format, _ := outputFormat(cmd); format == outputPlain && len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No stacks or demos installed")
			return nil
		}

		return render(cmd, records, func(w io.Writer) error {
			if err := writeRow(w, "KIND", "NAME", "STACK", "RELEASE", "NAMESPACE", "STATUS", "INSTALLED"); err != nil {
				return err
			}
			for _, rec := range records {
				if err := writeRow(w,
					rec.Kind,
					rec.Name,
					orDash(rec.Stack),
					orDash(rec.Release),
					rec.ProductNamespace,
					rec.Status,
					rec.InstallTime.Format("2006-01-02 15:04:05"),
				); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	addOutputFlag(listCmd)
	rootCmd.AddCommand(listCmd)
}
