package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stackabletech/stackable/internal/core/spec"
)

var searchCmd = &cobra.Command{
	Use:   "search [QUERY]",
	Short: "Search stacks and demos",
	Long: `Search stacks and demos by name, description and labels.

Examples:
  stackablectl search trino
  stackablectl search kafka --limit 5
  stackablectl search ml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := ""
		if len(args) > 0 {
			query = args[0]
		}

		limit, err := cmd.Flags().GetInt("limit")
		if err != nil {
			return fmt.Errorf("failed to get limit flag: %w", err)
		}

		lists, err := loadListsFor(cmd, withStacks|withDemos)
		if err != nil {
			return err
		}
		return searchSpecs(cmd.OutOrStdout(), lists, query, limit)
	},
}

type searchResult struct {
	Kind        spec.Kind
	Name        string
	Description string
	Labels      []string
}

func searchSpecs(out io.Writer, lists *specLists, query string, limit int) error {
	var results []searchResult
	for _, entry := range lists.stacks.Search(query) {
		results = append(results, searchResult{spec.KindStack, entry.Name, entry.Spec.Description, entry.Spec.Labels})
	}
	for _, entry := range lists.demos.Search(query) {
		results = append(results, searchResult{spec.KindDemo, entry.Name, entry.Spec.Description, entry.Spec.Labels})
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	if len(results) == 0 {
		if query != "" {
			fmt.Fprintf(out, "No stacks or demos found matching '%s'.\n", query)
		} else {
			fmt.Fprintln(out, "No stacks or demos available.")
		}
		return nil
	}

	fmt.Fprintf(out, "Found %d result(s):\n\n", len(results))
	for _, result := range results {
		fmt.Fprintf(out, "[%s] %s\n", result.Kind, result.Name)
		if result.Description != "" {
			fmt.Fprintf(out, "   %s\n", result.Description)
		}
		if len(result.Labels) > 0 {
			fmt.Fprintf(out, "   Labels: %s\n", strings.Join(result.Labels, ", "))
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "To install a result, run:")
	fmt.Fprintln(out, "  stackablectl stack install NAME")
	fmt.Fprintln(out, "  stackablectl demo install NAME")
	return nil
}

func init() {
	searchCmd.Flags().Int("limit", 10, "Maximum number of results to show")
	rootCmd.AddCommand(searchCmd)
}
