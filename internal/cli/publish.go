package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/stackabletech/stackable/internal/core/fetch"
	"github.com/stackabletech/stackable/internal/core/registry"
	"github.com/stackabletech/stackable/internal/core/spec"
)

var publishFile string

func init() {
	publishCmd.Flags().StringVarP(&publishFile, "file", "f", "", "Release, stack or demo file to publish")
	_ = publishCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(publishCmd)
}

var publishCmd = &cobra.Command{
	Use:   "publish [REGISTRY/NAME:TAG]",
	Short: "Publish a release, stack or demo file to an OCI registry",
	Long: `Publish a release, stack or demo file to an OCI registry like GitHub Container Registry.

Published files can be used with --release-file, --stack-file and --demo-file
by passing the reference with the oci:// scheme.

Examples:
  stackablectl publish ghcr.io/acme/stacks:1.0.0 --file stacks.yaml
  stackablectl stack list --stack-file oci://ghcr.io/acme/stacks:1.0.0`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishSpec(cmd, args[0], publishFile)
	},
}

func publishSpec(cmd *cobra.Command, reference, file string) error {
	absPath, err := filepath.Abs(file)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	kind, count, err := validateSpecFile(cmd.Context(), absPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Publishing %d %s spec(s) from %s to %s\n", count, kind, filepath.Base(absPath), reference)

	client := registry.NewClient(logger.WithName("registry"))
	if err := client.Push(cmd.Context(), absPath, reference); err != nil {
		return fmt.Errorf("failed to publish %s: %w", file, err)
	}

	fmt.Fprintf(out, "✓ Successfully published to %s\n", reference)
	fmt.Fprintln(out, "\nTo use this file, run:")
	fmt.Fprintf(out, "  stackablectl %s list --%s-file %s%s\n", kind, kind, registry.Scheme, reference)
	return nil
}

// validateSpecFile detects the document kind by its top-level key and builds
// a list from the file alone, so only valid documents get published.
func validateSpecFile(ctx context.Context, path string) (spec.Kind, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var top map[string]yaml.Node
	if err := yaml.Unmarshal(data, &top); err != nil {
		return "", 0, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	fetcher, err := fetch.New(fetch.CacheSettings{UseCache: false})
	if err != nil {
		return "", 0, err
	}
	source := []string{path}

	switch {
	case has(top, "releases"):
		l, err := buildList[spec.ReleaseDocument, *spec.Release](ctx, fetcher, source)
		if err != nil {
			return "", 0, err
		}
		return spec.KindRelease, l.Len(), nil
	case has(top, "stacks"):
		l, err := buildList[spec.StackDocument, *spec.Stack](ctx, fetcher, source)
		if err != nil {
			return "", 0, err
		}
		return spec.KindStack, l.Len(), nil
	case has(top, "demos"):
		l, err := buildList[spec.DemoDocument, *spec.Demo](ctx, fetcher, source)
		if err != nil {
			return "", 0, err
		}
		return spec.KindDemo, l.Len(), nil
	default:
		return "", 0, fmt.Errorf("%s is not a release, stack or demo file", path)
	}
}

func has(m map[string]yaml.Node, key string) bool {
	_, ok := m[key]
	return ok
}
