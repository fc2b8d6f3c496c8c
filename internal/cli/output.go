package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"
)

const (
	outputPlain = "plain"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

var hintStyle = color.New(color.FgCyan).SprintFunc()

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", outputPlain, "Output format (plain, json, yaml)")
}

func outputFormat(cmd *cobra.Command) (string, error) {
	format, err := cmd.Flags().GetString("output")
	if err != nil {
		return "", fmt.Errorf("failed to get output flag: %w", err)
	}
	switch format {
	case outputPlain, outputJSON, outputYAML:
		return format, nil
	default:
		return "", fmt.Errorf("invalid output format %q (expected plain, json or yaml)", format)
	}
}

// render writes value as YAML or JSON, or calls plain for the table output.
// JSON is derived from the YAML encoding so unknown spec fields survive.
func render(cmd *cobra.Command, value any, plain func(w io.Writer) error) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	switch format {
	case outputYAML:
		data, err := yaml.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		_, err = out.Write(data)
		return err
	case outputJSON:
		data, err := yaml.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		raw, err := sigsyaml.YAMLToJSON(data)
		if err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		buf.WriteByte('\n')
		_, err = buf.WriteTo(out)
		return err
	default:
		w := newTable(out)
		if err := plain(w); err != nil {
			return err
		}
		return w.Flush()
	}
}

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func writeRow(w io.Writer, columns ...any) error {
	for i, column := range columns {
		sep := "\t"
		if i == len(columns)-1 {
			sep = "\n"
		}
		if _, err := fmt.Fprintf(w, "%v%s", column, sep); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func printHints(cmd *cobra.Command, hints ...[2]string) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	for _, hint := range hints {
		fmt.Fprintf(out, "Use %s to %s.\n", hintStyle(`"`+hint[0]+`"`), hint[1])
	}
}
