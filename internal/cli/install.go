package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/stackabletech/stackable/internal/core/install"
)

var (
	stepDone   = color.New(color.FgGreen).SprintFunc()
	stepFailed = color.New(color.FgRed).SprintFunc()
	warnStyle  = color.New(color.FgYellow).SprintFunc()
)

var stepMessages = map[install.State]string{
	install.PrerequisitesChecked:    "Checked prerequisites",
	install.NamespacesReady:         "Namespaces ready",
	install.ReleaseInstalled:        "Installed release",
	install.ReleaseSkipped:          "Skipped release installation",
	install.StackManifestsInstalled: "Installed stack manifests",
	install.DemoManifestsInstalled:  "Installed demo manifests",
	install.Done:                    "Done",
}

func addInstallFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("skip-release", false, "Skip the installation of the release during the stack install process")
	cmd.Flags().StringArray("stack-parameters", nil, "Parameters to use when installing the stack (NAME=VALUE)")
	addOperatorNamespaceFlag(cmd)
	addProductNamespaceFlag(cmd)
}

// installContext collects the namespaces, skip flag and raw parameters of an
// install command. demoParamFlag is empty for stack installs.
func installContext(cmd *cobra.Command, lists *specLists, demoParamFlag string) (install.Context, error) {
	skip, err := cmd.Flags().GetBool("skip-release")
	if err != nil {
		return install.Context{}, fmt.Errorf("failed to get skip-release flag: %w", err)
	}
	stackParams, err := cmd.Flags().GetStringArray("stack-parameters")
	if err != nil {
		return install.Context{}, fmt.Errorf("failed to get stack-parameters flag: %w", err)
	}

	ic := install.Context{
		OperatorNamespace:    settings.OperatorNamespace,
		ProductNamespace:     settings.ProductNamespace,
		StackParameterTokens: stackParams,
		SkipRelease:          skip,
		Releases:             lists.releases,
		Stacks:               lists.stacks,
	}
	if demoParamFlag != "" {
		demoParams, err := cmd.Flags().GetStringArray(demoParamFlag)
		if err != nil {
			return install.Context{}, fmt.Errorf("failed to get %s flag: %w", demoParamFlag, err)
		}
		ic.DemoParameterTokens = demoParams
	}
	return ic, nil
}

func progressObserver(w io.Writer) install.Observer {
	return install.ObserverFunc(func(t install.Transition) {
		if t.To == install.Failed {
			fmt.Fprintf(w, "%s %s failed after %s\n", stepFailed("✗"), t.Kind, t.From)
			return
		}
		if msg, ok := stepMessages[t.To]; ok {
			fmt.Fprintf(w, "%s %s\n", stepDone("✓"), msg)
		}
	})
}

func printResult(cmd *cobra.Command, result *install.Result) {
	out := cmd.OutOrStdout()
	for _, op := range result.Operators {
		fmt.Fprintf(out, "  %s %s: %s\n", op.Release, op.Version, op.Status)
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", warnStyle("Warning:"), warning)
	}
	fmt.Fprintf(out, "Installed %s '%s'\n", result.Kind, result.Name)
}

func installedHints(cmd *cobra.Command) {
	printHints(cmd,
		[2]string{"stackablectl operator installed --operator-namespace " + settings.OperatorNamespace, "display the installed operators"},
		[2]string{"stackablectl list", "display the installed stacks and demos"},
	)
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
