package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/stackabletech/stackable/internal/core/install"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Interact with demos, which are end-to-end demonstrations of the Stackable Data Platform",
}

var demoListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List available demos",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lists, err := loadListsFor(cmd, withDemos)
		if err != nil {
			return err
		}

		err = render(cmd, lists.demos.Entries(), func(w io.Writer) error {
			if err := writeRow(w, "#", "NAME", "STACK", "DESCRIPTION"); err != nil {
				return err
			}
			i := 0
			for name, demo := range lists.demos.All() {
				i++
				if err := writeRow(w, i, name, demo.Stack, demo.Description); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		if format, _ := outputFormat(cmd); format == outputPlain {
			printHints(cmd,
				[2]string{"stackablectl demo describe [OPTIONS] <DEMO>", "display further information for the specified demo"},
				[2]string{"stackablectl demo install [OPTIONS] <DEMO>", "install a demo"},
			)
		}
		return nil
	},
}

var demoDescribeCmd = &cobra.Command{
	Use:     "describe DEMO",
	Aliases: []string{"desc"},
	Short:   "Print out detailed demo information",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := validateName(name); err != nil {
			return err
		}
		lists, err := loadListsFor(cmd, withDemos)
		if err != nil {
			return err
		}
		demo, ok := lists.demos.Get(name)
		if !ok {
			return &install.NoSuchDemoError{Name: name, Available: lists.demos.Names()}
		}

		err = render(cmd, demo, func(w io.Writer) error {
			rows := [][2]string{
				{"DEMO", name},
				{"DESCRIPTION", demo.Description},
				{"DOCUMENTATION", demo.Documentation},
				{"STACK", demo.Stack},
				{"LABELS", joinOrNone(demo.Labels)},
				{"NAMESPACES", joinOrNone(demo.SupportedNamespaces)},
			}
			for _, row := range rows {
				if row[1] == "" {
					continue
				}
				if err := writeRow(w, row[0], row[1]); err != nil {
					return err
				}
			}
			return writeParameters(w, demo.Parameters)
		})
		if err != nil {
			return err
		}
		if format, _ := outputFormat(cmd); format == outputPlain {
			printHints(cmd,
				[2]string{"stackablectl demo install " + name, "install the demo"},
				[2]string{"stackablectl demo list", "list all available demos"},
			)
		}
		return nil
	},
}

var demoInstallCmd = &cobra.Command{
	Use:     "install DEMO",
	Aliases: []string{"i", "in"},
	Short:   "Install a specific demo",
	Example: `  # Install the trino-taxi-data demo
  stackablectl demo install trino-taxi-data

  # Install into a different product namespace with custom parameters
  stackablectl demo install trino-taxi-data -n demo --parameters minioPassword=secret`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := validateName(name); err != nil {
			return err
		}
		fetcher, err := newFetcher()
		if err != nil {
			return err
		}
		lists, err := loadLists(cmd.Context(), fetcher, withReleases|withStacks|withDemos)
		if err != nil {
			return err
		}
		demo, ok := lists.demos.Get(name)
		if !ok {
			return &install.NoSuchDemoError{Name: name, Available: lists.demos.Names()}
		}

		ic, err := installContext(cmd, lists, "parameters")
		if err != nil {
			return err
		}
		manager, err := newManager(fetcher, install.WithObserver(progressObserver(cmd.ErrOrStderr())))
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Installing demo '%s'\n", name)
		result, err := manager.InstallDemo(cmd.Context(), name, demo, ic)
		if err != nil {
			return err
		}
		printResult(cmd, result)
		installedHints(cmd)
		return nil
	},
}

func init() {
	addOutputFlag(demoListCmd)
	addOutputFlag(demoDescribeCmd)
	addInstallFlags(demoInstallCmd)
	demoInstallCmd.Flags().StringArray("parameters", nil, "Parameters to use when installing the demo (NAME=VALUE)")

	demoCmd.AddCommand(demoListCmd, demoDescribeCmd, demoInstallCmd)
	rootCmd.AddCommand(demoCmd)
}
