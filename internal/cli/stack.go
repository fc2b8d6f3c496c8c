package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/stackabletech/stackable/internal/core/install"
	"github.com/stackabletech/stackable/internal/core/params"
)

var stackCmd = &cobra.Command{
	Use:     "stack",
	Aliases: []string{"st"},
	Short:   "Interact with stacks, which are ready-to-use product combinations",
}

var stackListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List available stacks",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lists, err := loadListsFor(cmd, withStacks)
		if err != nil {
			return err
		}

		err = render(cmd, lists.stacks.Entries(), func(w io.Writer) error {
			if err := writeRow(w, "#", "STACK", "RELEASE", "DESCRIPTION"); err != nil {
				return err
			}
			i := 0
			for name, stack := range lists.stacks.All() {
				i++
				if err := writeRow(w, i, name, stack.Release, stack.Description); err != nil {
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
				[2]string{"stackablectl stack describe [OPTIONS] <STACK>", "display further information for the specified stack"},
				[2]string{"stackablectl stack install [OPTIONS] <STACK>...", "install a stack"},
			)
		}
		return nil
	},
}

var stackDescribeCmd = &cobra.Command{
	Use:     "describe STACK",
	Aliases: []string{"desc"},
	Short:   "Describe a specific stack",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := validateName(name); err != nil {
			return err
		}
		lists, err := loadListsFor(cmd, withStacks)
		if err != nil {
			return err
		}
		stack, ok := lists.stacks.Get(name)
		if !ok {
			return &install.NoSuchStackError{Name: name, Available: lists.stacks.Names()}
		}

		err = render(cmd, stack, func(w io.Writer) error {
			rows := [][2]string{
				{"STACK", name},
				{"DESCRIPTION", stack.Description},
				{"DOCUMENTATION", stack.Documentation},
				{"RELEASE", stack.Release},
				{"OPERATORS", joinOrNone(stack.Operators)},
				{"LABELS", joinOrNone(stack.Labels)},
				{"NAMESPACES", joinOrNone(stack.SupportedNamespaces)},
			}
			for _, row := range rows {
				if row[1] == "" {
					continue
				}
				if err := writeRow(w, row[0], row[1]); err != nil {
					return err
				}
			}
			return writeParameters(w, stack.Parameters)
		})
		if err != nil {
			return err
		}
		if format, _ := outputFormat(cmd); format == outputPlain {
			printHints(cmd, [2]string{"stackablectl stack install " + name, "install the stack"})
		}
		return nil
	},
}

var stackInstallCmd = &cobra.Command{
	Use:     "install STACK",
	Aliases: []string{"i", "in"},
	Short:   "Install a specific stack",
	Example: `  # Install the trino-superset-s3 stack
  stackablectl stack install trino-superset-s3

  # Override a stack parameter
  stackablectl stack install trino-superset-s3 --stack-parameters trinoAdminPassword=secret`,
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
		lists, err := loadLists(cmd.Context(), fetcher, withReleases|withStacks)
		if err != nil {
			return err
		}
		stack, ok := lists.stacks.Get(name)
		if !ok {
			return &install.NoSuchStackError{Name: name, Available: lists.stacks.Names()}
		}

		ic, err := installContext(cmd, lists, "")
		if err != nil {
			return err
		}
		manager, err := newManager(fetcher, install.WithObserver(progressObserver(cmd.ErrOrStderr())))
		if err != nil {
			return err
		}

		result, err := manager.InstallStack(cmd.Context(), name, stack, ic)
		if err != nil {
			return err
		}
		printResult(cmd, result)
		installedHints(cmd)
		return nil
	},
}

func writeParameters(w io.Writer, declared []params.Parameter) error {
	for i, p := range declared {
		label := ""
		if i == 0 {
			label = "PARAMETERS"
		}
		if err := writeRow(w, label, p.Name+"="+p.Default, p.Description); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	addOutputFlag(stackListCmd)
	addOutputFlag(stackDescribeCmd)
	addInstallFlags(stackInstallCmd)

	stackCmd.AddCommand(stackListCmd, stackDescribeCmd, stackInstallCmd)
	rootCmd.AddCommand(stackCmd)
}
