package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/slatehq/slate/internal/cli/ui"
	"github.com/slatehq/slate/internal/manifest"
)

// NewDepsCommand creates the deps command
func NewDepsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Show declared dependencies and their locked versions",
		Long: `List every dependency from the manifest alongside the exact version
recorded in the lock file, and verify that the lock still reflects
the manifest. Exits non-zero when the two have drifted apart.`,
		Args: cobra.NoArgs,
		RunE: runDeps,
	}
}

func runDeps(cmd *cobra.Command, args []string) error {
	root, _, err := requireProject()
	if err != nil {
		return err
	}

	m, err := manifest.LoadDir(root)
	if err != nil {
		return err
	}

	l, err := manifest.LoadLockDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no lock file yet - run 'slate sync' to create one")
		}
		return err
	}

	out := cmd.OutOrStdout()
	table := ui.NewTable(out, []string{"DEPENDENCY", "CONSTRAINT", "LOCKED", "GROUP"}, &ui.TableOptions{NoColor: rootNoColor})

	addRows := func(reqs []manifest.Requirement, group string) {
		for _, req := range reqs {
			locked := "-"
			if pkg, ok := l.Find(req.Name); ok {
				locked = pkg.Version
			}
			table.AddRow(req.Name, req.Constraint(), locked, group)
		}
	}

	runtime, err := m.Requirements()
	if err != nil {
		return err
	}
	addRows(runtime, "runtime")

	for group, specs := range m.DependencyGroups {
		reqs, err := manifest.ParseRequirements(specs)
		if err != nil {
			return fmt.Errorf("dependency group %q: %w", group, err)
		}
		addRows(reqs, group)
	}

	table.Render()
	fmt.Fprintln(out)

	report, err := manifest.Verify(m, l)
	if err != nil {
		return err
	}
	if !report.Ok() {
		fmt.Fprint(cmd.ErrOrStderr(), ui.LockDriftWarning(report.String(), rootNoColor))
		return &ExitError{Code: 1}
	}

	ui.WriteSuccess(out, report.String(), rootNoColor)
	return nil
}
