package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slatehq/slate/internal/cli/ui"
	"github.com/slatehq/slate/internal/manifest"
	"github.com/slatehq/slate/internal/toolchain"
)

var upgradeNoSync bool

// NewUpgradeCommand creates the upgrade command
func NewUpgradeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upgrade [dependency...]",
		Short: "Re-resolve dependencies to their latest compatible versions",
		Long: `Upgrade named dependencies, or every dependency when none are given,
to the latest versions still satisfying the manifest's constraints.
The lock file is rewritten by the package manager and the environment
re-synced.

Examples:
  slate upgrade            # upgrade everything
  slate upgrade requests   # upgrade one dependency
  slate upgrade --no-sync ruff ty`,
		RunE: runUpgrade,
	}

	cmd.Flags().BoolVar(&upgradeNoSync, "no-sync", false, "Update the lock file without touching the environment")

	return cmd
}

func runUpgrade(cmd *cobra.Command, args []string) error {
	root, cfg, err := requireProject()
	if err != nil {
		return err
	}

	if len(args) > 0 {
		if err := checkKnownDependencies(root, args); err != nil {
			return err
		}
	}

	uvArgs := []string{"lock"}
	if len(args) == 0 {
		uvArgs = append(uvArgs, "--upgrade")
	} else {
		for _, name := range args {
			uvArgs = append(uvArgs, "--upgrade-package", name)
		}
	}

	runner := newRunner(root, cfg, false)
	uv := toolchain.Tool{Name: toolchain.UV, Path: cfg.Tools.UV}

	result, err := runner.Run(cmd.Context(), toolchain.Invocation{Tool: uv, Args: uvArgs, Label: "upgrade"})
	if err != nil {
		return err
	}
	if !result.Ok() {
		return &ExitError{Code: result.ExitCode}
	}

	if !upgradeNoSync {
		result, err = runner.Run(cmd.Context(), toolchain.Invocation{Tool: uv, Args: []string{"sync"}, Label: "sync"})
		if err != nil {
			return err
		}
		if !result.Ok() {
			return &ExitError{Code: result.ExitCode}
		}
	}

	printLockedVersions(cmd, root, args)
	return verifyLockAfter(cmd, root)
}

// checkKnownDependencies rejects names that are not declared in the
// manifest, suggesting close matches.
func checkKnownDependencies(root string, names []string) error {
	m, err := manifest.LoadDir(root)
	if err != nil {
		return err
	}
	reqs, err := m.AllRequirements()
	if err != nil {
		return err
	}

	declared := make([]string, 0, len(reqs))
	known := make(map[string]bool, len(reqs))
	for _, req := range reqs {
		declared = append(declared, req.Name)
		known[req.Name] = true
	}

	for _, name := range names {
		normalized := manifest.NormalizeName(name)
		if known[normalized] {
			continue
		}
		opts := ui.ErrorOptions{
			Level:   ui.ErrorLevelError,
			Context: "UNKNOWN DEPENDENCY",
			Problem: name,
			NoColor: rootNoColor,
		}
		if similar := ui.FindSimilar(normalized, declared); len(similar) > 0 {
			opts.Suggestions = []string{fmt.Sprintf("Did you mean: %s?", strings.Join(similar, ", "))}
		}
		opts.HelpCommands = []string{"List declared dependencies: slate deps"}
		ui.WriteError(os.Stderr, opts)
		return fmt.Errorf("%s is not declared in the manifest", name)
	}
	return nil
}
