package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/slatehq/slate/internal/manifest"
	"github.com/slatehq/slate/internal/toolchain"
)

var addDev bool

// NewAddCommand creates the add command
func NewAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <dependency>...",
		Short: "Add dependencies to the manifest",
		Long: `Add one or more dependencies. The package manager rewrites the
manifest and the lock file together, so the lock always reflects the
manifest afterwards.

Examples:
  slate add requests
  slate add "fastapi>=0.115" uvicorn
  slate add --dev pytest`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAdd,
	}

	cmd.Flags().BoolVar(&addDev, "dev", false, "Add to the development dependency group")

	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	root, cfg, err := requireProject()
	if err != nil {
		return err
	}

	// Reject malformed requirements before the package manager sees
	// them, with the parse error pointing at the offending argument.
	for _, arg := range args {
		if _, err := manifest.ParseRequirement(arg); err != nil {
			return err
		}
	}

	uvArgs := []string{"add"}
	if addDev {
		uvArgs = append(uvArgs, "--dev")
	}
	uvArgs = append(uvArgs, args...)

	runner := newRunner(root, cfg, false)
	result, err := runner.Run(cmd.Context(), toolchain.Invocation{
		Tool:  toolchain.Tool{Name: toolchain.UV, Path: cfg.Tools.UV},
		Args:  uvArgs,
		Label: "add",
	})
	if err != nil {
		return err
	}
	if !result.Ok() {
		return &ExitError{Code: result.ExitCode}
	}

	printLockedVersions(cmd, root, args)
	return verifyLockAfter(cmd, root)
}

// printLockedVersions reports what each named dependency resolved to.
func printLockedVersions(cmd *cobra.Command, root string, names []string) {
	l, err := manifest.LoadLockDir(root)
	if err != nil {
		return
	}

	successColor := color.New(color.FgGreen, color.Bold)
	if rootNoColor {
		successColor.DisableColor()
	}
	for _, name := range names {
		req, err := manifest.ParseRequirement(name)
		if err != nil {
			continue
		}
		if pkg, ok := l.Find(req.Name); ok {
			successColor.Fprintf(cmd.OutOrStdout(), "✓ %s %s\n", req.Name, pkg.Version)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s (not in lock)\n", req.Name)
		}
	}
}
