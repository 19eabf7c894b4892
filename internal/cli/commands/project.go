package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/slatehq/slate/internal/cli/config"
	"github.com/slatehq/slate/internal/cli/ui"
	"github.com/slatehq/slate/internal/manifest"
	"github.com/slatehq/slate/internal/toolchain"
)

// newLogger builds the command logger: human-readable debug output
// with --verbose, silent otherwise.
func newLogger() *zap.Logger {
	if !rootVerbose {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// requireProject loads configuration and locates the project root.
// Every command except new and version starts here.
func requireProject() (string, *config.Config, error) {
	root, err := config.GetProjectRoot()
	if err != nil {
		fmt.Fprint(os.Stderr, ui.NotAProjectError(rootNoColor))
		return "", nil, err
	}

	cfg, err := config.Load(root)
	if err != nil {
		fmt.Fprint(os.Stderr, ui.ConfigError(err.Error(), rootNoColor))
		return "", nil, fmt.Errorf("failed to load config: %w", err)
	}

	return root, cfg, nil
}

// newRunner builds a toolchain runner rooted at the project.
func newRunner(root string, cfg *config.Config, capture bool) *toolchain.Runner {
	runner := toolchain.NewRunner(root, newLogger())
	runner.Capture = capture
	runner.Fallback = cfg.Tools.Fallback
	return runner
}

// warnOnLockDrift verifies the lock invariant and prints a warning when
// the lock file is missing or stale. Never fatal: the package manager
// owns the lock, slate only reports.
func warnOnLockDrift(root string) {
	m, err := manifest.LoadDir(root)
	if err != nil {
		return
	}
	l, err := manifest.LoadLockDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprint(os.Stderr, ui.Warning("no lock file yet - run 'slate sync' to create one", rootNoColor))
		}
		return
	}
	report, err := manifest.Verify(m, l)
	if err != nil || report.Ok() {
		return
	}
	fmt.Fprint(os.Stderr, ui.LockDriftWarning(
		fmt.Sprintf("%d of %d dependencies drifted", len(report.Drift), report.Checked), rootNoColor))
}

// verifyLockAfter re-checks the lock invariant once a command has let
// the package manager rewrite the manifest or lock. The two are
// supposed to agree at that point, so drift is a failure, not a
// warning.
func verifyLockAfter(cmd *cobra.Command, root string) error {
	m, err := manifest.LoadDir(root)
	if err != nil {
		return err
	}
	l, err := manifest.LoadLockDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	report, err := manifest.Verify(m, l)
	if err != nil {
		return err
	}
	if !report.Ok() {
		fmt.Fprint(cmd.ErrOrStderr(), ui.LockDriftWarning(report.String(), rootNoColor))
		return &ExitError{Code: 1}
	}
	return nil
}
