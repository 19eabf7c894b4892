package commands

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/slatehq/slate/internal/cli/ui"
	"github.com/slatehq/slate/internal/toolchain"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

var (
	rootVerbose bool
	rootNoColor bool
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "slate",
		Short: "Project automation for Python codebases",
		Long: color.CyanString(`Slate - Python Project Automation

Slate manages a Python project end to end by driving the external
toolchain: uv for dependencies, ruff for linting and formatting, and
ty for type checking. Slate never analyzes code itself - every
diagnostic comes from the tools, unmodified.

Features:
  • Starter project scaffolding with assistant workflow docs
  • Manifest and lock file verification
  • One-command check pipeline: lint --fix, format, typecheck
  • Watch mode that re-runs checks on save
  • One-off tool runs through uvx when nothing is installed`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&rootNoColor, "no-color", false, "Disable colored output")

	// Add subcommands
	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewNewCommand())
	rootCmd.AddCommand(NewSyncCommand())
	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewAddCommand())
	rootCmd.AddCommand(NewUpgradeCommand())
	rootCmd.AddCommand(NewFmtCommand())
	rootCmd.AddCommand(NewLintCommand())
	rootCmd.AddCommand(NewTypecheckCommand())
	rootCmd.AddCommand(NewCheckCommand())
	rootCmd.AddCommand(NewWatchCommand())
	rootCmd.AddCommand(NewDepsCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the slate version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			// Set GoVersion to actual runtime if not set at build time
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			kv := ui.NewKeyValueTable(cmd.OutOrStdout(), rootNoColor)
			kv.AddRow("slate version", Version)
			kv.AddRow("git commit", GitCommit)
			kv.AddRow("build date", BuildDate)
			kv.AddRow("go version", goVer)
			kv.Render()
		},
	}
}

// Execute runs the root command and returns the process exit code.
// Tool diagnostics keep their own exit codes; slate's own failures
// exit 1.
func Execute() int {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			// Diagnostics were already surfaced verbatim by the tool.
			return exitErr.Code
		}
		var notInstalled *toolchain.NotInstalledError
		if errors.As(err, &notInstalled) {
			fmt.Fprint(rootCmd.ErrOrStderr(), ui.ToolNotFoundError(notInstalled.Tool, rootNoColor))
			return 1
		}
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}
