package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/slatehq/slate/internal/cli/ui"
	"github.com/slatehq/slate/internal/toolchain"
	"github.com/slatehq/slate/internal/watch"
)

// NewWatchCommand creates the watch command
func NewWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-run the check pipeline on file changes",
		Long: `Watch the source tree and re-run the check pipeline (lint --fix,
format, typecheck) whenever a Python file or the manifest changes.
Changes are debounced so a burst of saves triggers a single run.

Press Ctrl+C to stop.`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	root, cfg, err := requireProject()
	if err != nil {
		return err
	}

	targets, err := resolveTargets(root, cfg, nil)
	if err != nil {
		return err
	}

	infoColor := color.New(color.FgCyan)
	titleColor := color.New(color.FgCyan, color.Bold)
	if rootNoColor {
		infoColor.DisableColor()
		titleColor.DisableColor()
	}

	out := cmd.OutOrStdout()
	runChecks := func() {
		result, err := runCheckPipeline(cmd, root, cfg, targets)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			return
		}
		toolchain.WriteReport(out, result, rootNoColor)
	}

	// Run once up front so the terminal shows the current state.
	titleColor.Fprintln(out, "slate watch")
	runChecks()

	// The watcher resolves paths itself, so anchor the configured
	// source roots at the project root.
	var roots []string
	for _, t := range targets {
		roots = append(roots, filepath.Join(root, t))
	}
	if len(roots) == 0 {
		roots = []string{root}
	}

	watcher, err := watch.New(watch.Options{
		Roots: roots,
		Log:   newLogger(),
	}, func(files []string) error {
		infoColor.Fprintf(out, "\n%d file(s) changed, re-running checks...\n", len(files))
		runChecks()
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprint(out, ui.Info("Watching for changes. Press Ctrl+C to stop.", rootNoColor))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Fprintln(out, "\nStopping...")
	return watcher.Stop()
}
