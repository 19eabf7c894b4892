package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/slatehq/slate/internal/toolchain"
)

var runModule string

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [-- args...]",
		Short: "Run the project entry point",
		Long: `Execute the project's entry-point module inside the managed
environment. The module defaults to the project name from the
manifest; arguments after -- are passed through untouched.

Examples:
  slate run
  slate run -- --help
  slate run --module demo_app.cli -- serve`,
		RunE: runRun,
	}

	cmd.Flags().StringVarP(&runModule, "module", "m", "", "Module to execute instead of the project default")

	return cmd
}

func runRun(cmd *cobra.Command, args []string) error {
	root, cfg, err := requireProject()
	if err != nil {
		return err
	}

	module := runModule
	if module == "" {
		module, err = cfg.EntryModule(root)
		if err != nil {
			return fmt.Errorf("failed to resolve entry module: %w", err)
		}
	}

	infoColor := color.New(color.FgCyan)
	if rootNoColor {
		infoColor.DisableColor()
	}
	infoColor.Fprintf(cmd.OutOrStdout(), "Running %s...\n", module)

	uvArgs := append([]string{"run", "python", "-m", module}, args...)

	// Let the child own Ctrl+C: forward the signal and wait for it to
	// exit on its own terms.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	runner := newRunner(root, cfg, false)
	runner.Stdin = os.Stdin

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-sigChan:
			// The terminal already delivered the signal to the child's
			// process group; nothing to forward, just stop intercepting.
			signal.Stop(sigChan)
		case <-done:
		}
	}()

	result, err := runner.Run(cmd.Context(), toolchain.Invocation{
		Tool:  toolchain.Tool{Name: toolchain.UV, Path: cfg.Tools.UV},
		Args:  uvArgs,
		Label: "run",
	})
	if err != nil {
		return err
	}

	return exitIfFailed(result.ExitCode)
}
