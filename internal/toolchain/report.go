package toolchain

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// WriteReport renders a pipeline result for a human: one status line
// per step with any captured output printed underneath, unmodified.
func WriteReport(w io.Writer, result *Result, noColor bool) {
	green := color.New(color.FgGreen, color.Bold)
	red := color.New(color.FgRed, color.Bold)
	gray := color.New(color.FgHiBlack)
	if noColor {
		green.DisableColor()
		red.DisableColor()
		gray.DisableColor()
	}

	for _, step := range result.Steps {
		if step.Ok() {
			green.Fprintf(w, "✓ %s", step.Label)
		} else {
			red.Fprintf(w, "✗ %s (exit %d)", step.Label, step.ExitCode)
		}
		gray.Fprintf(w, "  %s (%s)\n", step.Command, step.Duration.Round(1e6))
		if out := strings.TrimRight(step.Output, "\n"); out != "" {
			fmt.Fprintln(w, out)
		}
	}

	fmt.Fprintln(w)
	if result.Ok() {
		green.Fprintf(w, "✓ all checks passed in %s\n", result.Duration.Round(1e6))
	} else {
		failed := 0
		for _, step := range result.Steps {
			if !step.Ok() {
				failed++
			}
		}
		red.Fprintf(w, "✗ %d of %d checks failed\n", failed, len(result.Steps))
	}
}

// WriteJSON renders a pipeline result as indented JSON for tooling.
func WriteJSON(w io.Writer, result *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
