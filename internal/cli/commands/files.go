package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/slatehq/slate/internal/cli/config"
)

// resolveTargets picks the paths handed to the tools: explicit
// arguments with glob patterns expanded, or the configured source
// roots that actually exist. An empty result means the whole project,
// which the tools interpret as their own default discovery.
func resolveTargets(root string, cfg *config.Config, args []string) ([]string, error) {
	if len(args) == 0 {
		var roots []string
		for _, src := range cfg.Source.Roots {
			if _, err := os.Stat(filepath.Join(root, src)); err == nil {
				roots = append(roots, src)
			}
		}
		return roots, nil
	}

	var targets []string
	seen := make(map[string]bool)

	for _, arg := range args {
		resolved, err := expandTarget(root, arg)
		if err != nil {
			return nil, err
		}
		for _, target := range resolved {
			if !seen[target] {
				seen[target] = true
				targets = append(targets, target)
			}
		}
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("no files match the given paths")
	}
	return targets, nil
}

func expandTarget(root, arg string) ([]string, error) {
	if err := validateTarget(root, arg); err != nil {
		return nil, err
	}

	// Make absolute arguments project-relative so the runner, which
	// executes from the project root, still finds them.
	if filepath.IsAbs(arg) {
		rel, err := filepath.Rel(root, arg)
		if err != nil {
			return nil, fmt.Errorf("path %s is outside the project", arg)
		}
		arg = rel
	}

	// Plain paths pass through untouched so the tools report them the
	// way the user wrote them.
	if !strings.ContainsAny(arg, "*?[{") {
		if _, err := os.Stat(filepath.Join(root, arg)); err != nil {
			return nil, fmt.Errorf("path %s does not exist", arg)
		}
		return []string{arg}, nil
	}

	matches, err := doublestar.Glob(os.DirFS(root), filepath.ToSlash(arg))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", arg, err)
	}
	return matches, nil
}

// validateTarget rejects paths escaping the project root.
func validateTarget(root, arg string) error {
	if filepath.IsAbs(arg) {
		rel, err := filepath.Rel(root, arg)
		if err != nil || strings.HasPrefix(rel, "..") {
			return fmt.Errorf("path %s is outside the project", arg)
		}
		return nil
	}
	clean := filepath.Clean(arg)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path %s is outside the project", arg)
	}
	return nil
}
