package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Filename is the manifest file name at the project root.
const Filename = "pyproject.toml"

// Manifest is the decoded pyproject.toml. Tool tables are kept opaque:
// slate never rewrites them, the linter and type checker read them directly.
type Manifest struct {
	Project          Project             `toml:"project"`
	DependencyGroups map[string][]string `toml:"dependency-groups"`
	Tool             map[string]any      `toml:"tool"`
}

// Project is the [project] table.
type Project struct {
	Name           string   `toml:"name"`
	Version        string   `toml:"version"`
	Description    string   `toml:"description"`
	RequiresPython string   `toml:"requires-python"`
	Dependencies   []string `toml:"dependencies"`
}

// Load reads and decodes the manifest at the given path.
func Load(path string) (*Manifest, error) {
	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	if m.Project.Name == "" {
		return nil, fmt.Errorf("%s has no [project] name", filepath.Base(path))
	}
	return &m, nil
}

// LoadDir loads the manifest from a project root directory.
func LoadDir(root string) (*Manifest, error) {
	return Load(filepath.Join(root, Filename))
}

// Requirements returns the parsed runtime dependencies.
func (m *Manifest) Requirements() ([]Requirement, error) {
	return ParseRequirements(m.Project.Dependencies)
}

// DevRequirements returns the parsed dependencies of the "dev" group.
func (m *Manifest) DevRequirements() ([]Requirement, error) {
	return ParseRequirements(m.DependencyGroups["dev"])
}

// AllRequirements returns runtime dependencies followed by every
// dependency group, in declaration order within each list.
func (m *Manifest) AllRequirements() ([]Requirement, error) {
	reqs, err := m.Requirements()
	if err != nil {
		return nil, err
	}
	for group, deps := range m.DependencyGroups {
		parsed, err := ParseRequirements(deps)
		if err != nil {
			return nil, fmt.Errorf("dependency group %q: %w", group, err)
		}
		reqs = append(reqs, parsed...)
	}
	return reqs, nil
}

// ModuleName returns the import name of the project package
// (PEP 503 name with dashes replaced by underscores).
func (m *Manifest) ModuleName() string {
	return strings.ReplaceAll(NormalizeName(m.Project.Name), "-", "_")
}

// HasToolTable reports whether a [tool.<name>] table is present.
func (m *Manifest) HasToolTable(name string) bool {
	_, ok := m.Tool[name]
	return ok
}

// ParseRequirements parses a list of requirement strings.
func ParseRequirements(specs []string) ([]Requirement, error) {
	reqs := make([]Requirement, 0, len(specs))
	for _, spec := range specs {
		req, err := ParseRequirement(spec)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// FindRoot walks up from dir looking for a pyproject.toml.
func FindRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, Filename)); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not inside a Python project (no %s found)", Filename)
		}
		dir = parent
	}
}
