package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/slatehq/slate/internal/manifest"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to chdir to %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(orig); err != nil {
			t.Fatalf("Failed to restore working directory: %v", err)
		}
	})
}

func runNewCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewNewCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestValidateProjectName(t *testing.T) {
	valid := []string{"app", "my-service", "my_service", "App2"}
	for _, name := range valid {
		if err := validateProjectName(name); err != nil {
			t.Errorf("Expected %q to be valid, got %v", name, err)
		}
	}

	invalid := []string{"", "2app", "-app", "/abs/path", "has space", "a.b", strings.Repeat("x", 101)}
	for _, name := range invalid {
		if err := validateProjectName(name); err == nil {
			t.Errorf("Expected %q to be rejected", name)
		}
	}
}

func TestNewCommand_ScaffoldsProject(t *testing.T) {
	chdir(t, t.TempDir())

	output, err := runNewCommand(t, "my-service", "--description", "A test service")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := []string{
		"pyproject.toml",
		"slate.yml",
		".gitignore",
		"README.md",
		"AGENTS.md",
		"CLAUDE.md",
		filepath.Join("src", "my_service", "__init__.py"),
		filepath.Join("src", "my_service", "__main__.py"),
		filepath.Join("tests", "test_main.py"),
	}
	for _, name := range expected {
		if _, err := os.Stat(filepath.Join("my-service", name)); err != nil {
			t.Errorf("Expected %s to exist: %v", name, err)
		}
	}

	if !strings.Contains(output, "Created project: my-service") {
		t.Errorf("Expected success message, got:\n%s", output)
	}
	if !strings.Contains(output, "slate check") {
		t.Errorf("Expected next-steps hint, got:\n%s", output)
	}
}

func TestNewCommand_ManifestContents(t *testing.T) {
	chdir(t, t.TempDir())

	if _, err := runNewCommand(t, "my-service", "--python", "3.13"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	m, err := manifest.LoadDir("my-service")
	if err != nil {
		t.Fatalf("Scaffolded manifest failed to load: %v", err)
	}

	if m.Project.Name != "my-service" {
		t.Errorf("Expected project name my-service, got %q", m.Project.Name)
	}
	if m.Project.RequiresPython != ">=3.13" {
		t.Errorf("Expected requires-python >=3.13, got %q", m.Project.RequiresPython)
	}
	if m.ModuleName() != "my_service" {
		t.Errorf("Expected module name my_service, got %q", m.ModuleName())
	}

	dev := m.DependencyGroups["dev"]
	joined := strings.Join(dev, " ")
	if !strings.Contains(joined, "ruff") || !strings.Contains(joined, "ty") {
		t.Errorf("Expected dev group to pin the linter and type checker, got %v", dev)
	}

	if !m.HasToolTable("ruff") || !m.HasToolTable("ty") {
		t.Error("Expected [tool.ruff] and [tool.ty] tables in the manifest")
	}

	raw, err := os.ReadFile(filepath.Join("my-service", "pyproject.toml"))
	if err != nil {
		t.Fatalf("Failed to read manifest: %v", err)
	}
	if !strings.Contains(string(raw), `target-version = "py313"`) {
		t.Errorf("Expected ruff target-version py313, got:\n%s", raw)
	}
}

func TestNewCommand_WorkflowDocsDescribePipeline(t *testing.T) {
	chdir(t, t.TempDir())

	if _, err := runNewCommand(t, "my-service"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join("my-service", "AGENTS.md"))
	if err != nil {
		t.Fatalf("Failed to read AGENTS.md: %v", err)
	}
	doc := string(raw)

	for _, want := range []string{"slate check", "ruff check --fix", "ruff format", "ty check", "uvx"} {
		if !strings.Contains(doc, want) {
			t.Errorf("Expected AGENTS.md to mention %q", want)
		}
	}

	// Lint runs before format: fixes can change layout.
	if strings.Index(doc, "ruff check --fix") > strings.Index(doc, "ruff format") {
		t.Error("Expected AGENTS.md to list lint before format")
	}
}

func TestNewCommand_RefusesExistingDirectory(t *testing.T) {
	chdir(t, t.TempDir())

	if err := os.Mkdir("taken", 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	if _, err := runNewCommand(t, "taken"); err == nil {
		t.Error("Expected error for existing directory")
	}
}

func TestNewCommand_RejectsInvalidName(t *testing.T) {
	chdir(t, t.TempDir())

	if _, err := runNewCommand(t, "2bad"); err == nil {
		t.Error("Expected error for invalid project name")
	}
}
