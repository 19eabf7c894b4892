package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePyproject = `[project]
name = "demo-app"
version = "0.1.0"
description = "Example project"
requires-python = ">=3.12"
dependencies = [
    "requests>=2.31",
    "rich",
]

[dependency-groups]
dev = [
    "ruff>=0.8",
    "ty>=0.0.1a8",
]

[tool.ruff]
line-length = 100

[tool.ty.environment]
python-version = "3.12"
`

const sampleLock = `version = 1
revision = 2
requires-python = ">=3.12"

[[package]]
name = "demo-app"
version = "0.1.0"
source = { editable = "." }

[[package]]
name = "requests"
version = "2.32.5"
source = { registry = "https://pypi.org/simple" }

[[package]]
name = "rich"
version = "13.9.4"
source = { registry = "https://pypi.org/simple" }

[[package]]
name = "ruff"
version = "0.8.6"
source = { registry = "https://pypi.org/simple" }

[[package]]
name = "ty"
version = "0.0.1a8"
source = { registry = "https://pypi.org/simple" }
`

func writeProject(t *testing.T, pyproject, lock string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, Filename), []byte(pyproject), 0644))
	if lock != "" {
		require.NoError(t, os.WriteFile(filepath.Join(root, LockFilename), []byte(lock), 0644))
	}
	return root
}

func TestLoadDir(t *testing.T) {
	root := writeProject(t, samplePyproject, "")

	m, err := LoadDir(root)
	require.NoError(t, err)

	assert.Equal(t, "demo-app", m.Project.Name)
	assert.Equal(t, "0.1.0", m.Project.Version)
	assert.Equal(t, ">=3.12", m.Project.RequiresPython)
	assert.Equal(t, "demo_app", m.ModuleName())
	assert.True(t, m.HasToolTable("ruff"))
	assert.True(t, m.HasToolTable("ty"))
	assert.False(t, m.HasToolTable("mypy"))

	reqs, err := m.Requirements()
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, "requests", reqs[0].Name)

	dev, err := m.DevRequirements()
	require.NoError(t, err)
	require.Len(t, dev, 2)
	assert.Equal(t, "ruff", dev[0].Name)
}

func TestLoad_MissingProjectName(t *testing.T) {
	root := writeProject(t, "[tool.ruff]\nline-length = 88\n", "")
	_, err := LoadDir(root)
	assert.ErrorContains(t, err, "no [project] name")
}

func TestFindRoot(t *testing.T) {
	root := writeProject(t, samplePyproject, "")
	nested := filepath.Join(root, "src", "demo_app")
	require.NoError(t, os.MkdirAll(nested, 0755))

	found, err := FindRoot(nested)
	require.NoError(t, err)
	resolved, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	foundResolved, err := filepath.EvalSymlinks(found)
	require.NoError(t, err)
	assert.Equal(t, resolved, foundResolved)
}

func TestFindRoot_NotAProject(t *testing.T) {
	_, err := FindRoot(t.TempDir())
	assert.ErrorContains(t, err, "no pyproject.toml")
}

func TestLoadLockDir(t *testing.T) {
	root := writeProject(t, samplePyproject, sampleLock)

	l, err := LoadLockDir(root)
	require.NoError(t, err)
	assert.Equal(t, 1, l.Version)
	assert.Len(t, l.Packages, 5)

	pkg, ok := l.Find("Requests")
	require.True(t, ok)
	assert.Equal(t, "2.32.5", pkg.Version)

	_, ok = l.Find("missing")
	assert.False(t, ok)
}

func TestLoadLockDir_NoLock(t *testing.T) {
	root := writeProject(t, samplePyproject, "")
	_, err := LoadLockDir(root)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestVerify_Consistent(t *testing.T) {
	root := writeProject(t, samplePyproject, sampleLock)

	m, err := LoadDir(root)
	require.NoError(t, err)
	l, err := LoadLockDir(root)
	require.NoError(t, err)

	report, err := Verify(m, l)
	require.NoError(t, err)
	assert.True(t, report.Ok())
	assert.Equal(t, 4, report.Checked)
	assert.Contains(t, report.String(), "reflects the manifest")
}

func TestVerify_Drift(t *testing.T) {
	drifted := `version = 1

[[package]]
name = "requests"
version = "2.30.0"
source = { registry = "https://pypi.org/simple" }

[[package]]
name = "ruff"
version = "0.8.6"
source = { registry = "https://pypi.org/simple" }

[[package]]
name = "ty"
version = "0.0.1a8"
source = { registry = "https://pypi.org/simple" }
`
	root := writeProject(t, samplePyproject, drifted)

	m, err := LoadDir(root)
	require.NoError(t, err)
	l, err := LoadLockDir(root)
	require.NoError(t, err)

	report, err := Verify(m, l)
	require.NoError(t, err)
	assert.False(t, report.Ok())
	require.Len(t, report.Drift, 2)

	// requests is locked below its constraint, rich is missing entirely.
	byName := map[string]Drift{}
	for _, d := range report.Drift {
		byName[d.Name] = d
	}
	assert.Equal(t, "2.30.0", byName["requests"].Locked)
	assert.Empty(t, byName["rich"].Locked)
	assert.Contains(t, report.String(), "out of date")
}
