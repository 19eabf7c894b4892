package commands

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeLock(t *testing.T, root, version string) {
	t.Helper()
	lock := "version = 1\n\n[[package]]\nname = \"requests\"\nversion = \"" + version + "\"\n"
	if err := os.WriteFile(filepath.Join(root, "uv.lock"), []byte(lock), 0644); err != nil {
		t.Fatalf("Failed to write lock: %v", err)
	}
}

func TestDepsCommand_ListsLockedVersions(t *testing.T) {
	root := declaredProject(t)
	writeLock(t, root, "2.32.0")
	chdir(t, root)

	output, _, err := runStreams(t, NewDepsCommand())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, want := range []string{"DEPENDENCY", "requests", ">=2.31", "2.32.0", "runtime"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected table to contain %q, got:\n%s", want, output)
		}
	}
	if !strings.Contains(output, "lock file reflects the manifest") {
		t.Errorf("Expected verification summary, got:\n%s", output)
	}
}

func TestDepsCommand_ExitsNonZeroOnDrift(t *testing.T) {
	root := declaredProject(t)
	writeLock(t, root, "2.0.0")
	chdir(t, root)

	_, errOut, err := runStreams(t, NewDepsCommand())

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Expected *ExitError on drift, got %v", err)
	}
	if exitErr.Code != 1 {
		t.Errorf("Expected exit code 1, got %d", exitErr.Code)
	}
	if !strings.Contains(errOut, "requests locked at 2.0.0") {
		t.Errorf("Expected the drifted dependency named, got:\n%s", errOut)
	}
}

func TestDepsCommand_MissingLock(t *testing.T) {
	root := declaredProject(t)
	chdir(t, root)

	_, _, err := runStreams(t, NewDepsCommand())
	if err == nil {
		t.Fatal("Expected error without a lock file")
	}
	if !strings.Contains(err.Error(), "slate sync") {
		t.Errorf("Expected the error to point at slate sync, got %v", err)
	}
}
