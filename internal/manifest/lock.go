package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// LockFilename is the resolved-versions file written by the package manager.
const LockFilename = "uv.lock"

// Lockfile is the decoded uv.lock: the exact resolved version of every
// package in the environment. slate never writes this file, the package
// manager owns it.
type Lockfile struct {
	Version        int       `toml:"version"`
	Revision       int       `toml:"revision"`
	RequiresPython string    `toml:"requires-python"`
	Packages       []Package `toml:"package"`
}

// Package is one [[package]] entry in the lock file.
type Package struct {
	Name    string        `toml:"name"`
	Version string        `toml:"version"`
	Source  PackageSource `toml:"source"`
}

// PackageSource records where a locked package resolves from.
type PackageSource struct {
	Registry string `toml:"registry"`
	Editable string `toml:"editable"`
	Virtual  string `toml:"virtual"`
}

// LoadLock reads and decodes a lock file.
func LoadLock(path string) (*Lockfile, error) {
	var l Lockfile
	if _, err := toml.DecodeFile(path, &l); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return &l, nil
}

// LoadLockDir loads the lock file from a project root, returning
// os.ErrNotExist when no lock has been generated yet.
func LoadLockDir(root string) (*Lockfile, error) {
	path := filepath.Join(root, LockFilename)
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return LoadLock(path)
}

// Find returns the locked package with the given name, if present.
func (l *Lockfile) Find(name string) (Package, bool) {
	name = NormalizeName(name)
	for _, pkg := range l.Packages {
		if NormalizeName(pkg.Name) == name {
			return pkg, true
		}
	}
	return Package{}, false
}
