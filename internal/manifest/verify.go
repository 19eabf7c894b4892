package manifest

import (
	"fmt"
	"strings"
)

// Drift describes one dependency whose lock entry does not reflect the
// manifest.
type Drift struct {
	Name       string
	Constraint string
	Locked     string // empty when the package is missing from the lock
}

func (d Drift) String() string {
	if d.Locked == "" {
		return fmt.Sprintf("%s (%s) is not in the lock file", d.Name, d.Constraint)
	}
	return fmt.Sprintf("%s locked at %s does not satisfy %s", d.Name, d.Locked, d.Constraint)
}

// VerifyReport is the result of checking the lock file against the
// manifest. The invariant is: every declared dependency resolves in the
// lock to a version satisfying its constraint.
type VerifyReport struct {
	Checked int
	Drift   []Drift
}

// Ok reports whether the lock file reflects the manifest.
func (r VerifyReport) Ok() bool { return len(r.Drift) == 0 }

func (r VerifyReport) String() string {
	if r.Ok() {
		return fmt.Sprintf("lock file reflects the manifest (%d dependencies)", r.Checked)
	}
	lines := make([]string, 0, len(r.Drift)+1)
	lines = append(lines, fmt.Sprintf("lock file out of date (%d of %d dependencies):", len(r.Drift), r.Checked))
	for _, d := range r.Drift {
		lines = append(lines, "  "+d.String())
	}
	return strings.Join(lines, "\n")
}

// Verify checks every manifest requirement, runtime and grouped,
// against the lock file.
func Verify(m *Manifest, l *Lockfile) (VerifyReport, error) {
	reqs, err := m.AllRequirements()
	if err != nil {
		return VerifyReport{}, err
	}
	report := VerifyReport{Checked: len(reqs)}
	for _, req := range reqs {
		pkg, ok := l.Find(req.Name)
		if !ok {
			report.Drift = append(report.Drift, Drift{Name: req.Name, Constraint: req.Constraint()})
			continue
		}
		ver, err := ParseVersion(pkg.Version)
		if err != nil {
			return VerifyReport{}, fmt.Errorf("locked version of %s: %w", req.Name, err)
		}
		if !req.Satisfies(ver) {
			report.Drift = append(report.Drift, Drift{
				Name:       req.Name,
				Constraint: req.Constraint(),
				Locked:     pkg.Version,
			})
		}
	}
	return report, nil
}
