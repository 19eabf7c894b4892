package commands

import "fmt"

// ExitError carries an underlying tool's exit code up to main without
// printing anything further: the tool's own output is the diagnostic.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// exitIfFailed converts a non-zero tool exit code into an ExitError.
func exitIfFailed(code int) error {
	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}
