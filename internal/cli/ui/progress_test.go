package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSpinner_SuccessMessage(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, SpinnerOptions{Message: "syncing environment", NoColor: true})
	s.Start()
	time.Sleep(10 * time.Millisecond)
	s.Success("environment synced")

	if !strings.Contains(buf.String(), "✓ environment synced") {
		t.Errorf("expected success message, got %q", buf.String())
	}
}

func TestSpinner_ErrorMessage(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, SpinnerOptions{Message: "running checks", NoColor: true})
	s.Start()
	time.Sleep(10 * time.Millisecond)
	s.Error("checks failed")

	if !strings.Contains(buf.String(), "checks failed") {
		t.Errorf("expected error message, got %q", buf.String())
	}
}

func TestSpinner_StopWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, SpinnerOptions{Message: "idle", NoColor: true})
	// Must not block or panic
	s.Stop()
}

func TestWithSpinner_Success(t *testing.T) {
	var buf bytes.Buffer
	err := WithSpinner(&buf, "locking dependencies", true, func() error {
		return nil
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(buf.String(), "✓ locking dependencies") {
		t.Errorf("expected success output, got %q", buf.String())
	}
}

func TestWithSpinner_Failure(t *testing.T) {
	var buf bytes.Buffer
	wantErr := errors.New("resolver exploded")
	err := WithSpinner(&buf, "locking dependencies", true, func() error {
		return wantErr
	})

	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if !strings.Contains(buf.String(), "locking dependencies failed") {
		t.Errorf("expected failure output, got %q", buf.String())
	}
}
