package main

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestRunUsageErrors(t *testing.T) {
	for _, args := range [][]string{
		nil,
		{"--url", "ftp://host/stream"},
		{"--url", "http://host/stream", "--log-level", "loud"},
		{"--url", "http://host/stream", "extra"},
		{"--no-such-flag"},
	} {
		err := run(args)
		var usage *usageError
		if !errors.As(err, &usage) || usage.ExitCode() != 2 {
			t.Errorf("run(%q) = %v, want usage error", args, err)
		}
	}
}

func TestRunConfigErrorIsFatal(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "hwdash.yaml")
	err := run([]string{"--url", "http://host/stream", "--config", missing})
	var usage *usageError
	if err == nil || errors.As(err, &usage) {
		t.Fatalf("err=%v, want a plain startup error", err)
	}
}

func TestRunVersion(t *testing.T) {
	if err := run([]string{"--version"}); err != nil {
		t.Fatal(err)
	}
}
