package main

import (
	"strings"
	"testing"
)

func TestRunRejectsInvalidLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "shouty")

	err := run(true)
	if err == nil {
		t.Fatal("run() returned nil, want logging configuration error")
	}
	if !strings.Contains(err.Error(), "configure logging") {
		t.Fatalf("run() returned %v, want a configure logging error", err)
	}
}
