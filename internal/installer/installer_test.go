package installer

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestInstallInfoFor(t *testing.T) {
	apt := installInfoFor("apt")
	if !apt.Supported || apt.Command != "sudo" {
		t.Fatalf("unexpected apt info: %#v", apt)
	}
	if apt.Description != "sudo apt install -y ffmpeg" {
		t.Fatalf("unexpected description: %s", apt.Description)
	}

	none := installInfoFor("")
	if none.Supported || none.ManualURL == "" {
		t.Fatalf("unknown package manager should only offer a manual URL: %#v", none)
	}
}

func TestCheckUsesExplicitPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stub requires a POSIX shell")
	}
	dir := t.TempDir()
	stub := filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0755); err != nil {
		t.Fatalf("write stub failed: %v", err)
	}

	statuses := Check(stub)
	if len(statuses) != 2 {
		t.Fatalf("expected ffmpeg and ffprobe, got %d", len(statuses))
	}
	if !statuses[0].Found || statuses[0].Path != stub {
		t.Fatalf("explicit ffmpeg should be found: %#v", statuses[0])
	}

	missing := Check(filepath.Join(dir, "nope"))
	if missing[0].Found || missing[0].Error == "" {
		t.Fatalf("missing explicit path should be reported")
	}
	names := Missing(missing)
	if len(names) == 0 || names[0] != "ffmpeg" {
		t.Fatalf("unexpected missing list: %v", names)
	}
}
