package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalizeConflictPolicy(t *testing.T) {
	if got := NormalizeConflictPolicy(""); got != ConflictOverwrite {
		t.Fatalf("expected default policy %s, got %s", ConflictOverwrite, got)
	}
	if got := NormalizeConflictPolicy("VERSIONED"); got != ConflictVersioned {
		t.Fatalf("expected versioned, got %s", got)
	}
	if got := NormalizeConflictPolicy("bad"); got != "" {
		t.Fatalf("expected empty for invalid policy, got %s", got)
	}
}

func TestResolveOutputPathConflictOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.mp4")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got, skip, err := ResolveOutputPathConflict(path, ConflictOverwrite)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if skip || got != path {
		t.Fatalf("unexpected result: %s skip=%v", got, skip)
	}
}

func TestResolveOutputPathConflictSkip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.mp4")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	_, skip, err := ResolveOutputPathConflict(path, ConflictSkip)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !skip {
		t.Fatalf("skip policy should skip")
	}

	// Mevcut olmayan dosya hiçbir policy'de atlanmaz
	missing := filepath.Join(dir, "new.mp4")
	got, skip, err := ResolveOutputPathConflict(missing, ConflictSkip)
	if err != nil || skip || got != missing {
		t.Fatalf("unexpected result for missing file: %s %v %v", got, skip, err)
	}
}

func TestResolveOutputPathConflictVersioned(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.mp4")
	for _, p := range []string{path, filepath.Join(dir, "out (1).mp4")} {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}

	got, skip, err := ResolveOutputPathConflict(path, ConflictVersioned)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if skip {
		t.Fatalf("versioned should not skip")
	}
	if want := filepath.Join(dir, "out (2).mp4"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestResolveOutputPathConflictInvalidPolicy(t *testing.T) {
	if _, _, err := ResolveOutputPathConflict("out.mp4", "invalid"); err == nil {
		t.Fatalf("expected error for invalid policy")
	}
}

func TestDefaultOutputFor(t *testing.T) {
	got := DefaultOutputFor(filepath.Join("talks", "week1.txt"), "")
	if got != filepath.Join("talks", "week1.mp4") {
		t.Fatalf("unexpected output: %s", got)
	}
	got = DefaultOutputFor(filepath.Join("talks", "week1.txt"), "dist")
	if got != filepath.Join("dist", "week1.mp4") {
		t.Fatalf("unexpected output: %s", got)
	}
}

func TestReadScriptsConcatenatesInOrder(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(a, []byte("- a.wav\n0:00-0:05\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := os.WriteFile(b, []byte("- b.wav\n0:00-0:05"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	lines, err := ReadScripts([]string{a, "-", b}, strings.NewReader("# stdin\n"))
	if err != nil {
		t.Fatalf("ReadScripts failed: %v", err)
	}
	want := "- a.wav|0:00-0:05|# stdin|- b.wav|0:00-0:05"
	if got := strings.Join(lines, "|"); got != want {
		t.Fatalf("unexpected lines: %s", got)
	}

	if _, err := ReadScripts([]string{filepath.Join(dir, "missing.txt")}, nil); err == nil {
		t.Fatalf("expected error for missing script")
	}
}
