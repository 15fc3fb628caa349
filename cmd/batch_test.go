package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/mlihgenel/slidecast-cli/internal/assemble"
	"github.com/mlihgenel/slidecast-cli/internal/batch"
	"github.com/mlihgenel/slidecast-cli/internal/engine"
	"github.com/mlihgenel/slidecast-cli/internal/render"
	"github.com/mlihgenel/slidecast-cli/internal/script"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte("- a.mp3\n0:00-0:20\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func TestBuildBatchJobsReservesDuplicateOutputs(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a", "lecture.txt")
	b := filepath.Join(dir, "b", "lecture.txt")
	touch(t, a)
	touch(t, b)
	out := filepath.Join(dir, "out")

	jobs, err := buildBatchJobs([]string{a, b}, out, render.ConflictOverwrite, true)
	if err != nil {
		t.Fatalf("buildBatchJobs failed: %v", err)
	}
	if jobs[0].OutputPath != filepath.Join(out, "lecture.mp4") {
		t.Fatalf("unexpected first output: %s", jobs[0].OutputPath)
	}
	if jobs[1].OutputPath != filepath.Join(out, "lecture (1).mp4") {
		t.Fatalf("second script should get a distinct output, got %s", jobs[1].OutputPath)
	}
	if jobs[1].AudioPath != filepath.Join(out, "lecture (1).wav") {
		t.Fatalf("unexpected audio path: %s", jobs[1].AudioPath)
	}
}

func TestBuildBatchJobsSkipExisting(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "lecture.txt")
	touch(t, src)
	touch(t, filepath.Join(dir, "lecture.mp4"))

	jobs, err := buildBatchJobs([]string{src}, "", render.ConflictSkip, false)
	if err != nil {
		t.Fatalf("buildBatchJobs failed: %v", err)
	}
	if jobs[0].SkipReason != "output_exists" {
		t.Fatalf("expected skip, got %+v", jobs[0])
	}

	jobs, err = buildBatchJobs([]string{src}, "", render.ConflictVersioned, false)
	if err != nil {
		t.Fatalf("buildBatchJobs failed: %v", err)
	}
	if jobs[0].OutputPath != filepath.Join(dir, "lecture (1).mp4") {
		t.Fatalf("expected versioned output, got %s", jobs[0].OutputPath)
	}
}

func TestCollectScriptsFromGlob(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.cast", "c.mp3"} {
		touch(t, filepath.Join(dir, name))
	}

	files, err := collectScripts(filepath.Join(dir, "*"), false)
	if err != nil {
		t.Fatalf("collectScripts failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 scripts, got %v", files)
	}

	files, err = collectScripts(dir, false)
	if err != nil || len(files) != 2 {
		t.Fatalf("directory mode should find 2 scripts, got %v (%v)", files, err)
	}
}

func TestRetryableRenderError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{&script.ParseError{Line: 2, Text: "x", Msg: "bozuk"}, false},
		{assemble.ErrEmptyScript, false},
		{fmt.Errorf("wrap: %w", render.ErrOutputLocked), false},
		{context.Canceled, false},
		{fmt.Errorf("%w: ffmpeg exit 1", assemble.ErrJoin), true},
		{errors.New("disk dolu"), true},
	}
	for _, tc := range cases {
		if got := retryableRenderError(tc.err); got != tc.want {
			t.Errorf("retryableRenderError(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestBatchRenderFuncUsesJobPaths(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "lecture.txt")
	if err := os.WriteFile(src, []byte("- a.mp3\n0:00-0:20\n0:40-1:00\n"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	settings := renderSettings{image: "bg.png", fadeMargin: 5, fragmentFormat: "wav", workDir: dir}
	job := batch.Job{
		ScriptPath: src,
		OutputPath: filepath.Join(dir, "out", "lecture.mp4"),
		AudioPath:  filepath.Join(dir, "out", "lecture.wav"),
	}

	res, err := batchRenderFunc(engine.NewRecorder(true), settings)(context.Background(), job)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if res.Output != job.OutputPath || res.Audio != job.AudioPath {
		t.Fatalf("job paths not used: %+v", res)
	}
	// kesitler 5s genişler: 25 + 25 - 5
	if res.ExpectedSeconds != 45 {
		t.Fatalf("unexpected duration: %d", res.ExpectedSeconds)
	}
	for _, p := range []string{job.OutputPath, job.AudioPath} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected %s: %v", p, err)
		}
	}
}
