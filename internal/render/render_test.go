package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"
	"github.com/mlihgenel/slidecast-cli/internal/assemble"
	"github.com/mlihgenel/slidecast-cli/internal/engine"
	"github.com/mlihgenel/slidecast-cli/internal/script"
)

const lectureScript = `# lecture
- intro.mp3
0:00-0:30
1:00-1:40
- demo.mp3
0:10-0:50
`

func writeScript(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "lecture.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write script failed: %v", err)
	}
	return path
}

func TestRunProducesVideoAndCleansUp(t *testing.T) {
	dir := t.TempDir()
	workDir := filepath.Join(dir, "work")
	opts := Options{
		Scripts:    []string{writeScript(t, dir, lectureScript)},
		Audio:      filepath.Join(dir, "build", "track.mp3"),
		Image:      "bg.png",
		Output:     filepath.Join(dir, "build", "lecture.mp4"),
		Fade:       true,
		FadeMargin: 5,
		WorkDir:    workDir,
	}
	var steps []assemble.Step
	opts.OnStep = func(s assemble.Step) { steps = append(steps, s) }

	rec := engine.NewRecorder(true)
	result, err := Run(context.Background(), rec, opts)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// 3 extract, 1 crossfade (intro), 1 crossfade (volumes), 1 compose
	if len(result.Steps) != 6 || len(steps) != 6 {
		t.Fatalf("unexpected step count: %d/%d", len(result.Steps), len(steps))
	}
	if last := result.Steps[len(result.Steps)-1]; last.Op != engine.OpCompose {
		t.Fatalf("last step should be compose, got %s", last.Op)
	}
	// (35 + 45 - 5) + 45 - 5
	if result.ExpectedSeconds != 115 {
		t.Fatalf("unexpected expected seconds: %d", result.ExpectedSeconds)
	}
	if result.Sources != 2 || result.Ranges != 3 {
		t.Fatalf("unexpected counts: %d/%d", result.Sources, result.Ranges)
	}
	for _, p := range []string{opts.Audio, opts.Output} {
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("expected %s to exist: %v", p, err)
		}
	}
	if _, err := os.Stat(opts.Output + ".lock"); !os.IsNotExist(err) {
		t.Fatalf("lock file should be removed")
	}
	entries, err := os.ReadDir(workDir)
	if err != nil {
		t.Fatalf("read work dir failed: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("work dir should be empty after run, got %d entries", len(entries))
	}
}

func TestRunWithoutAudioKeepsTrackTemporary(t *testing.T) {
	dir := t.TempDir()
	workDir := filepath.Join(dir, "work")
	opts := Options{
		Scripts: []string{writeScript(t, dir, "- a.wav\n0:00-0:10\n")},
		Output:  filepath.Join(dir, "out.mp4"),
		WorkDir: workDir,
	}
	result, err := Run(context.Background(), engine.NewRecorder(true), opts)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.ExpectedSeconds != 10 {
		t.Fatalf("unexpected duration: %d", result.ExpectedSeconds)
	}
	entries, _ := os.ReadDir(workDir)
	if len(entries) != 0 {
		t.Fatalf("temporary track should be removed with the work dir")
	}
}

func TestRunReadsStdin(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		Stdin:   strings.NewReader("- a.wav\n0:00-0:05\n0:10-0:15\n"),
		Output:  filepath.Join(dir, "out.mp4"),
		WorkDir: dir,
	}
	rec := engine.NewRecorder(true)
	result, err := Run(context.Background(), rec, opts)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.ExpectedSeconds != 10 {
		t.Fatalf("unexpected duration: %d", result.ExpectedSeconds)
	}
	ops := strings.Join(rec.Ops(), ",")
	if ops != "extract,extract,concat,compose" {
		t.Fatalf("unexpected ops: %s", ops)
	}
}

func TestRunParseError(t *testing.T) {
	opts := Options{
		Stdin:  strings.NewReader("0:00-0:05\n- a.wav\n"),
		Output: filepath.Join(t.TempDir(), "out.mp4"),
	}
	rec := engine.NewRecorder(true)
	_, err := Run(context.Background(), rec, opts)
	var perr *script.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if perr.Line != 1 {
		t.Fatalf("unexpected line: %d", perr.Line)
	}
	if !IsUserError(err) {
		t.Fatalf("parse error should be a user error")
	}
	if len(rec.Calls()) != 0 {
		t.Fatalf("engine must not be called on parse error")
	}
}

func TestRunEmptyScript(t *testing.T) {
	opts := Options{
		Stdin:  strings.NewReader("# nothing\n- a.wav\n"),
		Output: filepath.Join(t.TempDir(), "out.mp4"),
	}
	result, err := Run(context.Background(), engine.NewRecorder(true), opts)
	if !errors.Is(err, assemble.ErrEmptyScript) {
		t.Fatalf("expected ErrEmptyScript, got %v", err)
	}
	if result.Error == "" {
		t.Fatalf("result should carry the error text")
	}
}

func TestRunSkipsExistingOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.mp4")
	if err := os.WriteFile(out, []byte("old"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	opts := Options{
		Stdin:      strings.NewReader("- a.wav\n0:00-0:05\n"),
		Output:     out,
		OnConflict: ConflictSkip,
		WorkDir:    dir,
	}
	rec := engine.NewRecorder(true)
	result, err := Run(context.Background(), rec, opts)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !result.Skipped {
		t.Fatalf("expected skipped result")
	}
	if len(rec.Calls()) != 0 {
		t.Fatalf("skipped render must not call the engine")
	}
	data, _ := os.ReadFile(out)
	if string(data) != "old" {
		t.Fatalf("existing output must be untouched")
	}
}

func TestRunVersionedOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.mp4")
	if err := os.WriteFile(out, []byte("old"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	opts := Options{
		Stdin:      strings.NewReader("- a.wav\n0:00-0:05\n"),
		Output:     out,
		OnConflict: ConflictVersioned,
		WorkDir:    dir,
	}
	result, err := Run(context.Background(), engine.NewRecorder(true), opts)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	want := filepath.Join(dir, "out (1).mp4")
	if result.Output != want {
		t.Fatalf("expected %s, got %s", want, result.Output)
	}
}

func TestRunRejectsLockedOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.mp4")
	held := flock.New(out + ".lock")
	if ok, err := held.TryLock(); err != nil || !ok {
		t.Fatalf("could not take lock: %v", err)
	}
	defer held.Unlock()

	opts := Options{
		Stdin:   strings.NewReader("- a.wav\n0:00-0:05\n"),
		Output:  out,
		WorkDir: dir,
	}
	_, err := Run(context.Background(), engine.NewRecorder(true), opts)
	if !errors.Is(err, ErrOutputLocked) {
		t.Fatalf("expected ErrOutputLocked, got %v", err)
	}
}

func TestRunComposeFailureKeepsSteps(t *testing.T) {
	dir := t.TempDir()
	rec := engine.NewRecorder(true)
	rec.FailOn = func(c engine.Call) error {
		if c.Op == engine.OpCompose {
			return errors.New("bg.png: No such file or directory")
		}
		return nil
	}
	opts := Options{
		Stdin:   strings.NewReader("- a.wav\n0:00-0:05\n"),
		Output:  filepath.Join(dir, "out.mp4"),
		WorkDir: filepath.Join(dir, "work"),
	}
	result, err := Run(context.Background(), rec, opts)
	if !errors.Is(err, assemble.ErrCompose) {
		t.Fatalf("expected ErrCompose, got %v", err)
	}
	if len(result.Steps) != 2 || result.Steps[1].Success {
		t.Fatalf("failed compose step should be recorded: %#v", result.Steps)
	}
	entries, _ := os.ReadDir(opts.WorkDir)
	if len(entries) != 0 {
		t.Fatalf("work dir should be cleaned on failure")
	}
}

func TestRunVerifyWarnsOnMismatch(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		Stdin:   strings.NewReader("- a.wav\n0:00-0:20\n"),
		Output:  filepath.Join(dir, "out.mp4"),
		WorkDir: dir,
		Verify:  true,
		Probe: func(ctx context.Context, path string) (float64, error) {
			return 12.0, nil
		},
	}
	var warnings []string
	opts.OnWarning = func(msg string) { warnings = append(warnings, msg) }

	result, err := Run(context.Background(), engine.NewRecorder(true), opts)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.MeasuredSeconds != 12.0 {
		t.Fatalf("unexpected measured: %v", result.MeasuredSeconds)
	}
	if len(warnings) != 1 || len(result.Warnings) != 1 {
		t.Fatalf("expected one mismatch warning, got %v", warnings)
	}

	opts.Stdin = strings.NewReader("- a.wav\n0:00-0:20\n")
	opts.OnConflict = ConflictOverwrite
	opts.Probe = func(ctx context.Context, path string) (float64, error) { return 20.4, nil }
	warnings = nil
	if _, err := Run(context.Background(), engine.NewRecorder(true), opts); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("no warning expected within tolerance, got %v", warnings)
	}
}

func TestBuildPlanDoesNotWrite(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		Scripts:    []string{writeScript(t, dir, lectureScript)},
		Output:     filepath.Join(dir, "out", "lecture.mp4"),
		Audio:      filepath.Join(dir, "out", "track.mp3"),
		Fade:       true,
		FadeMargin: 5,
		WorkDir:    filepath.Join(dir, "work"),
	}
	plan, err := BuildPlan(context.Background(), opts)
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}
	if len(plan.Calls) != 6 {
		t.Fatalf("expected 6 calls, got %d", len(plan.Calls))
	}
	if plan.Estimate.Seconds != 115 || plan.Estimate.Joins != 2 {
		t.Fatalf("unexpected estimate: %#v", plan.Estimate)
	}
	if _, err := os.Stat(filepath.Join(dir, "out")); !os.IsNotExist(err) {
		t.Fatalf("plan must not create the output dir")
	}
	if plan.Image != DefaultImage {
		t.Fatalf("expected default image, got %s", plan.Image)
	}
}

func TestPreloadedStdinServesPlanAndRun(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		Scripts: []string{"-"},
		Stdin:   strings.NewReader("- a.wav\n0:00-0:05\n0:10-0:15\n"),
		Output:  filepath.Join(dir, "out.mp4"),
		WorkDir: dir,
	}
	opts, err := opts.Preload()
	if err != nil {
		t.Fatalf("Preload failed: %v", err)
	}

	plan, err := BuildPlan(context.Background(), opts)
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}
	if len(plan.Calls) != 4 {
		t.Fatalf("expected 4 planned calls, got %d", len(plan.Calls))
	}

	result, err := Run(context.Background(), engine.NewRecorder(true), opts)
	if err != nil {
		t.Fatalf("Run after plan failed: %v", err)
	}
	if result.Ranges != 2 || result.ExpectedSeconds != 10 {
		t.Fatalf("unexpected result: %+v", result)
	}
}
