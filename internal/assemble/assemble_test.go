package assemble

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mlihgenel/slidecast-cli/internal/engine"
	"github.com/mlihgenel/slidecast-cli/internal/script"
	"github.com/mlihgenel/slidecast-cli/internal/workdir"
)

func newTestAssembler(t *testing.T, opts Options) (*Assembler, *engine.Recorder, *workdir.Arena) {
	t.Helper()
	arena, err := workdir.New(t.TempDir(), false)
	if err != nil {
		t.Fatalf("workdir.New failed: %v", err)
	}
	t.Cleanup(func() { arena.Close() })
	rec := engine.NewRecorder(true)
	return New(rec, arena, opts), rec, arena
}

func extractAll(t *testing.T, a *Assembler, durations ...int) []Fragment {
	t.Helper()
	var frags []Fragment
	begin := 0
	for _, d := range durations {
		f, err := a.Extract(context.Background(), "src.mp3", script.TimeRange{Begin: begin, Duration: d})
		if err != nil {
			t.Fatalf("Extract failed: %v", err)
		}
		frags = append(frags, f)
		begin += d
	}
	return frags
}

func parse(t *testing.T, text string, opts script.Options) *script.CropInfo {
	t.Helper()
	res, err := script.Parse(strings.NewReader(text), opts)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return res.Crops
}

func TestConcatManySingleIsIdentity(t *testing.T) {
	a, rec, _ := newTestAssembler(t, Options{Fade: true, FadeMargin: 5})
	frags := extractAll(t, a, 12)

	before, err := os.ReadFile(frags[0].Path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	callsBefore := len(rec.Calls())

	got, err := a.ConcatMany(context.Background(), frags)
	if err != nil {
		t.Fatalf("ConcatMany failed: %v", err)
	}
	if got != frags[0] {
		t.Fatalf("expected identical fragment, got %#v", got)
	}
	after, err := os.ReadFile(got.Path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(before) != string(after) {
		t.Fatalf("single fragment content changed")
	}
	if len(rec.Calls()) != callsBefore {
		t.Fatalf("single fragment must not call the engine")
	}
}

func TestConcatManyEmptyIsError(t *testing.T) {
	a, _, _ := newTestAssembler(t, Options{})
	if _, err := a.ConcatMany(context.Background(), nil); !errors.Is(err, ErrJoin) {
		t.Fatalf("expected ErrJoin, got %v", err)
	}
}

func TestConcatManyFadeFoldsLeft(t *testing.T) {
	a, rec, _ := newTestAssembler(t, Options{Fade: true, FadeMargin: 5})
	frags := extractAll(t, a, 10, 10, 10)
	A, B, C := frags[0].Path, frags[1].Path, frags[2].Path

	got, err := a.ConcatMany(context.Background(), frags)
	if err != nil {
		t.Fatalf("ConcatMany failed: %v", err)
	}

	calls := rec.Calls()[3:]
	if len(calls) != 2 {
		t.Fatalf("expected 2 crossfade calls, got %v", calls)
	}
	first, second := calls[0], calls[1]
	if first.Op != engine.OpCrossfade || first.Inputs[0] != A || first.Inputs[1] != B {
		t.Fatalf("first join should be (A,B), got %v", first)
	}
	if second.Op != engine.OpCrossfade || second.Inputs[0] != first.Output || second.Inputs[1] != C {
		t.Fatalf("second join should be (join(A,B),C), got %v", second)
	}
	if first.Seconds != 5 || second.Seconds != 5 {
		t.Fatalf("crossfade duration should equal fade margin: %v", calls)
	}
	if got.Path != second.Output {
		t.Fatalf("result should be the last join output")
	}
	if got.Seconds != 20 {
		t.Fatalf("expected 30-2*5=20s, got %d", got.Seconds)
	}

	// ara akümülatör tüketildikten sonra silinmiş olmalı
	if _, err := os.Stat(first.Output); !os.IsNotExist(err) {
		t.Fatalf("intermediate accumulator should be released")
	}
	for _, p := range []string{A, B, C} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Fatalf("consumed fragment should be released: %s", p)
		}
	}
}

func TestConcatManyNoFadeIsSingleFlatConcat(t *testing.T) {
	a, rec, _ := newTestAssembler(t, Options{})
	frags := extractAll(t, a, 4, 5, 6, 7)

	got, err := a.ConcatMany(context.Background(), frags)
	if err != nil {
		t.Fatalf("ConcatMany failed: %v", err)
	}
	calls := rec.Calls()[4:]
	if len(calls) != 1 || calls[0].Op != engine.OpConcat {
		t.Fatalf("expected one concat call, got %v", calls)
	}
	for i, f := range frags {
		if calls[0].Inputs[i] != f.Path {
			t.Fatalf("concat input %d out of order: %v", i, calls[0].Inputs)
		}
	}
	if got.Seconds != 22 {
		t.Fatalf("expected 22s, got %d", got.Seconds)
	}
}

func TestJoinTwoWithoutFadeUsesConcat(t *testing.T) {
	a, rec, _ := newTestAssembler(t, Options{})
	frags := extractAll(t, a, 3, 4)
	got, err := a.ConcatMany(context.Background(), frags)
	if err != nil {
		t.Fatalf("ConcatMany failed: %v", err)
	}
	last := rec.Calls()[2]
	if last.Op != engine.OpConcat || len(last.Inputs) != 2 {
		t.Fatalf("expected two-input concat, got %v", last)
	}
	if got.Seconds != 7 {
		t.Fatalf("expected 7s, got %d", got.Seconds)
	}
}

func TestAssembleWithoutFadeKeepsTotalDuration(t *testing.T) {
	crops := parse(t, "- a.wav\n0:00-0:10\n0:20-0:25\n0:40-0:43\n- b.wav\n0:05-0:08\n", script.Options{})
	a, rec, arena := newTestAssembler(t, Options{})
	dest := filepath.Join(t.TempDir(), "out", "track.wav")

	track, err := a.Assemble(context.Background(), crops, dest)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	if track.Seconds != 10+5+3+3 {
		t.Fatalf("expected 21s, got %d", track.Seconds)
	}
	if d, ok := rec.Duration(dest); !ok || d != track.Seconds {
		t.Fatalf("engine duration %d does not match track %d", d, track.Seconds)
	}
	if est := Expect(crops, Options{}); est.Seconds != track.Seconds {
		t.Fatalf("Expect mismatch: %d vs %d", est.Seconds, track.Seconds)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("track should exist at destination: %v", err)
	}
	if arena.Live() != 0 {
		t.Fatalf("expected no live fragments, got %d", arena.Live())
	}

	ops := rec.Ops()
	want := []string{"extract", "extract", "extract", "concat", "extract", "concat"}
	if strings.Join(ops, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected op order: %v", ops)
	}
}

func TestAssembleWithFadeSubtractsMarginPerJoin(t *testing.T) {
	text := "- a.wav\n0:10-0:30\n1:00-1:20\n- b.wav\n0:05-0:20\n- c.wav\n0:00-0:30\n2:00-2:10\n"
	opts := script.Options{Fade: true, FadeMargin: 5}
	crops := parse(t, text, opts)
	a, rec, _ := newTestAssembler(t, Options{Fade: true, FadeMargin: 5})
	dest := filepath.Join(t.TempDir(), "track.wav")

	track, err := a.Assemble(context.Background(), crops, dest)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	raw := 0
	for _, d := range crops.Directives() {
		for _, r := range d.Ranges {
			raw += r.Duration
		}
	}
	crossfades := 0
	for _, c := range rec.Calls() {
		if c.Op == engine.OpCrossfade {
			crossfades++
		}
	}
	// within: 1 + 0 + 1, across: 2
	if crossfades != 4 {
		t.Fatalf("expected 4 joins, got %d", crossfades)
	}
	if want := raw - 5*crossfades; track.Seconds != want {
		t.Fatalf("expected %d, got %d", want, track.Seconds)
	}
	if d, _ := rec.Duration(dest); d != track.Seconds {
		t.Fatalf("engine duration %d does not match %d", d, track.Seconds)
	}
	est := Expect(crops, Options{Fade: true, FadeMargin: 5})
	if est.Joins != crossfades || est.Seconds != track.Seconds {
		t.Fatalf("unexpected estimate: %#v", est)
	}
}

func TestAssembleSkipsSourcesWithoutRanges(t *testing.T) {
	crops := parse(t, "- a.wav\n- b.wav\n0:00-0:04\n", script.Options{})
	a, _, _ := newTestAssembler(t, Options{})
	var warnings []string
	a.OnWarning = func(msg string) { warnings = append(warnings, msg) }

	track, err := a.Assemble(context.Background(), crops, "")
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if track.Seconds != 4 {
		t.Fatalf("expected 4s, got %d", track.Seconds)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "a.wav") {
		t.Fatalf("expected warning for a.wav, got %v", warnings)
	}
}

func TestAssembleEmptyScript(t *testing.T) {
	crops := parse(t, "- a.wav\n", script.Options{})
	a, _, _ := newTestAssembler(t, Options{})
	if _, err := a.Assemble(context.Background(), crops, ""); !errors.Is(err, ErrEmptyScript) {
		t.Fatalf("expected ErrEmptyScript, got %v", err)
	}
}

func TestAssembleExtractionFailureCleansUp(t *testing.T) {
	crops := parse(t, "- a.wav\n0:00-0:10\n- missing.wav\n0:00-0:10\n", script.Options{})
	a, rec, arena := newTestAssembler(t, Options{})
	rec.FailOn = func(c engine.Call) error {
		if c.Op == engine.OpExtract && c.Inputs[0] == "missing.wav" {
			return errors.New("No such file or directory")
		}
		return nil
	}

	_, err := a.Assemble(context.Background(), crops, "")
	if !errors.Is(err, ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
	if !strings.Contains(err.Error(), "No such file or directory") {
		t.Fatalf("engine message should surface verbatim: %v", err)
	}

	steps := a.Steps()
	if len(steps) == 0 || steps[len(steps)-1].Success {
		t.Fatalf("last step should be recorded as failed: %#v", steps)
	}

	if err := arena.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := os.Stat(arena.Dir()); !os.IsNotExist(err) {
		t.Fatalf("work dir should be removed after failure")
	}
}

func TestAssembleShortFragmentIsJoinError(t *testing.T) {
	// fade kapalı parse edilip fade açık birleştirilirse 3s'lik parça geçişe yetmez
	crops := parse(t, "- a.wav\n0:00-0:03\n0:10-0:20\n", script.Options{})
	a, _, _ := newTestAssembler(t, Options{Fade: true, FadeMargin: 5})
	if _, err := a.Assemble(context.Background(), crops, ""); !errors.Is(err, ErrJoin) {
		t.Fatalf("expected ErrJoin, got %v", err)
	}
}

func TestComposeWrapsEngineError(t *testing.T) {
	a, rec, _ := newTestAssembler(t, Options{})
	crops := parse(t, "- a.wav\n0:00-0:05\n", script.Options{})
	track, err := a.Assemble(context.Background(), crops, "")
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	out := filepath.Join(t.TempDir(), "video.mp4")
	got, err := a.Compose(context.Background(), "bg.png", track, out)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if got != out {
		t.Fatalf("unexpected output: %s", got)
	}

	rec.FailOn = func(c engine.Call) error {
		if c.Op == engine.OpCompose {
			return errors.New("bg.png: Invalid data found")
		}
		return nil
	}
	if _, err := a.Compose(context.Background(), "bg.png", track, out); !errors.Is(err, ErrCompose) {
		t.Fatalf("expected ErrCompose, got %v", err)
	}
}

func TestAssembleHonoursContext(t *testing.T) {
	crops := parse(t, "- a.wav\n0:00-0:05\n", script.Options{})
	a, _, _ := newTestAssembler(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.Assemble(ctx, crops, ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
