package batch

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mlihgenel/slidecast-cli/internal/render"
)

func TestNormalizeReportFormat(t *testing.T) {
	if got := NormalizeReportFormat(""); got != ReportOff {
		t.Fatalf("expected off, got %s", got)
	}
	if got := NormalizeReportFormat("JSON"); got != ReportJSON {
		t.Fatalf("expected json, got %s", got)
	}
	if got := NormalizeReportFormat("bad"); got != "" {
		t.Fatalf("expected empty for invalid report format, got %s", got)
	}
}

func TestRenderReportTXT(t *testing.T) {
	summary := Summary{
		Total:        2,
		Succeeded:    1,
		Skipped:      1,
		TotalSeconds: 95,
		Duration:     2 * time.Second,
	}
	results := []JobResult{
		{
			Job:        Job{ScriptPath: "a.txt", OutputPath: "out/a.mp4"},
			Success:    true,
			Attempts:   2,
			Seconds:    95,
			OutputSize: 2048,
			Duration:   time.Second,
			Render:     render.Result{Sources: 2, Ranges: 3, ExpectedSeconds: 95, Audio: "out/a.wav", Warnings: []string{"satir 4"}},
		},
		{Job: Job{ScriptPath: "b.txt", OutputPath: "out/b.mp4"}, Skipped: true, SkipReason: "output_exists"},
	}

	out, err := RenderReport(ReportTXT, summary, results, time.Unix(0, 0), time.Unix(2, 0))
	if err != nil {
		t.Fatalf("RenderReport failed: %v", err)
	}
	if !strings.Contains(out, "Slidecast Batch Report") {
		t.Fatalf("missing report header")
	}
	if !strings.Contains(out, "scripts=2 rendered=1 skipped=1 failed=0 ranges=3 video=1:35") {
		t.Fatalf("missing totals line:\n%s", out)
	}
	for _, want := range []string{"rendered", "a.mp4", "2.0 KiB", "attempts=2", "warnings=1", "track=a.wav", "skipped", "output_exists"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in report:\n%s", want, out)
		}
	}
}

func TestRenderReportJSON(t *testing.T) {
	summary := Summary{Total: 1, Failed: 1, Duration: time.Second}
	results := []JobResult{
		{
			Job:      Job{ScriptPath: "x.txt", OutputPath: "x.mp4"},
			Attempts: 3,
			Error:    errStub("boom\nffmpeg output"),
			Render:   render.Result{Sources: 1, Ranges: 2, ExpectedSeconds: 40},
		},
	}
	out, err := RenderReport(ReportJSON, summary, results, time.Unix(0, 0), time.Unix(1, 0))
	if err != nil {
		t.Fatalf("RenderReport failed: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("invalid json output: %v", err)
	}

	if payload["scripts"] != float64(1) || payload["ranges"] != float64(2) {
		t.Fatalf("unexpected totals: %v", payload)
	}

	entries, ok := payload["entries"].([]any)
	if !ok || len(entries) != 1 {
		t.Fatalf("unexpected entries: %v", payload["entries"])
	}

	first, ok := entries[0].(map[string]any)
	if !ok {
		t.Fatalf("unexpected first entry type")
	}
	if first["status"] != "failed" || first["reason"] != "boom" {
		t.Fatalf("unexpected entry: %v", first)
	}
	if first["expected_seconds"] != float64(40) {
		t.Fatalf("unexpected expected seconds: %v", first["expected_seconds"])
	}
}

type errStub string

func (e errStub) Error() string { return string(e) }
