package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/mlihgenel/slidecast-cli/internal/assemble"
)

func TestNormalizeReportFormat(t *testing.T) {
	if got := NormalizeReportFormat(""); got != ReportOff {
		t.Fatalf("expected off, got %s", got)
	}
	if got := NormalizeReportFormat("JSON"); got != ReportJSON {
		t.Fatalf("expected json, got %s", got)
	}
	if got := NormalizeReportFormat("bad"); got != "" {
		t.Fatalf("expected empty for invalid format, got %s", got)
	}
}

func TestRenderReport(t *testing.T) {
	r := Result{
		Scripts:         []string{"lecture.txt"},
		Output:          "lecture.mp4",
		ExpectedSeconds: 42,
		Steps: []assemble.Step{
			{Index: 1, Op: "extract", Inputs: []string{"a.mp3"}, Output: "001.wav", Seconds: 42, Success: true},
			{Index: 2, Op: "compose", Inputs: []string{"bg.png", "001.wav"}, Output: "lecture.mp4", Error: "boom"},
		},
		Warnings: []string{"satir 3: taninmayan satir"},
	}

	txt, err := RenderReport(ReportTXT, r)
	if err != nil {
		t.Fatalf("RenderReport txt failed: %v", err)
	}
	for _, want := range []string{"Render Report", "lecture.txt", "[ok] #1 extract", "[failed] #2 compose", "error=boom", "Warnings:"} {
		if !strings.Contains(txt, want) {
			t.Fatalf("txt report missing %q:\n%s", want, txt)
		}
	}

	js, err := RenderReport(ReportJSON, r)
	if err != nil {
		t.Fatalf("RenderReport json failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(js), &decoded); err != nil {
		t.Fatalf("json report invalid: %v", err)
	}
	if decoded["expected_seconds"].(float64) != 42 {
		t.Fatalf("unexpected expected_seconds: %v", decoded["expected_seconds"])
	}

	off, err := RenderReport(ReportOff, r)
	if err != nil || off != "" {
		t.Fatalf("off should render nothing")
	}
	if _, err := RenderReport("xml", r); err == nil {
		t.Fatalf("expected error for invalid format")
	}
}
