package batch

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const (
	ReportOff  = "off"
	ReportTXT  = "txt"
	ReportJSON = "json"
)

// reportEntry tek bir script'in rapor satırı
type reportEntry struct {
	Script          string `json:"script"`
	Video           string `json:"video"`
	Track           string `json:"track,omitempty"`
	Status          string `json:"status"`
	Sources         int    `json:"sources"`
	Ranges          int    `json:"ranges"`
	Steps           int    `json:"engine_steps"`
	ExpectedSeconds int    `json:"expected_seconds"`
	RenderedSeconds int    `json:"rendered_seconds,omitempty"`
	Warnings        int    `json:"warnings,omitempty"`
	Attempts        int    `json:"attempts,omitempty"`
	ElapsedMS       int64  `json:"elapsed_ms"`
	VideoBytes      int64  `json:"video_bytes,omitempty"`
	Reason          string `json:"reason,omitempty"`
}

type reportPayload struct {
	StartedAt    string        `json:"started_at"`
	EndedAt      string        `json:"ended_at"`
	Elapsed      string        `json:"elapsed"`
	Scripts      int           `json:"scripts"`
	Rendered     int           `json:"rendered"`
	Skipped      int           `json:"skipped"`
	Failed       int           `json:"failed"`
	Ranges       int           `json:"ranges"`
	VideoSeconds int           `json:"video_seconds"`
	Entries      []reportEntry `json:"entries"`
}

// NormalizeReportFormat rapor formatını normalize eder.
func NormalizeReportFormat(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", ReportOff:
		return ReportOff
	case ReportTXT:
		return ReportTXT
	case ReportJSON:
		return ReportJSON
	default:
		return ""
	}
}

// RenderReport batch sonucu için rapor metni üretir.
func RenderReport(format string, summary Summary, results []JobResult, startedAt, endedAt time.Time) (string, error) {
	switch NormalizeReportFormat(format) {
	case ReportOff:
		return "", nil
	case ReportTXT:
		return renderTXTReport(summary, entriesFor(results), startedAt, endedAt), nil
	case ReportJSON:
		return renderJSONReport(summary, entriesFor(results), startedAt, endedAt)
	default:
		return "", fmt.Errorf("gecersiz report formati: %s", format)
	}
}

func entriesFor(results []JobResult) []reportEntry {
	entries := make([]reportEntry, 0, len(results))
	for _, r := range results {
		e := reportEntry{
			Script:          r.Job.ScriptPath,
			Video:           r.Job.OutputPath,
			Track:           r.Render.Audio,
			Sources:         r.Render.Sources,
			Ranges:          r.Render.Ranges,
			Steps:           len(r.Render.Steps),
			ExpectedSeconds: r.Render.ExpectedSeconds,
			Warnings:        len(r.Render.Warnings),
			Attempts:        r.Attempts,
			ElapsedMS:       r.Duration.Milliseconds(),
			VideoBytes:      r.OutputSize,
		}
		switch {
		case r.Success:
			e.Status = "rendered"
			e.RenderedSeconds = r.Seconds
		case r.Skipped:
			e.Status = "skipped"
			e.Reason = r.SkipReason
		default:
			e.Status = "failed"
			if r.Error != nil {
				e.Reason = firstLine(r.Error.Error())
			}
		}
		entries = append(entries, e)
	}
	return entries
}

func renderTXTReport(summary Summary, entries []reportEntry, startedAt, endedAt time.Time) string {
	ranges := 0
	for _, e := range entries {
		ranges += e.Ranges
	}

	var b strings.Builder
	b.WriteString("Slidecast Batch Report\n")
	fmt.Fprintf(&b, "%s -> %s (%s)\n", startedAt.Format(time.RFC3339), endedAt.Format(time.RFC3339), summary.Duration)
	fmt.Fprintf(&b, "scripts=%d rendered=%d skipped=%d failed=%d ranges=%d video=%s\n\n",
		summary.Total, summary.Succeeded, summary.Skipped, summary.Failed, ranges, clock(summary.TotalSeconds))

	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.Style().Format.Header = text.FormatDefault
	tw.AppendHeader(table.Row{"Status", "Script", "Video", "Sources", "Ranges", "Expected", "Rendered", "Size", "Note"})
	for _, e := range entries {
		size := ""
		if e.VideoBytes > 0 {
			size = humanize.IBytes(uint64(e.VideoBytes))
		}
		rendered := ""
		if e.Status == "rendered" {
			rendered = clock(e.RenderedSeconds)
		}
		tw.AppendRow(table.Row{
			e.Status,
			e.Script,
			filepath.Base(e.Video),
			e.Sources,
			e.Ranges,
			clock(e.ExpectedSeconds),
			rendered,
			size,
			entryNote(e),
		})
	}
	b.WriteString(tw.Render())
	b.WriteString("\n")
	return b.String()
}

func entryNote(e reportEntry) string {
	var parts []string
	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}
	if e.Attempts > 1 {
		parts = append(parts, "attempts="+strconv.Itoa(e.Attempts))
	}
	if e.Warnings > 0 {
		parts = append(parts, "warnings="+strconv.Itoa(e.Warnings))
	}
	if e.Track != "" {
		parts = append(parts, "track="+filepath.Base(e.Track))
	}
	return strings.Join(parts, " ")
}

func renderJSONReport(summary Summary, entries []reportEntry, startedAt, endedAt time.Time) (string, error) {
	payload := reportPayload{
		StartedAt:    startedAt.Format(time.RFC3339),
		EndedAt:      endedAt.Format(time.RFC3339),
		Elapsed:      summary.Duration.String(),
		Scripts:      summary.Total,
		Rendered:     summary.Succeeded,
		Skipped:      summary.Skipped,
		Failed:       summary.Failed,
		VideoSeconds: summary.TotalSeconds,
		Entries:      entries,
	}
	for _, e := range entries {
		payload.Ranges += e.Ranges
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func clock(sec int) string {
	if sec <= 0 {
		return "0:00"
	}
	if sec >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", sec/3600, sec%3600/60, sec%60)
	}
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}

func firstLine(msg string) string {
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return msg[:i]
	}
	return msg
}
