package render

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	ReportOff  = "off"
	ReportTXT  = "txt"
	ReportJSON = "json"
)

// NormalizeReportFormat formatı normalize eder.
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

// RenderReport render sonucu için rapor üretir.
func RenderReport(format string, result Result) (string, error) {
	switch NormalizeReportFormat(format) {
	case ReportOff:
		return "", nil
	case ReportTXT:
		return renderTXT(result), nil
	case ReportJSON:
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("gecersiz report formati: %s", format)
	}
}

func renderTXT(result Result) string {
	var b strings.Builder
	b.WriteString("Render Report\n")
	b.WriteString(strings.Repeat("=", 40))
	b.WriteString("\n")
	scripts := "stdin"
	if len(result.Scripts) > 0 {
		scripts = strings.Join(result.Scripts, ", ")
	}
	b.WriteString(fmt.Sprintf("Script:     %s\n", scripts))
	b.WriteString(fmt.Sprintf("Output:     %s\n", result.Output))
	if result.Audio != "" {
		b.WriteString(fmt.Sprintf("Audio:      %s\n", result.Audio))
	}
	b.WriteString(fmt.Sprintf("Sources:    %d\n", result.Sources))
	b.WriteString(fmt.Sprintf("Ranges:     %d\n", result.Ranges))
	b.WriteString(fmt.Sprintf("Expected:   %ds\n", result.ExpectedSeconds))
	if result.MeasuredSeconds > 0 {
		b.WriteString(fmt.Sprintf("Measured:   %.2fs\n", result.MeasuredSeconds))
	}
	b.WriteString(fmt.Sprintf("Duration:   %s\n", result.Duration.Round(time.Millisecond)))
	if result.Skipped {
		b.WriteString("Status:     skipped\n")
	} else if result.Error != "" {
		b.WriteString(fmt.Sprintf("Status:     failed (%s)\n", result.Error))
	}
	b.WriteString(fmt.Sprintf("Step Count: %d\n", len(result.Steps)))
	b.WriteString("\nSteps:\n")
	for _, s := range result.Steps {
		status := "ok"
		if !s.Success {
			status = "failed"
		}
		b.WriteString(fmt.Sprintf("- [%s] #%d %s: %s -> %s (%ds, %s)", status, s.Index, s.Op, strings.Join(s.Inputs, " + "), s.Output, s.Seconds, s.Duration.Round(time.Millisecond)))
		if s.Error != "" {
			b.WriteString(fmt.Sprintf(" error=%s", s.Error))
		}
		b.WriteString("\n")
	}
	if len(result.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, w := range result.Warnings {
			b.WriteString("- " + w + "\n")
		}
	}
	return b.String()
}
