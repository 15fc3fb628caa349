package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mlihgenel/slidecast-cli/internal/assemble"
	"github.com/mlihgenel/slidecast-cli/internal/engine"
	"github.com/mlihgenel/slidecast-cli/internal/probe"
	"github.com/mlihgenel/slidecast-cli/internal/render"
	"github.com/mlihgenel/slidecast-cli/internal/ui"
)

// scriptSummary script dosyaları için info çıktısına eklenen özet
type scriptSummary struct {
	Sources         int      `json:"sources"`
	Ranges          int      `json:"ranges"`
	ExpectedSeconds int      `json:"expected_seconds"`
	Warnings        []string `json:"warnings,omitempty"`
}

type infoPayload struct {
	probe.FileInfo
	Script *scriptSummary `json:"script,omitempty"`
}

var infoCmd = &cobra.Command{
	Use:   "info <dosya>",
	Short: "Ses, görsel veya script dosyası hakkında bilgi göster",
	Long: `Bir dosyanın format, boyut, süre, codec ve çözünürlük bilgilerini gösterir.
Ses ve video dosyaları için ffprobe, görseller için yalnızca dosya başlığı okunur.
Script dosyalarında kaynak, kesit sayısı ve beklenen video süresi de gösterilir.

Örnekler:
  slidecast info kayit.mp3
  slidecast info src/background.png
  slidecast info ders.txt
  slidecast info ders.mp4 --output-format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath := args[0]

		ffprobe, _ := engine.FindFFprobe("")
		info, err := probe.File(cmd.Context(), ffprobe, filePath)
		if err != nil {
			ui.PrintError(err.Error())
			return err
		}

		payload := infoPayload{FileInfo: info}
		if info.Category == "script" {
			summary, err := summarizeScript(filePath)
			if err != nil {
				ui.PrintError(err.Error())
				return err
			}
			payload.Script = &summary
		}

		if isJSONOutput() {
			return printJSON(payload)
		}

		printFileInfo(payload)
		if ffprobe == "" && (info.Category == "audio" || info.Category == "video") {
			ui.PrintWarning("ffprobe bulunamadı; süre ve codec bilgisi gösterilemiyor (slidecast doctor)")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func summarizeScript(path string) (scriptSummary, error) {
	parsed, err := render.Load(render.Options{Scripts: []string{path}, Fade: true})
	if err != nil {
		return scriptSummary{}, err
	}
	est := assemble.Expect(parsed.Crops, assemble.Options{Fade: true})
	summary := scriptSummary{Sources: est.Sources, Ranges: est.Ranges, ExpectedSeconds: est.Seconds}
	for _, w := range parsed.Warnings {
		summary.Warnings = append(summary.Warnings, w.String())
	}
	return summary, nil
}

func printFileInfo(payload infoPayload) {
	info := payload.FileInfo

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#10B981"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#E2E8F0")).
		Width(16)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Bold(true)

	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#64748B"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#334155")).
		Padding(1, 2).
		MarginTop(1)

	var lines []string

	// Başlık
	lines = append(lines, headerStyle.Render(fmt.Sprintf("%s  %s", categoryIcon(info.Category), info.FileName)))
	lines = append(lines, dimStyle.Render(strings.Repeat("─", 40)))

	lines = append(lines, formatInfoLine(labelStyle, valueStyle, "Format", info.Format))
	lines = append(lines, formatInfoLine(labelStyle, valueStyle, "Kategori", categoryLabel(info.Category)))
	lines = append(lines, formatInfoLine(labelStyle, valueStyle, "Boyut", info.SizeText))

	if info.Resolution != "" {
		lines = append(lines, formatInfoLine(labelStyle, valueStyle, "Çözünürlük", info.Resolution))
	}
	if info.Duration != "" {
		lines = append(lines, formatInfoLine(labelStyle, valueStyle, "Süre", info.Duration))
	}
	if info.VideoCodec != "" {
		lines = append(lines, formatInfoLine(labelStyle, valueStyle, "Video Codec", info.VideoCodec))
	}
	if info.AudioCodec != "" {
		lines = append(lines, formatInfoLine(labelStyle, valueStyle, "Ses Codec", info.AudioCodec))
	}
	if info.Bitrate != "" {
		lines = append(lines, formatInfoLine(labelStyle, valueStyle, "Bitrate", info.Bitrate))
	}
	if info.FPS > 0 {
		lines = append(lines, formatInfoLine(labelStyle, valueStyle, "FPS", fmt.Sprintf("%.2f", info.FPS)))
	}
	if info.Channels > 0 {
		chLabel := fmt.Sprintf("%d", info.Channels)
		if info.Channels == 1 {
			chLabel = "Mono"
		} else if info.Channels == 2 {
			chLabel = "Stereo"
		}
		lines = append(lines, formatInfoLine(labelStyle, valueStyle, "Kanal", chLabel))
	}
	if info.SampleRate > 0 {
		lines = append(lines, formatInfoLine(labelStyle, valueStyle, "Örnekleme", fmt.Sprintf("%d Hz", info.SampleRate)))
	}

	if s := payload.Script; s != nil {
		lines = append(lines, formatInfoLine(labelStyle, valueStyle, "Kaynak", fmt.Sprintf("%d", s.Sources)))
		lines = append(lines, formatInfoLine(labelStyle, valueStyle, "Kesit", fmt.Sprintf("%d", s.Ranges)))
		lines = append(lines, formatInfoLine(labelStyle, valueStyle, "Beklenen süre", probe.FormatClock(float64(s.ExpectedSeconds))))
		for _, w := range s.Warnings {
			lines = append(lines, dimStyle.Render("! "+w))
		}
	}

	fmt.Println(boxStyle.Render(strings.Join(lines, "\n")))
}

func formatInfoLine(labelStyle, valueStyle lipgloss.Style, label, value string) string {
	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

func categoryIcon(category string) string {
	switch category {
	case "image":
		return "🖼️"
	case "video":
		return "🎬"
	case "audio":
		return "🎵"
	case "script":
		return "📜"
	default:
		return "📁"
	}
}

func categoryLabel(category string) string {
	switch category {
	case "image":
		return "Görsel"
	case "video":
		return "Video"
	case "audio":
		return "Ses"
	case "script":
		return "Script"
	default:
		return "Diğer"
	}
}
