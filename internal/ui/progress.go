package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

// Color ANSI renk kodları
const (
	Reset  = "\033[0m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Cyan   = "\033[36m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
)

// Icons kullanıcı dostu ikonlar
const (
	IconSuccess = "✅"
	IconError   = "❌"
	IconWarning = "⚠️ "
	IconInfo    = "ℹ️ "
	IconAudio   = "🎵"
	IconImage   = "🖼️ "
	IconVideo   = "🎬"
	IconScript  = "📜"
	IconBatch   = "📦"
	IconDone    = "🎉"
	IconTime    = "⏱️ "
)

var (
	// Stdout print yardımcılarının yazdığı yer
	Stdout io.Writer = os.Stdout
	// ColorEnabled terminal değilse ya da NO_COLOR tanımlıysa kapalıdır
	ColorEnabled = detectColor(os.Stdout)

	primaryColor = lipgloss.Color("#7C3AED")
	accentColor  = lipgloss.Color("#10B981")
	warningColor = lipgloss.Color("#F59E0B")
	dangerColor  = lipgloss.Color("#EF4444")
	dimTextColor = lipgloss.Color("#64748B")

	summaryBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 2).
			MarginTop(1)
)

func detectColor(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// IsInteractive stdin ve stdout'un terminal olup olmadığını döner
func IsInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())
}

func paint(color, msg string) string {
	if !ColorEnabled {
		return msg
	}
	return color + msg + Reset
}

// PrintBanner uygulama başlığını yazdırır
func PrintBanner(version string) {
	line := fmt.Sprintf("slidecast %s  ·  sesli slayt videoları", version)
	fmt.Fprintln(Stdout, paint(Cyan+Bold, line))
}

// PrintSuccess başarılı mesaj
func PrintSuccess(msg string) {
	fmt.Fprintf(Stdout, "%s %s\n", IconSuccess, paint(Green, msg))
}

// PrintError hata mesajı
func PrintError(msg string) {
	fmt.Fprintf(Stdout, "%s %s\n", IconError, paint(Red, msg))
}

// PrintWarning uyarı mesajı
func PrintWarning(msg string) {
	fmt.Fprintf(Stdout, "%s %s\n", IconWarning, paint(Yellow, msg))
}

// PrintInfo bilgi mesajı
func PrintInfo(msg string) {
	fmt.Fprintf(Stdout, "%s %s\n", IconInfo, paint(Blue, msg))
}

// PrintStep tek bir motor adımını yazdırır
func PrintStep(index int, op, output string, seconds int, ok bool) {
	icon := IconAudio
	if op == "compose" {
		icon = IconVideo
	}
	status := paint(Green, "ok")
	if !ok {
		status = paint(Red, "hata")
	}
	fmt.Fprintf(Stdout, "%s  %s %-9s %s %s %s\n",
		icon, paint(Dim, fmt.Sprintf("#%02d", index)), op, output, paint(Cyan, fmt.Sprintf("(%ds)", seconds)), status)
}

// PrintDuration süre bilgisi
func PrintDuration(d time.Duration) {
	fmt.Fprintf(Stdout, "%s  Süre: %s\n", IconTime, paint(Cyan, FormatDuration(d)))
}

// ProgressBar ilerleme çubuğu gösterir
type ProgressBar struct {
	Total   int
	Current int
	Width   int
	Label   string
}

// NewProgressBar yeni bir progress bar oluşturur
func NewProgressBar(total int, label string) *ProgressBar {
	return &ProgressBar{
		Total: total,
		Width: 40,
		Label: label,
	}
}

// Update ilerlemeyi günceller
func (pb *ProgressBar) Update(current int) {
	if pb.Total <= 0 {
		return
	}
	pb.Current = current
	fmt.Fprintf(Stdout, "\r  %s", pb.Render())
	if current >= pb.Total {
		fmt.Fprintln(Stdout)
	}
}

// Render çubuğun metin halini döner
func (pb *ProgressBar) Render() string {
	current := pb.Current
	if current > pb.Total {
		current = pb.Total
	}
	percentage := float64(current) / float64(pb.Total) * 100
	filled := int(float64(pb.Width) * float64(current) / float64(pb.Total))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", pb.Width-filled)
	return fmt.Sprintf("%s [%s] %s (%d/%d)",
		paint(Bold, pb.Label), paint(Green, bar), paint(Cyan, fmt.Sprintf("%.0f%%", percentage)), current, pb.Total)
}

// RenderSummary render sonucunu çerçeveli kutu olarak döner
func RenderSummary(output string, seconds int, size int64, elapsed time.Duration) string {
	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render(IconDone + " Video hazır"),
		"",
		"Çıktı:  " + lipgloss.NewStyle().Bold(true).Foreground(warningColor).Render(output),
		fmt.Sprintf("Süre:   %s", formatClock(seconds)),
	}
	if size > 0 {
		lines = append(lines, "Boyut:  "+humanize.IBytes(uint64(size)))
	}
	lines = append(lines, lipgloss.NewStyle().Foreground(dimTextColor).Render("İşlem:  "+FormatDuration(elapsed)))
	return summaryBoxStyle.Render(strings.Join(lines, "\n"))
}

// PrintBatchSummary toplu iş özetini yazdırır
func PrintBatchSummary(total, succeeded, skipped, failed, seconds int, duration time.Duration) {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(IconDone+" Toplu Render Tamamlandı") + "\n")
	b.WriteString(fmt.Sprintf("Toplam:    %d script\n", total))
	b.WriteString(lipgloss.NewStyle().Foreground(accentColor).Render(fmt.Sprintf("Başarılı:  %d script", succeeded)) + "\n")
	if skipped > 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(warningColor).Render(fmt.Sprintf("Atlanan:   %d script", skipped)) + "\n")
	}
	if failed > 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(dangerColor).Render(fmt.Sprintf("Başarısız: %d script", failed)) + "\n")
	}
	b.WriteString(fmt.Sprintf("Video:     %s\n", formatClock(seconds)))
	b.WriteString(fmt.Sprintf("Süre:      %s", FormatDuration(duration)))
	fmt.Fprintln(Stdout, summaryBoxStyle.Render(b.String()))
}

// FormatDuration süreyi okunabilir formata çevirir
func FormatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

func formatClock(sec int) string {
	if sec >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", sec/3600, (sec%3600)/60, sec%60)
	}
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}
