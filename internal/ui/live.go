package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LiveStep canlı görünümde gösterilen tek bir motor adımı
type LiveStep struct {
	Index   int
	Op      string
	Output  string
	Seconds int
	Success bool
	Error   string
}

type (
	liveStepMsg LiveStep
	liveDoneMsg struct{ err error }
	liveTickMsg time.Time
)

const liveVisibleSteps = 8

var (
	spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

	liveTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(primaryColor).
			Padding(0, 2).
			MarginBottom(1)
	liveOKStyle   = lipgloss.NewStyle().Foreground(accentColor)
	liveFailStyle = lipgloss.NewStyle().Bold(true).Foreground(dangerColor)
	liveDimStyle  = lipgloss.NewStyle().Foreground(dimTextColor)
)

type liveModel struct {
	title       string
	total       int
	steps       []LiveStep
	tick        int
	started     time.Time
	done        bool
	interrupted bool
	err         error
	cancel      func()
}

func newLiveModel(title string, total int, cancel func()) liveModel {
	return liveModel{title: title, total: total, cancel: cancel, started: time.Now()}
}

func liveTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return liveTickMsg(t)
	})
}

func (m liveModel) Init() tea.Cmd {
	return liveTick()
}

func (m liveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case liveTickMsg:
		if m.done {
			return m, nil
		}
		m.tick++
		return m, liveTick()

	case liveStepMsg:
		m.steps = append(m.steps, LiveStep(msg))
		return m, nil

	case liveDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			// İş kendi kendine bitene kadar beklenir; ara dosyalar temizlensin
			if !m.interrupted && m.cancel != nil {
				m.cancel()
			}
			m.interrupted = true
		}
	}
	return m, nil
}

func (m liveModel) View() string {
	var b strings.Builder
	b.WriteString(liveTitleStyle.Render(m.title))
	b.WriteString("\n")

	start := 0
	if len(m.steps) > liveVisibleSteps {
		start = len(m.steps) - liveVisibleSteps
		b.WriteString(liveDimStyle.Render(fmt.Sprintf("  … %d adım daha", start)))
		b.WriteString("\n")
	}
	for _, s := range m.steps[start:] {
		mark := liveOKStyle.Render("✓")
		if !s.Success {
			mark = liveFailStyle.Render("✗")
		}
		line := fmt.Sprintf("  %s #%02d %-9s %s (%ds)", mark, s.Index, s.Op, s.Output, s.Seconds)
		if s.Error != "" {
			line += " " + liveFailStyle.Render(firstLine(s.Error))
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	bar := NewProgressBar(m.total, "")
	bar.Width = 30
	bar.Current = len(m.steps)
	switch {
	case m.done && m.err != nil:
		b.WriteString(liveFailStyle.Render("  İşlem başarısız") + "\n")
	case m.done:
		b.WriteString(liveOKStyle.Render("  Tamamlandı") + "\n")
	case m.interrupted:
		b.WriteString(liveDimStyle.Render("  Durduruluyor, geçici dosyalar temizleniyor...") + "\n")
	default:
		frame := spinnerFrames[m.tick%len(spinnerFrames)]
		if m.total > 0 {
			b.WriteString(fmt.Sprintf("  %s %s\n", frame, bar.Render()))
		} else {
			b.WriteString(fmt.Sprintf("  %s %d adım\n", frame, len(m.steps)))
		}
	}
	b.WriteString(liveDimStyle.Render(fmt.Sprintf("  %s  ·  Ctrl+C ile durdur", FormatDuration(time.Since(m.started).Round(time.Second)))))
	b.WriteString("\n")
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// RunLive work'ü arka planda çalıştırırken adımları canlı gösterir.
// total beklenen adım sayısıdır; bilinmiyorsa 0 verilir.
func RunLive(title string, total int, cancel func(), work func(send func(LiveStep)) error) error {
	p := tea.NewProgram(newLiveModel(title, total, cancel))

	errCh := make(chan error, 1)
	go func() {
		err := work(func(s LiveStep) { p.Send(liveStepMsg(s)) })
		errCh <- err
		p.Send(liveDoneMsg{err: err})
	}()

	if _, err := p.Run(); err != nil {
		if cancel != nil {
			cancel()
		}
		<-errCh
		return err
	}
	return <-errCh
}
