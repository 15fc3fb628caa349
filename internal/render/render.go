package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mlihgenel/slidecast-cli/internal/assemble"
	"github.com/mlihgenel/slidecast-cli/internal/engine"
	"github.com/mlihgenel/slidecast-cli/internal/script"
	"github.com/mlihgenel/slidecast-cli/internal/workdir"
)

const (
	DefaultImage  = "src/background.png"
	DefaultOutput = "output.mp4"

	// verifyTolerance ölçülen ve beklenen süre arasındaki kabul edilen fark (saniye)
	verifyTolerance = 1.0
)

// Options tek bir render çalıştırmasının ayarları
type Options struct {
	Scripts []string  // boşsa Stdin okunur
	Stdin   io.Reader // "-" ve boş Scripts için
	Lines   []string  // doluysa Scripts/Stdin yeniden okunmaz

	Audio  string // birleştirilmiş sesin kalıcı yolu; boşsa geçici kalır
	Image  string
	Output string

	Fade           bool
	FadeMargin     int
	FragmentFormat string

	OnConflict string
	WorkDir    string
	KeepTemps  bool

	// Verify açıksa çıktı süresi Probe ile ölçülüp beklenenle karşılaştırılır
	Verify bool
	Probe  func(ctx context.Context, path string) (float64, error)

	OnStep    func(assemble.Step)
	OnWarning func(msg string)
}

func (o Options) image() string {
	if strings.TrimSpace(o.Image) == "" {
		return DefaultImage
	}
	return o.Image
}

func (o Options) output() string {
	if strings.TrimSpace(o.Output) == "" {
		return DefaultOutput
	}
	return o.Output
}

// Result render sonucunu tutar.
type Result struct {
	Scripts         []string        `json:"scripts"`
	Output          string          `json:"output"`
	Audio           string          `json:"audio,omitempty"`
	Skipped         bool            `json:"skipped,omitempty"`
	Sources         int             `json:"sources"`
	Ranges          int             `json:"ranges"`
	ExpectedSeconds int             `json:"expected_seconds"`
	MeasuredSeconds float64         `json:"measured_seconds,omitempty"`
	Warnings        []string        `json:"warnings,omitempty"`
	StartedAt       time.Time       `json:"started_at"`
	EndedAt         time.Time       `json:"ended_at"`
	Duration        time.Duration   `json:"duration"`
	Steps           []assemble.Step `json:"steps"`
	Error           string          `json:"error,omitempty"`
}

// Preload script satırlarını bir kez okuyup Lines'a yazar.
// Stdin tek seferlik okunabildiği için plan ve render aynı satırları kullanır.
func (o Options) Preload() (Options, error) {
	if o.Lines != nil {
		return o, nil
	}
	lines, err := ReadScripts(o.Scripts, o.Stdin)
	if err != nil {
		return o, err
	}
	if lines == nil {
		lines = []string{}
	}
	o.Lines = lines
	return o, nil
}

// Load script(leri) okuyup ayrıştırır
func Load(opts Options) (script.Result, error) {
	opts, err := opts.Preload()
	if err != nil {
		return script.Result{}, err
	}
	return script.ParseLines(opts.Lines, script.Options{Fade: opts.Fade, FadeMargin: opts.FadeMargin})
}

// Run script'i okur, sesi birleştirir ve videoyu üretir.
// Hata durumunda da o ana kadarki adımları içeren Result döner.
func Run(ctx context.Context, eng engine.Engine, opts Options) (Result, error) {
	result := Result{
		Scripts:   opts.Scripts,
		Output:    opts.output(),
		Audio:     opts.Audio,
		StartedAt: time.Now(),
	}
	finish := func(err error) (Result, error) {
		result.EndedAt = time.Now()
		result.Duration = result.EndedAt.Sub(result.StartedAt)
		if err != nil {
			result.Error = err.Error()
		}
		return result, err
	}
	warn := func(msg string) {
		result.Warnings = append(result.Warnings, msg)
		if opts.OnWarning != nil {
			opts.OnWarning(msg)
		}
	}

	parsed, err := Load(opts)
	if err != nil {
		return finish(err)
	}
	for _, w := range parsed.Warnings {
		warn(w.String())
	}

	asmOpts := assemble.Options{Fade: opts.Fade, FadeMargin: opts.FadeMargin, Format: opts.FragmentFormat}
	est := assemble.Expect(parsed.Crops, asmOpts)
	result.Sources, result.Ranges = est.Sources, est.Ranges
	result.ExpectedSeconds = est.Seconds
	if est.Ranges == 0 {
		return finish(assemble.ErrEmptyScript)
	}

	output, skip, err := ResolveOutputPathConflict(result.Output, opts.OnConflict)
	if err != nil {
		return finish(err)
	}
	if skip {
		result.Skipped = true
		warn(fmt.Sprintf("%s zaten mevcut, atlandı", output))
		return finish(nil)
	}
	result.Output = output

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return finish(fmt.Errorf("çıktı dizini oluşturulamadı: %w", err))
	}
	lock, err := lockOutput(output)
	if err != nil {
		return finish(err)
	}
	defer lock.release()

	arena, err := workdir.New(opts.WorkDir, opts.KeepTemps)
	if err != nil {
		return finish(err)
	}
	defer arena.Close()

	asm := assemble.New(eng, arena, asmOpts)
	asm.OnStep = opts.OnStep
	asm.OnWarning = warn

	track, err := asm.Assemble(ctx, parsed.Crops, opts.Audio)
	result.Steps = asm.Steps()
	if err != nil {
		return finish(err)
	}
	result.ExpectedSeconds = track.Seconds

	_, err = asm.Compose(ctx, opts.image(), track, output)
	result.Steps = asm.Steps()
	if err != nil {
		return finish(err)
	}

	if opts.Verify && opts.Probe != nil {
		measured, err := opts.Probe(ctx, output)
		if err != nil {
			warn(fmt.Sprintf("süre doğrulanamadı: %v", err))
		} else {
			result.MeasuredSeconds = measured
			if math.Abs(measured-float64(track.Seconds)) > verifyTolerance {
				warn(fmt.Sprintf("çıktı süresi beklenenden farklı: %.1fs ölçüldü, %ds bekleniyordu", measured, track.Seconds))
			}
		}
	}

	return finish(nil)
}

// IsUserError hatanın script/girdi kaynaklı olup olmadığını döner
func IsUserError(err error) bool {
	var perr *script.ParseError
	return errors.As(err, &perr) || errors.Is(err, assemble.ErrEmptyScript)
}
