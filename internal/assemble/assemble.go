package assemble

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mlihgenel/slidecast-cli/internal/engine"
	"github.com/mlihgenel/slidecast-cli/internal/script"
	"github.com/mlihgenel/slidecast-cli/internal/workdir"
)

var (
	ErrExtraction  = errors.New("kesit çıkarılamadı")
	ErrJoin        = errors.New("parçalar birleştirilemedi")
	ErrCompose     = errors.New("video oluşturulamadı")
	ErrEmptyScript = errors.New("script hiç kesit içermiyor")
)

// Fragment çalışma dizinindeki tek kullanımlık ara ses dosyası
type Fragment struct {
	Path    string
	Seconds int // beklenen süre
}

// Track kalıcı hedefe taşınmış nihai ses
type Track struct {
	Path    string `json:"path"`
	Seconds int    `json:"seconds"`
}

// Options birleştirme ayarları
type Options struct {
	Fade       bool
	FadeMargin int
	Format     string // ara parça uzantısı, varsayılan wav
}

func (o Options) margin() int {
	if o.FadeMargin > 0 {
		return o.FadeMargin
	}
	return script.DefaultFadeMargin
}

func (o Options) format() string {
	if o.Format == "" {
		return "wav"
	}
	return o.Format
}

// Step motor çağrısı kaydı
type Step struct {
	Index    int           `json:"index"`
	Op       string        `json:"op"`
	Inputs   []string      `json:"inputs"`
	Output   string        `json:"output"`
	Seconds  int           `json:"seconds"`
	Duration time.Duration `json:"duration"`
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
}

// Assembler tek bir çalıştırmanın kesme/birleştirme akışını yürütür.
// Eşzamanlı kullanım için değildir; tüm çağrılar sırayla yapılır.
type Assembler struct {
	engine engine.Engine
	arena  *workdir.Arena
	opts   Options

	// OnStep her motor çağrısından sonra çağrılır
	OnStep func(Step)
	// OnWarning hata olmayan durumları bildirir
	OnWarning func(msg string)

	steps []Step
}

// New yeni bir Assembler oluşturur
func New(eng engine.Engine, arena *workdir.Arena, opts Options) *Assembler {
	return &Assembler{engine: eng, arena: arena, opts: opts}
}

// Steps şimdiye kadar yapılan motor çağrılarını döner
func (a *Assembler) Steps() []Step {
	return append([]Step(nil), a.steps...)
}

// Extract kaynaktan tek bir kesiti yeni bir parçaya çıkarır
func (a *Assembler) Extract(ctx context.Context, source string, r script.TimeRange) (Fragment, error) {
	out, err := a.arena.Fragment("extract", a.opts.format())
	if err != nil {
		return Fragment{}, err
	}

	started := time.Now()
	err = a.engine.Extract(ctx, source, r.Begin, r.Duration, out)
	a.record(engine.OpExtract, []string{source}, out, r.Duration, started, err)
	if err != nil {
		_ = a.arena.Release(out)
		return Fragment{}, fmt.Errorf("%w: %s %s: %w", ErrExtraction, source, r, err)
	}
	return Fragment{Path: out, Seconds: r.Duration}, nil
}

// Join iki parçayı birleştirir. Fade açıksa crossfade, değilse codec copy concat.
// Girdiler tüketilir ve serbest bırakılır.
func (a *Assembler) Join(ctx context.Context, left, right Fragment) (Fragment, error) {
	out, err := a.arena.Fragment("join", a.opts.format())
	if err != nil {
		return Fragment{}, err
	}

	op := engine.OpConcat
	seconds := left.Seconds + right.Seconds
	started := time.Now()
	if a.opts.Fade {
		op = engine.OpCrossfade
		seconds -= a.opts.margin()
		err = a.engine.Crossfade(ctx, left.Path, right.Path, a.opts.margin(), out)
	} else {
		err = a.engine.Concat(ctx, []string{left.Path, right.Path}, out)
	}
	a.record(op, []string{left.Path, right.Path}, out, seconds, started, err)
	if err != nil {
		_ = a.arena.Release(out)
		return Fragment{}, fmt.Errorf("%w: %s + %s: %w", ErrJoin, filepath.Base(left.Path), filepath.Base(right.Path), err)
	}

	if err := a.release(left, right); err != nil {
		return Fragment{}, err
	}
	return Fragment{Path: out, Seconds: seconds}, nil
}

// ConcatMany parçaları sırasıyla tek parçaya indirger.
//
// Tek parça olduğu gibi döner. Fade kapalıyken ikiden fazla parça tek bir
// N'li concat ile birleşir. Fade açıkken crossfade yalnızca iki girdi
// aldığından soldan katlanır: join(join(A, B), C) ...
func (a *Assembler) ConcatMany(ctx context.Context, fragments []Fragment) (Fragment, error) {
	switch {
	case len(fragments) == 0:
		return Fragment{}, fmt.Errorf("%w: birleştirilecek parça yok", ErrJoin)
	case len(fragments) == 1:
		return fragments[0], nil
	case len(fragments) == 2:
		return a.Join(ctx, fragments[0], fragments[1])
	case !a.opts.Fade:
		return a.concatFlat(ctx, fragments)
	}

	acc := fragments[0]
	for _, next := range fragments[1:] {
		joined, err := a.Join(ctx, acc, next)
		if err != nil {
			return Fragment{}, err
		}
		acc = joined
	}
	return acc, nil
}

func (a *Assembler) concatFlat(ctx context.Context, fragments []Fragment) (Fragment, error) {
	out, err := a.arena.Fragment("concat", a.opts.format())
	if err != nil {
		return Fragment{}, err
	}

	inputs := make([]string, len(fragments))
	seconds := 0
	for i, f := range fragments {
		inputs[i] = f.Path
		seconds += f.Seconds
	}

	started := time.Now()
	err = a.engine.Concat(ctx, inputs, out)
	a.record(engine.OpConcat, inputs, out, seconds, started, err)
	if err != nil {
		_ = a.arena.Release(out)
		return Fragment{}, fmt.Errorf("%w: %d parça: %w", ErrJoin, len(fragments), err)
	}

	if err := a.release(fragments...); err != nil {
		return Fragment{}, err
	}
	return Fragment{Path: out, Seconds: seconds}, nil
}

// Assemble script'teki her dosyanın kesitlerini önce kendi içinde bir
// "volume"da, sonra tüm volume'ları tek bir track'te birleştirir.
// dest boşsa track çalışma dizininde kalır ve arena kapanınca silinir.
func (a *Assembler) Assemble(ctx context.Context, crops *script.CropInfo, dest string) (Track, error) {
	var volumes []Fragment

	for _, d := range crops.Directives() {
		if len(d.Ranges) == 0 {
			a.warn(fmt.Sprintf("%s için kesit tanımlanmamış, atlandı", d.Source))
			continue
		}

		frags := make([]Fragment, 0, len(d.Ranges))
		for _, r := range d.Ranges {
			f, err := a.Extract(ctx, d.Source, r)
			if err != nil {
				return Track{}, err
			}
			frags = append(frags, f)
		}

		volume, err := a.ConcatMany(ctx, frags)
		if err != nil {
			return Track{}, err
		}
		volumes = append(volumes, volume)
	}

	if len(volumes) == 0 {
		return Track{}, ErrEmptyScript
	}

	final, err := a.ConcatMany(ctx, volumes)
	if err != nil {
		return Track{}, err
	}
	return a.promote(final, dest)
}

// Compose track'i sabit görselle videoya çevirir
func (a *Assembler) Compose(ctx context.Context, image string, track Track, output string) (string, error) {
	started := time.Now()
	err := a.engine.Compose(ctx, image, track.Path, output)
	a.record(engine.OpCompose, []string{image, track.Path}, output, track.Seconds, started, err)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrCompose, output, err)
	}
	return output, nil
}

// promote son parçayı hedef yola taşır. Taşıma başarısızsa kopyalar.
func (a *Assembler) promote(final Fragment, dest string) (Track, error) {
	if dest == "" || dest == final.Path {
		return Track{Path: final.Path, Seconds: final.Seconds}, nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return Track{}, fmt.Errorf("ses çıktı dizini oluşturulamadı: %w", err)
	}

	if err := moveFile(final.Path, dest); err != nil {
		return Track{}, fmt.Errorf("ses dosyası taşınamadı: %w", err)
	}
	a.arena.Disown(final.Path)
	if obs, ok := a.engine.(engine.RenameObserver); ok {
		obs.Renamed(final.Path, dest)
	}
	return Track{Path: dest, Seconds: final.Seconds}, nil
}

func (a *Assembler) release(fragments ...Fragment) error {
	for _, f := range fragments {
		if err := a.arena.Release(f.Path); err != nil {
			return fmt.Errorf("ara dosya silinemedi: %w", err)
		}
	}
	return nil
}

func (a *Assembler) record(op string, inputs []string, output string, seconds int, started time.Time, err error) {
	step := Step{
		Index:    len(a.steps) + 1,
		Op:       op,
		Inputs:   inputs,
		Output:   output,
		Seconds:  seconds,
		Duration: time.Since(started),
		Success:  err == nil,
	}
	if err != nil {
		step.Error = err.Error()
	}
	a.steps = append(a.steps, step)
	if a.OnStep != nil {
		a.OnStep(step)
	}
}

func (a *Assembler) warn(msg string) {
	if a.OnWarning != nil {
		a.OnWarning(msg)
	}
}

func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	// Farklı dosya sistemleri arasında rename çalışmaz
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
