package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	OpExtract   = "extract"
	OpConcat    = "concat"
	OpCrossfade = "crossfade"
	OpCompose   = "compose"
)

// Call Recorder'ın kaydettiği tek bir motor çağrısı
type Call struct {
	Op      string   `json:"op"`
	Inputs  []string `json:"inputs"`
	Output  string   `json:"output"`
	Begin   int      `json:"begin,omitempty"`
	Seconds int      `json:"seconds,omitempty"` // extract: süre, crossfade: geçiş
}

func (c Call) String() string {
	switch c.Op {
	case OpExtract:
		return fmt.Sprintf("extract %s @%d+%d -> %s", firstOf(c.Inputs), c.Begin, c.Seconds, c.Output)
	case OpCrossfade:
		return fmt.Sprintf("crossfade(%ds) %s -> %s", c.Seconds, strings.Join(c.Inputs, " + "), c.Output)
	default:
		return fmt.Sprintf("%s %s -> %s", c.Op, strings.Join(c.Inputs, " | "), c.Output)
	}
}

// Recorder hiçbir şey çalıştırmadan çağrıları kaydeden Engine.
// Süreleri simüle eder; WriteFiles açıksa çıktı yerine küçük dosyalar yazar.
type Recorder struct {
	WriteFiles bool
	// Sources kaynak dosya süreleri; tanımsız kaynaklar sınırsız kabul edilir
	Sources map[string]int
	// FailOn nil değilse her çağrıdan önce çalışır, hata dönerse çağrı başarısız olur
	FailOn func(Call) error

	mu        sync.Mutex
	calls     []Call
	durations map[string]int
}

// NewRecorder yeni bir Recorder oluşturur
func NewRecorder(writeFiles bool) *Recorder {
	return &Recorder{
		WriteFiles: writeFiles,
		durations:  make(map[string]int),
	}
}

// Calls kaydedilen çağrıların kopyasını döner
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Ops yalnızca işlem adlarını döner
func (r *Recorder) Ops() []string {
	calls := r.Calls()
	ops := make([]string, len(calls))
	for i, c := range calls {
		ops[i] = c.Op
	}
	return ops
}

// Duration simüle edilen dosya süresini döner
func (r *Recorder) Duration(path string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.durations[path]
	return d, ok
}

// Renamed dosya motor dışında taşındığında simüle süreyi yeni yola aktarır
func (r *Recorder) Renamed(from, to string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensure()
	if d, ok := r.durations[from]; ok {
		r.durations[to] = d
		delete(r.durations, from)
	}
}

func (r *Recorder) Extract(ctx context.Context, source string, begin, duration int, output string) error {
	call := Call{Op: OpExtract, Inputs: []string{source}, Output: output, Begin: begin, Seconds: duration}
	if err := r.record(ctx, call); err != nil {
		return err
	}
	if limit, ok := r.Sources[source]; ok && begin+duration > limit {
		return fmt.Errorf("%s: aralik kaynak suresini asiyor (%d > %d)", source, begin+duration, limit)
	}
	return r.produce(output, duration, fmt.Sprintf("%s@%d+%d\n", filepath.Base(source), begin, duration))
}

func (r *Recorder) Concat(ctx context.Context, inputs []string, output string) error {
	call := Call{Op: OpConcat, Inputs: append([]string(nil), inputs...), Output: output}
	if err := r.record(ctx, call); err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("concat icin en az bir girdi gerekli")
	}
	total := 0
	var body strings.Builder
	for _, in := range inputs {
		d, err := r.inputDuration(in)
		if err != nil {
			return err
		}
		total += d
		body.WriteString(r.read(in))
	}
	return r.produce(output, total, body.String())
}

func (r *Recorder) Crossfade(ctx context.Context, left, right string, seconds int, output string) error {
	call := Call{Op: OpCrossfade, Inputs: []string{left, right}, Output: output, Seconds: seconds}
	if err := r.record(ctx, call); err != nil {
		return err
	}
	l, err := r.inputDuration(left)
	if err != nil {
		return err
	}
	rd, err := r.inputDuration(right)
	if err != nil {
		return err
	}
	if l < seconds || rd < seconds {
		return fmt.Errorf("crossfade icin girdiler en az %ds olmali (%d, %d)", seconds, l, rd)
	}
	return r.produce(output, l+rd-seconds, r.read(left)+r.read(right))
}

func (r *Recorder) Compose(ctx context.Context, image, audio, output string) error {
	call := Call{Op: OpCompose, Inputs: []string{image, audio}, Output: output}
	if err := r.record(ctx, call); err != nil {
		return err
	}
	d, err := r.inputDuration(audio)
	if err != nil {
		return err
	}
	return r.produce(output, d, "video:"+r.read(audio))
}

func (r *Recorder) record(ctx context.Context, call Call) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	r.ensure()
	r.calls = append(r.calls, call)
	r.mu.Unlock()
	if r.FailOn != nil {
		return r.FailOn(call)
	}
	return nil
}

func (r *Recorder) ensure() {
	if r.durations == nil {
		r.durations = make(map[string]int)
	}
}

func (r *Recorder) inputDuration(path string) (int, error) {
	r.mu.Lock()
	d, ok := r.durations[path]
	r.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("girdi bulunamadi: %s", path)
	}
	if r.WriteFiles {
		if _, err := os.Stat(path); err != nil {
			return 0, fmt.Errorf("girdi bulunamadi: %w", err)
		}
	}
	return d, nil
}

func (r *Recorder) read(path string) string {
	if !r.WriteFiles {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

func (r *Recorder) produce(output string, seconds int, body string) error {
	if r.WriteFiles {
		if err := os.WriteFile(output, []byte(body), 0644); err != nil {
			return err
		}
	}
	r.mu.Lock()
	r.durations[output] = seconds
	r.mu.Unlock()
	return nil
}

func firstOf(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}
