package workdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Arena tek bir çalıştırmaya ait geçici dosyaların sahibidir.
// Close her çıkış yolunda çağrılmalıdır; dizin ve içindeki her şey silinir.
type Arena struct {
	dir  string
	keep bool

	mu       sync.Mutex
	seq      int
	live     map[string]struct{}
	released int
	closed   bool
}

// New parent altında benzersiz bir çalışma dizini açar.
// parent boşsa sistemin geçici dizini kullanılır.
func New(parent string, keep bool) (*Arena, error) {
	if parent != "" {
		if err := os.MkdirAll(parent, 0755); err != nil {
			return nil, fmt.Errorf("çalışma dizini oluşturulamadı: %w", err)
		}
	}
	dir, err := os.MkdirTemp(parent, "slidecast-*")
	if err != nil {
		return nil, fmt.Errorf("geçici klasör oluşturulamadı: %w", err)
	}
	return &Arena{
		dir:  dir,
		keep: keep,
		live: make(map[string]struct{}),
	}, nil
}

// Dir çalışma dizinini döner
func (a *Arena) Dir() string {
	return a.dir
}

// Fragment yeni bir parça yolu ayırır. Dosya oluşturulmaz, yazmak motorun işidir.
func (a *Arena) Fragment(label, ext string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return "", errors.New("çalışma dizini kapatılmış")
	}

	ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
	if ext == "" {
		ext = "wav"
	}
	label = sanitizeLabel(label)
	a.seq++
	name := fmt.Sprintf("%03d-%s-%s.%s", a.seq, label, uuid.NewString()[:8], ext)
	path := filepath.Join(a.dir, name)
	a.live[path] = struct{}{}
	return path, nil
}

// Release tüketilen bir parçayı siler. Arena'ya ait olmayan yollar yok sayılır.
func (a *Arena) Release(path string) error {
	a.mu.Lock()
	_, owned := a.live[path]
	if owned {
		delete(a.live, path)
		a.released++
	}
	keep := a.keep
	a.mu.Unlock()

	if !owned || keep {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Disown parçayı arena sahipliğinden çıkarır (ör. kalıcı hedefe taşındı)
func (a *Arena) Disown(path string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.live, path)
}

// Live henüz serbest bırakılmamış parça sayısı
func (a *Arena) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}

// Released serbest bırakılan parça sayısı
func (a *Arena) Released() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.released
}

// Close çalışma dizinini siler. keep açıksa dizin yerinde bırakılır.
// Birden fazla çağrılabilir.
func (a *Arena) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.live = make(map[string]struct{})
	a.mu.Unlock()

	if a.keep {
		return nil
	}
	return os.RemoveAll(a.dir)
}

func sanitizeLabel(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return "frag"
	}
	var b strings.Builder
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	if len(out) > 24 {
		out = out[:24]
	}
	return out
}
