package watch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mlihgenel/slidecast-cli/internal/batch"
)

// ScriptNotifier script değişikliklerini fsnotify ile yakalar, dosya
// durumunu yine polling Watcher'a sordurur. Render çıktıları (.mp4, .wav)
// ve editör geçici dosyaları sinyal üretmez.
type ScriptNotifier struct {
	*Watcher

	fsw     *fsnotify.Watcher
	signals chan struct{}
	stop    chan struct{}
	stopped sync.Once
}

// NewScriptNotifier fsnotify tabanlı izleyiciyi kurar.
func NewScriptNotifier(root string, exts []string, recursive bool, settleFor time.Duration) (*ScriptNotifier, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &ScriptNotifier{
		Watcher: NewWatcher(root, exts, recursive, settleFor),
		fsw:     fsw,
		signals: make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}, nil
}

// NewAdaptiveWatcher önce fsnotify'ı dener. Kurulamazsa hatayla birlikte
// polling Watcher döner; çağıran uyarı basıp devam edebilir.
func NewAdaptiveWatcher(root string, exts []string, recursive bool, settleFor time.Duration) (Backend, error) {
	n, err := NewScriptNotifier(root, exts, recursive, settleFor)
	if err != nil {
		return NewWatcher(root, exts, recursive, settleFor), err
	}
	return n, nil
}

// Bootstrap mevcut script'leri kaydeder ve dizinleri izlemeye alır.
func (n *ScriptNotifier) Bootstrap() error {
	if err := n.Watcher.Bootstrap(); err != nil {
		return err
	}
	if err := n.addTree(n.Root); err != nil {
		return err
	}
	go n.forward()
	return nil
}

func (n *ScriptNotifier) Events() <-chan struct{} { return n.signals }

func (n *ScriptNotifier) Mode() string { return "fsnotify+polling" }

func (n *ScriptNotifier) Close() error {
	n.stopped.Do(func() { close(n.stop) })
	return n.fsw.Close()
}

func (n *ScriptNotifier) forward() {
	for {
		select {
		case <-n.stop:
			return
		case evt, ok := <-n.fsw.Events:
			if !ok {
				return
			}
			if n.relevant(evt) {
				n.notify()
			}
		case _, ok := <-n.fsw.Errors:
			if !ok {
				return
			}
			// kaçan event'ler bir sonraki poll'da yakalanır
			n.notify()
		}
	}
}

// relevant event'in bir script'i ya da yeni bir alt dizini ilgilendirip
// ilgilendirmediğini döner. Yeni alt dizinler izlemeye eklenir.
func (n *ScriptNotifier) relevant(evt fsnotify.Event) bool {
	if evt.Op == fsnotify.Chmod {
		return false
	}
	if isScratchFile(filepath.Base(evt.Name)) {
		return false
	}
	if evt.Has(fsnotify.Create) && n.Recursive {
		if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
			_ = n.addTree(evt.Name)
			return true
		}
	}
	return batch.HasScriptExtension(evt.Name, n.Exts)
}

func (n *ScriptNotifier) notify() {
	select {
	case n.signals <- struct{}{}:
	default:
	}
}

func (n *ScriptNotifier) addTree(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("watch yolu dizin olmalidir: %s", dir)
	}
	if !n.Recursive {
		return n.fsw.Add(dir)
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return n.fsw.Add(path)
	})
}

// isScratchFile editörlerin kayıt sırasında bıraktığı geçici dosyalar
func isScratchFile(name string) bool {
	return strings.HasPrefix(name, ".#") ||
		strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".swp") ||
		strings.HasSuffix(name, ".swx")
}
