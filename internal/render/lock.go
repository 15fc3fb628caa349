package render

import (
	"errors"
	"fmt"
	"os"

	"github.com/gofrs/flock"
)

// ErrOutputLocked aynı çıktıya başka bir süreç yazıyor
var ErrOutputLocked = errors.New("çıktı dosyası başka bir işlem tarafından kullanılıyor")

type outputLock struct {
	path string
	lock *flock.Flock
}

// lockOutput çıktının yanında <output>.lock dosyasıyla tekil yazıcı kilidi alır
func lockOutput(output string) (*outputLock, error) {
	path := output + ".lock"
	l := flock.New(path)
	ok, err := l.TryLock()
	if err != nil {
		return nil, fmt.Errorf("kilit alinamadi: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOutputLocked, output)
	}
	return &outputLock{path: path, lock: l}, nil
}

func (o *outputLock) release() {
	if o == nil {
		return
	}
	_ = o.lock.Unlock()
	_ = os.Remove(o.path)
}
