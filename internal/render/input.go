package render

import (
	"fmt"
	"io"
	"os"

	"github.com/mlihgenel/slidecast-cli/internal/script"
)

// ReadScripts script dosyalarının satırlarını sırayla birleştirir.
// paths boşsa ya da "-" içeriyorsa stdin okunur.
func ReadScripts(paths []string, stdin io.Reader) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{"-"}
	}

	var lines []string
	for _, p := range paths {
		var r io.Reader
		if p == "-" {
			if stdin == nil {
				return nil, fmt.Errorf("stdin okunamiyor")
			}
			r = stdin
		} else {
			f, err := os.Open(p)
			if err != nil {
				return nil, fmt.Errorf("script okunamadi: %w", err)
			}
			r = f
			defer f.Close()
		}

		got, err := script.ReadLines(r)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		lines = append(lines, got...)
	}
	return lines, nil
}
