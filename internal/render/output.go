package render

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	ConflictOverwrite = "overwrite"
	ConflictSkip      = "skip"
	ConflictVersioned = "versioned"
)

// NormalizeConflictPolicy geçersiz değerlerde "" döner; boş değer overwrite'tır
// (ffmpeg -y ile aynı davranış).
func NormalizeConflictPolicy(policy string) string {
	switch strings.ToLower(strings.TrimSpace(policy)) {
	case ConflictOverwrite, "":
		return ConflictOverwrite
	case ConflictSkip:
		return ConflictSkip
	case ConflictVersioned:
		return ConflictVersioned
	default:
		return ""
	}
}

// ResolveOutputPathConflict hedef dosya adı çakışmasını verilen policy'ye göre çözer.
// skip=true dönerse render atlanmalıdır.
func ResolveOutputPathConflict(path, policy string) (resolvedPath string, skip bool, err error) {
	normalized := NormalizeConflictPolicy(policy)
	if normalized == "" {
		return "", false, fmt.Errorf("gecersiz on-conflict politikasi: %s", policy)
	}

	_, statErr := os.Stat(path)
	if statErr != nil {
		if errors.Is(statErr, os.ErrNotExist) {
			return path, false, nil
		}
		return "", false, statErr
	}

	switch normalized {
	case ConflictOverwrite:
		return path, false, nil
	case ConflictSkip:
		return path, true, nil
	default:
		ext := filepath.Ext(path)
		base := strings.TrimSuffix(path, ext)
		for i := 1; i < 100000; i++ {
			candidate := fmt.Sprintf("%s (%d)%s", base, i, ext)
			if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
				return candidate, false, nil
			} else if err != nil {
				return "", false, err
			}
		}
		return "", false, fmt.Errorf("uygun versioned dosya adi bulunamadi")
	}
}

// DefaultOutputFor script yolundan video çıktı adı türetir (lecture.txt -> lecture.mp4)
func DefaultOutputFor(scriptPath, outputDir string) string {
	base := strings.TrimSuffix(filepath.Base(scriptPath), filepath.Ext(scriptPath))
	if base == "" || base == "." {
		base = "output"
	}
	dir := outputDir
	if dir == "" {
		dir = filepath.Dir(scriptPath)
	}
	return filepath.Join(dir, base+".mp4")
}
