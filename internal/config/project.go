package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const projectConfigFileName = ".slidecast.toml"

// ProjectConfig proje bazlı CLI varsayılanlarını tutar.
// Boş bırakılan alanlar "tanımsız" kabul edilir ve flag/env/varsayılana düşer.
type ProjectConfig struct {
	Fade           *bool  `toml:"fade"`
	FadeMargin     int    `toml:"fade_margin"`
	Image          string `toml:"image"`
	Output         string `toml:"output"`
	FragmentFormat string `toml:"fragment_format"`
	AudioBitrate   string `toml:"audio_bitrate"`
	Profile        string `toml:"profile"`
	Workers        int    `toml:"workers"`
	Retry          int    `toml:"retry"`
	OnConflict     string `toml:"on_conflict"`
	ReportFormat   string `toml:"report_format"`
	FFmpegPath     string `toml:"ffmpeg_path"`
	WorkDir        string `toml:"work_dir"`

	RawTimeout    string `toml:"timeout"`
	RawRetryDelay string `toml:"retry_delay"`

	Timeout    time.Duration `toml:"-"`
	RetryDelay time.Duration `toml:"-"`
}

// LoadProjectConfig currentDir'den yukarı doğru .slidecast.toml arar.
// Dosya yoksa (nil, "", nil) döner.
func LoadProjectConfig(currentDir string) (*ProjectConfig, string, error) {
	path, err := findProjectConfigPath(currentDir)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		return nil, "", nil
	}

	cfg, err := parseConfigFile(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func findProjectConfigPath(startDir string) (string, error) {
	if strings.TrimSpace(startDir) == "" {
		return "", errors.New("gecersiz calisma dizini")
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		candidate := filepath.Join(dir, projectConfigFileName)
		info, statErr := os.Stat(candidate)
		if statErr == nil && !info.IsDir() {
			return candidate, nil
		}
		if statErr != nil && !errors.Is(statErr, os.ErrNotExist) {
			return "", statErr
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", nil
}

func parseConfigFile(path string) (*ProjectConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := &ProjectConfig{}
	if err := toml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("%s: config parse hatasi: %w", path, err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *ProjectConfig) normalize() error {
	c.OnConflict = strings.ToLower(strings.TrimSpace(c.OnConflict))
	c.ReportFormat = strings.ToLower(strings.TrimSpace(c.ReportFormat))
	c.Profile = strings.ToLower(strings.TrimSpace(c.Profile))
	c.FragmentFormat = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(c.FragmentFormat)), ".")

	if c.FadeMargin < 0 {
		return fmt.Errorf("fade_margin 0 veya daha buyuk olmali")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers 0 veya daha buyuk olmali")
	}
	if c.Retry < 0 {
		return fmt.Errorf("retry 0 veya daha buyuk olmali")
	}

	var err error
	if c.Timeout, err = parseDuration("timeout", c.RawTimeout); err != nil {
		return err
	}
	if c.RetryDelay, err = parseDuration("retry_delay", c.RawRetryDelay); err != nil {
		return err
	}
	return nil
}

func parseDuration(key, raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: gecersiz sure degeri: %s", key, raw)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s negatif olamaz", key)
	}
	return d, nil
}

// Merge other'daki tanımlı alanları c'nin tanımsız alanlarına kopyalar.
// c öncelikli katmandır (ör. proje > kullanıcı).
func (c *ProjectConfig) Merge(other *ProjectConfig) *ProjectConfig {
	if c == nil {
		return other
	}
	if other == nil {
		return c
	}
	out := *c
	if out.Fade == nil {
		out.Fade = other.Fade
	}
	if out.FadeMargin == 0 {
		out.FadeMargin = other.FadeMargin
	}
	if out.Image == "" {
		out.Image = other.Image
	}
	if out.Output == "" {
		out.Output = other.Output
	}
	if out.FragmentFormat == "" {
		out.FragmentFormat = other.FragmentFormat
	}
	if out.AudioBitrate == "" {
		out.AudioBitrate = other.AudioBitrate
	}
	if out.Profile == "" {
		out.Profile = other.Profile
	}
	if out.Workers == 0 {
		out.Workers = other.Workers
	}
	if out.Retry == 0 {
		out.Retry = other.Retry
	}
	if out.OnConflict == "" {
		out.OnConflict = other.OnConflict
	}
	if out.ReportFormat == "" {
		out.ReportFormat = other.ReportFormat
	}
	if out.FFmpegPath == "" {
		out.FFmpegPath = other.FFmpegPath
	}
	if out.WorkDir == "" {
		out.WorkDir = other.WorkDir
	}
	if out.Timeout == 0 {
		out.Timeout = other.Timeout
	}
	if out.RetryDelay == 0 {
		out.RetryDelay = other.RetryDelay
	}
	return &out
}
