package engine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Engine dış medya motorunun dört işlemi.
// Pipeline yalnızca bu arayüzü görür; testlerde Recorder kullanılır.
type Engine interface {
	// Extract kaynaktan [begin, begin+duration) aralığını codec copy ile keser
	Extract(ctx context.Context, source string, begin, duration int, output string) error
	// Concat girdileri codec copy ile uç uca ekler
	Concat(ctx context.Context, inputs []string, output string) error
	// Crossfade iki girdiyi seconds süreli geçişle birleştirir
	Crossfade(ctx context.Context, left, right string, seconds int, output string) error
	// Compose sabit görseli ses boyunca döngüleyip video üretir
	Compose(ctx context.Context, image, audio, output string) error
}

const (
	DefaultAudioBitrate = "192k"
	DefaultVideoCodec   = "libx264"
	DefaultAudioCodec   = "aac"
)

// FFmpeg Engine'in ffmpeg ile çalışan gerçeklemesi
type FFmpeg struct {
	Binary       string
	Verbose      bool
	Timeout      time.Duration // her çağrı için; 0 ise sınırsız
	AudioBitrate string
	VideoCodec   string
	AudioCodec   string
	Preset       string

	// Output verbose modda ffmpeg çıktısının yazılacağı yer
	Output func(line string)
}

// NewFFmpeg ffmpeg'i bulup varsayılanlarla bir motor döner
func NewFFmpeg(binary string) (*FFmpeg, error) {
	path, err := FindFFmpeg(binary)
	if err != nil {
		return nil, err
	}
	return &FFmpeg{
		Binary:       path,
		AudioBitrate: DefaultAudioBitrate,
		VideoCodec:   DefaultVideoCodec,
		AudioCodec:   DefaultAudioCodec,
	}, nil
}

func (f *FFmpeg) Extract(ctx context.Context, source string, begin, duration int, output string) error {
	return f.run(ctx, "kesit", f.withLogLevel(ExtractArgs(source, begin, duration, output)))
}

func (f *FFmpeg) Concat(ctx context.Context, inputs []string, output string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("concat icin en az bir girdi gerekli")
	}
	return f.run(ctx, "concat", f.withLogLevel(ConcatArgs(inputs, output)))
}

func (f *FFmpeg) Crossfade(ctx context.Context, left, right string, seconds int, output string) error {
	return f.run(ctx, "crossfade", f.withLogLevel(CrossfadeArgs(left, right, seconds, output)))
}

func (f *FFmpeg) Compose(ctx context.Context, image, audio, output string) error {
	opts := ComposeOptions{
		VideoCodec:   f.VideoCodec,
		AudioCodec:   f.AudioCodec,
		AudioBitrate: f.AudioBitrate,
		Preset:       f.Preset,
	}
	return f.run(ctx, "video", f.withLogLevel(ComposeArgs(image, audio, output, opts)))
}

func (f *FFmpeg) withLogLevel(args []string) []string {
	if f.Verbose {
		return args
	}
	return append([]string{"-loglevel", "error"}, args...)
}

func (f *FFmpeg) run(ctx context.Context, label string, args []string) error {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	binary := f.Binary
	if binary == "" {
		binary = "ffmpeg"
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	out, err := cmd.CombinedOutput()
	if f.Verbose && f.Output != nil && len(out) > 0 {
		for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
			f.Output(line)
		}
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s ffmpeg hatasi: %w", label, ctxErr)
		}
		return fmt.Errorf("%s ffmpeg hatasi: %w\n%s", label, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// ExtractArgs kesit çıkarma argümanları (-ss girdi öncesinde, hızlı arama)
func ExtractArgs(source string, begin, duration int, output string) []string {
	return []string{
		"-ss", strconv.Itoa(begin),
		"-t", strconv.Itoa(duration),
		"-y",
		"-i", source,
		"-c", "copy",
		output,
	}
}

// ConcatArgs concat protocol ile birleştirme argümanları
func ConcatArgs(inputs []string, output string) []string {
	return []string{
		"-i", "concat:" + strings.Join(inputs, "|"),
		"-y",
		"-c", "copy",
		output,
	}
}

// CrossfadeArgs acrossfade filtresi argümanları. Geçiş bölgesinde iki
// girdi üst üste biner; çıktı süresi toplamdan seconds kadar kısadır.
func CrossfadeArgs(left, right string, seconds int, output string) []string {
	return []string{
		"-i", left,
		"-i", right,
		"-filter_complex", fmt.Sprintf("acrossfade=d=%d", seconds),
		"-y",
		output,
	}
}

// ComposeOptions video codec seçimleri
type ComposeOptions struct {
	VideoCodec   string
	AudioCodec   string
	AudioBitrate string
	Preset       string
}

// ComposeArgs sabit görsel + ses -> video argümanları
func ComposeArgs(image, audio, output string, opts ComposeOptions) []string {
	if opts.VideoCodec == "" {
		opts.VideoCodec = DefaultVideoCodec
	}
	if opts.AudioCodec == "" {
		opts.AudioCodec = DefaultAudioCodec
	}
	if opts.AudioBitrate == "" {
		opts.AudioBitrate = DefaultAudioBitrate
	}

	args := []string{
		"-loop", "1",
		"-i", image,
		"-i", audio,
		"-c:v", opts.VideoCodec,
	}
	if opts.Preset != "" {
		args = append(args, "-preset", opts.Preset)
	}
	if opts.VideoCodec == "libx264" {
		// libx264 tek sayılı boyutları kabul etmez
		args = append(args, "-tune", "stillimage", "-pix_fmt", "yuv420p",
			"-vf", "scale=trunc(iw/2)*2:trunc(ih/2)*2")
	}
	args = append(args,
		"-c:a", opts.AudioCodec,
		"-b:a", opts.AudioBitrate,
		"-shortest",
		"-y",
		output,
	)
	return args
}

// FindFFmpeg ffmpeg yolunu bulur. explicit boş değilse önce o denenir.
func FindFFmpeg(explicit string) (string, error) {
	return findTool("ffmpeg", explicit, "SLIDECAST_FFMPEG")
}

// FindFFprobe ffprobe yolunu bulur
func FindFFprobe(explicit string) (string, error) {
	return findTool("ffprobe", explicit, "SLIDECAST_FFPROBE")
}

func findTool(name, explicit, envName string) (string, error) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		if path, err := exec.LookPath(explicit); err == nil {
			return path, nil
		}
		return "", fmt.Errorf("%s bulunamadi: %s", name, explicit)
	}
	if envPath := strings.TrimSpace(os.Getenv(envName)); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	paths := []string{name}
	if runtime.GOOS == "darwin" {
		paths = append(paths, "/opt/homebrew/bin/"+name, "/usr/local/bin/"+name)
	} else if runtime.GOOS == "linux" {
		paths = append(paths, "/usr/bin/"+name, "/usr/local/bin/"+name)
	}

	for _, p := range paths {
		if path, err := exec.LookPath(p); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf(
		"%s bulunamadı! Ses ve video işlemleri için FFmpeg kurulu olmalıdır.\n\n"+
			"Kurulum:\n"+
			"  macOS:   brew install ffmpeg\n"+
			"  Ubuntu:  sudo apt install ffmpeg\n"+
			"  Windows: https://ffmpeg.org/download.html\n", name)
}

// RenameObserver motor dışında taşınan dosyalardan haberdar olmak isteyen
// motorların gerçeklediği opsiyonel arayüz
type RenameObserver interface {
	Renamed(from, to string)
}
