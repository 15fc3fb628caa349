package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Result ffprobe çıktısının ilgili alanları
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream kapsayıcıdaki tek bir akış
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Duration   string `json:"duration"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	RFrameRate string `json:"r_frame_rate,omitempty"`
	Channels   int    `json:"channels,omitempty"`
	SampleRate string `json:"sample_rate,omitempty"`
}

// Format kapsayıcı düzeyi bilgiler
type Format struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	BitRate    string `json:"bit_rate"`
	FormatName string `json:"format_name"`
}

// Inspect ffprobe'u çalıştırıp JSON çıktısını çözer
func Inspect(ctx context.Context, binary, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe: bos dosya yolu")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{}, fmt.Errorf("ffprobe: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Result{}, fmt.Errorf("ffprobe: %w", err)
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse hatasi: %w", err)
	}
	return result, nil
}

// DurationSeconds kapsayıcı süresi; yoksa 0, bozuksa NaN
func (r Result) DurationSeconds() float64 {
	return parseFloat(r.Format.Duration)
}

// BitRate bit/s cinsinden bitrate; yoksa 0
func (r Result) BitRate() int64 {
	rate := parseFloat(r.Format.BitRate)
	if math.IsNaN(rate) || rate < 0 {
		return 0
	}
	return int64(rate)
}

// AudioStream ilk ses akışını döner
func (r Result) AudioStream() (Stream, bool) {
	return r.firstOf("audio")
}

// VideoStream ilk görüntü akışını döner
func (r Result) VideoStream() (Stream, bool) {
	return r.firstOf("video")
}

func (r Result) firstOf(kind string) (Stream, bool) {
	for _, s := range r.Streams {
		if strings.EqualFold(s.CodecType, kind) {
			return s, true
		}
	}
	return Stream{}, false
}

// Duration yalnızca süreyi döner
func Duration(ctx context.Context, binary, path string) (float64, error) {
	res, err := Inspect(ctx, binary, path)
	if err != nil {
		return 0, err
	}
	d := res.DurationSeconds()
	if math.IsNaN(d) {
		return 0, fmt.Errorf("ffprobe: gecersiz sure: %q", res.Format.Duration)
	}
	return d, nil
}

// parseFrameRate "30000/1001" gibi kare oranlarını float'a çevirir
func parseFrameRate(rate string) float64 {
	parts := strings.SplitN(rate, "/", 2)
	if len(parts) == 2 {
		num, err1 := strconv.ParseFloat(parts[0], 64)
		den, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 == nil && err2 == nil && den != 0 {
			return num / den
		}
	}
	if f, err := strconv.ParseFloat(rate, 64); err == nil {
		return f
	}
	return 0
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
