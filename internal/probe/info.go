package probe

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// FileInfo bir girdi dosyası hakkında toplanan bilgiler
type FileInfo struct {
	Path     string `json:"path"`
	FileName string `json:"file_name"`
	Format   string `json:"format"`
	Category string `json:"category"` // "image", "video", "audio", "script"
	Size     int64  `json:"size_bytes"`
	SizeText string `json:"size_text"`

	// Görsel
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Resolution string `json:"resolution,omitempty"`

	// Video / Ses (ffprobe)
	Seconds    float64 `json:"seconds,omitempty"`
	Duration   string  `json:"duration,omitempty"`
	VideoCodec string  `json:"video_codec,omitempty"`
	AudioCodec string  `json:"audio_codec,omitempty"`
	Bitrate    string  `json:"bitrate,omitempty"`
	FPS        float64 `json:"fps,omitempty"`
	Channels   int     `json:"channels,omitempty"`
	SampleRate int     `json:"sample_rate,omitempty"`
}

var categories = map[string]string{
	"png": "image", "jpg": "image", "jpeg": "image", "webp": "image",
	"bmp": "image", "gif": "image", "tif": "image", "tiff": "image",

	"mp4": "video", "mov": "video", "mkv": "video", "avi": "video",
	"webm": "video", "m4v": "video",

	"mp3": "audio", "wav": "audio", "ogg": "audio", "flac": "audio",
	"aac": "audio", "m4a": "audio", "opus": "audio",

	"txt": "script", "cast": "script", "slidecast": "script",
}

// Category uzantıdan dosya kategorisini belirler
func Category(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if c, ok := categories[ext]; ok {
		return c
	}
	return "unknown"
}

// File dosya hakkında bilgi toplar. ffprobe bulunamazsa medya alanları boş kalır.
func File(ctx context.Context, ffprobe, path string) (FileInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("dosya bulunamadı: %w", err)
	}

	category := Category(path)
	info := FileInfo{
		Path:     path,
		FileName: filepath.Base(path),
		Format:   strings.ToUpper(strings.TrimPrefix(filepath.Ext(path), ".")),
		Category: category,
		Size:     stat.Size(),
		SizeText: humanize.IBytes(uint64(stat.Size())),
	}

	switch category {
	case "image":
		if cfg, err := Image(path); err == nil {
			info.Width, info.Height = cfg.Width, cfg.Height
			info.Resolution = fmt.Sprintf("%dx%d", cfg.Width, cfg.Height)
		}
	case "video", "audio":
		if ffprobe != "" {
			if res, err := Inspect(ctx, ffprobe, path); err == nil {
				fillMedia(&info, res)
			}
		}
	}
	return info, nil
}

// Image görselin boyutlarını yalnızca başlığı okuyarak döner
func Image(path string) (image.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, fmt.Errorf("%s: desteklenmeyen görsel: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

func fillMedia(info *FileInfo, res Result) {
	if d := res.DurationSeconds(); d > 0 {
		info.Seconds = d
		info.Duration = FormatClock(d)
	}
	if br := res.BitRate(); br > 0 {
		info.Bitrate = fmt.Sprintf("%d kbps", br/1000)
	}
	if v, ok := res.VideoStream(); ok {
		info.VideoCodec = v.CodecName
		if v.Width > 0 && v.Height > 0 {
			info.Width, info.Height = v.Width, v.Height
			info.Resolution = fmt.Sprintf("%dx%d", v.Width, v.Height)
		}
		if v.RFrameRate != "" {
			info.FPS = parseFrameRate(v.RFrameRate)
		}
	}
	if a, ok := res.AudioStream(); ok {
		info.AudioCodec = a.CodecName
		info.Channels = a.Channels
		if sr := parseFloat(a.SampleRate); sr > 0 {
			info.SampleRate = int(sr)
		}
	}
}

// FormatClock saniyeyi MM:SS ya da HH:MM:SS biçimine çevirir
func FormatClock(seconds float64) string {
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}
