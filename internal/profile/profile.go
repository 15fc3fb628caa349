package profile

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mlihgenel/slidecast-cli/internal/render"
)

// Definition render profili alanlarını tutar.
// nil pointer alanlar "profil bu alanı zorlamıyor" anlamına gelir.
type Definition struct {
	Name           string
	Description    string
	Fade           *bool
	FadeMargin     *int
	FragmentFormat string
	AudioBitrate   string
	AudioCodec     string
	VideoCodec     string
	Preset         string
	OnConflict     string
	Retry          *int
	RetryDelay     *time.Duration
	Report         string
}

var builtins = map[string]Definition{
	"draft": {
		Name:           "draft",
		Description:    "hizli onizleme: fade yok, dusuk bitrate",
		Fade:           boolPtr(false),
		FragmentFormat: "mp3",
		AudioBitrate:   "96k",
		Preset:         "ultrafast",
		OnConflict:     render.ConflictOverwrite,
		Retry:          intPtr(0),
		Report:         render.ReportOff,
	},
	"podcast": {
		Name:           "podcast",
		Description:    "5s crossfade, 192k aac",
		Fade:           boolPtr(true),
		FadeMargin:     intPtr(5),
		FragmentFormat: "wav",
		AudioBitrate:   "192k",
		OnConflict:     render.ConflictVersioned,
		Retry:          intPtr(1),
		RetryDelay:     durationPtr(500 * time.Millisecond),
		Report:         render.ReportTXT,
	},
	"hifi": {
		Name:           "hifi",
		Description:    "kayipsiz ara parcalar, 320k ses, yavas preset",
		Fade:           boolPtr(true),
		FadeMargin:     intPtr(3),
		FragmentFormat: "flac",
		AudioBitrate:   "320k",
		Preset:         "slow",
		OnConflict:     render.ConflictVersioned,
		Retry:          intPtr(2),
		RetryDelay:     durationPtr(time.Second),
		Report:         render.ReportJSON,
	},
}

// Resolve isimden profile döner.
func Resolve(name string) (Definition, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return Definition{}, fmt.Errorf("profil adi bos")
	}
	p, ok := builtins[key]
	if !ok {
		return Definition{}, fmt.Errorf("profil bulunamadi: %s (mevcut: %s)", name, strings.Join(Names(), ", "))
	}
	return p, nil
}

// Names built-in profil isimlerini döner.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }

func durationPtr(v time.Duration) *time.Duration { return &v }
