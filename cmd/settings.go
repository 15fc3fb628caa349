package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlihgenel/slidecast-cli/internal/engine"
	"github.com/mlihgenel/slidecast-cli/internal/probe"
	"github.com/mlihgenel/slidecast-cli/internal/render"
)

// renderSettings render yapan komutların (root, plan, batch, watch) ortak ayarları
type renderSettings struct {
	audio          string
	image          string
	output         string
	noFade         bool
	fadeMargin     int
	fragmentFormat string
	profile        string
	timeout        time.Duration
	keepTemps      bool
	workDir        string
	onConflict     string
	report         string
	reportFile     string
	live           bool
	verify         bool
	ffmpegPath     string

	// Flag'i olmayan, profil ve yapılandırmadan gelen motor ayarları
	audioBitrate string
	audioCodec   string
	videoCodec   string
	preset       string
}

func addRenderFlags(c *cobra.Command, s *renderSettings) {
	c.Flags().StringVarP(&s.image, "image", "i", render.DefaultImage, "Arka plan görseli")
	c.Flags().BoolVar(&s.noFade, "no-fade", false, "Kesitleri crossfade yerine düz birleştir")
	c.Flags().IntVar(&s.fadeMargin, "fade-margin", 5, "Crossfade süresi ve kesit genişletme payı (saniye)")
	c.Flags().StringVar(&s.fragmentFormat, "fragment-format", "wav", "Ara ses parçalarının formatı (wav, flac, mp3)")
	c.Flags().StringVar(&s.profile, "profile", "", "Hazır profil (draft, podcast, hifi)")
	c.Flags().DurationVar(&s.timeout, "timeout", 0, "Her FFmpeg çağrısı için zaman aşımı (örn: 5m); 0 sınırsız")
	c.Flags().BoolVar(&s.keepTemps, "keep-temps", false, "Ara geçici dosyaları silme")
	c.Flags().StringVar(&s.workDir, "work-dir", "", "Geçici çalışma dizininin açılacağı yer (varsayılan: sistem temp)")
	c.Flags().StringVar(&s.onConflict, "on-conflict", render.ConflictOverwrite, "Çakışma politikası: overwrite, skip, versioned")
	c.Flags().StringVar(&s.ffmpegPath, "ffmpeg", "", "FFmpeg binary yolu")
}

// resolveRenderSettings env, yapılandırma ve profil varsayılanlarını
// değiştirilmemiş flag'lere uygular ve değerleri doğrular.
func resolveRenderSettings(cmd *cobra.Command, s *renderSettings) error {
	cfg := projectConfig()

	applyProfileDefault(cmd, "profile", &s.profile)
	applyStringDefault(cmd, "image", envImage, cfg.Image, &s.image)
	applyFadeDefaults(cmd, "no-fade", &s.noFade, "fade-margin", &s.fadeMargin)
	applyStringDefault(cmd, "fragment-format", envFragmentFormat, cfg.FragmentFormat, &s.fragmentFormat)
	applyTimeoutDefault(cmd, "timeout", &s.timeout)
	applyStringDefault(cmd, "work-dir", envWorkDir, cfg.WorkDir, &s.workDir)
	applyOnConflictDefault(cmd, "on-conflict", &s.onConflict)
	applyStringDefault(cmd, "ffmpeg", envFFmpeg, cfg.FFmpegPath, &s.ffmpegPath)
	if cmd.Flags().Lookup("report") != nil {
		applyReportDefault(cmd, "report", &s.report)
	}
	s.audioBitrate = envOr(envAudioBitrate, cfg.AudioBitrate)

	if p, ok, err := resolveProfile(s.profile); err != nil {
		return err
	} else if ok {
		applyProfileToRender(cmd, p, s)
	}

	if s.fadeMargin <= 0 {
		return fmt.Errorf("fade-margin pozitif olmalı: %d", s.fadeMargin)
	}
	if render.NormalizeConflictPolicy(s.onConflict) == "" {
		return fmt.Errorf("gecersiz on-conflict politikasi: %s", s.onConflict)
	}
	if s.report != "" && render.NormalizeReportFormat(s.report) == "" {
		return fmt.Errorf("gecersiz report formati: %s", s.report)
	}
	return nil
}

func (s renderSettings) options(scripts []string, stdin io.Reader) render.Options {
	return render.Options{
		Scripts:        scripts,
		Stdin:          stdin,
		Audio:          s.audio,
		Image:          s.image,
		Output:         s.output,
		Fade:           !s.noFade,
		FadeMargin:     s.fadeMargin,
		FragmentFormat: s.fragmentFormat,
		OnConflict:     render.NormalizeConflictPolicy(s.onConflict),
		WorkDir:        s.workDir,
		KeepTemps:      s.keepTemps,
		Verify:         s.verify,
	}
}

func newEngine(s renderSettings) (*engine.FFmpeg, error) {
	eng, err := engine.NewFFmpeg(s.ffmpegPath)
	if err != nil {
		return nil, err
	}
	eng.Verbose = verbose
	eng.Timeout = s.timeout
	eng.Preset = s.preset
	if s.audioBitrate != "" {
		eng.AudioBitrate = s.audioBitrate
	}
	if s.audioCodec != "" {
		eng.AudioCodec = s.audioCodec
	}
	if s.videoCodec != "" {
		eng.VideoCodec = s.videoCodec
	}
	eng.Output = func(line string) {
		fmt.Fprintf(os.Stderr, "    %s\n", line)
	}
	return eng, nil
}

func durationProbe() (func(ctx context.Context, path string) (float64, error), error) {
	bin, err := engine.FindFFprobe("")
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, path string) (float64, error) {
		return probe.Duration(ctx, bin, path)
	}, nil
}
