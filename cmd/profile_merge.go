package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mlihgenel/slidecast-cli/internal/profile"
)

func resolveProfile(name string) (profile.Definition, bool, error) {
	if name == "" {
		return profile.Definition{}, false, nil
	}
	p, err := profile.Resolve(name)
	if err != nil {
		return profile.Definition{}, false, err
	}
	return p, true, nil
}

// applyProfileToRender profil alanlarını kullanıcının açıkça vermediği ayarlara uygular
func applyProfileToRender(cmd *cobra.Command, p profile.Definition, s *renderSettings) {
	if p.Fade != nil && !cmd.Flags().Changed("no-fade") {
		s.noFade = !*p.Fade
	}
	if p.FadeMargin != nil && !cmd.Flags().Changed("fade-margin") {
		s.fadeMargin = *p.FadeMargin
	}
	if p.FragmentFormat != "" && !cmd.Flags().Changed("fragment-format") {
		s.fragmentFormat = p.FragmentFormat
	}
	if p.OnConflict != "" && !cmd.Flags().Changed("on-conflict") {
		s.onConflict = p.OnConflict
	}
	if p.Report != "" && cmd.Flags().Lookup("report") != nil && !cmd.Flags().Changed("report") {
		s.report = p.Report
	}
	if p.AudioBitrate != "" {
		s.audioBitrate = p.AudioBitrate
	}
	if p.AudioCodec != "" {
		s.audioCodec = p.AudioCodec
	}
	if p.VideoCodec != "" {
		s.videoCodec = p.VideoCodec
	}
	if p.Preset != "" {
		s.preset = p.Preset
	}
}

func applyProfileRetry(cmd *cobra.Command, p profile.Definition, retryFlag string, retry *int, delayFlag string, delay *time.Duration) {
	if p.Retry != nil && !cmd.Flags().Changed(retryFlag) {
		*retry = *p.Retry
	}
	if p.RetryDelay != nil && !cmd.Flags().Changed(delayFlag) {
		*delay = *p.RetryDelay
	}
}
