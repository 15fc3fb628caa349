package cmd

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlihgenel/slidecast-cli/internal/config"
)

const (
	envOutput         = "SLIDECAST_OUTPUT"
	envImage          = "SLIDECAST_IMAGE"
	envWorkers        = "SLIDECAST_WORKERS"
	envFade           = "SLIDECAST_FADE"
	envFadeMargin     = "SLIDECAST_FADE_MARGIN"
	envFragmentFormat = "SLIDECAST_FRAGMENT_FORMAT"
	envAudioBitrate   = "SLIDECAST_AUDIO_BITRATE"
	envTimeout        = "SLIDECAST_TIMEOUT"
	envWorkDir        = "SLIDECAST_WORK_DIR"
	envProfile        = "SLIDECAST_PROFILE"
	envConflict       = "SLIDECAST_ON_CONFLICT"
	envRetry          = "SLIDECAST_RETRY"
	envRetryDelay     = "SLIDECAST_RETRY_DELAY"
	envReport         = "SLIDECAST_REPORT"
	envFFmpeg         = "SLIDECAST_FFMPEG"
)

// projectConfig aktif yapılandırmayı döner; yoksa boş bir değer
func projectConfig() *config.ProjectConfig {
	if activeProjectConfig == nil {
		return &config.ProjectConfig{}
	}
	return activeProjectConfig
}

func applyRootDefaults(cmd *cobra.Command) error {
	if !cmd.Flags().Changed("workers") {
		if v, ok := readEnvInt(envWorkers); ok && v > 0 {
			workers = v
		} else if activeProjectConfig != nil && activeProjectConfig.Workers > 0 {
			workers = activeProjectConfig.Workers
		}
	}

	return nil
}

// applyStringDefault flag değiştirilmemişse önce env'i, sonra yapılandırma değerini uygular
func applyStringDefault(cmd *cobra.Command, flagName, envName, configValue string, value *string) {
	if cmd.Flags().Changed(flagName) {
		return
	}
	if envName != "" {
		if v := strings.TrimSpace(os.Getenv(envName)); v != "" {
			*value = v
			return
		}
	}
	if v := strings.TrimSpace(configValue); v != "" {
		*value = v
	}
}

func applyProfileDefault(cmd *cobra.Command, flagName string, value *string) {
	applyStringDefault(cmd, flagName, envProfile, projectConfig().Profile, value)
}

func applyFadeDefaults(cmd *cobra.Command, noFadeFlag string, noFade *bool, marginFlag string, margin *int) {
	if !cmd.Flags().Changed(noFadeFlag) {
		if v, ok := readEnvBool(envFade); ok {
			*noFade = !v
		} else if activeProjectConfig != nil && activeProjectConfig.Fade != nil {
			*noFade = !*activeProjectConfig.Fade
		}
	}

	if !cmd.Flags().Changed(marginFlag) {
		if v, ok := readEnvInt(envFadeMargin); ok && v > 0 {
			*margin = v
		} else if activeProjectConfig != nil && activeProjectConfig.FadeMargin > 0 {
			*margin = activeProjectConfig.FadeMargin
		}
	}
}

func applyTimeoutDefault(cmd *cobra.Command, flagName string, value *time.Duration) {
	if cmd.Flags().Changed(flagName) {
		return
	}
	if v, ok := readEnvDuration(envTimeout); ok {
		*value = v
		return
	}
	if activeProjectConfig != nil && activeProjectConfig.Timeout > 0 {
		*value = activeProjectConfig.Timeout
	}
}

func applyOnConflictDefault(cmd *cobra.Command, flagName string, value *string) {
	if cmd.Flags().Changed(flagName) {
		return
	}
	if v := strings.TrimSpace(os.Getenv(envConflict)); v != "" {
		*value = strings.ToLower(v)
		return
	}
	if activeProjectConfig != nil && strings.TrimSpace(activeProjectConfig.OnConflict) != "" {
		*value = strings.ToLower(strings.TrimSpace(activeProjectConfig.OnConflict))
	}
}

func applyRetryDefaults(cmd *cobra.Command, retryFlag string, retryValue *int, delayFlag string, delayValue *time.Duration) {
	if !cmd.Flags().Changed(retryFlag) {
		if v, ok := readEnvInt(envRetry); ok && v >= 0 {
			*retryValue = v
		} else if activeProjectConfig != nil && activeProjectConfig.Retry > 0 {
			*retryValue = activeProjectConfig.Retry
		}
	}

	if !cmd.Flags().Changed(delayFlag) {
		if v, ok := readEnvDuration(envRetryDelay); ok {
			*delayValue = v
		} else if activeProjectConfig != nil && activeProjectConfig.RetryDelay > 0 {
			*delayValue = activeProjectConfig.RetryDelay
		}
	}
}

func applyReportDefault(cmd *cobra.Command, flagName string, value *string) {
	if cmd.Flags().Changed(flagName) {
		return
	}
	if v := strings.TrimSpace(os.Getenv(envReport)); v != "" {
		*value = strings.ToLower(v)
		return
	}
	if activeProjectConfig != nil && strings.TrimSpace(activeProjectConfig.ReportFormat) != "" {
		*value = strings.ToLower(strings.TrimSpace(activeProjectConfig.ReportFormat))
	}
}

func envOr(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return strings.TrimSpace(fallback)
}

func readEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func readEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

func readEnvDuration(name string) (time.Duration, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
