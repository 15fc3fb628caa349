package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mlihgenel/slidecast-cli/internal/config"
	"github.com/mlihgenel/slidecast-cli/internal/installer"
	"github.com/mlihgenel/slidecast-cli/internal/ui"
)

var doctorInstall bool

type doctorPayload struct {
	Tools       []installer.ToolStatus `json:"tools"`
	ConfigFiles []string               `json:"config_files"`
	UserConfig  string                 `json:"user_config,omitempty"`
	InstallHint string                 `json:"install_hint,omitempty"`
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "FFmpeg/ffprobe kurulumunu ve yapılandırmayı kontrol et",
	Long: `Render için gereken dış araçları (ffmpeg, ffprobe) arar, okunan
yapılandırma dosyalarını listeler ve eksik araçlar için kurulum komutu önerir.

Örnekler:
  slidecast doctor
  slidecast doctor --install
  slidecast doctor --output-format json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		statuses := installer.Check(projectConfig().FFmpegPath)
		missing := installer.Missing(statuses)

		payload := doctorPayload{Tools: statuses, ConfigFiles: activeConfigPaths}
		if p, err := config.UserConfigPath(); err == nil {
			payload.UserConfig = p
		}
		info := installer.GetInstallInfo()
		if len(missing) > 0 {
			if info.Supported {
				payload.InstallHint = info.Description
			} else {
				payload.InstallHint = info.ManualURL
			}
		}

		if isJSONOutput() {
			return printJSON(payload)
		}

		ui.PrintBanner(appVersion)
		rows := make([][]string, 0, len(statuses))
		for _, s := range statuses {
			state, detail := "✓ bulundu", s.Path
			if !s.Found {
				state, detail = "✗ eksik", firstErrorLine(s.Error)
			}
			rows = append(rows, []string{s.Name, state, detail})
		}
		ui.PrintTable([]string{"Araç", "Durum", "Yol"}, rows)

		if len(activeConfigPaths) == 0 {
			ui.PrintInfo(fmt.Sprintf("Yapılandırma dosyası yok (.slidecast.toml veya %s)", payload.UserConfig))
		}
		for _, p := range activeConfigPaths {
			ui.PrintInfo(fmt.Sprintf("Yapılandırma: %s", p))
		}

		if len(missing) == 0 {
			ui.PrintSuccess("Render için gereken her şey hazır.")
			return nil
		}

		if !doctorInstall {
			ui.PrintWarning(fmt.Sprintf("Eksik araç: %v", missing))
			if info.Supported {
				ui.PrintInfo(fmt.Sprintf("Kurulum: %s  (veya slidecast doctor --install)", info.Description))
			} else {
				ui.PrintInfo(fmt.Sprintf("Manuel kurulum: %s", info.ManualURL))
			}
			return fmt.Errorf("eksik araç: %v", missing)
		}

		ui.PrintInfo(fmt.Sprintf("%s kuruluyor...", info.ToolName))
		desc, err := installer.InstallFFmpeg()
		if err != nil {
			ui.PrintError(err.Error())
			return err
		}
		ui.PrintSuccess(fmt.Sprintf("Kuruldu: %s", desc))
		return nil
	},
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorInstall, "install", false, "Eksik FFmpeg'i paket yöneticisiyle kur")
	rootCmd.AddCommand(doctorCmd)
}

func firstErrorLine(msg string) string {
	for i, r := range msg {
		if r == '\n' {
			return msg[:i]
		}
	}
	return msg
}
