package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mlihgenel/slidecast-cli/internal/profile"
	"github.com/mlihgenel/slidecast-cli/internal/ui"
)

type profileRow struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Fade           string `json:"fade"`
	FragmentFormat string `json:"fragment_format,omitempty"`
	AudioBitrate   string `json:"audio_bitrate,omitempty"`
	Preset         string `json:"preset,omitempty"`
	OnConflict     string `json:"on_conflict,omitempty"`
	Report         string `json:"report,omitempty"`
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Hazır render profillerini listele",
	Long: `--profile ile seçilebilen hazır profilleri listeler.
Profil değerleri yalnızca açıkça verilmemiş flag'lere uygulanır.

Örnekler:
  slidecast profiles
  slidecast ders.txt --profile podcast`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rows := profileRows()
		if isJSONOutput() {
			return printJSON(rows)
		}

		table := make([][]string, 0, len(rows))
		for _, r := range rows {
			table = append(table, []string{r.Name, r.Fade, r.FragmentFormat, r.AudioBitrate, r.Preset, r.Description})
		}
		ui.PrintTable([]string{"Profil", "Fade", "Ara format", "Bitrate", "Preset", "Açıklama"}, table)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}

func profileRows() []profileRow {
	names := profile.Names()
	rows := make([]profileRow, 0, len(names))
	for _, name := range names {
		p, err := profile.Resolve(name)
		if err != nil {
			continue
		}
		fade := "-"
		if p.Fade != nil {
			fade = "kapalı"
			if *p.Fade {
				fade = "açık"
				if p.FadeMargin != nil {
					fade = fmt.Sprintf("açık (%ss)", strconv.Itoa(*p.FadeMargin))
				}
			}
		}
		rows = append(rows, profileRow{
			Name:           p.Name,
			Description:    p.Description,
			Fade:           fade,
			FragmentFormat: p.FragmentFormat,
			AudioBitrate:   p.AudioBitrate,
			Preset:         p.Preset,
			OnConflict:     p.OnConflict,
			Report:         p.Report,
		})
	}
	return rows
}
