package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mlihgenel/slidecast-cli/internal/probe"
	"github.com/mlihgenel/slidecast-cli/internal/render"
	"github.com/mlihgenel/slidecast-cli/internal/ui"
)

var planRender renderSettings

var planCmd = &cobra.Command{
	Use:   "plan [script...]",
	Short: "FFmpeg çalıştırmadan yapılacak işlemleri göster",
	Long: `Script'i ayrıştırır ve render akışını FFmpeg çağırmadan kuru çalıştırır.
Kaynaklar, kesitler, sırasıyla yapılacak motor çağrıları ve beklenen video
süresi listelenir. Dosya sistemine hiçbir şey yazılmaz.

Örnekler:
  slidecast plan ders.txt
  slidecast plan ders.txt --no-fade
  slidecast plan ders.txt --profile hifi --output-format json
  cat ders.txt | slidecast plan`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := resolveRenderSettings(cmd, &planRender); err != nil {
			ui.PrintError(err.Error())
			return err
		}
		applyStringDefault(cmd, "output", envOutput, projectConfig().Output, &planRender.output)

		plan, err := render.BuildPlan(cmd.Context(), planRender.options(args, os.Stdin))
		if isJSONOutput() {
			if jerr := printJSON(plan); jerr != nil {
				return jerr
			}
			return err
		}
		if err != nil && len(plan.Directives) == 0 {
			ui.PrintError(err.Error())
			return err
		}

		printPlan(plan)
		if err != nil {
			ui.PrintError(err.Error())
			return err
		}
		return nil
	},
}

func init() {
	planCmd.Flags().StringVarP(&planRender.output, "output", "o", render.DefaultOutput, "Çıktı video dosyası")
	addRenderFlags(planCmd, &planRender)

	rootCmd.AddCommand(planCmd)
}

func printPlan(plan render.Plan) {
	for _, w := range plan.Warnings {
		ui.PrintWarning(w)
	}

	rows := make([][]string, 0, len(plan.Directives))
	for _, d := range plan.Directives {
		ranges := make([]string, 0, len(d.Ranges))
		total := 0
		for _, r := range d.Ranges {
			ranges = append(ranges, r.String())
			total += r.Duration
		}
		if len(ranges) == 0 {
			ranges = append(ranges, "(kesit yok, atlanacak)")
		}
		rows = append(rows, []string{d.Source, strings.Join(ranges, ", "), strconv.Itoa(len(d.Ranges)), probe.FormatClock(float64(total))})
	}
	ui.PrintTable([]string{"Kaynak", "Kesitler", "Adet", "Ham süre"}, rows, ui.AlignLeft, ui.AlignLeft, ui.AlignRight, ui.AlignRight)

	if len(plan.Calls) > 0 {
		callRows := make([][]string, 0, len(plan.Calls))
		for i, c := range plan.Calls {
			inputs := make([]string, 0, len(c.Inputs))
			for _, in := range c.Inputs {
				inputs = append(inputs, filepath.Base(in))
			}
			detail := ""
			switch c.Op {
			case "extract":
				detail = fmt.Sprintf("@%s +%ds", probe.FormatClock(float64(c.Begin)), c.Seconds)
			case "crossfade":
				detail = fmt.Sprintf("%ds geçiş", c.Seconds)
			}
			callRows = append(callRows, []string{
				strconv.Itoa(i + 1),
				c.Op,
				strings.Join(inputs, " + "),
				detail,
				filepath.Base(c.Output),
			})
		}
		ui.PrintTable([]string{"#", "İşlem", "Girdi", "Ayrıntı", "Çıktı"}, callRows, ui.AlignRight)
	}

	est := plan.Estimate
	ui.PrintInfo(fmt.Sprintf("%d kaynak, %d kesit, %d birleştirme", est.Sources, est.Ranges, est.Joins))
	ui.PrintInfo(fmt.Sprintf("Beklenen süre: %s (ham %s)", probe.FormatClock(float64(est.Seconds)), probe.FormatClock(float64(est.RawSeconds))))
	ui.PrintInfo(fmt.Sprintf("Görsel: %s  ·  Çıktı: %s", plan.Image, plan.Output))
}
