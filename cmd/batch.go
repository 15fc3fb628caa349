package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlihgenel/slidecast-cli/internal/batch"
	"github.com/mlihgenel/slidecast-cli/internal/engine"
	"github.com/mlihgenel/slidecast-cli/internal/render"
	"github.com/mlihgenel/slidecast-cli/internal/ui"
)

var (
	batchRender     renderSettings
	batchOutputDir  string
	batchRecursive  bool
	batchDryRun     bool
	batchKeepAudio  bool
	batchRetry      int
	batchRetryDelay time.Duration
)

var batchCmd = &cobra.Command{
	Use:   "batch <dizin veya glob>",
	Short: "Birden fazla script'i toplu render et",
	Long: `Bir dizindeki veya glob pattern'e uyan tüm script'leri (.txt, .cast,
.slidecast) videoya dönüştürür. Worker pool kullanarak paralel render yapar;
her script kendi geçici çalışma dizininde sırayla işlenir.

Örnekler:
  slidecast batch ./scriptler
  slidecast batch ./scriptler --recursive --output-dir ./videolar
  slidecast batch "dersler/*.txt" --workers 2 --retry 1
  slidecast batch ./scriptler --dry-run
  slidecast batch ./scriptler --profile podcast --report json --report-file rapor.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := args[0]
		jsonOutput := isJSONOutput()

		if err := resolveRenderSettings(cmd, &batchRender); err != nil {
			ui.PrintError(err.Error())
			return err
		}
		applyRetryDefaults(cmd, "retry", &batchRetry, "retry-delay", &batchRetryDelay)
		if p, ok, _ := resolveProfile(batchRender.profile); ok {
			applyProfileRetry(cmd, p, "retry", &batchRetry, "retry-delay", &batchRetryDelay)
		}
		conflictPolicy := render.NormalizeConflictPolicy(batchRender.onConflict)
		reportFormat := batch.NormalizeReportFormat(batchRender.report)

		files, err := collectScripts(source, batchRecursive)
		if err != nil {
			ui.PrintError(err.Error())
			return err
		}
		if len(files) == 0 {
			ui.PrintWarning(fmt.Sprintf("'%s' içinde script bulunamadı (%s)", source, strings.Join(batch.DefaultScriptExtensions, ", ")))
			return nil
		}

		jobs, err := buildBatchJobs(files, batchOutputDir, conflictPolicy, batchKeepAudio)
		if err != nil {
			ui.PrintError(err.Error())
			return err
		}

		if !jsonOutput {
			ui.PrintInfo(fmt.Sprintf("%d adet script bulundu", len(files)))
		}

		if batchDryRun {
			if jsonOutput {
				return printJSON(jobs)
			}
			rows := make([][]string, 0, len(jobs))
			for _, j := range jobs {
				status := "render"
				if j.SkipReason != "" {
					status = "atla (" + j.SkipReason + ")"
				}
				rows = append(rows, []string{j.ScriptPath, j.OutputPath, status})
			}
			ui.PrintTable([]string{"Script", "Çıktı", "Durum"}, rows)
			ui.PrintInfo("Render'ı başlatmak için --dry-run flag'ini kaldırın.")
			return nil
		}

		eng, err := newEngine(batchRender)
		if err != nil {
			ui.PrintError(err.Error())
			return err
		}

		ctx, stop := signalContext()
		defer stop()

		pool := batch.NewPool(workers, batchRenderFunc(eng, batchRender))
		pool.SetRetry(batchRetry, batchRetryDelay)
		pool.Retryable = retryableRenderError

		if !jsonOutput && !verbose {
			pb := ui.NewProgressBar(len(jobs), "Render")
			pool.OnProgress = func(completed, total int) {
				pb.Update(completed)
			}
		}

		if !jsonOutput {
			fmt.Println()
		}
		startedAt := time.Now()
		results := pool.Execute(ctx, jobs)
		endedAt := time.Now()
		summary := batch.GetSummary(results, endedAt.Sub(startedAt))

		if !jsonOutput {
			ui.PrintBatchSummary(summary.Total, summary.Succeeded, summary.Skipped, summary.Failed, summary.TotalSeconds, summary.Duration)
			if len(summary.Errors) > 0 {
				ui.PrintError("Başarısız render'lar:")
				for _, e := range summary.Errors {
					fmt.Printf("  %s %s: %s (deneme: %d)\n", ui.IconError, e.InputFile, e.Error, e.Attempts)
				}
				fmt.Println()
			}
		}

		if err := emitBatchReport(reportFormat, batchRender.reportFile, summary, results, startedAt, endedAt, jsonOutput); err != nil {
			return err
		}
		if jsonOutput && reportFormat != batch.ReportJSON {
			text, err := batch.RenderReport(batch.ReportJSON, summary, results, startedAt, endedAt)
			if err != nil {
				return err
			}
			fmt.Println(text)
		}

		if summary.Failed > 0 {
			return fmt.Errorf("%d script render edilemedi", summary.Failed)
		}
		return nil
	},
}

func init() {
	addRenderFlags(batchCmd, &batchRender)
	batchCmd.Flags().StringVarP(&batchOutputDir, "output-dir", "d", "", "Çıktı dizini (varsayılan: script'in dizini)")
	batchCmd.Flags().BoolVarP(&batchRecursive, "recursive", "r", false, "Alt dizinleri de tara")
	batchCmd.Flags().BoolVar(&batchDryRun, "dry-run", false, "Ön izleme: render yapmadan listele")
	batchCmd.Flags().BoolVar(&batchKeepAudio, "keep-audio", false, "Birleştirilmiş sesi videonun yanına .wav olarak kaydet")
	batchCmd.Flags().IntVar(&batchRetry, "retry", 0, "Başarısız işler için otomatik tekrar sayısı")
	batchCmd.Flags().DurationVar(&batchRetryDelay, "retry-delay", 500*time.Millisecond, "Retry denemeleri arası bekleme (örn: 500ms, 2s)")
	batchCmd.Flags().StringVar(&batchRender.report, "report", batch.ReportOff, "Rapor formatı: off, txt, json")
	batchCmd.Flags().StringVar(&batchRender.reportFile, "report-file", "", "Raporu belirtilen dosyaya yaz")

	rootCmd.AddCommand(batchCmd)
}

func collectScripts(source string, recursive bool) ([]string, error) {
	info, statErr := os.Stat(source)
	if statErr == nil && info.IsDir() {
		return batch.CollectFiles(source, batch.DefaultScriptExtensions, recursive)
	}

	matches, err := batch.CollectFilesFromGlob(source)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, f := range matches {
		if batch.HasScriptExtension(f, batch.DefaultScriptExtensions) {
			files = append(files, f)
		}
	}
	return files, nil
}

func buildBatchJobs(files []string, outputDir, policy string, keepAudio bool) ([]batch.Job, error) {
	jobs := make([]batch.Job, 0, len(files))
	reserved := make(map[string]struct{}, len(files))
	for _, f := range files {
		output, skipReason, err := resolveBatchOutputPath(render.DefaultOutputFor(f, outputDir), policy, reserved)
		if err != nil {
			return nil, fmt.Errorf("çıktı yolu oluşturulamadı: %w", err)
		}
		job := batch.Job{ScriptPath: f, OutputPath: output, SkipReason: skipReason}
		if keepAudio {
			job.AudioPath = strings.TrimSuffix(output, filepath.Ext(output)) + ".wav"
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// resolveBatchOutputPath çakışma politikasını uygular ve aynı batch içindeki
// iki script'in aynı çıktıya yazmasını engeller.
func resolveBatchOutputPath(base, policy string, reserved map[string]struct{}) (string, string, error) {
	resolved, skip, err := render.ResolveOutputPathConflict(base, policy)
	if err != nil {
		return "", "", err
	}
	if skip {
		return resolved, "output_exists", nil
	}

	candidate := resolved
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for i := 1; outputTaken(candidate, resolved, reserved); i++ {
		candidate = fmt.Sprintf("%s (%d)%s", stem, i, ext)
	}
	reserved[candidate] = struct{}{}
	return candidate, "", nil
}

func outputTaken(candidate, resolved string, reserved map[string]struct{}) bool {
	if _, ok := reserved[candidate]; ok {
		return true
	}
	if candidate == resolved {
		return false
	}
	_, err := os.Stat(candidate)
	return err == nil
}

func batchRenderFunc(eng engine.Engine, s renderSettings) batch.RenderFunc {
	return func(ctx context.Context, job batch.Job) (render.Result, error) {
		opts := s.options([]string{job.ScriptPath}, nil)
		opts.Output = job.OutputPath
		opts.Audio = job.AudioPath
		if verbose {
			opts.OnWarning = func(msg string) {
				ui.PrintWarning(fmt.Sprintf("%s: %s", job.ScriptPath, msg))
			}
		}
		return render.Run(ctx, eng, opts)
	}
}

// retryableRenderError script hatalarını ve iptali tekrar denemez
func retryableRenderError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, render.ErrOutputLocked) {
		return false
	}
	return !render.IsUserError(err)
}

func emitBatchReport(format, reportFile string, summary batch.Summary, results []batch.JobResult, startedAt, endedAt time.Time, jsonOutput bool) error {
	reportText, err := batch.RenderReport(format, summary, results, startedAt, endedAt)
	if err != nil {
		ui.PrintError(fmt.Sprintf("Rapor üretilemedi: %s", err.Error()))
		return err
	}
	if strings.TrimSpace(reportText) == "" {
		return nil
	}
	if strings.TrimSpace(reportFile) != "" {
		if err := writeReport(reportFile, reportText); err != nil {
			ui.PrintError(fmt.Sprintf("Rapor yazılamadı: %s", err.Error()))
			return err
		}
		if !jsonOutput {
			ui.PrintInfo(fmt.Sprintf("Rapor yazıldı: %s", reportFile))
		}
		return nil
	}
	if !jsonOutput || format == batch.ReportJSON {
		fmt.Println(reportText)
	}
	return nil
}
