package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlihgenel/slidecast-cli/internal/batch"
	"github.com/mlihgenel/slidecast-cli/internal/render"
	"github.com/mlihgenel/slidecast-cli/internal/ui"
	"github.com/mlihgenel/slidecast-cli/internal/watch"
)

var (
	watchRender     renderSettings
	watchOutputDir  string
	watchRecursive  bool
	watchExisting   bool
	watchRetry      int
	watchRetryDelay time.Duration
	watchInterval   time.Duration
	watchSettle     time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <dizin>",
	Short: "Klasörü izleyip değişen script'leri yeniden render et",
	Long: `Belirtilen klasörü izler; yeni eklenen veya kaydedilen script'ler
dosya yazımı bitip stabil hale geldiğinde otomatik olarak yeniden render edilir.
Mümkünse dosya sistemi olayları (fsnotify) kullanılır, polling her zaman
yedek olarak çalışır.

Örnekler:
  slidecast watch ./scriptler
  slidecast watch ./scriptler --recursive --output-dir ./videolar
  slidecast watch ./scriptler --existing --profile draft
  slidecast watch ./scriptler --settle 3s --interval 1s`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sourceDir := args[0]

		if err := resolveRenderSettings(cmd, &watchRender); err != nil {
			ui.PrintError(err.Error())
			return err
		}
		applyRetryDefaults(cmd, "retry", &watchRetry, "retry-delay", &watchRetryDelay)
		if p, ok, _ := resolveProfile(watchRender.profile); ok {
			applyProfileRetry(cmd, p, "retry", &watchRetry, "retry-delay", &watchRetryDelay)
		}
		conflictPolicy := render.NormalizeConflictPolicy(watchRender.onConflict)

		eng, err := newEngine(watchRender)
		if err != nil {
			ui.PrintError(err.Error())
			return err
		}

		w, werr := watch.NewAdaptiveWatcher(sourceDir, batch.DefaultScriptExtensions, watchRecursive, watchSettle)
		if werr != nil {
			ui.PrintWarning(fmt.Sprintf("Event tabanlı izleme açılamadı, polling kullanılıyor: %s", werr.Error()))
		}
		defer w.Close()
		if err := w.Bootstrap(); err != nil {
			return err
		}

		pool := batch.NewPool(workers, batchRenderFunc(eng, watchRender))
		pool.SetRetry(watchRetry, watchRetryDelay)
		pool.Retryable = retryableRenderError

		ctx, stop := signalContext()
		defer stop()

		renderFiles := func(files []string) {
			jobs, err := buildBatchJobs(files, watchOutputDir, conflictPolicy, false)
			if err != nil {
				ui.PrintError(err.Error())
				return
			}
			for _, f := range files {
				ui.PrintInfo(fmt.Sprintf("%s %s değişti, render ediliyor", ui.IconScript, f))
			}

			startedAt := time.Now()
			results := pool.Execute(ctx, jobs)
			summary := batch.GetSummary(results, time.Since(startedAt))
			for _, r := range results {
				switch {
				case r.Success:
					ui.PrintSuccess(fmt.Sprintf("%s -> %s (%ds)", r.Job.ScriptPath, r.Render.Output, r.Seconds))
				case r.Skipped:
					ui.PrintWarning(fmt.Sprintf("%s atlandı: %s", r.Job.ScriptPath, r.SkipReason))
				default:
					ui.PrintError(fmt.Sprintf("%s: %v (deneme: %d)", r.Job.ScriptPath, r.Error, r.Attempts))
				}
			}
			if len(results) > 1 {
				ui.PrintBatchSummary(summary.Total, summary.Succeeded, summary.Skipped, summary.Failed, summary.TotalSeconds, summary.Duration)
			} else {
				ui.PrintDuration(summary.Duration)
			}
		}

		if watchExisting {
			files, err := collectScripts(sourceDir, watchRecursive)
			if err != nil {
				ui.PrintError(err.Error())
			} else if len(files) > 0 {
				renderFiles(files)
			}
		}

		ui.PrintInfo(fmt.Sprintf("İzleme başladı: %s (%s)", sourceDir, w.Mode()))
		ui.PrintInfo("Durdurmak için Ctrl+C kullanın.")

		return watchLoop(ctx, w, watchInterval, renderFiles)
	},
}

func init() {
	addRenderFlags(watchCmd, &watchRender)
	watchCmd.Flags().StringVarP(&watchOutputDir, "output-dir", "d", "", "Çıktı dizini (varsayılan: script'in dizini)")
	watchCmd.Flags().BoolVarP(&watchRecursive, "recursive", "r", false, "Alt dizinleri de izle")
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "Başlangıçta mevcut script'leri de render et")
	watchCmd.Flags().IntVar(&watchRetry, "retry", 0, "Başarısız işler için otomatik tekrar sayısı")
	watchCmd.Flags().DurationVar(&watchRetryDelay, "retry-delay", 500*time.Millisecond, "Retry denemeleri arası bekleme (örn: 500ms, 2s)")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 2*time.Second, "Klasör tarama aralığı")
	watchCmd.Flags().DurationVar(&watchSettle, "settle", 1500*time.Millisecond, "Dosyanın stabil sayılması için bekleme süresi")

	rootCmd.AddCommand(watchCmd)
}

// watchLoop ctx iptal edilene kadar değişen dosyaları onChange'e verir.
// Event sinyali taramayı öne çeker; settle süresi dolmamış dosyalar
// sonraki tick'te yakalanır.
func watchLoop(ctx context.Context, w watch.Backend, interval time.Duration, onChange func([]string)) error {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	poll := func() {
		files, err := w.Poll(time.Now())
		if err != nil {
			ui.PrintError(fmt.Sprintf("İzleme hatası: %s", err.Error()))
			return
		}
		if len(files) > 0 {
			onChange(files)
		}
	}

	for {
		select {
		case <-ctx.Done():
			ui.PrintInfo("İzleme durduruldu.")
			return nil
		case <-ticker.C:
			poll()
		case <-w.Events():
			poll()
		}
	}
}
