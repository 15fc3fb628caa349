package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlihgenel/slidecast-cli/internal/assemble"
	"github.com/mlihgenel/slidecast-cli/internal/config"
	"github.com/mlihgenel/slidecast-cli/internal/engine"
	"github.com/mlihgenel/slidecast-cli/internal/render"
	"github.com/mlihgenel/slidecast-cli/internal/ui"
)

var (
	verbose      bool
	workers      int
	outputFormat string

	activeProjectConfig *config.ProjectConfig
	activeConfigPaths   []string

	rootRender renderSettings

	appVersion = "dev"
	appCommit  = ""
	appDate    = ""
)

// SetVersionInfo build-time version bilgisini ayarlar
func SetVersionInfo(version, commit, date string) {
	if strings.TrimSpace(version) != "" {
		appVersion = version
	}
	appCommit = strings.TrimSpace(commit)
	appDate = strings.TrimSpace(date)
	if appDate == "" || appDate == "unknown" {
		appDate = time.Now().Format("2006-01-02 15:04:05")
	}
	rootCmd.Version = appVersion
	rootCmd.SetVersionTemplate(versionTemplate())
}

func versionTemplate() string {
	commit := appCommit
	if commit == "" {
		commit = "none"
	}
	return fmt.Sprintf(
		"slidecast v%s\nCommit: %s\nTarih:  %s\nGo:     %s\nOS:     %s/%s\n",
		appVersion, commit, appDate, runtime.Version(), runtime.GOOS, runtime.GOARCH,
	)
}

var rootCmd = &cobra.Command{
	Use:   "slidecast [script...]",
	Short: "slidecast - script'ten sesli slayt videosu üretir",
	Long: `slidecast: Ses kayıtlarından kesitler alıp tek bir görselle videoya dönüştürür.

Script her satırda bir ses dosyası ve altında kesit aralıkları içerir:

  # yorum satırı
  - intro.mp3
  0:00-0:45
  1:10-2:05
  - demo.mp3
  0:30-1:00

Kesitler çıkarılır, ardışık kesitler crossfade ile birleştirilir, ses
dosyaları da aynı şekilde uç uca eklenir ve sonuç sabit bir görselle
videoya dönüştürülür. Tüm ses/video işlemleri için FFmpeg gerekir.

Script dosyası verilmezse standart girdi okunur.

Örnekler:
  slidecast ders.txt
  slidecast ders.txt -i slayt.png -o ders.mp4
  slidecast ders.txt -a ders.wav --no-fade
  cat ders.txt | slidecast -o ders.mp4
  slidecast ders.txt --profile podcast --report txt
  slidecast plan ders.txt
  slidecast batch ./scriptler --output-dir ./videolar`,
	Args:    cobra.ArbitraryArgs,
	Version: appVersion,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadActiveConfig(); err != nil {
			ui.PrintError(err.Error())
			return err
		}
		if NormalizeOutputFormat(outputFormat) == "" {
			return outputFormatError(outputFormat)
		}
		return applyRootDefaults(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRender(cmd, args)
	},
}

// Execute CLI'ı çalıştırır
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Detaylı çıktı modu (her FFmpeg adımı yazdırılır)")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", runtime.NumCPU(), "Paralel worker sayısı (batch ve watch modunda)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output-format", OutputFormatText, "Çıktı formatı: text, json")

	rootCmd.Flags().StringVarP(&rootRender.audio, "audio", "a", "", "Birleştirilmiş sesi bu yola kaydet")
	rootCmd.Flags().StringVarP(&rootRender.output, "output", "o", render.DefaultOutput, "Çıktı video dosyası")
	addRenderFlags(rootCmd, &rootRender)
	rootCmd.Flags().BoolVar(&rootRender.live, "live", false, "Adımları canlı görünümde göster (yalnızca terminalde)")
	rootCmd.Flags().BoolVar(&rootRender.verify, "verify", false, "Render sonrası çıktı süresini ffprobe ile doğrula")
	rootCmd.Flags().StringVar(&rootRender.report, "report", render.ReportOff, "Rapor formatı: off, txt, json")
	rootCmd.Flags().StringVar(&rootRender.reportFile, "report-file", "", "Raporu belirtilen dosyaya yaz")

	SetVersionInfo(appVersion, appCommit, appDate)

	// Hata mesajlarını özelleştir
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		fmt.Fprintf(os.Stderr, "Hata: %s\n\n", err.Error())
		cmd.Usage()
		return err
	})
}

func loadActiveConfig() error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	cfg, paths, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("yapılandırma okunamadı: %w", err)
	}
	activeProjectConfig, activeConfigPaths = cfg, paths
	return nil
}

// signalContext Ctrl+C ve SIGTERM'de iptal edilen bir context döner.
// İptal, çalışan ffmpeg sürecini öldürür ve ara dosyalar temizlenir.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runRender(cmd *cobra.Command, args []string) error {
	jsonOutput := isJSONOutput()

	if err := resolveRenderSettings(cmd, &rootRender); err != nil {
		ui.PrintError(err.Error())
		return err
	}
	applyStringDefault(cmd, "output", envOutput, projectConfig().Output, &rootRender.output)

	eng, err := newEngine(rootRender)
	if err != nil {
		ui.PrintError(err.Error())
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	opts := rootRender.options(args, os.Stdin)
	if rootRender.verify {
		opts.Probe, err = durationProbe()
		if err != nil {
			ui.PrintWarning(fmt.Sprintf("--verify kullanılamıyor: %s", err.Error()))
			opts.Verify = false
		}
	}

	if !jsonOutput {
		ui.PrintInfo(fmt.Sprintf("Render başlıyor: %s -> %s", scriptLabel(args), opts.Output))
	}

	var result render.Result
	var runErr error
	if rootRender.live && ui.IsInteractive() && !jsonOutput && len(args) > 0 {
		result, runErr = runRenderLive(ctx, eng, opts, args)
	} else {
		if !jsonOutput {
			opts.OnWarning = ui.PrintWarning
			if verbose {
				opts.OnStep = printStep
			}
		}
		result, runErr = render.Run(ctx, eng, opts)
	}

	if err := emitReport(rootRender.report, rootRender.reportFile, result, jsonOutput); err != nil && runErr == nil {
		runErr = err
	}

	if jsonOutput {
		if err := printJSON(result); err != nil {
			return err
		}
		return runErr
	}

	if runErr != nil {
		ui.PrintError(fmt.Sprintf("Render başarısız: %s", runErr.Error()))
		if render.IsUserError(runErr) {
			ui.PrintInfo("Script biçimi için: slidecast --help")
		}
		return runErr
	}
	if result.Skipped {
		return nil
	}

	var size int64
	if st, err := os.Stat(result.Output); err == nil {
		size = st.Size()
	}
	fmt.Println(ui.RenderSummary(result.Output, result.ExpectedSeconds, size, result.Duration))
	if result.Audio != "" {
		ui.PrintInfo(fmt.Sprintf("Ses kaydedildi: %s", result.Audio))
	}
	return nil
}

func runRenderLive(ctx context.Context, eng engine.Engine, opts render.Options, args []string) (render.Result, error) {
	total := 0
	if loaded, err := opts.Preload(); err == nil {
		opts = loaded
		total = liveStepTotal(ctx, opts)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var warnings []string
	var result render.Result
	err := ui.RunLive(scriptLabel(args), total, cancel, func(send func(ui.LiveStep)) error {
		opts.OnStep = func(s assemble.Step) {
			send(ui.LiveStep{
				Index:   s.Index,
				Op:      s.Op,
				Output:  filepath.Base(s.Output),
				Seconds: s.Seconds,
				Success: s.Success,
				Error:   s.Error,
			})
		}
		opts.OnWarning = func(msg string) { warnings = append(warnings, msg) }
		var runErr error
		result, runErr = render.Run(ctx, eng, opts)
		return runErr
	})
	for _, w := range warnings {
		ui.PrintWarning(w)
	}
	return result, err
}

func printStep(s assemble.Step) {
	ui.PrintStep(s.Index, s.Op, filepath.Base(s.Output), s.Seconds, s.Success)
	if !s.Success && s.Error != "" {
		ui.PrintError(s.Error)
	}
}

func scriptLabel(args []string) string {
	switch len(args) {
	case 0:
		return "stdin"
	case 1:
		return args[0]
	default:
		return fmt.Sprintf("%s (+%d)", args[0], len(args)-1)
	}
}

func emitReport(format, reportFile string, result render.Result, jsonOutput bool) error {
	reportText, err := render.RenderReport(format, result)
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
	if !jsonOutput {
		fmt.Println(reportText)
	}
	return nil
}

func writeReport(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return os.WriteFile(path, []byte(content), 0644)
}

// liveStepTotal canlı görünüm için beklenen engine çağrısı sayısını döner
func liveStepTotal(ctx context.Context, opts render.Options) int {
	opts.OnStep, opts.OnWarning = nil, nil
	plan, err := render.BuildPlan(ctx, opts)
	if err != nil {
		return 0
	}
	return len(plan.Calls)
}
