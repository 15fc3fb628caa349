package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mlihgenel/slidecast-cli/internal/render"
)

// Job tek bir script'in render işini temsil eder
type Job struct {
	ScriptPath string
	OutputPath string
	AudioPath  string
	SkipReason string
}

// JobResult bir işin sonucunu tutar
type JobResult struct {
	Job        Job
	Success    bool
	Skipped    bool
	Attempts   int
	Seconds    int
	OutputSize int64
	SkipReason string
	Error      error
	Duration   time.Duration
	Render     render.Result
}

// RenderFunc tek bir işi çalıştırır. Dönen hata retry kararında kullanılır.
type RenderFunc func(ctx context.Context, job Job) (render.Result, error)

// Pool worker pool'u yönetir
type Pool struct {
	Workers    int
	RetryMax   int
	RetryDelay time.Duration
	Results    []JobResult
	mu         sync.Mutex
	processed  atomic.Int64
	totalJobs  int
	Render     RenderFunc
	// Retryable nil değilse false dönen hatalar tekrar denenmez
	Retryable  func(error) bool
	OnProgress func(completed, total int) // İlerleme callback'i
}

// NewPool yeni bir worker pool oluşturur
func NewPool(workers int, fn RenderFunc) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	// Her render kendi ffmpeg süreçlerini açar, fazla worker diski boğar
	maxWorkers := runtime.NumCPU() * 2
	if workers > maxWorkers {
		workers = maxWorkers
	}

	return &Pool{
		Workers:    workers,
		RetryDelay: 500 * time.Millisecond,
		Render:     fn,
	}
}

// SetRetry retry davranışını ayarlar.
func (p *Pool) SetRetry(max int, delay time.Duration) {
	if max < 0 {
		max = 0
	}
	p.RetryMax = max

	if delay >= 0 {
		p.RetryDelay = delay
	}
}

// Execute verilen işleri paralel olarak çalıştırır.
// Sonuçlar tamamlanma sırasıyla döner.
func (p *Pool) Execute(ctx context.Context, jobs []Job) []JobResult {
	p.totalJobs = len(jobs)
	p.Results = make([]JobResult, 0, len(jobs))
	p.processed.Store(0)

	if len(jobs) == 0 {
		return p.Results
	}

	workers := p.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	jobChan := make(chan Job, len(jobs))
	resultChan := make(chan JobResult, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobChan {
				resultChan <- p.processJob(ctx, job)
			}
		}()
	}

	go func() {
		for _, job := range jobs {
			jobChan <- job
		}
		close(jobChan)
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	for result := range resultChan {
		p.mu.Lock()
		p.Results = append(p.Results, result)
		p.mu.Unlock()

		completed := int(p.processed.Add(1))
		if p.OnProgress != nil {
			p.OnProgress(completed, p.totalJobs)
		}
	}

	return p.Results
}

// processJob tek bir render işini retry ile yürütür
func (p *Pool) processJob(ctx context.Context, job Job) JobResult {
	start := time.Now()

	if job.SkipReason != "" {
		return JobResult{
			Job:        job,
			Skipped:    true,
			SkipReason: job.SkipReason,
			Duration:   time.Since(start),
		}
	}
	if p.Render == nil {
		return JobResult{Job: job, Attempts: 1, Error: errors.New("render fonksiyonu tanimlanmamis"), Duration: time.Since(start)}
	}

	var lastErr error
	var last render.Result
	attempts := p.RetryMax + 1
	if attempts <= 0 {
		attempts = 1
	}

	attempt := 1
	for ; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}

		res, err := p.Render(ctx, job)
		last = res
		if err == nil {
			if res.Skipped {
				return JobResult{
					Job:        job,
					Skipped:    true,
					Attempts:   attempt,
					SkipReason: "output_exists",
					Duration:   time.Since(start),
					Render:     res,
				}
			}
			size := int64(0)
			if info, statErr := os.Stat(res.Output); statErr == nil {
				size = info.Size()
			}
			return JobResult{
				Job:        job,
				Success:    true,
				Attempts:   attempt,
				Seconds:    res.ExpectedSeconds,
				OutputSize: size,
				Duration:   time.Since(start),
				Render:     res,
			}
		}

		lastErr = err
		if p.Retryable != nil && !p.Retryable(err) {
			break
		}
		if attempt < attempts && p.RetryDelay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(p.RetryDelay):
			}
		}
	}
	if attempt > attempts {
		attempt = attempts
	}

	return JobResult{
		Job:      job,
		Success:  false,
		Attempts: attempt,
		Error:    lastErr,
		Duration: time.Since(start),
		Render:   last,
	}
}

// Summary toplu iş sonuçlarını özetler
type Summary struct {
	Total        int
	Succeeded    int
	Skipped      int
	Failed       int
	TotalSeconds int
	Duration     time.Duration
	Errors       []JobError
}

// JobError başarısız olan bir işin hata bilgisi
type JobError struct {
	InputFile string
	Error     string
	Attempts  int
}

// GetSummary iş sonuçlarından özet oluşturur
func GetSummary(results []JobResult, totalDuration time.Duration) Summary {
	s := Summary{
		Total:    len(results),
		Duration: totalDuration,
	}

	for _, r := range results {
		if r.Success {
			s.Succeeded++
			s.TotalSeconds += r.Seconds
		} else if r.Skipped {
			s.Skipped++
		} else {
			s.Failed++
			msg := "bilinmeyen hata"
			if r.Error != nil {
				msg = r.Error.Error()
			}
			s.Errors = append(s.Errors, JobError{
				InputFile: r.Job.ScriptPath,
				Error:     msg,
				Attempts:  r.Attempts,
			})
		}
	}

	return s
}

// DefaultScriptExtensions batch/watch'ın script kabul ettiği uzantılar
var DefaultScriptExtensions = []string{".txt", ".cast", ".slidecast"}

// HasScriptExtension dosyanın script uzantılarından birine sahip olup olmadığını döner
func HasScriptExtension(path string, exts []string) bool {
	if len(exts) == 0 {
		exts = DefaultScriptExtensions
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if ext == e {
			return true
		}
	}
	return false
}

// CollectFiles dizindeki script dosyalarını toplar
func CollectFiles(dir string, exts []string, recursive bool) ([]string, error) {
	var files []string

	walkFn := func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Erişilemeyen dosyaları atla
		}

		if d.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		if HasScriptExtension(path, exts) {
			files = append(files, path)
		}

		return nil
	}

	if err := filepath.WalkDir(dir, walkFn); err != nil {
		return nil, fmt.Errorf("dizin taranamadı: %w", err)
	}

	return files, nil
}

// CollectFilesFromGlob glob pattern ile dosya toplar
func CollectFilesFromGlob(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob pattern hatası: %w", err)
	}

	var files []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			files = append(files, m)
		}
	}

	return files, nil
}
