package render

import (
	"context"

	"github.com/mlihgenel/slidecast-cli/internal/assemble"
	"github.com/mlihgenel/slidecast-cli/internal/engine"
	"github.com/mlihgenel/slidecast-cli/internal/script"
	"github.com/mlihgenel/slidecast-cli/internal/workdir"
)

// Plan motoru çalıştırmadan yapılacak çağrıları ve beklenen süreyi hesaplar
type Plan struct {
	Directives []script.Directive `json:"directives"`
	Warnings   []string           `json:"warnings,omitempty"`
	Estimate   assemble.Estimate  `json:"estimate"`
	Calls      []engine.Call      `json:"calls"`
	Image      string             `json:"image"`
	Output     string             `json:"output"`
}

// BuildPlan script'i ayrıştırıp akışı Recorder üzerinde kuru çalıştırır.
// Dosya sistemine yalnızca geçici çalışma dizini açılır.
func BuildPlan(ctx context.Context, opts Options) (Plan, error) {
	parsed, err := Load(opts)
	if err != nil {
		return Plan{}, err
	}

	asmOpts := assemble.Options{Fade: opts.Fade, FadeMargin: opts.FadeMargin, Format: opts.FragmentFormat}
	plan := Plan{
		Directives: parsed.Crops.Directives(),
		Estimate:   assemble.Expect(parsed.Crops, asmOpts),
		Image:      opts.image(),
		Output:     opts.output(),
	}
	for _, w := range parsed.Warnings {
		plan.Warnings = append(plan.Warnings, w.String())
	}

	arena, err := workdir.New(opts.WorkDir, false)
	if err != nil {
		return Plan{}, err
	}
	defer arena.Close()

	rec := engine.NewRecorder(false)
	asm := assemble.New(rec, arena, asmOpts)
	asm.OnWarning = func(msg string) { plan.Warnings = append(plan.Warnings, msg) }

	track, err := asm.Assemble(ctx, parsed.Crops, "")
	if err != nil {
		plan.Calls = rec.Calls()
		return plan, err
	}
	if _, err := asm.Compose(ctx, plan.Image, track, plan.Output); err != nil {
		plan.Calls = rec.Calls()
		return plan, err
	}
	plan.Calls = rec.Calls()
	return plan, nil
}
