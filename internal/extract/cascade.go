package extract

import (
	"fmt"
	"log/slog"
)

// Strategy is one step of an extraction cascade
type Strategy struct {
	// Name labels the step in logs and metrics ("structured-data", "hydration", ...)
	Name string
	// Layer groups steps for reporting; several markup steps share one layer
	Layer string
	Apply func(b *Builder, p *Page) error
}

// Step reports what a single strategy contributed
type Step struct {
	Name   string
	Layer  string
	Filled int
	Err    error
}

// Trace is the per-call record of a cascade run
type Trace []Step

// FilledByLayer sums contributed fields per layer
func (t Trace) FilledByLayer() map[string]int {
	out := make(map[string]int)
	for _, s := range t {
		out[s.Layer] += s.Filled
	}
	return out
}

// Run folds the strategies over a fresh builder in order. A failing or
// panicking strategy is logged and contributes nothing; the cascade always
// completes.
func Run(p *Page, strategies []Strategy) (*Builder, Trace) {
	b := NewBuilder()
	trace := make(Trace, 0, len(strategies))
	logger := p.Logger()

	for _, s := range strategies {
		if b.Complete() {
			break
		}
		before := b.Filled()
		err := apply(s, b, p)
		step := Step{Name: s.Name, Layer: s.Layer, Filled: b.Filled() - before, Err: err}
		trace = append(trace, step)

		if err != nil {
			logger.Warn("extraction strategy failed", "strategy", s.Name, "url", p.URL, "error", err)
			continue
		}
		if step.Filled > 0 {
			logger.Debug("extraction strategy filled fields", "strategy", s.Name, "fields", step.Filled)
		}
	}

	return b, trace
}

func apply(s Strategy, b *Builder, p *Page) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	if s.Apply == nil {
		return nil
	}
	return s.Apply(b, p)
}

// logAttrs is shared by strategies reporting skipped blocks
func logAttrs(p *Page, name string) []any {
	return []any{slog.String("strategy", name), slog.String("url", p.URL)}
}
