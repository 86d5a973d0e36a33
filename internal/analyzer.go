package internal

import (
	"context"
	"fmt"
)

// Report is the result of analyzing one flow
type Report struct {
	Source       string        `json:"source" yaml:"source"`
	Statistics   Statistics    `json:"statistics" yaml:"statistics"`
	Interactions []Interaction `json:"interactions" yaml:"interactions"`
	Summary      *Summary      `json:"summary,omitempty" yaml:"summary,omitempty"`

	flow *Flow
}

// Flow returns the flow the report was built from
func (r *Report) Flow() *Flow {
	return r.flow
}

// App wires the configuration, cache and completion client for one run
type App struct {
	Config     *Config
	Cache      *CacheManager
	Summarizer *Summarizer

	extractor *Extractor
}

// NewApp creates an App and ensures the cache directory exists. completer
// may be nil for commands that never summarize.
func NewApp(cfg *Config, completer Completer) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	cache := NewCacheManager(cfg.CacheDir)
	if err := cache.EnsureCacheDir(); err != nil {
		return nil, &CacheError{Op: "init", Err: err}
	}

	app := &App{
		Config:    cfg,
		Cache:     cache,
		extractor: NewExtractor(),
	}
	if completer != nil {
		app.Summarizer = NewSummarizer(cache, completer, cfg.ModelName(), cfg.Temperature)
	}
	return app, nil
}

// Prepare loads the flow at path and builds a report without a summary
func (a *App) Prepare(path string) (*Report, error) {
	flow, err := LoadFlow(path)
	if err != nil {
		return nil, err
	}
	report := a.BuildReport(flow)
	report.Source = path
	return report, nil
}

// BuildReport computes statistics and interactions for a loaded flow
func (a *App) BuildReport(flow *Flow) *Report {
	return &Report{
		Statistics:   flow.Statistics(),
		Interactions: a.extractor.Extract(flow),
		flow:         flow,
	}
}

// Summarize attaches a summary to report
func (a *App) Summarize(ctx context.Context, report *Report) error {
	if a.Summarizer == nil {
		if err := a.Config.RequireCredential(); err != nil {
			return err
		}
		return fmt.Errorf("no completion client configured")
	}

	flow := report.flow
	if flow == nil {
		flow = &Flow{Name: report.Statistics.Name}
	}

	summary, err := a.Summarizer.Summarize(ctx, flow, report.Interactions)
	if err != nil {
		return err
	}
	report.Summary = summary
	return nil
}

// Analyze runs the whole pipeline for the flow at path, reporting each
// stage as a progress step. On any error no report is returned.
func (a *App) Analyze(ctx context.Context, path string) (*Report, error) {
	var (
		flow   *Flow
		report *Report
	)
	steps := []ProgressStep{
		{
			Message: "Loading " + path,
			Fn: func() error {
				var err error
				flow, err = LoadFlow(path)
				return err
			},
		},
		{
			Message: "Extracting interactions",
			Fn: func() error {
				report = a.BuildReport(flow)
				report.Source = path
				LogInfo("Loaded %s: %d step(s), %d interaction(s)", path, report.Statistics.TotalSteps, len(report.Interactions))
				return nil
			},
		},
		{
			Message: "Generating summary",
			Fn: func() error {
				return a.Summarize(ctx, report)
			},
		},
	}
	if err := ShowProgressWithSteps(ctx, steps); err != nil {
		return nil, err
	}
	return report, nil
}
