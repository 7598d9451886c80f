package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"nomen/domain/core"
	"nomen/domain/entity"
	"nomen/domain/feature"
	domainreport "nomen/domain/report"
	"nomen/internal/correlate"
	"nomen/internal/diversity"
	"nomen/internal/errors"
	"nomen/internal/extract"
	"nomen/internal/report"

	"github.com/rs/zerolog"
)

// Pipeline is the linear three-stage analysis: cohort -> feature matrix ->
// correlation sweep -> assembled report. One invocation, no retries, no
// intermediate checkpoints.
type Pipeline struct {
	extractor *extract.Extractor
	engine    *correlate.Engine
	assembler *report.Assembler
}

// New wires a pipeline from its three stages. Callers construct the stages
// once and pass them in; nothing here is process-global.
func New(extractor *extract.Extractor, engine *correlate.Engine, assembler *report.Assembler) *Pipeline {
	return &Pipeline{
		extractor: extractor,
		engine:    engine,
		assembler: assembler,
	}
}

// Extractor exposes the pipeline's extractor (fitted or not).
func (p *Pipeline) Extractor() *extract.Extractor {
	return p.extractor
}

// Transform derives the feature vector for a single name using the fitted
// extractor.
func (p *Pipeline) Transform(name string) (feature.Vector, error) {
	return p.extractor.Transform(name)
}

// RunResult bundles everything one pipeline invocation produced.
type RunResult struct {
	Report   *domainreport.Report    `json:"report"`
	Manifest domainreport.Manifest   `json:"manifest"`
	Summary  *correlate.SweepSummary `json:"summary"`
}

// Run executes the full pipeline over a cohort: fit, transform, sweep,
// assemble.
func (p *Pipeline) Run(ctx context.Context, cohort *entity.Cohort) (*RunResult, error) {
	start := time.Now()
	runID := core.RunID(core.NewID())
	log := zerolog.Ctx(ctx).With().Str("run_id", runID.String()).Logger()

	names := cohort.Names()
	if err := p.extractor.Fit(names); err != nil {
		return nil, errors.Wrap(err, "extractor fit failed")
	}

	matrix, err := p.extractor.TransformAll(names)
	if err != nil {
		return nil, errors.Wrap(err, "feature extraction failed")
	}
	log.Debug().
		Int("rows", matrix.RowCount()).
		Int("features", matrix.ColumnCount()).
		Msg("feature matrix built")

	results, summary, err := p.engine.Sweep(ctx, matrix, cohort.Outcomes())
	if err != nil {
		return nil, errors.Wrap(err, "correlation sweep failed")
	}

	div, err := diversity.Summarize(cohort.NameCounts())
	if err != nil {
		return nil, errors.Wrap(err, "diversity summary failed")
	}

	rep := p.assembler.Assemble(runID, cohort.Source, results, div)

	manifest := domainreport.Manifest{
		RunID:        runID,
		Source:       cohort.Source,
		CorpusHash:   cohort.Hash(),
		ConfigHash:   p.extractor.Config().Hash(),
		Alpha:        p.engine.Alpha(),
		MinSampleN:   p.engine.MinSampleSize(),
		SampleSize:   cohort.Len(),
		FeatureCount: matrix.ColumnCount(),
		TestsRun:     summary.TestsRun,
		TestsSkipped: summary.TestsSkipped,
		RuntimeMs:    time.Since(start).Milliseconds(),
		CreatedAt:    core.Now(),
	}

	log.Info().
		Int("tests_run", summary.TestsRun).
		Int("tests_skipped", summary.TestsSkipped).
		Int64("runtime_ms", manifest.RuntimeMs).
		Msg("pipeline run complete")

	return &RunResult{Report: rep, Manifest: manifest, Summary: summary}, nil
}

// snapshot is the persisted form of a fitted pipeline.
type snapshot struct {
	Version     int                 `json:"version"`
	Config      feature.Config      `json:"config"`
	State       extract.CorpusState `json:"state"`
	Alpha       float64             `json:"alpha"`
	MinSampleN  int                 `json:"min_sample_n"`
	Fingerprint core.Hash           `json:"fingerprint"`
	SavedAt     core.Timestamp      `json:"saved_at"`
}

const snapshotVersion = 1

// Save persists the fitted pipeline (extractor config + corpus state +
// engine thresholds) as JSON. A pipeline loaded from this file transforms
// identically to this one.
func (p *Pipeline) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.IOError("failed to create pipeline directory", err)
		}
	}

	snap := snapshot{
		Version:     snapshotVersion,
		Config:      p.extractor.Config(),
		State:       p.extractor.State(),
		Alpha:       p.engine.Alpha(),
		MinSampleN:  p.engine.MinSampleSize(),
		Fingerprint: p.extractor.Fingerprint(),
		SavedAt:     core.Now(),
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal pipeline")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.IOError("failed to write pipeline file", err)
	}
	return nil
}

// Load reconstructs a pipeline from a saved snapshot and verifies the
// extractor fingerprint before returning it.
func Load(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IOError("failed to read pipeline file", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(err, "failed to decode pipeline file")
	}
	if snap.Version != snapshotVersion {
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported pipeline snapshot version: %d", snap.Version))
	}

	extractor, err := extract.Restore(snap.Config, snap.State)
	if err != nil {
		return nil, errors.Wrap(err, "failed to restore extractor")
	}
	if fp := extractor.Fingerprint(); fp != snap.Fingerprint {
		return nil, errors.ValidationError(fmt.Sprintf("pipeline fingerprint mismatch: saved %s, restored %s", snap.Fingerprint, fp))
	}

	engine := correlate.NewEngine(correlate.Options{Alpha: snap.Alpha, MinSampleSize: snap.MinSampleN})
	assembler := report.NewAssembler(snap.Alpha)
	return New(extractor, engine, assembler), nil
}
