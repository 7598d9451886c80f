package app

import (
	"context"
	"fmt"
	"path/filepath"

	"nomen/domain/entity"
	domainreport "nomen/domain/report"
	"nomen/internal/errors"
	"nomen/internal/pipeline"
	"nomen/internal/report"
	"nomen/ports"

	"github.com/rs/zerolog"
)

// AnalysisService orchestrates one analysis run end to end: pipeline
// execution, report serialization, optional persistence. All dependencies
// are injected by the caller; the service holds no process-global state.
type AnalysisService struct {
	pipeline  *pipeline.Pipeline
	assembler *report.Assembler
	repo      ports.ReportRepository // nil when persistence is disabled
}

// NewAnalysisService wires the service. repo may be nil.
func NewAnalysisService(p *pipeline.Pipeline, assembler *report.Assembler, repo ports.ReportRepository) *AnalysisService {
	return &AnalysisService{pipeline: p, assembler: assembler, repo: repo}
}

// RunRequest describes one analysis run.
type RunRequest struct {
	Cohort  *entity.Cohort
	Formats []domainreport.Format
	OutDir  string
}

// RunResponse is what the caller gets back: the pipeline result plus the
// paths of every report file written.
type RunResponse struct {
	Result *pipeline.RunResult
	Paths  []string
}

// Run executes the pipeline over the request's cohort, writes the report
// in every requested format, and persists it when a repository is wired.
// A persistence failure is logged and reported but does not discard the
// files already written.
func (s *AnalysisService) Run(ctx context.Context, req RunRequest) (*RunResponse, error) {
	if req.Cohort == nil || req.Cohort.Len() == 0 {
		return nil, errors.InvalidInput("run request needs a non-empty cohort")
	}
	if len(req.Formats) == 0 {
		req.Formats = []domainreport.Format{domainreport.FormatJSON}
	}

	result, err := s.pipeline.Run(ctx, req.Cohort)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(req.Formats))
	for _, format := range req.Formats {
		path := filepath.Join(req.OutDir, reportFilename(result.Report, format))
		if err := s.assembler.Write(result.Report, format, path); err != nil {
			return nil, errors.Wrapf(err, "failed to write %s report", format)
		}
		paths = append(paths, path)
	}

	if s.repo != nil {
		if err := s.repo.Save(ctx, result.Report, &result.Manifest); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).
				Str("run_id", result.Manifest.RunID.String()).
				Msg("report persistence failed")
			return &RunResponse{Result: result, Paths: paths}, errors.Wrap(err, "report persistence failed")
		}
	}

	return &RunResponse{Result: result, Paths: paths}, nil
}

func reportFilename(rep *domainreport.Report, format domainreport.Format) string {
	ext := string(format)
	if format == domainreport.FormatMarkdown {
		ext = "md"
	}
	return fmt.Sprintf("report_%s.%s", rep.RunID, ext)
}
