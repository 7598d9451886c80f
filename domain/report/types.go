package report

import (
	"nomen/domain/core"
	"nomen/domain/stats"
)

// Format identifies a report serialization target.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatXLSX     Format = "xlsx"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat validates a format string.
func ParseFormat(s string) (Format, bool) {
	switch Format(s) {
	case FormatJSON, FormatCSV, FormatXLSX, FormatMarkdown, FormatHTML:
		return Format(s), true
	}
	return "", false
}

// Report is the ordered, ranked output of one analysis run. Written once,
// never mutated.
type Report struct {
	ID             core.ReportID             `json:"id"`
	RunID          core.RunID                `json:"run_id"`
	Source         string                    `json:"source"`
	Results        []stats.CorrelationResult `json:"results"` // ranked by |r| descending
	Diversity      *stats.DiversitySummary   `json:"diversity,omitempty"`
	Interpretation string                    `json:"interpretation"`
	CreatedAt      core.Timestamp            `json:"created_at"`
}

// Manifest captures everything that parameterized an analysis run so the
// report can be reproduced.
type Manifest struct {
	RunID        core.RunID      `json:"run_id"`
	Source       string          `json:"source"`
	CorpusHash   core.CorpusHash `json:"corpus_hash"`
	ConfigHash   core.ConfigHash `json:"config_hash"`
	Alpha        float64         `json:"alpha"`
	MinSampleN   int             `json:"min_sample_n"`
	SampleSize   int             `json:"sample_size"`
	FeatureCount int             `json:"feature_count"`
	TestsRun     int             `json:"tests_run"`
	TestsSkipped int             `json:"tests_skipped"`
	RuntimeMs    int64           `json:"runtime_ms"`
	CreatedAt    core.Timestamp  `json:"created_at"`
}
