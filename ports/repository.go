package ports

import (
	"context"

	"nomen/domain/core"
	"nomen/domain/report"
)

// ReportRepository persists finished reports and their run manifests.
type ReportRepository interface {
	Save(ctx context.Context, rep *report.Report, manifest *report.Manifest) error
	GetByRun(ctx context.Context, runID core.RunID) (*report.Report, error)
	ListRecent(ctx context.Context, limit int) ([]report.Manifest, error)
}
