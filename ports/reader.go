package ports

import (
	"context"

	"nomen/domain/entity"
)

// CohortReader loads a cohort of named entities from a local source
// (CSV/XLSX file, directory of fixtures).
type CohortReader interface {
	Read(ctx context.Context, path string) (*entity.Cohort, error)
}
