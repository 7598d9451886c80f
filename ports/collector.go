package ports

import (
	"context"

	"nomen/domain/entity"
)

// Collector fetches a cohort of named entities from an external read-only
// source. Collectors are best-effort: failures come back as structured
// errors and never panic or retry internally.
type Collector interface {
	Name() string
	Collect(ctx context.Context, limit int) (*entity.Cohort, error)
}
