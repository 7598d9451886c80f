package entity

import (
	"nomen/domain/core"
)

// Entity is a named subject of analysis (athlete, cryptocurrency, country,
// text). Entities are constructed by a loader or collector and treated as
// immutable for the duration of a run.
type Entity struct {
	ID       core.EntityID          `json:"id,omitempty"`
	Name     string                 `json:"name"`
	Outcome  float64                `json:"outcome"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Cohort is the set of entities analyzed in a single run.
type Cohort struct {
	Source   string   `json:"source"` // file path or collector name
	Entities []Entity `json:"entities"`
}

// NewCohort creates a cohort from a slice of entities.
func NewCohort(source string, entities []Entity) *Cohort {
	return &Cohort{Source: source, Entities: entities}
}

// Len returns the number of entities in the cohort.
func (c *Cohort) Len() int {
	return len(c.Entities)
}

// Names returns entity names in cohort order.
func (c *Cohort) Names() []string {
	names := make([]string, len(c.Entities))
	for i, e := range c.Entities {
		names[i] = e.Name
	}
	return names
}

// Outcomes returns entity outcomes in cohort order.
func (c *Cohort) Outcomes() []float64 {
	outcomes := make([]float64, len(c.Entities))
	for i, e := range c.Entities {
		outcomes[i] = e.Outcome
	}
	return outcomes
}

// NameCounts aggregates entity frequency by name, for diversity statistics.
func (c *Cohort) NameCounts() map[string]int {
	counts := make(map[string]int, len(c.Entities))
	for _, e := range c.Entities {
		counts[e.Name]++
	}
	return counts
}

// Hash returns a deterministic fingerprint of the cohort's names.
func (c *Cohort) Hash() core.CorpusHash {
	return core.ComputeCorpusHash(c.Names())
}
