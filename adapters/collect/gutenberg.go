package collect

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"nomen/domain/entity"
	"nomen/internal/errors"
)

// Moby Dick, the traditional corpus-linguistics workhorse.
const defaultGutenbergURL = "https://www.gutenberg.org/files/2701/2701-0.txt"

// GutenbergCollector downloads a Project Gutenberg plain-text book and
// turns its vocabulary into a cohort: each distinct word is an entity
// and its occurrence count the outcome.
type GutenbergCollector struct {
	client  *Client
	textURL string
	minLen  int
}

// NewGutenbergCollector creates a collector for the default text,
// ignoring words shorter than three letters.
func NewGutenbergCollector(client *Client) *GutenbergCollector {
	return &GutenbergCollector{client: client, textURL: defaultGutenbergURL, minLen: 3}
}

// WithTextURL overrides the text location, mainly for tests.
func (c *GutenbergCollector) WithTextURL(u string) *GutenbergCollector {
	c.textURL = u
	return c
}

func (c *GutenbergCollector) Name() string { return "gutenberg" }

// Collect downloads the text and returns the limit most frequent words.
// limit <= 0 means the full vocabulary.
func (c *GutenbergCollector) Collect(ctx context.Context, limit int) (*entity.Cohort, error) {
	body, err := c.client.GetBytes(ctx, c.textURL)
	if err != nil {
		return nil, errors.ExternalServiceError("gutenberg", err)
	}

	counts := make(map[string]int)
	words := strings.FieldsFunc(strings.ToLower(string(body)), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, w := range words {
		if len(w) < c.minLen {
			continue
		}
		counts[w]++
	}
	if len(counts) == 0 {
		return nil, errors.ExternalServiceError("gutenberg", fmt.Errorf("text contained no usable words"))
	}

	entities := make([]entity.Entity, 0, len(counts))
	for word, count := range counts {
		entities = append(entities, entity.Entity{Name: word, Outcome: float64(count)})
	}
	sort.Slice(entities, func(i, j int) bool {
		if entities[i].Outcome != entities[j].Outcome {
			return entities[i].Outcome > entities[j].Outcome
		}
		return entities[i].Name < entities[j].Name
	})
	if limit > 0 && limit < len(entities) {
		entities = entities[:limit]
	}

	return entity.NewCohort(c.Name(), entities), nil
}
