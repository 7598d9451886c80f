package collect

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"nomen/domain/entity"
	"nomen/internal/errors"
)

const defaultNgramsURL = "https://books.google.com/ngrams/json"

// NgramsCollector queries the Google Books Ngrams JSON endpoint for a
// fixed word list. Each word becomes an entity and its mean usage
// frequency over the requested year range the outcome.
type NgramsCollector struct {
	client    *Client
	baseURL   string
	words     []string
	yearStart int
	yearEnd   int
}

// NewNgramsCollector creates a collector for the given words over
// 1950-2019, the widest range the 2019 corpus covers cleanly.
func NewNgramsCollector(client *Client, words []string) *NgramsCollector {
	return &NgramsCollector{
		client:    client,
		baseURL:   defaultNgramsURL,
		words:     words,
		yearStart: 1950,
		yearEnd:   2019,
	}
}

// WithBaseURL overrides the API endpoint, mainly for tests.
func (c *NgramsCollector) WithBaseURL(u string) *NgramsCollector {
	c.baseURL = u
	return c
}

func (c *NgramsCollector) Name() string { return "ngrams" }

type ngramSeries struct {
	Ngram      string    `json:"ngram"`
	Timeseries []float64 `json:"timeseries"`
}

// Collect queries up to limit words in a single request. limit <= 0
// means all configured words.
func (c *NgramsCollector) Collect(ctx context.Context, limit int) (*entity.Cohort, error) {
	words := c.words
	if limit > 0 && limit < len(words) {
		words = words[:limit]
	}
	if len(words) == 0 {
		return nil, errors.InvalidInput("ngrams collector has no words configured")
	}

	params := url.Values{}
	params.Set("content", strings.Join(words, ","))
	params.Set("year_start", fmt.Sprintf("%d", c.yearStart))
	params.Set("year_end", fmt.Sprintf("%d", c.yearEnd))
	params.Set("corpus", "en-2019")
	params.Set("smoothing", "0")

	var series []ngramSeries
	if err := c.client.GetJSON(ctx, c.baseURL+"?"+params.Encode(), &series); err != nil {
		return nil, errors.ExternalServiceError("ngrams", err)
	}

	entities := make([]entity.Entity, 0, len(series))
	for _, s := range series {
		if s.Ngram == "" || len(s.Timeseries) == 0 {
			continue
		}
		entities = append(entities, entity.Entity{
			Name:    s.Ngram,
			Outcome: meanFrequency(s.Timeseries),
		})
	}
	if len(entities) == 0 {
		return nil, errors.ExternalServiceError("ngrams", fmt.Errorf("response contained no usable series"))
	}

	return entity.NewCohort(c.Name(), entities), nil
}

func meanFrequency(series []float64) float64 {
	sum := 0.0
	for _, v := range series {
		sum += v
	}
	return sum / float64(len(series))
}
