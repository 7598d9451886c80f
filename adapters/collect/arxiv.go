package collect

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"nomen/domain/entity"
	"nomen/internal/errors"
)

const defaultArxivURL = "http://export.arxiv.org/api/query"

// ArxivCollector fetches recent papers from the arXiv Atom API. Paper
// titles become entity names and the author count the outcome.
type ArxivCollector struct {
	client  *Client
	baseURL string
	query   string
}

// NewArxivCollector creates a collector for the given search query
// (arXiv query syntax, e.g. "cat:cs.LG").
func NewArxivCollector(client *Client, query string) *ArxivCollector {
	return &ArxivCollector{client: client, baseURL: defaultArxivURL, query: query}
}

// WithBaseURL overrides the API endpoint, mainly for tests.
func (c *ArxivCollector) WithBaseURL(u string) *ArxivCollector {
	c.baseURL = u
	return c
}

func (c *ArxivCollector) Name() string { return "arxiv" }

type arxivFeed struct {
	Entries []struct {
		Title   string `xml:"title"`
		Authors []struct {
			Name string `xml:"name"`
		} `xml:"author"`
	} `xml:"entry"`
}

// Collect fetches up to limit papers. limit <= 0 defaults to 100.
func (c *ArxivCollector) Collect(ctx context.Context, limit int) (*entity.Cohort, error) {
	if limit <= 0 {
		limit = 100
	}

	params := url.Values{}
	params.Set("search_query", c.query)
	params.Set("max_results", fmt.Sprintf("%d", limit))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")

	body, err := c.client.GetBytes(ctx, c.baseURL+"?"+params.Encode())
	if err != nil {
		return nil, errors.ExternalServiceError("arxiv", err)
	}

	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, errors.ExternalServiceError("arxiv", err)
	}

	entities := make([]entity.Entity, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		title := normalizeTitle(e.Title)
		if title == "" || len(e.Authors) == 0 {
			continue
		}
		entities = append(entities, entity.Entity{
			Name:    title,
			Outcome: float64(len(e.Authors)),
		})
	}
	if len(entities) == 0 {
		return nil, errors.ExternalServiceError("arxiv", fmt.Errorf("feed contained no usable entries"))
	}

	return entity.NewCohort(c.Name(), entities), nil
}

// normalizeTitle collapses the newline-and-indent whitespace the Atom
// feed embeds in long titles.
func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(title), " ")
}
