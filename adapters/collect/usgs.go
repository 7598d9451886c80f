package collect

import (
	"context"
	"fmt"
	"strings"

	"nomen/domain/entity"
	"nomen/internal/errors"
)

const defaultUSGSURL = "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/all_month.geojson"

// USGSCollector fetches the USGS earthquake summary feed. Each feature's
// place string becomes the entity name and its magnitude the outcome.
type USGSCollector struct {
	client  *Client
	feedURL string
}

// NewUSGSCollector creates a collector against the public monthly feed.
func NewUSGSCollector(client *Client) *USGSCollector {
	return &USGSCollector{client: client, feedURL: defaultUSGSURL}
}

// WithFeedURL overrides the feed endpoint, mainly for tests.
func (c *USGSCollector) WithFeedURL(url string) *USGSCollector {
	c.feedURL = url
	return c
}

func (c *USGSCollector) Name() string { return "usgs" }

type usgsFeed struct {
	Features []struct {
		Properties struct {
			Place string   `json:"place"`
			Mag   *float64 `json:"mag"`
		} `json:"properties"`
	} `json:"features"`
}

// Collect fetches up to limit earthquakes with a named place and a
// reported magnitude. limit <= 0 means no cap.
func (c *USGSCollector) Collect(ctx context.Context, limit int) (*entity.Cohort, error) {
	var feed usgsFeed
	if err := c.client.GetJSON(ctx, c.feedURL, &feed); err != nil {
		return nil, errors.ExternalServiceError("usgs", err)
	}

	entities := make([]entity.Entity, 0, len(feed.Features))
	for _, f := range feed.Features {
		place := strings.TrimSpace(f.Properties.Place)
		if place == "" || f.Properties.Mag == nil {
			continue
		}
		entities = append(entities, entity.Entity{
			Name:    placeName(place),
			Outcome: *f.Properties.Mag,
		})
		if limit > 0 && len(entities) >= limit {
			break
		}
	}
	if len(entities) == 0 {
		return nil, errors.ExternalServiceError("usgs", fmt.Errorf("feed contained no usable features"))
	}

	return entity.NewCohort(c.Name(), entities), nil
}

// placeName strips the distance prefix USGS puts on most place strings
// ("12 km NE of Ridgecrest, CA" -> "Ridgecrest, CA"). Place strings
// without a distance prefix pass through unchanged.
func placeName(place string) string {
	prefix, rest, found := strings.Cut(place, " of ")
	if found && strings.Contains(prefix, "km") && strings.TrimSpace(rest) != "" {
		return strings.TrimSpace(rest)
	}
	return place
}
