// Package ticketing queries an external ticketed-events provider and
// normalizes its responses. The provider is a black box that can be
// slow or down; callers that aggregate never let that surface as a
// failure of their own response.
package ticketing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrUpstreamUnavailable is returned when the provider cannot serve
// the request (network failure, timeout, or a non-2xx status).
var ErrUpstreamUnavailable = errors.New("ticketing provider unavailable")

// DefaultTimeout bounds a single provider round trip.
const DefaultTimeout = 5 * time.Second

// ExternalEvent is a provider event reduced to the fields we surface.
type ExternalEvent struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	StartsAt  time.Time `json:"starts_at"`
	VenueName string    `json:"venue_name"`
	City      string    `json:"city"`
	ImageURL  string    `json:"image_url,omitempty"`
}

// Query narrows a provider search.
type Query struct {
	Keyword string
	City    string
	Size    int // defaults to 20
}

// Client talks to the provider over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger
}

// NewClient creates a provider client. baseURL is the provider's
// search endpoint root; apiKey is appended to every request.
func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     logger,
	}
}

// Search queries the provider. Returns ErrUpstreamUnavailable for any
// transport or provider-side failure.
func (c *Client) Search(ctx context.Context, q Query) ([]ExternalEvent, error) {
	size := q.Size
	if size <= 0 {
		size = 20
	}

	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("size", strconv.Itoa(size))
	params.Set("classificationName", "music")
	if q.Keyword != "" {
		params.Set("keyword", q.Keyword)
	}
	if q.City != "" {
		params.Set("city", q.City)
	}

	endpoint := fmt.Sprintf("%s/events.json?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("ticketing provider request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("ticketing provider returned error status",
			"status", resp.StatusCode,
		)
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrUpstreamUnavailable, err)
	}
	return payload.events(), nil
}

// SearchOrEmpty is Search with the degradation baked in: provider
// failures are logged and an empty slice returned.
func (c *Client) SearchOrEmpty(ctx context.Context, q Query) []ExternalEvent {
	events, err := c.Search(ctx, q)
	if err != nil {
		c.logger.Warn("degrading to empty ticketing results", "error", err)
		return []ExternalEvent{}
	}
	return events
}

// searchResponse mirrors the provider's envelope.
type searchResponse struct {
	Embedded struct {
		Events []providerEvent `json:"events"`
	} `json:"_embedded"`
}

type providerEvent struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	URL    string `json:"url"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
	Dates struct {
		Start struct {
			DateTime string `json:"dateTime"`
		} `json:"start"`
	} `json:"dates"`
	Embedded struct {
		Venues []struct {
			Name string `json:"name"`
			City struct {
				Name string `json:"name"`
			} `json:"city"`
		} `json:"venues"`
	} `json:"_embedded"`
}

func (r searchResponse) events() []ExternalEvent {
	out := make([]ExternalEvent, 0, len(r.Embedded.Events))
	for _, pe := range r.Embedded.Events {
		e := ExternalEvent{
			ID:   pe.ID,
			Name: pe.Name,
			URL:  pe.URL,
		}
		if ts, err := time.Parse(time.RFC3339, pe.Dates.Start.DateTime); err == nil {
			e.StartsAt = ts
		}
		if len(pe.Images) > 0 {
			e.ImageURL = pe.Images[0].URL
		}
		if len(pe.Embedded.Venues) > 0 {
			e.VenueName = pe.Embedded.Venues[0].Name
			e.City = pe.Embedded.Venues[0].City.Name
		}
		out = append(out, e)
	}
	return out
}
