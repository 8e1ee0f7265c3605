package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// LocalEvent is one nearby scheduled event that could disrupt a plan
// (marathons, concerts, road closures).
type LocalEvent struct {
	// Title names the event.
	Title string `json:"title"`
	// Category is the provider's event category.
	Category string `json:"category"`
	// Rank is the provider's 0-100 impact rank.
	Rank int `json:"rank"`
	// Start is the event start time, RFC 3339.
	Start string `json:"start"`
}

// EventsClient fetches scheduled local events from the PredictHQ API.
type EventsClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewEventsClient creates an events client. An empty baseURL selects the
// production endpoint.
func NewEventsClient(baseURL, apiKey string) *EventsClient {
	if baseURL == "" {
		baseURL = "https://api.predicthq.com/v1"
	}
	return &EventsClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// eventsResponse mirrors the provider's search payload.
type eventsResponse struct {
	Results []struct {
		Title    string `json:"title"`
		Category string `json:"category"`
		Rank     int    `json:"rank"`
		Start    string `json:"start"`
	} `json:"results"`
}

// Nearby returns scheduled events within the radius (km) of a point.
func (c *EventsClient) Nearby(ctx context.Context, lat, lng float64, radiusKm int) ([]LocalEvent, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("events: no API key configured")
	}

	params := url.Values{}
	params.Set("within", fmt.Sprintf("%dkm@%s,%s", radiusKm,
		strconv.FormatFloat(lat, 'f', -1, 64),
		strconv.FormatFloat(lng, 'f', -1, 64)))
	params.Set("sort", "rank")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/events/?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("events: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("events: HTTP %d", resp.StatusCode)
	}

	var payload eventsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("events: decode response: %w", err)
	}

	events := make([]LocalEvent, 0, len(payload.Results))
	for _, r := range payload.Results {
		events = append(events, LocalEvent{
			Title:    r.Title,
			Category: r.Category,
			Rank:     r.Rank,
			Start:    r.Start,
		})
	}
	return events, nil
}
