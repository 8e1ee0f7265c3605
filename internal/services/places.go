// Package services contains thin HTTP clients for the external dependencies
// the stages call: venue search, isochrones, weather, local events, and
// page reading. Clients return errors; the owning stage decides how to
// degrade, so nothing here ever panics or retries on its own.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/calebmb/pathfinder/pkg/models"
)

// defaultTimeout bounds every outbound call so one unresponsive dependency
// degrades a single task instead of stalling a whole fan-out batch.
const defaultTimeout = 15 * time.Second

// PlacesQuery describes one venue search.
type PlacesQuery struct {
	// Query is the free-text search term (e.g., "basketball court").
	Query string
	// Near is the area to search in (e.g., "downtown Toronto").
	Near string
	// Category optionally restricts results to a category.
	Category string
	// RadiusM is the search radius in metres (0 = provider default).
	RadiusM int
	// Limit caps the number of results (0 = provider default).
	Limit int
}

// PlacesClient searches a places index for candidate venues.
type PlacesClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewPlacesClient creates a places client. An empty baseURL selects the
// production endpoint.
func NewPlacesClient(baseURL, apiKey string) *PlacesClient {
	if baseURL == "" {
		baseURL = "https://api.foursquare.com/v3/places"
	}
	return &PlacesClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// placesResponse mirrors the provider's search payload.
type placesResponse struct {
	Results []struct {
		ID         string `json:"fsq_id"`
		Name       string `json:"name"`
		Geocodes   struct {
			Main struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"main"`
		} `json:"geocodes"`
		Categories []struct {
			Name string `json:"name"`
		} `json:"categories"`
		Location struct {
			FormattedAddress string `json:"formatted_address"`
		} `json:"location"`
		Website string  `json:"website"`
		Rating  float64 `json:"rating"`
	} `json:"results"`
}

// Search returns venues matching the query.
func (c *PlacesClient) Search(ctx context.Context, q PlacesQuery) ([]models.Venue, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("places: no API key configured")
	}

	params := url.Values{}
	params.Set("query", q.Query)
	if q.Near != "" {
		params.Set("near", q.Near)
	}
	if q.Category != "" {
		params.Set("categories", q.Category)
	}
	if q.RadiusM > 0 {
		params.Set("radius", strconv.Itoa(q.RadiusM))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("places: build request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places: HTTP %d", resp.StatusCode)
	}

	var payload placesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("places: decode response: %w", err)
	}

	venues := make([]models.Venue, 0, len(payload.Results))
	for _, r := range payload.Results {
		v := models.Venue{
			ID:      r.ID,
			Name:    r.Name,
			Lat:     r.Geocodes.Main.Latitude,
			Lng:     r.Geocodes.Main.Longitude,
			Address: r.Location.FormattedAddress,
			Website: r.Website,
			Rating:  r.Rating,
		}
		if len(r.Categories) > 0 {
			v.Category = r.Categories[0].Name
		}
		venues = append(venues, v)
	}
	return venues, nil
}
