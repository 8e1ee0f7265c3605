package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/calebmb/pathfinder/internal/geo"
)

// MapboxClient fetches isochrone polygons (reachable areas within a travel
// time) from the Mapbox Isochrone API.
type MapboxClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewMapboxClient creates a Mapbox client. An empty baseURL selects the
// production endpoint.
func NewMapboxClient(baseURL, token string) *MapboxClient {
	if baseURL == "" {
		baseURL = "https://api.mapbox.com/isochrone/v1/mapbox"
	}
	return &MapboxClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// featureCollection is the subset of GeoJSON the isochrone response uses.
type featureCollection struct {
	Type     string `json:"type"`
	Features []struct {
		Geometry struct {
			Type        string          `json:"type"`
			Coordinates json.RawMessage `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Isochrone fetches the reachable-area polygon around a point for the given
// travel profile ("driving", "walking", "cycling") and contour in minutes.
func (c *MapboxClient) Isochrone(ctx context.Context, lat, lng float64, profile string, contourMinutes int) (*geo.Isochrone, error) {
	if c.token == "" {
		return nil, fmt.Errorf("mapbox: no access token configured")
	}
	if profile == "" {
		profile = "driving"
	}

	endpoint := fmt.Sprintf("%s/%s/%s,%s", c.baseURL, profile,
		strconv.FormatFloat(lng, 'f', -1, 64),
		strconv.FormatFloat(lat, 'f', -1, 64))

	params := url.Values{}
	params.Set("contours_minutes", strconv.Itoa(contourMinutes))
	params.Set("polygons", "true")
	params.Set("access_token", c.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("mapbox: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mapbox: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mapbox: HTTP %d", resp.StatusCode)
	}

	var fc featureCollection
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return nil, fmt.Errorf("mapbox: decode response: %w", err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) == 0 {
		return nil, fmt.Errorf("mapbox: unexpected response shape")
	}

	iso := &geo.Isochrone{}
	for _, f := range fc.Features {
		ring, err := outerRing(f.Geometry.Type, f.Geometry.Coordinates)
		if err != nil {
			continue
		}
		if len(ring) > 0 {
			iso.Rings = append(iso.Rings, ring)
		}
	}
	if len(iso.Rings) == 0 {
		return nil, fmt.Errorf("mapbox: no polygon rings in response")
	}
	return iso, nil
}

// outerRing extracts the outer ring from Polygon or MultiPolygon coordinates.
func outerRing(geomType string, raw json.RawMessage) (geo.Ring, error) {
	switch geomType {
	case "Polygon":
		var rings []geo.Ring
		if err := json.Unmarshal(raw, &rings); err != nil {
			return nil, err
		}
		if len(rings) == 0 {
			return nil, fmt.Errorf("empty polygon")
		}
		return rings[0], nil
	case "MultiPolygon":
		var polys [][]geo.Ring
		if err := json.Unmarshal(raw, &polys); err != nil {
			return nil, err
		}
		if len(polys) == 0 || len(polys[0]) == 0 {
			return nil, fmt.Errorf("empty multipolygon")
		}
		return polys[0][0], nil
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", geomType)
	}
}
