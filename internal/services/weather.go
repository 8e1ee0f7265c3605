package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Forecast is the condensed weather outlook for a venue's location.
type Forecast struct {
	// Summary is the headline condition (e.g., "light rain").
	Summary string `json:"summary"`
	// TempC is the expected temperature in Celsius.
	TempC float64 `json:"temp_c"`
	// RainMM is the expected rainfall over the next hours, in millimetres.
	RainMM float64 `json:"rain_mm"`
	// WindKmh is the expected wind speed in km/h.
	WindKmh float64 `json:"wind_kmh"`
}

// WeatherClient fetches forecasts from the OpenWeather API.
type WeatherClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewWeatherClient creates a weather client. An empty baseURL selects the
// production endpoint.
func NewWeatherClient(baseURL, apiKey string) *WeatherClient {
	if baseURL == "" {
		baseURL = "https://api.openweathermap.org/data/2.5"
	}
	return &WeatherClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// weatherResponse mirrors the provider's current-weather payload.
type weatherResponse struct {
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"` // m/s
	} `json:"wind"`
	Rain struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
}

// Forecast returns the weather outlook at a point.
func (c *WeatherClient) Forecast(ctx context.Context, lat, lng float64) (*Forecast, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("weather: no API key configured")
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	params.Set("units", "metric")
	params.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/weather?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("weather: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather: HTTP %d", resp.StatusCode)
	}

	var payload weatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("weather: decode response: %w", err)
	}

	f := &Forecast{
		TempC:   payload.Main.Temp,
		RainMM:  payload.Rain.OneHour,
		WindKmh: payload.Wind.Speed * 3.6,
	}
	if len(payload.Weather) > 0 {
		f.Summary = payload.Weather[0].Description
	}
	return f, nil
}
