// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const (
	tomorrowEndpoint       = "https://api.tomorrow.io/v4/weather/realtime"
	defaultWeatherLocation = "Sydney"
)

// WeatherTool answers get_weather_data calls from the Tomorrow.io
// realtime endpoint.
type WeatherTool struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewWeatherTool creates the tool with the given Tomorrow.io API key.
func NewWeatherTool(apiKey string) *WeatherTool {
	return &WeatherTool{
		apiKey:     apiKey,
		endpoint:   tomorrowEndpoint,
		httpClient: &http.Client{},
	}
}

// Definition implements Tool.
func (t *WeatherTool) Definition() Definition {
	return Definition{
		Name:        "get_weather_data",
		Description: "Get current weather conditions for a location. Defaults to Sydney when no location is given.",
		Parameters: objectSchema(map[string]any{
			"location": map[string]any{
				"type":        "string",
				"description": "City name, e.g. Sydney or London",
			},
		}),
		FallbackField: "location",
	}
}

type tomorrowRealtime struct {
	Data struct {
		Values struct {
			Temperature float64 `json:"temperature"`
			Humidity    float64 `json:"humidity"`
			WindSpeed   float64 `json:"windSpeed"`
		} `json:"values"`
	} `json:"data"`
	Location struct {
		Name string `json:"name"`
	} `json:"location"`
}

// Execute implements Tool.
func (t *WeatherTool) Execute(ctx context.Context, args Arguments) (string, error) {
	location := args.StringOr("location", defaultWeatherLocation)

	params := url.Values{}
	params.Set("location", location)
	params.Set("units", "metric")
	params.Set("apikey", t.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("weather endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var rt tomorrowRealtime
	if err := json.NewDecoder(resp.Body).Decode(&rt); err != nil {
		return "", fmt.Errorf("decode weather response: %w", err)
	}

	name := rt.Location.Name
	if name == "" {
		name = location
	}
	return fmt.Sprintf("Current weather in %s: %.1f°C, %.0f%% humidity, wind %.1f m/s.",
		name, rt.Data.Values.Temperature, rt.Data.Values.Humidity, rt.Data.Values.WindSpeed), nil
}
