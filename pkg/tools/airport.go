// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const flightradarEndpoint = "https://api.flightradar24.com/common/v1/airport.json"

// AirportTool answers get_airport_details calls from the public
// FlightRadar24 airport endpoint.
type AirportTool struct {
	endpoint   string
	httpClient *http.Client
}

// NewAirportTool creates the tool against the public airport endpoint.
func NewAirportTool() *AirportTool {
	return &AirportTool{
		endpoint:   flightradarEndpoint,
		httpClient: &http.Client{},
	}
}

// Definition implements Tool.
func (t *AirportTool) Definition() Definition {
	return Definition{
		Name:        "get_airport_details",
		Description: "Look up airport details by IATA or ICAO code.",
		Parameters: objectSchema(map[string]any{
			"airport_code": map[string]any{
				"type":        "string",
				"description": "IATA or ICAO airport code, e.g. SYD or YSSY",
			},
		}, "airport_code"),
		FallbackField: "airport_code",
	}
}

type airportResponse struct {
	Result struct {
		Response struct {
			Airport struct {
				PluginData struct {
					Details struct {
						Name string `json:"name"`
						Code struct {
							IATA string `json:"iata"`
							ICAO string `json:"icao"`
						} `json:"code"`
						Position struct {
							Latitude  float64 `json:"latitude"`
							Longitude float64 `json:"longitude"`
							Region    struct {
								City string `json:"city"`
							} `json:"region"`
							Country struct {
								Name string `json:"name"`
							} `json:"country"`
						} `json:"position"`
						Timezone struct {
							Name string `json:"name"`
						} `json:"timezone"`
					} `json:"details"`
				} `json:"pluginData"`
			} `json:"airport"`
		} `json:"response"`
	} `json:"result"`
}

// Execute implements Tool.
func (t *AirportTool) Execute(ctx context.Context, args Arguments) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(args.StringOr("airport_code", args.String("code"))))
	if code == "" {
		return "Error: get_airport_details requires an airport code.", nil
	}

	params := url.Values{}
	params.Set("code", strings.ToLower(code))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("airport request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("airport endpoint returned status %d", resp.StatusCode)
	}

	var ar airportResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return "", fmt.Errorf("decode airport response: %w", err)
	}

	details := ar.Result.Response.Airport.PluginData.Details
	if details.Name == "" {
		return fmt.Sprintf("No airport found for code %s.", code), nil
	}

	return fmt.Sprintf("%s (%s/%s) in %s, %s. Timezone %s, position %.4f, %.4f.",
		details.Name, details.Code.IATA, details.Code.ICAO,
		details.Position.Region.City, details.Position.Country.Name,
		details.Timezone.Name, details.Position.Latitude, details.Position.Longitude), nil
}
