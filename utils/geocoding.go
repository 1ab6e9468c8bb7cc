package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"urban-auto-server/config"
)

// ReverseGeocodeResult mirrors the subset of the Google Maps geocode response
// the app renders.
type ReverseGeocodeResult struct {
	Status  string          `json:"status"`
	Results json.RawMessage `json:"results"`
}

var geocodeClient = &http.Client{Timeout: 15 * time.Second}

// ReverseGeocode resolves lat/lng to address data via the Google Maps
// geocoding API. The raw results array is passed through to the client.
func ReverseGeocode(lat, lng string) (*ReverseGeocodeResult, error) {
	apiKey := config.AppConfig.Maps.APIKey
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_MAPS_API_KEY is not configured")
	}

	apiURL := fmt.Sprintf(
		"https://maps.googleapis.com/maps/api/geocode/json?latlng=%s,%s&key=%s",
		url.QueryEscape(lat), url.QueryEscape(lng), url.QueryEscape(apiKey),
	)

	resp, err := geocodeClient.Get(apiURL)
	if err != nil {
		return nil, fmt.Errorf("failed to make geocoding request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding service returned status: %d", resp.StatusCode)
	}

	var result ReverseGeocodeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode geocoding response: %w", err)
	}

	return &result, nil
}
