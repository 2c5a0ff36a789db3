// Package ratings implements clients for the public NHTSA crash-safety and
// EPA fuel-economy rating services.
package ratings

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// NHTSAClient queries the NHTSA SafetyRatings API.
type NHTSAClient struct {
	baseURL string
	http    *http.Client
}

// NewNHTSAClient creates a crash-safety rating client
func NewNHTSAClient(baseURL string) *NHTSAClient {
	return &NHTSAClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type nhtsaListResponse struct {
	Results []struct {
		VehicleID int `json:"VehicleId"`
	} `json:"Results"`
}

type nhtsaRatingResponse struct {
	Results []struct {
		OverallRating string `json:"OverallRating"`
	} `json:"Results"`
}

// OverallStars returns the overall crash rating (1-5 stars) for a
// year/make/model. Vehicles the service does not know return an error.
func (c *NHTSAClient) OverallStars(ctx context.Context, year int, make, model string) (int, error) {
	listURL := fmt.Sprintf("%s/SafetyRatings/modelyear/%d/make/%s/model/%s?format=json",
		c.baseURL, year, url.PathEscape(make), url.PathEscape(model))

	var list nhtsaListResponse
	if err := c.getJSON(ctx, listURL, &list); err != nil {
		return 0, err
	}
	if len(list.Results) == 0 {
		return 0, fmt.Errorf("no safety rating for %d %s %s", year, make, model)
	}

	ratingURL := fmt.Sprintf("%s/SafetyRatings/VehicleId/%d?format=json", c.baseURL, list.Results[0].VehicleID)
	var rating nhtsaRatingResponse
	if err := c.getJSON(ctx, ratingURL, &rating); err != nil {
		return 0, err
	}
	if len(rating.Results) == 0 {
		return 0, fmt.Errorf("empty rating for vehicle %d", list.Results[0].VehicleID)
	}

	stars, err := strconv.Atoi(rating.Results[0].OverallRating)
	if err != nil {
		return 0, fmt.Errorf("vehicle not rated: %q", rating.Results[0].OverallRating)
	}
	if stars < 1 || stars > 5 {
		return 0, fmt.Errorf("rating %d out of range", stars)
	}
	return stars, nil
}

func (c *NHTSAClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
