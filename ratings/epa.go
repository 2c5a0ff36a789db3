package ratings

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// EPAClient queries the fueleconomy.gov vehicle API.
type EPAClient struct {
	baseURL string
	http    *http.Client
}

// NewEPAClient creates a fuel-efficiency rating client
func NewEPAClient(baseURL string) *EPAClient {
	return &EPAClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type epaMenuResponse struct {
	MenuItem []struct {
		Value string `json:"value"`
	} `json:"menuItem"`
}

type epaVehicleResponse struct {
	SmartWay string `json:"smartWay"`
}

// SmartwayCertified reports whether the year/make/model carries the EPA
// SmartWay certification.
func (c *EPAClient) SmartwayCertified(ctx context.Context, year int, make, model string) (bool, error) {
	optionsURL := fmt.Sprintf("%s/vehicle/menu/options?year=%d&make=%s&model=%s",
		c.baseURL, year, url.QueryEscape(make), url.QueryEscape(model))

	var menu epaMenuResponse
	if err := c.getJSON(ctx, optionsURL, &menu); err != nil {
		return false, err
	}
	if len(menu.MenuItem) == 0 {
		return false, fmt.Errorf("no efficiency record for %d %s %s", year, make, model)
	}

	vehicleURL := fmt.Sprintf("%s/vehicle/%s", c.baseURL, url.PathEscape(menu.MenuItem[0].Value))
	var v epaVehicleResponse
	if err := c.getJSON(ctx, vehicleURL, &v); err != nil {
		return false, err
	}

	switch strings.ToLower(v.SmartWay) {
	case "yes", "elite", "true":
		return true, nil
	}
	return false, nil
}

func (c *EPAClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

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
