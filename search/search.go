// Package search implements web lookup against the Brave Search API.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"vehicle-story-pipeline/llm"
)

const searchEndpoint = "https://api.search.brave.com/res/v1/web/search"

const maxSnippets = 8

// Client queries the Brave web search API.
type Client struct {
	apiKey string
	http   *http.Client
}

// NewClient creates a search client
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		http:   &http.Client{Timeout: 15 * time.Second},
	}
}

type braveResponse struct {
	Infobox struct {
		LongDesc string `json:"long_desc"`
	} `json:"infobox"`
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"results"`
	} `json:"web"`
}

// Search runs one web query and returns the answer box plus result snippets.
func (c *Client) Search(ctx context.Context, query string) (*llm.SearchResult, error) {
	endpoint := searchEndpoint + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed braveResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	result := &llm.SearchResult{Answer: parsed.Infobox.LongDesc}
	for i, r := range parsed.Web.Results {
		if i == maxSnippets {
			break
		}
		snippet := r.Title
		if r.Description != "" {
			snippet += ": " + r.Description
		}
		result.Snippets = append(result.Snippets, snippet)
	}
	return result, nil
}
