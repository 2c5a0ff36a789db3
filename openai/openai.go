package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"vehicle-story-pipeline/llm"
)

const (
	chatEndpoint          = "https://api.openai.com/v1/chat/completions"
	imageEndpoint         = "https://api.openai.com/v1/images/generations"
	speechEndpoint        = "https://api.openai.com/v1/audio/speech"
	transcriptionEndpoint = "https://api.openai.com/v1/audio/transcriptions"
)

const defaultVoice = "onyx"

// Client talks to the OpenAI API. It implements every model capability the
// pipeline needs: structured generation, vision, image rendering, speech and
// word-level transcription.
type Client struct {
	apiKey string
	model  string
	client *http.Client
}

// NewClient creates an OpenAI client for the given model
func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

// SourceName identifies this provider in saved runs
func (c *Client) SourceName() string {
	return "ChatGPT"
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []message      `json:"messages"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type imageContent struct {
	Type     string   `json:"type"`
	ImageURL imageURL `json:"image_url"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content any `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateJSON runs one schema-constrained chat completion and returns the
// raw model text.
func (c *Client) GenerateJSON(ctx context.Context, system, user string, schema llm.Schema) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFormat: map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   schema.Name,
				"schema": schema.Definition,
			},
		},
	}
	return c.chat(ctx, reqBody)
}

// LocateOnImage asks the vision model a question about a rendered image and
// returns its raw reply.
func (c *Client) LocateOnImage(ctx context.Context, renderedImageURL, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []message{
			{
				Role: "user",
				Content: []any{
					imageContent{Type: "image_url", ImageURL: imageURL{URL: renderedImageURL}},
					textContent{Type: "text", Text: prompt},
				},
			},
		},
	}
	return c.chat(ctx, reqBody)
}

func (c *Client) chat(ctx context.Context, reqBody chatRequest) (string, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	body, err := c.post(ctx, chatEndpoint, "application/json", jsonData)
	if err != nil {
		return "", err
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	content := chatResp.Choices[0].Message.Content
	if contentStr, ok := content.(string); ok {
		return contentStr, nil
	}
	contentJSON, err := json.Marshal(content)
	if err != nil {
		return "", fmt.Errorf("failed to marshal content: %w", err)
	}
	return string(contentJSON), nil
}

func (c *Client) post(ctx context.Context, endpoint, contentType string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}
