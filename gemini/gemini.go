package gemini

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

const endpointTemplate = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s"

type part struct {
	Text     string    `json:"text,omitempty"`
	FileData *fileData `json:"file_data,omitempty"`
}

type fileData struct {
	MimeType string `json:"mime_type"`
	FileURI  string `json:"file_uri"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string         `json:"response_mime_type,omitempty"`
	ResponseSchema   map[string]any `json:"response_schema,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *content         `json:"system_instruction,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig,omitempty"`
	Contents          []content        `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text,omitempty"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Client talks to the Gemini generateContent API.
type Client struct {
	apiKey string
	model  string
	http   *http.Client
}

func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey: apiKey,
		model:  model,
		http:   &http.Client{Timeout: 120 * time.Second},
	}
}

func (c *Client) SourceName() string {
	return "Gemini"
}

// GenerateJSON runs one schema-constrained generation and returns the raw
// model text.
func (c *Client) GenerateJSON(ctx context.Context, system, user string, schema llm.Schema) (string, error) {
	reqBody := geminiRequest{
		SystemInstruction: &content{
			Parts: []part{{Text: system}},
		},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   stripUnsupported(schema.Definition),
		},
		Contents: []content{
			{
				Role:  "user",
				Parts: []part{{Text: user}},
			},
		},
	}
	return c.generateContent(ctx, reqBody)
}

// LocateOnImage asks the model a question about an image by URL and returns
// its raw reply.
func (c *Client) LocateOnImage(ctx context.Context, imageURL, prompt string) (string, error) {
	reqBody := geminiRequest{
		Contents: []content{
			{
				Role: "user",
				Parts: []part{
					{FileData: &fileData{MimeType: "image/png", FileURI: imageURL}},
					{Text: prompt},
				},
			},
		},
	}
	return c.generateContent(ctx, reqBody)
}

func (c *Client) generateContent(ctx context.Context, reqBody geminiRequest) (string, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf(endpointTemplate, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var genResp geminiResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	return genResp.Candidates[0].Content.Parts[0].Text, nil
}

// stripUnsupported removes JSON-schema keywords the Gemini response_schema
// dialect rejects, recursively.
func stripUnsupported(schema map[string]any) map[string]any {
	out := make(map[string]any, len(schema))
	for k, v := range schema {
		if k == "additionalProperties" {
			continue
		}
		switch typed := v.(type) {
		case map[string]any:
			out[k] = stripUnsupported(typed)
		case []any:
			cleaned := make([]any, 0, len(typed))
			for _, item := range typed {
				if m, ok := item.(map[string]any); ok {
					cleaned = append(cleaned, stripUnsupported(m))
				} else {
					cleaned = append(cleaned, item)
				}
			}
			out[k] = cleaned
		default:
			out[k] = v
		}
	}
	return out
}
