package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/apex/log"

	"vehicle-story-pipeline/llm"
)

const (
	defaultImageModel = "gpt-image-1"
	imageSize         = "1536x1024"

	// Keyless fallback endpoint. Lower quality, but keeps scenes rendered
	// when the primary endpoint rejects a prompt or is unavailable.
	fallbackImageURL = "https://image.pollinations.ai/prompt/%s?width=1536&height=1024&seed=%d&nologo=true"
)

type imageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Size   string `json:"size"`
	N      int    `json:"n"`
}

type imageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// Generate renders one scene image. The seed is folded into the prompt so
// repeated runs of the same scene converge on similar framing; the images
// endpoint has no native seed parameter. A rejected or failed primary call
// falls back to the keyless endpoint before giving up on the scene.
func (c *Client) Generate(ctx context.Context, prompt string, seed int64) ([]byte, error) {
	seeded := fmt.Sprintf("%s (composition variant %d)", prompt, seed%1000)

	data, err := c.generateOnce(ctx, seeded)
	if err == nil {
		return data, nil
	}
	log.WithError(err).Warn("image generation failed, falling back to keyless endpoint")

	data, fallbackErr := c.generateFallback(ctx, simplifyPrompt(prompt), seed)
	if fallbackErr != nil {
		return nil, fmt.Errorf("image generation failed on both endpoints: %w", err)
	}
	return data, nil
}

func (c *Client) generateFallback(ctx context.Context, prompt string, seed int64) ([]byte, error) {
	endpoint := fmt.Sprintf(fallbackImageURL, url.PathEscape(prompt), seed)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	client := &http.Client{Timeout: 2 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d)", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) generateOnce(ctx context.Context, prompt string) ([]byte, error) {
	reqBody := imageRequest{
		Model:  defaultImageModel,
		Prompt: prompt,
		Size:   imageSize,
		N:      1,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	body, err := c.post(ctx, imageEndpoint, "application/json", jsonData)
	if err != nil {
		return nil, err
	}

	var imgResp imageResponse
	if err := json.Unmarshal(body, &imgResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(imgResp.Data) == 0 {
		return nil, fmt.Errorf("no image in response")
	}

	decoded, err := base64.StdEncoding.DecodeString(imgResp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return decoded, nil
}

// simplifyPrompt keeps only the subject sentence so a prompt rejected for
// length or policy still produces a usable fallback image.
func simplifyPrompt(prompt string) string {
	for i, r := range prompt {
		if r == '.' {
			return prompt[:i+1] + " Photorealistic car photo."
		}
	}
	return prompt
}

type speechRequest struct {
	Model  string `json:"model"`
	Input  string `json:"input"`
	Voice  string `json:"voice"`
	Format string `json:"response_format"`
}

// Synthesize renders narration text as MP3 audio.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	reqBody := speechRequest{
		Model:  "gpt-4o-mini-tts",
		Input:  text,
		Voice:  defaultVoice,
		Format: "mp3",
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.post(ctx, speechEndpoint, "application/json", jsonData)
}

type transcriptionResponse struct {
	Words []struct {
		Word  string  `json:"word"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"words"`
}

// Transcribe returns word-level timestamps for narration audio.
func (c *Client) Transcribe(ctx context.Context, audio []byte) ([]llm.Word, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "narration.mp3")
	if err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("failed to write audio: %w", err)
	}
	writer.WriteField("model", "whisper-1")
	writer.WriteField("response_format", "verbose_json")
	writer.WriteField("timestamp_granularities[]", "word")
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", transcriptionEndpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d)", resp.StatusCode)
	}

	var tr transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	words := make([]llm.Word, 0, len(tr.Words))
	for _, w := range tr.Words {
		words = append(words, llm.Word{Text: w.Word, Start: w.Start, End: w.End})
	}
	return words, nil
}
