// Package llm declares the external capability contracts the pipeline
// depends on. Each collaborator (language model, vision model, web search,
// image generation, speech synthesis, transcription) is abstracted to one
// small interface; wire formats live in the provider packages.
package llm

import "context"

// Schema describes the structured output a language model call must return.
// Definition is a JSON-schema object passed through to the provider.
type Schema struct {
	Name       string
	Definition map[string]any
}

// Client abstracts a language model with structured output.
// Implementations must be concurrency-safe: the pipeline fans out one call
// per scene.
type Client interface {
	// GenerateJSON sends a system and user prompt with a structured output
	// schema and returns the raw JSON text of the model's reply. Malformed
	// provider output surfaces as an error.
	GenerateJSON(ctx context.Context, system, user string, schema Schema) (string, error)
	// SourceName returns a short provider label for logs and metrics.
	SourceName() string
}

// Vision abstracts a vision-capable model used to locate labeled parts on a
// generated image. The reply is free-form text expected to contain one JSON
// object; callers parse it tolerantly.
type Vision interface {
	LocateOnImage(ctx context.Context, imageURL, prompt string) (string, error)
}

// SearchResult is a short answer plus result snippets from a web search.
type SearchResult struct {
	Answer   string
	Snippets []string
}

// Searcher abstracts a web search capability.
type Searcher interface {
	Search(ctx context.Context, query string) (*SearchResult, error)
}

// ImageGenerator abstracts an image generation capability with a primary and
// a degraded fallback mode. Implementations fall back internally; callers
// only see total failure.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string, seed int64) ([]byte, error)
}

// Speech abstracts a text-to-speech capability returning raw audio bytes.
type Speech interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Word is one transcribed word with start/end timestamps in seconds.
type Word struct {
	Text  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Transcriber abstracts a transcription capability with word-level timestamps.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) ([]Word, error)
}
