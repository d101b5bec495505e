package llm

import (
	"context"
	"errors"
	"os"
)

// Provider is the generative-text boundary: one prompt in, one reply out.
// The reply is expected to be raw JSON or JSON wrapped in a fenced block;
// interpreting it is the caller's concern.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Close() error
}

// NewFromEnv builds the provider selected by LLM_PROVIDER ("gemini" by
// default, "vertex" for the Vertex AI backend).
func NewFromEnv(ctx context.Context) (Provider, error) {
	switch os.Getenv("LLM_PROVIDER") {
	case "", "gemini":
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			return nil, errors.New("GEMINI_API_KEY environment variable is not set")
		}
		return NewGemini(ctx, apiKey, os.Getenv("GEMINI_MODEL"))
	case "vertex":
		projectID := os.Getenv("VERTEX_PROJECT_ID")
		if projectID == "" {
			return nil, errors.New("VERTEX_PROJECT_ID environment variable is not set")
		}
		location := os.Getenv("VERTEX_LOCATION")
		if location == "" {
			location = "us-central1"
		}
		return NewVertexGemini(ctx, projectID, location, os.Getenv("GEMINI_MODEL"))
	default:
		return nil, errors.New("unknown LLM_PROVIDER: " + os.Getenv("LLM_PROVIDER"))
	}
}
