package llm

import (
	"context"
	"errors"

	"google.golang.org/genai"
)

type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &Gemini{client: c, model: model}, nil
}

// Close is a no-op; the genai client holds no connection of its own.
func (g *Gemini) Close() error { return nil }

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", errors.New("no response from model")
	}

	text, err := resp.Text()
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", errors.New("empty response from model")
	}
	return text, nil
}
