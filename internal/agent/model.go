// Package agent talks to the language model service.
package agent

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Model is the boundary to the external model service: one prompt in, one
// raw text response out. The response is free text or a JSON command list;
// interpreting it is the caller's job.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Gemini implements Model over the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini-backed model client.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-pro"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Generate sends one prompt and returns the response text.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty model response")
	}
	return text, nil
}

var _ Model = (*Gemini)(nil)
