package llm

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"
)

// genaiClient is the default `llm` adapter, backing Gemini via the
// official SDK rather than the teacher's hand-rolled HTTP client
// (internal/perception/client_gemini.go) — the pack carries the real SDK
// dependency, so there is no reason to re-implement its wire format.
type genaiClient struct {
	client *genai.Client
	model  string
	cfg    Config
}

func newGenai(cfg Config) (Client, error) {
	apiKey := firstNonEmpty(cfg.APIKey, os.Getenv("GEMINI_API_KEY"), os.Getenv("GOOGLE_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("llm: gemini provider requires an api key (config api_key or GEMINI_API_KEY)")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: gemini client: %w", err)
	}

	return &genaiClient{
		client: client,
		model:  firstNonEmpty(cfg.Model, "gemini-2.0-flash"),
		cfg:    cfg,
	}, nil
}

func (g *genaiClient) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	model := firstNonEmpty(opts.Model, g.model)

	temp := g.cfg.Temperature
	if opts.Temperature != 0 {
		temp = opts.Temperature
	}
	t := float32(temp)

	genCfg := &genai.GenerateContentConfig{Temperature: &t}
	if opts.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(opts.MaxTokens)
	}

	retries := opts.Retries
	if retries <= 0 {
		retries = 1
	}

	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		result, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), genCfg)
		if err != nil {
			lastErr = err
			continue
		}
		return result.Text(), nil
	}
	return "", fmt.Errorf("llm: gemini generate failed after %d attempt(s): %w", retries, lastErr)
}
