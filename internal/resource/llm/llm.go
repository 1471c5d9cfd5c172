// Package llm backs the `llm` resource kind (spec §6.4): a single
// operation, generate(prompt, options) -> string, implemented by one of
// several swappable backend adapters selected by `llm.provider` (spec
// §6.3). Mirrors the teacher's core.LLMClient abstraction
// (internal/core/llm_client.go), generalized from the teacher's
// conversation-oriented Complete/CompleteWithSystem pair to Dana's
// single generate(prompt, options) contract.
package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

// Options carries the tunables reason() accepts on its options mapping
// (spec §4.4.3, §6.3): temperature, model override, output cap, and
// attempt count. Zero values mean "use the client's configured default".
// Retries is the total number of backend calls an adapter makes before
// giving up, not the number of extra calls after the first: a value of n
// allows n-1 retries, and values below 1 mean a single call.
type Options struct {
	Temperature float64
	Model       string
	MaxTokens   int
	Retries     int
}

// Client is the minimal interface the reason() primitive and the `llm`
// resource kind call. Every provider adapter below implements it.
type Client interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// Config is the acquisition config for `use("llm.<name>")` and for the
// default system LLM resource built from spec §6.3's `llm.*` keys.
type Config struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	Mock        bool
	Timeout     time.Duration
}

// New selects and constructs the adapter named by cfg.Provider (spec
// §6.3: "openai, anthropic, azure, gemini, bedrock, local, mock").
// DANA_MOCK_LLM set to "true" (any case) or "1" forces the mock adapter
// regardless of cfg.
func New(cfg Config) (Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if strings.EqualFold(os.Getenv("DANA_MOCK_LLM"), "true") || os.Getenv("DANA_MOCK_LLM") == "1" {
		cfg.Mock = true
	}
	if cfg.Mock {
		return newMock(), nil
	}

	switch strings.ToLower(cfg.Provider) {
	case "", "gemini":
		return newGenai(cfg)
	case "openai", "azure", "local":
		return newRESTChat(cfg, openAIChatPathBuilder), nil
	case "anthropic":
		return newRESTChat(cfg, anthropicMessagesPathBuilder), nil
	case "bedrock":
		// Bedrock's signing scheme (SigV4) has no analog among the pack's
		// dependencies; routed through the openai-compatible adapter when a
		// BaseURL pointing at a Bedrock-compatible gateway is supplied,
		// otherwise this is a configuration error caught at acquisition time.
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("llm: bedrock provider requires base_url (no SigV4 signer wired)")
		}
		return newRESTChat(cfg, openAIChatPathBuilder), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func envKeyFor(provider string) string {
	switch strings.ToLower(provider) {
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "azure":
		return "AZURE_OPENAI_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}
