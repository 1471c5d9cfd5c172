package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// chatPath builds the wire request for one REST-style chat backend and
// knows how to parse its reply. Mirrors the request/retry/timeout shape
// of the teacher's client_gemini.go CompleteWithSystem, generalized over
// two concrete wire formats instead of one.
type chatPath func(cfg Config, model, prompt string, opts Options) (url string, headers map[string]string, body []byte, parse func([]byte) (string, error), err error)

// restChat is a minimal REST-backed adapter shared by the openai- and
// anthropic-compatible providers (spec §6.3 providers "openai", "azure",
// "local", "anthropic").
type restChat struct {
	cfg        Config
	path       chatPath
	httpClient *http.Client
}

func newRESTChat(cfg Config, path chatPath) Client {
	return &restChat{
		cfg:        cfg,
		path:       path,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (r *restChat) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	model := firstNonEmpty(opts.Model, r.cfg.Model)

	url, headers, body, parse, err := r.path(r.cfg, model, prompt, opts)
	if err != nil {
		return "", err
	}

	retries := opts.Retries
	if retries <= 0 {
		retries = 1
	}

	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * time.Second)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("llm: build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := r.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}
		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("llm: backend returned %d: %s", resp.StatusCode, string(respBody))
		}
		text, err := parse(respBody)
		if err != nil {
			return "", fmt.Errorf("llm: parse response: %w", err)
		}
		return text, nil
	}
	return "", fmt.Errorf("llm: max retries exceeded: %w", lastErr)
}

func openAIChatPathBuilder(cfg Config, model, prompt string, opts Options) (string, map[string]string, []byte, func([]byte) (string, error), error) {
	base := firstNonEmpty(cfg.BaseURL, "https://api.openai.com/v1")
	temp := cfg.Temperature
	if opts.Temperature != 0 {
		temp = opts.Temperature
	}

	reqBody := map[string]any{
		"model": firstNonEmpty(model, "gpt-4o-mini"),
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": temp,
	}
	if opts.MaxTokens > 0 {
		reqBody["max_tokens"] = opts.MaxTokens
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", nil, nil, nil, fmt.Errorf("llm: marshal request: %w", err)
	}

	key := firstNonEmpty(cfg.APIKey, os.Getenv(envKeyFor(cfg.Provider)))
	if key == "" {
		return "", nil, nil, nil, fmt.Errorf("llm: openai-compatible provider requires an api key")
	}

	parse := func(body []byte) (string, error) {
		var out struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
		}
		if err := json.Unmarshal(body, &out); err != nil {
			return "", err
		}
		if len(out.Choices) == 0 {
			return "", fmt.Errorf("no choices returned")
		}
		return out.Choices[0].Message.Content, nil
	}

	return base + "/chat/completions", map[string]string{"Authorization": "Bearer " + key}, data, parse, nil
}

func anthropicMessagesPathBuilder(cfg Config, model, prompt string, opts Options) (string, map[string]string, []byte, func([]byte) (string, error), error) {
	base := firstNonEmpty(cfg.BaseURL, "https://api.anthropic.com/v1")
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	reqBody := map[string]any{
		"model":      firstNonEmpty(model, "claude-3-5-sonnet-latest"),
		"max_tokens": maxTokens,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", nil, nil, nil, fmt.Errorf("llm: marshal request: %w", err)
	}

	key := firstNonEmpty(cfg.APIKey, os.Getenv("ANTHROPIC_API_KEY"))
	if key == "" {
		return "", nil, nil, nil, fmt.Errorf("llm: anthropic provider requires an api key")
	}

	parse := func(body []byte) (string, error) {
		var out struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		}
		if err := json.Unmarshal(body, &out); err != nil {
			return "", err
		}
		if len(out.Content) == 0 {
			return "", fmt.Errorf("no content returned")
		}
		return out.Content[0].Text, nil
	}

	return base + "/messages", map[string]string{"x-api-key": key, "anthropic-version": "2023-06-01"}, data, parse, nil
}
