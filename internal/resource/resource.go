// Package resource implements interp.ResourceFactory (spec §4.5.3:
// use("kind.name", config) dispatch), routing each resource kind to its
// own subpackage constructor: llm, mcp, a2a, human, knowledge.
package resource

import (
	"fmt"
	"time"

	"github.com/dana-lang/dana/internal/resource/a2a"
	"github.com/dana-lang/dana/internal/resource/human"
	"github.com/dana-lang/dana/internal/resource/knowledge"
	"github.com/dana-lang/dana/internal/resource/llm"
	"github.com/dana-lang/dana/internal/resource/mcp"
	"github.com/dana-lang/dana/internal/values"
)

// Factory implements interp.ResourceFactory. DefaultLLM is the base llm
// Config for use("llm.<name>", ...): each field the use() call does not
// pass (e.g. "mock") keeps its DefaultLLM value. Other kinds do not read it.
type Factory struct {
	DefaultLLM llm.Config
}

func New(defaultLLM llm.Config) *Factory {
	return &Factory{DefaultLLM: defaultLLM}
}

// Create builds a resource handle for `use(kind.name, config)`. kind is
// the acquisition's dotted prefix (e.g. "llm", "mcp", "a2a", "human",
// "knowledge"); config carries whatever keyword arguments the use()
// call passed.
func (f *Factory) Create(kind, name string, config map[string]values.Value) (*values.Resource, error) {
	switch kind {
	case "llm":
		cfg := f.DefaultLLM
		cfg.Provider = stringOr(config, "provider", cfg.Provider)
		cfg.Model = stringOr(config, "model", cfg.Model)
		cfg.APIKey = stringOr(config, "api_key", cfg.APIKey)
		cfg.BaseURL = stringOr(config, "base_url", cfg.BaseURL)
		cfg.Temperature = floatOr(config, "temperature", cfg.Temperature)
		cfg.Mock = boolOr(config, "mock", cfg.Mock)
		client, err := llm.New(cfg)
		if err != nil {
			return nil, err
		}
		return llm.NewResource(name, client), nil

	case "mcp":
		cfg := mcp.Config{
			Command: stringOr(config, "command", ""),
			URL:     stringOr(config, "url", ""),
		}
		return mcp.NewResource(name, cfg)

	case "a2a":
		cfg := a2a.Config{
			BaseURL:   stringOr(config, "base_url", ""),
			PollEvery: durationOr(config, "poll_every_ms", 500*time.Millisecond),
			PollFor:   durationOr(config, "poll_for_ms", 2*time.Minute),
		}
		return a2a.NewResource(name, cfg)

	case "human":
		return human.NewResource(name, human.Config{})

	case "knowledge":
		var paths []string
		if v, ok := config["paths"]; ok {
			if list, ok := v.(*values.List); ok {
				for _, e := range list.Elems {
					if s, ok := e.(values.Str); ok {
						paths = append(paths, string(s))
					}
				}
			}
		}
		cfg := knowledge.Config{
			Paths: paths,
			Facts: stringOr(config, "facts", ""),
		}
		return knowledge.NewResource(name, cfg)

	default:
		return nil, fmt.Errorf("resource: unknown kind %q", kind)
	}
}

func stringOr(config map[string]values.Value, key, def string) string {
	if v, ok := config[key]; ok {
		if s, ok := v.(values.Str); ok {
			return string(s)
		}
	}
	return def
}

func floatOr(config map[string]values.Value, key string, def float64) float64 {
	if v, ok := config[key]; ok {
		switch n := v.(type) {
		case values.Float:
			return float64(n)
		case values.Int:
			return float64(n)
		}
	}
	return def
}

func boolOr(config map[string]values.Value, key string, def bool) bool {
	if v, ok := config[key]; ok {
		if b, ok := v.(values.Bool); ok {
			return bool(b)
		}
	}
	return def
}

func durationOr(config map[string]values.Value, key string, def time.Duration) time.Duration {
	if v, ok := config[key]; ok {
		switch n := v.(type) {
		case values.Int:
			return time.Duration(n) * time.Millisecond
		case values.Float:
			return time.Duration(float64(n) * float64(time.Millisecond))
		}
	}
	return def
}
