package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvOverrides_LLM(t *testing.T) {
	t.Run("DANA_MOCK_LLM true forces mock", func(t *testing.T) {
		t.Setenv("DANA_MOCK_LLM", "true")
		cfg := &Config{}
		cfg.applyEnvOverrides()
		assert.True(t, cfg.LLM.Mock)
	})

	t.Run("DANA_MOCK_LLM unset leaves mock as configured", func(t *testing.T) {
		t.Setenv("DANA_MOCK_LLM", "")
		cfg := &Config{LLM: LLMConfig{Mock: true}}
		cfg.applyEnvOverrides()
		assert.True(t, cfg.LLM.Mock)
	})

	t.Run("ANTHROPIC_API_KEY sets provider and key", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "ant-key")
		t.Setenv("OPENAI_API_KEY", "")
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("GOOGLE_API_KEY", "")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.Equal(t, "ant-key", cfg.LLM.APIKey)
		assert.Equal(t, "anthropic", cfg.LLM.Provider)
	})

	t.Run("precedence: ANTHROPIC wins over OPENAI", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "ant-key")
		t.Setenv("OPENAI_API_KEY", "oa-key")
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("GOOGLE_API_KEY", "")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.Equal(t, "ant-key", cfg.LLM.APIKey)
		assert.Equal(t, "anthropic", cfg.LLM.Provider)
	})

	t.Run("GOOGLE_API_KEY falls back for gemini when GEMINI_API_KEY unset", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")
		t.Setenv("OPENAI_API_KEY", "")
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("GOOGLE_API_KEY", "google-key")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.Equal(t, "google-key", cfg.LLM.APIKey)
		assert.Equal(t, "gemini", cfg.LLM.Provider)
	})
}

func TestEnvOverrides_DANAPATH(t *testing.T) {
	sep := string(os.PathListSeparator)
	t.Setenv("DANAPATH", "/a/modules"+sep+"/b/modules")

	cfg := &Config{SearchPaths: []string{"/base"}}
	cfg.applyEnvOverrides()

	assert.Equal(t, []string{"/base", "/a/modules", "/b/modules"}, cfg.SearchPaths)
}
