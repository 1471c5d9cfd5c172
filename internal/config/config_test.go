package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "", cfg.LLM.Provider)
	assert.False(t, cfg.LLM.Mock)
	assert.NotNil(t, cfg.Resources)
	assert.NotNil(t, cfg.Env)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("DANA_MOCK_LLM", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "", cfg.LLM.Provider)
}

func TestLoad_SaveRoundTrip(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	path := filepath.Join(t.TempDir(), "dana.yaml")
	cfg := DefaultConfig()
	cfg.LLM.Provider = "openai"
	cfg.LLM.Model = "gpt-4o-mini"
	cfg.SearchPaths = []string{"/opt/dana/modules"}

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "openai", loaded.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", loaded.LLM.Model)
	assert.Equal(t, []string{"/opt/dana/modules"}, loaded.SearchPaths)
}

func TestLoad_ParsesResourcesAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dana.yaml")
	yamlDoc := `
resources:
  mcp:
    filesystem:
      command: "mcp-fs-server"
      timeout_ms: 5000
env:
  deployment: "staging"
  retries: 3
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	rc := cfg.ResourceConfig("mcp", "filesystem")
	assert.Equal(t, "mcp-fs-server", rc["command"].String())
	assert.Equal(t, "5000", rc["timeout_ms"].String())

	env := cfg.EnvBindings()
	assert.Equal(t, "staging", env["deployment"].String())
	assert.Equal(t, "3", env["retries"].String())
}

func TestResourceConfig_NoOverride(t *testing.T) {
	cfg := DefaultConfig()
	rc := cfg.ResourceConfig("a2a", "unspecified")
	assert.Empty(t, rc)
}
