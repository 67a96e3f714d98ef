package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("SW_TEST_HOST", "db.internal")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"env set", "host: ${SW_TEST_HOST:localhost}", "host: db.internal"},
		{"default used", "port: ${SW_TEST_UNSET_PORT:5432}", "port: 5432"},
		{"empty default", "password: ${SW_TEST_UNSET_PW:}", "password: "},
		{"undefined kept", "key: ${SW_TEST_UNSET_KEY}", "key: ${SW_TEST_UNSET_KEY}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, expandEnv(tt.in))
		})
	}
}

func TestLoadFrom_DefaultsAndOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", `
app:
  name: weaver
session:
  store: redis
llm:
  default_provider: openai
  providers:
    openai:
      model: ${SW_TEST_MODEL:gpt-4o-mini}
`)
	writeConfig(t, dir, "config.test.yaml", `
session:
  history_limit: 3
`)
	t.Setenv("APP_ENV", "test")
	t.Setenv("SW_TEST_MODEL", "gpt-test")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "weaver", cfg.App.Name)
	assert.Equal(t, "redis", cfg.Session.Store)
	assert.Equal(t, 3, cfg.Session.HistoryLimit)
	assert.Equal(t, 5, cfg.Session.FreshSessionMaxMessages)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "gpt-test", cfg.LLM.Providers["openai"].Model)
	assert.InDelta(t, 0.9, cfg.LLM.Temperatures.Slide, 1e-6)
	assert.InDelta(t, 0.85, cfg.LLM.Temperatures.Draft, 1e-6)
	assert.Equal(t, "narration_styles", cfg.Vector.Milvus.StyleCollection)
}

func TestLoadFrom_MissingBaseFile(t *testing.T) {
	_, err := LoadFrom(t.TempDir())
	require.Error(t, err)
}
