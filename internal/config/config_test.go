package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test in an empty directory with no API keys set.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "default", cfg.Study.Book)
	assert.Equal(t, 20, cfg.Study.BatchSize)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.False(t, cfg.LLMEnabled())

	_, err = cfg.Provider()
	assert.Error(t, err)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "wordiz.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
log_level: debug
study:
  book: cet4
  batch_size: 10
llm:
  provider: openrouter
  api_key: sk-or-file
  model: meta-llama/llama-3-8b
`), 0o644))
	t.Setenv("WORDIZ_STUDY_BATCH_SIZE", "5")

	cfg, err := Load(file)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "cet4", cfg.Study.Book)
	assert.Equal(t, 5, cfg.Study.BatchSize, "env wins over file")

	lc, err := cfg.Provider()
	require.NoError(t, err)
	assert.Equal(t, "openrouter", lc.Provider)
	assert.Equal(t, "sk-or-file", lc.APIKey)
	assert.Equal(t, "meta-llama/llama-3-8b", lc.Model)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("WORDIZ_STUDY_BOOK=ielts\n"), 0o644))
	// Registered so the value godotenv sets is cleaned up afterwards.
	t.Setenv("WORDIZ_STUDY_BOOK", "")
	os.Unsetenv("WORDIZ_STUDY_BOOK")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "ielts", cfg.Study.Book)
}

func TestLoad_Invalid(t *testing.T) {
	isolate(t)

	t.Setenv("WORDIZ_LOG_LEVEL", "chatty")
	_, err := Load("")
	assert.ErrorContains(t, err, "invalid config")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestLLM_DiscoversKey(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_API_KEY", "sk-openai")

	cfg, err := Load("")
	require.NoError(t, err)
	require.True(t, cfg.LLMEnabled())

	lc, err := cfg.Provider()
	require.NoError(t, err)
	assert.Equal(t, "openai", lc.Provider)
	assert.Equal(t, "sk-openai", lc.APIKey)
}

func TestLLM_ProviderKeyFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("WORDIZ_LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, err := Load("")
	require.NoError(t, err)
	lc, err := cfg.Provider()
	require.NoError(t, err)
	assert.Equal(t, "g-key", lc.APIKey)
}
