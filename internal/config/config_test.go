package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-privacy-redactor/internal/redactor"
	"github.com/nerdneilsfield/go-privacy-redactor/pkg/entity"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig("", filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, redactor.StrategyMedical, cfg.Strategy)
	assert.False(t, cfg.EnableLLM)
	assert.Equal(t, "ollama", cfg.LLM.Backend)
	assert.Equal(t, "qwen2:7b", cfg.LLM.Model)
	assert.Equal(t, "", cfg.LLM.URL)
	assert.Equal(t, 60, cfg.LLM.Timeout)
	assert.Equal(t, 10, cfg.LogMaxSizeMB)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "redactor.yaml", `
strategy: hybrid
enable_llm: true
llm:
  backend: openai
  model: gpt-4o-mini
  url: ""
  timeout: 15
save_entities: true
`)

	cfg, err := LoadConfig(path, filepath.Join(dir, "none.env"))
	require.NoError(t, err)

	assert.Equal(t, "hybrid", cfg.Strategy)
	assert.True(t, cfg.EnableLLM)
	assert.Equal(t, "openai", cfg.LLM.Backend)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "", cfg.LLM.URL)
	assert.True(t, cfg.SaveEntities)

	opts := cfg.RedactorOptions(nil)
	assert.Equal(t, 15*time.Second, opts.LLM.Timeout)
	assert.Equal(t, "hybrid", opts.Strategy)
	assert.Nil(t, opts.Placeholders)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "redactor.yaml", "strategy: regex\n")

	t.Setenv("REDACTOR_STRATEGY", "domain")
	t.Setenv("REDACTOR_LLM_MODEL", "qwen2.5:14b")

	cfg, err := LoadConfig(path, filepath.Join(dir, "none.env"))
	require.NoError(t, err)
	assert.Equal(t, "domain", cfg.Strategy)
	assert.Equal(t, "qwen2.5:14b", cfg.LLM.Model)
}

func TestLoadConfigBackendWithoutURL(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("REDACTOR_LLM_BACKEND", "openai")

	cfg, err := LoadConfig("", filepath.Join(t.TempDir(), "none.env"))
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.LLM.Backend)

	opts := cfg.RedactorOptions(nil)
	assert.Equal(t, "openai", opts.LLM.Backend)
	assert.Empty(t, opts.LLM.URL)
}

func TestLoadConfigDotEnv(t *testing.T) {
	const key = "REDACTOR_LLM_API_KEY"
	if _, exists := os.LookupEnv(key); exists {
		t.Skipf("%s already set", key)
	}
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", key+"=sk-from-dotenv\n")
	path := writeFile(t, dir, "redactor.yaml", "llm:\n  backend: compatible\n")

	cfg, err := LoadConfig(path, envFile)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-dotenv", cfg.LLM.APIKey)
	assert.Equal(t, "compatible", cfg.LLM.Backend)
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	none := filepath.Join(dir, "none.env")

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"), none)
	assert.Error(t, err)

	bad := writeFile(t, dir, "bad.yaml", "llm:\n  backend: deepl\n")
	_, err = LoadConfig(bad, none)
	assert.ErrorContains(t, err, "llm.backend")

	neg := writeFile(t, dir, "neg.yaml", "llm:\n  timeout: -1\n")
	_, err = LoadConfig(neg, none)
	assert.ErrorContains(t, err, "timeout")

	empty := writeFile(t, dir, "empty.yaml", "strategy: \"  \"\n")
	_, err = LoadConfig(empty, none)
	assert.ErrorContains(t, err, "strategy")
}

func TestLoadLexicon(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "lexicon.toml", `
vocabulary = ["林可霉素", "PICC"]

[placeholders]
NAME = "某某"
PHONE = "[电话]"
`)

	lex, err := LoadLexicon(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"林可霉素", "PICC"}, lex.Vocabulary)
	assert.Equal(t, entity.Placeholders{
		entity.KindName:  "某某",
		entity.KindPhone: "[电话]",
	}, lex.KindPlaceholders())

	cfg := &Config{Strategy: "medical", LLM: LLMConfig{Backend: "ollama"}}
	opts := cfg.RedactorOptions(lex)
	assert.Equal(t, []string{"林可霉素", "PICC"}, opts.Vocabulary)
	assert.Equal(t, "某某", opts.Placeholders[entity.KindName])
}

func TestLoadLexiconErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown kind", "[placeholders]\nNICKNAME = \"x\"\nPHONE = \"y\"\n", "unknown entity kinds: NICKNAME"},
		{"empty placeholder", "[placeholders]\nPHONE = \"\"\n", "placeholder for PHONE is empty"},
		{"empty term", "vocabulary = [\"a\", \" \"]\n", "vocabulary entry 1 is empty"},
		{"unknown key", "vocab = [\"a\"]\n", "unknown keys vocab"},
		{"syntax", "vocabulary = [\n", "failed to load lexicon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.name+".toml", tt.content)
			_, err := LoadLexicon(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := LoadLexicon(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}
