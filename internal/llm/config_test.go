package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var llmEnvVars = []string{
	"FOCUSFLOW_LLM_PROVIDER", "FOCUSFLOW_ANTHROPIC_API_KEY", "FOCUSFLOW_OPENAI_API_KEY",
	"FOCUSFLOW_GEMINI_API_KEY", "FOCUSFLOW_OPENROUTER_API_KEY",
	"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
}

func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, k := range llmEnvVars {
		t.Setenv(k, "")
	}
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	clearLLMEnv(t)

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfigFromEnv_Overrides(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("FOCUSFLOW_LLM_PROVIDER", "openai")
	t.Setenv("FOCUSFLOW_OPENAI_API_KEY", "sk-test")
	t.Setenv("FOCUSFLOW_OPENAI_MODEL", "gpt-4o")
	t.Setenv("FOCUSFLOW_LLM_RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("FOCUSFLOW_LLM_TIMEOUT", "5s")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.NoError(t, cfg.Validate())
}

func TestConfigFromEnv_BadDuration(t *testing.T) {
	clearLLMEnv(t)
	t.Setenv("FOCUSFLOW_LLM_TIMEOUT", "soon")

	_, err := ConfigFromEnv()
	assert.Error(t, err)
}

func TestDiscoverConfig_Priority(t *testing.T) {
	clearLLMEnv(t)
	if _, ok := DiscoverConfig(); ok {
		t.Fatal("expected nothing discovered with no keys set")
	}

	t.Setenv("ANTHROPIC_API_KEY", "a")
	t.Setenv("OPENAI_API_KEY", "o")
	cfg, ok := DiscoverConfig()
	require.True(t, ok)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "o", cfg.OpenAI.APIKey)

	t.Setenv("GEMINI_API_KEY", "g")
	cfg, _ = DiscoverConfig()
	assert.Equal(t, ProviderGemini, cfg.Provider)
}

func TestResolve(t *testing.T) {
	clearLLMEnv(t)
	_, err := Resolve()
	assert.EqualError(t, err, "FOCUSFLOW_ANTHROPIC_API_KEY is required for the anthropic provider")

	t.Setenv("OPENROUTER_API_KEY", "r")
	t.Setenv("FOCUSFLOW_LLM_RETRY_MAX_ATTEMPTS", "2")
	cfg, err := Resolve()
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenRouter, cfg.Provider)
	assert.Equal(t, 2, cfg.Retry.MaxAttempts)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"mock needs nothing", Config{Provider: ProviderMock}, false},
		{"gemini with key", Config{Provider: ProviderGemini, Gemini: GeminiConfig{APIKey: "g"}}, false},
		{"gemini without key", Config{Provider: ProviderGemini}, true},
		{"openrouter without key", Config{Provider: ProviderOpenRouter}, true},
		{"unknown", Config{Provider: "bard"}, true},
	}
	for _, tt := range tests {
		if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}
