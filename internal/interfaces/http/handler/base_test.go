package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyboard-ai-api/internal/config"
)

func testLLMConfig() *config.Config {
	return &config.Config{
		LLM: config.LLMConfig{
			DefaultProvider: "openai",
			Providers: map[string]config.ProviderConfig{
				"openai":   {Model: "gpt-4o"},
				"deepseek": {Model: "deepseek-chat"},
			},
		},
	}
}

func TestResolveProviderModel(t *testing.T) {
	cfg := testLLMConfig()

	t.Run("默认提供商与模型", func(t *testing.T) {
		provider, model, err := resolveProviderModel(cfg, "", "")
		require.NoError(t, err)
		assert.Equal(t, "openai", provider)
		assert.Equal(t, "gpt-4o", model)
	})

	t.Run("显式指定", func(t *testing.T) {
		provider, model, err := resolveProviderModel(cfg, "deepseek", "deepseek-reasoner")
		require.NoError(t, err)
		assert.Equal(t, "deepseek", provider)
		assert.Equal(t, "deepseek-reasoner", model)
	})

	t.Run("未知提供商", func(t *testing.T) {
		_, _, err := resolveProviderModel(cfg, "missing", "")
		require.Error(t, err)
	})

	t.Run("空配置", func(t *testing.T) {
		_, _, err := resolveProviderModel(nil, "openai", "")
		require.Error(t, err)
	})

	t.Run("无默认提供商", func(t *testing.T) {
		empty := &config.Config{}
		_, _, err := resolveProviderModel(empty, "", "")
		require.Error(t, err)
	})
}
