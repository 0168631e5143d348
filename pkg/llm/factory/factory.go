package factory

import (
	"fmt"

	"aided-be/pkg/llm"
	"aided-be/pkg/llm/ollama"
	"aided-be/pkg/llm/openai"
)

func NewLLMProvider(providerType, modelName, apiKey, baseURL string) (llm.Provider, error) {
	switch providerType {
	case "openai":
		if apiKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		if modelName == "" {
			modelName = "gpt-4o-mini" // Default
		}
		return openai.NewOpenAIProvider(apiKey, modelName), nil
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
