package ai

import (
	"fmt"

	"nasty-client/internal/config"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Provider interface {
	Generate(messages []Message) (string, error)
}

// DefaultProvider builds the configured client wrapped with retry and
// adaptive call pacing.
func DefaultProvider(cfg *config.Config) Provider {
	switch cfg.AIProvider {
	case "pollinations":
		return WithRetry(NewPollinationsProvider())
	case "openai", "":
		return WithRetry(NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.LLMModel))
	default:
		panic(fmt.Sprintf("unsupported AI_PROVIDER: %s", cfg.AIProvider))
	}
}
