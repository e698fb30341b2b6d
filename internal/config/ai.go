package config

import "os"

// AIConfig holds configuration for the OpenRouter completion service
type AIConfig struct {
	APIKey    string `json:"-"` // Never serialize
	BaseURL   string `json:"baseUrl"`
	Model     string `json:"model"`
	TimeoutMS int    `json:"timeoutMs"`
}

// DefaultAIConfig returns the default completion-service configuration
func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		APIKey:    os.Getenv("OPENROUTER_API_KEY"),
		BaseURL:   getEnv("OPENROUTER_URL", "https://openrouter.ai/api/v1"),
		Model:     getEnv("OPENROUTER_MODEL", "openai/gpt-4o-mini"),
		TimeoutMS: 120000, // streaming replies can run long
	}
}

// IsEnabled returns true if the completion API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// CompletionsEndpoint returns the chat completions endpoint
func (c *AIConfig) CompletionsEndpoint() string {
	return c.BaseURL + "/chat/completions"
}
