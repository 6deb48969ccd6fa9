package config

import "os"

// AIConfig holds configuration for the judge and speech renderer
type AIConfig struct {
	APIKey    string `json:"-"` // Never serialize
	BaseURL   string `json:"baseUrl"`
	ChatModel string `json:"chatModel"`
	TTSModel  string `json:"ttsModel"`
	Voice     string `json:"voice"`
	TimeoutMS int    `json:"timeoutMs"`
}

// DefaultAIConfig returns the default AI configuration
func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		APIKey:    os.Getenv("OPENAI_API_KEY"),
		BaseURL:   getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		ChatModel: getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
		TTSModel:  getEnv("OPENAI_TTS_MODEL", "tts-1"),
		Voice:     getEnv("OPENAI_TTS_VOICE", "alloy"),
		TimeoutMS: 15000,
	}
}

// IsEnabled returns true if the AI API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}
