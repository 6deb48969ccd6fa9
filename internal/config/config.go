package config

import (
	"os"
	"strconv"
)

// Config holds server configuration loaded from the environment
type Config struct {
	RedisAddr   string
	MongoURI    string
	MongoDB     string
	Port        string
	TurnSeconds int
	MaxPlayers  int
	AI          *AIConfig
}

// Load reads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DB", "questionsbattle"),
		Port:        getEnv("PORT", "8080"),
		TurnSeconds: getEnvInt("TURN_SECONDS", 10),
		MaxPlayers:  getEnvInt("MAX_PLAYERS", 5),
		AI:          DefaultAIConfig(),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
	}
	return defaultVal
}
