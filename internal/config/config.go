package config

import "os"

// Config holds service-level configuration
type Config struct {
	MongoURI     string
	RedisAddr    string
	HTTPPort     string
	ExtractorURL string
}

// Load reads configuration from the environment with local defaults.
func Load() *Config {
	return &Config{
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPPort:     getEnv("HTTP_PORT", "8080"),
		ExtractorURL: getEnv("EXTRACTOR_URL", "http://localhost:8090"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
