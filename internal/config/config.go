package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config carries the server-level settings. Game-rule constants live in
// the game package's tuning tables.
type Config struct {
	Port               string
	PublicURL          string
	CORSAllowedOrigins string
}

// Load reads configuration from the environment, with a best-effort
// .env file for local development.
func Load() *Config {
	_ = godotenv.Load() // .env is optional

	return &Config{
		Port:               getEnv("PORT", "4000"),
		PublicURL:          getEnv("PUBLIC_URL", "http://localhost:4000"),
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
