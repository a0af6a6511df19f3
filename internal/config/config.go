// /internal/config/config.go
package config

import (
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required"`
	StoragePath  string `env:"STORAGE_PATH" envDefault:"datastore.json"`

	AIProvider   string `env:"AI_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	LLMModel     string `env:"LLM_MODEL" envDefault:"ft:gpt-3.5-turbo-0125:personal:massage-client-v1:CciCxlPm"`
	AIWorkers    int    `env:"AI_WORKERS" envDefault:"2"`
}

func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, falling back to system environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("[ERR] Config error: %v", err)
	}

	if cfg.AIProvider == "openai" && cfg.OpenAIAPIKey == "" {
		log.Fatal("[ERR] OPENAI_API_KEY is not set")
	}

	return cfg
}
