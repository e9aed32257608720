package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	Port        string
	Env         string

	// LLM / transcription
	OpenAIKey   string
	LLMProvider string
	LLMModel    string

	// Dashboard auth
	JWTSecret string

	// Telephony
	TelnyxAPIKey string
	TelnyxAPIURL string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}

	cfg := &Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		Port:         os.Getenv("PORT"),
		Env:          os.Getenv("ENV"),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		LLMProvider:  os.Getenv("LLM_PROVIDER"),
		LLMModel:     os.Getenv("LLM_MODEL"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		TelnyxAPIKey: os.Getenv("TELNYX_API_KEY"),
		TelnyxAPIURL: os.Getenv("TELNYX_API_URL"),
	}

	// Default values
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.TelnyxAPIURL == "" {
		cfg.TelnyxAPIURL = "https://api.telnyx.com/v2"
	}

	return cfg
}
