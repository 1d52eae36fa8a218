package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DSN       string
	JWTSecret string
	AppPort   string
	WebHost   string

	RedisAddr     string
	RedisPassword string

	ResendAPIKey    string
	ResendFromEmail string

	LLMProxyURL string
	LLMProxyKey string

	IdentityURL   string
	IdentityToken string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using system environment variables")
	}

	cfg := Config{
		DSN:             os.Getenv("MYSQL_DSN"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		AppPort:         os.Getenv("APP_PORT"),
		WebHost:         os.Getenv("WEB_HOST"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		ResendAPIKey:    os.Getenv("RESEND_API_KEY"),
		ResendFromEmail: os.Getenv("RESEND_FROM_EMAIL"),
		LLMProxyURL:     os.Getenv("LLM_PROXY_URL"),
		LLMProxyKey:     os.Getenv("LLM_PROXY_KEY"),
		IdentityURL:     os.Getenv("IDENTITY_URL"),
		IdentityToken:   os.Getenv("IDENTITY_TOKEN"),
	}

	if cfg.DSN == "" {
		log.Fatal("MYSQL_DSN not set in environment")
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-only"
	}
	if cfg.AppPort == "" {
		cfg.AppPort = "8080"
	}
	if cfg.WebHost == "" {
		cfg.WebHost = "http://localhost:" + cfg.AppPort
	}
	if cfg.ResendFromEmail == "" {
		cfg.ResendFromEmail = "OrgHub <no-reply@orghub.local>"
	}

	return cfg
}
