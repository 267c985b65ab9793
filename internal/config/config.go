package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Keys     APIKeys
	Ai       AIConfig
	Agent    AgentConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string // public URL Twilio calls back and fetches audio from
	Environment        string
	LogFilePath        string
	KitchenLogFilePath string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	OtelEnabled        bool
	OtelEndpoint       string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host         string
	Port         int
	Email        string
	Password     string
	SenderName   string
	KitchenEmail string // where placed orders are mailed; empty disables
}

type APIKeys struct {
	OpenAI       string
	GoogleTTS    string
	JwtSecret    string
	TwilioSecret string // auth token used to validate webhook signatures
}

type AIConfig struct {
	LLMProvider   string // "ollama" or "openai"
	LLMModel      string
	LLMBaseURL    string // OpenAI-compatible endpoint override
	OllamaBaseURL string
	Timeout       time.Duration
}

type AgentConfig struct {
	CatalogPath    string
	SessionBackend string // "memory" or "redis"
	SessionTTL     time.Duration
	SessionLockTTL time.Duration // upper bound on one turn; frees the call if an instance dies mid-turn
	ReplayWindow   time.Duration
	HistoryLimit   int
	NLUHistory     int
	Language       string // BCP-47 tag for speech recognition and synthesis
	VoiceName      string
	AudioTTL       time.Duration
	TTSTimeout     time.Duration
	ValidateTwilio bool
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			KitchenLogFilePath: getEnv("KITCHEN_LOG_FILE_PATH", "logs/kitchen.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:         getEnv("SMTP_HOST", ""),
			Port:         getEnvAsInt("SMTP_PORT", 587),
			Email:        getEnv("SMTP_EMAIL", ""),
			Password:     getEnv("SMTP_PASSWORD", ""),
			SenderName:   getEnv("SMTP_SENDER_NAME", "Phone Orders"),
			KitchenEmail: getEnv("KITCHEN_EMAIL", ""),
		},
		Keys: APIKeys{
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
			GoogleTTS:    getEnv("GOOGLE_API_KEY", ""),
			JwtSecret:    getEnv("JWT_SECRET", ""),
			TwilioSecret: getEnv("TWILIO_AUTH_TOKEN", ""),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "openai"),
			LLMModel:      getEnv("LLM_MODEL", "gpt-4o"),
			LLMBaseURL:    getEnv("LLM_BASE_URL", ""),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			Timeout:       getEnvAsDuration("LLM_TIMEOUT", 20*time.Second),
		},
		Agent: AgentConfig{
			CatalogPath:    getEnv("MENU_PATH", "menu.xml"),
			SessionBackend: getEnv("SESSION_BACKEND", "memory"),
			SessionTTL:     getEnvAsDuration("SESSION_TTL", 30*time.Minute),
			SessionLockTTL: getEnvAsDuration("SESSION_LOCK_TTL", 2*time.Minute),
			ReplayWindow:   getEnvAsDuration("REPLAY_WINDOW", 10*time.Second),
			HistoryLimit:   getEnvAsInt("HISTORY_LIMIT", 20),
			NLUHistory:     getEnvAsInt("NLU_HISTORY_TURNS", 6),
			Language:       getEnv("AGENT_LANGUAGE", "he-IL"),
			VoiceName:      getEnv("TTS_VOICE_NAME", "he-IL-Standard-A"),
			AudioTTL:       getEnvAsDuration("AUDIO_TTL", 10*time.Minute),
			TTSTimeout:     getEnvAsDuration("TTS_TIMEOUT", 10*time.Second),
			ValidateTwilio: getEnvAsBool("TWILIO_VALIDATE_SIGNATURE", false),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
