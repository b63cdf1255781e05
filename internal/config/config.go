package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Platform PlatformConfig
	Keys     APIKeys
	Ai       AIConfig
	Memory   MemoryConfig
	Search   SearchConfig
}

type AppConfig struct {
	Port               string `validate:"required,numeric"`
	Environment        string `validate:"oneof=development production test"`
	LogFilePath        string `validate:"required"`
	NatsURL            string
	JWTSecret          string
	ModesFile          string
	CorsAllowedOrigins string
}

type PlatformConfig struct {
	TelegramToken   string
	BotUsername     string
	TrackedChannels []string
}

type APIKeys struct {
	GoogleAPIKey string
	GoogleCSEID  string
	Groq         string
	OpenAI       string
}

type AIConfig struct {
	LLMProvider     string `validate:"oneof=groq openai ollama"`
	LLMModel        string `validate:"required"`
	LLMBaseURL      string
	MaxOutputTokens int `validate:"gt=0"`
	MaxPromptTokens int `validate:"gt=0"`
}

type MemoryConfig struct {
	Capacity        int    `validate:"gt=0"`
	SummaryInterval int    `validate:"gt=0"`
	SummaryBackend  string `validate:"oneof=file redis postgres"`
	SummaryDir      string `validate:"required_if=SummaryBackend file"`
	RedisURL        string `validate:"required_if=SummaryBackend redis"`
	DBConnection    string `validate:"required_if=SummaryBackend postgres"`
}

type SearchConfig struct {
	Cooldown           time.Duration `validate:"gte=0"`
	Candidates         int           `validate:"gt=0,lte=10"`
	WebContentMaxChars int           `validate:"gt=0"`
	FetchTimeout       time.Duration `validate:"gt=0"`
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:        getEnv("APP_PORT", "3000"),
			Environment: getEnv("GO_ENV", "development"),
			LogFilePath: getEnv("LOG_FILE_PATH", "logs/app.log"),
			NatsURL:     getEnv("NATS_URL", ""),
			JWTSecret:   getEnv("JWT_SECRET", ""),
			ModesFile:   getEnv("MODES_FILE", ""),

			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Platform: PlatformConfig{
			TelegramToken:   getEnv("TELEGRAM_TOKEN", ""),
			BotUsername:     getEnv("BOT_USERNAME", ""),
			TrackedChannels: getEnvAsList("TRACKED_CHANNELS"),
		},
		Keys: APIKeys{
			GoogleAPIKey: getEnv("GOOGLE_API_KEY", ""),
			GoogleCSEID:  getEnv("GOOGLE_CSE_ID", ""),
			Groq:         getEnv("GROQ_API_KEY", ""),
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:     getEnv("LLM_PROVIDER", "groq"),
			LLMModel:        getEnv("LLM_MODEL", "llama3-70b-8192"),
			LLMBaseURL:      getEnv("LLM_BASE_URL", ""),
			MaxOutputTokens: getEnvAsInt("LLM_MAX_OUTPUT_TOKENS", 2048),
			MaxPromptTokens: getEnvAsInt("LLM_MAX_PROMPT_TOKENS", 32000),
		},
		Memory: MemoryConfig{
			Capacity:        getEnvAsInt("MEMORY_CAPACITY", 20),
			SummaryInterval: getEnvAsInt("MEMORY_SUMMARY_INTERVAL", 50),
			SummaryBackend:  getEnv("MEMORY_SUMMARY_BACKEND", "file"),
			SummaryDir:      getEnv("MEMORY_SUMMARY_DIR", "memory"),
			RedisURL:        getEnv("REDIS_URL", ""),
			DBConnection:    getEnv("DB_CONNECTION_STRING", ""),
		},
		Search: SearchConfig{
			Cooldown:           getEnvAsDuration("SEARCH_COOLDOWN", 90*time.Second),
			Candidates:         getEnvAsInt("SEARCH_CANDIDATES", 10),
			WebContentMaxChars: getEnvAsInt("WEB_CONTENT_MAX_CHARS", 50000),
			FetchTimeout:       getEnvAsDuration("ARTICLE_FETCH_TIMEOUT", 10*time.Second),
		},
	}
}

// Validate checks the loaded values against the struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// LLMAPIKey picks the credential that matches the configured provider.
func (c *Config) LLMAPIKey() string {
	switch c.Ai.LLMProvider {
	case "openai":
		return c.Keys.OpenAI
	case "groq":
		return c.Keys.Groq
	default:
		return ""
	}
}

// IsTracked reports whether messages of a conversation are kept in memory.
// An empty tracking list tracks every conversation.
func (p PlatformConfig) IsTracked(conversationID string) bool {
	if len(p.TrackedChannels) == 0 {
		return true
	}
	for _, id := range p.TrackedChannels {
		if id == conversationID {
			return true
		}
	}
	return false
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
