package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	PostgreSQL PostgreSQLConfig
	OpenAI     OpenAIConfig
	Meta       MetaConfig
	Pipeline   PipelineConfig
	Company    CompanyConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// OpenAIConfig holds configuration for the OpenAI-compatible generative API
type OpenAIConfig struct {
	APIKey          string
	APIBase         string
	ChatModel       string
	ChatTemperature float64
	ChatMaxTokens   int
	Timeout         int
	Enabled         bool
}

// MetaConfig holds WhatsApp Cloud API and Messenger Platform configuration
type MetaConfig struct {
	VerifyToken         string
	WhatsAppAccessToken string
	WhatsAppPhoneID     string
	MessengerPageToken  string
	GraphAPIBase        string
	TemplateName        string
}

// PipelineConfig holds the response-resolution cascade configuration.
// The three thresholds are deliberately separate values: unifying them would
// silently change routing behavior.
type PipelineConfig struct {
	DatasetPath          string
	MatcherThreshold     float64
	MatcherAccept        float64
	IntentAccept         float64
	GenerativeConfidence float64
	ContextTimeout       time.Duration
	MaxHistory           int
	GenerativeHistory    int
}

// CompanyConfig holds brand information used in prompts and templates
type CompanyConfig struct {
	Name         string
	SupportPhone string
	SupportEmail string
	Website      string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "chatbot"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
		},
		OpenAI: OpenAIConfig{
			APIKey:          getEnv("OPENAI_API_KEY", ""),
			APIBase:         getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"),
			ChatModel:       getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
			ChatTemperature: getEnvAsFloat("OPENAI_CHAT_TEMPERATURE", 0.7),
			ChatMaxTokens:   getEnvAsInt("OPENAI_CHAT_MAX_TOKENS", 500),
			Timeout:         getEnvAsInt("OPENAI_TIMEOUT", 15),
			Enabled:         getEnv("OPENAI_API_KEY", "") != "",
		},
		Meta: MetaConfig{
			VerifyToken:         getEnv("VERIFY_TOKEN", ""),
			WhatsAppAccessToken: getEnv("WHATSAPP_ACCESS_TOKEN", ""),
			WhatsAppPhoneID:     getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
			MessengerPageToken:  getEnv("MESSENGER_PAGE_ACCESS_TOKEN", ""),
			GraphAPIBase:        getEnv("META_GRAPH_API_BASE", "https://graph.facebook.com/v22.0"),
			TemplateName:        getEnv("WHATSAPP_TEMPLATE_NAME", "hello_world"),
		},
		Pipeline: PipelineConfig{
			DatasetPath:          getEnv("DATASET_PATH", "data/dataset.json"),
			MatcherThreshold:     getEnvAsFloat("MATCHER_THRESHOLD", 0.3),
			MatcherAccept:        getEnvAsFloat("MATCHER_ACCEPT", 0.4),
			IntentAccept:         getEnvAsFloat("INTENT_ACCEPT", 0.3),
			GenerativeConfidence: getEnvAsFloat("GENERATIVE_CONFIDENCE", 0.8),
			ContextTimeout:       getEnvAsDuration("CONTEXT_TIMEOUT", 30*time.Minute),
			MaxHistory:           getEnvAsInt("CONTEXT_MAX_HISTORY", 10),
			GenerativeHistory:    getEnvAsInt("GENERATIVE_HISTORY_TURNS", 3),
		},
		Company: CompanyConfig{
			Name:         getEnv("COMPANY_NAME", "GPS Control"),
			SupportPhone: getEnv("COMPANY_SUPPORT_PHONE", "+52 55 1234 5678"),
			SupportEmail: getEnv("COMPANY_SUPPORT_EMAIL", "soporte@gpscontrol.mx"),
			Website:      getEnv("COMPANY_WEBSITE", "https://gpscontrol.mx"),
		},
	}

	return cfg, nil
}

// GetPostgreSQLDSN returns the PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration value for %s, using default %s", key, defaultValue)
		return defaultValue
	}
	return value
}
