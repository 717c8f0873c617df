package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// languageCodeMap maps 2-letter language codes to full language names
// used in translation prompts.
var languageCodeMap = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"ru": "Russian",
	"ja": "Japanese",
	"ko": "Korean",
	"zh": "Chinese",
	"ar": "Arabic",
	"hi": "Hindi",
	"ur": "Urdu",
	"bn": "Bengali",
}

// LanguageName resolves a 2-letter code to a full language name, falling
// back to the code itself for unknown codes.
func LanguageName(code string) string {
	if name, ok := languageCodeMap[code]; ok {
		return name
	}
	return code
}

// Config holds all configuration for the crisis response service
type Config struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Server configuration
	Port           string
	TrustedProxies []string

	// Auth configuration
	JWTSecret string

	// LLM configuration
	LLMProvider  string
	GeminiAPIKey string
	GeminiModel  string
	// Lighter model used for free-text summaries.
	GeminiTextModel string
	OpenAIAPIKey    string
	OpenAIModel     string

	// Twilio configuration
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	// Slack configuration
	SlackBotToken  string
	SlackChannelID string

	// Local notification fallback log
	NotificationLogPath string

	// Crisis monitoring
	MonitoringURLs       []string
	MonitoringMaxSources int
	HTTPFetchTimeout     time.Duration

	// Analytics defaults
	TrendWindowDays     int
	RiskHistoryLimit    int
	RiskWindowHours     int
	BulkAlertRecipients int

	// RabbitMQ configuration (optional; service runs without it)
	AMQPURL                string
	AMQPExchange           string
	AnalyzedReportRouteKey string

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		// Database defaults
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "server"),
		DBPassword: getEnv("DB_PASSWORD", "secret_app"),
		DBName:     getEnv("DB_NAME", "crisisnav"),

		// Server defaults
		Port:           getEnv("PORT", "8080"),
		TrustedProxies: getStringSliceEnv("TRUSTED_PROXIES", ""),

		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-in-production"),

		// LLM defaults
		LLMProvider:     getEnv("LLM_PROVIDER", "gemini"),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.5-pro"),
		GeminiTextModel: getEnv("GEMINI_TEXT_MODEL", "gemini-2.5-flash"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o"),

		// Twilio defaults (empty means the SMS channel is disabled)
		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_PHONE_NUMBER", ""),

		// Slack defaults (empty means the Slack channel is disabled)
		SlackBotToken:  getEnv("SLACK_BOT_TOKEN", ""),
		SlackChannelID: getEnv("SLACK_CHANNEL_ID", ""),

		NotificationLogPath: getEnv("NOTIFICATION_LOG_PATH", "notifications.log"),

		// Crisis monitoring defaults
		MonitoringURLs: getStringSliceEnv("MONITORING_URLS",
			"https://www.cnn.com/,https://www.reuters.com/,https://www.bbc.com/news,https://apnews.com/,https://www.weather.gov/"),
		MonitoringMaxSources: getIntEnv("MONITORING_MAX_SOURCES", 3),
		HTTPFetchTimeout:     getDurationEnv("HTTP_FETCH_TIMEOUT", 15*time.Second),

		// Analytics defaults
		TrendWindowDays:     getIntEnv("TREND_WINDOW_DAYS", 30),
		RiskHistoryLimit:    getIntEnv("RISK_HISTORY_LIMIT", 100),
		RiskWindowHours:     getIntEnv("RISK_WINDOW_HOURS", 24),
		BulkAlertRecipients: getIntEnv("BULK_ALERT_RECIPIENTS", 50),

		// RabbitMQ defaults
		AMQPURL:                getEnv("AMQP_URL", ""),
		AMQPExchange:           getEnv("AMQP_EXCHANGE", "crisisnav"),
		AnalyzedReportRouteKey: getEnv("AMQP_ANALYZED_REPORT_ROUTING_KEY", "report.analyzed"),

		// Logging defaults
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// getStringSliceEnv gets a comma-separated string environment variable and
// returns it as a string slice
func getStringSliceEnv(key, defaultValue string) []string {
	value := getEnv(key, defaultValue)
	if value == "" {
		return []string{}
	}

	parts := strings.Split(value, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
