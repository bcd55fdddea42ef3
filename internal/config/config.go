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
	// Server configuration
	Port            string        `json:"port"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	HTTPTimeout     time.Duration `json:"http_timeout"`

	// MongoDB configuration
	MongoURI      string        `json:"mongo_uri"`
	MongoDatabase string        `json:"mongo_database"`
	MongoTimeout  time.Duration `json:"mongo_timeout"`

	// Redis configuration
	RedisURL    string        `json:"redis_url"`
	RedisPrefix string        `json:"redis_prefix"`
	SeenTTL     time.Duration `json:"seen_ttl"`

	// AI Configuration
	AIApiKey      string        `json:"ai_api_key"`
	AIModel       string        `json:"ai_model"`
	AITimeout     time.Duration `json:"ai_timeout"`
	AIMaxTokens   int           `json:"ai_max_tokens"`
	AITemperature float64       `json:"ai_temperature"`
	AIMaxAttempts int           `json:"ai_max_attempts"`

	// News sources
	NewsAPIKey  string        `json:"news_api_key"`
	NewsFeedURL string        `json:"news_feed_url"`
	NewsTimeout time.Duration `json:"news_timeout"`

	// Image source
	ImageAPIKey  string        `json:"image_api_key"`
	ImageTimeout time.Duration `json:"image_timeout"`

	// Scheduler
	SchedulerInterval time.Duration `json:"scheduler_interval"`
	MaxPending        int           `json:"max_pending"`
	BatchMaxPending   int           `json:"batch_max_pending"`
	BatchMaxTopics    int           `json:"batch_max_topics"`

	// Duplicate detection
	DuplicateWindowHours int `json:"duplicate_window_hours"`

	// CloudFlare R2 Configuration (featured image mirror)
	R2Endpoint  string `json:"r2_endpoint"`
	R2AccessKey string `json:"r2_access_key"`
	R2SecretKey string `json:"r2_secret_key"`
	R2Bucket    string `json:"r2_bucket"`

	// Logging
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`

	// Security
	AdminAPIKey string `json:"admin_api_key"`

	// System principal used for automated publishing
	AdminUsername string `json:"admin_username"`
	AdminEmail    string `json:"admin_email"`
}

// Load loads configuration from environment variables and validates it
func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := &Config{
		// Server configuration
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),

		// MongoDB configuration
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "draftpress"),
		MongoTimeout:  getEnvAsDuration("MONGO_TIMEOUT", 10*time.Second),

		// Redis configuration
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisPrefix: getEnv("REDIS_PREFIX", "draftpress:"),
		SeenTTL:     getEnvAsDuration("SEEN_TTL", 168*time.Hour), // 7 days

		// AI Configuration
		AIApiKey:      getEnv("AI_API_KEY", ""),
		AIModel:       getEnv("AI_MODEL", "gemini-pro"),
		AITimeout:     getEnvAsDuration("AI_TIMEOUT", 30*time.Second),
		AIMaxTokens:   getEnvAsInt("AI_MAX_TOKENS", 4000),
		AITemperature: getEnvAsFloat("AI_TEMPERATURE", 0.8),
		AIMaxAttempts: getEnvAsInt("AI_MAX_ATTEMPTS", 3),

		// News sources
		NewsAPIKey:  getEnv("NEWS_API_KEY", ""),
		NewsFeedURL: getEnv("NEWS_FEED_URL", ""),
		NewsTimeout: getEnvAsDuration("NEWS_TIMEOUT", 15*time.Second),

		// Image source
		ImageAPIKey:  getEnv("IMAGE_API_KEY", ""),
		ImageTimeout: getEnvAsDuration("IMAGE_TIMEOUT", 10*time.Second),

		// Scheduler
		SchedulerInterval: getEnvAsDuration("SCHEDULER_INTERVAL", 5*time.Minute),
		MaxPending:        getEnvAsInt("MAX_PENDING_SUGGESTIONS", 15),
		BatchMaxPending:   getEnvAsInt("BATCH_MAX_PENDING", 8),
		BatchMaxTopics:    getEnvAsInt("BATCH_MAX_TOPICS", 10),

		// Duplicate detection
		DuplicateWindowHours: getEnvAsInt("DUPLICATE_WINDOW_HOURS", 72),

		// CloudFlare R2 Configuration
		R2Endpoint:  getEnv("R2_ENDPOINT", ""),
		R2AccessKey: getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:    getEnv("R2_BUCKET", "draftpress-media"),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		// Security
		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),

		// System principal
		AdminUsername: getEnv("ADMIN_USERNAME", "draftpress-admin"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@draftpress.local"),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	return cfg
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Env == "production" && c.AdminAPIKey == "" {
		return fmt.Errorf("ADMIN_API_KEY is required in production")
	}
	if c.AIApiKey == "" {
		log.Printf("Warning: AI_API_KEY is empty, generation will fall back to topic summaries")
	}
	return nil
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsFloat(name string, defaultVal float64) float64 {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}
