package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPath     string

	JWTSecret  string
	JWTTTL     time.Duration
	ServerPort string

	CORSOrigins   string
	PassThreshold int

	RedisAddr      string
	RedisPassword  string
	CourseCacheTTL time.Duration

	AMQPURL      string
	AMQPExchange string

	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	// AuditSchedule is a cron spec for the progress audit job. Empty disables it.
	AuditSchedule     string
	CertificateIssuer string
	LogFormat         string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	return &Config{
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "academy"),
		DBPath:     getEnv("DB_PATH", "academy.db"),

		JWTSecret:  getEnv("JWT_SECRET", "secret"),
		JWTTTL:     time.Duration(getEnvInt("JWT_TTL_HOURS", 72)) * time.Hour,
		ServerPort: getEnv("SERVER_PORT", "8080"),

		CORSOrigins:   getEnv("CORS_ORIGINS", "*"),
		PassThreshold: getEnvInt("PASS_THRESHOLD", 70),

		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		CourseCacheTTL: getEnvDuration("COURSE_CACHE_TTL", 10*time.Minute),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "academy.events"),

		LLMBaseURL: strings.TrimRight(getEnv("LLM_BASE_URL", "https://api.openai.com/v1"), "/"),
		LLMAPIKey:  getEnv("LLM_API_KEY", ""),
		LLMModel:   getEnv("LLM_MODEL", "gpt-4-turbo-preview"),

		AuditSchedule:     getEnv("AUDIT_SCHEDULE", ""),
		CertificateIssuer: getEnv("CERTIFICATE_ISSUER", "DIGITS Inc"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Error parsing duration %s: %v", key, err)
		return defaultValue
	}
	return d
}
