package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	NaverClientID     string
	NaverClientSecret string
	GeminiAPIKey      string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	SearchDisplay int
	SearchSort    string

	AnnotationFile string
	CSVOutputPath  string
	ServerPort     string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		NaverClientID:     getEnv("NAVER_CLIENT_ID", ""),
		NaverClientSecret: getEnv("NAVER_CLIENT_SECRET", ""),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "research"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "research123"),
		PostgresDB:       getEnv("POSTGRES_DB", "market_research"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		SearchDisplay: getEnvInt("SEARCH_DISPLAY", 50),
		SearchSort:    getEnv("SEARCH_SORT", "sim"),

		AnnotationFile: getEnv("ANNOTATION_FILE", "./data/feature_edits.json"),
		CSVOutputPath:  getEnv("CSV_OUTPUT_PATH", "./output/products.csv"),
		ServerPort:     getEnv("PORT", "8080"),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// HasNaverCredentials reports whether the shopping search API can be called.
func (c *Config) HasNaverCredentials() bool {
	return c.NaverClientID != "" && c.NaverClientSecret != ""
}

// HasGeminiKey reports whether AI analysis is available; without it the
// rule-based fallback analyzer is used.
func (c *Config) HasGeminiKey() bool {
	return c.GeminiAPIKey != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
