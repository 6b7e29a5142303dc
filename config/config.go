package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var (
	Port     string
	LogLevel string

	// Catalog store
	CatalogDriver string
	MongoURI      string
	DBName        string
	PostgresDSN   string
	PostgresConns int

	// Object storage for archived images
	AWSRegion     string
	AWSBucketName string
	AssetsBaseURL string

	// Page rendering
	ScraperAPIURL    string
	ScraperAPIKey    string
	HeadlessEnabled  bool
	SeleniumEnabled  bool
	ChromeDriverPath string
	FetchRatePerSec  float64

	// AI collaborators
	GeminiAPIKey         string
	GeminiModel          string
	TranslationLanguages []string

	// Image archival
	ArchiveMode string
	NATSURL     string

	// Operator access
	JWTSecret         string
	AdminEmail        string
	AdminPasswordHash string

	// Notifications
	SendGridAPIKey string
	NotifyEmail    string

	AutoFillCategoriesFile string
)

// LoadConfig loads environment variables from .env file
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using default values or system environment variables")
	}

	Port = getEnv("PORT", "8080")
	LogLevel = getEnv("LOG_LEVEL", "info")

	CatalogDriver = strings.ToLower(getEnv("CATALOG_DRIVER", "mongo"))
	MongoURI = getEnv("MONGO_URI", "mongodb://localhost:27017/")
	DBName = getEnv("DB_NAME", "dealership")
	PostgresDSN = os.Getenv("POSTGRES_DSN")
	PostgresConns = getInt("POSTGRES_MAX_CONNS", 10)

	AWSRegion = getEnv("AWS_REGION", "eu-west-3")
	AWSBucketName = os.Getenv("AWS_BUCKET_NAME")
	AssetsBaseURL = strings.TrimRight(os.Getenv("ASSETS_BASE_URL"), "/")

	ScraperAPIURL = getEnv("SCRAPER_API_URL", "https://api.firecrawl.dev")
	ScraperAPIKey = os.Getenv("SCRAPER_API_KEY")
	HeadlessEnabled = getBool("HEADLESS_ENABLED", true)
	SeleniumEnabled = getBool("SELENIUM_ENABLED", false)
	ChromeDriverPath = getEnv("CHROMEDRIVER_PATH", "/usr/local/bin/chromedriver")
	FetchRatePerSec = getFloat("FETCH_RATE_PER_SEC", 0.5)

	GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	GeminiModel = getEnv("GEMINI_MODEL", "gemini-1.5-flash")
	TranslationLanguages = splitList(getEnv("TRANSLATION_LANGUAGES", "en,de,es,it,nl"))

	ArchiveMode = strings.ToLower(getEnv("ARCHIVE_MODE", "direct"))
	NATSURL = getEnv("NATS_URL", "nats://127.0.0.1:4222")

	JWTSecret = os.Getenv("JWT_SECRET")
	AdminEmail = os.Getenv("ADMIN_EMAIL")
	AdminPasswordHash = os.Getenv("ADMIN_PASSWORD_HASH")

	SendGridAPIKey = os.Getenv("SENDGRID_API_KEY")
	NotifyEmail = os.Getenv("NOTIFY_EMAIL")

	AutoFillCategoriesFile = getEnv("AUTOFILL_CATEGORIES_FILE", "autofill.yaml")
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
