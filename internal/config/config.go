package config

import (
	"crypto/rand"
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingAPIKey is returned when no GOOGLE_API_KEY can be resolved.
var ErrMissingAPIKey = errors.New("API Key missing! Please add GOOGLE_API_KEY to your Secrets.")

const (
	// StoreBackendCSV persists reviews into a flat CSV table.
	StoreBackendCSV = "csv"
	// StoreBackendMongo persists reviews into a MongoDB collection.
	StoreBackendMongo = "mongo"
)

// Config holds runtime configuration shared across the application.
type Config struct {
	Addr                string
	APIKey              string
	GenAIBaseURL        string
	GenAITimeout        time.Duration
	GenAIModels         []string
	ProcessorConfigPath string
	StoreBackend        string
	ReviewsCSVPath      string
	MongoURI            string
	MongoDatabase       string
	ReviewCollection    string
	MongoTimeout        time.Duration
	Timezone            string
	FlashSecret         []byte
	CookieSecure        bool
	AllowedOrigins      []string
	ServerLog           *log.Logger
}

// Load は .env と環境変数から Config を組み立てる。
// API キーが解決できない場合は ErrMissingAPIKey を返し、呼び出し側で起動を止める。
func Load() (Config, error) {
	logger := log.New(os.Stdout, "[feedback-dashboard] ", log.LstdFlags|log.Lshortfile)

	envFile := envOrDefault("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil {
		logger.Printf("%s を読み込めませんでした。環境変数のみを使用します: %v", envFile, err)
	}

	apiKey := strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
	if apiKey == "" {
		return Config{}, ErrMissingAPIKey
	}

	backend := strings.ToLower(envOrDefault("STORE_BACKEND", StoreBackendCSV))
	if backend != StoreBackendCSV && backend != StoreBackendMongo {
		logger.Printf("未知の STORE_BACKEND=%q のため csv を使用します", backend)
		backend = StoreBackendCSV
	}

	mongoURI := strings.TrimSpace(os.Getenv("MONGO_URI"))
	if backend == StoreBackendMongo && mongoURI == "" {
		return Config{}, errors.New("STORE_BACKEND=mongo requires MONGO_URI")
	}

	flashSecret := []byte(strings.TrimSpace(os.Getenv("FLASH_SECRET")))
	if len(flashSecret) == 0 {
		flashSecret = make([]byte, 32)
		if _, err := rand.Read(flashSecret); err != nil {
			return Config{}, err
		}
		logger.Printf("FLASH_SECRET 未設定のため起動ごとのランダム鍵を使用します")
	}

	cfg := Config{
		Addr:                envOrDefault("HTTP_ADDR", ":8501"),
		APIKey:              apiKey,
		GenAIBaseURL:        envOrDefault("GENAI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GenAITimeout:        parseDuration("GENAI_TIMEOUT", 30*time.Second),
		GenAIModels:         parseList("GENAI_MODELS", nil),
		ProcessorConfigPath: strings.TrimSpace(os.Getenv("GENAI_PROCESSOR_CONFIG")),
		StoreBackend:        backend,
		ReviewsCSVPath:      envOrDefault("REVIEWS_CSV_PATH", "reviews.csv"),
		MongoURI:            mongoURI,
		MongoDatabase:       envOrDefault("MONGO_DB", "feedback"),
		ReviewCollection:    envOrDefault("REVIEW_COLLECTION", "reviews"),
		MongoTimeout:        parseDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		Timezone:            envOrDefault("TIMEZONE", "Local"),
		FlashSecret:         flashSecret,
		CookieSecure:        strings.EqualFold(strings.TrimSpace(os.Getenv("COOKIE_SECURE")), "true"),
		AllowedOrigins:      parseList("API_ALLOWED_ORIGINS", []string{"*"}),
		ServerLog:           logger,
	}

	cfg.ServerLog.Printf("loaded config: addr=%q store=%q csv=%q models=%v", cfg.Addr, cfg.StoreBackend, cfg.ReviewsCSVPath, cfg.GenAIModels)

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func parseList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}
