package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate は .env の読み込み先を存在しないパスに向け、関連する環境変数を空にする。
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	for _, key := range []string{
		"GOOGLE_API_KEY", "STORE_BACKEND", "MONGO_URI", "FLASH_SECRET", "HTTP_ADDR",
		"GENAI_MODELS", "GENAI_TIMEOUT", "REVIEWS_CSV_PATH", "API_ALLOWED_ORIGINS", "COOKIE_SECURE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_MissingAPIKey(t *testing.T) {
	isolate(t)

	if _, err := Load(); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Load() error = %v, want ErrMissingAPIKey", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	t.Setenv("GOOGLE_API_KEY", "key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != ":8501" {
		t.Errorf("Addr = %q, want :8501", cfg.Addr)
	}
	if cfg.StoreBackend != StoreBackendCSV {
		t.Errorf("StoreBackend = %q, want csv", cfg.StoreBackend)
	}
	if cfg.ReviewsCSVPath != "reviews.csv" {
		t.Errorf("ReviewsCSVPath = %q, want reviews.csv", cfg.ReviewsCSVPath)
	}
	if cfg.GenAITimeout != 30*time.Second {
		t.Errorf("GenAITimeout = %v, want 30s", cfg.GenAITimeout)
	}
	if len(cfg.GenAIModels) != 0 {
		t.Errorf("GenAIModels = %v, want empty", cfg.GenAIModels)
	}
	if len(cfg.FlashSecret) != 32 {
		t.Errorf("len(FlashSecret) = %d, want 32 random bytes", len(cfg.FlashSecret))
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v, want [*]", cfg.AllowedOrigins)
	}
}

func TestLoad_FromEnvFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), ".env")
	content := "GOOGLE_API_KEY=from-file\nGENAI_MODELS=a, b ,,c\nGENAI_TIMEOUT=5s\nCOOKIE_SECURE=true\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ENV_FILE", path)
	// godotenv.Load は既存の環境変数を上書きしないため、空の値を消しておく
	for _, key := range []string{"GOOGLE_API_KEY", "GENAI_MODELS", "GENAI_TIMEOUT", "COOKIE_SECURE"} {
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.APIKey != "from-file" {
		t.Errorf("APIKey = %q, want from-file", cfg.APIKey)
	}
	if len(cfg.GenAIModels) != 3 || cfg.GenAIModels[1] != "b" {
		t.Errorf("GenAIModels = %v, want [a b c]", cfg.GenAIModels)
	}
	if cfg.GenAITimeout != 5*time.Second {
		t.Errorf("GenAITimeout = %v, want 5s", cfg.GenAITimeout)
	}
	if !cfg.CookieSecure {
		t.Error("CookieSecure = false, want true")
	}
}

func TestLoad_MongoRequiresURI(t *testing.T) {
	isolate(t)
	t.Setenv("GOOGLE_API_KEY", "key")
	t.Setenv("STORE_BACKEND", "mongo")

	if _, err := Load(); err == nil {
		t.Error("Load() error = nil, want error for missing MONGO_URI")
	}

	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.StoreBackend != StoreBackendMongo {
		t.Errorf("StoreBackend = %q, want mongo", cfg.StoreBackend)
	}
}

func TestParseDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("SOME_TIMEOUT", "soon")
	if got := parseDuration("SOME_TIMEOUT", time.Minute); got != time.Minute {
		t.Errorf("parseDuration() = %v, want 1m", got)
	}
	t.Setenv("SOME_TIMEOUT", "-1s")
	if got := parseDuration("SOME_TIMEOUT", time.Minute); got != time.Minute {
		t.Errorf("parseDuration(-1s) = %v, want 1m", got)
	}
}
