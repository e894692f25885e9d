package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port            string
	Environment     string
	SupabaseURL     string
	SupabaseKey     string
	SupabaseDBURL   string
	SupabaseJWKSURL string // Constructed from SupabaseURL + /auth/v1/.well-known/jwks.json
	CORSOrigins     string
	TablePrefix     string
	// LLM Configuration
	AnthropicAPIKey    string
	OpenRouterAPIKey   string
	DefaultProvider    string
	DefaultModel       string
	ClassifierProvider string // Instruction-following provider used for extraction/classification
	ClassifierModel    string
	// Realtime / search / storage
	RedisURL         string // Empty disables live notification fan-out
	MeiliURL         string // Empty disables Meilisearch (Postgres search only)
	MeiliMasterKey   string
	StorageEndpoint  string // Empty disables uploads
	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string
	StorageUseSSL    bool
	// Deadline sweep
	DeadlineAdvanceHours int
	// Logging
	LogDir string // Empty = stdout only
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)
	supabaseURL := getEnv("SUPABASE_URL", "")

	// Construct JWKS URL from Supabase URL
	jwksURL := supabaseURL + "/auth/v1/.well-known/jwks.json"

	defaultProvider := getEnv("DEFAULT_PROVIDER", "anthropic")
	defaultModel := getEnv("DEFAULT_MODEL", "claude-haiku-4-5-20251001")

	return &Config{
		Port:            getEnv("PORT", "8080"),
		Environment:     env,
		SupabaseURL:     supabaseURL,
		SupabaseKey:     getEnv("SUPABASE_KEY", ""),
		SupabaseDBURL:   getEnv("SUPABASE_DB_URL", ""),
		SupabaseJWKSURL: jwksURL,
		CORSOrigins:     getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:     tablePrefix,
		// LLM Configuration
		AnthropicAPIKey:    getEnv("ANTHROPIC_API_KEY", ""),
		OpenRouterAPIKey:   getEnv("OPENROUTER_API_KEY", ""),
		DefaultProvider:    defaultProvider,
		DefaultModel:       defaultModel,
		ClassifierProvider: getEnv("CLASSIFIER_PROVIDER", defaultProvider),
		ClassifierModel:    getEnv("CLASSIFIER_MODEL", defaultModel),
		// Realtime / search / storage
		RedisURL:         getEnv("REDIS_URL", ""),
		MeiliURL:         getEnv("MEILI_URL", ""),
		MeiliMasterKey:   getEnv("MEILI_MASTER_KEY", ""),
		StorageEndpoint:  getEnv("STORAGE_ENDPOINT", ""),
		StorageAccessKey: getEnv("STORAGE_ACCESS_KEY", ""),
		StorageSecretKey: getEnv("STORAGE_SECRET_KEY", ""),
		StorageBucket:    getEnv("STORAGE_BUCKET", "docassist"),
		StorageUseSSL:    getEnvBool("STORAGE_USE_SSL", true),
		// Deadline sweep
		DeadlineAdvanceHours: getEnvInt("DEADLINE_ADVANCE_HOURS", 24),
		LogDir:               getEnv("LOG_DIR", ""),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt falls back to the default for missing, malformed or non-positive values
func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return b
}
