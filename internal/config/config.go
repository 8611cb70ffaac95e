// File: internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort    string
	Environment   string
	LogLevel      string
	JWTSecretKey  string
	AllowedOrigin string

	// OperatorUserIDs are the token subjects allowed on WhatsApp operator routes.
	OperatorUserIDs []string

	// Completion backend (any OpenAI-compatible endpoint)
	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string
	LLMTimeout time.Duration

	// Embeddings, only needed when a document index is configured
	EmbeddingAPIKey    string
	EmbeddingBaseURL   string
	EmbeddingModelName string

	IndexProvider     string
	QdrantURL         string
	QdrantAPIKey      string
	QdrantCollection  string
	QdrantUseTLS      bool
	PineconeAPIKey    string
	PineconeIndexHost string
	PineconeNamespace string
	RetrievalTopK     int

	ContextTurns      int
	ConversationStore string
	SQLitePath        string
	DatabaseURL       string
	RedisURL          string

	// FactstorePath optionally replaces the embedded drug dataset.
	FactstorePath string

	WhatsAppAccessToken   string
	WhatsAppPhoneNumberID string
	WhatsAppVerifyToken   string
	WhatsAppAppSecret     string
	WhatsAppWindow        time.Duration

	RateLimitPerMinute int
}

// Load reads configuration from environment variables or .env file.
func Load() (*Config, error) {
	env := os.Getenv("ENV")
	if !isProduction(env) {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		Environment:   env,
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		JWTSecretKey:  getEnv("JWT_SECRET_KEY", ""),
		AllowedOrigin: getEnv("CORS_ALLOWED_ORIGIN", "*"),

		OperatorUserIDs: getEnvAsList("OPERATOR_USER_IDS"),

		LLMAPIKey:  getEnv("LLM_API_KEY", ""),
		LLMBaseURL: getEnv("LLM_BASE_URL", ""),
		LLMModel:   getEnv("LLM_MODEL", ""),
		LLMTimeout: getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),

		EmbeddingAPIKey:    getEnv("EMBEDDING_API_KEY", ""),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", ""),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "text-embedding-3-small"),

		IndexProvider:     strings.ToLower(getEnv("INDEX_PROVIDER", "none")),
		QdrantURL:         getEnv("QDRANT_URL", ""),
		QdrantAPIKey:      getEnv("QDRANT_API_KEY", ""),
		QdrantCollection:  getEnv("QDRANT_COLLECTION", "medical_documents"),
		QdrantUseTLS:      getEnvAsBool("QDRANT_USE_TLS", true),
		PineconeAPIKey:    getEnv("PINECONE_API_KEY", ""),
		PineconeIndexHost: getEnv("PINECONE_INDEX_HOST", ""),
		PineconeNamespace: getEnv("PINECONE_NAMESPACE", ""),
		RetrievalTopK:     getEnvAsInt("RAG_TOPK", 3),

		ContextTurns:      getEnvAsInt("CONTEXT_TURNS", 5),
		ConversationStore: strings.ToLower(getEnv("CONVERSATION_STORE", "memory")),
		SQLitePath:        getEnv("SQLITE_PATH", "lifexia.db"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		RedisURL:          getEnv("REDIS_URL", ""),

		FactstorePath: getEnv("FACTSTORE_PATH", ""),

		WhatsAppAccessToken:   getEnv("WHATSAPP_ACCESS_TOKEN", ""),
		WhatsAppPhoneNumberID: getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
		WhatsAppVerifyToken:   getEnv("WHATSAPP_VERIFY_TOKEN", ""),
		WhatsAppAppSecret:     getEnv("WHATSAPP_APP_SECRET", ""),
		WhatsAppWindow:        getEnvAsDuration("WHATSAPP_WINDOW", 24*time.Hour),

		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether ENV selects the production profile.
func (c *Config) IsProduction() bool {
	return isProduction(c.Environment)
}

func isProduction(env string) bool {
	return strings.ToLower(env) == "production"
}

// Validate checks that every selected backend has its settings. Production
// additionally requires the secrets that guard public endpoints.
func (c *Config) Validate() error {
	missing := []string{}

	switch c.ConversationStore {
	case "memory", "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case "redis":
		if c.RedisURL == "" {
			missing = append(missing, "REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown CONVERSATION_STORE %q", c.ConversationStore)
	}

	switch c.IndexProvider {
	case "", "none":
	case "qdrant":
		if c.QdrantURL == "" {
			missing = append(missing, "QDRANT_URL")
		}
	case "pinecone":
		if c.PineconeAPIKey == "" {
			missing = append(missing, "PINECONE_API_KEY")
		}
		if c.PineconeIndexHost == "" {
			missing = append(missing, "PINECONE_INDEX_HOST")
		}
	default:
		return fmt.Errorf("unknown INDEX_PROVIDER %q", c.IndexProvider)
	}

	if c.WhatsAppAccessToken != "" && c.WhatsAppPhoneNumberID == "" {
		missing = append(missing, "WHATSAPP_PHONE_NUMBER_ID")
	}

	// Validation for production environments
	if c.IsProduction() {
		if c.JWTSecretKey == "" {
			missing = append(missing, "JWT_SECRET_KEY")
		}
		if c.WhatsAppAccessToken != "" && c.WhatsAppAppSecret == "" {
			missing = append(missing, "WHATSAPP_APP_SECRET")
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missing)
	}
	if c.ContextTurns < 0 || c.RetrievalTopK < 0 {
		return fmt.Errorf("CONTEXT_TURNS and RAG_TOPK cannot be negative")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive, got %d", c.RateLimitPerMinute)
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}

// getEnvAsDuration accepts Go duration syntax ("90s") or plain seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(strValue); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("Warning: could not parse env var %s as duration. Using default value.", key)
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as bool. Using default value.", key)
		return defaultValue
	}
	return b
}

// getEnvAsList splits a comma separated env var, dropping empty entries.
func getEnvAsList(key string) []string {
	var out []string
	for _, v := range strings.Split(getEnv(key, ""), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
