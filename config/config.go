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
	Port    string
	GinMode string
	DBUrl   string
	// Web3Forms relay
	Web3FormsEndpoint  string
	Web3FormsAccessKey string
	Web3FormsTimeout   time.Duration
	// Contact form behaviour
	ContactSiteName      string
	ContactFallbackError string
	ContactFallbackEmail string
	ContactFormTTL       time.Duration
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds    int
	RateLimitContactThreshold int
	RateLimitGlobalThreshold  int
	// Admin API
	AdminJWTSecret string
	// CORS
	AllowedOrigins []string
	// Content collections
	ContentRoot      string
	ContentAssetsDir string
}

const (
	DefaultWeb3FormsEndpoint    = "https://api.web3forms.com/submit"
	DefaultContactSiteName      = "Código Obsidiana"
	DefaultContactFallbackError = "Error al enviar el formulario. Por favor, intenta de nuevo."
	DefaultContactFallbackEmail = "ariel.molina.dev@gmail.com"
)

func LoadConfig() (*Config, error) {
	// .env is optional; only present on local machines.
	_ = godotenv.Load()

	cfg := &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),
		DBUrl:   getEnv("DATABASE_URL", ""),
		// Web3Forms
		Web3FormsEndpoint:  strings.TrimSpace(getEnv("WEB3FORMS_ENDPOINT", DefaultWeb3FormsEndpoint)),
		Web3FormsAccessKey: strings.TrimSpace(getEnv("WEB3FORMS_ACCESS_KEY", "")),
		Web3FormsTimeout:   time.Duration(getEnvInt("WEB3FORMS_TIMEOUT_SECONDS", 10)) * time.Second,
		// Contact form
		ContactSiteName:      getEnv("CONTACT_SITE_NAME", DefaultContactSiteName),
		ContactFallbackError: getEnv("CONTACT_FALLBACK_ERROR", DefaultContactFallbackError),
		ContactFallbackEmail: strings.TrimPrefix(getEnv("CONTACT_FALLBACK_EMAIL", DefaultContactFallbackEmail), "mailto:"),
		ContactFormTTL:       time.Duration(getEnvInt("CONTACT_FORM_TTL_MINUTES", 30)) * time.Minute,
		// Redis/Upstash
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		// Rate limiting
		RateLimitWindowSeconds:    getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitContactThreshold: getEnvInt("RATE_LIMIT_CONTACT_THRESHOLD", 5),
		RateLimitGlobalThreshold:  getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
		// Admin
		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
		// CORS
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{
			"https://codigo-obsidiana.dev",
			"https://www.codigo-obsidiana.dev",
		}),
		// Content
		ContentRoot:      getEnv("CONTENT_ROOT", "./src/content"),
		ContentAssetsDir: getEnv("CONTENT_ASSETS_DIR", ""),
	}

	if cfg.Web3FormsAccessKey == "" {
		log.Println("WARNING: WEB3FORMS_ACCESS_KEY is missing. Contact submissions will be rejected.")
	}
	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL not configured. Submission audit log and content index are disabled.")
	}
	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvList splits a comma separated variable, dropping empty items.
func getEnvList(key string, fallback []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimRight(strings.TrimSpace(item), "/"); item != "" {
			out = append(out, item)
		}
	}
	return out
}
