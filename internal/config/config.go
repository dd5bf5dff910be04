package config

import (
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Storefront
	Port         string
	APIOrigin    string // empty runs the storefront against the built-in catalog
	APITimeout   time.Duration
	CSRFKey      []byte
	SessionKey   []byte
	CookieDomain string
	CookieSecure bool
	SessionIdle  time.Duration

	// Reference lessons backend and lessonctl
	APIPort   string
	DBPath    string
	ImagesDir string

	LogLevel slog.Level
}

// StaticMode reports whether no lessons backend is configured.
func (c *Config) StaticMode() bool {
	return c.APIOrigin == ""
}

func LoadConfig() (*Config, error) {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to read .env file", "error", err)
	}

	cfg := &Config{
		Port:         getEnv("PORT", "8585"),
		APIOrigin:    strings.TrimRight(getEnv("API_ORIGIN", ""), "/"),
		APITimeout:   getDuration("API_TIMEOUT", 10*time.Second),
		CookieDomain: getEnv("COOKIE_DOMAIN", ""),
		CookieSecure: getEnv("COOKIE_SECURE", "false") == "true",
		SessionIdle:  getDuration("SESSION_IDLE", 30*time.Minute),
		APIPort:      getEnv("API_PORT", "8686"),
		DBPath:       getEnv("DB_PATH", "./lessons.db"),
		ImagesDir:    getEnv("IMAGES_DIR", "./images"),
		LogLevel:     parseLevel(getEnv("LOG_LEVEL", "debug")),
	}

	cfg.CSRFKey = loadKey("CSRF_KEY")
	cfg.SessionKey = loadKey("SESSION_KEY")

	// Make sure ports are valid
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		slog.Error("Invalid PORT environment variable. Falling back to default.", "PORT", os.Getenv("PORT"))
		cfg.Port = "8585"
	}
	if _, err := strconv.Atoi(cfg.APIPort); err != nil {
		slog.Error("Invalid API_PORT environment variable. Falling back to default.", "API_PORT", os.Getenv("API_PORT"))
		cfg.APIPort = "8686"
	}

	return cfg, nil
}

// loadKey decodes a base64 key of at least 32 bytes, or generates a random
// one for development.
func loadKey(name string) []byte {
	keyStr := os.Getenv(name)
	if keyStr == "" {
		slog.Warn(name + " environment variable not set. Generating a random key for development. PLEASE SET " + name + " IN PRODUCTION!")
		return generateRandomBytes(32)
	}
	decodedKey, err := base64.StdEncoding.DecodeString(keyStr)
	if err != nil || len(decodedKey) < 32 {
		slog.Warn(name + " is invalid or too short (min 32 bytes recommended). Generating a random key for development.")
		return generateRandomBytes(32)
	}
	return decodedKey
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Error("Invalid duration in environment. Falling back to default.", "key", key, "value", raw)
		return defaultValue
	}
	return d
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelDebug
	}
	return level
}

// generateRandomBytes generates a random byte slice of specified length
// Uses crypto/rand for secure random numbers.
func generateRandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		slog.Error("Failed to read random bytes", "error", err)
		// Fallback only prevents a panic, never for production use
		fallbackKey := "fallback-insecure-key-" + strconv.FormatInt(time.Now().UnixNano(), 10)
		padded := make([]byte, n)
		copy(padded, fallbackKey)
		return padded
	}
	return b
}
