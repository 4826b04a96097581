package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

func String(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func Int(key string, fallback int) int {
	v, err := strconv.Atoi(String(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func Bool(key string, fallback bool) bool {
	switch strings.TrimSpace(strings.ToLower(os.Getenv(key))) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func Port(key, fallback string) (string, error) {
	v := String(key, fallback)
	p, err := strconv.Atoi(v)
	if err != nil || p < 1 || p > 65535 {
		return "", fmt.Errorf("%s must be a valid TCP port (got %q)", key, v)
	}
	return v, nil
}

// Minutes reads a positive integer minute count.
func Minutes(key string, fallback int) time.Duration {
	v := Int(key, fallback)
	if v <= 0 {
		v = fallback
	}
	return time.Duration(v) * time.Minute
}

func List(key, fallback string) []string {
	raw := String(key, fallback)
	items := strings.Split(raw, ",")
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Config is the dashboard's full runtime configuration, read once at
// startup.
type Config struct {
	ServiceName string
	Port        string
	BackendURL  string
	LoginPath   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SessionTTL    time.Duration
	RememberMeTTL time.Duration

	RateLimitPerMinute int
	RateLimitPrefix    string
	RateLimitFailOpen  bool

	BodyLimitBytes int64
	RequestTimeout time.Duration

	CORSAllowedOrigins   []string
	CORSAllowedMethods   []string
	CORSAllowedHeaders   []string
	CORSAllowCredentials bool
	CORSMaxAge           time.Duration
}

// Load assembles the Config from the environment. Only the listen port can
// fail validation; everything else falls back to a default.
func Load() (Config, error) {
	port, err := Port("PORT", "8090")
	if err != nil {
		return Config{}, err
	}
	return Config{
		ServiceName: String("SERVICE_NAME", "clinicdash"),
		Port:        port,
		BackendURL:  String("CLINIC_BACKEND_URL", "http://clinic-backend:8000"),
		LoginPath:   String("LOGIN_PATH", "/login"),

		RedisAddr:     strings.TrimSpace(String("REDIS_ADDR", "")),
		RedisPassword: String("REDIS_PASSWORD", ""),
		RedisDB:       Int("REDIS_DB", 0),

		SessionTTL:    Minutes("SESSION_TTL_MINUTES", 1440),
		RememberMeTTL: Minutes("REMEMBER_ME_TTL_MINUTES", 10080),

		RateLimitPerMinute: Int("RATE_LIMIT_PER_MINUTE", 120),
		RateLimitPrefix:    String("RATE_LIMIT_PREFIX", "rl"),
		RateLimitFailOpen:  Bool("RATE_LIMIT_FAIL_OPEN", true),

		BodyLimitBytes: int64(Int("REQUEST_BODY_LIMIT_BYTES", 10<<20)),
		RequestTimeout: time.Duration(Int("REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,

		CORSAllowedOrigins:   List("CORS_ALLOWED_ORIGINS", ""),
		CORSAllowedMethods:   List("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"),
		CORSAllowedHeaders:   List("CORS_ALLOWED_HEADERS", "Content-Type,X-Request-Id"),
		CORSAllowCredentials: Bool("CORS_ALLOW_CREDENTIALS", true),
		CORSMaxAge:           time.Duration(Int("CORS_MAX_AGE_SECONDS", 600)) * time.Second,
	}, nil
}
