package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBConnectTimeout  time.Duration
	RedisURL          string
	NATSURL           string
	NATSSubject       string
	PistonURL         string
	CompileTimeout    time.Duration
	RunTimeout        time.Duration
	RunMemoryLimit    int64
	PistonHTTPTimeout time.Duration
	PistonRetries     int
	CatalogCacheTTL   time.Duration
	CORSAllowOrigins  string
	SubmitRateLimit   int
	DefaultLanguage   string
	DefaultVersion    string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CODEQUEST")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Code Quest API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8000")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.connect_timeout", "1m")
	v.SetDefault("nats.subject", "codequest.solutions.graded")
	v.SetDefault("piston.url", "https://emkc.org/api/v2/piston/execute")
	v.SetDefault("piston.compile_timeout_ms", 10000)
	v.SetDefault("piston.run_timeout_ms", 3000)
	v.SetDefault("piston.run_memory_limit", -1)
	v.SetDefault("piston.http_timeout", "30s")
	v.SetDefault("piston.retries", 0)
	v.SetDefault("catalog.cache_ttl", "5m")
	v.SetDefault("cors.allow_origins", "http://localhost:3000,https://code-quest-rosy.vercel.app")
	v.SetDefault("submit.rate_limit", 30)
	v.SetDefault("default.language", "python")
	v.SetDefault("default.version", "3.10.0")

	cacheTTL, err := parseDuration(v.GetString("catalog.cache_ttl"), 5*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid catalog cache ttl: %w", err)
	}

	httpTimeout, err := parseDuration(v.GetString("piston.http_timeout"), 30*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid piston http timeout: %w", err)
	}

	connLifetime, err := parseDuration(v.GetString("database.conn_max_lifetime"), 30*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid database connection lifetime: %w", err)
	}

	connectTimeout, err := parseDuration(v.GetString("database.connect_timeout"), time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid database connect timeout: %w", err)
	}

	compileMs := v.GetInt("piston.compile_timeout_ms")
	if compileMs <= 0 {
		compileMs = 10000
	}
	runMs := v.GetInt("piston.run_timeout_ms")
	if runMs <= 0 {
		runMs = 3000
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		DBMaxOpenConns:    v.GetInt("database.max_open_conns"),
		DBMaxIdleConns:    v.GetInt("database.max_idle_conns"),
		DBConnMaxLifetime: connLifetime,
		DBConnectTimeout:  connectTimeout,
		RedisURL:          v.GetString("redis.url"),
		NATSURL:           v.GetString("nats.url"),
		NATSSubject:       v.GetString("nats.subject"),
		PistonURL:         v.GetString("piston.url"),
		CompileTimeout:    time.Duration(compileMs) * time.Millisecond,
		RunTimeout:        time.Duration(runMs) * time.Millisecond,
		RunMemoryLimit:    v.GetInt64("piston.run_memory_limit"),
		PistonHTTPTimeout: httpTimeout,
		PistonRetries:     v.GetInt("piston.retries"),
		CatalogCacheTTL:   cacheTTL,
		CORSAllowOrigins:  v.GetString("cors.allow_origins"),
		SubmitRateLimit:   v.GetInt("submit.rate_limit"),
		DefaultLanguage:   strings.ToLower(v.GetString("default.language")),
		DefaultVersion:    v.GetString("default.version"),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}

	if cfg.PistonURL == "" {
		return Config{}, fmt.Errorf("piston url must be provided")
	}

	if cfg.PistonRetries < 0 {
		cfg.PistonRetries = 0
	}

	if cfg.SubmitRateLimit <= 0 {
		cfg.SubmitRateLimit = 30
	}

	return cfg, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}
