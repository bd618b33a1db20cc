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

const (
	RemoteBackendPostgrest = "postgrest"
	RemoteBackendPostgres  = "postgres"
	RemoteBackendDisabled  = "disabled"

	AuthProviderSupabase = "supabase"
	AuthProviderFirebase = "firebase"
	AuthProviderHeader   = "header"
)

type Config struct {
	Server    ServerConfig
	App       AppConfig
	Remote    RemoteConfig
	Supabase  SupabaseConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type AppConfig struct {
	Environment string
	LogLevel    string
	LogFormat   string
	Version     string
}

// RemoteConfig selects which backend the remote project store talks to.
type RemoteConfig struct {
	Backend string
	Table   string
}

type SupabaseConfig struct {
	URL           string
	ServiceKey    string
	AnonKey       string
	StorageBucket string
}

type DatabaseConfig struct {
	DSN      string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	Namespace string
}

type AuthConfig struct {
	Provider                string
	FirebaseCredentialsPath string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type CORSConfig struct {
	AllowOrigins []string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 0),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "json"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Remote: RemoteConfig{
			Backend: strings.ToLower(getEnv("REMOTE_BACKEND", RemoteBackendPostgrest)),
			Table:   getEnv("REMOTE_PROJECTS_TABLE", "projects"),
		},
		Supabase: SupabaseConfig{
			URL:           strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
			ServiceKey:    getEnv("SUPABASE_SERVICE_KEY", ""),
			AnonKey:       getEnv("SUPABASE_ANON_KEY", ""),
			StorageBucket: getEnv("SUPABASE_STORAGE_BUCKET", "project-images"),
		},
		Database: DatabaseConfig{
			DSN:      getEnv("DB_DSN", ""),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 2),
		},
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", "localhost:6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvAsInt("REDIS_DB", 0),
			Namespace: getEnv("LOCAL_CACHE_NAMESPACE", "collabhub"),
		},
		Auth: AuthConfig{
			Provider:                strings.ToLower(getEnv("AUTH_PROVIDER", AuthProviderSupabase)),
			FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvAsFloat("RATE_LIMIT_RPS", 5),
			Burst: getEnvAsInt("RATE_LIMIT_BURST", 10),
		},
		CORS: CORSConfig{
			AllowOrigins: getEnvAsList("CORS_ALLOW_ORIGINS", []string{"http://localhost:3000"}),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR is required")
	}

	switch c.Remote.Backend {
	case RemoteBackendPostgrest:
		if c.Supabase.URL == "" || c.Supabase.ServiceKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY are required for REMOTE_BACKEND=%s", c.Remote.Backend)
		}
	case RemoteBackendPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("DB_DSN is required for REMOTE_BACKEND=%s", c.Remote.Backend)
		}
	case RemoteBackendDisabled:
	default:
		return fmt.Errorf("unknown REMOTE_BACKEND %q", c.Remote.Backend)
	}

	switch c.Auth.Provider {
	case AuthProviderSupabase:
		if c.Supabase.URL == "" || c.supabaseAuthKey() == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_ANON_KEY are required for AUTH_PROVIDER=%s", c.Auth.Provider)
		}
	case AuthProviderFirebase:
		if c.Auth.FirebaseCredentialsPath == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required for AUTH_PROVIDER=%s", c.Auth.Provider)
		}
	case AuthProviderHeader:
		if c.IsProduction() {
			return fmt.Errorf("AUTH_PROVIDER=header is not allowed in production")
		}
	default:
		return fmt.Errorf("unknown AUTH_PROVIDER %q", c.Auth.Provider)
	}

	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// SupabaseAuthKey is the key used for GoTrue calls. The anon key is preferred,
// the service key is accepted when it is the only one configured.
func (c *Config) SupabaseAuthKey() string {
	return c.supabaseAuthKey()
}

func (c *Config) supabaseAuthKey() string {
	if c.Supabase.AnonKey != "" {
		return c.Supabase.AnonKey
	}
	return c.Supabase.ServiceKey
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %g", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
