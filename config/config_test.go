package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://example.supabase.co/")
	t.Setenv("SUPABASE_SERVICE_KEY", "service")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, RemoteBackendPostgrest, cfg.Remote.Backend)
	assert.Equal(t, "projects", cfg.Remote.Table)
	assert.Equal(t, "https://example.supabase.co", cfg.Supabase.URL)
	assert.Equal(t, AuthProviderSupabase, cfg.Auth.Provider)
	assert.Equal(t, "service", cfg.SupabaseAuthKey())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REMOTE_BACKEND", "Postgres")
	t.Setenv("DB_DSN", "postgres://localhost/collabhub")
	t.Setenv("AUTH_PROVIDER", "header")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("SERVER_WRITE_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, RemoteBackendPostgres, cfg.Remote.Backend)
	assert.Equal(t, AuthProviderHeader, cfg.Auth.Provider)
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowOrigins)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
}

func validConfig() *Config {
	return &Config{
		Server:    ServerConfig{Port: "8080"},
		App:       AppConfig{Environment: "development"},
		Remote:    RemoteConfig{Backend: RemoteBackendDisabled},
		Redis:     RedisConfig{Addr: "localhost:6379"},
		Auth:      AuthConfig{Provider: AuthProviderHeader},
		RateLimit: RateLimitConfig{RPS: 1, Burst: 1},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing redis", func(c *Config) { c.Redis.Addr = "" }, "REDIS_ADDR"},
		{"unknown backend", func(c *Config) { c.Remote.Backend = "mongo" }, "unknown REMOTE_BACKEND"},
		{"postgrest without keys", func(c *Config) { c.Remote.Backend = RemoteBackendPostgrest }, "SUPABASE_SERVICE_KEY"},
		{"postgres without dsn", func(c *Config) { c.Remote.Backend = RemoteBackendPostgres }, "DB_DSN"},
		{"firebase without credentials", func(c *Config) { c.Auth.Provider = AuthProviderFirebase }, "FIREBASE_CREDENTIALS_PATH"},
		{"supabase auth without url", func(c *Config) { c.Auth.Provider = AuthProviderSupabase }, "SUPABASE_ANON_KEY"},
		{"header auth in production", func(c *Config) { c.App.Environment = "production" }, "not allowed in production"},
		{"zero burst", func(c *Config) { c.RateLimit.Burst = 0 }, "RATE_LIMIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSupabaseAuthKey_PrefersAnonKey(t *testing.T) {
	cfg := validConfig()
	cfg.Supabase.ServiceKey = "service"
	cfg.Supabase.AnonKey = "anon"
	assert.Equal(t, "anon", cfg.SupabaseAuthKey())
}
