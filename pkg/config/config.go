package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Admin    AdminConfig
	Engine   EngineConfig
	Cache    CacheConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AdminConfig protects the internal event and admin surfaces. Tokens are
// issued by the platform; the engine only validates them. The static token
// hash is a bcrypt fallback for service-to-service callers without a JWT.
type AdminConfig struct {
	JWTSecret       string
	StaticTokenHash string
}

// EngineConfig tunes the recomputation pipeline.
type EngineConfig struct {
	Workers          int
	BatchSize        int
	PollInterval     time.Duration
	MaxAttempts      int
	RetryBackoff     time.Duration
	SyncTimeout      time.Duration
	BacklogThreshold int64
}

// CacheConfig governs the Redis read cache for ranked recommendation lists
// and admin statistics.
type CacheConfig struct {
	Enabled           bool
	RecommendationTTL time.Duration
	StatsTTL          time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Admin = AdminConfig{
		JWTSecret:       v.GetString("ADMIN_JWT_SECRET"),
		StaticTokenHash: v.GetString("ADMIN_STATIC_TOKEN_HASH"),
	}

	cfg.Engine = EngineConfig{
		Workers:          v.GetInt("ENGINE_WORKERS"),
		BatchSize:        v.GetInt("ENGINE_BATCH_SIZE"),
		PollInterval:     parseDuration(v.GetString("ENGINE_POLL_INTERVAL"), 5*time.Second),
		MaxAttempts:      v.GetInt("ENGINE_MAX_ATTEMPTS"),
		RetryBackoff:     parseDuration(v.GetString("ENGINE_RETRY_BACKOFF"), 30*time.Second),
		SyncTimeout:      parseDuration(v.GetString("ENGINE_SYNC_TIMEOUT"), 2*time.Second),
		BacklogThreshold: v.GetInt64("ENGINE_BACKLOG_THRESHOLD"),
	}

	cfg.Cache = CacheConfig{
		Enabled:           v.GetBool("ENABLE_CACHE"),
		RecommendationTTL: parseDuration(v.GetString("CACHE_RECOMMENDATION_TTL"), 5*time.Minute),
		StatsTTL:          parseDuration(v.GetString("CACHE_STATS_TTL"), time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "talent_marketplace")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ADMIN_JWT_SECRET", "dev_secret")
	v.SetDefault("ADMIN_STATIC_TOKEN_HASH", "")

	v.SetDefault("ENGINE_WORKERS", 2)
	v.SetDefault("ENGINE_BATCH_SIZE", 25)
	v.SetDefault("ENGINE_POLL_INTERVAL", "5s")
	v.SetDefault("ENGINE_MAX_ATTEMPTS", 5)
	v.SetDefault("ENGINE_RETRY_BACKOFF", "30s")
	v.SetDefault("ENGINE_SYNC_TIMEOUT", "2s")
	v.SetDefault("ENGINE_BACKLOG_THRESHOLD", 10000)

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_RECOMMENDATION_TTL", "5m")
	v.SetDefault("CACHE_STATS_TTL", "1m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
