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

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Uploads       UploadsConfig
	Invoices      InvoicesConfig
	Notifications NotificationsConfig
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

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
	Issuer            string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// UploadsConfig controls file upload storage and validation.
type UploadsConfig struct {
	StorageDir        string
	MaxFileSizeBytes  int64
	HomeworkMIMETypes []string
	PhotoMIMETypes    []string
}

// InvoicesConfig configures asynchronous invoice PDF generation.
type InvoicesConfig struct {
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	WorkerConcurrency int
	WorkerRetries     int
}

// NotificationsConfig tunes the parent notification feed.
type NotificationsConfig struct {
	CacheTTL       time.Duration
	AbsenceWindow  time.Duration
	GoodNoteMin    float64
	ConcernNoteMax float64
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

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
		Issuer:            v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxUploadSize := v.GetInt64("UPLOADS_MAX_FILE_SIZE")
	if maxUploadSize <= 0 {
		maxUploadSize = 10 * 1024 * 1024
	}
	cfg.Uploads = UploadsConfig{
		StorageDir:        v.GetString("UPLOADS_STORAGE_DIR"),
		MaxFileSizeBytes:  maxUploadSize,
		HomeworkMIMETypes: splitAndTrim(v.GetString("UPLOADS_HOMEWORK_MIME_TYPES")),
		PhotoMIMETypes:    splitAndTrim(v.GetString("UPLOADS_PHOTO_MIME_TYPES")),
	}

	cfg.Invoices = InvoicesConfig{
		StorageDir:        v.GetString("INVOICES_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("INVOICES_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("INVOICES_SIGNED_URL_TTL"), 30*time.Minute),
		WorkerConcurrency: v.GetInt("INVOICES_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("INVOICES_WORKER_RETRIES"),
	}

	cfg.Notifications = NotificationsConfig{
		CacheTTL:       parseDuration(v.GetString("NOTIFICATIONS_CACHE_TTL"), 5*time.Minute),
		AbsenceWindow:  parseDuration(v.GetString("NOTIFICATIONS_ABSENCE_WINDOW"), 48*time.Hour),
		GoodNoteMin:    v.GetFloat64("NOTIFICATIONS_GOOD_NOTE_MIN"),
		ConcernNoteMax: v.GetFloat64("NOTIFICATIONS_CONCERN_NOTE_MAX"),
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
	v.SetDefault("DB_NAME", "learnup")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")
	v.SetDefault("JWT_ISSUER", "learnup-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("UPLOADS_STORAGE_DIR", "./uploads")
	v.SetDefault("UPLOADS_MAX_FILE_SIZE", 10*1024*1024)
	v.SetDefault("UPLOADS_HOMEWORK_MIME_TYPES", "application/pdf,application/msword,application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	v.SetDefault("UPLOADS_PHOTO_MIME_TYPES", "image/jpeg,image/png")

	v.SetDefault("INVOICES_STORAGE_DIR", "./invoices")
	v.SetDefault("INVOICES_SIGNED_URL_SECRET", "dev_invoices_secret")
	v.SetDefault("INVOICES_SIGNED_URL_TTL", "30m")
	v.SetDefault("INVOICES_WORKER_CONCURRENCY", 1)
	v.SetDefault("INVOICES_WORKER_RETRIES", 3)

	v.SetDefault("NOTIFICATIONS_CACHE_TTL", "5m")
	v.SetDefault("NOTIFICATIONS_ABSENCE_WINDOW", "48h")
	v.SetDefault("NOTIFICATIONS_GOOD_NOTE_MIN", 16.0)
	v.SetDefault("NOTIFICATIONS_CONCERN_NOTE_MAX", 10.0)
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
