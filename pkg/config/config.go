package config

import (
	"errors"
	"os"
	"strings"
	"time"
	"unicode/utf8"

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
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Data     DataConfig
	Lock     LockConfig
	Undo     UndoConfig
	Cache    CacheConfig
	History  HistoryConfig
	Jobs     JobsConfig
	Reports  ReportsConfig
	Auth     AuthConfig
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
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DataConfig locates the planning document and its backups.
type DataConfig struct {
	Dir            string
	BackupEnabled  bool
	BackupSchedule string
	BackupKeep     int
}

// LockConfig tunes the shared file lock.
type LockConfig struct {
	Timeout       time.Duration
	SweepSchedule string
}

type UndoConfig struct {
	MaxStates int
}

// CacheConfig gates redis caching of statistics and validation reports.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// HistoryConfig toggles persisting assignment runs to postgres.
type HistoryConfig struct {
	Enabled bool
}

// JobsConfig sizes the background job queue.
type JobsConfig struct {
	Workers int
	Retries int
}

// ReportsConfig controls published report files and their signed download links.
type ReportsConfig struct {
	Dir             string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	Retention       time.Duration
	CleanupSchedule string
	CSVDelimiter    rune
	CSVBOM          bool
}

// AccountConfig is a statically configured login.
type AccountConfig struct {
	Username     string
	PasswordHash string
	Role         string
}

type AuthConfig struct {
	Accounts []AccountConfig
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
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
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
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	backupKeep := v.GetInt("BACKUP_KEEP")
	if backupKeep <= 0 {
		backupKeep = 10
	}
	cfg.Data = DataConfig{
		Dir:            v.GetString("DATA_DIR"),
		BackupEnabled:  v.GetBool("ENABLE_AUTO_BACKUP"),
		BackupSchedule: v.GetString("BACKUP_SCHEDULE"),
		BackupKeep:     backupKeep,
	}

	cfg.Lock = LockConfig{
		Timeout:       parseDuration(v.GetString("LOCK_TIMEOUT"), time.Hour),
		SweepSchedule: v.GetString("LOCK_SWEEP_SCHEDULE"),
	}

	maxStates := v.GetInt("UNDO_MAX_STATES")
	if maxStates <= 0 {
		maxStates = 50
	}
	cfg.Undo = UndoConfig{MaxStates: maxStates}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 10*time.Minute),
	}

	cfg.History = HistoryConfig{Enabled: v.GetBool("ENABLE_RUN_HISTORY")}

	cfg.Jobs = JobsConfig{
		Workers: v.GetInt("JOBS_WORKERS"),
		Retries: v.GetInt("JOBS_RETRIES"),
	}

	cfg.Reports = ReportsConfig{
		Dir:             v.GetString("REPORTS_DIR"),
		SignedURLSecret: v.GetString("REPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("REPORTS_SIGNED_URL_TTL"), time.Hour),
		Retention:       parseDuration(v.GetString("REPORTS_RETENTION"), 24*time.Hour),
		CleanupSchedule: v.GetString("REPORTS_CLEANUP_SCHEDULE"),
		CSVDelimiter:    firstRune(v.GetString("REPORTS_CSV_DELIMITER"), ','),
		CSVBOM:          v.GetBool("REPORTS_CSV_BOM"),
	}

	cfg.Auth = AuthConfig{Accounts: accounts(v)}

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
	v.SetDefault("DB_NAME", "seatplan")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("ENABLE_AUTO_BACKUP", true)
	v.SetDefault("BACKUP_SCHEDULE", "@every 5m")
	v.SetDefault("BACKUP_KEEP", 10)

	v.SetDefault("LOCK_TIMEOUT", "1h")
	v.SetDefault("LOCK_SWEEP_SCHEDULE", "@every 5m")
	v.SetDefault("UNDO_MAX_STATES", 50)

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_TTL", "10m")
	v.SetDefault("ENABLE_RUN_HISTORY", false)

	v.SetDefault("JOBS_WORKERS", 1)
	v.SetDefault("JOBS_RETRIES", 3)

	v.SetDefault("REPORTS_DIR", "./data/reports")
	v.SetDefault("REPORTS_SIGNED_URL_SECRET", "dev_reports_secret")
	v.SetDefault("REPORTS_SIGNED_URL_TTL", "1h")
	v.SetDefault("REPORTS_RETENTION", "24h")
	v.SetDefault("REPORTS_CLEANUP_SCHEDULE", "@every 1h")
	v.SetDefault("REPORTS_CSV_DELIMITER", ",")
	v.SetDefault("REPORTS_CSV_BOM", false)

	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD_HASH", "")
	v.SetDefault("VIEWER_USERNAME", "")
	v.SetDefault("VIEWER_PASSWORD_HASH", "")
}

// accounts collects the configured logins; entries without a password hash are skipped.
func accounts(v *viper.Viper) []AccountConfig {
	candidates := []AccountConfig{
		{Username: v.GetString("ADMIN_USERNAME"), PasswordHash: v.GetString("ADMIN_PASSWORD_HASH"), Role: "ADMIN"},
		{Username: v.GetString("VIEWER_USERNAME"), PasswordHash: v.GetString("VIEWER_PASSWORD_HASH"), Role: "VIEWER"},
	}
	result := make([]AccountConfig, 0, len(candidates))
	for _, acc := range candidates {
		if acc.Username == "" || acc.PasswordHash == "" {
			continue
		}
		result = append(result, acc)
	}
	return result
}

func firstRune(raw string, fallback rune) rune {
	r, size := utf8.DecodeRuneInString(raw)
	if size == 0 || r == utf8.RuneError {
		return fallback
	}
	return r
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
