package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies SPREADWATCH_* environment variable overrides, and
// returns the final Config. An empty path skips the file and runs on defaults.
// The returned Config has NOT been validated; the caller should invoke
// Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	if len(cfg.Assets) == 0 {
		cfg.Assets = DefaultAssets()
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known SPREADWATCH_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty).
func applyEnvOverrides(cfg *Config) {
	// ── Exchanges ──
	setDuration(&cfg.Exchanges.Timeout, "SPREADWATCH_EXCHANGES_TIMEOUT")
	setStr(&cfg.Exchanges.UserAgent, "SPREADWATCH_EXCHANGES_USER_AGENT")

	// ── Scanner ──
	setDuration(&cfg.Scanner.Interval, "SPREADWATCH_SCANNER_INTERVAL")
	setBool(&cfg.Scanner.ExcludeSelfSpread, "SPREADWATCH_SCANNER_EXCLUDE_SELF_SPREAD")
	setStr(&cfg.Scanner.CSVPath, "SPREADWATCH_SCANNER_CSV_PATH")
	setInt(&cfg.Scanner.Concurrency, "SPREADWATCH_SCANNER_CONCURRENCY")

	// ── History ──
	setStr(&cfg.History.ReferenceExchange, "SPREADWATCH_HISTORY_REFERENCE_EXCHANGE")
	setStringSlice(&cfg.History.Tracked, "SPREADWATCH_HISTORY_TRACKED")
	setInt(&cfg.History.Samples, "SPREADWATCH_HISTORY_SAMPLES")
	setDuration(&cfg.History.Interval, "SPREADWATCH_HISTORY_INTERVAL")
	setInt(&cfg.History.MaxPoints, "SPREADWATCH_HISTORY_MAX_POINTS")
	setStr(&cfg.History.ExportPath, "SPREADWATCH_HISTORY_EXPORT_PATH")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "SPREADWATCH_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "SPREADWATCH_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "SPREADWATCH_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "SPREADWATCH_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "SPREADWATCH_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "SPREADWATCH_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "SPREADWATCH_REDIS_TLS_ENABLED")
	setDuration(&cfg.Redis.QuoteTTL, "SPREADWATCH_REDIS_QUOTE_TTL")

	// ── Postgres ──
	setBool(&cfg.Postgres.Enabled, "SPREADWATCH_POSTGRES_ENABLED")
	setStr(&cfg.Postgres.DSN, "SPREADWATCH_POSTGRES_DSN")
	setStr(&cfg.Postgres.DSN, "DATABASE_URL") // compatibility alias
	setStr(&cfg.Postgres.Host, "SPREADWATCH_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "SPREADWATCH_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "SPREADWATCH_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "SPREADWATCH_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "SPREADWATCH_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "SPREADWATCH_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "SPREADWATCH_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "SPREADWATCH_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "SPREADWATCH_POSTGRES_RUN_MIGRATIONS")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "SPREADWATCH_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "SPREADWATCH_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "SPREADWATCH_S3_REGION")
	setStr(&cfg.S3.Bucket, "SPREADWATCH_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "SPREADWATCH_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "SPREADWATCH_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "SPREADWATCH_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "SPREADWATCH_S3_FORCE_PATH_STYLE")
	setStr(&cfg.S3.Prefix, "SPREADWATCH_S3_PREFIX")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "SPREADWATCH_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "SPREADWATCH_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "SPREADWATCH_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "SPREADWATCH_SERVER_API_KEY")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "SPREADWATCH_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "SPREADWATCH_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "SPREADWATCH_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "SPREADWATCH_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "SPREADWATCH_MODE")
	setStr(&cfg.LogLevel, "SPREADWATCH_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
