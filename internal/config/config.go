package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Env      string
	Mode     Mode
	HTTPAddr string

	DBDriver string
	DBDSN    string

	BlobBasePath string

	AuthHMACSecret string
	TokenTTL       time.Duration
	AdminUser      string
	AdminPassHash  string // bcrypt

	CORSOrigins []string

	RewardsBaseURL string
	RewardsTimeout time.Duration

	// RedisURL enables the snapshot cache when set.
	RedisURL    string
	SnapshotTTL time.Duration

	ReportDefaultsPath string
	FontPath           string
	ExportDPI          float64
}

func defaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("MODE", string(ModeOffline))
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_DSN", "")
	v.SetDefault("BLOB_BASE_PATH", "./data")
	v.SetDefault("AUTH_HMAC_SECRET", "supersecret-dev-key")
	v.SetDefault("TOKEN_TTL", 8*time.Hour)
	v.SetDefault("ADMIN_USER", "admin")
	v.SetDefault("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("REWARDS_BASE_URL", "https://api.dahandin.com/openapi/v1")
	v.SetDefault("REWARDS_TIMEOUT", 10*time.Second)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("SNAPSHOT_TTL", 5*time.Minute)
	v.SetDefault("REPORT_DEFAULTS_PATH", "")
	v.SetDefault("FONT_PATH", "")
	v.SetDefault("EXPORT_DPI", 150.0)
}

// Load reads configuration from the environment. ENV (DEV by default) picks
// an optional dotenv file at <dir>/config/.env.<env>; variables already set
// in the environment win over the file.
func Load(dir string) (Config, error) {
	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	dotEnvPath := filepath.Join(dir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return Config{}, errors.Wrapf(err, "config.godotenv(%s)", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, errors.Wrapf(err, "config.os.Stat(%s)", dotEnvPath)
	}

	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	cfg := Config{
		Env:                strings.ToUpper(env),
		Mode:               Mode(strings.ToLower(v.GetString("MODE"))),
		HTTPAddr:           v.GetString("HTTP_ADDR"),
		DBDriver:           v.GetString("DB_DRIVER"),
		DBDSN:              v.GetString("DB_DSN"),
		BlobBasePath:       v.GetString("BLOB_BASE_PATH"),
		AuthHMACSecret:     v.GetString("AUTH_HMAC_SECRET"),
		TokenTTL:           v.GetDuration("TOKEN_TTL"),
		AdminUser:          v.GetString("ADMIN_USER"),
		AdminPassHash:      v.GetString("ADMIN_PASS_HASH"),
		CORSOrigins:        csv(v.GetString("CORS_ORIGINS")),
		RewardsBaseURL:     strings.TrimSuffix(v.GetString("REWARDS_BASE_URL"), "/"),
		RewardsTimeout:     v.GetDuration("REWARDS_TIMEOUT"),
		RedisURL:           v.GetString("REDIS_URL"),
		SnapshotTTL:        v.GetDuration("SNAPSHOT_TTL"),
		ReportDefaultsPath: v.GetString("REPORT_DEFAULTS_PATH"),
		FontPath:           v.GetString("FONT_PATH"),
		ExportDPI:          v.GetFloat64("EXPORT_DPI"),
	}
	if cfg.Mode != ModeOnline {
		cfg.Mode = ModeOffline
	}
	switch cfg.DBDriver {
	case "sqlite", "postgres":
	default:
		return Config{}, errors.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.ExportDPI <= 0 {
		return Config{}, errors.Errorf("EXPORT_DPI must be positive, got %v", cfg.ExportDPI)
	}
	return cfg, nil
}

func csv(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
