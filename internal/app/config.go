package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/danh0999/Hokori-Learning-sub002/internal/db"
)

// Config stores runtime configuration loaded from environment variables.
type Config struct {
	AppEnv            string   `validate:"required"`
	HTTPAddr          string   `validate:"required"`
	DraftStoreDriver  string   `validate:"oneof=memory sqlite postgres"`
	DraftStoreDSN     string   `validate:"required_if=DraftStoreDriver postgres"`
	DBMaxOpenConns    int      `validate:"min=1"`
	DBMaxIdleConns    int      `validate:"min=0"`
	DBConnMaxLifeMins int      `validate:"min=0"`
	MaxUploadMB       int      `validate:"min=1,max=100"`
	DefaultLang       string   `validate:"oneof=vi en ja"`
	CORSOrigins       []string `validate:"dive,required"`
	CSRFEnforced      bool
	ImportRateLimit   int `validate:"min=1"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DRAFT_STORE_DRIVER", "memory")
	v.SetDefault("DRAFT_STORE_DSN", "")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 25)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	v.SetDefault("MAX_UPLOAD_MB", 10)
	v.SetDefault("DEFAULT_LANG", "vi")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("CSRF_ENFORCED", false)
	v.SetDefault("IMPORT_RATE_LIMIT_PER_MINUTE", 30)
}

// LoadConfig reads an optional .env file, then the process environment.
func LoadConfig() (Config, error) {
	envFile := strings.TrimSpace(os.Getenv("HOKORI_ENV_FILE"))
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("stat %s: %w", envFile, err)
	}

	v := viper.New()
	defaults(v)
	v.AutomaticEnv()
	return configFrom(v)
}

func configFrom(v *viper.Viper) (Config, error) {
	cfg := Config{
		AppEnv:            strings.TrimSpace(v.GetString("APP_ENV")),
		HTTPAddr:          strings.TrimSpace(v.GetString("HTTP_ADDR")),
		DraftStoreDriver:  strings.ToLower(strings.TrimSpace(v.GetString("DRAFT_STORE_DRIVER"))),
		DraftStoreDSN:     strings.TrimSpace(v.GetString("DRAFT_STORE_DSN")),
		DBMaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
		DBConnMaxLifeMins: v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES"),
		MaxUploadMB:       v.GetInt("MAX_UPLOAD_MB"),
		DefaultLang:       strings.ToLower(strings.TrimSpace(v.GetString("DEFAULT_LANG"))),
		CORSOrigins:       splitList(v.GetString("CORS_ORIGINS")),
		CSRFEnforced:      v.GetBool("CSRF_ENFORCED"),
		ImportRateLimit:   v.GetInt("IMPORT_RATE_LIMIT_PER_MINUTE"),
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func (c Config) PoolConfig() db.PoolConfig {
	return db.PoolConfig{
		MaxOpenConns:    c.DBMaxOpenConns,
		MaxIdleConns:    c.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(c.DBConnMaxLifeMins) * time.Minute,
	}
}

func splitList(v string) []string {
	out := make([]string, 0)
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
