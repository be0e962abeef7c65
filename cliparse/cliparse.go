package cliparse

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Port           int
	DatabaseURL    string
	GameConfigPath string
	AdminKey       string
	LogLevel       slog.Level
}

// ParseFlags reads flags, falling back to environment variables and .env
func ParseFlags(args []string) (Config, error) {
	// .env is optional; real environment variables win over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	fs := pflag.NewFlagSet("biodex", pflag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntP("port", "p", 3318, "Server port")
	fs.StringP("database-url", "d", "", "PostgreSQL/PostGIS connection string")

	fs.String("game-config", "", "Game settings file (YAML), reloadable at runtime")
	fs.String("log-level", "info", "Log level (debug, info, warn, error)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.String("admin-key", "", "Admin key for operator endpoints (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("bind flags: %w", err)
	}

	cfg := Config{
		Port:           v.GetInt("port"),
		DatabaseURL:    v.GetString("database-url"),
		GameConfigPath: v.GetString("game-config"),
		AdminKey:       v.GetString("admin-key"),
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, errors.New("invalid port (use -p or PORT env)")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("log-level"))); err != nil {
		return Config{}, fmt.Errorf("invalid log level: %w", err)
	}

	return cfg, nil
}
