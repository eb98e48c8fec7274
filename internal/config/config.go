package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix префикс переменных окружения, вложенность через "__"
const EnvPrefix = "INVENTARIS_"

type Config struct {
	API struct {
		BaseURL string        `koanf:"base_url"`
		Timeout time.Duration `koanf:"timeout"`
	} `koanf:"api"`

	Session struct {
		Path string `koanf:"path"`
	} `koanf:"session"`

	Log struct {
		File  string `koanf:"file"`
		Level string `koanf:"level"`
	} `koanf:"log"`

	UI struct {
		Lang string `koanf:"lang"`
	} `koanf:"ui"`

	Backend struct {
		Addr          string        `koanf:"addr"`
		Store         string        `koanf:"store"`
		DSN           string        `koanf:"dsn"`
		JWTSecret     string        `koanf:"jwt_secret"`
		AccessTTL     time.Duration `koanf:"access_ttl"`
		RefreshTTL    time.Duration `koanf:"refresh_ttl"`
		PageSize      int           `koanf:"page_size"`
		AdminUser     string        `koanf:"admin_user"`
		AdminPassword string        `koanf:"admin_password"`
	} `koanf:"backend"`
}

// Defaults значения по умолчанию до наложения файла и окружения
func Defaults() map[string]any {
	return map[string]any{
		"api.base_url":           "http://127.0.0.1:8000/api",
		"api.timeout":            "15s",
		"session.path":           filepath.Join(userDir(os.UserConfigDir), "session.json"),
		"log.file":               filepath.Join(userDir(os.UserCacheDir), "invctl.log"),
		"log.level":              "info",
		"ui.lang":                "id",
		"backend.addr":           ":8000",
		"backend.store":          "memory",
		"backend.dsn":            "",
		"backend.jwt_secret":     "dev-secret-change-me",
		"backend.access_ttl":     "5m",
		"backend.refresh_ttl":    "24h",
		"backend.page_size":      10,
		"backend.admin_user":     "admin",
		"backend.admin_password": "admin123",
	}
}

func userDir(base func() (string, error)) string {
	dir, err := base()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "inventaris")
}

// Load собирает конфиг: defaults -> yaml-файл (если задан) -> INVENTARIS_* переменные.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	// e.g. INVENTARIS_API__BASE_URL, INVENTARIS_BACKEND__JWT_SECRET
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	return cfg, nil
}

// Validate проверяет клиентскую часть конфига
func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url required")
	}
	if c.Session.Path == "" {
		return fmt.Errorf("session.path required")
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	return nil
}

// ValidateBackend проверяет секцию backend
func (c Config) ValidateBackend() error {
	b := c.Backend
	if b.Addr == "" {
		return fmt.Errorf("backend.addr required")
	}
	switch b.Store {
	case "memory":
	case "sqlite", "postgres":
		if b.DSN == "" {
			return fmt.Errorf("backend.dsn required for store %q", b.Store)
		}
	default:
		return fmt.Errorf("backend.store must be memory, sqlite or postgres, got %q", b.Store)
	}
	if b.JWTSecret == "" {
		return fmt.Errorf("backend.jwt_secret required")
	}
	if b.AccessTTL <= 0 || b.RefreshTTL <= 0 {
		return fmt.Errorf("backend token ttls must be positive")
	}
	if b.PageSize <= 0 {
		return fmt.Errorf("backend.page_size must be positive")
	}
	return nil
}
