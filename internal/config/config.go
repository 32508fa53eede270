package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// SidecarName — файл рядом с исполняемым, хранит каталог помесячных баз.
	SidecarName = "dispatch.yaml"
	// legacySidecarName — старый формат: путь к каталогу одной строкой.
	legacySidecarName = ".db_dir"
)

type Config struct {
	AppHost  string
	HTTPPort string
	AppEnv   string
	LogLevel string

	// BaseDir — каталог с app.db и app_YYYY_MM.db.
	BaseDir string
	// SidecarPath — откуда читается и куда сохраняется BaseDir.
	SidecarPath string

	PollInterval time.Duration

	// Login/Password — учётные данные оператора для CLI-команд.
	Login    string
	Password string
}

type sidecar struct {
	DBDir string `yaml:"db_dir"`
}

func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg := &Config{
		AppHost:     getEnv("APP_HOST", "127.0.0.1"),
		HTTPPort:    firstEnv("APP_PORT", "HTTP_PORT", "8097"),
		AppEnv:      getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		SidecarPath: getEnv("DISPATCH_SIDECAR", filepath.Join(AppDir(), SidecarName)),
		Login:       getEnv("DISPATCH_LOGIN", ""),
		Password:    getEnv("DISPATCH_PASSWORD", ""),
	}

	poll, err := time.ParseDuration(getEnv("POLL_INTERVAL", "3s"))
	if err != nil {
		return nil, fmt.Errorf("config: POLL_INTERVAL: %w", err)
	}
	cfg.PollInterval = poll

	if dir := os.Getenv("DISPATCH_DB_DIR"); dir != "" {
		cfg.BaseDir = dir
	} else {
		cfg.BaseDir = LoadBaseDir(cfg.SidecarPath)
	}
	abs, err := filepath.Abs(cfg.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("config: base dir: %w", err)
	}
	cfg.BaseDir = abs
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.BaseDir == "" {
		return errors.New("config: database directory is required")
	}
	if c.PollInterval <= 0 {
		return errors.New("config: POLL_INTERVAL must be positive")
	}
	if c.AppEnv == "production" && c.AppHost != "127.0.0.1" && c.AppHost != "localhost" {
		return errors.New("config: in production APP_HOST must be a loopback address")
	}
	return nil
}

func (c *Config) Addr() string {
	return c.AppHost + ":" + c.HTTPPort
}

// AppDir — каталог исполняемого файла; при go run (временный каталог сборки) — текущий каталог.
func AppDir() string {
	exe, err := os.Executable()
	if err != nil || strings.HasPrefix(exe, os.TempDir()) {
		if cwd, err := os.Getwd(); err == nil {
			return cwd
		}
		return "."
	}
	return filepath.Dir(exe)
}

// LoadBaseDir читает каталог баз из sidecar-файла. Если yaml нет, пробует старый .db_dir,
// иначе возвращает каталог sidecar-файла.
func LoadBaseDir(sidecarPath string) string {
	dir := filepath.Dir(sidecarPath)
	if data, err := os.ReadFile(sidecarPath); err == nil {
		var sc sidecar
		if yaml.Unmarshal(data, &sc) == nil && strings.TrimSpace(sc.DBDir) != "" {
			return expandHome(strings.TrimSpace(sc.DBDir))
		}
	}
	if data, err := os.ReadFile(filepath.Join(dir, legacySidecarName)); err == nil {
		if p := strings.Trim(strings.TrimSpace(string(data)), `"`); p != "" {
			return expandHome(p)
		}
	}
	return dir
}

// SaveBaseDir записывает каталог баз в sidecar-файл.
func SaveBaseDir(sidecarPath, baseDir string) error {
	data, err := yaml.Marshal(sidecar{DBDir: baseDir})
	if err != nil {
		return fmt.Errorf("marshal sidecar: %w", err)
	}
	if err := os.WriteFile(sidecarPath, data, 0o644); err != nil {
		return fmt.Errorf("write sidecar %s: %w", sidecarPath, err)
	}
	return nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

func firstEnv(keysAndDef ...string) string {
	if len(keysAndDef) == 0 {
		return ""
	}
	def := keysAndDef[len(keysAndDef)-1]
	for _, k := range keysAndDef[:len(keysAndDef)-1] {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
