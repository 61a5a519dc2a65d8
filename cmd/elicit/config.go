package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/elicit/internal/kv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	storeSQLite = "sqlite"
	storeRedis  = "redis"
)

// config is the process configuration, read from ELICIT_* variables.
type config struct {
	DataDir string
	DBPath  string

	Store string
	Redis kv.RedisConfig

	LinkSecret string
	LinkTTL    time.Duration

	LogMode  string // "production" or "development"
	LogLevel zapcore.Level
	LogPath  string
}

// loadConfig reads configuration through lookupEnv, falling back to
// defaults under ~/.elicit for anything unset.
func loadConfig(lookupEnv func(string) (string, bool)) (config, error) {
	getenv := func(key string) string {
		v, _ := lookupEnv(key)
		return v
	}
	cfg := config{
		Store:    storeSQLite,
		LinkTTL:  7 * 24 * time.Hour,
		LogMode:  "production",
		LogLevel: zapcore.InfoLevel,
		Redis: kv.RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "elicit:",
		},
	}

	cfg.DataDir = getenv("ELICIT_HOME")
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, fmt.Errorf("finding home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".elicit")
	}
	cfg.DBPath = getenv("ELICIT_DB")
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "elicit.db")
	}
	cfg.LogPath = getenv("ELICIT_LOG")
	if cfg.LogPath == "" {
		cfg.LogPath = filepath.Join(cfg.DataDir, "elicit.log")
	}

	if v := getenv("ELICIT_STORE"); v != "" {
		v = strings.ToLower(v)
		if v != storeSQLite && v != storeRedis {
			return cfg, fmt.Errorf("ELICIT_STORE: invalid value %q (expected sqlite or redis)", v)
		}
		cfg.Store = v
	}
	if v := getenv("ELICIT_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	cfg.Redis.Password = getenv("ELICIT_REDIS_PASSWORD")
	if v := getenv("ELICIT_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return cfg, fmt.Errorf("ELICIT_REDIS_DB: invalid value %q", v)
		}
		cfg.Redis.DB = n
	}
	if v, ok := lookupEnv("ELICIT_REDIS_PREFIX"); ok {
		cfg.Redis.Prefix = v
	}

	cfg.LinkSecret = getenv("ELICIT_LINK_SECRET")
	if v := getenv("ELICIT_LINK_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return cfg, fmt.Errorf("ELICIT_LINK_TTL: invalid duration %q", v)
		}
		cfg.LinkTTL = d
	}

	if v := getenv("ELICIT_LOG_MODE"); v != "" {
		if v != "production" && v != "development" {
			return cfg, fmt.Errorf("ELICIT_LOG_MODE: invalid value %q (expected production or development)", v)
		}
		cfg.LogMode = v
	}
	if v := getenv("ELICIT_LOG_LEVEL"); v != "" {
		lvl, err := zapcore.ParseLevel(v)
		if err != nil {
			return cfg, fmt.Errorf("ELICIT_LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = lvl
	}

	return cfg, nil
}

// newLogger builds the process logger. Logs go to a file by default so they
// do not interleave with the interview screen.
func newLogger(cfg config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.LogMode == "development" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(cfg.LogLevel)

	if cfg.LogPath != "stderr" && cfg.LogPath != "stdout" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
	}
	zc.OutputPaths = []string{cfg.LogPath}
	zc.ErrorOutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger.Named("elicit"), nil
}

// linkSecret returns the configured signing secret, or one generated on
// first use and kept in the data directory.
func linkSecret(cfg config) (string, error) {
	if cfg.LinkSecret != "" {
		return cfg.LinkSecret, nil
	}

	path := filepath.Join(cfg.DataDir, "link.secret")
	data, err := os.ReadFile(path)
	if err == nil {
		if s := strings.TrimSpace(string(data)); s != "" {
			return s, nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("reading link secret: %w", err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating link secret: %w", err)
	}
	secret := hex.EncodeToString(buf)
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(secret+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("writing link secret: %w", err)
	}
	return secret, nil
}
