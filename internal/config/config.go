package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything seomate reads at startup.
type Config struct {
	APIBase        string
	Token          string
	PageSize       int
	RefreshEvery   time.Duration // zero disables background refresh
	IngestCount    int
	DownloadDir    string
	LogPath        string
	LogLevel       string
	RequestTimeout time.Duration // zero means no client-side timeout
}

const (
	defaultConfigPath     = "~/.config/seomate/config.toml"
	defaultAPIBase        = "http://localhost:8000"
	defaultPageSize       = 25
	defaultRefreshSeconds = 30
	defaultIngestCount    = 100
	defaultDownloadDir    = "~/Downloads"
	defaultLogPath        = "~/.local/state/seomate/seomate.log"
	defaultLogLevel       = "info"
	defaultTimeoutSeconds = 0
	maxIngestCount        = 10000
)

var pageSizes = []int{10, 25, 50, 100}

// Environment variables that override the file.
const (
	EnvAPIBase  = "SEOMATE_API_BASE"
	EnvToken    = "SEOMATE_TOKEN"
	EnvLogLevel = "SEOMATE_LOG_LEVEL"
	EnvPageSize = "SEOMATE_PAGE_SIZE"
)

// Defaults returns the configuration used when no file exists.
func Defaults() Config {
	return Config{
		APIBase:        defaultAPIBase,
		PageSize:       defaultPageSize,
		RefreshEvery:   defaultRefreshSeconds * time.Second,
		IngestCount:    defaultIngestCount,
		DownloadDir:    mustExpand(defaultDownloadDir),
		LogPath:        mustExpand(defaultLogPath),
		LogLevel:       defaultLogLevel,
		RequestTimeout: defaultTimeoutSeconds * time.Second,
	}
}

type rawConfig struct {
	APIBase        string `toml:"api_base"`
	Token          string `toml:"token"`
	PageSize       *int   `toml:"page_size"`
	RefreshSeconds *int   `toml:"refresh_seconds"`
	IngestCount    *int   `toml:"ingest_count"`
	DownloadDir    string `toml:"download_dir"`
	LogPath        string `toml:"log_path"`
	LogLevel       string `toml:"log_level"`
	TimeoutSeconds *int   `toml:"request_timeout_seconds"`
}

// Load reads the TOML config at path (or the default location), falling back
// to defaults when the file is missing, then applies .env and environment
// overrides.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Defaults()

	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		var raw rawConfig
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
		raw.apply(&cfg)
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	loadDotEnv()
	applyEnv(&cfg)
	return cfg, nil
}

func (raw rawConfig) apply(cfg *Config) {
	if v := strings.TrimSpace(raw.APIBase); v != "" {
		cfg.APIBase = v
	}
	cfg.Token = strings.TrimSpace(raw.Token)
	if raw.PageSize != nil {
		cfg.PageSize = normalizePageSize(*raw.PageSize)
	}
	if raw.RefreshSeconds != nil && *raw.RefreshSeconds >= 0 {
		cfg.RefreshEvery = time.Duration(*raw.RefreshSeconds) * time.Second
	}
	if raw.IngestCount != nil && *raw.IngestCount > 0 && *raw.IngestCount <= maxIngestCount {
		cfg.IngestCount = *raw.IngestCount
	}
	if v := strings.TrimSpace(raw.DownloadDir); v != "" {
		cfg.DownloadDir = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogPath); v != "" {
		cfg.LogPath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if raw.TimeoutSeconds != nil && *raw.TimeoutSeconds >= 0 {
		cfg.RequestTimeout = time.Duration(*raw.TimeoutSeconds) * time.Second
	}
}

// loadDotEnv reads ./.env without overriding variables already set.
func loadDotEnv() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	_ = godotenv.Load(".env")
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIBase)); v != "" {
		cfg.APIBase = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvToken)); v != "" {
		cfg.Token = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvPageSize)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PageSize = normalizePageSize(n)
		}
	}
}

func normalizePageSize(n int) int {
	for _, size := range pageSizes {
		if size == n {
			return n
		}
	}
	return defaultPageSize
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
