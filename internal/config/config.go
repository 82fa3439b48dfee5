package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// APIKeyEnv overrides api.api_key when set.
const APIKeyEnv = "SKYLIGHT_API_KEY"

// Config is the resolved skylight configuration.
type Config struct {
	API     API
	Gallery Gallery
	Cache   Cache
	Log     Log
	Server  Server
}

// API configures the remote search endpoint.
type API struct {
	Endpoint string
	APIKey   string
	PageSize int
	Timeout  time.Duration
	// ProbeInterval is the base connectivity probe interval.
	ProbeInterval time.Duration
}

// Gallery configures layout and fetch pacing.
type Gallery struct {
	RowHeight      float64
	LoadThreshold  float64
	QueryDebounce  time.Duration
	ResizeDebounce time.Duration
	CellWidth      int
	CellHeight     int
	DeviceScale    float64
}

// Cache configures the optional Redis response cache.
type Cache struct {
	RedisAddr string
	RedisDB   int
	TTL       time.Duration
}

// Enabled reports whether a Redis address is configured.
func (c Cache) Enabled() bool {
	return c.RedisAddr != ""
}

// Log configures the application log.
type Log struct {
	File  string
	Level string
}

// Server configures the HTTP surface.
type Server struct {
	Addr string
}

const (
	defaultConfigPath     = "~/.config/skylight/config.toml"
	defaultEndpoint       = "https://api.flickr.com/services/rest/"
	defaultPageSize       = 10
	defaultTimeoutMS      = 10000
	defaultProbeMS        = 15000
	defaultRowHeight      = 180
	defaultLoadThreshold  = 360
	defaultQueryDebounce  = 500
	defaultResizeDebounce = 250
	defaultCellWidth      = 8
	defaultCellHeight     = 16
	defaultDeviceScale    = 1
	defaultCacheTTL       = 600
	defaultLogFile        = "~/.local/state/skylight/skylight.log"
	defaultLogLevel       = "info"
	defaultServerAddr     = "127.0.0.1:8089"
)

type rawConfig struct {
	API struct {
		Endpoint        string `toml:"endpoint"`
		APIKey          string `toml:"api_key"`
		PageSize        int    `toml:"page_size"`
		TimeoutMS       int    `toml:"timeout_ms"`
		ProbeIntervalMS int    `toml:"probe_interval_ms"`
	} `toml:"api"`
	Gallery struct {
		RowHeight        int     `toml:"row_height"`
		LoadThreshold    int     `toml:"load_threshold"`
		QueryDebounceMS  int     `toml:"query_debounce_ms"`
		ResizeDebounceMS int     `toml:"resize_debounce_ms"`
		CellWidth        int     `toml:"cell_width"`
		CellHeight       int     `toml:"cell_height"`
		DeviceScale      float64 `toml:"device_scale"`
	} `toml:"gallery"`
	Cache struct {
		RedisAddr  string `toml:"redis_addr"`
		RedisDB    int    `toml:"redis_db"`
		TTLSeconds int    `toml:"ttl_seconds"`
	} `toml:"cache"`
	Log struct {
		File  string `toml:"file"`
		Level string `toml:"level"`
	} `toml:"log"`
	Server struct {
		Addr string `toml:"addr"`
	} `toml:"server"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	var raw rawConfig
	return resolve(raw)
}

// Load locates and parses the config, falling back to defaults when missing.
// The API key environment variable always wins over the file.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return withEnv(Default()), nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return withEnv(resolve(raw)), nil
}

// DefaultPath returns the expanded default config location.
func DefaultPath() string {
	return mustExpand(defaultConfigPath)
}

func resolve(raw rawConfig) Config {
	var cfg Config

	cfg.API.Endpoint = orString(raw.API.Endpoint, defaultEndpoint)
	cfg.API.APIKey = strings.TrimSpace(raw.API.APIKey)
	cfg.API.PageSize = orInt(raw.API.PageSize, defaultPageSize)
	cfg.API.Timeout = millis(raw.API.TimeoutMS, defaultTimeoutMS)
	cfg.API.ProbeInterval = millis(raw.API.ProbeIntervalMS, defaultProbeMS)

	cfg.Gallery.RowHeight = float64(orInt(raw.Gallery.RowHeight, defaultRowHeight))
	cfg.Gallery.LoadThreshold = float64(orInt(raw.Gallery.LoadThreshold, defaultLoadThreshold))
	cfg.Gallery.QueryDebounce = millis(raw.Gallery.QueryDebounceMS, defaultQueryDebounce)
	cfg.Gallery.ResizeDebounce = millis(raw.Gallery.ResizeDebounceMS, defaultResizeDebounce)
	cfg.Gallery.CellWidth = orInt(raw.Gallery.CellWidth, defaultCellWidth)
	cfg.Gallery.CellHeight = orInt(raw.Gallery.CellHeight, defaultCellHeight)
	cfg.Gallery.DeviceScale = orFloat(raw.Gallery.DeviceScale, defaultDeviceScale)

	cfg.Cache.RedisAddr = strings.TrimSpace(raw.Cache.RedisAddr)
	cfg.Cache.RedisDB = raw.Cache.RedisDB
	cfg.Cache.TTL = time.Duration(orInt(raw.Cache.TTLSeconds, defaultCacheTTL)) * time.Second

	cfg.Log.File = mustExpand(orString(raw.Log.File, defaultLogFile))
	cfg.Log.Level = orString(raw.Log.Level, defaultLogLevel)

	cfg.Server.Addr = orString(raw.Server.Addr, defaultServerAddr)

	return cfg
}

func withEnv(cfg Config) Config {
	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		cfg.API.APIKey = key
	}
	return cfg
}

func orString(v, def string) string {
	if trimmed := strings.TrimSpace(v); trimmed != "" {
		return trimmed
	}
	return def
}

func orInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func orFloat(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}

func millis(v, def int) time.Duration {
	return time.Duration(orInt(v, def)) * time.Millisecond
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
