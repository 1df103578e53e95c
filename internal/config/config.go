package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// Rank is the default MDS rank operated on when --rank is not given.
	Rank uint32 `json:"rank"`
	// PoolID is the default metadata pool id when --pool-id is not given.
	PoolID int64 `json:"poolId"`
	// KeepPayloads mirrors the scanner's keep_payloads option default.
	KeepPayloads bool `json:"keepPayloads"`
	// ObjectSizeDefault is substituted when a decoded header reports
	// layout.object_size == 0. Zero means "no fallback available".
	ObjectSizeDefault uint64 `json:"objectSizeDefault"`
	// LogLevel and LogFormat seed the CLI's logger when flags are absent.
	LogLevel  string `json:"logLevel"`
	LogFormat string `json:"logFormat"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Rank:              0,
		PoolID:            0,
		KeepPayloads:      true,
		ObjectSizeDefault: 4 << 20, // 4MiB, matches the format's default file layout object size
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// Load reads configuration from a JSON file. If path is empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	ext := filepath.Ext(path)
	switch ext {
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	case ".yaml", ".yml":
		// YAML is not parsed; no YAML dependency is pulled in, to keep deps light.
		// If YAML is needed now, prefer adding gopkg.in/yaml.v3; for MVP we accept JSON-only.
		return Config{}, errors.New("yaml config not supported yet; use JSON for now")
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}
