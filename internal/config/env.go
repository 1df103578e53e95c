package config

import (
	"os"
	"strconv"
)

// FromEnv overlays CJT_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("CJT_RANK"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			cfg.Rank = uint32(n)
		}
	}
	if v := os.Getenv("CJT_POOL_ID"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.PoolID = n
		}
	}
	if v := os.Getenv("CJT_KEEP_PAYLOADS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.KeepPayloads = b
		}
	}
	if v := os.Getenv("CJT_OBJECT_SIZE_DEFAULT"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.ObjectSizeDefault = n
		}
	}
	if v := os.Getenv("CJT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CJT_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
}
