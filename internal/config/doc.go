// Package config provides loading and environment overlay for the journal
// tool's runtime configuration. It exposes a Default() baseline and helpers
// to build a scanner/dumper configuration without touching the CLI layer.
//
// Example:
//
//	cfg := config.Default()
//	// Optionally load from file and overlay env vars
//	if fileCfg, err := config.Load("/etc/cephjournaltool.json"); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
package config
