package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if !cfg.KeepPayloads {
		t.Fatalf("default keep payloads should be true")
	}
	if cfg.Rank != 0 {
		t.Fatalf("default rank")
	}
	if cfg.ObjectSizeDefault != 4<<20 {
		t.Fatalf("object size default")
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "cephjournaltool.json")
	data := []byte(`{"rank":2,"poolId":7,"keepPayloads":false,"objectSizeDefault":1048576}`)
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.KeepPayloads {
		t.Fatalf("expected false")
	}
	if cfg.Rank != 2 {
		t.Fatalf("expected rank 2")
	}
	if cfg.PoolID != 7 {
		t.Fatalf("expected pool id 7")
	}
	if cfg.ObjectSizeDefault != 1048576 {
		t.Fatalf("expected object size 1048576")
	}
}

func TestFromEnv(t *testing.T) {
	cfg := Default()
	os.Setenv("CJT_KEEP_PAYLOADS", "false")
	os.Setenv("CJT_RANK", "3")
	os.Setenv("CJT_POOL_ID", "9")
	t.Cleanup(func() {
		os.Unsetenv("CJT_KEEP_PAYLOADS")
		os.Unsetenv("CJT_RANK")
		os.Unsetenv("CJT_POOL_ID")
	})
	FromEnv(&cfg)
	if cfg.KeepPayloads {
		t.Fatalf("env override bool")
	}
	if cfg.Rank != 3 {
		t.Fatalf("env override rank")
	}
	if cfg.PoolID != 9 {
		t.Fatalf("env override pool id")
	}
}
