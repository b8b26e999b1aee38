package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "xlib.yaml")
	data := []byte("log_level: debug\nhash: pearson\ncompression: gzip\npresize: 64\nmax_buckets: 1024\nstore_path: /tmp/x.db\n")
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(file)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Hash != "pearson" || cfg.Compression != "gzip" || cfg.Presize != 64 || cfg.MaxBuckets != 1024 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.APIListenAddr != ":7780" {
		t.Errorf("default listen address lost: %q", cfg.APIListenAddr)
	}
	if cfg.StoreFile() != "/tmp/x.db" {
		t.Errorf("absolute store path rewritten: %q", cfg.StoreFile())
	}
	if cfg.ConfigFile != file {
		t.Errorf("ConfigFile = %q, want %q", cfg.ConfigFile, file)
	}
	if st := cfg.Store(); st.Hash != "pearson" || st.Presize != 64 {
		t.Errorf("store config: %+v", st)
	}
}

func TestEnvOverrides(t *testing.T) {
	file := filepath.Join(t.TempDir(), "xlib.yaml")
	if err := os.WriteFile(file, []byte("compression: gzip\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("XLIB_COMPRESSION", "none")
	t.Setenv("XLIB_API_LISTEN_ADDRESS", "127.0.0.1:9000")
	cfg, err := LoadConfig(file)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Compression != "none" || cfg.APIListenAddr != "127.0.0.1:9000" {
		t.Errorf("env not applied: %+v", cfg)
	}
}

func TestMissingExplicitFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for a missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	bad := []func(*Config){
		func(c *Config) { c.Hash = "sha1" },
		func(c *Config) { c.Compression = "lz4" },
		func(c *Config) { c.LogLevel = "loud" },
		func(c *Config) { c.Presize = -1 },
	}
	for i, mutate := range bad {
		c := DefaultConfig()
		mutate(c)
		if err := c.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestRelativeStorePath(t *testing.T) {
	c := DefaultConfig()
	if got := c.StoreFile(); !filepath.IsAbs(got) || filepath.Base(got) != "kv.db" {
		t.Errorf("StoreFile() = %q", got)
	}
}

func TestSocketFile(t *testing.T) {
	c := DefaultConfig()
	if got := c.SocketFile(); !filepath.IsAbs(got) || filepath.Base(got) != "xlib.sock" {
		t.Errorf("SocketFile() = %q", got)
	}
	c.ManagementSocket = ""
	if c.SocketFile() != "" {
		t.Error("empty socket should stay disabled")
	}
}
