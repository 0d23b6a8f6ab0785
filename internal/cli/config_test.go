package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/relock/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "relock.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
project_modules = ["^@acme/", "^internal-"]

[cache]
dir = "/tmp/relock-cache"
redis_addr = "localhost:6379"

[server]
addr = ":9090"
mongo_uri = "mongodb://localhost:27017"
mongo_database = "relock"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if len(cfg.ProjectModules) != 2 || cfg.ProjectModules[0] != "^@acme/" {
		t.Errorf("ProjectModules = %v", cfg.ProjectModules)
	}
	if cfg.Cache.Dir != "/tmp/relock-cache" {
		t.Errorf("Cache.Dir = %q", cfg.Cache.Dir)
	}
	if cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("Cache.RedisAddr = %q", cfg.Cache.RedisAddr)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.MongoDatabase != "relock" {
		t.Errorf("Server.MongoDatabase = %q", cfg.Server.MongoDatabase)
	}
}

func TestLoadConfigMissingDefaultIsOK(t *testing.T) {
	dir := t.TempDir()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig(\"\") error = %v", err)
	}
	if len(cfg.ProjectModules) != 0 {
		t.Errorf("expected empty default config, got %+v", cfg)
	}
}

func TestLoadConfigMissingExplicitFails(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("expected FILE_NOT_FOUND, got %v", err)
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := writeConfig(t, "project_modules = not valid")
	_, err := LoadConfig(path)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestCacheDirConfigOverride(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	c.Config.Cache.Dir = "/custom/cache"

	dir, err := c.cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/custom/cache" {
		t.Errorf("cacheDir() = %q, want /custom/cache", dir)
	}
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/xdg/cache")

	c := New(os.Stderr, LogInfo)
	dir, err := c.cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/xdg/cache", appName) {
		t.Errorf("cacheDir() = %q", dir)
	}
}
