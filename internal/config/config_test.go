package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Timing.AbilitiesCeiling != 12 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fightschool.toml")
	data := `
[server]
addr = ":9000"

[storage]
dsn = "file:test.db"

[timing]
unit = "500ms"
game_over_grace = "5s"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FS_CATALOG_DIR", "/srv/catalog")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Addr != ":9000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Storage.DSN != "file:test.db" {
		t.Errorf("dsn = %q", cfg.Storage.DSN)
	}
	if cfg.Timing.Unit != 500*time.Millisecond || cfg.Timing.GameOverGrace != 5*time.Second {
		t.Errorf("timing not parsed: %+v", cfg.Timing)
	}
	if cfg.Timing.AbilitiesIdle != 12 {
		t.Error("values absent from the file keep their defaults")
	}
	if cfg.Catalog.MissReloadInterval != 2*time.Second {
		t.Errorf("miss reload interval = %s, want default", cfg.Catalog.MissReloadInterval)
	}
	if cfg.Catalog.Dir != "/srv/catalog" || cfg.Logging.Level != "debug" {
		t.Errorf("env overrides not applied: %+v %+v", cfg.Catalog, cfg.Logging)
	}
}

func TestLoad_InvalidTiming(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[timing]\nunit = \"0s\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("zero time unit must be rejected")
	}
}
