package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvWSURL, "")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	want := Default()
	if *cfg != *want {
		t.Errorf("LoadConfig() = %+v, want %+v", cfg, want)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvWSURL, "")
	dir := t.TempDir()

	cfg := Default()
	cfg.APIURL = "https://fleet.example.com"
	cfg.ActorID = "USR-9"
	cfg.StaleAfter = 45 * time.Second
	cfg.RefetchInterval = time.Minute

	if err := SaveConfig(dir, cfg); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}
	got, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if *got != *cfg {
		t.Errorf("LoadConfig() = %+v, want %+v", got, cfg)
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvWSURL, "")
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".fleet"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(Path(dir), []byte("stale_after: 10s\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.StaleAfter != 10*time.Second {
		t.Errorf("StaleAfter = %v, want 10s", cfg.StaleAfter)
	}
	if cfg.CacheCapacity != Default().CacheCapacity {
		t.Errorf("CacheCapacity = %d, want default", cfg.CacheCapacity)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv(EnvAPIURL, "https://staging.example.com")
	t.Setenv(EnvWSURL, "wss://push.example.com/live")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIURL != "https://staging.example.com" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.RealtimeURL() != "wss://push.example.com/live" {
		t.Errorf("RealtimeURL() = %q", cfg.RealtimeURL())
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvWSURL, "")
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".fleet"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(Path(dir), []byte("cache_capacity: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(dir); err == nil {
		t.Error("LoadConfig() with zero capacity should fail")
	}
}

func TestRealtimeURL(t *testing.T) {
	tests := []struct {
		api  string
		want string
	}{
		{"http://localhost:8080", "ws://localhost:8080/ws"},
		{"https://fleet.example.com/", "wss://fleet.example.com/ws"},
	}
	for _, tt := range tests {
		t.Run(tt.api, func(t *testing.T) {
			cfg := &Config{APIURL: tt.api}
			if got := cfg.RealtimeURL(); got != tt.want {
				t.Errorf("RealtimeURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
