package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/example/fleetops/internal/config"
	"github.com/example/fleetops/internal/realtime"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvAPIURL, "")
	t.Setenv(config.EnvWSURL, "")
	color.NoColor = true

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCommandTree(t *testing.T) {
	root := NewRootCmd()
	paths := []string{
		"login", "logout", "whoami", "bins list", "drivers list",
		"shifts list", "shifts show",
		"moves list", "moves show", "moves assign", "moves bulk-assign",
		"moves clear", "moves start", "moves complete", "moves cancel", "moves bulk-cancel",
		"watch", "edge", "config init", "config show", "version",
	}
	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			cmd, rest, err := root.Find(strings.Fields(p))
			if err != nil {
				t.Fatalf("Find(%q) error: %v", p, err)
			}
			if len(rest) != 0 {
				t.Fatalf("Find(%q) left args %v", p, rest)
			}
			if got := cmd.CommandPath(); got != "fleetctl "+p {
				t.Errorf("CommandPath() = %q, want %q", got, "fleetctl "+p)
			}
		})
	}
}

func TestConfigInitWritesFile(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "--dir", dir, "config", "init", "--api-url", "https://fleet.example.com", "--actor", "MGR-1")
	if err != nil {
		t.Fatalf("config init error: %v", err)
	}
	if !strings.Contains(out, "Wrote") {
		t.Errorf("output = %q, want confirmation", out)
	}

	cfg, err := config.LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.APIURL != "https://fleet.example.com" {
		t.Errorf("APIURL = %q, want %q", cfg.APIURL, "https://fleet.example.com")
	}
	if cfg.ActorID != "MGR-1" {
		t.Errorf("ActorID = %q, want %q", cfg.ActorID, "MGR-1")
	}
}

func TestConfigShowPrintsRealtimeURL(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".fleet"), 0755); err != nil {
		t.Fatal(err)
	}
	data := []byte("api_url: https://fleet.example.com\nstale_after: 30s\ncache_capacity: 64\ncookie_max_age: 168h\n")
	if err := os.WriteFile(config.Path(dir), data, 0644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--dir", dir, "config", "show")
	if err != nil {
		t.Fatalf("config show error: %v", err)
	}
	if !strings.Contains(out, "# realtime: wss://fleet.example.com/ws") {
		t.Errorf("output = %q, want derived realtime URL", out)
	}
}

func TestVersionSkipsConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".fleet"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(config.Path(dir), []byte("api_url: ''\n"), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--dir", dir, "version")
	if err != nil {
		t.Fatalf("version error: %v", err)
	}
	if !strings.HasPrefix(out, "fleetctl") {
		t.Errorf("output = %q, want version string", out)
	}
}

func TestAssignRequiresTarget(t *testing.T) {
	_, err := execute(t, "--dir", t.TempDir(), "moves", "assign", "MR-1")
	if err == nil {
		t.Fatal("expected error when neither --shift nor --user is set")
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"MR-3,MR-1,MR-2", []string{"MR-3", "MR-1", "MR-2"}},
		{" MR-1 , ,MR-2 ", []string{"MR-1", "MR-2"}},
	}
	for _, tt := range tests {
		if got := splitList(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("splitList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatEvent(t *testing.T) {
	color.NoColor = true
	at := time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC)

	tests := []struct {
		name string
		msg  realtime.Message
		want string
	}{
		{"move request", realtime.Message{Type: realtime.TypeMoveRequestUpdate, MoveRequestID: "MR-1", ShiftID: "SH-1"}, "move MR-1"},
		{"shift", realtime.Message{Type: realtime.TypeShiftUpdate, ShiftID: "SH-1"}, "shift SH-1"},
		{"bin", realtime.Message{Type: realtime.TypeBinUpdate, BinID: "BIN-4"}, "bin BIN-4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatEvent(at, tt.msg)
			if !strings.HasPrefix(got, "09:15:00") {
				t.Errorf("formatEvent() = %q, want time prefix", got)
			}
			if !strings.HasSuffix(got, tt.want) {
				t.Errorf("formatEvent() = %q, want suffix %q", got, tt.want)
			}
			if !strings.Contains(got, tt.msg.Type) {
				t.Errorf("formatEvent() = %q, want type %q", got, tt.msg.Type)
			}
		})
	}
}
