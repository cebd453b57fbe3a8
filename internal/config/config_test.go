package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default("/tmp/roost.db")
	if cfg.Database.Path != "/tmp/roost.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.Delete.DefaultMode != DeleteModeDiscard {
		t.Fatalf("unexpected delete mode %q", cfg.Delete.DefaultMode)
	}
	if cfg.Board.LongPressDelay() != 350*time.Millisecond {
		t.Fatalf("unexpected long press delay %s", cfg.Board.LongPressDelay())
	}
	if cfg.Server.HTTPBind != "127.0.0.1:8080" || cfg.Server.APIEndpoint != "/api/v1" || cfg.Server.MCPEndpoint != "/mcp" {
		t.Fatalf("unexpected server defaults %#v", cfg.Server)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	defaults := Default("/tmp/roost.db")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), defaults)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != defaults.Database.Path {
		t.Fatalf("expected default db path, got %q", cfg.Database.Path)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[database]
path = "/custom/roost.db"

[logging]
level = "debug"

[logging.dev_file]
enabled = true

[board]
column_width = 32
long_press_ms = 500
show_price = false

[remote]
endpoint = "http://127.0.0.1:9090/api/v1"
timeout_seconds = 15
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path, Default("/tmp/default.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != "/custom/roost.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.DevFile.Enabled || cfg.Logging.DevFile.Dir == "" {
		t.Fatalf("unexpected logging config %#v", cfg.Logging)
	}
	if cfg.Board.ColumnWidth != 32 || cfg.Board.ColumnGap != 2 || cfg.Board.ShowPrice {
		t.Fatalf("unexpected board config %#v", cfg.Board)
	}
	if cfg.Board.LongPressDelay() != 500*time.Millisecond {
		t.Fatalf("unexpected long press delay %s", cfg.Board.LongPressDelay())
	}
	if cfg.Remote.Timeout() != 15*time.Second {
		t.Fatalf("unexpected remote timeout %s", cfg.Remote.Timeout())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{name: "delete mode", content: "[delete]\ndefault_mode = \"shred\"\n", want: "delete.default_mode"},
		{name: "log level", content: "[logging]\nlevel = \"loud\"\n", want: "logging.level"},
		{name: "column width", content: "[board]\ncolumn_width = 4\n", want: "board.column_width"},
		{name: "scroll step", content: "[board]\nscroll_step = 0\n", want: "board.scroll_step"},
		{name: "remote endpoint", content: "[remote]\nendpoint = \"ftp://host\"\n", want: "remote.endpoint"},
		{name: "api endpoint", content: "[server]\napi_endpoint = \"api\"\n", want: "server.api_endpoint"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			_, err := Load(path, Default("/tmp/roost.db"))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[board\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := Load(path, Default("/tmp/roost.db")); err == nil || !strings.Contains(err.Error(), "decode toml") {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestEnsureConfigDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "roost", "config.toml")
	if err := EnsureConfigDir(path); err != nil {
		t.Fatalf("EnsureConfigDir() error = %v", err)
	}
	if info, err := os.Stat(filepath.Dir(path)); err != nil || !info.IsDir() {
		t.Fatalf("expected config dir created, err=%v", err)
	}
}
