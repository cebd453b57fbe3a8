package platform

import (
	"path/filepath"
	"runtime"
	"testing"
)

// TestPathsFor covers per-OS base selection and the derived file layout.
func TestPathsFor(t *testing.T) {
	cases := []struct {
		name       string
		goos       string
		env        map[string]string
		config     string
		data       string
		wantConfig string
		wantData   string
	}{
		{
			name:       "linux xdg overrides",
			goos:       "linux",
			env:        map[string]string{"XDG_CONFIG_HOME": "/xdg/config", "XDG_DATA_HOME": "/xdg/data"},
			config:     "/home/me/.config",
			data:       "/home/me/.local/share",
			wantConfig: "/xdg/config",
			wantData:   "/xdg/data",
		},
		{
			name:       "linux without xdg",
			goos:       "linux",
			env:        map[string]string{},
			config:     "/home/me/.config",
			data:       "/home/me/.local/share",
			wantConfig: "/home/me/.config",
			wantData:   "/home/me/.local/share",
		},
		{
			name:       "linux partial override",
			goos:       "linux",
			env:        map[string]string{"XDG_DATA_HOME": "/xdg/data"},
			config:     "/cfg",
			data:       "/data",
			wantConfig: "/cfg",
			wantData:   "/xdg/data",
		},
		{
			name:       "windows appdata",
			goos:       "windows",
			env:        map[string]string{"APPDATA": `C:\Roaming`, "LOCALAPPDATA": `C:\Local`},
			config:     `C:\fallback\config`,
			data:       `C:\fallback\data`,
			wantConfig: `C:\Roaming`,
			wantData:   `C:\Local`,
		},
		{
			name:       "darwin ignores xdg",
			goos:       "darwin",
			env:        map[string]string{"XDG_CONFIG_HOME": "/ignored", "XDG_DATA_HOME": "/ignored"},
			config:     "/Users/me/Library/Application Support",
			data:       "/Users/me/Library/Application Support",
			wantConfig: "/Users/me/Library/Application Support",
			wantData:   "/Users/me/Library/Application Support",
		},
		{
			name:       "unknown os",
			goos:       "freebsd",
			env:        nil,
			config:     "/cfg",
			data:       "/data",
			wantConfig: "/cfg",
			wantData:   "/data",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := PathsFor(tc.goos, tc.env, tc.config, tc.data, "roost")
			if err != nil {
				t.Fatalf("PathsFor() error = %v", err)
			}
			dataDir := filepath.Join(tc.wantData, "roost")
			want := Paths{
				ConfigPath: filepath.Join(tc.wantConfig, "roost", "config.toml"),
				DataDir:    dataDir,
				DBPath:     filepath.Join(dataDir, "roost.db"),
				LogDir:     filepath.Join(dataDir, "log"),
				ExportPath: filepath.Join(dataDir, "roost-snapshot.json"),
			}
			if p != want {
				t.Fatalf("PathsFor() = %#v, want %#v", p, want)
			}
		})
	}
}

// TestPathsForRejectsEmptyInput verifies missing bases or app names fail.
func TestPathsForRejectsEmptyInput(t *testing.T) {
	if _, err := PathsFor("darwin", nil, "", "/tmp/data", "roost"); err == nil {
		t.Fatal("expected error for empty config base")
	}
	if _, err := PathsFor("darwin", nil, "/cfg", "/data", "  "); err == nil {
		t.Fatal("expected error for empty app name")
	}
}

// TestDefaultPathsWithOptions verifies dev suffixing and injected env lookups.
func TestDefaultPathsWithOptions(t *testing.T) {
	p, err := DefaultPaths()
	if err != nil {
		t.Fatalf("DefaultPaths() error = %v", err)
	}
	if p.ConfigPath == "" || p.DBPath == "" || p.DataDir == "" {
		t.Fatalf("expected non-empty paths, got %#v", p)
	}

	dev, err := DefaultPathsWithOptions(Options{AppName: "roost", DevMode: true})
	if err != nil {
		t.Fatalf("DefaultPathsWithOptions(dev) error = %v", err)
	}
	if filepath.Base(filepath.Dir(dev.ConfigPath)) != "roost-dev" || filepath.Base(dev.DBPath) != "roost-dev.db" {
		t.Fatalf("expected dev-suffixed paths, got %#v", dev)
	}

	if runtime.GOOS != "linux" {
		return
	}
	injected, err := DefaultPathsWithOptions(Options{
		AppName: "roost",
		Getenv: func(key string) string {
			if key == "XDG_CONFIG_HOME" {
				return "/injected/config"
			}
			return ""
		},
	})
	if err != nil {
		t.Fatalf("DefaultPathsWithOptions(getenv) error = %v", err)
	}
	if injected.ConfigPath != filepath.Join("/injected/config", "roost", "config.toml") {
		t.Fatalf("unexpected injected config path %q", injected.ConfigPath)
	}
}
