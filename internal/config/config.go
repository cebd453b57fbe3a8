package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	toml "github.com/pelletier/go-toml/v2"
)

type DeleteMode string

const (
	DeleteModeDiscard DeleteMode = "discard"
	DeleteModeHard    DeleteMode = "hard"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Delete   DeleteConfig   `toml:"delete"`
	Logging  LoggingConfig  `toml:"logging"`
	Board    BoardConfig    `toml:"board"`
	Remote   RemoteConfig   `toml:"remote"`
	Server   ServerConfig   `toml:"server"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type DeleteConfig struct {
	DefaultMode DeleteMode `toml:"default_mode"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type BoardConfig struct {
	ColumnWidth  int  `toml:"column_width"`
	ColumnGap    int  `toml:"column_gap"`
	LongPressMS  int  `toml:"long_press_ms"`
	ScrollStep   int  `toml:"scroll_step"`
	ToastSeconds int  `toml:"toast_seconds"`
	ShowPrice    bool `toml:"show_price"`
}

type RemoteConfig struct {
	Endpoint       string `toml:"endpoint"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type ServerConfig struct {
	HTTPBind    string `toml:"http_bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Delete: DeleteConfig{
			DefaultMode: DeleteModeDiscard,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: false,
				Dir:     filepath.Join(".roost", "log"),
			},
		},
		Board: BoardConfig{
			ColumnWidth:  28,
			ColumnGap:    2,
			LongPressMS:  350,
			ScrollStep:   10,
			ToastSeconds: 4,
			ShowPrice:    true,
		},
		Remote: RemoteConfig{
			TimeoutSeconds: 0,
		},
		Server: ServerConfig{
			HTTPBind:    "127.0.0.1:8080",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}

	switch c.Delete.DefaultMode {
	case DeleteModeDiscard, DeleteModeHard:
	default:
		return fmt.Errorf("invalid delete.default_mode: %q", c.Delete.DefaultMode)
	}

	if _, err := log.ParseLevel(strings.TrimSpace(c.Logging.Level)); err != nil {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	if c.Logging.DevFile.Enabled && strings.TrimSpace(c.Logging.DevFile.Dir) == "" {
		return errors.New("logging.dev_file.dir is required when dev_file is enabled")
	}

	if c.Board.ColumnWidth < 12 {
		return fmt.Errorf("board.column_width must be >= 12, got %d", c.Board.ColumnWidth)
	}
	if c.Board.ColumnGap < 1 {
		return fmt.Errorf("board.column_gap must be >= 1, got %d", c.Board.ColumnGap)
	}
	if c.Board.LongPressMS < 0 {
		return fmt.Errorf("board.long_press_ms must be >= 0, got %d", c.Board.LongPressMS)
	}
	if c.Board.ScrollStep < 1 {
		return fmt.Errorf("board.scroll_step must be >= 1, got %d", c.Board.ScrollStep)
	}
	if c.Board.ToastSeconds < 0 {
		return fmt.Errorf("board.toast_seconds must be >= 0, got %d", c.Board.ToastSeconds)
	}

	if endpoint := strings.TrimSpace(c.Remote.Endpoint); endpoint != "" {
		u, err := url.Parse(endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid remote.endpoint: %q", c.Remote.Endpoint)
		}
	}
	if c.Remote.TimeoutSeconds < 0 {
		return fmt.Errorf("remote.timeout_seconds must be >= 0, got %d", c.Remote.TimeoutSeconds)
	}

	if strings.TrimSpace(c.Server.HTTPBind) == "" {
		return errors.New("server.http_bind is required")
	}
	for name, endpoint := range map[string]string{
		"server.api_endpoint": c.Server.APIEndpoint,
		"server.mcp_endpoint": c.Server.MCPEndpoint,
	} {
		if endpoint = strings.TrimSpace(endpoint); endpoint != "" && !strings.HasPrefix(endpoint, "/") {
			return fmt.Errorf("%s must start with /: %q", name, endpoint)
		}
	}

	return nil
}

func (c BoardConfig) LongPressDelay() time.Duration {
	return time.Duration(c.LongPressMS) * time.Millisecond
}

func (c BoardConfig) ToastDuration() time.Duration {
	return time.Duration(c.ToastSeconds) * time.Second
}

func (c RemoteConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
