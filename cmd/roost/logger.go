package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	charmLog "github.com/charmbracelet/log"
	"github.com/hylla/roost/internal/config"
)

// runtimeLogger writes every event to stderr and, in dev mode, to a daily
// logfmt file. The console half can be muted while the TUI owns the screen.
type runtimeLogger struct {
	console  *charmLog.Logger
	file     *charmLog.Logger
	muted    bool
	filePath string
	close    func() error
}

func newSinkLogger(w io.Writer, appName string, level charmLog.Level, formatter charmLog.Formatter) *charmLog.Logger {
	return charmLog.NewWithOptions(w, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       formatter,
	})
}

// newRuntimeLogger builds the console sink and, when cfg asks for it in dev
// mode, opens the dev log file next to the workspace root.
func newRuntimeLogger(stderr io.Writer, appName string, devMode bool, cfg config.LoggingConfig, now func() time.Time) (*runtimeLogger, error) {
	level, err := charmLog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", cfg.Level, err)
	}
	if stderr == nil {
		stderr = io.Discard
	}
	l := &runtimeLogger{console: newSinkLogger(stderr, appName, level, charmLog.TextFormatter)}
	if !devMode || !cfg.DevFile.Enabled {
		return l, nil
	}

	if now == nil {
		now = time.Now
	}
	path, err := devLogFilePath(cfg.DevFile.Dir, appName, now().UTC())
	if err != nil {
		return nil, fmt.Errorf("resolve dev log file path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create dev log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open dev log file: %w", err)
	}
	l.file = newSinkLogger(f, appName, level, charmLog.LogfmtFormatter)
	l.filePath = path
	l.close = f.Close
	return l, nil
}

// DevLogPath is empty unless a dev file is open.
func (l *runtimeLogger) DevLogPath() string {
	if l == nil {
		return ""
	}
	return l.filePath
}

// Library picks the single logger handed to internal packages: the console
// while unmuted, then the dev file, then a discarding logger.
func (l *runtimeLogger) Library() *charmLog.Logger {
	if l != nil && !l.muted {
		return l.console
	}
	if l != nil && l.file != nil {
		return l.file
	}
	return charmLog.New(io.Discard)
}

func (l *runtimeLogger) Close() error {
	if l == nil || l.close == nil {
		return nil
	}
	err := l.close()
	l.close = nil
	return err
}

// SetConsoleEnabled mutes or unmutes the stderr sink.
func (l *runtimeLogger) SetConsoleEnabled(enabled bool) {
	if l != nil {
		l.muted = !enabled
	}
}

// ConsoleWarn writes to stderr only, and only while the console is unmuted.
func (l *runtimeLogger) ConsoleWarn(msg string, keyvals ...any) {
	if l != nil && !l.muted {
		l.console.Warn(msg, keyvals...)
	}
}

func (l *runtimeLogger) emit(level charmLog.Level, msg string, keyvals []any) {
	if l == nil {
		return
	}
	if !l.muted {
		l.console.Log(level, msg, keyvals...)
	}
	if l.file != nil {
		l.file.Log(level, msg, keyvals...)
	}
}

func (l *runtimeLogger) Debug(msg string, keyvals ...any) { l.emit(charmLog.DebugLevel, msg, keyvals) }
func (l *runtimeLogger) Info(msg string, keyvals ...any)  { l.emit(charmLog.InfoLevel, msg, keyvals) }
func (l *runtimeLogger) Warn(msg string, keyvals ...any)  { l.emit(charmLog.WarnLevel, msg, keyvals) }
func (l *runtimeLogger) Error(msg string, keyvals ...any) { l.emit(charmLog.ErrorLevel, msg, keyvals) }

// devLogFilePath returns <dir>/<app>-YYYYMMDD.log. Relative dirs are anchored
// at the enclosing workspace so runs from subdirectories share one file.
func devLogFilePath(dir, appName string, day time.Time) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = filepath.Join(".roost", "log")
	}
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working dir: %w", err)
		}
		dir = filepath.Join(workspaceRootFrom(cwd), dir)
	}
	name := sanitizeLogFileStem(appName) + "-" + day.Format("20060102") + ".log"
	return filepath.Join(filepath.Clean(dir), name), nil
}

// workspaceRootFrom walks up from start to the first directory holding a
// go.mod or .git entry, falling back to start itself.
func workspaceRootFrom(start string) string {
	start = filepath.Clean(strings.TrimSpace(start))
	if start == "" {
		return "."
	}
	for dir := start; ; dir = filepath.Dir(dir) {
		if hasWorkspaceMarker(dir) {
			return dir
		}
		if filepath.Dir(dir) == dir {
			return start
		}
	}
}

func hasWorkspaceMarker(dir string) bool {
	for _, marker := range []string{"go.mod", ".git"} {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}

// sanitizeLogFileStem turns an app name into a file-name-safe stem.
func sanitizeLogFileStem(appName string) string {
	stem := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '-'
		}
		return r
	}, strings.TrimSpace(appName))
	if stem = strings.Trim(stem, "-"); stem == "" {
		return "roost"
	}
	return stem
}
