package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const defaultAppName = "roost"

// baseOverrides maps an OS to the variables that replace its config and data
// base directories, in that order.
var baseOverrides = map[string][2]string{
	"linux":   {"XDG_CONFIG_HOME", "XDG_DATA_HOME"},
	"windows": {"APPDATA", "LOCALAPPDATA"},
}

// Paths holds the per-user locations roost reads and writes.
type Paths struct {
	ConfigPath string
	DataDir    string
	DBPath     string
	LogDir     string
	ExportPath string
}

// Options controls path resolution.
type Options struct {
	AppName string
	DevMode bool
	// Getenv overrides os.Getenv, mainly for tests.
	Getenv func(string) string
}

// DefaultPaths resolves paths for the default app name.
func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{AppName: defaultAppName})
}

// DefaultPathsWithOptions resolves paths for the running OS. Dev mode appends
// "-dev" to the app name so dev data never touches the real board.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	appName := strings.TrimSpace(opts.AppName)
	if appName == "" {
		appName = defaultAppName
	}
	if opts.DevMode {
		appName += "-dev"
	}
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}
	dataDir := configDir
	if runtime.GOOS == "linux" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, fmt.Errorf("user home dir: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}

	env := map[string]string{}
	for _, key := range baseOverrides[runtime.GOOS] {
		env[key] = strings.TrimSpace(getenv(key))
	}
	return PathsFor(runtime.GOOS, env, configDir, dataDir, appName)
}

// PathsFor resolves paths for goos from explicit base directories. Variables
// listed in baseOverrides for goos win over the bases when set in env.
func PathsFor(goos string, env map[string]string, userConfigDir, userDataDir, appName string) (Paths, error) {
	if userConfigDir == "" || userDataDir == "" {
		return Paths{}, errors.New("empty base dirs")
	}
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, errors.New("empty app name")
	}

	bases := [2]string{userConfigDir, userDataDir}
	if keys, ok := baseOverrides[goos]; ok {
		for i, key := range keys {
			if v := env[key]; v != "" {
				bases[i] = v
			}
		}
	}

	dataDir := filepath.Join(bases[1], appName)
	return Paths{
		ConfigPath: filepath.Join(bases[0], appName, "config.toml"),
		DataDir:    dataDir,
		DBPath:     filepath.Join(dataDir, appName+".db"),
		LogDir:     filepath.Join(dataDir, "log"),
		ExportPath: filepath.Join(dataDir, appName+"-snapshot.json"),
	}, nil
}
