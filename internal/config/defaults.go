package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/roach88/stride/internal/quota"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Database: DefaultDatabasePath(),
		Caller:   "local",
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Quota: QuotaConfig{
			CostPerByte: 1,
		},
	}
}

// Oracle returns the storage oracle described by the quota settings.
func (c *Config) Oracle() quota.StaticOracle {
	o := quota.StaticOracle{Balance: c.Quota.Available, PerByte: c.Quota.CostPerByte}
	if o.Balance == 0 {
		o.Balance = math.MaxUint64
	}
	return o
}

// DefaultDataDir returns the OS-appropriate data directory for stride.
//
//   - macOS:   ~/Library/Application Support/stride
//   - Linux:   $XDG_DATA_HOME/stride (fallback ~/.local/share/stride)
//   - Windows: %LOCALAPPDATA%\stride (fallback %APPDATA%\stride)
func DefaultDataDir() string {
	return dataDirForOS(runtime.GOOS)
}

func dataDirForOS(goos string) string {
	home, _ := os.UserHomeDir()

	switch goos {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "stride")
	case "windows":
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return filepath.Join(dir, "stride")
		}
		if dir := os.Getenv("APPDATA"); dir != "" {
			return filepath.Join(dir, "stride")
		}
		return filepath.Join(home, "stride")
	default:
		if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
			return filepath.Join(dir, "stride")
		}
		return filepath.Join(home, ".local", "share", "stride")
	}
}

// DefaultPath is where Load looks when no file is named.
func DefaultPath() string {
	return filepath.Join(DefaultDataDir(), "config.yaml")
}

// DefaultDatabasePath is the SQLite file used when no database is named.
func DefaultDatabasePath() string {
	return filepath.Join(DefaultDataDir(), "stride.db")
}

// WriteDefault writes the default configuration as YAML, creating parent
// directories. It refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	header := []byte("# stride configuration\n")
	return os.WriteFile(path, append(header, data...), 0o644)
}
