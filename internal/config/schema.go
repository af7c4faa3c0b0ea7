// Package config loads stride's configuration.
//
// Values come from, in increasing precedence: built-in defaults, a YAML
// file, and STRIDE_* environment variables (STRIDE_LOG_LEVEL overrides
// log.level). The merged result is checked against an embedded CUE schema.
package config

// Config is the full stride configuration.
type Config struct {
	// Database is the SQLite file, or ":memory:" for a store that lives only
	// as long as the process.
	Database string `yaml:"database" mapstructure:"database" json:"database"`

	// Caller is the owner identity used when none is given on the command
	// line.
	Caller string `yaml:"caller" mapstructure:"caller" json:"caller"`

	Log   LogConfig   `yaml:"log" mapstructure:"log" json:"log"`
	Quota QuotaConfig `yaml:"quota" mapstructure:"quota" json:"quota"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level" json:"level"`
	Format string `yaml:"format" mapstructure:"format" json:"format"`
}

// QuotaConfig prices entity storage.
type QuotaConfig struct {
	CostPerByte uint64 `yaml:"cost_per_byte" mapstructure:"cost_per_byte" json:"cost_per_byte"`
	// Available is the storage balance. Zero means unlimited.
	Available uint64 `yaml:"available" mapstructure:"available" json:"available"`
}
