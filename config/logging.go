package config

import "fmt"

var logLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// LoggingConfig controls the zerolog output of the process.
type LoggingConfig struct {
	// Level is the minimum severity: trace, debug, info, warn or error.
	Level string `json:"level"`
	// Pretty switches to human-readable console output.
	Pretty bool `json:"pretty"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

// Validate checks mandatory fields.
func (c LoggingConfig) Validate() error {
	if !logLevels[c.Level] {
		return fmt.Errorf("unknown log level %s", c.Level)
	}
	return nil
}
