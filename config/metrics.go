package config

import "fmt"

// InfluxConfig points at an InfluxDB v2 instance.
type InfluxConfig struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url"`
	Token   string `json:"token"`
	Org     string `json:"org"`
	Bucket  string `json:"bucket"`
}

// MetricsConfig selects and configures the metrics sinks.
type MetricsConfig struct {
	PrometheusEnabled bool         `json:"prometheus_enabled"`
	PrometheusPort    int          `json:"prometheus_port"`
	Influx            InfluxConfig `json:"influx"`
}

// SetDefaults applies sane defaults.
func (c *MetricsConfig) SetDefaults() {
	if c.PrometheusPort == 0 {
		c.PrometheusPort = 9090
	}
}

// PrometheusAddr returns the listen address of the metrics server.
func (c MetricsConfig) PrometheusAddr() string {
	return fmt.Sprintf(":%d", c.PrometheusPort)
}
