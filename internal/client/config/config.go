// Package config holds runtime settings for the ArecaNut CLI and their
// layered loading: defaults, then a JSON file, then environment variables,
// then command-line flags, with later sources taking precedence.
package config

import "time"

// Config holds runtime settings for the client.
//
// Fields:
//   - ServerBaseURL: base URL of the analysis service API.
//   - RequestTimeout: upper bound on any single HTTP request.
//   - DatabasePath: sqlite file holding the persisted session.
//   - HistoryPageSize: default page size for history fetches.
type Config struct {
	ServerBaseURL   string
	RequestTimeout  time.Duration
	DatabasePath    string
	HistoryPageSize int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://localhost:8000/api"
	c.RequestTimeout = 30 * time.Second
	c.DatabasePath = "session.db"
	c.HistoryPageSize = 10
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if a config file was given), environment variables, and
// command-line flags. Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
