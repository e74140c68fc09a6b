package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// envConfig is a DTO for the environment overlay. Unset variables stay at
// their zero value and do not override earlier layers.
type envConfig struct {
	ServerBaseURL   string        `env:"ARECA_SERVER_URL"`
	RequestTimeout  time.Duration `env:"ARECA_REQUEST_TIMEOUT"`
	DatabasePath    string        `env:"ARECA_DB_PATH"`
	HistoryPageSize int           `env:"ARECA_HISTORY_PAGE_SIZE"`
}

// parseEnv overlays cfg with values from environment variables.
func parseEnv(cfg *Config) {
	var ec envConfig
	if err := cleanenv.ReadEnv(&ec); err != nil {
		panic(err)
	}

	if ec.ServerBaseURL != "" {
		cfg.ServerBaseURL = ec.ServerBaseURL
	}
	if ec.RequestTimeout != 0 {
		cfg.RequestTimeout = ec.RequestTimeout
	}
	if ec.DatabasePath != "" {
		cfg.DatabasePath = ec.DatabasePath
	}
	if ec.HistoryPageSize != 0 {
		cfg.HistoryPageSize = ec.HistoryPageSize
	}
}
