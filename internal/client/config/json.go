package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/flagx"
	"github.com/Ajilv/ArecaNut-DiseaseDetectionAi/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify the timeout either as a string like
// "30s" or as integer nanoseconds.
type JsonConfig struct {
	ServerBaseURL   string         `json:"server_base_url"`
	RequestTimeout  timex.Duration `json:"request_timeout"`
	DatabasePath    string         `json:"database_path"`
	HistoryPageSize int            `json:"history_page_size"`
}

// parseJson overlays cfg with values from the JSON file named by the -c or
// -config flags. With no such flag, nothing is loaded. Read or unmarshal
// errors panic; config problems should stop startup immediately.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}
	parseJsonFile(cfg, jsonConfigFile)
}

func parseJsonFile(cfg *Config, path string) {
	var jc JsonConfig

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.HistoryPageSize != 0 {
		cfg.HistoryPageSize = jc.HistoryPageSize
	}
}
