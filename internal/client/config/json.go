package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/credhex/internal/flagx"
	"github.com/dmitrijs2005/credhex/internal/timex"
)

// JSONConfig is the on-disk shape of the config file. Absent fields keep
// their previous value.
type JSONConfig struct {
	ServerEndpointAddr *string         `json:"server_endpoint_addr"`
	PublicBaseURL      *string         `json:"public_base_url"`
	Bucket             *string         `json:"bucket"`
	RequestTimeout     *timex.Duration `json:"request_timeout"`
	LogLevel           *string         `json:"log_level"`
}

func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.ServerEndpointAddr != nil {
		cfg.ServerEndpointAddr = *jc.ServerEndpointAddr
	}
	if jc.PublicBaseURL != nil {
		cfg.PublicBaseURL = *jc.PublicBaseURL
	}
	if jc.Bucket != nil {
		cfg.Bucket = *jc.Bucket
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	return nil
}
