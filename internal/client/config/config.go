package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the credhex shell.
type Config struct {
	ServerEndpointAddr string
	PublicBaseURL      string
	Bucket             string
	RequestTimeout     time.Duration
	LogLevel           string
}

func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.PublicBaseURL = "http://127.0.0.1:9000"
	c.Bucket = "certificates"
	c.RequestTimeout = 30 * time.Second
	c.LogLevel = "warn"
}

// LoadConfig applies defaults, then the JSON file, then flags.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, os.Args[1:]); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, os.Args[1:]); err != nil {
		return nil, err
	}
	return cfg, nil
}
