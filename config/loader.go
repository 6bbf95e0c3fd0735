package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the global application configuration
var Config AppConfig

// LoadAppConfig loads and validates the application configuration from config.yml
func LoadAppConfig() error {
	paths := []string{"config.yml", "./config/config.yml"}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return err
	}
	v := validator.New()
	if err := v.Struct(cfg.Server); err != nil {
		return err
	}
	if err := v.Struct(cfg.Upstream); err != nil {
		return err
	}
	if err := v.Struct(cfg.GTFSRT); err != nil {
		return err
	}
	Config = cfg
	applyDefaults(&Config)
	return nil
}

func applyDefaults(c *AppConfig) {
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Server.ShutdownTimeoutMS == 0 {
		c.Server.ShutdownTimeoutMS = 10000
	}
	if c.Upstream.PathPrefix == "" {
		c.Upstream.PathPrefix = "/api"
	}
	if c.Upstream.TimeoutMS == 0 {
		c.Upstream.TimeoutMS = 10000
	}
	if c.Relay.ClientCookieName == "" {
		c.Relay.ClientCookieName = "fw_client"
	}
	if c.Relay.RateLimitPerMinute == 0 {
		c.Relay.RateLimitPerMinute = 200
	}
	if c.Session.DurationMS == 0 {
		c.Session.DurationMS = 8 * 60 * 60 * 1000
	}
	if c.Tracking.PollIntervalMS == 0 {
		c.Tracking.PollIntervalMS = 30000
	}
	if c.Tracking.Map.DefaultZoom == 0 {
		c.Tracking.Map.DefaultZoom = 13
	}
	if c.Tracking.Map.SelectZoom == 0 {
		c.Tracking.Map.SelectZoom = 15
	}
	if c.GTFSRT.TimeoutMS == 0 {
		c.GTFSRT.TimeoutMS = 10000
	}
	if c.Export.ProducerRef == "" {
		c.Export.ProducerRef = "FLEETWATCH"
	}
}
