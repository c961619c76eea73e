package config

import (
	"github.com/kelseyhightower/envconfig"
)

// Settings is the process-level configuration taken from the
// environment, as opposed to the configuration file it points at.
type Settings struct {
	ConfigPath string `envconfig:"DNSSYNC_CONFIG"`
	Debug      bool   `envconfig:"DNSSYNC_DEBUG"`
	StatusAddr string `envconfig:"DNSSYNC_STATUS_ADDR"`
}

func LoadSettings() (*Settings, error) {
	var result Settings
	if err := envconfig.Process("", &result); err != nil {
		return nil, err
	}
	if result.ConfigPath == "" {
		result.ConfigPath = "config.yml"
	}
	return &result, nil
}
