package config

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

var defaultConfig = Config{
	CheckInterval: 300,
	Fetchers: []Fetcher{
		{Name: "default", Type: "http"},
	},
}

// Load reads and validates the configuration file at path. Absent
// fields are filled with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a configuration document.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := mergo.Merge(&config, defaultConfig); err != nil {
		return nil, fmt.Errorf("merge defaults: %w", err)
	}
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

func (c *Config) validate() error {
	if c.CheckInterval < 1 {
		return fmt.Errorf("check_interval must be at least 1 second")
	}

	fetcherNames := make(map[string]bool)
	for _, f := range c.Fetchers {
		if f.Name == "" {
			return fmt.Errorf("fetcher without a name")
		}
		if fetcherNames[f.Name] {
			return fmt.Errorf("fetcher %q: declared twice", f.Name)
		}
		fetcherNames[f.Name] = true

		if f.Type != "http" {
			return fmt.Errorf("fetcher %q: unknown type %q", f.Name, f.Type)
		}
		if _, err := f.EnabledBackends(); err != nil {
			return err
		}
		if _, err := f.CacheLifetime(); err != nil {
			return err
		}
	}

	providerNames := make(map[string]bool)
	for _, p := range c.Providers {
		if p.Name == "" {
			return fmt.Errorf("provider without a name")
		}
		if providerNames[p.Name] {
			return fmt.Errorf("provider %q: declared twice", p.Name)
		}
		providerNames[p.Name] = true

		if p.Type != "cloudflare" {
			return fmt.Errorf("provider %q: unknown type %q", p.Name, p.Type)
		}
		if err := p.validateAuthentication(); err != nil {
			return fmt.Errorf("provider %q: %w", p.Name, err)
		}
	}

	for _, item := range c.Records {
		if item.Name == "" {
			return fmt.Errorf("record without a name")
		}
		if _, err := item.configured(); err != nil {
			return err
		}
		for _, p := range item.Providers {
			if !providerNames[p.Name] {
				return fmt.Errorf("record %q: undeclared provider %q", item.Name, p.Name)
			}
			if len(p.Zones) == 0 {
				return fmt.Errorf("record %q: provider %q has no zones", item.Name, p.Name)
			}
		}
		for _, f := range item.Fetchers {
			if !fetcherNames[f.Name] {
				return fmt.Errorf("record %q: undeclared fetcher %q", item.Name, f.Name)
			}
		}
	}

	return nil
}

func (p Provider) validateAuthentication() error {
	auth := p.Authentication
	switch auth.Method {
	case "api_token":
		if token, ok := auth.Param("api_token"); !ok || token == "" {
			return fmt.Errorf("authentication method api_token requires an api_token param")
		}
	case "api_key":
		if email, ok := auth.Param("email"); !ok || email == "" {
			return fmt.Errorf("authentication method api_key requires an email param")
		}
		if key, ok := auth.Param("key"); !ok || key == "" {
			return fmt.Errorf("authentication method api_key requires a key param")
		}
	default:
		return fmt.Errorf("unknown authentication method %q", auth.Method)
	}
	return nil
}
