package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kofuk/dnssync/internal/fetcher"
	"github.com/kofuk/dnssync/internal/record"
	"gopkg.in/yaml.v3"
)

// Config is the parsed YAML configuration file.
type Config struct {
	CheckInterval int          `yaml:"check_interval"`
	Fetchers      []Fetcher    `yaml:"fetchers"`
	Providers     []Provider   `yaml:"providers"`
	Records       []RecordItem `yaml:"records"`
}

// Param is a free-form name/value pair used throughout the file.
type Param struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

func paramValue(params []Param, name string) (string, bool) {
	for _, param := range params {
		if param.Name == name {
			return param.Value, true
		}
	}
	return "", false
}

// Fetcher declares one public IP detection source.
type Fetcher struct {
	Name   string  `yaml:"name"`
	Type   string  `yaml:"type"`
	Params []Param `yaml:"params"`
}

// EnabledBackends resolves the backends the "enabled" param names. All
// known backends are enabled when the param is absent.
func (f Fetcher) EnabledBackends() ([]fetcher.Backend, error) {
	value, ok := paramValue(f.Params, "enabled")
	if !ok || value == "" {
		return fetcher.Backends(), nil
	}

	var backends []fetcher.Backend
	for _, name := range strings.Split(value, ",") {
		backend, err := fetcher.BackendByName(strings.TrimSpace(name))
		if err != nil {
			return nil, fmt.Errorf("fetcher %q: %w", f.Name, err)
		}
		backends = append(backends, backend)
	}
	return backends, nil
}

// CacheLifetime returns how long fetched addresses are reused.
func (f Fetcher) CacheLifetime() (time.Duration, error) {
	value, ok := paramValue(f.Params, "cache_lifetime")
	if !ok {
		return fetcher.DefaultLifetime, nil
	}

	lifetime, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("fetcher %q: invalid cache_lifetime %q: %w", f.Name, value, err)
	}
	if lifetime <= 0 {
		return 0, fmt.Errorf("fetcher %q: cache_lifetime must be positive", f.Name)
	}
	return lifetime, nil
}

// Authentication carries a provider's credentials as declared: a method
// name plus the params that method requires.
type Authentication struct {
	Method string  `yaml:"method"`
	Params []Param `yaml:"params"`
}

func (a Authentication) Param(name string) (string, bool) {
	return paramValue(a.Params, name)
}

// Provider declares one DNS provider account.
type Provider struct {
	Name           string         `yaml:"name"`
	Type           string         `yaml:"type"`
	Endpoint       string         `yaml:"endpoint"`
	Authentication Authentication `yaml:"authentication"`
}

// RecordProvider attaches a record to zones of a declared provider.
type RecordProvider struct {
	Name   string   `yaml:"name"`
	Zones  []string `yaml:"zones"`
	Params []Param  `yaml:"params"`
}

// RecordFetcher names a declared fetcher as a record's address source.
type RecordFetcher struct {
	Name string `yaml:"name"`
}

// RecordItem is one record declaration with its attachments.
type RecordItem struct {
	Type      string           `yaml:"type"`
	Name      string           `yaml:"name"`
	Content   string           `yaml:"content"`
	Comment   string           `yaml:"comment"`
	TTL       TTL              `yaml:"ttl"`
	Op        string           `yaml:"op"`
	Params    []Param          `yaml:"params"`
	Providers []RecordProvider `yaml:"providers"`
	Fetchers  []RecordFetcher  `yaml:"fetchers"`
}

// TTL decodes either the literal "auto" (or nothing) or a number of
// seconds, given as an integer or a numeric string.
type TTL record.TTL

func (t *TTL) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: invalid ttl", node.Line)
	}
	if node.Tag == "!!null" {
		*t = TTL(record.TTLAuto)
		return nil
	}

	raw := node.Value
	if raw == "" || strings.EqualFold(raw, "auto") {
		*t = TTL(record.TTLAuto)
		return nil
	}

	seconds, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return fmt.Errorf("line %d: invalid ttl %q", node.Line, raw)
	}
	*t = TTL(seconds)
	return nil
}

// ConfiguredRecords materializes the record declarations into domain
// records.
func (c *Config) ConfiguredRecords() ([]record.Configured, error) {
	records := make([]record.Configured, 0, len(c.Records))
	for _, item := range c.Records {
		rec, err := item.configured()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (item RecordItem) configured() (record.Configured, error) {
	content, err := record.ParseContent(item.Type, item.Content)
	if err != nil {
		return record.Configured{}, fmt.Errorf("record %q: %w", item.Name, err)
	}

	op, err := parseOp(item.Op)
	if err != nil {
		return record.Configured{}, fmt.Errorf("record %q: %w", item.Name, err)
	}

	providers := make([]record.Attachment, 0, len(item.Providers))
	for _, p := range item.Providers {
		providers = append(providers, record.Attachment{
			Provider: p.Name,
			Zones:    p.Zones,
			Params:   toParams(p.Params),
		})
	}

	fetchers := make([]string, 0, len(item.Fetchers))
	for _, f := range item.Fetchers {
		fetchers = append(fetchers, f.Name)
	}

	return record.Configured{
		Name:      item.Name,
		Content:   content,
		Comment:   item.Comment,
		TTL:       record.TTL(item.TTL),
		Op:        op,
		Params:    toParams(item.Params),
		Providers: providers,
		Fetchers:  fetchers,
	}, nil
}

func parseOp(op string) (record.Op, error) {
	switch strings.ToLower(op) {
	case "", "create":
		return record.OpCreate, nil
	case "purge":
		return record.OpPurge, nil
	default:
		return "", fmt.Errorf("unknown op %q", op)
	}
}

func toParams(params []Param) record.Params {
	if len(params) == 0 {
		return nil
	}
	result := make(record.Params, 0, len(params))
	for _, p := range params {
		result = append(result, record.Param{Name: p.Name, Value: p.Value})
	}
	return result
}

// Provider returns the provider declaration with the given name.
func (c *Config) Provider(name string) (Provider, bool) {
	for _, p := range c.Providers {
		if p.Name == name {
			return p, true
		}
	}
	return Provider{}, false
}

// Fetcher returns the fetcher declaration with the given name.
func (c *Config) Fetcher(name string) (Fetcher, bool) {
	for _, f := range c.Fetchers {
		if f.Name == name {
			return f, true
		}
	}
	return Fetcher{}, false
}
