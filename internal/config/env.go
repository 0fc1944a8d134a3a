package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "PALETTESNIFFER_"

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to stat %s: %w", f, err)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// envBinding applies one environment variable to the config.
type envBinding struct {
	name  string
	apply func(c *Config, v string) error
}

var envBindings = []envBinding{
	{"LOG_LEVEL", func(c *Config, v string) error { c.LogLevel = v; return nil }},
	{"WORKERS", intSetter(func(c *Config) *int { return &c.Extraction.Workers })},
	{"ALGORITHM", func(c *Config, v string) error { c.Extraction.Algorithm = v; return nil }},
	{"K", intSetter(func(c *Config) *int { return &c.Extraction.K })},
	{"MAX_DIMENSION", intSetter(func(c *Config) *int { return &c.Extraction.MaxDimension })},
	{"EXTERNAL", boolSetter(func(c *Config) *bool { return &c.Resolver.External })},
	{"MAX_RETRIES", intSetter(func(c *Config) *int { return &c.Resolver.MaxRetries })},
	{"BACKOFF_UNIT", durationSetter(func(c *Config) *time.Duration { return &c.Resolver.BackoffUnit })},
	{"REQUESTS_PER_SECOND", func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		c.Resolver.RequestsPerSecond = f
		return nil
	}},
	{"BLOCK_PRIVATE_HOSTS", boolSetter(func(c *Config) *bool { return &c.Resolver.BlockPrivateHosts })},
	{"USER_AGENT", func(c *Config, v string) error { c.Resolver.UserAgent = v; return nil }},
	{"HEADLESS", boolSetter(func(c *Config) *bool { return &c.Resolver.Headless.Enabled })},
	{"SSR", boolSetter(func(c *Config) *bool { return &c.Resolver.SSR.Enabled })},
	{"CSS", boolSetter(func(c *Config) *bool { return &c.Resolver.CSS.Enabled })},
	{"METADATA_ENDPOINT", func(c *Config, v string) error { c.Resolver.Metadata.Endpoint = v; return nil }},
	{"CACHE_TTL", durationSetter(func(c *Config) *time.Duration { return &c.Cache.TTL })},
	{"CACHE_MAX_ENTRIES", intSetter(func(c *Config) *int { return &c.Cache.MaxEntries })},
	{"RATE_LIMIT_MAX", intSetter(func(c *Config) *int { return &c.RateLimit.MaxRequests })},
	{"RATE_LIMIT_WINDOW", durationSetter(func(c *Config) *time.Duration { return &c.RateLimit.Window })},
}

// ApplyEnv overrides settings from PALETTESNIFFER_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	for _, b := range envBindings {
		v, ok := lookup(EnvPrefix + b.name)
		if !ok || v == "" {
			continue
		}
		if err := b.apply(c, v); err != nil {
			return fmt.Errorf("invalid %s%s=%q: %w", EnvPrefix, b.name, v, err)
		}
	}
	return nil
}

func intSetter(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func boolSetter(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

func durationSetter(field func(*Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*field(c) = d
		return nil
	}
}

func urlQueryEscape(s string) string {
	return url.QueryEscape(s)
}

func jsonQuote(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
