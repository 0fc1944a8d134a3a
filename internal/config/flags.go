package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

// Flag names bound to configuration settings.
const (
	FlagConfig            = "config"
	FlagLogLevel          = "log-level"
	FlagWorkers           = "workers"
	FlagMaxRetries        = "max-retries"
	FlagBackoffUnit       = "backoff-unit"
	FlagRequestsPerSecond = "requests-per-second"
	FlagBlockPrivateHosts = "block-private-hosts"
	FlagCacheTTL          = "cache-ttl"
	FlagRateLimit         = "rate-limit"
)

// RegisterFlags adds the configuration flags to fs. Flag defaults mirror
// Default(); only flags set explicitly override other sources.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(FlagConfig, "", "path to a YAML config file")
	fs.String(FlagLogLevel, d.LogLevel, "log level (trace, debug, info, warn, error, off)")
	fs.Int(FlagWorkers, d.Extraction.Workers, "extraction worker goroutines (0 = one per CPU)")
	fs.Int(FlagMaxRetries, d.Resolver.MaxRetries, "retries per URL strategy")
	fs.Duration(FlagBackoffUnit, d.Resolver.BackoffUnit, "base delay for exponential retry backoff")
	fs.Float64(FlagRequestsPerSecond, d.Resolver.RequestsPerSecond, "pace outbound requests (0 = unlimited)")
	fs.Bool(FlagBlockPrivateHosts, d.Resolver.BlockPrivateHosts, "reject URLs pointing at local or private hosts")
	fs.Duration(FlagCacheTTL, d.Cache.TTL, "how long URL results are cached")
	fs.Int(FlagRateLimit, d.RateLimit.MaxRequests, "requests allowed per domain per window")
}

// ApplyFlags overrides settings from flags that were set on the command line.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	var err error
	set := func(name string, apply func() error) {
		if err != nil || !fs.Changed(name) {
			return
		}
		if e := apply(); e != nil {
			err = fmt.Errorf("--%s: %w", name, e)
		}
	}

	set(FlagLogLevel, func() (e error) { c.LogLevel, e = fs.GetString(FlagLogLevel); return })
	set(FlagWorkers, func() (e error) { c.Extraction.Workers, e = fs.GetInt(FlagWorkers); return })
	set(FlagMaxRetries, func() (e error) { c.Resolver.MaxRetries, e = fs.GetInt(FlagMaxRetries); return })
	set(FlagBackoffUnit, func() (e error) { c.Resolver.BackoffUnit, e = fs.GetDuration(FlagBackoffUnit); return })
	set(FlagRequestsPerSecond, func() (e error) {
		c.Resolver.RequestsPerSecond, e = fs.GetFloat64(FlagRequestsPerSecond)
		return
	})
	set(FlagBlockPrivateHosts, func() (e error) {
		c.Resolver.BlockPrivateHosts, e = fs.GetBool(FlagBlockPrivateHosts)
		return
	})
	set(FlagCacheTTL, func() (e error) { c.Cache.TTL, e = fs.GetDuration(FlagCacheTTL); return })
	set(FlagRateLimit, func() (e error) { c.RateLimit.MaxRequests, e = fs.GetInt(FlagRateLimit); return })
	return err
}

// Load builds the configuration from every source: defaults, the YAML file
// named by --config, .env and PALETTESNIFFER_* variables, then explicit flags.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cfg := Default()
	if path, _ := fs.GetString(FlagConfig); path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.ApplyFlags(fs); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
