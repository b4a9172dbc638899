package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

type Config struct {
	HTTPPort        int
	LogFile         string
	Verbose         bool
	Users           []string      // name:password pairs
	UpstreamTimeout time.Duration // Bounds one whole upstream exchange
	UpstreamProxy   string        // Optional http://, https:// or socks5:// URL for outbound calls
	RedisAddr       string        // Empty disables snapshot export
	RedisPassword   string
	RedisKeyPrefix  string
	ExportInterval  time.Duration // 0 exports only at shutdown
	Prometheus      bool
}

// ParseFlags parses args (without the program name) into a Config.
func ParseFlags(args []string) (*Config, error) {
	cfg := &Config{}

	fs := pflag.NewFlagSet("proxy", pflag.ContinueOnError)
	fs.SortFlags = false

	fs.IntVar(&cfg.HTTPPort, "http-port", 8080, "HTTP listen port for the relay and the metrics page")
	fs.StringVar(&cfg.LogFile, "log-file", "", "Also append log entries to this file. Empty disables.")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Log every relayed request")
	fs.StringArrayVar(&cfg.Users, "user", []string{"username:password"}, "Accepted proxy credential as name:password (repeatable)")
	fs.DurationVar(&cfg.UpstreamTimeout, "upstream-timeout", 30*time.Second, "Timeout for one upstream request including the response body")
	fs.StringVar(&cfg.UpstreamProxy, "upstream-proxy", "", "Send outbound calls through this proxy: http://, https:// or socks5://[user:pass@]host:port")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", "", "Redis address for statistics snapshot export. Empty disables.")
	fs.StringVar(&cfg.RedisPassword, "redis-password", "", "Redis password")
	fs.StringVar(&cfg.RedisKeyPrefix, "redis-key-prefix", "relay", "Prefix for exported Redis keys")
	fs.DurationVar(&cfg.ExportInterval, "export-interval", 0, "Export statistics to Redis at this interval; 0 exports only at shutdown")
	fs.BoolVar(&cfg.Prometheus, "prometheus", false, "Expose statistics at /metrics/prometheus")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid --http-port: %d", c.HTTPPort)
	}
	if c.UpstreamTimeout <= 0 {
		return errors.New("invalid --upstream-timeout: must be > 0")
	}
	if c.ExportInterval < 0 {
		return errors.New("invalid --export-interval: must be >= 0")
	}
	if len(c.Users) == 0 {
		return errors.New("at least one --user is required")
	}
	for _, u := range c.Users {
		name, _, ok := strings.Cut(u, ":")
		if !ok || name == "" {
			return fmt.Errorf("invalid --user %q: expected name:password", u)
		}
	}
	if c.UpstreamProxy != "" {
		u, err := url.Parse(c.UpstreamProxy)
		if err != nil {
			return fmt.Errorf("invalid --upstream-proxy: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https", "socks5":
		default:
			return fmt.Errorf("invalid --upstream-proxy scheme: %q", u.Scheme)
		}
		if u.Host == "" {
			return errors.New("invalid --upstream-proxy: missing host")
		}
	}
	return nil
}

// Credentials returns the name to password table built from Users. A later
// entry for the same name wins.
func (c *Config) Credentials() map[string]string {
	creds := make(map[string]string, len(c.Users))
	for _, u := range c.Users {
		name, pass, _ := strings.Cut(u, ":")
		creds[name] = pass
	}
	return creds
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func (c *Config) ExportEnabled() bool {
	return c.RedisAddr != ""
}
