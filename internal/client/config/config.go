package config

import "time"

// Config holds runtime settings for the sessionkeeper CLI.
type Config struct {
	// ServerURL is the REST API root.
	ServerURL string
	// CookieStorePath is the SQLite file that keeps the refresh cookie
	// between runs.
	CookieStorePath string
	// RefreshTimeout bounds a single token refresh.
	RefreshTimeout time.Duration
	// RequestTimeout bounds a whole request, retry included.
	RequestTimeout time.Duration
	// ShareRefresh lets concurrent 401s wait for one shared refresh instead
	// of passing the 401 through.
	ShareRefresh bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:3000"
	c.CookieStorePath = "session.db"
	c.RefreshTimeout = 10 * time.Second
	c.RequestTimeout = 30 * time.Second
	c.ShareRefresh = false
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags from args. Later sources take
// precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
