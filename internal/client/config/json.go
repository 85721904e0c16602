package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/sessionkeeper/internal/flagx"
	"github.com/dmitrijs2005/sessionkeeper/internal/timex"
)

// JSONConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields tell "absent" from "zero", so a partial file only overrides what
// it names.
type JSONConfig struct {
	ServerURL       *string         `json:"server_url"`
	CookieStorePath *string         `json:"cookie_store_path"`
	RefreshTimeout  *timex.Duration `json:"refresh_timeout"`
	RequestTimeout  *timex.Duration `json:"request_timeout"`
	ShareRefresh    *bool           `json:"share_refresh"`
}

// parseJSON overlays cfg with the file named by -c or -config in args.
// Without the flag nothing happens.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPathFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.ServerURL != nil {
		cfg.ServerURL = *jc.ServerURL
	}
	if jc.CookieStorePath != nil {
		cfg.CookieStorePath = *jc.CookieStorePath
	}
	if jc.RefreshTimeout != nil {
		cfg.RefreshTimeout = jc.RefreshTimeout.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.ShareRefresh != nil {
		cfg.ShareRefresh = *jc.ShareRefresh
	}
	return nil
}
