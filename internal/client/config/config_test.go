package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	return &Config{
		ServerURL:       "http://localhost:3000",
		CookieStorePath: "session.db",
		RefreshTimeout:  10 * time.Second,
		RequestTimeout:  30 * time.Second,
	}
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Empty(t, cmp.Diff(defaults(), &c))
}

func TestLoadConfig_NoArgsGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(defaults(), cfg))
}

func TestLoadConfig_FlagsOverrideJSON(t *testing.T) {
	path := writeTempJSON(t, "", "", map[string]any{
		"server_url":      "http://json:1",
		"refresh_timeout": "3s",
		"share_refresh":   true,
	})

	cfg, err := LoadConfig([]string{"-c", path, "-a", "http://flag:2", "-f", "/tmp/x.db"})
	require.NoError(t, err)

	want := defaults()
	want.ServerURL = "http://flag:2"
	want.CookieStorePath = "/tmp/x.db"
	want.RefreshTimeout = 3 * time.Second
	want.ShareRefresh = true
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    func(*Config)
		wantErr bool
	}{
		{name: "none", args: nil, want: func(*Config) {}},
		{
			name: "all",
			args: []string{"-a", "http://127.0.0.1:9090", "-f", "s.db", "-t", "2s", "-share"},
			want: func(c *Config) {
				c.ServerURL = "http://127.0.0.1:9090"
				c.CookieStorePath = "s.db"
				c.RefreshTimeout = 2 * time.Second
				c.ShareRefresh = true
			},
		},
		{name: "unknown flags ignored", args: []string{"-x", "1", "-a", "http://h"}, want: func(c *Config) { c.ServerURL = "http://h" }},
		{name: "bad duration", args: []string{"-t", "soon"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			err := parseFlags(cfg, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			want := defaults()
			tt.want(want)
			assert.Empty(t, cmp.Diff(want, cfg))
		})
	}
}
