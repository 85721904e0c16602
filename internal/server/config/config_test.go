package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/timex"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, "dev", c.Env)
	assert.Equal(t, ":3000", c.EndpointAddrHTTP)
	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, "memory", c.StorageDriver)
	assert.Equal(t, DefaultAccessSecret, c.AccessSecret)
	assert.Equal(t, DefaultRefreshSecret, c.RefreshSecret)
	assert.Equal(t, 15*time.Minute, c.AccessTokenTTL.Duration)
	assert.Equal(t, 30*24*time.Hour, c.RefreshTokenTTL.Duration)
	assert.Equal(t, 10, c.BcryptCost)
	assert.Equal(t, "http://localhost:4200", c.CORSOrigin)
	assert.Equal(t, time.Hour, c.PurgeInterval.Duration)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	c, err := LoadConfig(nil)
	require.NoError(t, err)
	require.NotNil(t, c, "LoadConfig must not return nil")

	assert.Empty(t, cmp.Diff(defaults(), c))
}

func TestLoadConfig_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_ACCESS_SECRET", "env-access")
	t.Setenv("JWT_REFRESH_EXPIRY", "7d")
	t.Setenv("BCRYPT_COST", "12")

	c, err := LoadConfig(nil)
	require.NoError(t, err)

	want := defaults()
	want.Env = "production"
	want.AccessSecret = "env-access"
	want.RefreshTokenTTL = timex.Duration{Duration: 7 * 24 * time.Hour}
	want.BcryptCost = 12

	assert.Empty(t, cmp.Diff(want, c))
}

func TestLoadConfig_FileThenEnvThenFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_addr: ":8080"
storage_driver: postgres
jwt_access_expiry: 5m
cors_origin: https://app.example
`), 0o600))

	t.Setenv("HTTP_ADDR", ":9090")

	c, err := LoadConfig([]string{"-c", path, "-s", "mongo", "-r", "2d"})
	require.NoError(t, err)

	assert.Equal(t, ":9090", c.EndpointAddrHTTP, "env beats file")
	assert.Equal(t, "mongo", c.StorageDriver, "flag beats file")
	assert.Equal(t, 5*time.Minute, c.AccessTokenTTL.Duration)
	assert.Equal(t, 48*time.Hour, c.RefreshTokenTTL.Duration)
	assert.Equal(t, "https://app.example", c.CORSOrigin)
	assert.Equal(t, DefaultAccessSecret, c.AccessSecret, "unset keys keep defaults")
}

func TestLoadConfig_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"grpc_addr": "", "jwt_access_expiry": 900, "jwt_refresh_expiry": "1d"}`), 0o600))

	c, err := LoadConfig([]string{"-config", path})
	require.NoError(t, err)

	assert.Equal(t, "", c.EndpointAddrGRPC)
	assert.Equal(t, 15*time.Minute, c.AccessTokenTTL.Duration, "bare number is seconds")
	assert.Equal(t, 24*time.Hour, c.RefreshTokenTTL.Duration)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig([]string{"-c", filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)

	_, err = LoadConfig([]string{"-t", "soon"})
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
		anyErr  bool
	}{
		{name: "dev defaults ok", mutate: func(*Config) {}},
		{name: "production defaults rejected", mutate: func(c *Config) { c.Env = "production" }, wantErr: ErrInsecureSecrets},
		{name: "production equal secrets rejected", mutate: func(c *Config) {
			c.Env = "production"
			c.AccessSecret, c.RefreshSecret = "same", "same"
		}, wantErr: ErrInsecureSecrets},
		{name: "production custom secrets ok", mutate: func(c *Config) {
			c.Env = "production"
			c.AccessSecret, c.RefreshSecret = "a-long-secret", "r-long-secret"
		}},
		{name: "empty secret rejected", mutate: func(c *Config) { c.RefreshSecret = "" }, wantErr: ErrInsecureSecrets},
		{name: "zero ttl rejected", mutate: func(c *Config) { c.AccessTokenTTL = timex.Duration{} }, anyErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaults()
			tt.mutate(c)

			err := c.Validate()
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.anyErr:
				require.Error(t, err)
			default:
				require.NoError(t, err)
			}
		})
	}
}
