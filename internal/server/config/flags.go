package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/sessionkeeper/internal/flagx"
	"github.com/dmitrijs2005/sessionkeeper/internal/timex"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   REST bind address (e.g., ":3000")
//	-g string   gRPC health bind address, empty disables
//	-d string   PostgreSQL DSN
//	-s string   storage driver: memory, postgres or mongo
//	-m string   environment: local, dev or production
//	-l string   log level
//	-t string   access token lifetime ("15m")
//	-r string   refresh token lifetime ("30d")
//
// args is filtered with flagx.FilterArgs first, so flags owned by other
// components (like -c) do not cause errors.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-d", "-s", "-m", "-l", "-t", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port of the grpc health probe")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.StorageDriver, "s", config.StorageDriver, "storage driver")
	fs.StringVar(&config.Env, "m", config.Env, "environment")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.Var(&durationFlag{&config.AccessTokenTTL}, "t", "access token lifetime")
	fs.Var(&durationFlag{&config.RefreshTokenTTL}, "r", "refresh token lifetime")

	return fs.Parse(args)
}

// durationFlag adapts timex.Duration to flag.Value.
type durationFlag struct{ d *timex.Duration }

func (f *durationFlag) String() string {
	if f.d == nil {
		return ""
	}
	return f.d.String()
}

func (f *durationFlag) Set(s string) error { return f.d.SetValue(s) }
