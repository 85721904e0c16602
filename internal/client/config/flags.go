package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/sessionkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     REST API root URL
//	-f string     cookie store file
//	-t duration   refresh timeout
//	-share        share one refresh between concurrent 401s
//
// args is filtered with flagx.FilterArgs first, so -c does not cause errors.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-f", "-t", "-share"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "server URL")
	fs.StringVar(&cfg.CookieStorePath, "f", cfg.CookieStorePath, "cookie store file")
	fs.DurationVar(&cfg.RefreshTimeout, "t", cfg.RefreshTimeout, "refresh timeout")
	fs.BoolVar(&cfg.ShareRefresh, "share", cfg.ShareRefresh, "share one refresh between concurrent requests")

	return fs.Parse(args)
}
