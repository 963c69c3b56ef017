package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/credhex/internal/flagx"
)

// parseFlags reads only the flags it owns from args, so the shell can keep
// its own arguments.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-u", "-b", "-t", "-l"})

	fs := flag.NewFlagSet("credhex", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.PublicBaseURL, "u", cfg.PublicBaseURL, "public base URL of the object storage")
	fs.StringVar(&cfg.Bucket, "b", cfg.Bucket, "bucket holding the certificates")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}
