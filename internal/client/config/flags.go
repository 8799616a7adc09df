package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/classkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-q string   path of the local queue database (default from Config)
//	-d string   PostgreSQL DSN of the evidence collection (default from Config)
//	-a string   host:port probed by the connectivity watcher (default from Config)
//	-i int      online check interval in seconds (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-q", "-d", "-a", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.QueueDSN, "q", cfg.QueueDSN, "path of the local queue database")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "PostgreSQL DSN of the evidence collection")
	fs.StringVar(&cfg.ProbeAddr, "a", cfg.ProbeAddr, "address and port probed for connectivity")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
