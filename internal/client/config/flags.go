package config

import (
	"flag"
	"os"

	"github.com/inclick-mx/inclick-cli/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-s string   Supabase project URL
//	-k string   Supabase anon key
//	-n string   Nexus API URL (empty keeps the mock catalog)
//	-d string   data directory for local state
//	-l string   log level
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-s", "-k", "-n", "-d", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.SupabaseURL, "s", cfg.SupabaseURL, "supabase project url")
	fs.StringVar(&cfg.SupabaseAnonKey, "k", cfg.SupabaseAnonKey, "supabase anon key")
	fs.StringVar(&cfg.NexusAPIURL, "n", cfg.NexusAPIURL, "nexus api url (empty for mock catalog)")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory for local state")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
