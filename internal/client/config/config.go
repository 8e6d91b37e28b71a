package config

import "time"

// Config holds runtime settings for the Inclick CLI.
//
// Fields:
//   - SupabaseURL / SupabaseAnonKey: hosted identity and profile backend.
//   - NexusAPIURL: catalog endpoint; empty enables the built-in mock catalog.
//   - DataDir: local state (SQLite database, device key file).
//   - S3*: object storage for avatar uploads.
//   - LogLevel: "debug", "info", "warn", "error".
//   - SessionRefreshInterval: how often the background refresher checks the
//     access token.
type Config struct {
	SupabaseURL            string
	SupabaseAnonKey        string
	NexusAPIURL            string
	DataDir                string
	S3Region               string
	S3BaseEndpoint         string
	S3Bucket               string
	S3AccessKey            string
	S3SecretKey            string
	S3PublicBaseURL        string
	LogLevel               string
	SessionRefreshInterval time.Duration
}

// LoadDefaults populates c with development defaults. The Supabase values
// must be overridden for real use.
func (c *Config) LoadDefaults() {
	c.SupabaseURL = "http://127.0.0.1:54321"
	c.SupabaseAnonKey = ""
	c.NexusAPIURL = ""
	c.DataDir = ".inclick"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.S3Bucket = "inclick-media"
	c.S3AccessKey = "admin"
	c.S3SecretKey = "secretpassword"
	c.S3PublicBaseURL = "http://127.0.0.1:9000"
	c.LogLevel = "info"
	c.SessionRefreshInterval = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), environment variables, and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
