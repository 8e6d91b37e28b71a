package config

import (
	"os"
	"time"
)

// parseEnv overlays cfg with INCLICK_* environment variables. Unset
// variables leave the current value untouched.
func parseEnv(cfg *Config) {
	overlayEnv(&cfg.SupabaseURL, "INCLICK_SUPABASE_URL")
	overlayEnv(&cfg.SupabaseAnonKey, "INCLICK_SUPABASE_ANON_KEY")
	overlayEnv(&cfg.NexusAPIURL, "INCLICK_NEXUS_API_URL")
	overlayEnv(&cfg.DataDir, "INCLICK_DATA_DIR")
	overlayEnv(&cfg.S3Region, "INCLICK_S3_REGION")
	overlayEnv(&cfg.S3BaseEndpoint, "INCLICK_S3_BASE_ENDPOINT")
	overlayEnv(&cfg.S3Bucket, "INCLICK_S3_BUCKET")
	overlayEnv(&cfg.S3AccessKey, "INCLICK_S3_ACCESS_KEY")
	overlayEnv(&cfg.S3SecretKey, "INCLICK_S3_SECRET_KEY")
	overlayEnv(&cfg.S3PublicBaseURL, "INCLICK_S3_PUBLIC_BASE_URL")
	overlayEnv(&cfg.LogLevel, "INCLICK_LOG_LEVEL")

	if v, ok := os.LookupEnv("INCLICK_SESSION_REFRESH_INTERVAL"); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SessionRefreshInterval = d
		}
	}
}

func overlayEnv(dst *string, name string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		*dst = v
	}
}
