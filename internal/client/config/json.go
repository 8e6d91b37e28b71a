package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/inclick-mx/inclick-cli/internal/flagx"
	"github.com/inclick-mx/inclick-cli/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "30s"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config.
type JsonConfig struct {
	SupabaseURL            string         `json:"supabase_url"`
	SupabaseAnonKey        string         `json:"supabase_anon_key"`
	NexusAPIURL            string         `json:"nexus_api_url"`
	DataDir                string         `json:"data_dir"`
	S3Region               string         `json:"s3_region"`
	S3BaseEndpoint         string         `json:"s3_base_endpoint"`
	S3Bucket               string         `json:"s3_bucket"`
	S3AccessKey            string         `json:"s3_access_key"`
	S3SecretKey            string         `json:"s3_secret_key"`
	S3PublicBaseURL        string         `json:"s3_public_base_url"`
	LogLevel               string         `json:"log_level"`
	SessionRefreshInterval timex.Duration `json:"session_refresh_interval"`
}

// parseJson overlays cfg with values loaded from a JSON file. The file path
// comes from the -c/-config flags; with no flag set, nothing is loaded.
// Only fields present in the file override cfg.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlayString(&cfg.SupabaseURL, jc.SupabaseURL)
	overlayString(&cfg.SupabaseAnonKey, jc.SupabaseAnonKey)
	overlayString(&cfg.NexusAPIURL, jc.NexusAPIURL)
	overlayString(&cfg.DataDir, jc.DataDir)
	overlayString(&cfg.S3Region, jc.S3Region)
	overlayString(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	overlayString(&cfg.S3Bucket, jc.S3Bucket)
	overlayString(&cfg.S3AccessKey, jc.S3AccessKey)
	overlayString(&cfg.S3SecretKey, jc.S3SecretKey)
	overlayString(&cfg.S3PublicBaseURL, jc.S3PublicBaseURL)
	overlayString(&cfg.LogLevel, jc.LogLevel)
	if jc.SessionRefreshInterval.Duration != 0 {
		cfg.SessionRefreshInterval = time.Duration(jc.SessionRefreshInterval.Duration)
	}
}

func overlayString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
