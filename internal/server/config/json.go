package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/litmgmt/internal/flagx"
	"github.com/dmitrijs2005/litmgmt/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept "30s"
// or integer nanoseconds. Pointer fields distinguish "absent" from "empty".
type JsonConfig struct {
	HTTPAddr        *string         `json:"http_addr"`
	LogLevel        *string         `json:"log_level"`
	SecretKey       *string         `json:"secret_key"`
	SaveInterval    *timex.Duration `json:"save_interval"`
	ShutdownTimeout *timex.Duration `json:"shutdown_timeout"`
	SnapshotBackend *string         `json:"snapshot_backend"`
	SnapshotPath    *string         `json:"snapshot_path"`
	DatabaseDSN     *string         `json:"database_dsn"`
	S3AccessKey     *string         `json:"s3_access_key"`
	S3SecretKey     *string         `json:"s3_secret_key"`
	S3Bucket        *string         `json:"s3_bucket"`
	S3Key           *string         `json:"s3_key"`
	S3Region        *string         `json:"s3_region"`
	S3BaseEndpoint  *string         `json:"s3_base_endpoint"`
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// parseJson overlays the file named by -c/-config, if any. Unreadable files
// and invalid JSON panic.
func parseJson(config *Config, args []string) {
	jsonConfigFile := flagx.ConfigFileFlag(args)

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.SecretKey, c.SecretKey)
	if c.SaveInterval != nil {
		config.SaveInterval = c.SaveInterval.Duration
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	setString(&config.SnapshotBackend, c.SnapshotBackend)
	setString(&config.SnapshotPath, c.SnapshotPath)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Key, c.S3Key)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}
