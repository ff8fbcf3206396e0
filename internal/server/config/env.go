package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/dmitrijs2005/litmgmt/internal/flagx"
	"github.com/joho/godotenv"
)

const envPrefix = "LITMGMT_"

// parseEnv loads a dotenv file into the process environment (variables that
// are already set win) and then overlays every LITMGMT_* variable.
//
// The dotenv path comes from -env; without it ".env" is tried and silently
// skipped when absent. An explicitly named file that cannot be loaded panics.
func parseEnv(config *Config, args []string) {
	if path := flagx.EnvFileFlag(args); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	envString(&config.HTTPAddr, "HTTP_ADDR")
	envString(&config.LogLevel, "LOG_LEVEL")
	envString(&config.SecretKey, "SECRET_KEY")
	envDuration(&config.SaveInterval, "SAVE_INTERVAL")
	envDuration(&config.ShutdownTimeout, "SHUTDOWN_TIMEOUT")
	envString(&config.SnapshotBackend, "SNAPSHOT_BACKEND")
	envString(&config.SnapshotPath, "SNAPSHOT_PATH")
	envString(&config.DatabaseDSN, "DATABASE_DSN")
	envString(&config.S3AccessKey, "S3_ACCESS_KEY")
	envString(&config.S3SecretKey, "S3_SECRET_KEY")
	envString(&config.S3Bucket, "S3_BUCKET")
	envString(&config.S3Key, "S3_KEY")
	envString(&config.S3Region, "S3_REGION")
	envString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
}

func envString(dst *string, name string) {
	if v, ok := os.LookupEnv(envPrefix + name); ok {
		*dst = v
	}
}

func envDuration(dst *time.Duration, name string) {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}
