package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/litmgmt/internal/flagx"
)

// parseFlags overlays the command-line flags.
//
//	-a string   HTTP bind address (e.g. ":7070")
//	-l string   log level (debug, info, warn, error)
//	-s string   token signing secret
//	-i int      autosave interval, seconds (0 disables)
//	-k string   snapshot backend: file, postgres, s3
//	-f string   snapshot file path (file backend)
//	-d string   PostgreSQL DSN (postgres backend)
//	-b string   S3 bucket
//	-o string   S3 object key
//	-g string   S3 region
//	-e string   S3 base endpoint
//	-u string   S3 access key
//	-p string   S3 secret key
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{
		"-a", "-l", "-s", "-i", "-k", "-f", "-d", "-b", "-o", "-g", "-e", "-u", "-p",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	saveInterval := fs.Int("i", int(config.SaveInterval.Seconds()), "autosave interval (in seconds)")
	fs.StringVar(&config.SnapshotBackend, "k", config.SnapshotBackend, "snapshot backend")
	fs.StringVar(&config.SnapshotPath, "f", config.SnapshotPath, "snapshot file path")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Key, "o", config.S3Key, "S3 object key")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3AccessKey, "u", config.S3AccessKey, "S3 access key")
	fs.StringVar(&config.S3SecretKey, "p", config.S3SecretKey, "S3 secret key")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// only when given, so a sub-second value from an earlier layer survives
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			config.SaveInterval = time.Duration(*saveInterval) * time.Second
		}
	})
}
