package config

import (
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the environment-sourced settings: everything a deployment
// provides once (credentials, endpoint) rather than per run.
type Config struct {
	Storage StorageConfig
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// Options holds the per-run settings assembled from CLI flags. It is
// immutable after construction and threaded into each component.
type Options struct {
	InputPath  string
	OutputPath string

	Bucket string
	Region string

	TargetWidth  int
	TargetHeight int

	DryRun    bool
	DebugSave bool
	DebugDir  string
	TestMode  bool
	TestRows  int

	Timeout time.Duration

	LogLevel string
	LogDir   string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("S3_ENDPOINT", "")
		viper.SetDefault("AWS_ACCESS_KEY_ID", "")
		viper.SetDefault("AWS_SECRET_ACCESS_KEY", "")
		viper.SetDefault("S3_BUCKET", "")
		viper.SetDefault("AWS_REGION", "ap-south-1")
		viper.SetDefault("S3_USE_SSL", true)

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Storage: StorageConfig{
				Endpoint:  viper.GetString("S3_ENDPOINT"),
				AccessKey: viper.GetString("AWS_ACCESS_KEY_ID"),
				SecretKey: viper.GetString("AWS_SECRET_ACCESS_KEY"),
				Bucket:    viper.GetString("S3_BUCKET"),
				Region:    viper.GetString("AWS_REGION"),
				UseSSL:    viper.GetBool("S3_USE_SSL"),
			},
		}
	})

	return instance
}
